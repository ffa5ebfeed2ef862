package cli

import (
	"path/filepath"

	"github.com/ardnew/tempita/pkg"
)

// configBase is the base name, without extension, of the configuration
// files.
const configBase = "config"

// configPath returns the configuration file path without extension.
func configPath() string {
	return filepath.Join(pkg.ConfigDir(), configBase)
}

// cacheDir returns the directory for transient files such as profiles.
func cacheDir() string { return pkg.CacheDir() }
