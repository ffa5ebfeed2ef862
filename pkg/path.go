package pkg

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
)

//nolint:gochecknoglobals
var prefixRules = []struct {
	rex *regexp.Regexp
	rep string
}{
	{regexp.MustCompile(`^__debug_bin\d*$`), Name}, // dlv default output
	{regexp.MustCompile(`^\.+`), ""},
}

// Prefix returns the base name of the running executable, without extension
// or leading dots. It names the per-user configuration and cache
// directories, so a renamed binary keeps its own settings.
//
//nolint:gochecknoglobals
var Prefix = sync.OnceValue(func() string {
	id := os.Args[0]
	if exe, err := os.Executable(); err == nil {
		id = exe
	}

	id = filepath.Base(id)
	id = strings.TrimSuffix(id, filepath.Ext(id))

	for _, r := range prefixRules {
		id = r.rex.ReplaceAllString(id, r.rep)
	}

	if id == "" {
		return Name
	}

	return id
})

// ConfigDir returns the per-user configuration directory.
//
//nolint:gochecknoglobals
var ConfigDir = sync.OnceValue(func() string {
	return userDir(os.UserConfigDir, ".config")
})

// CacheDir returns the per-user directory for transient files such as
// profiles.
//
//nolint:gochecknoglobals
var CacheDir = sync.OnceValue(func() string {
	return userDir(os.UserCacheDir, ".cache")
})

// userDir joins [Prefix] to the directory reported by base, falling back to
// fallback under the home directory and then to the working directory.
func userDir(base func() (string, error), fallback string) string {
	dir, err := base()
	if err != nil {
		if home, herr := os.UserHomeDir(); herr == nil {
			dir = filepath.Join(home, fallback)
		} else if dir, err = os.Getwd(); err != nil {
			dir = "."
		}
	}

	return filepath.Join(dir, Prefix())
}
