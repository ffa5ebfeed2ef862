//nolint:gochecknoglobals
package pkg

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var version string

// Version is the semantic version of the module, embedded at build time.
var Version = strings.TrimSpace(version)

const (
	// Name identifies the command in help text and default file paths.
	Name = "tempita"
	// Description summarizes the command for help output.
	Description = "Render text templates with embedded expressions"
)

// AuthorInfo is an author's name and email address.
type AuthorInfo struct {
	Name  string
	Email string
}

// Author lists the primary authors of the project.
var Author = []AuthorInfo{
	{"ardnew", "andrew@ardnew.com"},
}
