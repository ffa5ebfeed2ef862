package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPathFuncs(t *testing.T) {
	sep := string(os.PathListSeparator)

	got := listPrefix(strings.Join([]string{"/usr/bin", "/bin"}, sep), "/opt/bin")
	if !strings.HasPrefix(got, "/opt/bin"+sep) || !strings.Contains(got, "/usr/bin") {
		t.Errorf("listPrefix() = %q", got)
	}

	got = listPrefixIf("/usr/bin", func(string) bool { return true }, "/opt/bin")
	if !strings.HasPrefix(got, "/opt/bin") {
		t.Errorf("listPrefixIf() = %q", got)
	}

	if got := pathRel("/a/b", "/a/b/c/d"); got != filepath.Join("c", "d") {
		t.Errorf("pathRel() = %q", got)
	}

	if got := pathAbs("x"); !filepath.IsAbs(got) {
		t.Errorf("pathAbs() = %q", got)
	}
}

func TestFileFuncs(t *testing.T) {
	dir := t.TempDir()
	file := write(t, dir, "f", "")

	tests := []struct {
		path          string
		exists, isDir bool
	}{
		{dir, true, true},
		{file, true, false},
		{filepath.Join(dir, "none"), false, false},
	}

	for _, tt := range tests {
		if fileExists(tt.path) != tt.exists || fileIsDir(tt.path) != tt.isDir {
			t.Errorf("%s: exists = %v, isdir = %v", tt.path, fileExists(tt.path), fileIsDir(tt.path))
		}
	}
}
