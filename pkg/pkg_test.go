package pkg

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

func TestVersion(t *testing.T) {
	buf, err := os.ReadFile("VERSION")
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	if want := strings.TrimSpace(string(buf)); Version != want {
		t.Errorf("Version = %q, want %q", Version, want)
	}

	if !regexp.MustCompile(`^\d+\.\d+\.\d+`).MatchString(Version) {
		t.Errorf("Version = %q, not semantic", Version)
	}
}

func TestAuthor(t *testing.T) {
	if len(Author) == 0 {
		t.Fatal("Author is empty")
	}

	for i, a := range Author {
		if a.Name == "" && a.Email == "" {
			t.Errorf("Author[%d] has neither Name nor Email", i)
		}
	}
}

func TestPrefix(t *testing.T) {
	p := Prefix()
	if p == "" || strings.HasPrefix(p, ".") || strings.ContainsRune(p, filepath.Separator) {
		t.Errorf("Prefix() = %q", p)
	}
}

func TestUserDir(t *testing.T) {
	got := userDir(func() (string, error) { return "/base", nil }, ".x")
	if want := filepath.Join("/base", Prefix()); got != want {
		t.Errorf("userDir() = %q, want %q", got, want)
	}

	t.Setenv("HOME", "/home/u")

	got = userDir(func() (string, error) { return "", errors.New("none") }, ".x")
	if want := filepath.Join("/home/u", ".x", Prefix()); got != want {
		t.Errorf("userDir() fallback = %q, want %q", got, want)
	}

	if !strings.HasSuffix(ConfigDir(), Prefix()) || !strings.HasSuffix(CacheDir(), Prefix()) {
		t.Errorf("ConfigDir() = %q, CacheDir() = %q", ConfigDir(), CacheDir())
	}
}
