package cmd

import (
	"os"
	"path/filepath"

	"github.com/ardnew/mung"

	"github.com/ardnew/tempita/lang"
)

// pathFuncs are the functions bound to "path" in command line templates.
type pathFuncs struct {
	Abs      func(path string) string                                           `expr:"abs"`
	Cat      func(elem ...string) string                                        `expr:"cat"`
	Rel      func(from, to string) string                                       `expr:"rel"`
	Prefix   func(list string, prefix ...string) string                         `expr:"prefix"`
	PrefixIf func(list string, keep func(string) bool, prefix ...string) string `expr:"prefixif"`
}

// fileFuncs are the functions bound to "file" in command line templates.
type fileFuncs struct {
	Exists func(path string) bool `expr:"exists"`
	IsDir  func(path string) bool `expr:"isdir"`
}

// builtins returns the names the command line adds to every template:
//
//	env("HOME")                        process environment lookup
//	path.prefix(PATH, "/opt/bin")      PATH-like list manipulation
//	file.exists("x") / file.isdir("x") filesystem tests
func builtins() lang.Namespace {
	return lang.Namespace{
		"env": os.Getenv,
		"path": pathFuncs{
			Abs:      pathAbs,
			Cat:      filepath.Join,
			Rel:      pathRel,
			Prefix:   listPrefix,
			PrefixIf: listPrefixIf,
		},
		"file": fileFuncs{
			Exists: fileExists,
			IsDir:  fileIsDir,
		},
	}
}

func pathAbs(path string) string {
	if p, err := filepath.Abs(path); err == nil {
		return p
	}

	return path
}

func pathRel(from, to string) string {
	if p, err := filepath.Rel(pathAbs(from), pathAbs(to)); err == nil {
		return p
	}

	return filepath.Join(from, to)
}

// listPrefix returns the path list with each prefix moved or added to its
// front.
func listPrefix(list string, prefix ...string) string {
	return mung.Make(
		mung.WithSubjectItems(list),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(prefix...),
	).String()
}

// listPrefixIf is like listPrefix, but drops the items for which keep
// returns false.
func listPrefixIf(list string, keep func(string) bool, prefix ...string) string {
	return mung.Make(
		mung.WithSubjectItems(list),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(prefix...),
		mung.WithFilter(keep),
	).String()
}

func fileExists(path string) bool {
	_, err := os.Stat(path)

	return err == nil
}

func fileIsDir(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.IsDir()
}
