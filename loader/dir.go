package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ardnew/tempita/lang"
)

// Dir loads templates from files.
//
// A relative target resolves against the directory of the template that
// requested it, when that template was itself read from a file, and against
// the root directory otherwise. Loaded templates are named by their path.
type Dir struct {
	root string
	opts []lang.Option
}

// NewDir returns a [Dir] resolving relative names against root. An empty
// root is the working directory.
func NewDir(root string, opts ...lang.Option) *Dir {
	return &Dir{root: root, opts: opts}
}

// Load implements [lang.Loader].
func (d *Dir) Load(
	ctx context.Context,
	target any,
	from *lang.Template,
) (*lang.Template, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	n, err := name(target)
	if err != nil {
		return nil, err
	}

	path := d.resolve(n, from)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}

		return nil, err
	}

	return compile(string(data), path, d, d.opts)
}

// Template reads and compiles the named file.
func (d *Dir) Template(ctx context.Context, name string) (*lang.Template, error) {
	return d.Load(ctx, name, nil)
}

// resolve returns the path of the file named n as requested by from.
func (d *Dir) resolve(n string, from *lang.Template) string {
	if filepath.IsAbs(n) {
		return n
	}

	if from != nil && isPath(from.Name()) {
		return filepath.Join(filepath.Dir(from.Name()), n)
	}

	return filepath.Join(d.root, n)
}

// isPath reports whether a template name looks like a file path rather than
// a placeholder such as "<stdin>".
func isPath(name string) bool {
	return name != "" && !strings.HasPrefix(name, "<")
}
