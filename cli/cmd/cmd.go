package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/ardnew/tempita/lang"
)

// stdinName is the template name given to templates read from stdin.
const stdinName = "<stdin>"

type ioKey struct{}

type streams struct {
	in  io.Reader
	out io.Writer
}

// WithIO returns a context whose commands read templates named "-" from in
// and write results to out.
func WithIO(ctx context.Context, in io.Reader, out io.Writer) context.Context {
	return context.WithValue(ctx, ioKey{}, streams{in: in, out: out})
}

func ioFrom(ctx context.Context) streams {
	s, _ := ctx.Value(ioKey{}).(streams)

	if s.in == nil {
		s.in = os.Stdin
	}

	if s.out == nil {
		s.out = os.Stdout
	}

	return s
}

// readTemplate returns the name and source of the template at path, where
// "-" reads stdin.
func readTemplate(ctx context.Context, path string) (name, source string, err error) {
	var data []byte

	if path == "-" {
		name = stdinName
		data, err = io.ReadAll(ioFrom(ctx).in)
	} else {
		name = path
		data, err = os.ReadFile(path)
	}

	if err != nil {
		return "", "", ErrReadTemplate.Wrap(err).With(slog.String("path", path))
	}

	return name, string(data), nil
}

// parseDelims splits "OPEN CLOSE" into delimiters.
func parseDelims(s string) (lang.Delims, error) {
	f := strings.Fields(s)
	if len(f) != 2 || f[0] == f[1] {
		return lang.Delims{}, ErrDelims.With(slog.String("delims", s))
	}

	return lang.Delims{Open: f[0], Close: f[1]}, nil
}
