package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/natefinch/atomic"

	"github.com/ardnew/tempita/html"
	"github.com/ardnew/tempita/lang"
	"github.com/ardnew/tempita/lang/starlark"
	"github.com/ardnew/tempita/loader"
	"github.com/ardnew/tempita/log"
)

// source selects a template and how it is lexed.
type source struct {
	Template string `arg:"" help:"Template file, or '-' to read stdin"`
	Delims   string `default:"{{ }}" help:"Directive delimiters separated by a space" placeholder:"OPEN CLOSE"`
	NoTrim   bool   `help:"Keep the blank lines around block directives"`
}

// options returns the template options selected by s.
func (s source) options() ([]lang.Option, error) {
	d, err := parseDelims(s.Delims)
	if err != nil {
		return nil, err
	}

	return []lang.Option{
		lang.WithDelims(d.Open, d.Close),
		lang.WithTrimWhitespace(!s.NoTrim),
		lang.WithLogger(log.Default()),
	}, nil
}

// Fill renders a template.
type Fill struct {
	source `embed:""`

	Vars     []string `arg:"" help:"Variables as name=value, or yaml:name=value to decode the value as YAML" name:"var" optional:""`
	Output   string   `help:"Write to file instead of stdout, replacing it atomically" short:"o" type:"path"`
	VarFiles []string `help:"YAML files of variables, bound before command line variables" name:"vars" type:"existingfile"`
	DB       string   `help:"SQLite database holding inherited templates" type:"path"`
	HTML     bool     `help:"Escape substituted values for HTML"`
	Env      bool     `help:"Bind the process environment as variables"`
	Starlark bool     `help:"Evaluate expressions as Starlark"`
}

// Run executes the fill command.
func (f *Fill) Run(ctx context.Context) error {
	start := time.Now()

	name, src, err := readTemplate(ctx, f.Template)
	if err != nil {
		return err
	}

	ns, err := f.namespace()
	if err != nil {
		return err
	}

	opts, done, err := f.options()
	if err != nil {
		return err
	}
	defer done()

	tmpl, err := lang.Compile(src, name, opts...)
	if err != nil {
		return err
	}

	out, err := tmpl.Render(ctx, ns)
	if err != nil {
		return err
	}

	if err := f.write(ctx, out); err != nil {
		return err
	}

	log.DebugContext(ctx, "filled template",
		log.Template(name),
		slog.Int("vars", len(ns)),
		slog.Int("bytes", len(out)),
		slog.Duration("elapsed", time.Since(start)))

	return nil
}

// namespace returns the variables bound by the environment, variable files
// and arguments, in increasing precedence.
func (f *Fill) namespace() (lang.Namespace, error) {
	ns := lang.Namespace{}

	if f.Env {
		environ(ns, os.Environ())
	}

	if err := readVars(ns, f.VarFiles); err != nil {
		return nil, err
	}

	if err := parseVars(ns, f.Vars); err != nil {
		return nil, err
	}

	return ns, nil
}

// options returns the template options for f along with a function
// releasing any resources they hold.
func (f *Fill) options() ([]lang.Option, func(), error) {
	opts, err := f.source.options()
	if err != nil {
		return nil, nil, err
	}

	if f.HTML {
		opts = append(opts, html.Options()...)
	}

	if f.Starlark {
		opts = append(opts, lang.WithEvaluator(starlark.NewEvaluator(nil)))
	}

	opts = append(opts, lang.WithBuiltins(builtins()))

	if f.DB == "" {
		return append(opts, lang.WithLoader(loader.NewDir("", opts...))), func() {}, nil
	}

	db, err := loader.OpenSQLite(f.DB)
	if err != nil {
		return nil, nil, ErrOpenDB.Wrap(err).With(slog.String("path", f.DB))
	}

	done := func() {
		if err := db.Close(); err != nil {
			log.Warn("close template database", log.Err(err))
		}
	}

	return append(opts, lang.WithLoader(loader.NewSQL(db, opts...))), done, nil
}

func (f *Fill) write(ctx context.Context, out string) error {
	var err error

	if f.Output == "" {
		_, err = io.WriteString(ioFrom(ctx).out, out)
	} else {
		err = atomic.WriteFile(f.Output, strings.NewReader(out))
	}

	if err != nil {
		return ErrWriteOutput.Wrap(err).With(slog.String("path", f.Output))
	}

	return nil
}
