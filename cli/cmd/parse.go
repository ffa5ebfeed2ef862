package cmd

import (
	"context"
	"fmt"

	"github.com/ardnew/tempita/lang"
)

// Parse prints the syntax tree of a template.
type Parse struct {
	source `embed:""`
}

// Run executes the parse command.
func (p *Parse) Run(ctx context.Context) error {
	name, src, err := readTemplate(ctx, p.Template)
	if err != nil {
		return err
	}

	opts, err := p.options()
	if err != nil {
		return err
	}

	tmpl, err := lang.Compile(src, name, opts...)
	if err != nil {
		return err
	}

	lang.Print(ioFrom(ctx).out, tmpl.Nodes())

	return nil
}

// Lex prints the tokens of a template, one per line.
type Lex struct {
	source `embed:""`
}

// Run executes the lex command.
func (l *Lex) Run(ctx context.Context) error {
	name, src, err := readTemplate(ctx, l.Template)
	if err != nil {
		return err
	}

	d, err := parseDelims(l.Delims)
	if err != nil {
		return err
	}

	tokens, err := lang.Lex(src, name, d, 0)
	if err != nil {
		return err
	}

	if !l.NoTrim {
		tokens = lang.Trim(tokens)
	}

	out := ioFrom(ctx).out
	for _, tok := range tokens {
		if _, err := fmt.Fprintln(out, tok); err != nil {
			return ErrWriteOutput.Wrap(err)
		}
	}

	return nil
}
