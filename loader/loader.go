// Package loader resolves the targets of inherit directives to templates.
//
// Each loader compiles what it loads with the [lang.Option] values it was
// created with, followed by [lang.WithLoader] naming itself, so parents can
// inherit in turn.
package loader

import (
	"errors"
	"fmt"

	"github.com/ardnew/tempita/lang"
)

// ErrNotFound is returned when a loader has no template for a target.
var ErrNotFound = errors.New("template not found")

// name returns the template name an inherit target refers to.
func name(target any) (string, error) {
	switch t := target.(type) {
	case string:
		return t, nil
	case lang.Text:
		return string(t), nil
	case fmt.Stringer:
		return t.String(), nil
	default:
		return "", fmt.Errorf("invalid template name %s", lang.Repr(target))
	}
}

// compile compiles source with opts followed by a loader option for l.
func compile(
	source, name string,
	l lang.Loader,
	opts []lang.Option,
) (*lang.Template, error) {
	all := make([]lang.Option, 0, len(opts)+1)
	all = append(all, opts...)
	all = append(all, lang.WithLoader(l))

	return lang.Compile(source, name, all...)
}
