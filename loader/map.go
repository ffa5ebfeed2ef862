package loader

import (
	"context"
	"fmt"
	"maps"

	"github.com/ardnew/tempita/lang"
)

// Map loads templates from sources held in memory, by name.
type Map struct {
	sources map[string]string
	opts    []lang.Option
}

// NewMap returns a [Map] serving a copy of sources.
func NewMap(sources map[string]string, opts ...lang.Option) *Map {
	return &Map{sources: maps.Clone(sources), opts: opts}
}

// Load implements [lang.Loader].
func (m *Map) Load(
	ctx context.Context,
	target any,
	_ *lang.Template,
) (*lang.Template, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	n, err := name(target)
	if err != nil {
		return nil, err
	}

	source, ok := m.sources[n]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, n)
	}

	return compile(source, n, m, m.opts)
}

// Template returns the named template.
func (m *Map) Template(ctx context.Context, name string) (*lang.Template, error) {
	return m.Load(ctx, name, nil)
}
