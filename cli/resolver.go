package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
)

// resolve is a [kong.ConfigurationLoader] for YAML configuration files.
//
// Keys name flags with either hyphens or underscores, and nested mappings
// join their keys with a hyphen, so these are equivalent:
//
//	log-level: debug
//	log_level: debug
//	log:
//	  level: debug
//
// Command line flags take precedence over the file.
func resolve(r io.Reader) (kong.Resolver, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("configuration: %w", err)
	}

	c := config{}
	c.flatten("", doc)

	return c, nil
}

// config maps normalized flag names to configured values.
type config map[string]any

func (c config) flatten(prefix string, m map[string]any) {
	for k, v := range m {
		key := prefix + normalize(k)

		switch v := v.(type) {
		case map[string]any:
			c.flatten(key+"-", v)
		default:
			c[key] = flagValue(v)
		}
	}
}

// Validate implements [kong.Resolver].
func (c config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver].
func (c config) Resolve(_ *kong.Context, _ *kong.Path, flag *kong.Flag) (any, error) {
	v, ok := c[normalize(flag.Name)]
	if !ok {
		return nil, nil //nolint:nilnil
	}

	return v, nil
}

func normalize(name string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), "_", "-"))
}

// flagValue converts a decoded YAML value to the form kong decodes flags
// from: scalars become strings and sequences lists of them.
func flagValue(v any) any {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = flagValue(e)
		}

		return out
	default:
		return fmt.Sprint(v)
	}
}
