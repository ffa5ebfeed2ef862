package cmd

import (
	"log/slog"
	"maps"
	"os"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/tempita/lang"
)

// yamlPrefix marks a variable argument whose value is decoded as YAML.
const yamlPrefix = "yaml:"

// parseVar parses a "name=value" argument. With a "yaml:" prefix the value
// is decoded as a YAML document, so "yaml:n=3" binds an integer and
// "yaml:xs=[a, b]" a list.
func parseVar(arg string) (name string, value any, err error) {
	typed := strings.HasPrefix(arg, yamlPrefix)
	if typed {
		arg = arg[len(yamlPrefix):]
	}

	name, text, ok := strings.Cut(arg, "=")
	if !ok || !lang.IsIdentifier(strings.TrimSpace(name)) {
		return "", nil, ErrVariable.With(slog.String("arg", arg))
	}

	name = strings.TrimSpace(name)

	if !typed {
		return name, text, nil
	}

	if err := yaml.Unmarshal([]byte(text), &value); err != nil {
		return "", nil, ErrVariable.Wrap(err).With(slog.String("arg", arg))
	}

	return name, value, nil
}

// parseVars binds each argument into ns, later arguments replacing earlier
// bindings of the same name.
func parseVars(ns lang.Namespace, args []string) error {
	for _, arg := range args {
		name, value, err := parseVar(arg)
		if err != nil {
			return err
		}

		ns[name] = value
	}

	return nil
}

// readVars binds the top-level keys of each YAML mapping file into ns.
func readVars(ns lang.Namespace, paths []string) error {
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return ErrReadVars.Wrap(err).With(slog.String("path", path))
		}

		var m map[string]any
		if err := yaml.Unmarshal(data, &m); err != nil {
			return ErrReadVars.Wrap(err).With(slog.String("path", path))
		}

		maps.Copy(ns, m)
	}

	return nil
}

// environ binds each variable of a "KEY=VALUE" environment list into ns.
func environ(ns lang.Namespace, env []string) {
	for _, kv := range env {
		if k, v, ok := strings.Cut(kv, "="); ok && k != "" {
			ns[k] = v
		}
	}
}
