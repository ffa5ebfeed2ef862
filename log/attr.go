package log

import "log/slog"

// Err returns an attribute describing err. Errors implementing
// [slog.LogValuer], such as template errors, are logged as a group of their
// parts.
func Err(err error) slog.Attr {
	switch e := err.(type) {
	case nil:
		return slog.String("error", "<nil>")
	case slog.LogValuer:
		return slog.Any("error", e)
	default:
		return slog.String("error", err.Error())
	}
}

// Template returns an attribute naming a template.
func Template(name string) slog.Attr {
	return slog.String("template", name)
}
