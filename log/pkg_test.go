package log

import (
	"bytes"
	"strings"
	"testing"
)

func TestPackageFunctions(t *testing.T) {
	saved := Default()
	t.Cleanup(func() { SetDefault(saved) })

	var buf bytes.Buffer

	SetDefault(Make(&buf, WithTimeLayout("none")))
	Config(WithLevel(LevelDebug), WithCaller(true))

	Trace("trace")
	Debug("debug")
	InfoContext(t.Context(), "info")
	With(Template("t")).Warn("warn")
	Error("error")

	got := buf.String()

	if strings.Contains(got, "msg=trace") {
		t.Errorf("trace written at debug level: %s", got)
	}

	for _, want := range []string{"msg=debug", "msg=info", "msg=warn template=t", "msg=error"} {
		if !strings.Contains(got, want) {
			t.Errorf("output does not contain %q: %s", want, got)
		}
	}

	if n := strings.Count(got, "pkg_test.go:"); n != 4 {
		t.Errorf("%d records attribute the calling file, want 4: %s", n, got)
	}
}
