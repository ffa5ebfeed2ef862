package log_test

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/ardnew/tempita/lang"
	"github.com/ardnew/tempita/log"
)

func ExampleMake() {
	logger := log.Make(os.Stdout, log.WithTimeLayout("none"))

	logger.Info("rendered", log.Template("index.html"), slog.Int("bytes", 512))
	logger.Debug("not written")
	// Output:
	// level=INFO msg=rendered template=index.html bytes=512
}

func ExampleErr() {
	logger := log.Make(os.Stdout,
		log.WithTimeLayout("none"),
		log.WithFormat(log.FormatJSON))

	_, err := lang.Render(context.Background(), "{{if x}}", nil)
	if errors.Is(err, lang.ErrParse) {
		logger.Error("compile failed", log.Err(err))
	}
	// Output:
	// {"level":"ERROR","msg":"compile failed","error":{"kind":"parse error","error":"No {{endif}}","line":1,"column":3}}
}
