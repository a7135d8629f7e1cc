package logger

import (
	"log/slog"
	"os"
)

// New returns the process-wide structured logger. Handlers layer request
// scoped attributes on top of it.
func New() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, nil))
}
