package logger

import (
	"log/slog"
	"os"
)

// New returns the process logger. Text output on stdout keeps demo runs
// readable; swap the handler for JSON when shipping logs somewhere.
func New() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}
