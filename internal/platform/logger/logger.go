package logger

import (
	"log/slog"
	"os"
)

// New returns the process logger. Services receive it by injection so tests
// can swap in a discard handler.
func New() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}
