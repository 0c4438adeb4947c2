package logging

import (
	"io"
	"log/slog"
	"os"
)

// DebugEnabled returns true if debug mode is enabled via the WT_DEBUG environment variable
func DebugEnabled() bool {
	return os.Getenv("WT_DEBUG") != ""
}

// Level picks Debug when verbose output was requested or WT_DEBUG is set.
func Level(verbose bool) slog.Level {
	if verbose || DebugEnabled() {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// New builds a text logger writing to w.
func New(w io.Writer, verbose bool) *slog.Logger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: Level(verbose)})
	return slog.New(handler)
}

// Setup builds a stderr logger and installs it as the slog default.
func Setup(verbose bool) *slog.Logger {
	logger := New(os.Stderr, verbose)
	slog.SetDefault(logger)
	return logger
}

// Discard returns a logger that drops everything. Used where no logger was supplied.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// OrDiscard returns logger, or a discarding logger when it is nil.
func OrDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return Discard()
	}
	return logger
}
