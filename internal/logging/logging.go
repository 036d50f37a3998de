// Package logging builds the process logger.
package logging

import (
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"
)

const EnvLevel = "ASSEMBLY_LOG_LEVEL"

// New returns a text logger on w tagged with a fresh run id. A non-empty
// ASSEMBLY_LOG_LEVEL from getenv overrides level; unparsable levels fall
// back to info.
func New(w io.Writer, level string, getenv func(string) string) (*slog.Logger, string) {
	if getenv != nil {
		if env := strings.TrimSpace(getenv(EnvLevel)); env != "" {
			level = env
		}
	}
	runID := uuid.NewString()
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)})
	return slog.New(h).With("run", runID), runID
}

func ParseLevel(s string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
