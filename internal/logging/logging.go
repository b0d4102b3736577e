// Package logging builds the application logger. The dashboard owns the
// terminal, so logs stay silent unless QUOTADECK_DEBUG is set, in which
// case they go to a debug file (or stderr when the file is unwritable).
package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

const envDebug = "QUOTADECK_DEBUG"

func New() zerolog.Logger {
	if os.Getenv(envDebug) == "" {
		return zerolog.New(io.Discard)
	}

	out := debugWriter()
	return zerolog.New(zerolog.ConsoleWriter{Out: out, NoColor: true}).
		Level(zerolog.DebugLevel).
		With().Timestamp().Logger()
}

func debugWriter() io.Writer {
	path := filepath.Join(os.TempDir(), "quotadeck-debug.log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return os.Stderr
	}
	return f
}
