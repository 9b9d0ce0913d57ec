package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// ServiceName is attached to every log line.
const ServiceName = "bytewave-hub"

// New creates the server logger on stdout.
func New(level, format string) zerolog.Logger {
	return NewWriter(os.Stdout, level, format)
}

// NewWriter creates a logger writing to w. level is any zerolog level name;
// an unknown or empty level means info. format "pretty" (or ENV=development)
// selects console output, anything else JSON.
func NewWriter(w io.Writer, level, format string) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	logLevel, err := zerolog.ParseLevel(level)
	if err != nil || logLevel == zerolog.NoLevel {
		logLevel = zerolog.InfoLevel
	}

	pretty := format == "pretty" || os.Getenv("ENV") == "development"
	if pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	ctx := zerolog.New(w).Level(logLevel).With().Timestamp()
	if pretty {
		ctx = ctx.Caller()
	}
	return ctx.Str("service", ServiceName).Logger()
}
