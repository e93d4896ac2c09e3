package logging

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"embedgen/internal/config"
)

// Setup configures the global zerolog logger from the logging config section.
// It returns a closer for the log file, if one was opened.
func Setup(cfg config.LoggingConfig) (io.Closer, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	zerolog.SetGlobalLevel(level)

	var writers []io.Writer
	if cfg.Console {
		writers = append(writers, consoleWriter(cfg.Format, os.Stderr))
	}

	var file *os.File
	if cfg.OutputFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.OutputFile), 0o755); err != nil {
			return nil, err
		}
		file, err = os.OpenFile(cfg.OutputFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, err
		}
		writers = append(writers, file)
	}

	switch len(writers) {
	case 0:
		log.Logger = zerolog.Nop()
	case 1:
		log.Logger = zerolog.New(writers[0]).With().Timestamp().Logger()
	default:
		log.Logger = zerolog.New(io.MultiWriter(writers...)).With().Timestamp().Logger()
	}

	log.Debug().
		Str("level", level.String()).
		Str("format", cfg.Format).
		Str("output_file", cfg.OutputFile).
		Msg("Logger initialized")

	if file == nil {
		return nopCloser{}, nil
	}
	return file, nil
}

func consoleWriter(format string, out io.Writer) io.Writer {
	if format == "json" {
		return out
	}
	return zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
