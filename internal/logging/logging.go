// Package logging configures the process-wide zerolog logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup configures the global logger. Output goes to a console writer
// on stderr, and additionally to logFile when one is given. The
// returned closer flushes and closes the log file; it is a no-op when
// no file is in use.
func Setup(level, logFile string) (io.Closer, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}

	var closer io.Closer
	var out io.Writer = console
	if logFile != "" {
		if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out = zerolog.MultiLevelWriter(console, f)
		closer = f
	}

	log.Logger = zerolog.New(out).With().Timestamp().Logger()
	return closerOrNop(closer), nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func closerOrNop(c io.Closer) io.Closer {
	if c == nil {
		return nopCloser{}
	}
	return c
}
