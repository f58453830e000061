// Package logging builds the process logger: log/slog backed by the charm
// log handler.
package logging

import (
	"io"
	"log/slog"
	"os"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/pkg/errors"
)

// New returns a logger writing to w at the named level.
func New(w io.Writer, level string) (*slog.Logger, error) {
	lvl, err := charmlog.ParseLevel(level)
	if err != nil {
		return nil, errors.Wrapf(err, "log level %q", level)
	}

	h := charmlog.NewWithOptions(w, charmlog.Options{
		Level:           lvl,
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
		Prefix:          "irtemp",
	})
	return slog.New(h), nil
}

// Open returns a logger for path, or one that discards everything when
// path is empty. Used while the TUI owns the terminal. The returned closer
// must be closed on exit.
func Open(path, level string) (*slog.Logger, io.Closer, error) {
	if path == "" {
		l, err := New(io.Discard, level)
		return l, io.NopCloser(nil), err
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, errors.Wrap(err, "open log file")
	}
	l, err := New(f, level)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return l, f, nil
}
