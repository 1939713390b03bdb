/*
PURPOSE:
  Provides the structured logger for UA Bench.
  Wraps slog for consistent output.

REQUIREMENTS:
  User-specified:
  - "Sane" CLI output. Not spammy.
  - stdout belongs to tables; logs go to stderr.

  Implementation-discovered:
  - Level and format (text/json) come from config, env or flags.

ARCHITECTURE INTEGRATION:
  - Used everywhere.

IMPLEMENTATION RULES:
  - Use `log/slog`.

USAGE:
  output.Configure("debug", "json", os.Stderr)
  output.Logger.Info("message", "key", "value")

RELATED FILES:
  - All.
*/

package output

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

var Logger *slog.Logger

func init() {
	Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

// SetLogger allows overriding the default logger (e.g. for testing or config changes)
func SetLogger(l *slog.Logger) {
	Logger = l
}

// ParseLevel maps debug|info|warn|error to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	if strings.TrimSpace(s) == "" {
		return slog.LevelInfo, nil
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", s)
	}
	return l, nil
}

// Configure replaces Logger with one writing to w at the given level.
// Format is "text" or "json". A nil w means stderr.
func Configure(level, format string, w io.Writer) error {
	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}
	if w == nil {
		w = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: lvl}
	var handler slog.Handler
	switch strings.ToLower(format) {
	case "", "text":
		handler = slog.NewTextHandler(w, opts)
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		return fmt.Errorf("invalid log format %q (want text or json)", format)
	}

	SetLogger(slog.New(handler))
	return nil
}
