package logging

import (
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

// Options controls the process-wide logger.
type Options struct {
	Level string
	JSON  bool
}

var def atomic.Value

func init() {
	cfg := &slog.HandlerOptions{Level: slog.LevelWarn}
	def.Store(slog.New(slog.NewTextHandler(os.Stderr, cfg)))
}

// Configure replaces the process-wide logger. Diagnostics always go to
// stderr; stdout is reserved for image bytes.
func Configure(opts Options) {
	cfg := &slog.HandlerOptions{Level: parseLevel(opts.Level)}
	var h slog.Handler
	if opts.JSON {
		h = slog.NewJSONHandler(os.Stderr, cfg)
	} else {
		h = slog.NewTextHandler(os.Stderr, cfg)
	}
	def.Store(slog.New(h))
}

// InitFromEnv applies IMGMIN_LOG_LEVEL / IMGMIN_LOG_JSON, keeping the warn
// default when unset.
func InitFromEnv() {
	lvl := os.Getenv("IMGMIN_LOG_LEVEL")
	if lvl == "" {
		return
	}
	json := strings.EqualFold(strings.TrimSpace(os.Getenv("IMGMIN_LOG_JSON")), "true")
	Configure(Options{Level: lvl, JSON: json})
}

// L returns the current process-wide logger.
func L() *slog.Logger {
	l, _ := def.Load().(*slog.Logger)
	return l
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
