// Package eventlog writes shepherd's append-only event log. Log output
// goes to a file rather than stderr so the TUI never gets corrupted by log
// lines, and the file is kept capped so it can be left unattended forever.
package eventlog

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ehayes2000/shepherd/internal/config"
)

// MaxLines is the cap on retained log lines.
const MaxLines = 1000

// FileName is the log file's name under the config directory.
const FileName = "events.log"

// Path returns the event log path.
func Path() (string, error) {
	dir, err := config.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName), nil
}

// Handler is a slog.Handler appending "[YYYY-MM-DD HH:MM:SS] [LEVEL]
// message" lines to the event log, trimming the file to MaxLines as it
// goes.
type Handler struct {
	mu    *sync.Mutex
	path  string
	level slog.Level
	attrs []slog.Attr

	// appendsSinceTrim counts writes so the O(file) trim runs only
	// periodically instead of on every line.
	appendsSinceTrim *int
}

// NewHandler creates a Handler writing to path at the given level. The file
// is trimmed on open.
func NewHandler(path string, level slog.Level) *Handler {
	h := &Handler{
		mu:               &sync.Mutex{},
		path:             path,
		level:            level,
		appendsSinceTrim: new(int),
	}
	h.mu.Lock()
	_ = trim(path)
	h.mu.Unlock()
	return h
}

// Enabled implements slog.Handler.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

// Handle implements slog.Handler.
func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] [%s] %s", r.Time.Format("2006-01-02 15:04:05"), r.Level, r.Message)

	for _, a := range h.attrs {
		fmt.Fprintf(&sb, " %s=%v", a.Key, a.Value)
	}
	r.Attrs(func(a slog.Attr) bool {
		fmt.Fprintf(&sb, " %s=%v", a.Key, a.Value)
		return true
	})
	sb.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	f, err := os.OpenFile(h.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	_, werr := f.WriteString(sb.String())
	cerr := f.Close()

	*h.appendsSinceTrim++
	if *h.appendsSinceTrim >= MaxLines/10 {
		*h.appendsSinceTrim = 0
		_ = trim(h.path)
	}

	if werr != nil {
		return werr
	}
	return cerr
}

// WithAttrs implements slog.Handler.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &clone
}

// WithGroup implements slog.Handler. Groups are flattened; the log format
// is a flat line, not structured JSON.
func (h *Handler) WithGroup(string) slog.Handler {
	return h
}

// trim rewrites the file to its last MaxLines lines. Caller holds mu.
func trim(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) <= MaxLines {
		return nil
	}

	kept := strings.Join(lines[len(lines)-MaxLines:], "\n") + "\n"
	return os.WriteFile(path, []byte(kept), 0600)
}

// Setup installs the event log as the default slog destination, with the
// level taken from SHEPHERD_LOG_LEVEL ("debug" enables debug lines).
func Setup() (*slog.Logger, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}

	level := slog.LevelInfo
	if os.Getenv("SHEPHERD_LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}

	logger := slog.New(NewHandler(path, level))
	slog.SetDefault(logger)
	return logger, nil
}
