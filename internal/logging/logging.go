package logging

import (
	"fmt"
	"io"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
)

// Setup builds the process logger and installs it as slog's default.
// With a path, output is appended to that file via tea.LogToFile so it never
// touches the terminal the UI is drawing on. Without one, output goes to
// fallback (io.Discard when nil). The returned func releases the file.
func Setup(path string, debug bool, fallback io.Writer) (*slog.Logger, func() error, error) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var (
		w       io.Writer = fallback
		closeFn           = func() error { return nil }
	)
	if w == nil {
		w = io.Discard
	}
	if path != "" {
		f, err := tea.LogToFile(path, "versefinder")
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w = f
		closeFn = f.Close
	}

	logger := slog.New(slog.NewTextHandler(w, opts))
	slog.SetDefault(logger)
	return logger, closeFn, nil
}
