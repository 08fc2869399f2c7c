package debug

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"
)

var (
	file     *os.File
	mu       sync.Mutex
	enabled  bool
	logger   = log.NewWithOptions(io.Discard, log.Options{Level: log.InfoLevel})
	counters = make(map[string]int)
)

// DefaultPath returns ~/.config/go-mackie/debug.log
func DefaultPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".config", "go-mackie", "debug.log")
}

// Enable starts logging to path (DefaultPath when empty)
func Enable(path string) error {
	mu.Lock()
	defer mu.Unlock()

	if enabled {
		return nil
	}
	if path == "" {
		path = DefaultPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}

	file = f
	enabled = true
	level := logger.GetLevel()
	logger = log.NewWithOptions(f, log.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.000",
	})
	logger.Info("debug logging started")

	return nil
}

// EnableWriter logs to w instead of a file
func EnableWriter(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	level := logger.GetLevel()
	logger = log.NewWithOptions(w, log.Options{Level: level})
	enabled = true
}

// Disable stops debug logging
func Disable() {
	mu.Lock()
	defer mu.Unlock()

	if file != nil {
		file.Close()
		file = nil
	}
	enabled = false
	logger = log.NewWithOptions(io.Discard, log.Options{Level: logger.GetLevel()})
}

// SetLevel sets the minimum level ("debug", "info", "warn", "error")
func SetLevel(level string) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	mu.Lock()
	logger.SetLevel(lvl)
	mu.Unlock()
}

// Logger returns the structured logger
func Logger() *log.Logger {
	mu.Lock()
	defer mu.Unlock()
	return logger
}

// Log writes a debug message under a category
func Log(category, format string, args ...any) {
	mu.Lock()
	on, l := enabled, logger
	mu.Unlock()

	if !on {
		return
	}
	l.Debug(fmt.Sprintf(format, args...), "cat", category)
}

// LogEvery logs only every N calls (use for high-frequency events)
func LogEvery(n int, category, format string, args ...any) {
	mu.Lock()
	key := category + format
	counters[key]++
	count := counters[key]
	mu.Unlock()

	if count%n == 0 {
		Log(category, format+" (every %d, count=%d)", append(args, n, count)...)
	}
}
