// Package debug writes trace lines to an opt-in log file. Stdout carries the
// reports and stderr is reserved for fatal messages, so nothing is logged to
// either.
package debug

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

var (
	mu      sync.Mutex
	logFile *os.File
)

// Init opens path for appending. Calling it again is a no-op until Close.
func Init(path string) error {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		return nil
	}

	f, err := os.OpenFile(filepath.Clean(path), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("opening debug log: %w", err)
	}
	logFile = f
	return nil
}

// Log writes a debug message. It does nothing when Init was not called.
func Log(format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()

	if logFile == nil {
		return
	}
	_, _ = fmt.Fprintf(logFile, "%s "+format+"\n", append([]any{time.Now().Format(time.RFC3339)}, args...)...)
}

// Close closes the debug log file.
func Close() {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
}
