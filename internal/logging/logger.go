package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Dir is the project-relative directory holding shipver's run logs
const Dir = ".shipver/logs"

// FileName is the log file inside Dir
const FileName = "release.log"

// Logger appends timestamped lines to .shipver/logs/release.log so an
// operator can see which step a release stopped at and resume by hand.
type Logger struct {
	file *os.File
	now  func() time.Time
}

// New creates (or reuses) the log file under projectDir.
func New(projectDir string) (*Logger, error) {
	logDir := filepath.Join(projectDir, Dir)
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("logging: ensure log dir: %w", err)
	}
	path := filepath.Join(logDir, FileName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logging: open log file: %w", err)
	}
	return &Logger{file: f, now: time.Now}, nil
}

// Path returns the log file location, or "" for a disabled logger
func (l *Logger) Path() string {
	if l == nil || l.file == nil {
		return ""
	}
	return l.file.Name()
}

// Close releases the file handle.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}

// Printf writes a single timestamped line. Multi-line messages are folded
// onto one line so each entry stays greppable.
func (l *Logger) Printf(format string, args ...any) {
	if l == nil || l.file == nil {
		return
	}
	line := fmt.Sprintf(format, args...)
	line = strings.TrimRight(line, "\n")
	line = strings.ReplaceAll(line, "\n", " | ")
	timestamp := l.now().Format(time.RFC3339)
	fmt.Fprintf(l.file, "[%s] %s\n", timestamp, line)
}
