package logging

import (
	"os"
	"path/filepath"
)

// DefaultLogDir returns the log directory: WIKIGEN_LOG_DIR when set,
// otherwise ~/.wikigen/logs/. Falls back to the temp directory if
// the home directory is unavailable.
func DefaultLogDir() string {
	if dir := os.Getenv("WIKIGEN_LOG_DIR"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".wikigen", "logs")
	}
	return filepath.Join(home, ".wikigen", "logs")
}

// DefaultLogPath returns the default log file path.
func DefaultLogPath() string {
	return filepath.Join(DefaultLogDir(), "wikigen.log")
}

// EnsureLogDir creates the log directory if it doesn't exist.
func EnsureLogDir() error {
	return os.MkdirAll(DefaultLogDir(), 0o755)
}
