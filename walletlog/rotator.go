package walletlog

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jrick/logrotate/rotator"
)

// logWriter implements btclog.Writer by fanning writes out to stdout and a
// rotating log file, matching the pattern used across the btcsuite/abesuite
// daemon family.
type logWriter struct {
	rotator *rotator.Rotator
}

func (w *logWriter) Write(p []byte) (int, error) {
	os.Stdout.Write(p)
	return w.rotator.Write(p)
}

// InitLogRotator initializes a rotating log file at logFile and installs it
// as the shared logging Backend. maxRolls is the number of historical log
// files to retain.
func InitLogRotator(logFile string, maxRolls int) error {
	logDir := filepath.Dir(logFile)
	if err := os.MkdirAll(logDir, 0700); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	r, err := rotator.New(logFile, 10*1024, false, maxRolls)
	if err != nil {
		return fmt.Errorf("failed to create file rotator: %w", err)
	}
	NewBackend(&logWriter{rotator: r})
	return nil
}
