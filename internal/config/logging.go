package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"
)

const (
	logFilePrefix = "medchain-"
	// Lexical order of this layout is chronological order
	logFileLayout = "2006-01-02T15-04-05"
)

// SetupLogFile opens medchain-<timestamp>.log under dir and prunes the
// directory down to the newest maxFiles logs. maxFiles <= 0 keeps every file.
// The caller owns the returned file.
func SetupLogFile(dir string, maxFiles int) (*os.File, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	name := filepath.Join(dir, logFilePrefix+time.Now().Format(logFileLayout)+".log")
	// Logs carry record ids, so they are not world readable
	f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	if maxFiles > 0 {
		if err := pruneLogs(dir, maxFiles); err != nil {
			// Not fatal: the new file is already open
			fmt.Fprintf(os.Stderr, "warning: prune old logs: %v\n", err)
		}
	}
	return f, nil
}

func pruneLogs(dir string, keep int) error {
	logs, err := filepath.Glob(filepath.Join(dir, logFilePrefix+"*.log"))
	if err != nil {
		return err
	}
	if len(logs) <= keep {
		return nil
	}

	slices.Sort(logs)
	for _, old := range logs[:len(logs)-keep] {
		if err := os.Remove(old); err != nil {
			return fmt.Errorf("remove %s: %w", old, err)
		}
	}
	return nil
}
