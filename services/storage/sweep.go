package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"visapoint/utils"
)

// SweepStale removes files in dir last modified before now-maxAge. Local
// previews of wizard sessions that expired without submitting end up here.
// A missing dir is not an error.
func SweepStale(dir string, maxAge time.Duration, now time.Time) (int, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read upload dir: %w", err)
	}

	cutoff := now.Add(-maxAge)
	removed := 0
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		info, err := e.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		p := filepath.Join(dir, e.Name())
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			utils.GetLogger().Warn("Failed to remove stale upload", zap.String("path", p), zap.Error(err))
			continue
		}
		removed++
	}
	return removed, nil
}
