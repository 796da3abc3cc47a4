package utils

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

const orphanMinAge = time.Hour

// StartOrphanSweeper launches a background goroutine that periodically
// deletes stale bare originals from the gallery directory. A bare original
// (no -resized suffix) only survives a crash between saving the upload and
// normalizing it; the upload pipeline removes them itself on every
// ordinary path. Best-effort, failures are logged.
func StartOrphanSweeper(galleryDir string, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	go func() {
		for {
			// Sleep first to avoid racing immediately at startup
			time.Sleep(interval)
			sweepOrphans(galleryDir)
		}
	}()
}

func sweepOrphans(galleryDir string) {
	entries, err := os.ReadDir(galleryDir)
	if err != nil {
		if Sugar != nil {
			Sugar.Warnf("orphan sweeper read dir failed: %v", err)
		}
		return
	}
	cutoff := time.Now().Add(-orphanMinAge)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		base := strings.TrimSuffix(name, filepath.Ext(name))
		if strings.HasSuffix(base, "-resized") {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(galleryDir, name)); err != nil {
			if Sugar != nil {
				Sugar.Warnf("orphan sweeper remove %s failed: %v", name, err)
			}
		} else if Sugar != nil {
			Sugar.Infof("orphan sweeper removed stale original %s", name)
		}
	}
}
