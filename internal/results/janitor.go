package results

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Janitor periodically removes uploads and results older than maxAge.
type Janitor struct {
	store    *Store
	maxAge   time.Duration
	interval time.Duration
	logger   *slog.Logger

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewJanitor(s *Store, maxAge, interval time.Duration, logger *slog.Logger) *Janitor {
	return &Janitor{
		store:    s,
		maxAge:   maxAge,
		interval: interval,
		logger:   logger,
		stopCh:   make(chan struct{}),
	}
}

func (j *Janitor) Start(ctx context.Context) {
	j.wg.Add(1)
	go j.loop(ctx)
}

func (j *Janitor) Stop() {
	j.stopOnce.Do(func() { close(j.stopCh) })
	j.wg.Wait()
}

func (j *Janitor) loop(ctx context.Context) {
	defer j.wg.Done()
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-j.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.Sweep(time.Now())
		}
	}
}

// Sweep deletes files last modified before now-maxAge and returns how many
// were removed.
func (j *Janitor) Sweep(now time.Time) int {
	cutoff := now.Add(-j.maxAge)
	removed := 0
	for _, dir := range []string{j.store.uploadDir, j.store.resultsDir} {
		entries, err := os.ReadDir(dir)
		if err != nil {
			j.logger.Error("failed to list files for cleanup", "dir", dir, "error", err)
			continue
		}
		for _, e := range entries {
			if !e.Type().IsRegular() {
				continue
			}
			info, err := e.Info()
			if err != nil || !info.ModTime().Before(cutoff) {
				continue
			}
			path := filepath.Join(dir, e.Name())
			if err := os.Remove(path); err != nil {
				j.logger.Warn("failed to remove expired file", "path", path, "error", err)
				continue
			}
			removed++
		}
	}
	if removed > 0 {
		j.logger.Info("expired files removed", "count", removed, "older_than", cutoff)
	}
	return removed
}
