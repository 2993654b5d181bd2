package cache

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Pruner deletes expired entries from a file cache directory. Expired
// entries already read as misses; pruning just reclaims the disk space.
type Pruner struct {
	dir string
	ttl time.Duration
	log *slog.Logger
}

// NewPruner creates a pruner for a file cache directory.
func NewPruner(dir string, ttl time.Duration, log *slog.Logger) *Pruner {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Pruner{dir: dir, ttl: ttl, log: log}
}

// Start runs the pruner loop until the context is cancelled.
func (p *Pruner) Start(ctx context.Context) {
	// Check at 10% of the TTL, clamped to [1m, 1h].
	interval := min(p.ttl/10, 1*time.Hour)
	interval = max(interval, 1*time.Minute)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	p.Prune()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Prune()
		}
	}
}

// Prune removes cache files older than the TTL, returning how many went.
func (p *Pruner) Prune() int {
	entries, err := os.ReadDir(p.dir)
	if err != nil {
		p.log.Warn("Failed to read cache dir", "dir", p.dir, "error", err)
		return 0
	}

	cutoff := time.Now().Add(-p.ttl)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(p.dir, entry.Name())); err != nil {
			p.log.Warn("Failed to remove expired cache file", "file", entry.Name(), "error", err)
			continue
		}
		removed++
	}

	if removed > 0 {
		p.log.Debug("Pruned expired cache entries", "count", removed)
	}
	return removed
}
