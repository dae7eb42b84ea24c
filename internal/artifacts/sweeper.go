package artifacts

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/transcodehub/transcodebot/internal/config"
	"github.com/transcodehub/transcodebot/pkg/logger"
)

// Sweeper periodically removes orphaned temp files left behind by a
// crash. It is a backstop, not a substitute for scoped release.
type Sweeper struct {
	dir      string
	maxAge   time.Duration
	interval time.Duration
	logger   logger.Logger
}

func NewSweeper(store *Store, cfg *config.Config, log logger.Logger) *Sweeper {
	interval := cfg.Files.SweepAge / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	return &Sweeper{
		dir:      store.Dir(),
		maxAge:   cfg.Files.SweepAge,
		interval: interval,
		logger:   log,
	}
}

func (w *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n, err := w.sweep(); err != nil {
				w.logger.Warnf("artifact sweep failed: %v", err)
			} else if n > 0 {
				w.logger.Infof("artifact sweep removed %d orphaned files", n)
			}
		}
	}
}

func (w *Sweeper) sweep() (int, error) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return 0, err
	}
	cutoff := time.Now().Add(-w.maxAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(w.dir, entry.Name())); err == nil {
			removed++
		}
	}
	return removed, nil
}
