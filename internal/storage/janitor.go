// Package storage handles retention of assembled audio files.
package storage

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/LuckVd/AIVoice/internal/observability"
)

// Janitor removes assembled audio files that outlive their retention
// window. Scratch directories are cleaned by the pipeline itself; this
// only sweeps the delivery directory.
type Janitor struct {
	dir      string
	ttl      time.Duration
	interval time.Duration
	log      zerolog.Logger
}

// NewJanitor creates a janitor for dir with the given retention window.
func NewJanitor(dir string, ttl, interval time.Duration) *Janitor {
	return &Janitor{
		dir:      dir,
		ttl:      ttl,
		interval: interval,
		log:      observability.GetLogger().With().Str("component", "janitor").Logger(),
	}
}

// Run sweeps on a fixed interval until the context is cancelled. An
// immediate first sweep clears anything left over from a previous run.
func (j *Janitor) Run(ctx context.Context) {
	j.sweep()

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.sweep()
		}
	}
}

// sweep removes expired files and reports how many were deleted.
func (j *Janitor) sweep() int {
	cutoff := time.Now().Add(-j.ttl)
	removed := 0

	entries, err := os.ReadDir(j.dir)
	if err != nil {
		if !os.IsNotExist(err) {
			j.log.Warn().Err(err).Str("dir", j.dir).Msg("retention sweep failed")
		}
		return 0
	}

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

		path := filepath.Join(j.dir, entry.Name())
		if err := os.Remove(path); err != nil {
			j.log.Warn().Err(err).Str("path", path).Msg("removing expired audio")
			continue
		}
		removed++
	}

	if removed > 0 {
		j.log.Info().Int("removed", removed).Str("dir", j.dir).Msg("retention sweep complete")
	}
	return removed
}
