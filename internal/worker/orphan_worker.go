package worker

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

const (
	// OrphanGracePeriod protects files whose database row is still being
	// written. Anything younger than this is never collected.
	OrphanGracePeriod = 15 * time.Minute
)

// FileKeyLister supplies the set of file keys the database references.
// Satisfied by repository.SubmissionRepository.
type FileKeyLister interface {
	ListFileKeys(ctx context.Context) (map[string]struct{}, error)
}

// OrphanWorker reconciles the upload directory against the submissions
// table and removes files no row references. Covers the crash window
// between a successful file write and a failed row insert.
type OrphanWorker struct {
	submissions FileKeyLister
	uploadDir   string
	interval    time.Duration
	log         zerolog.Logger
}

func NewOrphanWorker(submissions FileKeyLister, uploadDir string, interval time.Duration, log zerolog.Logger) *OrphanWorker {
	return &OrphanWorker{
		submissions: submissions,
		uploadDir:   uploadDir,
		interval:    interval,
		log:         log.With().Str("component", "orphan_worker").Logger(),
	}
}

// ----------------------------------------------------------------
// Worker loop
// ----------------------------------------------------------------

func (w *OrphanWorker) Start(ctx context.Context) {
	w.log.Info().Dur("interval", w.interval).Msg("OrphanWorker started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested")
			return
		case <-ticker.C:
			if err := w.sweep(ctx); err != nil {
				w.log.Error().Err(err).Msg("Sweep failed")
			}
		}
	}
}

// sweep walks the upload directory once and removes unreferenced files
// older than the grace period.
func (w *OrphanWorker) sweep(ctx context.Context) error {
	known, err := w.submissions.ListFileKeys(ctx)
	if err != nil {
		return err
	}

	cutoff := time.Now().Add(-OrphanGracePeriod)
	removed := 0

	err = filepath.WalkDir(w.uploadDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// The root not existing yet just means nothing was uploaded.
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(w.uploadDir, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if _, ok := known[key]; ok {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		if info.ModTime().After(cutoff) {
			return nil
		}

		if err := os.Remove(path); err != nil {
			w.log.Warn().Err(err).Str("key", key).Msg("Orphan removal failed")
			return nil
		}
		removed++
		w.log.Info().Str("key", key).Msg("Orphan file removed")
		return nil
	})
	if err != nil {
		return err
	}

	if removed > 0 {
		w.log.Info().Int("removed", removed).Msg("Sweep completed")
	}
	return nil
}
