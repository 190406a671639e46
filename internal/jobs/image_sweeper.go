// Package jobs runs background maintenance tasks.
package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mdemena/lists-sharing-sub000/internal/metrics"
	"github.com/mdemena/lists-sharing-sub000/internal/objectstore"
)

// sweepBatch bounds how many URLs are checked per query.
const sweepBatch = 200

// Objects is the object store surface the sweeper needs.
type Objects interface {
	List(ctx context.Context) ([]objectstore.Object, error)
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// ImageReferences reports which image URLs are still used by items.
type ImageReferences interface {
	ImageURLsInUse(ctx context.Context, urls []string) (map[string]bool, error)
}

// ImageSweeper deletes uploaded images that no item references. Uploads
// younger than minAge are kept so an item being edited can still save them.
type ImageSweeper struct {
	objects  Objects
	refs     ImageReferences
	interval time.Duration
	minAge   time.Duration
	now      func() time.Time
}

// NewImageSweeper creates a new sweeper.
func NewImageSweeper(objects Objects, refs ImageReferences, interval, minAge time.Duration) *ImageSweeper {
	return &ImageSweeper{
		objects:  objects,
		refs:     refs,
		interval: interval,
		minAge:   minAge,
		now:      time.Now,
	}
}

// Start runs the sweep loop until ctx is cancelled.
func (s *ImageSweeper) Start(ctx context.Context) {
	slog.Info("image sweeper started", "interval", s.interval, "min_age", s.minAge)

	// Run immediately on start
	if _, err := s.Sweep(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("image sweep failed", "error", err)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("image sweeper stopped")
			return
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("image sweep failed", "error", err)
			}
		}
	}
}

// Sweep deletes orphaned images once and returns how many were removed.
func (s *ImageSweeper) Sweep(ctx context.Context) (int, error) {
	objects, err := s.objects.List(ctx)
	if err != nil {
		return 0, err
	}

	cutoff := s.now().Add(-s.minAge)
	var candidates []objectstore.Object
	for _, o := range objects {
		if o.ModTime.Before(cutoff) {
			candidates = append(candidates, o)
		}
	}

	deleted := 0
	for start := 0; start < len(candidates); start += sweepBatch {
		end := min(start+sweepBatch, len(candidates))
		batch := candidates[start:end]

		urls := make([]string, len(batch))
		for i, o := range batch {
			urls[i] = s.objects.URL(o.Key)
		}

		inUse, err := s.refs.ImageURLsInUse(ctx, urls)
		if err != nil {
			return deleted, err
		}

		for i, o := range batch {
			if ctx.Err() != nil {
				return deleted, ctx.Err()
			}
			if inUse[urls[i]] {
				continue
			}
			if err := s.objects.Delete(ctx, o.Key); err != nil && !errors.Is(err, objectstore.ErrObjectNotFound) {
				slog.Error("failed to delete orphaned image", "key", o.Key, "error", err)
				continue
			}
			deleted++
		}
	}

	if deleted > 0 {
		metrics.RecordSwept(deleted)
		slog.Info("orphaned images deleted", "count", deleted)
	}
	return deleted, nil
}
