package workers

import (
	"content-repo/contract"
	"content-repo/domain/upload"
	"content-repo/services"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

// Ensure *UploadResumer implements the contract.Worker interface at compile time.
var _ contract.Worker = (*UploadResumer)(nil)

// UploadResumer finishes every pending upload of a manager, one goroutine per
// upload id, at most parallelism at a time. Uploads are independent: one
// failing does not stop the others.
type UploadResumer struct {
	manager     services.IUploadManager
	parallelism int
	progress    func(uploadID string) contract.ProgressFunc
	log         *slog.Logger
}

func NewUploadResumer(
	manager services.IUploadManager,
	parallelism int,
	progress func(uploadID string) contract.ProgressFunc,
	log *slog.Logger,
) *UploadResumer {
	return &UploadResumer{
		manager:     manager,
		parallelism: max(parallelism, 1),
		progress:    progress,
		log:         log,
	}
}

func (w *UploadResumer) Run(ctx context.Context) error {
	_, err := w.Resume(ctx)
	return err
}

// Resume transfers every unfinished, idle upload and returns the ids that completed.
func (w *UploadResumer) Resume(ctx context.Context) ([]string, error) {
	pending := lo.Filter(w.manager.ListUploads(), func(t upload.Tracker, _ int) bool {
		return !t.IsFinishedUploading && !t.IsRunning
	})
	w.log.Debug("Resuming pending uploads", "count", len(pending), "parallelism", w.parallelism, "started_at", time.Now())

	var (
		g         errgroup.Group
		mu        sync.Mutex
		completed []string
		failures  []error
	)
	g.SetLimit(w.parallelism)

	for _, t := range pending {
		if ctx.Err() != nil {
			break
		}
		uploadID := t.UploadID
		g.Go(func() error {
			var progress contract.ProgressFunc
			if w.progress != nil {
				progress = w.progress(uploadID)
			}
			err := w.manager.Upload(ctx, uploadID, progress)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				w.log.Warn("Failed to resume upload", "upload_id", uploadID, "error", err)
				failures = append(failures, fmt.Errorf("upload %s: %w", uploadID, err))
				return nil
			}
			completed = append(completed, uploadID)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		failures = append(failures, err)
	}
	return completed, errors.Join(failures...)
}
