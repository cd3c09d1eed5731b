package archive

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/jcoeder/video-archive/internal/db"
	"github.com/jcoeder/video-archive/internal/metrics"
	"github.com/jcoeder/video-archive/internal/storage"
	"github.com/jcoeder/video-archive/pkg/ffmpeg"
)

// ReconcileStore is the slice of the video store the sweep needs.
// *db.Queries satisfies it.
type ReconcileStore interface {
	ListAllVideos(ctx context.Context) ([]*db.Video, error)
	SetVideoExists(ctx context.Context, id pgtype.UUID, exists bool) error
	ClearVideoThumbnail(ctx context.Context, id pgtype.UUID) error
}

// Reconciler is the periodic sweep that detects drift between video
// metadata and the files on disk, and repairs what it can. It adjusts
// liveness flags and derived artifacts only; it never deletes a video
// row.
type Reconciler struct {
	store    ReconcileStore
	conf     configProvider
	interval time.Duration

	transcode func(ctx context.Context, original, web string) error
}

type configProvider interface {
	TranscodeTimeout() time.Duration
}

// NewReconciler wires the sweep. interval <= 0 falls back to one minute.
func NewReconciler(store ReconcileStore, conf configProvider, interval time.Duration) *Reconciler {
	r := &Reconciler{store: store, conf: conf, interval: interval}
	if r.interval <= 0 {
		r.interval = time.Minute
	}
	r.transcode = r.transcodeWeb
	return r
}

// Run loops until ctx is canceled, sweeping once per interval. Each
// sweep is panic-isolated so one bad pass never stops the loop.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	slog.Info("Reconciliation sweep started", "interval", r.interval)
	for {
		select {
		case <-ctx.Done():
			slog.Info("Reconciliation sweep stopped")
			return
		case <-ticker.C:
			r.sweepSafe(ctx)
		}
	}
}

func (r *Reconciler) sweepSafe(ctx context.Context) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("Reconciliation sweep panicked", "panic", rec)
		}
	}()
	if err := r.Sweep(ctx); err != nil {
		slog.Error("Reconciliation sweep failed", "error", err)
	}
}

// Sweep runs one reconciliation pass over every video record.
func (r *Reconciler) Sweep(ctx context.Context) error {
	videos, err := r.store.ListAllVideos(ctx)
	if err != nil {
		return fmt.Errorf("list videos: %w", err)
	}

	for _, video := range videos {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := r.reconcileVideo(ctx, video); err != nil {
			// Degrade to logging: one broken record must not stop the
			// rest of the pass.
			slog.Error("Could not reconcile video", "video", db.UUIDString(video.ID), "error", err)
		}
	}

	metrics.ReconcileSweepsTotal.Inc()
	return nil
}

func (r *Reconciler) reconcileVideo(ctx context.Context, video *db.Video) error {
	q := r.store
	originalOK := storage.FileExists(video.OriginalPath)
	webOK := storage.FileExists(video.WebPath)

	switch {
	case originalOK && webOK:
		if !video.FileExists {
			return q.SetVideoExists(ctx, video.ID, true)
		}
		return nil

	case originalOK && !webOK:
		// Source survived, derived copy lost. Regenerate it.
		if err := r.transcode(ctx, video.OriginalPath, video.WebPath); err != nil {
			return fmt.Errorf("regenerate web copy: %w", err)
		}
		metrics.ReconcileRepairsTotal.WithLabelValues("regenerated_web").Inc()
		slog.Info("Regenerated missing web copy", "video", db.UUIDString(video.ID))
		return q.SetVideoExists(ctx, video.ID, true)

	case !originalOK && webOK:
		// Best-effort backfill so a later delete of the web copy does
		// not lose the content entirely. Not a true original.
		if err := storage.CopyFile(video.WebPath, video.OriginalPath); err != nil {
			return fmt.Errorf("backfill original: %w", err)
		}
		metrics.ReconcileRepairsTotal.WithLabelValues("backfilled_original").Inc()
		slog.Info("Backfilled missing original from web copy", "video", db.UUIDString(video.ID))
		return q.SetVideoExists(ctx, video.ID, true)

	default:
		// Both gone. Derived artifacts must not outlive their source.
		if video.ThumbnailPath.Valid && video.ThumbnailPath.String != "" {
			os.Remove(video.ThumbnailPath.String)
			if err := q.ClearVideoThumbnail(ctx, video.ID); err != nil {
				return fmt.Errorf("clear thumbnail: %w", err)
			}
		}
		if video.FileExists {
			metrics.ReconcileRepairsTotal.WithLabelValues("marked_missing").Inc()
			slog.Warn("Video files missing on disk", "video", db.UUIDString(video.ID))
			return q.SetVideoExists(ctx, video.ID, false)
		}
		return nil
	}
}

func (r *Reconciler) transcodeWeb(ctx context.Context, original, web string) error {
	transcodeCtx := ctx
	if timeout := r.conf.TranscodeTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		transcodeCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return ffmpeg.TranscodeWeb(transcodeCtx, original, web, nil)
}
