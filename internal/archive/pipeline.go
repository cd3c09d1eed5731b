package archive

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/jcoeder/video-archive/internal/config"
	"github.com/jcoeder/video-archive/internal/db"
	"github.com/jcoeder/video-archive/internal/metrics"
	"github.com/jcoeder/video-archive/internal/storage"
	"github.com/jcoeder/video-archive/internal/tasks"
	"github.com/jcoeder/video-archive/pkg/ffmpeg"
	"github.com/jcoeder/video-archive/pkg/utils/filename"
)

// TaskKindTranscribe labels transcription work on the task queue.
const TaskKindTranscribe = "transcribe"

// Upload is one file of an upload batch. Open is called at most once.
type Upload struct {
	Name string
	Size int64
	Open func() (io.ReadCloser, error)
}

// Pipeline ingests uploaded files: hash, dedup, persist the original,
// derive the web copy and thumbnail, record metadata, and hand off
// transcription to the background queue.
type Pipeline struct {
	dbc         *db.DatabaseConnection
	layout      *storage.Layout
	conf        *config.Config
	queue       *tasks.Queue
	transcriber *Transcriber

	dedup     func(ctx context.Context, owner pgtype.UUID, hash string) (bool, error)
	transcode func(ctx context.Context, original, web string) error
	thumbnail func(ctx context.Context, original, thumb string) error
	record    func(ctx context.Context, params db.InsertVideoParams, categories []string) (*db.Video, error)
}

// NewPipeline wires the ingestion pipeline. transcriber may be nil when
// transcription is disabled.
func NewPipeline(dbc *db.DatabaseConnection, layout *storage.Layout, conf *config.Config, queue *tasks.Queue, transcriber *Transcriber) *Pipeline {
	p := &Pipeline{
		dbc:         dbc,
		layout:      layout,
		conf:        conf,
		queue:       queue,
		transcriber: transcriber,
	}
	p.dedup = func(ctx context.Context, owner pgtype.UUID, hash string) (bool, error) {
		return p.dbc.Queries(ctx).VideoExistsByHash(ctx, owner, hash)
	}
	p.transcode = p.transcodeWeb
	p.thumbnail = p.extractThumbnail
	p.record = p.recordVideo
	return p
}

// Ingest processes a batch of uploads for one owner, serially and in
// submission order. Notes and categories apply to every file of the
// batch. One file's failure never aborts its siblings; the returned
// slice carries one status entry per upload.
func (p *Pipeline) Ingest(ctx context.Context, owner *db.User, uploads []Upload, notes string, categories []string) []FileStatus {
	statuses := make([]FileStatus, 0, len(uploads))
	for _, upl := range uploads {
		st := p.ingestOne(ctx, owner, upl, notes, categories)
		statuses = append(statuses, st)

		switch st.Status {
		case statusUploaded:
			metrics.IngestFilesTotal.WithLabelValues("uploaded").Inc()
		case statusDuplicate:
			metrics.IngestFilesTotal.WithLabelValues("duplicate").Inc()
		default:
			metrics.IngestFilesTotal.WithLabelValues("failed").Inc()
		}
	}
	return statuses
}

func (p *Pipeline) ingestOne(ctx context.Context, owner *db.User, upl Upload, notes string, categories []string) FileStatus {
	name := filename.Sanitize(upl.Name, 120)
	if name == "" {
		return failedStatus(upl.Name, "missing filename")
	}

	storageID := db.UUIDString(owner.StorageID)
	if err := p.layout.EnsureOwnerDirs(storageID); err != nil {
		slog.Error("Could not create storage namespace", "owner", owner.Username, "error", err)
		return failedStatus(upl.Name, "storage unavailable")
	}

	hash, spool, err := p.spoolUpload(upl, storageID)
	if err != nil {
		slog.Error("Could not spool upload", "file", upl.Name, "error", err)
		return failedStatus(upl.Name, "could not read upload")
	}
	defer os.Remove(spool) // no-op once moved into place

	exists, err := p.dedup(ctx, owner.ID, hash)
	if err != nil {
		slog.Error("Dedup lookup failed", "file", upl.Name, "error", err)
		return failedStatus(upl.Name, "dedup lookup failed")
	}
	if exists {
		return duplicateStatus(upl.Name)
	}

	id := db.NewUUID()
	paths := p.layout.PathsFor(storageID, db.UUIDString(id), name)
	if err := storage.MoveFile(spool, paths.Original); err != nil {
		slog.Error("Could not persist original", "file", upl.Name, "error", err)
		return failedStatus(upl.Name, "could not persist original")
	}

	if err := p.transcode(ctx, paths.Original, paths.Web); err != nil {
		os.Remove(paths.Original)
		slog.Error("Transcode failed", "file", upl.Name, "error", err)
		return failedStatus(upl.Name, "transcode failed")
	}

	thumbPath := paths.Thumbnail
	if err := p.thumbnail(ctx, paths.Original, paths.Thumbnail); err != nil {
		// Best effort: the archive entry is still useful without one.
		metrics.ThumbnailFailuresTotal.Inc()
		slog.Warn("Thumbnail extraction failed", "file", upl.Name, "error", err)
		thumbPath = ""
	}

	size, err := fileSize(paths.Original)
	if err != nil {
		p.cleanupArtifacts(paths, thumbPath)
		return failedStatus(upl.Name, "could not stat original")
	}

	video, err := p.record(ctx, db.InsertVideoParams{
		ID:            id,
		UserID:        owner.ID,
		Title:         titleFromName(name),
		OriginalPath:  paths.Original,
		WebPath:       paths.Web,
		ThumbnailPath: thumbPath,
		Notes:         notes,
		FileHash:      hash,
		FileSize:      size,
	}, categories)
	if db.IsUniqueViolation(err) {
		// A concurrent upload of identical content committed first. Its
		// row points at the winner's own paths, so ours are orphans no
		// record will ever reference. Remove them.
		p.cleanupArtifacts(paths, thumbPath)
		return duplicateStatus(upl.Name)
	}
	if err != nil {
		p.cleanupArtifacts(paths, thumbPath)
		slog.Error("Could not record video", "file", upl.Name, "error", err)
		return failedStatus(upl.Name, "could not record metadata")
	}

	p.enqueueTranscription(video.ID)
	return uploadedStatus(upl.Name, db.UUIDString(video.ID))
}

// spoolUpload streams the upload into a temp file inside the owner's
// namespace (so the final move is a cheap rename) and hashes it on the
// way through. It returns the content hash and the spool path.
func (p *Pipeline) spoolUpload(upl Upload, storageID string) (string, string, error) {
	src, err := upl.Open()
	if err != nil {
		return "", "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	tmp, err := os.CreateTemp(p.layout.OwnerUploadDir(storageID), ".upload-*")
	if err != nil {
		return "", "", fmt.Errorf("create spool file: %w", err)
	}

	hash, err := storage.HashReader(io.TeeReader(src, tmp))
	closeErr := tmp.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return "", "", fmt.Errorf("spool upload: %w", err)
	}
	return hash, tmp.Name(), nil
}

func (p *Pipeline) transcodeWeb(ctx context.Context, original, web string) error {
	transcodeCtx := ctx
	if timeout := p.conf.TranscodeTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		transcodeCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	err := ffmpeg.TranscodeWeb(transcodeCtx, original, web, nil)
	metrics.TranscodeDuration.Observe(time.Since(start).Seconds())
	return err
}

func (p *Pipeline) extractThumbnail(ctx context.Context, original, thumb string) error {
	thumbCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()
	return ffmpeg.ExtractThumbnail(thumbCtx, original, thumb, nil)
}

// recordVideo inserts the metadata row and its category links in one
// transaction.
func (p *Pipeline) recordVideo(ctx context.Context, params db.InsertVideoParams, categories []string) (*db.Video, error) {
	qtx, tx, err := p.dbc.NewWithTX(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	video, err := qtx.InsertVideo(ctx, params)
	if err != nil {
		return nil, err
	}

	for _, name := range categories {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		cat, err := qtx.GetOrCreateCategory(ctx, params.UserID, name)
		if err != nil {
			return nil, err
		}
		if err := qtx.LinkVideoCategory(ctx, video.ID, cat.ID); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return video, nil
}

func (p *Pipeline) enqueueTranscription(videoID pgtype.UUID) {
	if p.transcriber == nil || !p.conf.TranscribeEnabled {
		return
	}
	id := db.UUIDString(videoID)
	if _, err := p.queue.Enqueue(TaskKindTranscribe, id, func(ctx context.Context) error {
		return p.transcriber.Process(ctx, videoID)
	}); err != nil {
		slog.Warn("Could not enqueue transcription", "video", id, "error", err)
	}
}

// RestartTranscription re-enqueues transcription for an existing video.
// The running guard in the transcriber makes a concurrent restart a
// no-op.
func (p *Pipeline) RestartTranscription(videoID pgtype.UUID) error {
	if p.transcriber == nil || !p.conf.TranscribeEnabled {
		return fmt.Errorf("transcription is disabled")
	}
	_, err := p.queue.Enqueue(TaskKindTranscribe, db.UUIDString(videoID), func(ctx context.Context) error {
		return p.transcriber.Process(ctx, videoID)
	})
	return err
}

func (p *Pipeline) cleanupArtifacts(paths storage.VideoPaths, thumbPath string) {
	os.Remove(paths.Web)
	os.Remove(paths.Original)
	if thumbPath != "" {
		os.Remove(thumbPath)
	}
}

func titleFromName(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	if base == "" {
		return name
	}
	return base
}

func fileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}
