package archive

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jcoeder/video-archive/internal/db"
)

// ExportName returns the download filename for an export generated now.
func ExportName(now time.Time) string {
	return fmt.Sprintf("archive_%s.zip", now.Format("20060102-150405"))
}

// Exporter streams zip archives of an owner's original files.
type Exporter struct {
	dbc *db.DatabaseConnection
}

func NewExporter(dbc *db.DatabaseConnection) *Exporter {
	return &Exporter{dbc: dbc}
}

// WriteZip writes all of the owner's original files into w as a zip
// archive. Originals missing on disk are skipped with a log line rather
// than failing the whole export; the reconciliation sweep owns flagging
// those.
func (e *Exporter) WriteZip(ctx context.Context, owner *db.User, w io.Writer) error {
	videos, err := e.dbc.Queries(ctx).ListVideosByOwner(ctx, db.ListVideosParams{UserID: owner.ID})
	if err != nil {
		return fmt.Errorf("list videos: %w", err)
	}

	zw := zip.NewWriter(w)
	seen := make(map[string]int)

	for _, video := range videos {
		if ctx.Err() != nil {
			zw.Close()
			return ctx.Err()
		}
		if err := addOriginal(zw, video, seen); err != nil {
			zw.Close()
			return err
		}
	}
	return zw.Close()
}

func addOriginal(zw *zip.Writer, video *db.Video, seen map[string]int) error {
	src, err := os.Open(video.OriginalPath)
	if err != nil {
		slog.Warn("Skipping missing original in export", "video", db.UUIDString(video.ID), "error", err)
		return nil
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return fmt.Errorf("stat original: %w", err)
	}

	header := &zip.FileHeader{
		Name:     entryName(filepath.Base(video.OriginalPath), seen),
		Method:   zip.Deflate,
		Modified: info.ModTime(),
	}
	dest, err := zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("create zip entry: %w", err)
	}
	if _, err := io.Copy(dest, src); err != nil {
		return fmt.Errorf("write zip entry: %w", err)
	}
	return nil
}

// entryName de-duplicates basenames inside the archive. Two videos with
// the same sanitized filename would otherwise collide.
func entryName(base string, seen map[string]int) string {
	n := seen[base]
	seen[base] = n + 1
	if n == 0 {
		return base
	}
	ext := filepath.Ext(base)
	stem := base[:len(base)-len(ext)]
	return fmt.Sprintf("%s-%d%s", stem, n, ext)
}
