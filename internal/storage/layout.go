package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jcoeder/video-archive/pkg/utils/filename"
)

// Layout resolves paths inside an owner's storage namespace. Namespaces
// are keyed by the owner's stable storage id, never the mutable
// username, so renames cannot leak into file paths.
type Layout struct {
	UploadRoot    string
	ThumbnailRoot string
}

// NewLayout creates a layout rooted at the configured upload and
// thumbnail directories.
func NewLayout(uploadRoot, thumbnailRoot string) *Layout {
	return &Layout{UploadRoot: uploadRoot, ThumbnailRoot: thumbnailRoot}
}

// OwnerUploadDir returns the uploads namespace for an owner.
func (l *Layout) OwnerUploadDir(storageID string) string {
	return filepath.Join(l.UploadRoot, storageID)
}

// OwnerThumbnailDir returns the thumbnails namespace for an owner.
func (l *Layout) OwnerThumbnailDir(storageID string) string {
	return filepath.Join(l.ThumbnailRoot, storageID)
}

// EnsureOwnerDirs creates both namespace directories for an owner.
func (l *Layout) EnsureOwnerDirs(storageID string) error {
	if err := os.MkdirAll(l.OwnerUploadDir(storageID), 0o755); err != nil {
		return fmt.Errorf("storage: create upload namespace: %w", err)
	}
	if err := os.MkdirAll(l.OwnerThumbnailDir(storageID), 0o755); err != nil {
		return fmt.Errorf("storage: create thumbnail namespace: %w", err)
	}
	return nil
}

// RemoveOwnerDirs deletes both namespace directories for an owner,
// including all archived files. Used by admin cascade delete.
func (l *Layout) RemoveOwnerDirs(storageID string) error {
	if err := os.RemoveAll(l.OwnerUploadDir(storageID)); err != nil {
		return fmt.Errorf("storage: remove upload namespace: %w", err)
	}
	if err := os.RemoveAll(l.OwnerThumbnailDir(storageID)); err != nil {
		return fmt.Errorf("storage: remove thumbnail namespace: %w", err)
	}
	return nil
}

// VideoPaths holds the resolved artifact paths for one archived video.
type VideoPaths struct {
	Original  string
	Web       string
	Thumbnail string
}

// PathsFor resolves the role-prefixed artifact paths for a source
// filename inside an owner's namespaces. The source name is sanitized
// before use; stamp is the video's unique name component, so two
// uploads of the same filename never collide on disk.
func (l *Layout) PathsFor(storageID, stamp, sourceName string) VideoPaths {
	return VideoPaths{
		Original:  filepath.Join(l.OwnerUploadDir(storageID), filename.OriginalName(stamp, sourceName)),
		Web:       filepath.Join(l.OwnerUploadDir(storageID), filename.WebName(stamp, sourceName)),
		Thumbnail: filepath.Join(l.OwnerThumbnailDir(storageID), filename.ThumbnailName(stamp, sourceName)),
	}
}

// MoveFile moves src to dest, falling back to copy+delete when rename
// crosses filesystems (spool dirs often live on a different volume).
func MoveFile(src, dest string) error {
	if err := os.Rename(src, dest); err == nil {
		return nil
	}
	if err := CopyFile(src, dest); err != nil {
		return err
	}
	return os.Remove(src)
}

// CopyFile copies src to dest.
func CopyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("storage: open source: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("storage: create dest: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		_ = os.Remove(dest)
		return fmt.Errorf("storage: copy: %w", err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dest)
		return fmt.Errorf("storage: close dest: %w", err)
	}
	return nil
}

// FileExists reports whether path refers to an existing regular file.
func FileExists(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular()
}
