package archive

import (
	"context"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcoeder/video-archive/internal/config"
	"github.com/jcoeder/video-archive/internal/db"
	"github.com/jcoeder/video-archive/internal/storage"
)

func TestStatusMessages(t *testing.T) {
	assert.Equal(t, "Uploaded", uploadedStatus("a.mp4", "id").Status)
	assert.Equal(t, "id", uploadedStatus("a.mp4", "id").VideoID)
	assert.Equal(t, "Duplicate detected", duplicateStatus("a.mp4").Status)
	assert.Equal(t, "Failed: transcode failed", failedStatus("a.mp4", "transcode failed").Status)
}

func TestTitleFromName(t *testing.T) {
	assert.Equal(t, "vacation-2024", titleFromName("vacation-2024.mp4"))
	assert.Equal(t, "clip", titleFromName("clip"))
	assert.Equal(t, ".hidden", titleFromName(".hidden"))
}

func TestSpoolUpload(t *testing.T) {
	layout := storage.NewLayout(t.TempDir(), t.TempDir())
	p := &Pipeline{layout: layout}

	const storageID = "3f2c1f4e-0000-0000-0000-000000000001"
	require.NoError(t, layout.EnsureOwnerDirs(storageID))

	content := "not really a video"
	upl := Upload{
		Name: "clip.mp4",
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(content)), nil
		},
	}

	hash, spool, err := p.spoolUpload(upl, storageID)
	require.NoError(t, err)
	t.Cleanup(func() { os.Remove(spool) })

	want, err := storage.HashReader(strings.NewReader(content))
	require.NoError(t, err)
	assert.Equal(t, want, hash)

	spooled, err := os.ReadFile(spool)
	require.NoError(t, err)
	assert.Equal(t, content, string(spooled))

	// Spool lands in the owner's namespace so the final move is a rename.
	assert.Contains(t, spool, storageID)
}

func TestSpoolUpload_OpenError(t *testing.T) {
	layout := storage.NewLayout(t.TempDir(), t.TempDir())
	p := &Pipeline{layout: layout}

	upl := Upload{
		Name: "clip.mp4",
		Open: func() (io.ReadCloser, error) {
			return nil, os.ErrNotExist
		},
	}
	_, _, err := p.spoolUpload(upl, "owner")
	require.Error(t, err)
}

// testPipeline wires a pipeline whose external steps are stubbed out:
// dedup misses, transcode and thumbnail write their outputs, record
// succeeds. Tests override individual steps.
func testPipeline(t *testing.T) *Pipeline {
	t.Helper()
	p := NewPipeline(nil, storage.NewLayout(t.TempDir(), t.TempDir()), &config.Config{}, nil, nil)
	p.dedup = func(ctx context.Context, owner pgtype.UUID, hash string) (bool, error) {
		return false, nil
	}
	p.transcode = func(ctx context.Context, original, web string) error {
		return os.WriteFile(web, []byte("web"), 0o644)
	}
	p.thumbnail = func(ctx context.Context, original, thumb string) error {
		return os.WriteFile(thumb, []byte("jpg"), 0o644)
	}
	p.record = func(ctx context.Context, params db.InsertVideoParams, categories []string) (*db.Video, error) {
		return &db.Video{ID: params.ID}, nil
	}
	return p
}

func testOwner() *db.User {
	return &db.User{ID: db.NewUUID(), Username: "archivist", StorageID: db.NewUUID()}
}

func textUpload(name, content string) Upload {
	return Upload{
		Name: name,
		Size: int64(len(content)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(content)), nil
		},
	}
}

// listOwnerFiles returns the basenames left in the owner's upload and
// thumbnail directories.
func listOwnerFiles(t *testing.T, p *Pipeline, owner *db.User) []string {
	t.Helper()
	var names []string
	storageID := db.UUIDString(owner.StorageID)
	for _, dir := range []string{p.layout.OwnerUploadDir(storageID), p.layout.OwnerThumbnailDir(storageID)} {
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		for _, e := range entries {
			names = append(names, e.Name())
		}
	}
	return names
}

func TestIngest_StoredNamesCarryVideoID(t *testing.T) {
	p := testPipeline(t)
	owner := testOwner()

	var got db.InsertVideoParams
	p.record = func(ctx context.Context, params db.InsertVideoParams, categories []string) (*db.Video, error) {
		got = params
		return &db.Video{ID: params.ID}, nil
	}

	statuses := p.Ingest(context.Background(), owner, []Upload{textUpload("clip.mp4", "content A")}, "", nil)
	require.Len(t, statuses, 1)
	require.Equal(t, statusUploaded, statuses[0].Status)

	// The artifact names embed the row key so a later upload of the same
	// filename resolves to different paths.
	require.True(t, got.ID.Valid)
	assert.Contains(t, got.OriginalPath, db.UUIDString(got.ID))
	assert.Contains(t, got.WebPath, db.UUIDString(got.ID))
	assert.Contains(t, got.ThumbnailPath, db.UUIDString(got.ID))
}

func TestIngest_SameNameUploadsKeepBothFiles(t *testing.T) {
	p := testPipeline(t)
	owner := testOwner()

	uploads := []Upload{
		textUpload("clip.mp4", "content A"),
		textUpload("clip.mp4", "content B"),
	}
	statuses := p.Ingest(context.Background(), owner, uploads, "", nil)
	require.Len(t, statuses, 2)
	require.Equal(t, statusUploaded, statuses[0].Status)
	require.Equal(t, statusUploaded, statuses[1].Status)

	// Two originals, two web copies, two thumbnails.
	assert.Len(t, listOwnerFiles(t, p, owner), 6)
}

func TestIngest_DedupRaceLoserCleansArtifacts(t *testing.T) {
	p := testPipeline(t)
	owner := testOwner()
	p.record = func(ctx context.Context, params db.InsertVideoParams, categories []string) (*db.Video, error) {
		return nil, &pgconn.PgError{Code: "23505"}
	}

	statuses := p.Ingest(context.Background(), owner, []Upload{textUpload("clip.mp4", "content A")}, "", nil)
	require.Len(t, statuses, 1)
	assert.Equal(t, statusDuplicate, statuses[0].Status)

	// The winner's row references its own paths; the loser's artifacts
	// would be unreachable orphans.
	assert.Empty(t, listOwnerFiles(t, p, owner))
}

func TestIngest_RecordFailureCleansArtifacts(t *testing.T) {
	p := testPipeline(t)
	owner := testOwner()
	p.record = func(ctx context.Context, params db.InsertVideoParams, categories []string) (*db.Video, error) {
		return nil, context.DeadlineExceeded
	}

	statuses := p.Ingest(context.Background(), owner, []Upload{textUpload("clip.mp4", "content A")}, "", nil)
	require.Len(t, statuses, 1)
	assert.Equal(t, "Failed: could not record metadata", statuses[0].Status)
	assert.Empty(t, listOwnerFiles(t, p, owner))
}
