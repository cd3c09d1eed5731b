package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jcoeder/video-archive/pkg/utils/markdown"
)

const videoColumns = `id, user_id, title, original_path, web_path, thumbnail_path, notes,
	file_hash, file_size, file_exists, transcription_status, transcript, transcript_lang, archived_at`

func scanVideo(row pgx.Row) (*Video, error) {
	var v Video
	err := row.Scan(&v.ID, &v.UserID, &v.Title, &v.OriginalPath, &v.WebPath, &v.ThumbnailPath,
		&v.Notes, &v.FileHash, &v.FileSize, &v.FileExists, &v.TranscriptionStatus,
		&v.Transcript, &v.TranscriptLang, &v.ArchivedAt)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func collectVideos(rows pgx.Rows) ([]*Video, error) {
	defer rows.Close()
	var videos []*Video
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, err
		}
		videos = append(videos, v)
	}
	return videos, rows.Err()
}

// InsertVideoParams contains the metadata for a freshly ingested video.
// ID is the key the on-disk artifact names were derived from; a zero
// value gets a fresh UUID.
type InsertVideoParams struct {
	ID            pgtype.UUID
	UserID        pgtype.UUID
	Title         string
	OriginalPath  string
	WebPath       string
	ThumbnailPath string // empty when thumbnail extraction failed
	Notes         string
	FileHash      string
	FileSize      int64
}

// InsertVideo creates the metadata record for an ingested file. A unique
// violation on (file_hash, user_id) means a concurrent upload won the
// dedup race; callers detect it via IsUniqueViolation.
func (q *Queries) InsertVideo(ctx context.Context, params InsertVideoParams) (*Video, error) {
	id := params.ID
	if !id.Valid {
		id = NewUUID()
	}
	row := q.db.QueryRow(ctx, `
		INSERT INTO videos (id, user_id, title, original_path, web_path, thumbnail_path,
			notes, file_hash, file_size)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+videoColumns,
		id, params.UserID, params.Title, params.OriginalPath, params.WebPath,
		TextOrNull(params.ThumbnailPath), markdown.NewNotes(params.Notes), params.FileHash, params.FileSize)
	return scanVideo(row)
}

// GetVideoByID fetches a video by primary key.
func (q *Queries) GetVideoByID(ctx context.Context, id pgtype.UUID) (*Video, error) {
	return scanVideo(q.db.QueryRow(ctx, `SELECT `+videoColumns+` FROM videos WHERE id = $1`, id))
}

// VideoExistsByHash reports whether the owner already archived content
// with this hash.
func (q *Queries) VideoExistsByHash(ctx context.Context, userID pgtype.UUID, hash string) (bool, error) {
	var found bool
	err := q.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM videos WHERE user_id = $1 AND file_hash = $2)`,
		userID, hash).Scan(&found)
	return found, err
}

// ListVideosParams filters an owner's video listing.
type ListVideosParams struct {
	UserID   pgtype.UUID
	Category string // exact category name; empty matches all
	Search   string // case-insensitive substring over title and notes; empty matches all
}

// ListVideosByOwner returns an owner's videos newest-first, optionally
// filtered by category and search text.
func (q *Queries) ListVideosByOwner(ctx context.Context, params ListVideosParams) ([]*Video, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+videoColumns+` FROM videos v
		WHERE v.user_id = $1
		  AND ($2 = '' OR EXISTS (
			SELECT 1 FROM video_categories vc
			JOIN categories c ON c.id = vc.category_id
			WHERE vc.video_id = v.id AND c.name = $2))
		  AND ($3 = '' OR v.title ILIKE '%' || $3 || '%' OR v.notes ILIKE '%' || $3 || '%')
		ORDER BY v.archived_at DESC`,
		params.UserID, params.Category, params.Search)
	if err != nil {
		return nil, err
	}
	return collectVideos(rows)
}

// ListAllVideos returns every video record. Used by the reconciliation
// sweep, which inspects the whole archive.
func (q *Queries) ListAllVideos(ctx context.Context) ([]*Video, error) {
	rows, err := q.db.Query(ctx, `SELECT `+videoColumns+` FROM videos ORDER BY archived_at`)
	if err != nil {
		return nil, err
	}
	return collectVideos(rows)
}

// UpdateVideoMetadata replaces the mutable metadata of a video.
func (q *Queries) UpdateVideoMetadata(ctx context.Context, id pgtype.UUID, title, notes string) error {
	tag, err := q.db.Exec(ctx,
		`UPDATE videos SET title = $2, notes = $3 WHERE id = $1`,
		id, title, markdown.NewNotes(notes))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// SetVideoExists updates a video's liveness flag.
func (q *Queries) SetVideoExists(ctx context.Context, id pgtype.UUID, exists bool) error {
	_, err := q.db.Exec(ctx, `UPDATE videos SET file_exists = $2 WHERE id = $1`, id, exists)
	return err
}

// ClearVideoThumbnail removes a video's thumbnail reference. Derived
// artifacts must not outlive their source media.
func (q *Queries) ClearVideoThumbnail(ctx context.Context, id pgtype.UUID) error {
	_, err := q.db.Exec(ctx, `UPDATE videos SET thumbnail_path = NULL WHERE id = $1`, id)
	return err
}

// MarkTranscriptionRunning transitions a video to the running state.
// The transition is guarded: it only fires when the video is not already
// running, so a concurrent restart request is a no-op. Returns true when
// this caller won the transition.
func (q *Queries) MarkTranscriptionRunning(ctx context.Context, id pgtype.UUID) (bool, error) {
	tag, err := q.db.Exec(ctx, `
		UPDATE videos SET transcription_status = 'running'
		WHERE id = $1 AND transcription_status <> 'running'`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// SetTranscriptionResult records a terminal transcription outcome with
// the transcript text (or the error message on failure).
func (q *Queries) SetTranscriptionResult(ctx context.Context, id pgtype.UUID, status TranscriptionStatus, transcript, lang string) error {
	_, err := q.db.Exec(ctx, `
		UPDATE videos SET transcription_status = $2, transcript = $3, transcript_lang = $4
		WHERE id = $1`,
		id, status, TextOrNull(transcript), TextOrNull(lang))
	return err
}

// DeleteVideo removes a video record; category links cascade.
func (q *Queries) DeleteVideo(ctx context.Context, id pgtype.UUID) error {
	tag, err := q.db.Exec(ctx, `DELETE FROM videos WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
