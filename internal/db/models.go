package db

import (
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jcoeder/video-archive/pkg/utils/language"
	"github.com/jcoeder/video-archive/pkg/utils/markdown"
	"github.com/jcoeder/video-archive/pkg/utils/passwords"
)

// User is an archive account. StorageID keys the on-disk namespace so
// usernames never leak into file paths.
type User struct {
	ID        pgtype.UUID
	Username  string
	Email     pgtype.Text
	Password  passwords.Password
	IsAdmin   bool
	StorageID pgtype.UUID
	CreatedAt pgtype.Timestamptz
}

// TranscriptionStatus tracks the background speech-to-text state machine
// for a video: none -> running -> {completed, failed}, with manual
// restart from either terminal state.
type TranscriptionStatus string

const (
	TranscriptionNone      TranscriptionStatus = "none"
	TranscriptionRunning   TranscriptionStatus = "running"
	TranscriptionCompleted TranscriptionStatus = "completed"
	TranscriptionFailed    TranscriptionStatus = "failed"
)

// Video is the canonical metadata record for one archived upload. The
// filesystem holds the binary artifacts the paths point at; it is never
// a source of truth for metadata.
type Video struct {
	ID                  pgtype.UUID
	UserID              pgtype.UUID
	Title               string
	OriginalPath        string
	WebPath             string
	ThumbnailPath       pgtype.Text
	Notes               markdown.Notes
	FileHash            string
	FileSize            int64
	FileExists          bool
	TranscriptionStatus TranscriptionStatus
	Transcript          pgtype.Text
	TranscriptLang      language.Tag
	ArchivedAt          pgtype.Timestamptz
}

// Category is a per-owner label attached to videos. Categories are
// created lazily on first use and garbage-collected once no video
// references them.
type Category struct {
	ID     pgtype.UUID
	UserID pgtype.UUID
	Name   string
}
