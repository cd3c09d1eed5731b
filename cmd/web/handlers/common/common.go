// Package common holds helpers shared across the handler packages:
// current-user plumbing and the JSON shapes for video records.
package common

import (
	"net/http"

	"github.com/dustin/go-humanize"
	"github.com/labstack/echo/v4"

	"github.com/jcoeder/video-archive/internal/db"
)

// CurrentUserKey is where the auth middleware stores the loaded user.
const CurrentUserKey = "currentUser"

// CurrentUser returns the authenticated user the middleware attached to
// the request, or an echo 401 error when it is absent.
func CurrentUser(c echo.Context) (*db.User, error) {
	user, ok := c.Get(CurrentUserKey).(*db.User)
	if !ok || user == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}
	return user, nil
}

// CanAccessVideo reports whether user may operate on video. Admins may
// touch any record; everyone else is strictly owner-only.
func CanAccessVideo(user *db.User, video *db.Video) bool {
	if user.IsAdmin {
		return true
	}
	return user.ID == video.UserID
}

// VideoResponse is the JSON rendering of a video row.
type VideoResponse struct {
	ID                  string   `json:"id"`
	Title               string   `json:"title"`
	Notes               string   `json:"notes"`
	NotesHTML           string   `json:"notes_html,omitempty"`
	FileHash            string   `json:"file_hash"`
	FileSize            int64    `json:"file_size"`
	FileSizeHuman       string   `json:"file_size_human"`
	FileExists          bool     `json:"file_exists"`
	HasThumbnail        bool     `json:"has_thumbnail"`
	TranscriptionStatus string   `json:"transcription_status"`
	Transcript          string   `json:"transcript,omitempty"`
	TranscriptLang      string   `json:"transcript_lang,omitempty"`
	ArchivedAt          string   `json:"archived_at"`
	Categories          []string `json:"categories,omitempty"`
}

// NewVideoResponse renders a video row. Detail carries the rendered
// notes HTML and transcript; list views omit them to stay small.
func NewVideoResponse(video *db.Video, categories []*db.Category, detail bool) VideoResponse {
	resp := VideoResponse{
		ID:                  db.UUIDString(video.ID),
		Title:               video.Title,
		Notes:               video.Notes.Source,
		FileHash:            video.FileHash,
		FileSize:            video.FileSize,
		FileSizeHuman:       humanize.Bytes(uint64(video.FileSize)),
		FileExists:          video.FileExists,
		HasThumbnail:        video.ThumbnailPath.Valid && video.ThumbnailPath.String != "",
		TranscriptionStatus: string(video.TranscriptionStatus),
	}
	if video.ArchivedAt.Valid {
		resp.ArchivedAt = video.ArchivedAt.Time.UTC().Format("2006-01-02T15:04:05Z07:00")
	}
	for _, cat := range categories {
		resp.Categories = append(resp.Categories, cat.Name)
	}
	if detail {
		resp.NotesHTML = video.Notes.Render()
		if video.Transcript.Valid {
			resp.Transcript = video.Transcript.String
		}
		resp.TranscriptLang = video.TranscriptLang.String()
	}
	return resp
}
