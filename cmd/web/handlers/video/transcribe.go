package video

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jcoeder/video-archive/internal/archive"
	"github.com/jcoeder/video-archive/internal/db"
)

// HandleTranscribe re-enqueues transcription for a video. The running
// guard in the transcriber makes this a no-op while a run is already in
// flight, so hammering the endpoint cannot spawn parallel runs.
func HandleTranscribe(dbc *db.DatabaseConnection, pipeline *archive.Pipeline) echo.HandlerFunc {
	return func(c echo.Context) error {
		_, video, err := loadVideo(c, dbc)
		if err != nil {
			return err
		}
		if !video.FileExists {
			return echo.NewHTTPError(http.StatusConflict, "video file is missing")
		}
		if err := pipeline.RestartTranscription(video.ID); err != nil {
			return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
		}
		return c.JSON(http.StatusAccepted, map[string]any{"status": "queued"})
	}
}
