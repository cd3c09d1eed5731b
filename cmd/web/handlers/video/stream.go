package video

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jcoeder/video-archive/internal/db"
	"github.com/jcoeder/video-archive/internal/storage"
)

// HandleStream serves the web-playable copy. echo's File helper goes
// through http.ServeContent, so range requests work for seeking.
func HandleStream(dbc *db.DatabaseConnection) echo.HandlerFunc {
	return func(c echo.Context) error {
		_, video, err := loadVideo(c, dbc)
		if err != nil {
			return err
		}
		if !video.FileExists || !storage.FileExists(video.WebPath) {
			return echo.NewHTTPError(http.StatusNotFound, "video file is missing")
		}
		return c.File(video.WebPath)
	}
}

func HandleThumbnail(dbc *db.DatabaseConnection) echo.HandlerFunc {
	return func(c echo.Context) error {
		_, video, err := loadVideo(c, dbc)
		if err != nil {
			return err
		}
		if !video.ThumbnailPath.Valid || !storage.FileExists(video.ThumbnailPath.String) {
			return echo.NewHTTPError(http.StatusNotFound, "no thumbnail")
		}
		return c.File(video.ThumbnailPath.String)
	}
}
