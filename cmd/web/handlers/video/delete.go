package video

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"

	"github.com/jcoeder/video-archive/internal/db"
)

func HandleDelete(dbc *db.DatabaseConnection) echo.HandlerFunc {
	return func(c echo.Context) error {
		_, video, err := loadVideo(c, dbc)
		if err != nil {
			return err
		}

		ctx := c.Request().Context()
		qtx, tx, err := dbc.NewWithTX(ctx)
		if err != nil {
			slog.Error("failed to open transaction", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "could not delete video")
		}
		defer tx.Rollback(ctx)

		if err := qtx.DeleteVideo(ctx, video.ID); err != nil {
			slog.Error("failed to delete video", "video", db.UUIDString(video.ID), "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "could not delete video")
		}
		if _, err := qtx.DeleteOrphanCategories(ctx); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "could not delete video")
		}
		if err := tx.Commit(ctx); err != nil {
			slog.Error("failed to commit video delete", "video", db.UUIDString(video.ID), "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "could not delete video")
		}

		// Row is gone; artifacts are best-effort cleanup from here.
		os.Remove(video.WebPath)
		os.Remove(video.OriginalPath)
		if video.ThumbnailPath.Valid && video.ThumbnailPath.String != "" {
			os.Remove(video.ThumbnailPath.String)
		}
		return c.NoContent(http.StatusNoContent)
	}
}
