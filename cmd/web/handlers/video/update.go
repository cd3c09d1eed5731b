package video

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/jcoeder/video-archive/internal/db"
)

func HandleUpdate(dbc *db.DatabaseConnection) echo.HandlerFunc {
	return func(c echo.Context) error {
		_, video, err := loadVideo(c, dbc)
		if err != nil {
			return err
		}

		title := strings.TrimSpace(c.FormValue("title"))
		if title == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "title is required")
		}
		notes := c.FormValue("notes")
		categories := ParseCategories(c.FormValue("categories"))

		ctx := c.Request().Context()
		qtx, tx, err := dbc.NewWithTX(ctx)
		if err != nil {
			slog.Error("failed to open transaction", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "could not update video")
		}
		defer tx.Rollback(ctx)

		if err := qtx.UpdateVideoMetadata(ctx, video.ID, title, notes); err != nil {
			slog.Error("failed to update video", "video", db.UUIDString(video.ID), "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "could not update video")
		}

		// Replace the category set wholesale, then collect whatever the
		// unlink orphaned.
		if err := qtx.UnlinkVideoCategories(ctx, video.ID); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "could not update video")
		}
		for _, name := range categories {
			cat, err := qtx.GetOrCreateCategory(ctx, video.UserID, name)
			if err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, "could not update video")
			}
			if err := qtx.LinkVideoCategory(ctx, video.ID, cat.ID); err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, "could not update video")
			}
		}
		if _, err := qtx.DeleteOrphanCategories(ctx); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "could not update video")
		}

		if err := tx.Commit(ctx); err != nil {
			slog.Error("failed to commit video update", "video", db.UUIDString(video.ID), "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "could not update video")
		}
		return c.NoContent(http.StatusNoContent)
	}
}
