package video

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/jcoeder/video-archive/cmd/web/handlers/common"
	"github.com/jcoeder/video-archive/internal/db"
)

func HandleDetail(dbc *db.DatabaseConnection) echo.HandlerFunc {
	return func(c echo.Context) error {
		_, video, err := loadVideo(c, dbc)
		if err != nil {
			return err
		}

		cats, err := dbc.Queries(c.Request().Context()).ListCategoriesForVideo(c.Request().Context(), video.ID)
		if err != nil {
			slog.Error("failed to list video categories", "video", db.UUIDString(video.ID), "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "could not load video")
		}
		return c.JSON(http.StatusOK, common.NewVideoResponse(video, cats, true))
	}
}

// loadVideo resolves the :id path param, fetches the record, and
// enforces the owner-or-admin access rule shared by every per-video
// handler.
func loadVideo(c echo.Context, dbc *db.DatabaseConnection) (*db.User, *db.Video, error) {
	user, err := common.CurrentUser(c)
	if err != nil {
		return nil, nil, err
	}

	id, err := db.ParseUUID(c.Param("id"))
	if err != nil {
		return nil, nil, echo.NewHTTPError(http.StatusBadRequest, "invalid video id")
	}

	video, err := dbc.Queries(c.Request().Context()).GetVideoByID(c.Request().Context(), id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, echo.NewHTTPError(http.StatusNotFound, "video not found")
	}
	if err != nil {
		slog.Error("failed to load video", "video", c.Param("id"), "error", err)
		return nil, nil, echo.NewHTTPError(http.StatusInternalServerError, "could not load video")
	}

	if !common.CanAccessVideo(user, video) {
		// 404, not 403: do not confirm the record exists to non-owners.
		return nil, nil, echo.NewHTTPError(http.StatusNotFound, "video not found")
	}
	return user, video, nil
}
