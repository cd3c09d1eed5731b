package video

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/jcoeder/video-archive/cmd/web/handlers/common"
	"github.com/jcoeder/video-archive/internal/db"
)

func HandleList(dbc *db.DatabaseConnection) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := common.CurrentUser(c)
		if err != nil {
			return err
		}

		q := dbc.Queries(c.Request().Context())
		videos, err := q.ListVideosByOwner(c.Request().Context(), db.ListVideosParams{
			UserID:   user.ID,
			Category: strings.TrimSpace(c.QueryParam("category")),
			Search:   strings.TrimSpace(c.QueryParam("q")),
		})
		if err != nil {
			slog.Error("failed to list videos", "user", user.Username, "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "could not list videos")
		}

		out := make([]common.VideoResponse, 0, len(videos))
		for _, v := range videos {
			cats, err := q.ListCategoriesForVideo(c.Request().Context(), v.ID)
			if err != nil {
				slog.Error("failed to list video categories", "video", db.UUIDString(v.ID), "error", err)
				return echo.NewHTTPError(http.StatusInternalServerError, "could not list videos")
			}
			out = append(out, common.NewVideoResponse(v, cats, false))
		}
		return c.JSON(http.StatusOK, map[string]any{"videos": out})
	}
}

func HandleCategories(dbc *db.DatabaseConnection) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := common.CurrentUser(c)
		if err != nil {
			return err
		}

		cats, err := dbc.Queries(c.Request().Context()).ListCategoriesByOwner(c.Request().Context(), user.ID)
		if err != nil {
			slog.Error("failed to list categories", "user", user.Username, "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "could not list categories")
		}

		names := make([]string, 0, len(cats))
		for _, cat := range cats {
			names = append(names, cat.Name)
		}
		return c.JSON(http.StatusOK, map[string]any{"categories": names})
	}
}
