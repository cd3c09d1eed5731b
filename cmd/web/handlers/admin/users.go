// Package admin holds the administrator-only user management handlers.
package admin

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/jcoeder/video-archive/cmd/web/handlers/common"
	"github.com/jcoeder/video-archive/internal/db"
	"github.com/jcoeder/video-archive/internal/storage"
)

type userResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email,omitempty"`
	IsAdmin   bool   `json:"is_admin"`
	CreatedAt string `json:"created_at,omitempty"`
}

func newUserResponse(user *db.User) userResponse {
	resp := userResponse{
		ID:       db.UUIDString(user.ID),
		Username: user.Username,
		IsAdmin:  user.IsAdmin,
	}
	if user.Email.Valid {
		resp.Email = user.Email.String
	}
	if user.CreatedAt.Valid {
		resp.CreatedAt = user.CreatedAt.Time.UTC().Format("2006-01-02T15:04:05Z07:00")
	}
	return resp
}

func HandleListUsers(dbc *db.DatabaseConnection) echo.HandlerFunc {
	return func(c echo.Context) error {
		users, err := dbc.Queries(c.Request().Context()).ListUsers(c.Request().Context())
		if err != nil {
			slog.Error("failed to list users", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "could not list users")
		}
		out := make([]userResponse, 0, len(users))
		for _, user := range users {
			out = append(out, newUserResponse(user))
		}
		return c.JSON(http.StatusOK, map[string]any{"users": out})
	}
}

func HandleCreateUser(dbc *db.DatabaseConnection) echo.HandlerFunc {
	return func(c echo.Context) error {
		username := strings.TrimSpace(c.FormValue("username"))
		email := strings.TrimSpace(c.FormValue("email"))
		password := c.FormValue("password")
		isAdmin := c.FormValue("is_admin") == "true"

		if username == "" || password == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "username and password are required")
		}

		q := dbc.Queries(c.Request().Context())
		taken, err := q.UsernameTaken(c.Request().Context(), username)
		if err != nil {
			slog.Error("failed to check username", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "could not create user")
		}
		if taken {
			return echo.NewHTTPError(http.StatusConflict, "username is already taken")
		}

		user, err := q.NewUser(c.Request().Context(), db.NewUserParams{
			Username: username,
			Email:    email,
			Password: password,
			IsAdmin:  isAdmin,
		})
		if err != nil {
			slog.Error("failed to create user", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, "password does not meet requirements (minimum 8 characters) or an error occurred")
		}
		return c.JSON(http.StatusCreated, newUserResponse(user))
	}
}

// HandleDeleteUser removes an account. The database cascades take the
// user's videos, categories and links; the storage namespaces on disk
// go with them.
func HandleDeleteUser(dbc *db.DatabaseConnection, layout *storage.Layout) echo.HandlerFunc {
	return func(c echo.Context) error {
		actor, err := common.CurrentUser(c)
		if err != nil {
			return err
		}

		id, err := db.ParseUUID(c.Param("id"))
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
		}
		if actor.ID == id {
			return echo.NewHTTPError(http.StatusBadRequest, "cannot delete your own account")
		}

		ctx := c.Request().Context()
		q := dbc.Queries(ctx)
		target, err := q.GetUserByID(ctx, id)
		if errors.Is(err, pgx.ErrNoRows) {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		if err != nil {
			slog.Error("failed to load user", "user", c.Param("id"), "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "could not delete user")
		}

		if err := q.DeleteUser(ctx, id); err != nil {
			slog.Error("failed to delete user", "user", target.Username, "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "could not delete user")
		}

		if err := layout.RemoveOwnerDirs(db.UUIDString(target.StorageID)); err != nil {
			// Rows are gone; the sweep cannot see these files any more,
			// so surface the leak loudly.
			slog.Error("failed to remove storage namespace", "user", target.Username, "error", err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}
