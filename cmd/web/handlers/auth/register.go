package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	webauth "github.com/jcoeder/video-archive/cmd/web/auth"
	"github.com/jcoeder/video-archive/internal/db"
)

func HandleRegister(sm *webauth.SessionManager, dbc *db.DatabaseConnection) echo.HandlerFunc {
	return func(c echo.Context) error {
		username := strings.TrimSpace(c.FormValue("username"))
		email := strings.TrimSpace(c.FormValue("email"))
		password := c.FormValue("password")
		confirmPassword := c.FormValue("confirm_password")

		if username == "" || password == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "username and password are required")
		}
		if password != confirmPassword {
			return echo.NewHTTPError(http.StatusBadRequest, "passwords do not match")
		}

		q := dbc.Queries(c.Request().Context())
		userCount, err := q.CountUsers(c.Request().Context())
		if err != nil {
			slog.Error("failed to count users", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "could not create account")
		}

		// The first account on a fresh install becomes the admin.
		isAdmin := userCount == 0

		taken, err := q.UsernameTaken(c.Request().Context(), username)
		if err != nil {
			slog.Error("failed to check username", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "could not create account")
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

		accessLevel := webauth.AccessLevelFor(user.IsAdmin)
		if err := sm.SaveSession(c.Response().Writer, c.Request(), db.UUIDString(user.ID), user.Username, accessLevel); err != nil {
			slog.Error("failed to save session", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "could not establish session")
		}

		return c.JSON(http.StatusCreated, map[string]any{
			"username": user.Username,
			"is_admin": user.IsAdmin,
		})
	}
}
