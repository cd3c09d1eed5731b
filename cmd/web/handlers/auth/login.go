package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	webauth "github.com/jcoeder/video-archive/cmd/web/auth"
	"github.com/jcoeder/video-archive/internal/db"
	"github.com/jcoeder/video-archive/pkg/utils/passwords"
)

func HandleLogin(sm *webauth.SessionManager, dbc *db.DatabaseConnection) echo.HandlerFunc {
	return func(c echo.Context) error {
		username := strings.TrimSpace(c.FormValue("username"))
		password := c.FormValue("password")

		if username == "" || password == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "username and password are required")
		}

		user, err := dbc.Queries(c.Request().Context()).GetUserByUsername(c.Request().Context(), username)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid username or password")
		}

		matches, err := user.Password.ComparePasswordAndHash(passwords.PasswordInput{Password: password})
		if err != nil || !matches {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid username or password")
		}

		accessLevel := webauth.AccessLevelFor(user.IsAdmin)
		if err := sm.SaveSession(c.Response().Writer, c.Request(), db.UUIDString(user.ID), user.Username, accessLevel); err != nil {
			slog.Error("failed to save session", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "could not establish session")
		}

		return c.JSON(http.StatusOK, map[string]any{
			"username": user.Username,
			"is_admin": user.IsAdmin,
		})
	}
}
