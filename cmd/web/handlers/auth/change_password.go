package auth

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jcoeder/video-archive/cmd/web/handlers/common"
	"github.com/jcoeder/video-archive/internal/db"
	"github.com/jcoeder/video-archive/pkg/utils/passwords"
)

func HandleChangePassword(dbc *db.DatabaseConnection) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := common.CurrentUser(c)
		if err != nil {
			return err
		}

		current := c.FormValue("current_password")
		next := c.FormValue("new_password")
		confirm := c.FormValue("confirm_password")

		if next != confirm {
			return echo.NewHTTPError(http.StatusBadRequest, "passwords do not match")
		}

		matches, err := user.Password.ComparePasswordAndHash(passwords.PasswordInput{Password: current})
		if err != nil || !matches {
			return echo.NewHTTPError(http.StatusUnauthorized, "current password is incorrect")
		}

		if err := dbc.Queries(c.Request().Context()).UpdateUserPassword(c.Request().Context(), user.ID, next); err != nil {
			slog.Error("failed to update password", "user", user.Username, "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, "password does not meet requirements (minimum 8 characters) or an error occurred")
		}
		return c.NoContent(http.StatusNoContent)
	}
}
