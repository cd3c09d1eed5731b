package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"

	webauth "github.com/jcoeder/video-archive/cmd/web/auth"
)

func HandleLogout(sm *webauth.SessionManager) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := sm.ClearSession(c.Response().Writer, c.Request()); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "could not clear session")
		}
		return c.NoContent(http.StatusNoContent)
	}
}
