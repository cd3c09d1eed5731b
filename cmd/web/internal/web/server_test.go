package web

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/jcoeder/video-archive/cmd/web/auth"
	"github.com/jcoeder/video-archive/cmd/web/handlers/common"
	"github.com/jcoeder/video-archive/internal/db"
)

// adminRequest builds a request carrying a session cookie saved at the
// given access level, with the loaded user already attached.
func adminRequest(t *testing.T, s *Webserver, level auth.AccessLevel, user *db.User) echo.Context {
	t.Helper()

	seed := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
	rr := httptest.NewRecorder()
	require.NoError(t, s.sessionManager.SaveSession(rr, seed, "user-1", "alice", level))

	req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
	for _, c := range rr.Result().Cookies() {
		req.AddCookie(c)
	}

	c := s.NewContext(req, httptest.NewRecorder())
	c.Set(common.CurrentUserKey, user)
	return c
}

func TestRequireAdmin(t *testing.T) {
	s := &Webserver{Echo: echo.New(), sessionManager: auth.NewSessionManager("test-secret")}
	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }

	tests := []struct {
		name    string
		level   auth.AccessLevel
		isAdmin bool
		allowed bool
	}{
		{"admin cookie and admin account", auth.AccessAdmin, true, true},
		{"user cookie cannot reach admin routes", auth.AccessUser, true, false},
		{"demoted account fails despite admin cookie", auth.AccessAdmin, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := adminRequest(t, s, tt.level, &db.User{ID: db.NewUUID(), IsAdmin: tt.isAdmin})
			err := s.requireAdmin(next)(c)
			if tt.allowed {
				require.NoError(t, err)
				return
			}
			var httpErr *echo.HTTPError
			require.ErrorAs(t, err, &httpErr)
			require.Equal(t, http.StatusForbidden, httpErr.Code)
		})
	}
}
