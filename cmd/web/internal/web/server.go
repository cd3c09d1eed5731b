package web

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jcoeder/video-archive/cmd/web/auth"
	"github.com/jcoeder/video-archive/cmd/web/handlers/admin"
	authhandlers "github.com/jcoeder/video-archive/cmd/web/handlers/auth"
	"github.com/jcoeder/video-archive/cmd/web/handlers/common"
	"github.com/jcoeder/video-archive/cmd/web/handlers/video"
	"github.com/jcoeder/video-archive/internal/archive"
	"github.com/jcoeder/video-archive/internal/config"
	"github.com/jcoeder/video-archive/internal/db"
	"github.com/jcoeder/video-archive/internal/storage"
)

type Webserver struct {
	*echo.Echo
	sessionManager *auth.SessionManager
	dbc            *db.DatabaseConnection
	layout         *storage.Layout
	pipeline       *archive.Pipeline
	exporter       *archive.Exporter
	conf           *config.Config
}

func NewWebserver(conf *config.Config, dbc *db.DatabaseConnection, layout *storage.Layout, pipeline *archive.Pipeline, exporter *archive.Exporter, sessionManager *auth.SessionManager) (*Webserver, error) {
	e := echo.New()

	webserver := &Webserver{
		Echo:           e,
		sessionManager: sessionManager,
		dbc:            dbc,
		layout:         layout,
		pipeline:       pipeline,
		exporter:       exporter,
		conf:           conf,
	}

	webserver.setupMiddleware()
	webserver.registerRoutes()

	return webserver, nil
}

func (s *Webserver) setupMiddleware() {
	s.HideBanner = true
	s.HidePort = true
	s.Use(middleware.BodyLimit(strconv.FormatInt(s.conf.MaxUploadBytes, 10)))
	s.Use(middleware.Recover())
	s.Use(middleware.RequestID())
	s.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			switch c.Path() {
			case "/healthz", "/metrics":
				return true
			default:
				return false
			}
		},
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  false,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
				"remote_ip", v.RemoteIP,
				"request_id", v.RequestID,
			}
			if v.Error != nil {
				fields = append(fields, "error", v.Error)
			}
			slog.Info("request", fields...)
			return nil
		},
	}))
}

// requireUser loads the session's user from the database and attaches
// it to the request. Going back to the database on every request means
// a deleted account loses access immediately, not when its cookie
// expires.
func (s *Webserver) requireUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, _, err := s.sessionManager.GetSession(c.Request())
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
		}

		uid, err := db.ParseUUID(userID)
		if err != nil {
			s.sessionManager.ClearSession(c.Response().Writer, c.Request())
			return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
		}

		user, err := s.dbc.Queries(c.Request().Context()).GetUserByID(c.Request().Context(), uid)
		if err != nil {
			slog.Warn("session user lookup failed", "user_id", userID, "error", err)
			s.sessionManager.ClearSession(c.Response().Writer, c.Request())
			return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
		}

		c.Set(common.CurrentUserKey, user)
		return next(c)
	}
}

// requireAdmin checks both the cookie's recorded access level and the
// current admin flag on the account. A user demoted after login fails
// the database check even though their cookie still says admin.
func (s *Webserver) requireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := common.CurrentUser(c)
		if err != nil {
			return err
		}
		if s.sessionManager.GetAccessLevel(c.Request()) != auth.AccessAdmin || !user.IsAdmin {
			return echo.NewHTTPError(http.StatusForbidden, "forbidden")
		}
		return next(c)
	}
}

func (s *Webserver) registerRoutes() {
	s.GET("/healthz", s.handleHealthz)
	s.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	s.POST("/login", authhandlers.HandleLogin(s.sessionManager, s.dbc))
	s.POST("/register", authhandlers.HandleRegister(s.sessionManager, s.dbc))

	apiGroup := s.Group("/api", s.requireUser)
	apiGroup.POST("/logout", authhandlers.HandleLogout(s.sessionManager))
	apiGroup.POST("/change-password", authhandlers.HandleChangePassword(s.dbc))

	apiGroup.GET("/videos", video.HandleList(s.dbc))
	apiGroup.POST("/videos", video.HandleUpload(s.pipeline))
	apiGroup.GET("/videos/:id", video.HandleDetail(s.dbc))
	apiGroup.PUT("/videos/:id", video.HandleUpdate(s.dbc))
	apiGroup.DELETE("/videos/:id", video.HandleDelete(s.dbc))
	apiGroup.GET("/videos/:id/stream", video.HandleStream(s.dbc))
	apiGroup.GET("/videos/:id/thumbnail", video.HandleThumbnail(s.dbc))
	apiGroup.POST("/videos/:id/transcribe", video.HandleTranscribe(s.dbc, s.pipeline))

	apiGroup.GET("/categories", video.HandleCategories(s.dbc))
	apiGroup.GET("/export", video.HandleExport(s.exporter))

	adminGroup := s.Group("/admin", s.requireUser, s.requireAdmin)
	adminGroup.GET("/users", admin.HandleListUsers(s.dbc))
	adminGroup.POST("/users", admin.HandleCreateUser(s.dbc))
	adminGroup.DELETE("/users/:id", admin.HandleDeleteUser(s.dbc, s.layout))
}

func (s *Webserver) handleHealthz(c echo.Context) error {
	if err := s.dbc.Ping(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
