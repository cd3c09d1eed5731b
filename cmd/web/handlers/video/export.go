package video

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/jcoeder/video-archive/cmd/web/handlers/common"
	"github.com/jcoeder/video-archive/internal/archive"
)

// HandleExport streams a zip of all the caller's original files. The
// archive is built on the fly; nothing is spooled to disk.
func HandleExport(exporter *archive.Exporter) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := common.CurrentUser(c)
		if err != nil {
			return err
		}

		name := archive.ExportName(time.Now())
		c.Response().Header().Set(echo.HeaderContentType, "application/zip")
		c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, name))
		c.Response().WriteHeader(http.StatusOK)

		if err := exporter.WriteZip(c.Request().Context(), user, c.Response()); err != nil {
			// Headers are gone; all we can do is log and cut the stream.
			slog.Error("export failed mid-stream", "user", user.Username, "error", err)
			return err
		}
		return nil
	}
}
