// Package video holds the handlers for the archive's video records:
// upload, browse, metadata edits, streaming, delete, transcription
// restarts and bulk export.
package video

import (
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/jcoeder/video-archive/cmd/web/handlers/common"
	"github.com/jcoeder/video-archive/internal/archive"
)

func HandleUpload(pipeline *archive.Pipeline) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := common.CurrentUser(c)
		if err != nil {
			return err
		}

		form, err := c.MultipartForm()
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "expected a multipart upload")
		}

		files := form.File["files"]
		if len(files) == 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "no files submitted")
		}

		notes := c.FormValue("notes")
		categories := ParseCategories(c.FormValue("categories"))

		uploads := make([]archive.Upload, 0, len(files))
		for _, fh := range files {
			uploads = append(uploads, uploadFromHeader(fh))
		}

		statuses := pipeline.Ingest(c.Request().Context(), user, uploads, notes, categories)
		return c.JSON(http.StatusOK, map[string]any{"files": statuses})
	}
}

func uploadFromHeader(fh *multipart.FileHeader) archive.Upload {
	return archive.Upload{
		Name: fh.Filename,
		Size: fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

// ParseCategories splits a comma-separated category field, dropping
// blanks. Matching is case-sensitive on the exact trimmed name.
func ParseCategories(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		out = append(out, name)
	}
	return out
}
