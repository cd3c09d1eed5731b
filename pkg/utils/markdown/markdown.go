// Package markdown renders video notes. Only the markdown source is stored
// in the database; HTML is rendered on demand and always sanitized.
package markdown

import (
	"bytes"
	"database/sql/driver"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/microcosm-cc/bluemonday"
	"github.com/russross/blackfriday/v2"
)

// Notes wraps the markdown source of a video's free-text notes.
type Notes struct {
	// Source is the markdown source code.
	Source string

	renderedHTML *string
}

var (
	bfRenderer = blackfriday.NewHTMLRenderer(blackfriday.HTMLRendererParameters{
		Flags: blackfriday.Safelink | blackfriday.NofollowLinks | blackfriday.HrefTargetBlank | blackfriday.Smartypants,
	})
	bfExtensions = blackfriday.NoIntraEmphasis | blackfriday.Tables | blackfriday.FencedCode | blackfriday.Autolink | blackfriday.Strikethrough | blackfriday.SpaceHeadings
	policy       = bluemonday.UGCPolicy()
)

func NewNotes(source string) *Notes {
	return &Notes{Source: source}
}

// Render converts the notes source into sanitized HTML.
func (n *Notes) Render() string {
	if n.renderedHTML != nil {
		return *n.renderedHTML
	}

	unsafe := blackfriday.Run([]byte(n.Source),
		blackfriday.WithRenderer(bfRenderer),
		blackfriday.WithExtensions(bfExtensions),
	)
	safe := string(bytes.TrimSpace(policy.SanitizeBytes(unsafe)))
	n.renderedHTML = &safe
	return safe
}

// Scan implements database/sql.Scanner.
func (n *Notes) Scan(src any) error {
	n.renderedHTML = nil
	if src == nil {
		n.Source = ""
		return nil
	}
	switch v := src.(type) {
	case string:
		n.Source = v
		return nil
	case []byte:
		n.Source = string(v)
		return nil
	default:
		return fmt.Errorf("markdown.Notes.Scan: expected string or []byte, got %T", src)
	}
}

// Value implements driver.Valuer.
func (n Notes) Value() (driver.Value, error) {
	return n.Source, nil
}

// ScanText implements the pgtype.TextScanner interface for pgx v5.
func (n *Notes) ScanText(v pgtype.Text) error {
	n.renderedHTML = nil
	if !v.Valid {
		n.Source = ""
		return nil
	}
	n.Source = v.String
	return nil
}

// TextValue implements the pgtype.TextValuer interface for pgx v5.
func (n Notes) TextValue() (pgtype.Text, error) {
	return pgtype.Text{String: n.Source, Valid: true}, nil
}
