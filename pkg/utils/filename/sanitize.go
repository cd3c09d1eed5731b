// Package filename provides utilities for sanitizing strings into safe
// filenames and deriving the role-prefixed stored names used in owner
// storage namespaces.
package filename

import (
	"path/filepath"
	"regexp"
	"strings"
)

// invalidCharsRe matches characters not safe for filenames across all major OSes.
var invalidCharsRe = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)

// multiDash collapses runs of dashes/underscores.
var multiDash = regexp.MustCompile(`[-_]{2,}`)

// Sanitize converts an arbitrary string into a filename-safe slug.
// The result contains only alphanumeric characters, dashes, underscores, and
// dots. Leading/trailing dashes and dots are stripped. The output is truncated
// to maxLen bytes (0 = no limit, defaults to 120 if not specified).
func Sanitize(name string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = 120
	}

	s := strings.TrimSpace(name)
	if s == "" {
		return ""
	}

	// Uploads arrive with client-side paths on some browsers; keep only
	// the final element before sanitizing.
	s = filepath.Base(filepath.ToSlash(s))

	// Replace invalid filesystem characters with dashes.
	s = invalidCharsRe.ReplaceAllString(s, "-")

	// Replace spaces and other whitespace with dashes.
	s = strings.Map(func(r rune) rune {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			return '-'
		}
		return r
	}, s)

	// Collapse consecutive dashes / underscores.
	s = multiDash.ReplaceAllString(s, "-")

	// Strip leading/trailing dashes and dots (avoid hidden files / trailing dots on Windows).
	s = strings.Trim(s, "-.")

	// Truncate to maxLen, but don't cut in the middle of a UTF-8 sequence.
	if len(s) > maxLen {
		s = s[:maxLen]
		// Clean up a trailing partial dash/dot from the truncation.
		s = strings.TrimRight(s, "-.")
	}

	return s
}

// Stored-name role prefixes. An owner namespace holds, per archived video,
// an original container, a web-playable MP4, and a thumbnail JPEG.
const (
	OriginalPrefix  = "original_"
	WebPrefix       = "web_"
	ThumbnailPrefix = "thumb_"
)

// OriginalName returns the stored name for the raw upload, keeping the
// source extension. stamp is a per-video unique component (the video's
// id); without it, two same-named uploads with different content would
// resolve to the same path and overwrite each other.
func OriginalName(stamp, source string) string {
	return OriginalPrefix + stamp + "_" + Sanitize(source, 0)
}

// WebName returns the stored name for the web-playable copy. The container
// is always MP4 regardless of the source extension.
func WebName(stamp, source string) string {
	return WebPrefix + stamp + "_" + stripExt(Sanitize(source, 0)) + ".mp4"
}

// ThumbnailName returns the stored name for the extracted thumbnail frame.
func ThumbnailName(stamp, source string) string {
	return ThumbnailPrefix + stamp + "_" + stripExt(Sanitize(source, 0)) + ".jpg"
}

func stripExt(name string) string {
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext)
}
