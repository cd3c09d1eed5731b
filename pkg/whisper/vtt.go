package whisper

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// ParseVTT reads WebVTT cues into segments. Each cue contributes one
// segment whose start is the cue's start timestamp and whose text is the
// cue's payload lines joined with single spaces. Cue identifiers, the
// WEBVTT header, and NOTE blocks are skipped.
func ParseVTT(r io.Reader) ([]Segment, error) {
	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 16*1024*1024)

	var segments []Segment
	var current *Segment
	inNote := false

	flush := func() {
		if current != nil && strings.TrimSpace(current.Text) != "" {
			current.Text = strings.TrimSpace(current.Text)
			segments = append(segments, *current)
		}
		current = nil
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" {
			flush()
			inNote = false
			continue
		}
		if inNote {
			continue
		}
		if strings.HasPrefix(line, "WEBVTT") {
			continue
		}
		if strings.HasPrefix(line, "NOTE") {
			inNote = true
			continue
		}

		if strings.Contains(line, "-->") {
			flush()
			startStr, _, _ := strings.Cut(line, "-->")
			start, ok := parseTimestamp(strings.TrimSpace(startStr))
			if !ok {
				continue
			}
			current = &Segment{Start: start}
			continue
		}

		if current != nil {
			if current.Text != "" {
				current.Text += " "
			}
			current.Text += line
		}
		// Lines before the first timestamp (cue ids) are dropped.
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	flush()

	return segments, nil
}

// parseTimestamp parses "HH:MM:SS.mmm" or "MM:SS.mmm" into seconds.
func parseTimestamp(s string) (float64, bool) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, false
	}

	var total float64
	for _, part := range parts {
		v, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return 0, false
		}
		total = total*60 + v
	}
	return total, true
}
