package whisper

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVTT(t *testing.T) {
	input := `WEBVTT

00:00:00.000 --> 00:00:04.500
Hello and welcome.

1
00:00:30.000 --> 00:00:33.000
This is the second cue
split over two lines.

NOTE this block is ignored
and so is this line

00:01:05.000 --> 00:01:08.000
Third cue.
`

	segments, err := ParseVTT(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, segments, 3)

	assert.InDelta(t, 0.0, segments[0].Start, 0.001)
	assert.Equal(t, "Hello and welcome.", segments[0].Text)

	assert.InDelta(t, 30.0, segments[1].Start, 0.001)
	assert.Equal(t, "This is the second cue split over two lines.", segments[1].Text)

	assert.InDelta(t, 65.0, segments[2].Start, 0.001)
	assert.Equal(t, "Third cue.", segments[2].Text)
}

func TestParseVTT_ShortTimestampFormat(t *testing.T) {
	input := `WEBVTT

01:05.250 --> 01:08.000
Minute-second timestamps.
`

	segments, err := ParseVTT(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, segments, 1)
	assert.InDelta(t, 65.25, segments[0].Start, 0.001)
}

func TestParseVTT_Empty(t *testing.T) {
	segments, err := ParseVTT(strings.NewReader("WEBVTT\n"))
	require.NoError(t, err)
	assert.Empty(t, segments)
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"00:00:00.000", 0, true},
		{"00:01:05.000", 65, true},
		{"01:05.500", 65.5, true},
		{"02:10:00.000", 7800, true},
		{"garbage", 0, false},
		{"1:2:3:4", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseTimestamp(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		if tt.ok {
			assert.InDelta(t, tt.want, got, 0.001, tt.in)
		}
	}
}
