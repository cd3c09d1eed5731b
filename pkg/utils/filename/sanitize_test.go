package filename

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "vacation.mp4", want: "vacation.mp4"},
		{name: "spaces", in: "my summer trip.mov", want: "my-summer-trip.mov"},
		{name: "unsafe chars", in: `a<b>:c"/d\|e?*.mkv`, want: "a-b-c-d-e.mkv"},
		{name: "client path stripped", in: `C:\Users\me\clip.mp4`, want: "clip.mp4"},
		{name: "leading dots stripped", in: "...hidden.mp4", want: "hidden.mp4"},
		{name: "collapse runs", in: "a---__b.mp4", want: "a-b.mp4"},
		{name: "empty", in: "   ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Sanitize(tt.in, 0))
		})
	}
}

func TestSanitize_Truncates(t *testing.T) {
	long := ""
	for i := 0; i < 50; i++ {
		long += "abcde"
	}
	got := Sanitize(long, 20)
	require.LessOrEqual(t, len(got), 20)
	require.NotEmpty(t, got)
}

func TestStoredNames(t *testing.T) {
	require.Equal(t, "original_v1_trip.mov", OriginalName("v1", "trip.mov"))
	require.Equal(t, "web_v1_trip.mp4", WebName("v1", "trip.mov"))
	require.Equal(t, "thumb_v1_trip.jpg", ThumbnailName("v1", "trip.mov"))

	// Sanitization applies before prefixing.
	require.Equal(t, "original_v1_my-trip.mov", OriginalName("v1", "my trip.mov"))
}

func TestStoredNames_SameSourceDistinctStamps(t *testing.T) {
	// Same filename uploaded twice (different content) must never share
	// stored names; the stamp keeps them apart.
	require.NotEqual(t, OriginalName("v1", "clip.mp4"), OriginalName("v2", "clip.mp4"))
	require.NotEqual(t, WebName("v1", "clip.mp4"), WebName("v2", "clip.mp4"))
	require.NotEqual(t, ThumbnailName("v1", "clip.mp4"), ThumbnailName("v2", "clip.mp4"))
}
