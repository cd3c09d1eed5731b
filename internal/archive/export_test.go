package archive

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExportName(t *testing.T) {
	now := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	assert.Equal(t, "archive_20250314-092653.zip", ExportName(now))
}

func TestEntryName_Deduplicates(t *testing.T) {
	seen := make(map[string]int)
	assert.Equal(t, "original_clip.mp4", entryName("original_clip.mp4", seen))
	assert.Equal(t, "original_clip-1.mp4", entryName("original_clip.mp4", seen))
	assert.Equal(t, "original_clip-2.mp4", entryName("original_clip.mp4", seen))
	assert.Equal(t, "other.mp4", entryName("other.mp4", seen))
}
