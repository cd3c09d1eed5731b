package ffmpeg

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandBuild(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		output   string
		opts     []Option
		wantArgs []string
	}{
		{
			name:   "web transcode",
			input:  "input.mkv",
			output: "output.mp4",
			opts: []Option{
				VideoCodec("libx264"),
				CRF(23),
				Preset("veryfast"),
				PixelFormat("yuv420p"),
				AudioCodec("aac"),
				AudioBitrate("128k"),
			},
			wantArgs: []string{
				"-hide_banner", "-y",
				"-i", "input.mkv",
				"-c:v", "libx264",
				"-crf", "23",
				"-preset", "veryfast",
				"-pix_fmt", "yuv420p",
				"-c:a", "aac",
				"-b:a", "128k",
				"-movflags", "+faststart",
				"output.mp4",
			},
		},
		{
			name:   "thumbnail with seek",
			input:  "input.mp4",
			output: "thumb.jpg",
			opts: []Option{
				Seek(1 * time.Second),
				ScaleHeight(360),
				Frames(1),
				Quality(4),
			},
			wantArgs: []string{
				"-hide_banner", "-y",
				"-ss", "1.000",
				"-i", "input.mp4",
				"-frames:v", "1",
				"-q:v", "4",
				"-vf", "scale=-2:360",
				"thumb.jpg",
			},
		},
		{
			name:   "audio extraction",
			input:  "input.mp4",
			output: "audio.wav",
			opts: []Option{
				NoVideo,
				AudioChannels(1),
				AudioSampleRate(16000),
				AudioCodec("pcm_s16le"),
				Format("wav"),
			},
			wantArgs: []string{
				"-hide_banner", "-y",
				"-i", "input.mp4",
				"-vn",
				"-ac", "1",
				"-ar", "16000",
				"-c:a", "pcm_s16le",
				"-f", "wav",
				"audio.wav",
			},
		},
		{
			name:   "no faststart for jpg",
			input:  "input.mp4",
			output: "frame.jpg",
			opts:   []Option{Frames(1)},
			wantArgs: []string{
				"-hide_banner", "-y",
				"-i", "input.mp4",
				"-frames:v", "1",
				"frame.jpg",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := NewCommand(tt.input, tt.output, tt.opts...)
			assert.Equal(t, tt.wantArgs, cmd.Build())
		})
	}
}

func TestValidateOutput(t *testing.T) {
	dir := t.TempDir()

	missing := filepath.Join(dir, "missing.mp4")
	require.Error(t, validateOutput(missing))

	empty := filepath.Join(dir, "empty.mp4")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	require.Error(t, validateOutput(empty))

	ok := filepath.Join(dir, "ok.mp4")
	require.NoError(t, os.WriteFile(ok, []byte("data"), 0o644))
	require.NoError(t, validateOutput(ok))
}

func TestErrorMessage_TruncatesStderr(t *testing.T) {
	err := &Error{
		Args:   []string{"-i", "in.mp4", "out.mp4"},
		Stderr: "line1\nline2\nline3\nline4\nline5",
		Err:    assert.AnError,
	}
	msg := err.Error()
	assert.Contains(t, msg, "line5")
	assert.NotContains(t, msg, "line1")
}

func TestParseProbeOutput(t *testing.T) {
	raw := &ffprobeOutput{}
	raw.Format.FormatName = "mov,mp4,m4a,3gp,3g2,mj2"
	raw.Format.Duration = "12.5"
	raw.Format.Size = "1024"
	raw.Streams = []struct {
		CodecType  string `json:"codec_type"`
		CodecName  string `json:"codec_name"`
		Width      int    `json:"width"`
		Height     int    `json:"height"`
		SampleRate string `json:"sample_rate"`
		Channels   int    `json:"channels"`
	}{
		{CodecType: "video", CodecName: "h264", Width: 1920, Height: 1080},
		{CodecType: "audio", CodecName: "aac", SampleRate: "48000", Channels: 2},
	}

	result := parseProbeOutput(raw)
	assert.Equal(t, 1, result.VideoStreams)
	assert.Equal(t, 1, result.AudioStreams)
	assert.True(t, result.HasAudio())
	assert.Equal(t, "h264", result.VideoCodec)
	assert.Equal(t, 1920, result.Width)
	assert.Equal(t, 48000, result.AudioSampleRate)
	assert.InDelta(t, 12.5, result.Duration, 0.001)
	assert.Equal(t, int64(1024), result.Size)
}

func TestParseProbeOutput_NoAudio(t *testing.T) {
	raw := &ffprobeOutput{}
	raw.Streams = []struct {
		CodecType  string `json:"codec_type"`
		CodecName  string `json:"codec_name"`
		Width      int    `json:"width"`
		Height     int    `json:"height"`
		SampleRate string `json:"sample_rate"`
		Channels   int    `json:"channels"`
	}{
		{CodecType: "video", CodecName: "h264", Width: 640, Height: 480},
	}

	result := parseProbeOutput(raw)
	assert.False(t, result.HasAudio())
}
