package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"time"
)

// TranscodeOptions configures web-copy transcoding.
type TranscodeOptions struct {
	CRF          int    // Constant rate factor (default: 23)
	Preset       string // x264 preset (default: "veryfast")
	AudioBitrate string // AAC bitrate (default: "128k")
}

// TranscodeWeb normalizes an arbitrary input video into a web-playable
// MP4 (h264 + aac + faststart). The operation only succeeds when ffmpeg
// exits cleanly AND the output file exists AND has nonzero size; any
// partial output is deleted on failure, including timeouts via ctx.
func TranscodeWeb(ctx context.Context, input, output string, opts *TranscodeOptions) error {
	if opts == nil {
		opts = &TranscodeOptions{}
	}
	if opts.CRF == 0 {
		opts.CRF = 23
	}
	if opts.Preset == "" {
		opts.Preset = "veryfast"
	}
	if opts.AudioBitrate == "" {
		opts.AudioBitrate = "128k"
	}

	err := Run(ctx, input, output,
		VideoCodec("libx264"),
		CRF(opts.CRF),
		Preset(opts.Preset),
		PixelFormat("yuv420p"),
		AudioCodec("aac"),
		AudioBitrate(opts.AudioBitrate),
	)
	if err != nil {
		_ = os.Remove(output)
		return err
	}

	if err := validateOutput(output); err != nil {
		_ = os.Remove(output)
		return err
	}
	return nil
}

// ThumbnailOptions configures thumbnail extraction.
type ThumbnailOptions struct {
	Offset  time.Duration // Where to extract from (default: 1s)
	Height  int           // Target height, width preserves aspect (default: 360)
	Quality int           // JPEG quality 1-31, lower is better (default: 4)
}

// ExtractThumbnail decodes a single representative frame as a JPEG, scaled
// to a fixed height with width preserving the aspect ratio. It seeks to
// the configured offset; when the video is shorter than the offset (or the
// seek otherwise fails to produce a frame) it falls back to frame zero.
// On failure no output file is left behind.
func ExtractThumbnail(ctx context.Context, input, output string, opts *ThumbnailOptions) error {
	if opts == nil {
		opts = &ThumbnailOptions{}
	}
	if opts.Offset == 0 {
		opts.Offset = 1 * time.Second
	}
	if opts.Height == 0 {
		opts.Height = 360
	}
	if opts.Quality == 0 {
		opts.Quality = 4
	}

	frame := []Option{
		ScaleHeight(opts.Height),
		Frames(1),
		Quality(opts.Quality),
	}

	err := Run(ctx, input, output, append([]Option{Seek(opts.Offset)}, frame...)...)
	if err == nil {
		if err = validateOutput(output); err == nil {
			return nil
		}
	}
	_ = os.Remove(output)

	// Seeking past the end of a short video yields no frame; frame zero
	// always exists in a decodable file.
	if err := Run(ctx, input, output, frame...); err != nil {
		_ = os.Remove(output)
		return err
	}
	if err := validateOutput(output); err != nil {
		_ = os.Remove(output)
		return err
	}
	return nil
}

// ExtractAudio extracts the audio track as mono PCM WAV at the given sample
// rate, the input format expected by speech recognition models.
func ExtractAudio(ctx context.Context, input, output string, sampleRate int) error {
	if sampleRate == 0 {
		sampleRate = 16000
	}

	err := Run(ctx, input, output,
		NoVideo,
		AudioChannels(1),
		AudioSampleRate(sampleRate),
		AudioCodec("pcm_s16le"),
		Format("wav"),
	)
	if err != nil {
		_ = os.Remove(output)
		return err
	}
	if err := validateOutput(output); err != nil {
		_ = os.Remove(output)
		return err
	}
	return nil
}

// validateOutput verifies an output file exists and is nonzero. A clean
// ffmpeg exit alone does not prove a usable artifact.
func validateOutput(path string) error {
	fi, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("ffmpeg: output missing: %w", err)
	}
	if fi.Size() == 0 {
		return fmt.Errorf("ffmpeg: output %s is empty", path)
	}
	return nil
}
