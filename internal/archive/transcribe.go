package archive

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/jcoeder/video-archive/internal/db"
	"github.com/jcoeder/video-archive/internal/metrics"
	"github.com/jcoeder/video-archive/pkg/ffmpeg"
	"github.com/jcoeder/video-archive/pkg/whisper"
)

// NoAudioTranscript is stored when a video carries no audio stream.
// Absence of speech is a completed transcription, not a failure.
const NoAudioTranscript = "No audio track detected."

// transcriptionBucket groups transcript segments into fixed intervals.
const transcriptionBucket = 60 * time.Second

// whisperSampleRate is what the speech model expects.
const whisperSampleRate = 16000

// TranscriptionStore is the slice of the video store a transcription
// run needs. *db.Queries satisfies it.
type TranscriptionStore interface {
	MarkTranscriptionRunning(ctx context.Context, id pgtype.UUID) (bool, error)
	GetVideoByID(ctx context.Context, id pgtype.UUID) (*db.Video, error)
	SetTranscriptionResult(ctx context.Context, id pgtype.UUID, status db.TranscriptionStatus, transcript, lang string) error
}

// Transcriber runs speech-to-text over archived originals and records
// the outcome on the video row. Every run opens its own database scope;
// nothing is shared with the request that triggered it.
type Transcriber struct {
	store   TranscriptionStore
	timeout time.Duration

	probe      func(ctx context.Context, path string) (*ffmpeg.ProbeResult, error)
	extract    func(ctx context.Context, input, output string, sampleRate int) error
	transcribe func(ctx context.Context, audioPath string) (*whisper.Result, error)
}

// NewTranscriber wires a transcriber. timeout <= 0 disables the limit.
func NewTranscriber(store TranscriptionStore, client *whisper.Client, timeout time.Duration) *Transcriber {
	return &Transcriber{
		store:      store,
		timeout:    timeout,
		probe:      ffmpeg.Probe,
		extract:    ffmpeg.ExtractAudio,
		transcribe: client.Transcribe,
	}
}

// Process transcribes one video. The status row moves none/completed/
// failed -> running -> {completed, failed}; when another run already
// holds the running mark this is a no-op. Failures after the running
// mark are recorded on the row with the error message in the transcript
// field so the owner can see what went wrong.
func (t *Transcriber) Process(ctx context.Context, videoID pgtype.UUID) error {
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	started, err := t.store.MarkTranscriptionRunning(ctx, videoID)
	if err != nil {
		return fmt.Errorf("mark transcription running: %w", err)
	}
	if !started {
		slog.Info("Transcription already running", "video", db.UUIDString(videoID))
		return nil
	}

	video, err := t.store.GetVideoByID(ctx, videoID)
	if err != nil {
		return t.fail(ctx, videoID, fmt.Errorf("load video: %w", err))
	}

	probe, err := t.probe(ctx, video.OriginalPath)
	if err != nil {
		return t.fail(ctx, videoID, fmt.Errorf("probe original: %w", err))
	}
	if !probe.HasAudio() {
		return t.noAudio(ctx, videoID)
	}

	scratch, err := os.MkdirTemp("", "transcribe-*")
	if err != nil {
		return t.fail(ctx, videoID, fmt.Errorf("create scratch dir: %w", err))
	}
	defer os.RemoveAll(scratch)

	audioPath := filepath.Join(scratch, "audio.wav")
	if err := t.extract(ctx, video.OriginalPath, audioPath, whisperSampleRate); err != nil {
		// The probe saw an audio stream but no usable audio came out of
		// it. Same outcome as no audio track at all.
		slog.Warn("Audio extraction produced nothing usable", "video", db.UUIDString(videoID), "error", err)
		return t.noAudio(ctx, videoID)
	}

	result, err := t.transcribe(ctx, audioPath)
	if err != nil {
		return t.fail(ctx, videoID, fmt.Errorf("run whisper: %w", err))
	}

	transcript := BucketSegments(result.Segments, transcriptionBucket)
	lang := ""
	if !result.Lang.IsRoot() {
		lang = result.Lang.String()
	}

	if err := t.store.SetTranscriptionResult(ctx, videoID, db.TranscriptionCompleted, transcript, lang); err != nil {
		return fmt.Errorf("persist transcript: %w", err)
	}
	metrics.TranscriptionsTotal.WithLabelValues("completed").Inc()
	slog.Info("Transcription completed", "video", db.UUIDString(videoID), "segments", len(result.Segments))
	return nil
}

// noAudio records the completed-without-speech outcome: silence is not
// a failure.
func (t *Transcriber) noAudio(ctx context.Context, videoID pgtype.UUID) error {
	metrics.TranscriptionsTotal.WithLabelValues("no_audio").Inc()
	return t.store.SetTranscriptionResult(ctx, videoID, db.TranscriptionCompleted, NoAudioTranscript, "")
}

// fail records a terminal failure on the video row. The message lands in
// the transcript field so it is visible in the archive, not only in
// logs. The write uses a fresh context so a timed-out run can still
// record its outcome.
func (t *Transcriber) fail(ctx context.Context, videoID pgtype.UUID, cause error) error {
	metrics.TranscriptionsTotal.WithLabelValues("failed").Inc()

	writeCtx := ctx
	if writeCtx.Err() != nil {
		var cancel context.CancelFunc
		writeCtx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
	}

	msg := fmt.Sprintf("Transcription failed: %v", cause)
	if err := t.store.SetTranscriptionResult(writeCtx, videoID, db.TranscriptionFailed, msg, ""); err != nil {
		slog.Error("Could not record transcription failure", "video", db.UUIDString(videoID), "error", err)
	}
	return cause
}

// BucketSegments groups transcript segments into fixed-duration buckets
// keyed by segment start time. Texts within a bucket are joined with a
// single space, buckets with a blank line. Segments are assumed to be
// in non-decreasing start-time order.
func BucketSegments(segments []whisper.Segment, bucket time.Duration) string {
	if bucket <= 0 {
		bucket = transcriptionBucket
	}
	bucketSeconds := bucket.Seconds()

	var paragraphs []string
	var current []string
	currentBucket := -1

	for _, seg := range segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		b := int(seg.Start / bucketSeconds)
		if b != currentBucket && len(current) > 0 {
			paragraphs = append(paragraphs, strings.Join(current, " "))
			current = current[:0]
		}
		currentBucket = b
		current = append(current, text)
	}
	if len(current) > 0 {
		paragraphs = append(paragraphs, strings.Join(current, " "))
	}
	return strings.Join(paragraphs, "\n\n")
}
