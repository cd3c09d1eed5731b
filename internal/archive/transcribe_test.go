package archive

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcoeder/video-archive/internal/db"
	"github.com/jcoeder/video-archive/pkg/ffmpeg"
	"github.com/jcoeder/video-archive/pkg/whisper"
)

func TestBucketSegments(t *testing.T) {
	tests := []struct {
		name     string
		segments []whisper.Segment
		want     string
	}{
		{
			name: "three buckets",
			segments: []whisper.Segment{
				{Start: 0, Text: "hello"},
				{Start: 30, Text: "world"},
				{Start: 65, Text: "second"},
				{Start: 70, Text: "minute"},
				{Start: 130, Text: "third"},
			},
			want: "hello world\n\nsecond minute\n\nthird",
		},
		{
			name: "single bucket",
			segments: []whisper.Segment{
				{Start: 1, Text: "a"},
				{Start: 59, Text: "b"},
			},
			want: "a b",
		},
		{
			name:     "no segments",
			segments: nil,
			want:     "",
		},
		{
			name: "blank segments dropped",
			segments: []whisper.Segment{
				{Start: 0, Text: "  "},
				{Start: 5, Text: "kept"},
			},
			want: "kept",
		},
		{
			name: "gap skips empty buckets",
			segments: []whisper.Segment{
				{Start: 10, Text: "early"},
				{Start: 400, Text: "late"},
			},
			want: "early\n\nlate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BucketSegments(tt.segments, 60*time.Second)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBucketSegments_DefaultBucket(t *testing.T) {
	segments := []whisper.Segment{
		{Start: 0, Text: "a"},
		{Start: 61, Text: "b"},
	}
	assert.Equal(t, "a\n\nb", BucketSegments(segments, 0))
}

type fakeTranscriptionStore struct {
	video          *db.Video
	alreadyRunning bool

	resultRecorded   bool
	resultStatus     db.TranscriptionStatus
	resultTranscript string
	resultLang       string
}

func (s *fakeTranscriptionStore) MarkTranscriptionRunning(ctx context.Context, id pgtype.UUID) (bool, error) {
	if s.alreadyRunning {
		return false, nil
	}
	s.alreadyRunning = true
	return true, nil
}

func (s *fakeTranscriptionStore) GetVideoByID(ctx context.Context, id pgtype.UUID) (*db.Video, error) {
	return s.video, nil
}

func (s *fakeTranscriptionStore) SetTranscriptionResult(ctx context.Context, id pgtype.UUID, status db.TranscriptionStatus, transcript, lang string) error {
	s.resultRecorded = true
	s.resultStatus = status
	s.resultTranscript = transcript
	s.resultLang = lang
	return nil
}

func testTranscriber(store TranscriptionStore) *Transcriber {
	return &Transcriber{
		store: store,
		probe: func(ctx context.Context, path string) (*ffmpeg.ProbeResult, error) {
			return &ffmpeg.ProbeResult{AudioStreams: 1}, nil
		},
		extract: func(ctx context.Context, input, output string, sampleRate int) error {
			return nil
		},
		transcribe: func(ctx context.Context, audioPath string) (*whisper.Result, error) {
			return &whisper.Result{Segments: []whisper.Segment{{Start: 0, Text: "hello"}}}, nil
		},
	}
}

func testVideo() (*db.Video, pgtype.UUID) {
	id := db.NewUUID()
	return &db.Video{ID: id, OriginalPath: "/videos/original_v1_in.mp4"}, id
}

func TestTranscriber_Completes(t *testing.T) {
	video, id := testVideo()
	store := &fakeTranscriptionStore{video: video}

	require.NoError(t, testTranscriber(store).Process(context.Background(), id))
	require.True(t, store.resultRecorded)
	assert.Equal(t, db.TranscriptionCompleted, store.resultStatus)
	assert.Equal(t, "hello", store.resultTranscript)
}

func TestTranscriber_SkipsWhenAlreadyRunning(t *testing.T) {
	video, id := testVideo()
	store := &fakeTranscriptionStore{video: video, alreadyRunning: true}

	require.NoError(t, testTranscriber(store).Process(context.Background(), id))
	assert.False(t, store.resultRecorded, "a held running mark must make the run a no-op")
}

func TestTranscriber_NoAudioTrack(t *testing.T) {
	video, id := testVideo()
	store := &fakeTranscriptionStore{video: video}
	tr := testTranscriber(store)
	tr.probe = func(ctx context.Context, path string) (*ffmpeg.ProbeResult, error) {
		return &ffmpeg.ProbeResult{}, nil
	}

	require.NoError(t, tr.Process(context.Background(), id))
	assert.Equal(t, db.TranscriptionCompleted, store.resultStatus)
	assert.Equal(t, NoAudioTranscript, store.resultTranscript)
	assert.Empty(t, store.resultLang)
}

func TestTranscriber_UnusableAudioCompletesWithPlaceholder(t *testing.T) {
	// The probe reports an audio stream but extraction cannot decode it.
	// That is the no-audio outcome, not a failure.
	video, id := testVideo()
	store := &fakeTranscriptionStore{video: video}
	tr := testTranscriber(store)
	tr.extract = func(ctx context.Context, input, output string, sampleRate int) error {
		return errors.New("could not decode audio stream")
	}

	require.NoError(t, tr.Process(context.Background(), id))
	assert.Equal(t, db.TranscriptionCompleted, store.resultStatus)
	assert.Equal(t, NoAudioTranscript, store.resultTranscript)
}

func TestTranscriber_WhisperFailureRecorded(t *testing.T) {
	video, id := testVideo()
	store := &fakeTranscriptionStore{video: video}
	tr := testTranscriber(store)
	tr.transcribe = func(ctx context.Context, audioPath string) (*whisper.Result, error) {
		return nil, errors.New("model not found")
	}

	require.Error(t, tr.Process(context.Background(), id))
	assert.Equal(t, db.TranscriptionFailed, store.resultStatus)
	assert.Contains(t, store.resultTranscript, "Transcription failed")
	assert.Contains(t, store.resultTranscript, "model not found")
}
