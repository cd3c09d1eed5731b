// Package whisper invokes the whisper speech recognition CLI and parses its
// output into timestamped transcript segments.
package whisper

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"golang.org/x/text/language"
)

// Segment is one recognized utterance with its start offset into the audio.
type Segment struct {
	Start float64 // seconds from the beginning of the audio
	Text  string
}

// Result holds the recognized segments and the language whisper detected
// (or was told to use).
type Result struct {
	Segments []Segment
	Lang     language.Tag
}

// Client runs the whisper CLI. The zero value is not usable; construct
// with New.
type Client struct {
	cmd   string
	model string
	lang  string
}

// New creates a whisper client. cmd defaults to "whisper" and model to
// "small" when empty. lang may be empty or "auto" for language detection.
func New(cmd, model, lang string) *Client {
	if strings.TrimSpace(cmd) == "" {
		cmd = "whisper"
	}
	if strings.TrimSpace(model) == "" {
		model = "small"
	}
	return &Client{cmd: cmd, model: model, lang: strings.TrimSpace(lang)}
}

// Transcribe runs speech recognition over audioPath and returns the
// recognized segments in non-decreasing start-time order. The whisper
// process writes VTT output into a scratch directory that is removed
// before returning.
func (c *Client) Transcribe(ctx context.Context, audioPath string) (*Result, error) {
	cmdPath, err := exec.LookPath(c.cmd)
	if err != nil {
		return nil, fmt.Errorf("whisper: command not found: %w", err)
	}

	outDir, err := os.MkdirTemp("", "whisper-*")
	if err != nil {
		return nil, fmt.Errorf("whisper: scratch dir: %w", err)
	}
	defer os.RemoveAll(outDir)

	args := []string{
		audioPath,
		"--model", c.model,
		"--output_format", "vtt",
		"--output_dir", outDir,
		"--task", "transcribe",
	}
	useLang := c.lang != "" && !strings.EqualFold(c.lang, "auto")
	if useLang {
		args = append(args, "--language", c.lang)
	}

	var buf bytes.Buffer
	cmd := exec.CommandContext(ctx, cmdPath, args...)
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("whisper failed: %w (output=%s)", err, strings.TrimSpace(buf.String()))
	}

	base := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	vttPath := filepath.Join(outDir, base+".vtt")
	if _, err := os.Stat(vttPath); err != nil {
		matches, _ := filepath.Glob(filepath.Join(outDir, base+"*.vtt"))
		if len(matches) == 0 {
			return nil, fmt.Errorf("whisper output not found in %s", outDir)
		}
		vttPath = matches[0]
	}

	f, err := os.Open(vttPath)
	if err != nil {
		return nil, fmt.Errorf("whisper: open output: %w", err)
	}
	defer f.Close()

	segments, err := ParseVTT(f)
	if err != nil {
		return nil, fmt.Errorf("whisper: parse output: %w", err)
	}

	tag := language.Und
	if useLang {
		if parsed, err := language.Parse(c.lang); err == nil {
			tag = parsed
		}
	}

	return &Result{Segments: segments, Lang: tag}, nil
}
