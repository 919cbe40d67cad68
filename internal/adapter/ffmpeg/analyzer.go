// Package ffmpeg shells out to ffprobe/ffmpeg for audio metadata, silence
// detection, and time-range extraction.
package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"vodsheet/internal/audio"
)

type commandResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// commandRunner abstracts process execution for testability.
type commandRunner interface {
	Run(ctx context.Context, name string, args ...string) (commandResult, error)
}

type execRunner struct{}

func (r *execRunner) Run(ctx context.Context, name string, args ...string) (commandResult, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := commandResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: 0,
	}
	if err != nil {
		result.ExitCode = -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		}
		return result, err
	}

	return result, nil
}

type Analyzer struct {
	ffmpegPath  string
	ffprobePath string
	runner      commandRunner
}

func NewAnalyzer() *Analyzer {
	return &Analyzer{
		ffmpegPath:  "ffmpeg",
		ffprobePath: "ffprobe",
		runner:      &execRunner{},
	}
}

// Probe reads duration and bitrate from the container metadata.
func (a *Analyzer) Probe(ctx context.Context, path string) (audio.Metadata, error) {
	res, err := a.runner.Run(ctx, a.ffprobePath,
		"-v", "error",
		"-show_entries", "format=duration,bit_rate",
		"-of", "default=noprint_wrappers=1",
		path,
	)
	if err != nil {
		return audio.Metadata{}, fmt.Errorf("%w: ffprobe exit %d: %v", audio.ErrSplit, res.ExitCode, err)
	}

	meta := audio.Metadata{}
	for _, line := range strings.Split(res.Stdout, "\n") {
		key, val, found := strings.Cut(strings.TrimSpace(line), "=")
		if !found {
			continue
		}
		switch key {
		case "duration":
			meta.DurationSeconds, _ = strconv.ParseFloat(val, 64)
		case "bit_rate":
			meta.BitrateBitsPerSecond, _ = strconv.Atoi(val)
		}
	}

	if meta.DurationSeconds <= 0 || meta.BitrateBitsPerSecond <= 0 {
		return audio.Metadata{}, fmt.Errorf("%w: unreadable metadata for %s", audio.ErrSplit, path)
	}
	return meta, nil
}

// DetectSilences runs the silencedetect filter and parses its stderr stream.
func (a *Analyzer) DetectSilences(ctx context.Context, path string, minSilence, noiseDb float64) ([]audio.Silence, error) {
	filter := fmt.Sprintf("silencedetect=noise=%gdB:d=%g", noiseDb, minSilence)
	res, err := a.runner.Run(ctx, a.ffmpegPath,
		"-hide_banner",
		"-i", path,
		"-af", filter,
		"-f", "null", "-",
	)
	if err != nil {
		return nil, fmt.Errorf("%w: silencedetect exit %d: %v", audio.ErrSplit, res.ExitCode, err)
	}

	return parseSilences(res.Stderr), nil
}

// CutRange re-encodes one time range of the input into an mp3 segment.
func (a *Analyzer) CutRange(ctx context.Context, path string, r audio.TimeRange) ([]byte, error) {
	res, err := a.runner.Run(ctx, a.ffmpegPath,
		"-hide_banner",
		"-ss", strconv.FormatFloat(r.Start, 'f', 3, 64),
		"-t", strconv.FormatFloat(r.Duration(), 'f', 3, 64),
		"-i", path,
		"-f", "mp3",
		"pipe:1",
	)
	if err != nil {
		return nil, fmt.Errorf("%w: cut %g-%g exit %d: %v", audio.ErrSplit, r.Start, r.End, res.ExitCode, err)
	}
	return []byte(res.Stdout), nil
}

// parseSilences extracts silence_start/silence_end pairs from silencedetect
// output. An unterminated trailing silence_start is dropped.
func parseSilences(stderr string) []audio.Silence {
	var out []audio.Silence
	start := -1.0

	for _, line := range strings.Split(stderr, "\n") {
		if idx := strings.Index(line, "silence_start:"); idx >= 0 {
			val := strings.TrimSpace(line[idx+len("silence_start:"):])
			if f, err := strconv.ParseFloat(val, 64); err == nil {
				start = f
			}
			continue
		}
		if idx := strings.Index(line, "silence_end:"); idx >= 0 && start >= 0 {
			rest := strings.TrimSpace(line[idx+len("silence_end:"):])
			// "silence_end: 15.6 | silence_duration: 3.26"
			if cut := strings.IndexAny(rest, " |"); cut > 0 {
				rest = rest[:cut]
			}
			if f, err := strconv.ParseFloat(rest, 64); err == nil {
				out = append(out, audio.Silence{Start: start, End: f})
			}
			start = -1
		}
	}
	return out
}
