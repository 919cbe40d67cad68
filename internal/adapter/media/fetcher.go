// Package media downloads source audio for a video via yt-dlp.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

type commandRunner interface {
	Run(ctx context.Context, name string, args ...string) error
}

type execRunner struct{}

func (r *execRunner) Run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("%s exit %d: %s", name, exitErr.ExitCode(), stderr.String())
		}
		return err
	}
	return nil
}

type Fetcher struct {
	ytdlpPath string
	runner    commandRunner
}

func NewFetcher() *Fetcher {
	return &Fetcher{ytdlpPath: "yt-dlp", runner: &execRunner{}}
}

// FetchAudio downloads the audio track of a YouTube video as mp3 and returns
// the encoded bytes.
func (f *Fetcher) FetchAudio(ctx context.Context, youtubeID string) ([]byte, error) {
	dir, err := os.MkdirTemp("", "vodsheet-audio-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	dest := filepath.Join(dir, youtubeID+".mp3")
	url := "https://www.youtube.com/watch?v=" + youtubeID

	err = f.runner.Run(ctx, f.ytdlpPath,
		"--extract-audio",
		"--audio-format", "mp3",
		"--output", dest,
		url,
	)
	if err != nil {
		return nil, fmt.Errorf("fetch audio for %s: %w", youtubeID, err)
	}

	return os.ReadFile(dest) // #nosec G304 -- path is built from our own temp dir
}
