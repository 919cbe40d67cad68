package worker

import (
	"context"

	"vodsheet/features/cheatsheet"
	"vodsheet/features/video"
	"vodsheet/internal/audio"
	"vodsheet/internal/settings"
)

type VideoStore interface {
	Get(ctx context.Context, id string) (*video.Video, error)
	UpdateStatus(ctx context.Context, id string, status video.ProcessingStatus) error
	UpdateAudioPath(ctx context.Context, id, path string) error
	UpdateTranscriptPath(ctx context.Context, id, path string) error
	UpdateTopics(ctx context.Context, id, mainTheme, persona string, topics []string) error
}

type CheatsheetStore interface {
	Get(ctx context.Context, id string) (*cheatsheet.Cheatsheet, error)
	UpdateStatus(ctx context.Context, id string, status cheatsheet.ProcessingStatus) error
	UpdateResult(ctx context.Context, id, content string, sections map[string]any) error
	UpdateFailure(ctx context.Context, id, errMsg string) error
}

type BlobStore interface {
	SaveFile(name string, data []byte) (string, error)
	ReadFile(path string) ([]byte, error)
}

type AudioFetcher interface {
	FetchAudio(ctx context.Context, youtubeID string) ([]byte, error)
}

type AudioAnalyzer interface {
	Probe(ctx context.Context, path string) (audio.Metadata, error)
	DetectSilences(ctx context.Context, path string, minSilence, noiseDb float64) ([]audio.Silence, error)
	CutRange(ctx context.Context, path string, r audio.TimeRange) ([]byte, error)
}

type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, mimeType, language string) (string, error)
}

type SettingsSource interface {
	Get(ctx context.Context) (*settings.Settings, error)
}

// Config carries the pipeline knobs that are deploy-time rather than
// runtime-editable.
type Config struct {
	MaxAudioChunkBytes int
	MinSilenceSeconds  float64
	SilenceNoiseDb     float64
	MapConcurrency     int
	CombineBudget      int
}
