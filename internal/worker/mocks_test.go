package worker

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"vodsheet/features/cheatsheet"
	"vodsheet/features/job"
	"vodsheet/features/video"
	"vodsheet/internal/audio"
	"vodsheet/internal/settings"
	"vodsheet/internal/summarize"
)

type MockVideoStore struct{ mock.Mock }

func (m *MockVideoStore) Get(ctx context.Context, id string) (*video.Video, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*video.Video), args.Error(1)
}

func (m *MockVideoStore) UpdateStatus(ctx context.Context, id string, status video.ProcessingStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockVideoStore) UpdateAudioPath(ctx context.Context, id, path string) error {
	args := m.Called(ctx, id, path)
	return args.Error(0)
}

func (m *MockVideoStore) UpdateTranscriptPath(ctx context.Context, id, path string) error {
	args := m.Called(ctx, id, path)
	return args.Error(0)
}

func (m *MockVideoStore) UpdateTopics(ctx context.Context, id, mainTheme, persona string, topics []string) error {
	args := m.Called(ctx, id, mainTheme, persona, topics)
	return args.Error(0)
}

type MockCheatsheetStore struct{ mock.Mock }

func (m *MockCheatsheetStore) Get(ctx context.Context, id string) (*cheatsheet.Cheatsheet, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cheatsheet.Cheatsheet), args.Error(1)
}

func (m *MockCheatsheetStore) UpdateStatus(ctx context.Context, id string, status cheatsheet.ProcessingStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockCheatsheetStore) UpdateResult(ctx context.Context, id, content string, sections map[string]any) error {
	args := m.Called(ctx, id, content, sections)
	return args.Error(0)
}

func (m *MockCheatsheetStore) UpdateFailure(ctx context.Context, id, errMsg string) error {
	args := m.Called(ctx, id, errMsg)
	return args.Error(0)
}

type MockBlobStore struct{ mock.Mock }

func (m *MockBlobStore) SaveFile(name string, data []byte) (string, error) {
	args := m.Called(name, data)
	return args.String(0), args.Error(1)
}

func (m *MockBlobStore) ReadFile(path string) ([]byte, error) {
	args := m.Called(path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type MockFetcher struct{ mock.Mock }

func (m *MockFetcher) FetchAudio(ctx context.Context, youtubeID string) ([]byte, error) {
	args := m.Called(ctx, youtubeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type MockAnalyzer struct{ mock.Mock }

func (m *MockAnalyzer) Probe(ctx context.Context, path string) (audio.Metadata, error) {
	args := m.Called(ctx, path)
	return args.Get(0).(audio.Metadata), args.Error(1)
}

func (m *MockAnalyzer) DetectSilences(ctx context.Context, path string, minSilence, noiseDb float64) ([]audio.Silence, error) {
	args := m.Called(ctx, path, minSilence, noiseDb)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]audio.Silence), args.Error(1)
}

func (m *MockAnalyzer) CutRange(ctx context.Context, path string, r audio.TimeRange) ([]byte, error) {
	args := m.Called(ctx, path, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type MockTranscriber struct{ mock.Mock }

func (m *MockTranscriber) Transcribe(ctx context.Context, data []byte, mimeType, language string) (string, error) {
	args := m.Called(ctx, data, mimeType, language)
	return args.String(0), args.Error(1)
}

type MockJobRepo struct{ mock.Mock }

func (m *MockJobRepo) Save(ctx context.Context, j *job.Job) error {
	args := m.Called(ctx, j)
	return args.Error(0)
}

func (m *MockJobRepo) List(ctx context.Context) ([]job.Job, error) {
	args := m.Called(ctx)
	return args.Get(0).([]job.Job), args.Error(1)
}

func (m *MockJobRepo) Get(ctx context.Context, id string) (*job.Job, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*job.Job), args.Error(1)
}

func (m *MockJobRepo) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockJobRepo) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type stubSettings struct {
	set settings.Settings
}

func (s *stubSettings) Get(ctx context.Context) (*settings.Settings, error) {
	copied := s.set
	return &copied, nil
}

func defaultSettings() *stubSettings {
	return &stubSettings{set: settings.Settings{
		Model:           "gemini-test",
		Temperature:     0.3,
		MaxOutputTokens: 4096,
		ChunkSize:       10000,
		ChunkOverlap:    200,
		SafetyFactor:    0.8,
	}}
}

// fakeTransform routes each prompt through a reply function and records the
// prompts it saw. Safe for concurrent map phases.
type fakeTransform struct {
	mu      sync.Mutex
	prompts []string
	reply   func(prompt string) (string, error)
}

func (f *fakeTransform) Invoke(ctx context.Context, prompt string, cfg summarize.ModelConfig) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	return f.reply(prompt)
}

func (f *fakeTransform) seen() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.prompts))
	copy(out, f.prompts)
	return out
}
