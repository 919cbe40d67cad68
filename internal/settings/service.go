package settings

import (
	"context"
)

// Settings is the singleton runtime configuration row, editable over HTTP so
// pipeline tuning does not need a redeploy.
type Settings struct {
	ID              int     `json:"-"`
	GeminiAPIKey    string  `json:"gemini_api_key"`
	Model           string  `json:"model"`
	Temperature     float32 `json:"temperature"`
	MaxOutputTokens int32   `json:"max_output_tokens"`
	ChunkSize       int     `json:"chunk_size"`
	ChunkOverlap    int     `json:"chunk_overlap"`
	SafetyFactor    float64 `json:"safety_factor"`
}

type Repository interface {
	Get(ctx context.Context) (*Settings, error)
	Update(ctx context.Context, s *Settings) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context) (*Settings, error) {
	return s.repo.Get(ctx)
}

func (s *Service) Update(ctx context.Context, set *Settings) error {
	return s.repo.Update(ctx, set)
}
