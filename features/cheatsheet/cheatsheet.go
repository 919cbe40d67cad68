package cheatsheet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"vodsheet/internal/config"
	"vodsheet/internal/middleware"
)

var (
	ErrVideoNotFound = errors.New("video not found")
	ErrVideoNotReady = errors.New("video has no transcript yet")
)

type ProcessingStatus string

const (
	StatusPending    ProcessingStatus = "pending"
	StatusProcessing ProcessingStatus = "processing"
	StatusDone       ProcessingStatus = "done"
	StatusFailed     ProcessingStatus = "failed"
)

type Cheatsheet struct {
	ID               string           `json:"id"`
	VideoID          string           `json:"video_id"`
	ProcessingStatus ProcessingStatus `json:"processing_status"`
	NeededTopics     []string         `json:"needed_topics,omitempty"`
	Language         string           `json:"language,omitempty"`
	Structured       bool             `json:"structured"`
	Content          string           `json:"content,omitempty"`
	Sections         map[string]any   `json:"sections,omitempty"`
	Error            string           `json:"error,omitempty"`
	Comment          string           `json:"comment,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

type Repository interface {
	Save(ctx context.Context, c *Cheatsheet) error
	Get(ctx context.Context, id string) (*Cheatsheet, error)
	List(ctx context.Context, videoID string) ([]Cheatsheet, error)
	UpdateStatus(ctx context.Context, id string, status ProcessingStatus) error
	UpdateResult(ctx context.Context, id, content string, sections map[string]any) error
	UpdateFailure(ctx context.Context, id, errMsg string) error
	Count(ctx context.Context) (int, error)
}

// VideoChecker is the one thing the service needs to know about videos:
// that the target exists. Implemented by the video repository.
type VideoChecker interface {
	Exists(ctx context.Context, id string) (bool, error)
}

type EventPublisher interface {
	Publish(topic string, body []byte) error
}

type Service struct {
	repo   Repository
	videos VideoChecker
	pub    EventPublisher
}

func NewService(repo Repository, videos VideoChecker, pub EventPublisher) *Service {
	return &Service{repo: repo, videos: videos, pub: pub}
}

// Create registers a cheatsheet request and enqueues its generation run.
func (s *Service) Create(ctx context.Context, c *Cheatsheet) error {
	ok, err := s.videos.Exists(ctx, c.VideoID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrVideoNotFound, c.VideoID)
	}

	c.ProcessingStatus = StatusPending
	if err := s.repo.Save(ctx, c); err != nil {
		return err
	}

	payload, _ := json.Marshal(map[string]any{
		"cheatsheet_id":  c.ID,
		"correlation_id": middleware.GetCorrelationID(ctx),
	})
	if err := s.pub.Publish(config.TopicCheatsheetGenerate, payload); err != nil {
		slog.ErrorContext(ctx, "failed to publish cheatsheet.generate event", "error", err, "cheatsheet_id", c.ID)
	} else {
		slog.InfoContext(ctx, "published cheatsheet.generate event", "cheatsheet_id", c.ID, "video_id", c.VideoID)
	}

	return nil
}

func (s *Service) Get(ctx context.Context, id string) (*Cheatsheet, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, videoID string) ([]Cheatsheet, error) {
	return s.repo.List(ctx, videoID)
}
