package video

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"vodsheet/internal/config"
	"vodsheet/internal/middleware"
)

var ErrInvalidURL = errors.New("invalid YouTube URL")

type ProcessingStatus string

const (
	StatusPending             ProcessingStatus = "pending"
	StatusAudioFetched        ProcessingStatus = "audio_fetched"
	StatusTranscriptGenerated ProcessingStatus = "transcript_generated"
	StatusTopicsFetched       ProcessingStatus = "topics_fetched"
)

type Video struct {
	ID               string           `json:"id"`
	YoutubeID        string           `json:"youtube_id"`
	ProcessingStatus ProcessingStatus `json:"processing_status"`
	Title            string           `json:"title,omitempty"`
	Language         string           `json:"language,omitempty"`
	AudioPath        string           `json:"-"`
	TranscriptPath   string           `json:"-"`
	MainTheme        string           `json:"main_theme,omitempty"`
	Persona          string           `json:"persona,omitempty"`
	DiscussionTopics []string         `json:"discussion_topics,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

type Repository interface {
	Save(ctx context.Context, v *Video) error
	Get(ctx context.Context, id string) (*Video, error)
	GetByYoutubeID(ctx context.Context, youtubeID string) (*Video, error)
	List(ctx context.Context) ([]Video, error)
	UpdateStatus(ctx context.Context, id string, status ProcessingStatus) error
	UpdateAudioPath(ctx context.Context, id, path string) error
	UpdateTranscriptPath(ctx context.Context, id, path string) error
	UpdateTopics(ctx context.Context, id, mainTheme, persona string, topics []string) error
	Count(ctx context.Context) (int, error)
}

type EventPublisher interface {
	Publish(topic string, body []byte) error
}

type Service struct {
	repo Repository
	pub  EventPublisher
}

func NewService(repo Repository, pub EventPublisher) *Service {
	return &Service{repo: repo, pub: pub}
}

var youtubeIDRe = regexp.MustCompile(`^.*(youtu\.be/|v/|u/\w/|embed/|watch\?v=|&v=)([^#&?]*).*`)

// ExtractYoutubeID pulls the 11-character video id out of the usual YouTube
// URL shapes. Empty string means no valid id was found.
func ExtractYoutubeID(url string) string {
	m := youtubeIDRe.FindStringSubmatch(url)
	if m != nil && len(m[2]) == 11 {
		return m[2]
	}
	return ""
}

// Create registers a video and enqueues its processing run. Re-submitting a
// known YouTube id returns the existing record instead of a duplicate.
func (s *Service) Create(ctx context.Context, url string) (*Video, error) {
	youtubeID := ExtractYoutubeID(url)
	if youtubeID == "" {
		return nil, fmt.Errorf("%w: %s", ErrInvalidURL, url)
	}

	if existing, err := s.repo.GetByYoutubeID(ctx, youtubeID); err == nil && existing != nil {
		return existing, nil
	}

	v := &Video{
		YoutubeID:        youtubeID,
		ProcessingStatus: StatusPending,
	}
	if err := s.repo.Save(ctx, v); err != nil {
		return nil, err
	}

	payload, _ := json.Marshal(map[string]any{
		"video_id":       v.ID,
		"correlation_id": middleware.GetCorrelationID(ctx),
	})
	if err := s.pub.Publish(config.TopicVideoProcess, payload); err != nil {
		slog.ErrorContext(ctx, "failed to publish video.process event", "error", err, "video_id", v.ID)
	} else {
		slog.InfoContext(ctx, "published video.process event", "video_id", v.ID, "youtube_id", youtubeID)
	}

	return v, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Video, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]Video, error) {
	return s.repo.List(ctx)
}
