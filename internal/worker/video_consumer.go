package worker

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/nsqio/go-nsq"
	"golang.org/x/sync/errgroup"

	"vodsheet/features/job"
	"vodsheet/features/video"
	"vodsheet/internal/audio"
	"vodsheet/internal/config"
	"vodsheet/internal/middleware"
	"vodsheet/internal/prompts"
	"vodsheet/internal/summarize"
	"vodsheet/internal/text"
)

// VideoConsumer drives a video from pending to topics_fetched: download the
// audio, transcribe it chunk by chunk, then derive theme, persona and
// discussion topics from the transcript. Each stage persists its output and
// advances the status, so a redelivered message resumes where the last run
// stopped.
type VideoConsumer struct {
	videos      VideoStore
	jobs        job.Repository
	blobs       BlobStore
	fetcher     AudioFetcher
	analyzer    AudioAnalyzer
	transcriber Transcriber
	transform   summarize.Transform
	settings    SettingsSource
	cfg         Config
}

func NewVideoConsumer(
	videos VideoStore,
	jobs job.Repository,
	blobs BlobStore,
	fetcher AudioFetcher,
	analyzer AudioAnalyzer,
	transcriber Transcriber,
	transform summarize.Transform,
	settings SettingsSource,
	cfg Config,
) *VideoConsumer {
	return &VideoConsumer{
		videos:      videos,
		jobs:        jobs,
		blobs:       blobs,
		fetcher:     fetcher,
		analyzer:    analyzer,
		transcriber: transcriber,
		transform:   transform,
		settings:    settings,
		cfg:         cfg,
	}
}

func (h *VideoConsumer) HandleMessage(m *nsq.Message) error {
	if len(m.Body) == 0 {
		return nil
	}

	var payload VideoProcessPayload
	err := json.Unmarshal(m.Body, &payload)

	correlationID := payload.CorrelationID
	if correlationID == "" {
		correlationID = uuid.New().String()
	}

	ctx := middleware.WithCorrelationID(context.Background(), correlationID)

	if err != nil {
		slog.ErrorContext(ctx, "invalid message format, dropping", "error", err)
		return nil
	}
	if payload.VideoID == "" {
		slog.ErrorContext(ctx, "missing video_id, dropping")
		return nil
	}

	v, err := h.videos.Get(ctx, payload.VideoID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			slog.ErrorContext(ctx, "video not found, dropping", "video_id", payload.VideoID)
			return nil
		}
		return err
	}

	if err := h.process(ctx, v); err != nil {
		slog.ErrorContext(ctx, "video processing failed", "video_id", v.ID, "status", v.ProcessingStatus, "error", err)
		h.saveFailedJob(ctx, v.ID, m.Body, err)
		return nil
	}

	return nil
}

func (h *VideoConsumer) process(ctx context.Context, v *video.Video) error {
	if v.ProcessingStatus == video.StatusPending {
		if err := h.fetchAudio(ctx, v); err != nil {
			return fmt.Errorf("fetch audio: %w", err)
		}
	}
	if v.ProcessingStatus == video.StatusAudioFetched {
		if err := h.transcribe(ctx, v); err != nil {
			return fmt.Errorf("transcribe: %w", err)
		}
	}
	if v.ProcessingStatus == video.StatusTranscriptGenerated {
		if err := h.extractTopics(ctx, v); err != nil {
			return fmt.Errorf("extract topics: %w", err)
		}
	}
	return nil
}

func (h *VideoConsumer) fetchAudio(ctx context.Context, v *video.Video) error {
	slog.InfoContext(ctx, "fetching audio", "video_id", v.ID, "youtube_id", v.YoutubeID)

	data, err := h.fetcher.FetchAudio(ctx, v.YoutubeID)
	if err != nil {
		return err
	}

	path, err := h.blobs.SaveFile(v.ID+".mp3", data)
	if err != nil {
		return err
	}

	if err := h.videos.UpdateAudioPath(ctx, v.ID, path); err != nil {
		return err
	}
	if err := h.videos.UpdateStatus(ctx, v.ID, video.StatusAudioFetched); err != nil {
		return err
	}

	v.AudioPath = path
	v.ProcessingStatus = video.StatusAudioFetched
	return nil
}

func (h *VideoConsumer) transcribe(ctx context.Context, v *video.Video) error {
	set, err := h.settings.Get(ctx)
	if err != nil {
		return err
	}

	meta, err := h.analyzer.Probe(ctx, v.AudioPath)
	if err != nil {
		return err
	}

	silences, err := h.analyzer.DetectSilences(ctx, v.AudioPath, h.cfg.MinSilenceSeconds, h.cfg.SilenceNoiseDb)
	if err != nil {
		return err
	}

	ranges, err := audio.Plan(meta, silences, audio.Options{
		MaxChunkBytes: h.cfg.MaxAudioChunkBytes,
		SafetyFactor:  set.SafetyFactor,
	})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "transcribing audio", "video_id", v.ID, "chunks", len(ranges), "duration", meta.DurationSeconds)

	parts := make([]string, 0, len(ranges))
	for i, r := range ranges {
		cut, err := h.analyzer.CutRange(ctx, v.AudioPath, r)
		if err != nil {
			return fmt.Errorf("cut chunk %d: %w", i, err)
		}
		transcribed, err := h.transcriber.Transcribe(ctx, cut, "audio/mpeg", v.Language)
		if err != nil {
			return fmt.Errorf("transcribe chunk %d: %w", i, err)
		}
		parts = append(parts, transcribed)
	}

	doc := Transcript{
		Text:     strings.Join(parts, "\n"),
		Language: v.Language,
		Chunks:   len(ranges),
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	path, err := h.blobs.SaveFile(v.ID+".transcript.json", raw)
	if err != nil {
		return err
	}

	if err := h.videos.UpdateTranscriptPath(ctx, v.ID, path); err != nil {
		return err
	}
	if err := h.videos.UpdateStatus(ctx, v.ID, video.StatusTranscriptGenerated); err != nil {
		return err
	}

	v.TranscriptPath = path
	v.ProcessingStatus = video.StatusTranscriptGenerated
	return nil
}

func (h *VideoConsumer) extractTopics(ctx context.Context, v *video.Video) error {
	set, err := h.settings.Get(ctx)
	if err != nil {
		return err
	}

	transcript, err := h.readTranscript(v.TranscriptPath)
	if err != nil {
		return err
	}

	chunks, err := text.Split(transcript, set.ChunkSize, set.ChunkOverlap)
	if err != nil {
		return err
	}

	model := summarize.ModelConfig{
		Model:           set.Model,
		Temperature:     set.Temperature,
		MaxOutputTokens: set.MaxOutputTokens,
	}

	var theme, persona string
	var topics []string

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		out, err := summarize.Run(gctx, h.transform, summarize.Job{
			Chunks:    chunks,
			Algorithm: summarize.AlgorithmRefine,
			OneShot:   prompts.ThemeOneShot(),
			Seed:      prompts.ThemeSeed(),
			Refine:    prompts.ThemeRefine(),
			Model:     model,
		})
		theme = out
		return err
	})
	g.Go(func() error {
		out, err := summarize.Run(gctx, h.transform, summarize.Job{
			Chunks:    chunks,
			Algorithm: summarize.AlgorithmRefine,
			OneShot:   prompts.PersonaOneShot(),
			Seed:      prompts.PersonaSeed(),
			Refine:    prompts.PersonaRefine(),
			Model:     model,
		})
		persona = out
		return err
	})
	g.Go(func() error {
		doc, err := summarize.Run(gctx, h.transform, summarize.Job{
			Chunks:        chunks,
			Algorithm:     summarize.AlgorithmMapReduce,
			OneShot:       prompts.DiscussionOneShot(),
			Map:           prompts.DiscussionMap(),
			Combine:       prompts.DiscussionCombine(),
			Model:         model,
			Concurrency:   h.cfg.MapConcurrency,
			CombineBudget: h.cfg.CombineBudget,
		})
		if err != nil {
			return err
		}
		fields, err := summarize.Extract(gctx, h.transform, model, doc, prompts.DiscussionSchema())
		if err != nil {
			return err
		}
		topics, _ = fields["topics"].([]string)
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	if err := h.videos.UpdateTopics(ctx, v.ID, theme, persona, topics); err != nil {
		return err
	}
	if err := h.videos.UpdateStatus(ctx, v.ID, video.StatusTopicsFetched); err != nil {
		return err
	}

	v.MainTheme = theme
	v.Persona = persona
	v.DiscussionTopics = topics
	v.ProcessingStatus = video.StatusTopicsFetched
	return nil
}

func (h *VideoConsumer) readTranscript(path string) (string, error) {
	raw, err := h.blobs.ReadFile(path)
	if err != nil {
		return "", err
	}
	var doc Transcript
	if err := json.Unmarshal(raw, &doc); err != nil {
		return "", err
	}
	if doc.Text == "" {
		return "", errors.New("transcript is empty")
	}
	return doc.Text, nil
}

func (h *VideoConsumer) saveFailedJob(ctx context.Context, videoID string, body []byte, cause error) {
	failed := &job.Job{
		RecordID: videoID,
		Topic:    config.TopicVideoProcess,
		Payload:  json.RawMessage(body),
		Error:    cause.Error(),
	}
	if err := h.jobs.Save(ctx, failed); err != nil {
		slog.ErrorContext(ctx, "failed to save failed job", "error", err)
	} else {
		slog.InfoContext(ctx, "saved failed job for retry", "job_id", failed.ID)
	}
}
