package worker

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/nsqio/go-nsq"

	"vodsheet/features/cheatsheet"
	"vodsheet/features/job"
	"vodsheet/internal/config"
	"vodsheet/internal/middleware"
	"vodsheet/internal/prompts"
	"vodsheet/internal/summarize"
	"vodsheet/internal/text"
)

// CheatsheetConsumer turns a finished transcript into a cheatsheet document.
// A request scoped to specific topics reduces with map-reduce; an open-ended
// request folds the transcript sequentially so later chunks can refine the
// running document.
type CheatsheetConsumer struct {
	sheets    CheatsheetStore
	videos    VideoStore
	jobs      job.Repository
	blobs     BlobStore
	transform summarize.Transform
	settings  SettingsSource
	cfg       Config
}

func NewCheatsheetConsumer(
	sheets CheatsheetStore,
	videos VideoStore,
	jobs job.Repository,
	blobs BlobStore,
	transform summarize.Transform,
	settings SettingsSource,
	cfg Config,
) *CheatsheetConsumer {
	return &CheatsheetConsumer{
		sheets:    sheets,
		videos:    videos,
		jobs:      jobs,
		blobs:     blobs,
		transform: transform,
		settings:  settings,
		cfg:       cfg,
	}
}

func (h *CheatsheetConsumer) HandleMessage(m *nsq.Message) error {
	if len(m.Body) == 0 {
		return nil
	}

	var payload CheatsheetGeneratePayload
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
	if payload.CheatsheetID == "" {
		slog.ErrorContext(ctx, "missing cheatsheet_id, dropping")
		return nil
	}

	c, err := h.sheets.Get(ctx, payload.CheatsheetID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			slog.ErrorContext(ctx, "cheatsheet not found, dropping", "cheatsheet_id", payload.CheatsheetID)
			return nil
		}
		return err
	}
	if c.ProcessingStatus == cheatsheet.StatusDone {
		slog.InfoContext(ctx, "cheatsheet already generated, dropping", "cheatsheet_id", c.ID)
		return nil
	}

	if err := h.sheets.UpdateStatus(ctx, c.ID, cheatsheet.StatusProcessing); err != nil {
		return err
	}

	if err := h.generate(ctx, c); err != nil {
		slog.ErrorContext(ctx, "cheatsheet generation failed", "cheatsheet_id", c.ID, "error", err)
		if uerr := h.sheets.UpdateFailure(ctx, c.ID, err.Error()); uerr != nil {
			slog.ErrorContext(ctx, "failed to record failure", "error", uerr)
		}
		h.saveFailedJob(ctx, c.ID, m.Body, err)
		return nil
	}

	slog.InfoContext(ctx, "cheatsheet generated", "cheatsheet_id", c.ID)
	return nil
}

func (h *CheatsheetConsumer) generate(ctx context.Context, c *cheatsheet.Cheatsheet) error {
	v, err := h.videos.Get(ctx, c.VideoID)
	if err != nil {
		return err
	}
	if v.TranscriptPath == "" {
		return cheatsheet.ErrVideoNotReady
	}

	set, err := h.settings.Get(ctx)
	if err != nil {
		return err
	}

	raw, err := h.blobs.ReadFile(v.TranscriptPath)
	if err != nil {
		return err
	}
	var doc Transcript
	if err := json.Unmarshal(raw, &doc); err != nil {
		return err
	}

	chunks, err := text.Split(doc.Text, set.ChunkSize, set.ChunkOverlap)
	if err != nil {
		return err
	}

	language := c.Language
	if language == "" {
		language = v.Language
	}

	model := summarize.ModelConfig{
		Model:           set.Model,
		Temperature:     set.Temperature,
		MaxOutputTokens: set.MaxOutputTokens,
	}

	reduction := summarize.Job{Chunks: chunks, Model: model}
	if len(c.NeededTopics) > 0 {
		reduction.Algorithm = summarize.AlgorithmMapReduce
		reduction.OneShot = prompts.TopicOneShot(c.NeededTopics, language)
		reduction.Map = prompts.TopicMap(c.NeededTopics, language)
		reduction.Combine = prompts.TopicCombine(c.NeededTopics, language)
		reduction.Concurrency = h.cfg.MapConcurrency
		reduction.CombineBudget = h.cfg.CombineBudget
	} else {
		reduction.Algorithm = summarize.AlgorithmRefine
		reduction.OneShot = prompts.CheatsheetOneShot(v.Persona, language)
		reduction.Seed = prompts.CheatsheetSeed(v.Persona, language)
		reduction.Refine = prompts.CheatsheetRefine(v.Persona, language)
	}

	content, err := summarize.Run(ctx, h.transform, reduction)
	if err != nil {
		return err
	}

	var sections map[string]any
	if c.Structured {
		sections, err = summarize.Extract(ctx, h.transform, model, content, prompts.CheatsheetSchema())
		if err != nil {
			return err
		}
	}

	return h.sheets.UpdateResult(ctx, c.ID, content, sections)
}

func (h *CheatsheetConsumer) saveFailedJob(ctx context.Context, cheatsheetID string, body []byte, cause error) {
	failed := &job.Job{
		RecordID: cheatsheetID,
		Topic:    config.TopicCheatsheetGenerate,
		Payload:  json.RawMessage(body),
		Error:    cause.Error(),
	}
	if err := h.jobs.Save(ctx, failed); err != nil {
		slog.ErrorContext(ctx, "failed to save failed job", "error", err)
	} else {
		slog.InfoContext(ctx, "saved failed job for retry", "job_id", failed.ID)
	}
}
