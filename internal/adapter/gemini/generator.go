// Package gemini adapts the Google generative AI client to the pipeline's
// transform and transcription capabilities.
package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"vodsheet/internal/settings"
	"vodsheet/internal/summarize"
)

type SettingsSource interface {
	Get(ctx context.Context) (*settings.Settings, error)
}

// Generator implements summarize.Transform. The underlying client is cached
// and rebuilt only when the configured API key changes.
type Generator struct {
	settingsSvc SettingsSource
	client      *genai.Client
	currentKey  string
	mu          sync.RWMutex
	clientOpts  []option.ClientOption
}

func NewGenerator(svc SettingsSource, opts ...option.ClientOption) *Generator {
	return &Generator{
		settingsSvc: svc,
		clientOpts:  opts,
	}
}

func (g *Generator) Invoke(ctx context.Context, prompt string, cfg summarize.ModelConfig) (string, error) {
	client, err := g.activeClient(ctx)
	if err != nil {
		return "", err
	}

	model := client.GenerativeModel(cfg.Model)
	model.SetTemperature(cfg.Temperature)
	if cfg.MaxOutputTokens > 0 {
		model.SetMaxOutputTokens(cfg.MaxOutputTokens)
	}

	slog.DebugContext(ctx, "invoking model", "model", cfg.Model, "prompt_len", len(prompt))
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	return collectText(resp)
}

// Transcribe sends encoded audio with a transcription instruction and returns
// the spoken text.
func (g *Generator) Transcribe(ctx context.Context, audio []byte, mimeType, language string) (string, error) {
	client, err := g.activeClient(ctx)
	if err != nil {
		return "", err
	}

	set, err := g.settingsSvc.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get settings: %w", err)
	}

	model := client.GenerativeModel(set.Model)
	model.SetTemperature(0)

	instruction := "Transcribe this audio verbatim. Output only the spoken words, no timestamps and no speaker labels."
	if language != "" {
		instruction += " The audio is in " + language + "."
	}

	resp, err := model.GenerateContent(ctx,
		genai.Blob{MIMEType: mimeType, Data: audio},
		genai.Text(instruction),
	)
	if err != nil {
		return "", fmt.Errorf("transcribe: %w", err)
	}

	return collectText(resp)
}

func (g *Generator) activeClient(ctx context.Context) (*genai.Client, error) {
	set, err := g.settingsSvc.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	if set.GeminiAPIKey == "" {
		return nil, fmt.Errorf("gemini api key not configured")
	}
	return g.getClient(ctx, set.GeminiAPIKey)
}

func (g *Generator) getClient(ctx context.Context, key string) (*genai.Client, error) {
	g.mu.RLock()
	if g.client != nil && g.currentKey == key {
		defer g.mu.RUnlock()
		return g.client, nil
	}
	g.mu.RUnlock()

	g.mu.Lock()
	defer g.mu.Unlock()

	// Double check
	if g.client != nil && g.currentKey == key {
		return g.client, nil
	}

	if g.client != nil {
		if err := g.client.Close(); err != nil {
			slog.Warn("failed to close previous genai client", "error", err)
		}
	}

	opts := append(g.clientOpts, option.WithAPIKey(key))
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}

	g.client = client
	g.currentKey = key
	return client, nil
}

func collectText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("empty response received")
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("response contained no text parts")
	}
	return b.String(), nil
}
