package stats

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"vodsheet/internal/middleware"
)

type VideoRepo interface {
	Count(ctx context.Context) (int, error)
}

type CheatsheetRepo interface {
	Count(ctx context.Context) (int, error)
}

type JobRepo interface {
	Count(ctx context.Context) (int, error)
}

type Handler struct {
	videoRepo      VideoRepo
	cheatsheetRepo CheatsheetRepo
	jobRepo        JobRepo
}

func NewHandler(v VideoRepo, c CheatsheetRepo, j JobRepo) *Handler {
	return &Handler{videoRepo: v, cheatsheetRepo: c, jobRepo: j}
}

type StatsResponse struct {
	Videos      int `json:"videos"`
	Cheatsheets int `json:"cheatsheets"`
	FailedJobs  int `json:"failed_jobs"`
}

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	vCount, err := h.videoRepo.Count(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to count videos", "error", err)
		h.writeError(ctx, w, "INTERNAL_ERROR", "failed to count videos", http.StatusInternalServerError)
		return
	}

	cCount, err := h.cheatsheetRepo.Count(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to count cheatsheets", "error", err)
		h.writeError(ctx, w, "INTERNAL_ERROR", "failed to count cheatsheets", http.StatusInternalServerError)
		return
	}

	jCount, err := h.jobRepo.Count(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to count jobs", "error", err)
		h.writeError(ctx, w, "INTERNAL_ERROR", "failed to count jobs", http.StatusInternalServerError)
		return
	}

	resp := StatsResponse{
		Videos:      vCount,
		Cheatsheets: cCount,
		FailedJobs:  jCount,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{"data": resp}); err != nil {
		slog.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, code, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := map[string]any{
		"error": map[string]string{
			"code":          code,
			"message":       message,
			"correlationId": middleware.GetCorrelationID(ctx),
		},
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}
