package cheatsheet

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"vodsheet/internal/middleware"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type createRequest struct {
	VideoID      string   `json:"video_id"`
	NeededTopics []string `json:"needed_topics"`
	Language     string   `json:"language"`
	Structured   bool     `json:"structured"`
	Comment      string   `json:"comment"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(r.Context(), w, "VALIDATION_ERROR", err.Error(), http.StatusBadRequest)
		return
	}
	if req.VideoID == "" {
		h.writeError(r.Context(), w, "VALIDATION_ERROR", "video_id is required", http.StatusBadRequest)
		return
	}

	c := &Cheatsheet{
		VideoID:      req.VideoID,
		NeededTopics: req.NeededTopics,
		Language:     req.Language,
		Structured:   req.Structured,
		Comment:      req.Comment,
	}
	if err := h.service.Create(r.Context(), c); err != nil {
		if errors.Is(err, ErrVideoNotFound) {
			h.writeError(r.Context(), w, "NOT_FOUND", err.Error(), http.StatusNotFound)
			return
		}
		h.writeError(r.Context(), w, "INTERNAL_ERROR", "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]any{"data": c})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	c, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.writeError(r.Context(), w, "NOT_FOUND", "Cheatsheet not found", http.StatusNotFound)
			return
		}
		h.writeError(r.Context(), w, "INTERNAL_ERROR", err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"data": c})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	sheets, err := h.service.List(r.Context(), r.URL.Query().Get("videoId"))
	if err != nil {
		h.writeError(r.Context(), w, "INTERNAL_ERROR", err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"data": sheets,
		"meta": map[string]any{"count": len(sheets)},
	})
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, code, message string, status int) {
	slog.ErrorContext(ctx, message, "code", code)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{
			"code":          code,
			"message":       message,
			"correlationId": middleware.GetCorrelationID(ctx),
		},
	})
}
