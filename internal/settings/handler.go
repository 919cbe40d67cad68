package settings

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	set, err := h.svc.Get(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to fetch settings", "error", err)
		http.Error(w, "failed to fetch settings", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(set); err != nil {
		slog.ErrorContext(r.Context(), "failed to encode settings", "error", err)
	}
}

func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var set Settings
	if err := json.NewDecoder(r.Body).Decode(&set); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if set.ChunkSize > 0 && set.ChunkOverlap >= set.ChunkSize {
		http.Error(w, "chunk_overlap must be smaller than chunk_size", http.StatusBadRequest)
		return
	}

	if err := h.svc.Update(r.Context(), &set); err != nil {
		slog.ErrorContext(r.Context(), "failed to update settings", "error", err)
		http.Error(w, "failed to update settings", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
