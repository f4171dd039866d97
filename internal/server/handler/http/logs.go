package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/altheia/backend/internal/middleware"
	"github.com/altheia/backend/internal/models"
	"github.com/altheia/backend/internal/service"
)

// LogService defines the symptom log operations required by the HTTP
// handlers.
type LogService interface {
	Upsert(ctx context.Context, userID string, in service.LogInput) (*models.SymptomLog, error)
	List(ctx context.Context, userID, startDate, endDate string) ([]models.SymptomLog, error)
	DeleteByDate(ctx context.Context, userID, date string) error
}

// LogHandler handles symptom log CRUD requests.
type LogHandler struct {
	LogService LogService
}

// Upsert handles POST /api/logs. A log for an existing date is replaced.
func (h *LogHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())

	var req service.LogInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	log, err := h.LogService.Upsert(r.Context(), userID, req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidLog) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, log)
}

// List handles GET /api/logs with optional start_date/end_date filters.
func (h *LogHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())

	logs, err := h.LogService.List(r.Context(), userID,
		r.URL.Query().Get("start_date"), r.URL.Query().Get("end_date"))
	if err != nil {
		if errors.Is(err, service.ErrInvalidLog) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if logs == nil {
		logs = []models.SymptomLog{}
	}
	writeJSON(w, http.StatusOK, logs)
}

// Delete handles DELETE /api/logs/{date}.
func (h *LogHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())
	date := chi.URLParam(r, "date")

	if err := h.LogService.DeleteByDate(r.Context(), userID, date); err != nil {
		if errors.Is(err, service.ErrLogNotFound) {
			http.Error(w, "no symptom log found for date "+date, http.StatusNotFound)
			return
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
