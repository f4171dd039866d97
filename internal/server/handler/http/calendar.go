package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/altheia/backend/internal/gcal"
	"github.com/altheia/backend/internal/middleware"
	"github.com/altheia/backend/internal/service"
)

// CalendarService defines the sync-engine operations required by the
// HTTP handlers.
type CalendarService interface {
	AuthURL(userID string) (authURL, state string)
	Connect(ctx context.Context, userID, code string) error
	Disconnect(ctx context.Context, userID string) error
	GetStatus(ctx context.Context, userID string) (service.Status, error)
	SetSyncEnabled(ctx context.Context, userID string, enabled bool) error
	SyncOne(ctx context.Context, userID, logID string) (string, error)
	SyncAll(ctx context.Context, userID string) (service.BatchResult, error)
	DeleteSync(ctx context.Context, userID, logID string) (string, error)
}

// CalendarHandler handles Google Calendar connection and sync requests.
type CalendarHandler struct {
	CalendarService CalendarService
	// FrontendURL is where the OAuth callback redirects when done.
	FrontendURL string
}

// calendarErrStatus maps the sync engine's error set onto HTTP statuses.
func calendarErrStatus(err error) int {
	var remoteErr *gcal.RemoteError
	switch {
	case errors.Is(err, service.ErrNotConnected),
		errors.Is(err, service.ErrSyncDisabled),
		errors.Is(err, gcal.ErrNoRefreshToken):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrLogNotFound),
		errors.Is(err, service.ErrEventNotFound):
		return http.StatusNotFound
	case errors.As(err, &remoteErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Auth handles GET /api/google-calendar/auth, starting the OAuth flow.
func (h *CalendarHandler) Auth(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())
	authURL, state := h.CalendarService.AuthURL(userID)
	writeJSON(w, http.StatusOK, map[string]string{
		"authorization_url": authURL,
		"state":             state,
	})
}

// Callback handles GET /api/google-calendar/callback. It completes the
// code exchange and redirects back to the frontend settings page with
// the connection status.
func (h *CalendarHandler) Callback(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())

	if errMsg := r.URL.Query().Get("error"); errMsg != "" {
		h.redirectWithStatus(w, r, "error", errMsg)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		h.redirectWithStatus(w, r, "error", "missing authorization code")
		return
	}

	if err := h.CalendarService.Connect(r.Context(), userID, code); err != nil {
		msg := "connection failed"
		if errors.Is(err, gcal.ErrNoRefreshToken) {
			msg = "no refresh token received, please revoke access and try again"
		}
		h.redirectWithStatus(w, r, "error", msg)
		return
	}

	h.redirectWithStatus(w, r, "connected", "")
}

func (h *CalendarHandler) redirectWithStatus(w http.ResponseWriter, r *http.Request, status, message string) {
	target := fmt.Sprintf("%s/settings?calendar_status=%s", h.FrontendURL, status)
	if message != "" {
		target += "&message=" + url.QueryEscape(message)
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// Disconnect handles POST /api/google-calendar/disconnect.
func (h *CalendarHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())

	if err := h.CalendarService.Disconnect(r.Context(), userID); err != nil {
		http.Error(w, err.Error(), calendarErrStatus(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "google calendar disconnected successfully",
		"status":  "disconnected",
	})
}

// Status handles GET /api/google-calendar/status.
func (h *CalendarHandler) Status(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())

	status, err := h.CalendarService.GetStatus(r.Context(), userID)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// SyncLogRequest represents the JSON payload for syncing a single log.
type SyncLogRequest struct {
	LogID string `json:"log_id"`
}

// SyncOne handles POST /api/google-calendar/sync.
func (h *CalendarHandler) SyncOne(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())

	var req SyncLogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.LogID == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	eventID, err := h.CalendarService.SyncOne(r.Context(), userID, req.LogID)
	if err != nil {
		http.Error(w, err.Error(), calendarErrStatus(err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"message":  "symptom log synced successfully",
		"event_id": eventID,
	})
}

// SyncAll handles POST /api/google-calendar/sync-all. Per-record
// failures are reported in the counts, never as an error status.
func (h *CalendarHandler) SyncAll(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())

	result, err := h.CalendarService.SyncAll(r.Context(), userID)
	if err != nil {
		http.Error(w, err.Error(), calendarErrStatus(err))
		return
	}

	total := result.SyncedCount + result.FailedCount
	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"message":      fmt.Sprintf("synced %d of %d logs", result.SyncedCount, total),
		"synced_count": result.SyncedCount,
		"failed_count": result.FailedCount,
	})
}

// DeleteSync handles DELETE /api/google-calendar/sync/{log_id}. Only
// the calendar event is removed; the symptom log stays.
func (h *CalendarHandler) DeleteSync(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())
	logID := chi.URLParam(r, "log_id")

	eventID, err := h.CalendarService.DeleteSync(r.Context(), userID, logID)
	if err != nil {
		http.Error(w, err.Error(), calendarErrStatus(err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"message":  "calendar event deleted successfully",
		"event_id": eventID,
	})
}

// ToggleSync handles POST /api/google-calendar/toggle-sync?enabled=.
func (h *CalendarHandler) ToggleSync(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())

	enabled, err := strconv.ParseBool(r.URL.Query().Get("enabled"))
	if err != nil {
		http.Error(w, "enabled must be true or false", http.StatusBadRequest)
		return
	}

	if err := h.CalendarService.SetSyncEnabled(r.Context(), userID, enabled); err != nil {
		http.Error(w, err.Error(), calendarErrStatus(err))
		return
	}

	action := "disabled"
	if enabled {
		action = "enabled"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"message":      "calendar sync " + action,
		"sync_enabled": enabled,
	})
}
