// Package http provides the HTTP handlers and routing for the Altheia
// backend API.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/altheia/backend/internal/middleware"
	"github.com/altheia/backend/internal/models"
	"github.com/altheia/backend/internal/service"
)

// AuthService defines the interface for authentication operations
// required by the HTTP handlers.
type AuthService interface {
	// SignUp registers a user and returns the record plus an access token.
	SignUp(ctx context.Context, in service.SignUpInput) (*models.User, string, error)
	// Login verifies credentials and returns an access token.
	Login(ctx context.Context, email, password string) (string, error)
	// Me returns the authenticated user's profile.
	Me(ctx context.Context, userID string) (*models.User, error)
	// UpdateMe applies a profile patch.
	UpdateMe(ctx context.Context, userID string, patch models.ProfilePatch) (*models.User, error)
}

// CalendarStatusProvider exposes the calendar connection state embedded
// in profile responses.
type CalendarStatusProvider interface {
	GetStatus(ctx context.Context, userID string) (service.Status, error)
}

// AuthHandler handles signup, login, and profile requests.
type AuthHandler struct {
	AuthService    AuthService
	CalendarStatus CalendarStatusProvider
}

// userResponse is the profile shape returned to clients; it flattens
// the calendar link state and omits credentials.
type userResponse struct {
	ID                  string     `json:"id"`
	Email               string     `json:"email"`
	Name                string     `json:"name"`
	AgeRange            string     `json:"age_range,omitempty"`
	MenstrualStatus     string     `json:"menstrual_status,omitempty"`
	PrimarySymptoms     []string   `json:"primary_symptoms"`
	OnboardingCompleted bool       `json:"onboarding_completed"`
	CalendarConnected   bool       `json:"calendar_connected"`
	CalendarSyncEnabled bool       `json:"calendar_sync_enabled"`
	LastCalendarSync    *time.Time `json:"last_calendar_sync,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
}

func (h *AuthHandler) userResponse(ctx context.Context, user *models.User) userResponse {
	resp := userResponse{
		ID:                  user.ID,
		Email:               user.Email,
		Name:                user.Name,
		AgeRange:            user.AgeRange,
		MenstrualStatus:     user.MenstrualStatus,
		PrimarySymptoms:     user.PrimarySymptoms,
		OnboardingCompleted: user.OnboardingCompleted,
		CreatedAt:           user.CreatedAt,
	}
	if h.CalendarStatus != nil {
		if status, err := h.CalendarStatus.GetStatus(ctx, user.ID); err == nil {
			resp.CalendarConnected = status.Connected
			resp.CalendarSyncEnabled = status.SyncEnabled
			resp.LastCalendarSync = status.LastSync
		}
	}
	return resp
}

// SignUp handles POST /api/auth/signup. It registers the user and
// returns an access token for auto-login.
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req service.SignUpInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil ||
		req.Email == "" || req.Name == "" || len(req.Password) < 8 {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	user, tok, err := h.AuthService.SignUp(r.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			http.Error(w, "email already registered", http.StatusBadRequest)
			return
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"access_token": tok,
		"token_type":   "bearer",
		"user":         h.userResponse(r.Context(), user),
	})
}

// LoginRequest represents the JSON payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /api/auth/login and returns a bearer token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	tok, err := h.AuthService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidLogin) {
			w.Header().Set("WWW-Authenticate", "Bearer")
			http.Error(w, "incorrect email or password", http.StatusUnauthorized)
			return
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"access_token": tok,
		"token_type":   "bearer",
	})
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())

	user, err := h.AuthService.Me(r.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, h.userResponse(r.Context(), user))
}

// UpdateMe handles PUT /api/auth/me.
func (h *AuthHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())

	var patch models.ProfilePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if patch.Empty() {
		http.Error(w, "no data provided for update", http.StatusBadRequest)
		return
	}

	user, err := h.AuthService.UpdateMe(r.Context(), userID, patch)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, h.userResponse(r.Context(), user))
}

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
