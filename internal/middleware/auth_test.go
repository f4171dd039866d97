package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/altheia/backend/internal/middleware"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret, subject string, expiry time.Duration) string {
	t.Helper()
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return tok
}

func protected(t *testing.T) (http.Handler, *string) {
	var gotUserID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = middleware.GetUserIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	return middleware.JWTAuth(testSecret)(next), &gotUserID
}

func TestJWTAuth_Valid(t *testing.T) {
	h, gotUserID := protected(t)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, "u1", time.Hour))
	w := httptest.NewRecorder()

	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; want %d", w.Code, http.StatusOK)
	}
	if *gotUserID != "u1" {
		t.Errorf("user id in context = %q; want u1", *gotUserID)
	}
}

func TestJWTAuth_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc"},
		{"garbage token", "Bearer not-a-jwt"},
		{"wrong secret", "Bearer " + signTokenRaw("other-secret", "u1", time.Hour)},
		{"expired", "Bearer " + signTokenRaw(testSecret, "u1", -time.Hour)},
		{"empty subject", "Bearer " + signTokenRaw(testSecret, "", time.Hour)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := protected(t)
			req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			h.ServeHTTP(w, req)

			if w.Code != http.StatusUnauthorized {
				t.Errorf("status = %d; want %d", w.Code, http.StatusUnauthorized)
			}
		})
	}
}

func signTokenRaw(secret, subject string, expiry time.Duration) string {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
	}
	tok, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	return tok
}

func TestGetUserIDFromContext_Missing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := middleware.GetUserIDFromContext(req.Context()); got != "" {
		t.Errorf("user id = %q; want empty without auth", got)
	}
}
