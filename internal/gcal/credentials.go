package gcal

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/altheia/backend/internal/token"
)

// revokeEndpoint invalidates a refresh token with Google.
const revokeEndpoint = "https://oauth2.googleapis.com/revoke"

// Resolver turns the stored encrypted refresh token into a live calendar
// client. It is the only place where the refresh token exists in
// decrypted form, and it never logs the plaintext.
type Resolver struct {
	cfg    *oauth2.Config
	cipher *token.Cipher
	logger *zap.Logger

	// httpClient is used for the revoke call. Overridable in tests.
	httpClient *http.Client
}

// NewResolver builds a Resolver bound to the calendar.events scope only.
func NewResolver(clientID, clientSecret, redirectURI string, cipher *token.Cipher, logger *zap.Logger) *Resolver {
	return &Resolver{
		cfg: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURI,
			Scopes:       []string{calendar.CalendarEventsScope},
			Endpoint:     google.Endpoint,
		},
		cipher:     cipher,
		logger:     logger,
		httpClient: http.DefaultClient,
	}
}

// AuthURL returns the consent-screen URL for the authorization flow.
// Offline access and forced consent are required to receive a refresh
// token.
func (r *Resolver) AuthURL(state string) string {
	return r.cfg.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
		oauth2.SetAuthURLParam("include_granted_scopes", "true"),
	)
}

// Exchange trades an authorization code for tokens and returns the
// refresh token already encrypted for storage.
func (r *Resolver) Exchange(ctx context.Context, code string) (string, error) {
	tok, err := r.cfg.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("exchange authorization code: %w", err)
	}
	if tok.RefreshToken == "" {
		return "", ErrNoRefreshToken
	}
	encrypted, err := r.cipher.Encrypt(tok.RefreshToken)
	if err != nil {
		return "", fmt.Errorf("encrypt refresh token: %w", err)
	}
	return encrypted, nil
}

// Resolve decrypts the stored refresh token, performs a refresh
// round-trip to obtain a live access token, and returns a calendar
// client bound to it. Decryption failure surfaces as token.ErrDecrypt;
// a missing token or failed refresh surfaces as ErrInvalidCredentials.
func (r *Resolver) Resolve(ctx context.Context, encryptedRefreshToken string) (Calendar, error) {
	refreshToken, err := r.cipher.Decrypt(encryptedRefreshToken)
	if err != nil {
		return nil, err
	}
	if refreshToken == "" {
		return nil, ErrInvalidCredentials
	}

	ts := r.cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	if _, err := ts.Token(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}

	svc, err := calendar.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}
	return NewClient(svc, r.logger), nil
}

// Revoke invalidates the refresh token with Google. Callers treat
// failure as best-effort: local disconnect proceeds regardless.
func (r *Resolver) Revoke(ctx context.Context, encryptedRefreshToken string) error {
	refreshToken, err := r.cipher.Decrypt(encryptedRefreshToken)
	if err != nil {
		return err
	}

	form := url.Values{"token": {refreshToken}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, revokeEndpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build revoke request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("revoke token: unexpected status %d", resp.StatusCode)
	}
	return nil
}
