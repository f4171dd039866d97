// Package service provides business-logic services for authentication,
// symptom logs, articles, and Google Calendar synchronization, delegating
// persistence to repository interfaces.
package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/altheia/backend/internal/gcal"
	"github.com/altheia/backend/internal/models"
)

// Sync-precondition and lookup errors. These form the closed error set
// the HTTP layer maps onto status codes; remote API failures surface as
// *gcal.RemoteError.
var (
	// ErrNotConnected means no Google refresh token is stored.
	ErrNotConnected = errors.New("google calendar not connected")
	// ErrSyncDisabled means the link exists but syncing is turned off.
	ErrSyncDisabled = errors.New("calendar sync is disabled")
	// ErrEventNotFound means no remote event exists for the log.
	ErrEventNotFound = errors.New("calendar event not found")
	// ErrLogNotFound means the symptom log does not exist.
	ErrLogNotFound = errors.New("symptom log not found")
)

// LinkStore persists the per-user calendar connection state.
type LinkStore interface {
	// GetLink returns the user's link state; a zero value when never
	// connected.
	GetLink(ctx context.Context, userID string) (models.CalendarLink, error)
	// SaveLink stores a fresh connection: encrypted token, provisioned
	// calendar id, sync enabled.
	SaveLink(ctx context.Context, userID, encryptedToken, calendarID string) error
	// SetSyncEnabled flips the sync-enabled flag.
	SetSyncEnabled(ctx context.Context, userID string, enabled bool) error
	// ClearLink wipes the connection state.
	ClearLink(ctx context.Context, userID string) error
	// TouchLastSync records a successful sync timestamp.
	TouchLastSync(ctx context.Context, userID string, at time.Time) error
}

// SyncLogStore is the read-only view of symptom logs the sync engine
// needs. The logs themselves are owned by the log service; sync never
// mutates them.
type SyncLogStore interface {
	FindByID(ctx context.Context, userID, logID string) (*models.SymptomLog, error)
	FindAllByOwner(ctx context.Context, userID string) ([]models.SymptomLog, error)
}

// CredentialResolver resolves stored encrypted refresh tokens into live
// calendar clients, and handles the OAuth code exchange and revocation.
type CredentialResolver interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (string, error)
	Resolve(ctx context.Context, encryptedRefreshToken string) (gcal.Calendar, error)
	Revoke(ctx context.Context, encryptedRefreshToken string) error
}

// CalendarService orchestrates syncing symptom logs to Google Calendar.
// Symptom logs are the source of truth; remote events are a best-effort
// mirror re-derived from the log on every sync.
type CalendarService struct {
	links    LinkStore
	logs     SyncLogStore
	resolver CredentialResolver
	logger   *zap.Logger
}

// NewCalendarService constructs a CalendarService.
func NewCalendarService(links LinkStore, logs SyncLogStore, resolver CredentialResolver, logger *zap.Logger) *CalendarService {
	return &CalendarService{links: links, logs: logs, resolver: resolver, logger: logger}
}

// Status reports the user's connection and sync state.
type Status struct {
	Connected   bool       `json:"connected"`
	SyncEnabled bool       `json:"sync_enabled"`
	CalendarID  string     `json:"calendar_id,omitempty"`
	LastSync    *time.Time `json:"last_sync,omitempty"`
}

// BatchResult summarizes a best-effort batch sync.
type BatchResult struct {
	// Synced maps successfully synced log ids to their event ids.
	Synced map[string]string
	// SyncedCount is len(Synced).
	SyncedCount int
	// FailedCount is the number of logs whose remote call failed.
	FailedCount int
}

// AuthURL starts the authorization flow, returning the consent URL and
// the state parameter for CSRF protection.
func (s *CalendarService) AuthURL(userID string) (authURL, state string) {
	state = uuid.NewString()
	s.logger.Info("generated auth URL", zap.String("userID", userID))
	return s.resolver.AuthURL(state), state
}

// Connect completes the authorization flow: exchanges the code, stores
// the encrypted refresh token, and provisions the app calendar.
func (s *CalendarService) Connect(ctx context.Context, userID, code string) error {
	encrypted, err := s.resolver.Exchange(ctx, code)
	if err != nil {
		return err
	}

	client, err := s.resolver.Resolve(ctx, encrypted)
	if err != nil {
		return err
	}

	calendarID, err := client.EnsureCalendar(ctx)
	if err != nil {
		return err
	}

	if err := s.links.SaveLink(ctx, userID, encrypted, calendarID); err != nil {
		return err
	}

	s.logger.Info("connected google calendar",
		zap.String("userID", userID), zap.String("calendarID", calendarID))
	return nil
}

// Disconnect revokes the refresh token with Google on a best-effort
// basis and always clears the local link state: the user's intent to
// disconnect must succeed locally even when the remote revoke cannot.
func (s *CalendarService) Disconnect(ctx context.Context, userID string) error {
	link, err := s.links.GetLink(ctx, userID)
	if err != nil {
		return err
	}
	if !link.Connected() {
		return ErrNotConnected
	}

	if err := s.resolver.Revoke(ctx, link.EncryptedRefreshToken); err != nil {
		s.logger.Warn("failed to revoke token (may already be revoked)",
			zap.String("userID", userID), zap.Error(err))
	}

	if err := s.links.ClearLink(ctx, userID); err != nil {
		return err
	}
	s.logger.Info("disconnected google calendar", zap.String("userID", userID))
	return nil
}

// GetStatus returns the user's connection and sync settings.
func (s *CalendarService) GetStatus(ctx context.Context, userID string) (Status, error) {
	link, err := s.links.GetLink(ctx, userID)
	if err != nil {
		return Status{}, err
	}
	if !link.Connected() {
		return Status{}, nil
	}
	return Status{
		Connected:   true,
		SyncEnabled: link.SyncEnabled,
		CalendarID:  link.CalendarID,
		LastSync:    link.LastSync,
	}, nil
}

// SetSyncEnabled toggles syncing. Turning it off leaves existing events
// untouched; manual sync is rejected until re-enabled.
func (s *CalendarService) SetSyncEnabled(ctx context.Context, userID string, enabled bool) error {
	link, err := s.links.GetLink(ctx, userID)
	if err != nil {
		return err
	}
	if !link.Connected() {
		return ErrNotConnected
	}
	if err := s.links.SetSyncEnabled(ctx, userID, enabled); err != nil {
		return err
	}
	s.logger.Info("calendar sync toggled",
		zap.String("userID", userID), zap.Bool("enabled", enabled))
	return nil
}

// checkPreconditions loads the link and fails fast before any credential
// resolution or remote call when the calendar is not connected or sync
// is disabled.
func (s *CalendarService) checkPreconditions(ctx context.Context, userID string) (models.CalendarLink, error) {
	link, err := s.links.GetLink(ctx, userID)
	if err != nil {
		return models.CalendarLink{}, err
	}
	if !link.Connected() {
		return models.CalendarLink{}, ErrNotConnected
	}
	if !link.SyncEnabled {
		return models.CalendarLink{}, ErrSyncDisabled
	}
	return link, nil
}

// SyncOne pushes a single symptom log to the calendar, updating the
// existing event when one is tagged with the log id and creating one
// otherwise. Idempotent: re-running with an unchanged log yields the
// same event id and leaves exactly one remote event for the log.
func (s *CalendarService) SyncOne(ctx context.Context, userID, logID string) (string, error) {
	link, err := s.checkPreconditions(ctx, userID)
	if err != nil {
		return "", err
	}

	log, err := s.logs.FindByID(ctx, userID, logID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrLogNotFound
		}
		return "", err
	}
	if log == nil {
		return "", ErrLogNotFound
	}

	client, err := s.resolver.Resolve(ctx, link.EncryptedRefreshToken)
	if err != nil {
		return "", err
	}

	eventID, err := s.syncLog(ctx, client, link.CalendarID, *log)
	if err != nil {
		return "", err
	}

	s.touchLastSync(ctx, userID)
	return eventID, nil
}

// SyncAll pushes every log the user owns, isolating per-record failures:
// one bad record never aborts the rest. Records synced before a failure
// stay synced, which is safe because SyncOne is idempotent and re-runnable.
func (s *CalendarService) SyncAll(ctx context.Context, userID string) (BatchResult, error) {
	link, err := s.checkPreconditions(ctx, userID)
	if err != nil {
		return BatchResult{}, err
	}

	logs, err := s.logs.FindAllByOwner(ctx, userID)
	if err != nil {
		return BatchResult{}, err
	}

	result := BatchResult{Synced: make(map[string]string, len(logs))}
	if len(logs) == 0 {
		return result, nil
	}

	client, err := s.resolver.Resolve(ctx, link.EncryptedRefreshToken)
	if err != nil {
		return BatchResult{}, err
	}

	for _, log := range logs {
		eventID, err := s.syncLog(ctx, client, link.CalendarID, log)
		if err != nil {
			s.logger.Error("failed to sync log",
				zap.String("logID", log.ID), zap.Error(err))
			result.FailedCount++
			continue
		}
		result.Synced[log.ID] = eventID
	}
	result.SyncedCount = len(result.Synced)

	if result.SyncedCount > 0 {
		s.touchLastSync(ctx, userID)
	}
	s.logger.Info("batch sync finished",
		zap.String("userID", userID),
		zap.Int("synced", result.SyncedCount),
		zap.Int("failed", result.FailedCount))
	return result, nil
}

// syncLog performs the find-or-create step for one log. Looking up the
// correlation tag before creating keeps repeated syncs from producing
// duplicate events.
func (s *CalendarService) syncLog(ctx context.Context, client gcal.Calendar, calendarID string, log models.SymptomLog) (string, error) {
	existingID, err := client.FindEventByLogID(ctx, calendarID, log.ID)
	if err != nil {
		// Lookup flakiness must not block the create path.
		s.logger.Warn("event lookup failed", zap.String("logID", log.ID), zap.Error(err))
		existingID = ""
	}

	ev := gcal.BuildEvent(log)
	if existingID != "" {
		return client.UpdateEvent(ctx, calendarID, existingID, ev)
	}
	return client.InsertEvent(ctx, calendarID, ev)
}

// DeleteSync removes the remote event mirroring a log. The log record
// itself is never touched.
func (s *CalendarService) DeleteSync(ctx context.Context, userID, logID string) (string, error) {
	link, err := s.checkPreconditions(ctx, userID)
	if err != nil {
		return "", err
	}

	client, err := s.resolver.Resolve(ctx, link.EncryptedRefreshToken)
	if err != nil {
		return "", err
	}

	eventID, err := client.FindEventByLogID(ctx, link.CalendarID, logID)
	if err != nil {
		return "", err
	}
	if eventID == "" {
		return "", ErrEventNotFound
	}

	if err := client.DeleteEvent(ctx, link.CalendarID, eventID); err != nil {
		return "", err
	}
	return eventID, nil
}

// touchLastSync records the sync time; a store failure here does not
// fail the sync that already succeeded remotely.
func (s *CalendarService) touchLastSync(ctx context.Context, userID string) {
	if err := s.links.TouchLastSync(ctx, userID, time.Now().UTC()); err != nil {
		s.logger.Error("failed to update last sync time",
			zap.String("userID", userID), zap.Error(err))
	}
}
