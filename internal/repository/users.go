// Package repository provides PostgreSQL persistence for users, symptom
// logs, and articles.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/altheia/backend/internal/models"
)

// PostgresUserRepository implements user and calendar-link persistence
// against a PostgreSQL database.
type PostgresUserRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresUserRepository creates a repository using the given
// database connection.
func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{DB: db}
}

const userColumns = `id, email, name, password_hash, age_range, menstrual_status,
	primary_symptoms, onboarding_completed, created_at, updated_at`

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.AgeRange,
		&u.MenstrualStatus, pq.Array(&u.PrimarySymptoms), &u.OnboardingCompleted,
		&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}

// CreateUser inserts a new user record.
func (r *PostgresUserRepository) CreateUser(ctx context.Context, u models.User) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO users (id, email, name, password_hash, age_range, menstrual_status,
			primary_symptoms, onboarding_completed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, u.ID, u.Email, u.Name, u.PasswordHash, u.AgeRange, u.MenstrualStatus,
		pq.Array(u.PrimarySymptoms), u.OnboardingCompleted, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("CreateUser: %w", err)
	}
	return nil
}

// FindByEmail returns the user with the given email, or nil when absent.
func (r *PostgresUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// FindByID returns the user with the given id, or nil when absent.
func (r *PostgresUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// UpdateProfile applies non-nil patch fields and returns the updated
// record, or nil when the user does not exist.
func (r *PostgresUserRepository) UpdateProfile(ctx context.Context, id string, patch models.ProfilePatch) (*models.User, error) {
	row := r.DB.QueryRowContext(ctx, `
		UPDATE users SET
			name = COALESCE($2, name),
			age_range = COALESCE($3, age_range),
			menstrual_status = COALESCE($4, menstrual_status),
			primary_symptoms = COALESCE($5, primary_symptoms),
			onboarding_completed = COALESCE($6, onboarding_completed),
			updated_at = $7
		WHERE id = $1
		RETURNING `+userColumns,
		id, patch.Name, patch.AgeRange, patch.MenstrualStatus,
		symptomsOrNil(patch.PrimarySymptoms), patch.OnboardingCompleted,
		time.Now().UTC())
	return scanUser(row)
}

// symptomsOrNil keeps a nil slice as SQL NULL so COALESCE leaves the
// stored value untouched.
func symptomsOrNil(symptoms []string) interface{} {
	if symptoms == nil {
		return nil
	}
	return pq.Array(symptoms)
}

// GetLink returns the user's calendar link state; a zero value when the
// calendar was never connected.
func (r *PostgresUserRepository) GetLink(ctx context.Context, userID string) (models.CalendarLink, error) {
	var (
		link       models.CalendarLink
		token      sql.NullString
		tokenAt    sql.NullTime
		calendarID sql.NullString
		lastSync   sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx, `
		SELECT google_refresh_token, google_token_created_at, calendar_id,
			calendar_sync_enabled, calendar_last_sync
		FROM users WHERE id = $1
	`, userID).Scan(&token, &tokenAt, &calendarID, &link.SyncEnabled, &lastSync)
	if err != nil {
		return models.CalendarLink{}, fmt.Errorf("GetLink: %w", err)
	}

	link.EncryptedRefreshToken = token.String
	link.CalendarID = calendarID.String
	if tokenAt.Valid {
		t := tokenAt.Time
		link.TokenCreatedAt = &t
	}
	if lastSync.Valid {
		t := lastSync.Time
		link.LastSync = &t
	}
	return link, nil
}

// SaveLink stores a fresh calendar connection and enables syncing.
func (r *PostgresUserRepository) SaveLink(ctx context.Context, userID, encryptedToken, calendarID string) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE users SET
			google_refresh_token = $2,
			google_token_created_at = $3,
			calendar_id = $4,
			calendar_sync_enabled = true,
			updated_at = $3
		WHERE id = $1
	`, userID, encryptedToken, time.Now().UTC(), calendarID)
	if err != nil {
		return fmt.Errorf("SaveLink: %w", err)
	}
	return nil
}

// SetSyncEnabled flips the sync-enabled flag.
func (r *PostgresUserRepository) SetSyncEnabled(ctx context.Context, userID string, enabled bool) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE users SET calendar_sync_enabled = $2, updated_at = $3 WHERE id = $1
	`, userID, enabled, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("SetSyncEnabled: %w", err)
	}
	return nil
}

// ClearLink wipes the calendar connection state.
func (r *PostgresUserRepository) ClearLink(ctx context.Context, userID string) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE users SET
			google_refresh_token = NULL,
			google_token_created_at = NULL,
			calendar_id = NULL,
			calendar_sync_enabled = false,
			calendar_last_sync = NULL,
			updated_at = $2
		WHERE id = $1
	`, userID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("ClearLink: %w", err)
	}
	return nil
}

// TouchLastSync records a successful sync timestamp.
func (r *PostgresUserRepository) TouchLastSync(ctx context.Context, userID string, at time.Time) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE users SET calendar_last_sync = $2 WHERE id = $1
	`, userID, at)
	if err != nil {
		return fmt.Errorf("TouchLastSync: %w", err)
	}
	return nil
}
