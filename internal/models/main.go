// Package models defines the core data structures for users, symptom logs,
// articles, and the Google Calendar link state.
package models

import "time"

// User represents an application user with credentials and profile data.
type User struct {
	// ID is the unique identifier for the user.
	ID string `json:"id"`
	// Email is the login email address.
	Email string `json:"email"`
	// Name is the user's display name.
	Name string `json:"name"`
	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash string `json:"-"`
	// AgeRange is the self-reported age bracket.
	AgeRange string `json:"age_range,omitempty"`
	// MenstrualStatus is the self-reported menopausal stage.
	MenstrualStatus string `json:"menstrual_status,omitempty"`
	// PrimarySymptoms lists the symptoms chosen during onboarding.
	PrimarySymptoms []string `json:"primary_symptoms"`
	// OnboardingCompleted marks whether onboarding is finished.
	OnboardingCompleted bool `json:"onboarding_completed"`
	// CreatedAt is the account creation timestamp.
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is the last profile update timestamp.
	UpdatedAt time.Time `json:"updated_at"`
}

// ProfilePatch carries optional profile updates; nil fields are left
// unchanged.
type ProfilePatch struct {
	Name                *string  `json:"name,omitempty"`
	AgeRange            *string  `json:"age_range,omitempty"`
	MenstrualStatus     *string  `json:"menstrual_status,omitempty"`
	PrimarySymptoms     []string `json:"primary_symptoms,omitempty"`
	OnboardingCompleted *bool    `json:"onboarding_completed,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p ProfilePatch) Empty() bool {
	return p.Name == nil && p.AgeRange == nil && p.MenstrualStatus == nil &&
		p.PrimarySymptoms == nil && p.OnboardingCompleted == nil
}

// CalendarLink is the per-user Google Calendar connection state.
// The refresh token is stored encrypted and never leaves the server
// in decrypted form.
type CalendarLink struct {
	// EncryptedRefreshToken is the ciphertext of the durable OAuth token.
	// Empty when the calendar is not connected.
	EncryptedRefreshToken string `json:"-"`
	// TokenCreatedAt is when the refresh token was obtained.
	TokenCreatedAt *time.Time `json:"token_created_at,omitempty"`
	// CalendarID identifies the provisioned "Altheia Health" calendar.
	CalendarID string `json:"calendar_id,omitempty"`
	// SyncEnabled controls whether log changes are pushed to the calendar.
	SyncEnabled bool `json:"sync_enabled"`
	// LastSync is the timestamp of the last successful sync operation.
	LastSync *time.Time `json:"last_sync,omitempty"`
}

// Connected reports whether a durable refresh token is stored.
func (l CalendarLink) Connected() bool {
	return l.EncryptedRefreshToken != ""
}

// SymptomItem is a single symptom entry within a daily log.
type SymptomItem struct {
	// Name of the symptom, e.g. "Hot Flushes".
	Name string `json:"name"`
	// Severity rating from 1 to 5.
	Severity int `json:"severity"`
	// Notes holds optional per-symptom remarks.
	Notes string `json:"notes,omitempty"`
}

// SymptomLog is one user's symptom record for a single calendar day.
// At most one log exists per user per date.
type SymptomLog struct {
	// ID is the unique identifier for the log.
	ID string `json:"id"`
	// UserID identifies the owning user.
	UserID string `json:"user_id"`
	// Date is the log day in YYYY-MM-DD format.
	Date string `json:"date"`
	// Symptoms lists the entries recorded for the day.
	Symptoms []SymptomItem `json:"symptoms"`
	// OverallNotes holds general notes for the day.
	OverallNotes string `json:"overall_notes,omitempty"`
	// CreatedAt is the record creation timestamp.
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is the last modification timestamp.
	UpdatedAt time.Time `json:"updated_at"`
}

// Article is an aggregated health article from the configured feed.
type Article struct {
	// ID is the unique identifier for the article.
	ID string `json:"id"`
	// Title of the article.
	Title string `json:"title"`
	// URL links to the source; unique per article.
	URL string `json:"url"`
	// Summary is the feed-provided excerpt.
	Summary string `json:"summary"`
	// Category is one of "Nutrition", "Symptoms", "Essential".
	Category string `json:"category"`
	// ImageURL points to a preview image when one is available.
	ImageURL string `json:"image_url,omitempty"`
	// PublishedAt is the source publication time.
	PublishedAt time.Time `json:"published_at"`
}
