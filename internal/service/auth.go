package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/altheia/backend/internal/models"
)

var (
	// ErrEmailTaken is returned on signup with an already-registered email.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidLogin is returned when email or password do not match.
	ErrInvalidLogin = errors.New("incorrect email or password")
	// ErrUserNotFound is returned when the user record is missing.
	ErrUserNotFound = errors.New("user not found")
)

// UserRepository defines the persistence operations required by the
// authentication service.
type UserRepository interface {
	// CreateUser inserts a new user record.
	CreateUser(ctx context.Context, user models.User) error
	// FindByEmail returns the user with the given email, or nil.
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	// FindByID returns the user with the given id, or nil.
	FindByID(ctx context.Context, id string) (*models.User, error)
	// UpdateProfile applies non-nil patch fields and returns the result.
	UpdateProfile(ctx context.Context, id string, patch models.ProfilePatch) (*models.User, error)
}

// AuthService implements signup, login, and profile operations.
type AuthService struct {
	repo      UserRepository
	jwtSecret []byte
	jwtExpiry time.Duration
}

// NewAuthService constructs an AuthService issuing tokens with the given
// secret and lifetime.
func NewAuthService(repo UserRepository, jwtSecret string, jwtExpiry time.Duration) *AuthService {
	return &AuthService{repo: repo, jwtSecret: []byte(jwtSecret), jwtExpiry: jwtExpiry}
}

// SignUpInput carries the fields accepted at registration.
type SignUpInput struct {
	Email           string   `json:"email"`
	Name            string   `json:"name"`
	Password        string   `json:"password"`
	AgeRange        string   `json:"age_range"`
	MenstrualStatus string   `json:"menstrual_status"`
	PrimarySymptoms []string `json:"primary_symptoms"`
}

// SignUp registers a new user and returns the created record together
// with an access token for auto-login.
func (s *AuthService) SignUp(ctx context.Context, in SignUpInput) (*models.User, string, error) {
	existing, err := s.repo.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, "", err
	}
	if existing != nil {
		return nil, "", ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := models.User{
		ID:              uuid.NewString(),
		Email:           in.Email,
		Name:            in.Name,
		PasswordHash:    string(hash),
		AgeRange:        in.AgeRange,
		MenstrualStatus: in.MenstrualStatus,
		PrimarySymptoms: in.PrimarySymptoms,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, "", err
	}

	tok, err := s.issueToken(user.ID)
	if err != nil {
		return nil, "", err
	}
	return &user, tok, nil
}

// Login verifies the credentials and returns a signed access token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", ErrInvalidLogin
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidLogin
	}
	return s.issueToken(user.ID)
}

// Me returns the profile of the given user.
func (s *AuthService) Me(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// UpdateMe applies a profile patch and returns the updated record.
func (s *AuthService) UpdateMe(ctx context.Context, userID string, patch models.ProfilePatch) (*models.User, error) {
	if patch.Empty() {
		return nil, errors.New("no data provided for update")
	}
	user, err := s.repo.UpdateProfile(ctx, userID, patch)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// issueToken signs an HS256 JWT with the user id as subject.
func (s *AuthService) issueToken(userID string) (string, error) {
	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtExpiry)),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return tok, nil
}
