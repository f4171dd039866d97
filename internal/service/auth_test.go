package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/altheia/backend/internal/models"
	"github.com/altheia/backend/internal/service"
)

type mockUserRepo struct {
	CreateUserFunc    func(ctx context.Context, user models.User) error
	FindByEmailFunc   func(ctx context.Context, email string) (*models.User, error)
	FindByIDFunc      func(ctx context.Context, id string) (*models.User, error)
	UpdateProfileFunc func(ctx context.Context, id string, patch models.ProfilePatch) (*models.User, error)
}

func (m *mockUserRepo) CreateUser(ctx context.Context, user models.User) error {
	return m.CreateUserFunc(ctx, user)
}
func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return m.FindByEmailFunc(ctx, email)
}
func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	return m.FindByIDFunc(ctx, id)
}
func (m *mockUserRepo) UpdateProfile(ctx context.Context, id string, patch models.ProfilePatch) (*models.User, error) {
	return m.UpdateProfileFunc(ctx, id, patch)
}

func TestSignUp(t *testing.T) {
	var created models.User
	repo := &mockUserRepo{
		FindByEmailFunc: func(context.Context, string) (*models.User, error) {
			return nil, nil
		},
		CreateUserFunc: func(ctx context.Context, user models.User) error {
			created = user
			return nil
		},
	}
	svc := service.NewAuthService(repo, "secret", time.Hour)

	user, token, err := svc.SignUp(context.Background(), service.SignUpInput{
		Email:    "a@example.com",
		Name:     "A",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if user.ID == "" {
		t.Error("expected generated user id")
	}
	if token == "" {
		t.Error("expected access token")
	}
	if created.PasswordHash == "" || created.PasswordHash == "password123" {
		t.Error("password must be stored hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("password123")); err != nil {
		t.Errorf("stored hash does not match password: %v", err)
	}
}

func TestSignUp_EmailTaken(t *testing.T) {
	repo := &mockUserRepo{
		FindByEmailFunc: func(context.Context, string) (*models.User, error) {
			return &models.User{ID: "u1", Email: "a@example.com"}, nil
		},
	}
	svc := service.NewAuthService(repo, "secret", time.Hour)

	_, _, err := svc.SignUp(context.Background(), service.SignUpInput{Email: "a@example.com", Password: "x"})
	if !errors.Is(err, service.ErrEmailTaken) {
		t.Fatalf("SignUp error = %v; want ErrEmailTaken", err)
	}
}

func TestLogin(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	repo := &mockUserRepo{
		FindByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			if email != "a@example.com" {
				return nil, nil
			}
			return &models.User{ID: "u1", Email: email, PasswordHash: string(hash)}, nil
		},
	}
	svc := service.NewAuthService(repo, "secret", time.Hour)

	token, err := svc.Login(context.Background(), "a@example.com", "password123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return []byte("secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("issued token does not parse: %v", err)
	}
	if claims.Subject != "u1" {
		t.Errorf("token subject = %q; want u1", claims.Subject)
	}
}

func TestLogin_Invalid(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	repo := &mockUserRepo{
		FindByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			if email == "a@example.com" {
				return &models.User{ID: "u1", PasswordHash: string(hash)}, nil
			}
			return nil, nil
		},
	}
	svc := service.NewAuthService(repo, "secret", time.Hour)

	tests := []struct {
		name            string
		email, password string
	}{
		{"unknown email", "nobody@example.com", "password123"},
		{"wrong password", "a@example.com", "wrong"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Login(context.Background(), tt.email, tt.password); !errors.Is(err, service.ErrInvalidLogin) {
				t.Fatalf("Login error = %v; want ErrInvalidLogin", err)
			}
		})
	}
}

func TestMe_NotFound(t *testing.T) {
	repo := &mockUserRepo{
		FindByIDFunc: func(context.Context, string) (*models.User, error) {
			return nil, nil
		},
	}
	svc := service.NewAuthService(repo, "secret", time.Hour)

	if _, err := svc.Me(context.Background(), "gone"); !errors.Is(err, service.ErrUserNotFound) {
		t.Fatalf("Me error = %v; want ErrUserNotFound", err)
	}
}

func TestUpdateMe(t *testing.T) {
	name := "New Name"
	repo := &mockUserRepo{
		UpdateProfileFunc: func(ctx context.Context, id string, patch models.ProfilePatch) (*models.User, error) {
			if id != "u1" {
				t.Errorf("UpdateProfile id = %q; want u1", id)
			}
			if patch.Name == nil || *patch.Name != name {
				t.Errorf("UpdateProfile patch name = %v; want %q", patch.Name, name)
			}
			return &models.User{ID: id, Name: *patch.Name}, nil
		},
	}
	svc := service.NewAuthService(repo, "secret", time.Hour)

	user, err := svc.UpdateMe(context.Background(), "u1", models.ProfilePatch{Name: &name})
	if err != nil {
		t.Fatalf("UpdateMe: %v", err)
	}
	if user.Name != name {
		t.Errorf("updated name = %q; want %q", user.Name, name)
	}
}

func TestUpdateMe_EmptyPatch(t *testing.T) {
	svc := service.NewAuthService(&mockUserRepo{}, "secret", time.Hour)
	if _, err := svc.UpdateMe(context.Background(), "u1", models.ProfilePatch{}); err == nil {
		t.Fatal("expected error for empty patch")
	}
}
