// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mdshelf/mdshelf/internal/auth"
	"github.com/mdshelf/mdshelf/internal/model"
	"github.com/mdshelf/mdshelf/internal/repository"
)

// Service errors for authentication operations.
var (
	// ErrEmailTaken indicates a registration attempt with an existing email.
	ErrEmailTaken = errors.New("user with this email already exists")

	// ErrInvalidCredentials covers both an unknown email and a wrong
	// password. The two cases are deliberately indistinguishable so login
	// failures never reveal which accounts exist.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrUserNotFound indicates a lookup for an absent user id.
	ErrUserNotFound = errors.New("user not found")
)

// UserRepository is the persistence surface AuthService depends on.
// *repository.Repository satisfies it.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
}

// AuthService handles registration, login, and identity lookups.
type AuthService struct {
	repo   UserRepository
	tokens *auth.TokenManager
}

// NewAuthService creates a new AuthService.
func NewAuthService(repo UserRepository, tokens *auth.TokenManager) *AuthService {
	return &AuthService{
		repo:   repo,
		tokens: tokens,
	}
}

// AuthResult pairs a session token with the authenticated user.
type AuthResult struct {
	Token string
	User  *model.User
}

// Register creates a new account and issues its first session token.
// Fails with ErrEmailTaken when the email is already registered
// (exact case, as stored).
func (s *AuthService) Register(ctx context.Context, email, password string, name *string) (*AuthResult, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// The unique constraint is the source of truth; no pre-check, so two
	// concurrent registrations cannot both slip through.
	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	return &AuthResult{Token: token, User: user}, nil
}

// Login authenticates an email/password pair and issues a session token.
// Unknown email and wrong password both return ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	match, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil || !match {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	return &AuthResult{Token: token, User: user}, nil
}

// CurrentUser returns the user record for an id, or ErrUserNotFound.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}
