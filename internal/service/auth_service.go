package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/Chetan2520/RathWale-Backend/internal/model"
)

// dummyHash is compared against when the username is unknown so a failed
// login takes as long as a wrong password.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
}

type PasswordHasher interface {
	Hash(ctx context.Context, password string) (string, error)
	Compare(hash, password string) bool
}

type TokenGenerator interface {
	Generate(userID uuid.UUID) (string, error)
}

type AuthService struct {
	users  UserRepository
	hasher PasswordHasher
	tokens TokenGenerator
	logger *slog.Logger
}

func NewAuthService(users UserRepository, hasher PasswordHasher, tokens TokenGenerator, logger *slog.Logger) *AuthService {
	return &AuthService{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		logger: logger.With("component", "auth"),
	}
}

// Register creates a user and returns a token for it.
func (s *AuthService) Register(ctx context.Context, username, password string) (string, *model.User, error) {
	hash, err := s.hasher.Hash(ctx, password)
	if err != nil {
		return "", nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &model.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return "", nil, err
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return "", nil, fmt.Errorf("generating token: %w", err)
	}
	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID, "username", username)
	return token, user, nil
}

// Login checks the credentials and returns a fresh token. Unknown users and
// wrong passwords both yield model.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, *model.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, model.ErrNotFound) {
		s.hasher.Compare(dummyHash, password)
		return "", nil, model.ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}

	if !s.hasher.Compare(user.PasswordHash, password) {
		s.logger.WarnContext(ctx, "failed login", "username", username)
		return "", nil, model.ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return "", nil, fmt.Errorf("generating token: %w", err)
	}
	return token, user, nil
}

func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	return s.users.GetByID(ctx, userID)
}
