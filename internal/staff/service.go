package staff

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/MikeMC777/pos-restaurante/internal/apperr"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactive           = errors.New("staff account is inactive")
)

type Service struct {
	repo Repository
	log  *slog.Logger
}

func NewService(repo Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

type CreateInput struct {
	Username string
	Email    string
	FullName string
	Password string
	Role     Role
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Staff, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: username, email and password are required", apperr.ErrValidation)
	}
	if _, err := ParseRole(string(in.Role)); err != nil {
		return nil, err
	}
	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash error: %w", err)
	}
	st := &Staff{
		ID:           uuid.NewString(),
		Username:     in.Username,
		Email:        in.Email,
		FullName:     in.FullName,
		PasswordHash: hash,
		Role:         in.Role,
		IsActive:     true,
	}
	if err := s.repo.Create(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

// Authenticate checks username and password. Unknown users and wrong
// passwords both return ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*Staff, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", apperr.ErrValidation)
	}
	st, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("auth error: %w", err)
	}
	if !CheckPassword(st.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	if !st.IsActive {
		return nil, ErrInactive
	}
	return st, nil
}

// Active loads a staff member by id and rejects deactivated accounts.
func (s *Service) Active(ctx context.Context, id string) (*Staff, error) {
	st, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !st.IsActive {
		return nil, ErrInactive
	}
	return st, nil
}

// EnsureAdmin creates the bootstrap admin account when it does not exist yet.
func (s *Service) EnsureAdmin(ctx context.Context, username, password string) error {
	if password == "" {
		return nil
	}
	_, err := s.repo.GetByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return err
	}
	_, err = s.Create(ctx, CreateInput{
		Username: username,
		Email:    username + "@pos.local",
		FullName: "Administrator",
		Password: password,
		Role:     RoleAdmin,
	})
	if err != nil && !errors.Is(err, apperr.ErrConflict) {
		return err
	}
	s.log.Info("bootstrap admin ready", "username", username)
	return nil
}
