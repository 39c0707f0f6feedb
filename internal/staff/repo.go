package staff

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MikeMC777/pos-restaurante/internal/apperr"
	"github.com/MikeMC777/pos-restaurante/internal/postgres"
)

var (
	ErrNotFound     = fmt.Errorf("staff %w", apperr.ErrNotFound)
	ErrAlreadyExist = fmt.Errorf("staff already exists: %w", apperr.ErrConflict)
)

type Repository interface {
	Create(ctx context.Context, s *Staff) error
	GetByID(ctx context.Context, id string) (*Staff, error)
	GetByUsername(ctx context.Context, username string) (*Staff, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) Create(ctx context.Context, s *Staff) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := postgres.Conn(ctx, r.db).QueryRow(ctx, `
		INSERT INTO staff (id, username, email, full_name, password_hash, role, is_active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,NOW(),NOW())
		RETURNING created_at, updated_at
	`, s.ID, s.Username, s.Email, s.FullName, s.PasswordHash, s.Role, s.IsActive).Scan(&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(apperr.FromPG(err), apperr.ErrConflict) {
			return ErrAlreadyExist
		}
		return err
	}
	return nil
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (*Staff, error) {
	return r.getOne(ctx, `WHERE id=$1`, id)
}

func (r *PGRepo) GetByUsername(ctx context.Context, username string) (*Staff, error) {
	return r.getOne(ctx, `WHERE username=$1`, username)
}

func (r *PGRepo) getOne(ctx context.Context, where string, arg string) (*Staff, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	row := postgres.Conn(ctx, r.db).QueryRow(ctx, `
		SELECT id, username, email, full_name, password_hash, role, is_active, created_at, updated_at
		FROM staff `+where, arg)
	var s Staff
	err := row.Scan(&s.ID, &s.Username, &s.Email, &s.FullName, &s.PasswordHash, &s.Role, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}
