// Package table tracks the physical tables and their occupancy flag.
package table

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MikeMC777/pos-restaurante/internal/apperr"
	"github.com/MikeMC777/pos-restaurante/internal/postgres"
)

var ErrNotFound = fmt.Errorf("table %w", apperr.ErrNotFound)

type Table struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Capacity    int       `json:"capacity"`
	IsOccupied  bool      `json:"is_occupied"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Summary is the part of a table shown on an order.
type Summary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (t *Table) Summary() *Summary {
	return &Summary{ID: t.ID, Name: t.Name}
}

// Filter narrows List; a nil Occupied returns every table.
type Filter struct {
	Occupied *bool
	Limit    int
	Offset   int
}

func (f Filter) Normalize() Filter {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 100
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

type Repository interface {
	GetByID(ctx context.Context, id string) (*Table, error)
	SetOccupied(ctx context.Context, id string, occupied bool) (*Table, error)
	List(ctx context.Context, f Filter) ([]Table, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

const tableColumns = `id, name, capacity, is_occupied, description, created_at, updated_at`

func (r *PGRepo) GetByID(ctx context.Context, id string) (*Table, error) {
	if uuid.Validate(id) != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	row := postgres.Conn(ctx, r.db).QueryRow(ctx, `SELECT `+tableColumns+` FROM tables WHERE id=$1`, id)
	return scanOne(row, id)
}

func (r *PGRepo) SetOccupied(ctx context.Context, id string, occupied bool) (*Table, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	row := postgres.Conn(ctx, r.db).QueryRow(ctx, `
		UPDATE tables
		SET is_occupied = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+tableColumns, id, occupied)
	return scanOne(row, id)
}

func (r *PGRepo) List(ctx context.Context, f Filter) ([]Table, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	f = f.Normalize()
	rows, err := postgres.Conn(ctx, r.db).Query(ctx, `
		SELECT `+tableColumns+`
		FROM tables
		WHERE ($1::boolean IS NULL OR is_occupied = $1)
		ORDER BY name ASC
		LIMIT $2 OFFSET $3
	`, f.Occupied, f.Limit, f.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Table{}
	for rows.Next() {
		var t Table
		if err := rows.Scan(&t.ID, &t.Name, &t.Capacity, &t.IsOccupied, &t.Description, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func scanOne(row pgx.Row, id string) (*Table, error) {
	var t Table
	err := row.Scan(&t.ID, &t.Name, &t.Capacity, &t.IsOccupied, &t.Description, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}
