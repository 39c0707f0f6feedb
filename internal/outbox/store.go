package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MikeMC777/pos-restaurante/internal/postgres"
)

// Store is what the relay needs from the outbox table.
type Store interface {
	LockBatch(ctx context.Context, relayID string, batchSize int, lease time.Duration) ([]Event, error)
	MarkSent(ctx context.Context, ids []int64) error
	MarkFailed(ctx context.Context, id int64, errMsg string) error
}

type PGStore struct{ db *pgxpool.Pool }

func NewPGStore(db *pgxpool.Pool) *PGStore { return &PGStore{db: db} }

// Append inserts e into the outbox, inside the transaction carried by ctx when
// there is one.
func (s *PGStore) Append(ctx context.Context, e Event) error {
	headers, err := json.Marshal(e.Headers)
	if err != nil {
		return fmt.Errorf("outbox headers: %w", err)
	}
	if e.Headers == nil {
		headers = []byte("{}")
	}
	_, err = postgres.Conn(ctx, s.db).Exec(ctx, `
		INSERT INTO outbox (aggregate_type, aggregate_id, type, payload, headers, status, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, e.AggregateType, e.AggregateID, e.Type, e.Payload, headers, StatusPending, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("outbox append: %w", err)
	}
	return nil
}

// LockBatch claims up to batchSize pending events, plus in-progress ones whose
// lease expired, for relayID. Concurrent relays never claim the same row.
func (s *PGStore) LockBatch(ctx context.Context, relayID string, batchSize int, lease time.Duration) ([]Event, error) {
	rows, err := s.db.Query(ctx, `
		UPDATE outbox
		SET status = 'in_progress', relay_id = $1, locked_until = NOW() + make_interval(secs => $2)
		WHERE id IN (
			SELECT id FROM outbox
			WHERE status = 'pending'
			   OR (status = 'in_progress' AND locked_until < NOW())
			ORDER BY id
			FOR UPDATE SKIP LOCKED
			LIMIT $3
		)
		RETURNING id, aggregate_type, aggregate_id, type, payload, headers, created_at, retry_count
	`, relayID, lease.Seconds(), batchSize)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			ev      Event
			headers []byte
		)
		if err := rows.Scan(&ev.ID, &ev.AggregateType, &ev.AggregateID, &ev.Type, &ev.Payload, &headers, &ev.CreatedAt, &ev.RetryCount); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(headers, &ev.Headers); err != nil {
			return nil, fmt.Errorf("outbox %d headers: %w", ev.ID, err)
		}
		ev.Status = StatusInProgress
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// UPDATE ... RETURNING does not keep the subquery order
	sort.Slice(events, func(i, j int) bool { return events[i].ID < events[j].ID })
	return events, nil
}

func (s *PGStore) MarkSent(ctx context.Context, ids []int64) error {
	_, err := s.db.Exec(ctx, `UPDATE outbox SET status='sent', locked_until=NULL WHERE id = ANY($1)`, ids)
	return err
}

// MarkFailed puts the event back to pending until MaxRetries is reached.
func (s *PGStore) MarkFailed(ctx context.Context, id int64, errMsg string) error {
	_, err := s.db.Exec(ctx, `
		UPDATE outbox
		SET retry_count = retry_count + 1,
		    last_error = $2,
		    locked_until = NULL,
		    status = CASE WHEN retry_count + 1 >= $3 THEN 'failed' ELSE 'pending' END
		WHERE id = $1
	`, id, errMsg, MaxRetries)
	return err
}
