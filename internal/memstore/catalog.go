package memstore

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/MikeMC777/pos-restaurante/internal/outbox"
	"github.com/MikeMC777/pos-restaurante/internal/product"
	"github.com/MikeMC777/pos-restaurante/internal/staff"
	"github.com/MikeMC777/pos-restaurante/internal/table"
)

// Products implements product.Repository.
type Products struct{ s *Store }

func (r *Products) Put(p product.Product) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.d.products[p.ID] = p
}

func (r *Products) GetByID(ctx context.Context, id string) (*product.Product, error) {
	defer r.s.lock(ctx)()

	p, ok := r.s.d.products[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", product.ErrNotFound, id)
	}
	return &p, nil
}

func (r *Products) List(ctx context.Context, q product.Query) ([]product.Product, error) {
	defer r.s.lock(ctx)()

	q = q.Normalize()
	out := []product.Product{}
	for _, p := range r.s.d.products {
		if q.CategoryID != "" && (p.CategoryID == nil || *p.CategoryID != q.CategoryID) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, q.Offset, q.Limit), nil
}

// Tables implements table.Repository.
type Tables struct{ s *Store }

func (r *Tables) Put(t table.Table) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.d.tables[t.ID] = t
}

func (r *Tables) GetByID(ctx context.Context, id string) (*table.Table, error) {
	defer r.s.lock(ctx)()

	t, ok := r.s.d.tables[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", table.ErrNotFound, id)
	}
	return &t, nil
}

func (r *Tables) SetOccupied(ctx context.Context, id string, occupied bool) (*table.Table, error) {
	defer r.s.lock(ctx)()

	t, ok := r.s.d.tables[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", table.ErrNotFound, id)
	}
	t.IsOccupied = occupied
	t.UpdatedAt = r.s.now()
	r.s.d.tables[id] = t
	return &t, nil
}

func (r *Tables) List(ctx context.Context, f table.Filter) ([]table.Table, error) {
	defer r.s.lock(ctx)()

	f = f.Normalize()
	out := []table.Table{}
	for _, t := range r.s.d.tables {
		if f.Occupied != nil && t.IsOccupied != *f.Occupied {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, f.Offset, f.Limit), nil
}

// Staff implements staff.Repository.
type Staff struct{ s *Store }

func (r *Staff) Create(ctx context.Context, m *staff.Staff) error {
	defer r.s.lock(ctx)()

	for _, cur := range r.s.d.staff {
		if cur.Username == m.Username || cur.Email == m.Email {
			return staff.ErrAlreadyExist
		}
	}
	now := r.s.now()
	m.CreatedAt, m.UpdatedAt = now, now
	r.s.d.staff[m.ID] = *m
	return nil
}

func (r *Staff) GetByID(ctx context.Context, id string) (*staff.Staff, error) {
	defer r.s.lock(ctx)()

	m, ok := r.s.d.staff[id]
	if !ok {
		return nil, staff.ErrNotFound
	}
	return &m, nil
}

func (r *Staff) GetByUsername(ctx context.Context, username string) (*staff.Staff, error) {
	defer r.s.lock(ctx)()

	for _, m := range r.s.d.staff {
		if m.Username == username {
			return &m, nil
		}
	}
	return nil, staff.ErrNotFound
}

// Outbox implements order.EventSink and outbox.Store.
type Outbox struct{ s *Store }

func (r *Outbox) Append(ctx context.Context, e outbox.Event) error {
	defer r.s.lock(ctx)()

	r.s.d.eventSeq++
	e.ID = r.s.d.eventSeq
	e.Status = outbox.StatusPending
	r.s.d.outbox = append(r.s.d.outbox, e)
	return nil
}

// Events returns a copy of every recorded event, oldest first.
func (r *Outbox) Events() []outbox.Event {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return append([]outbox.Event(nil), r.s.d.outbox...)
}

// LockBatch ignores the lease: events are only claimed by the single
// in-process relay.
func (r *Outbox) LockBatch(ctx context.Context, _ string, batchSize int, _ time.Duration) ([]outbox.Event, error) {
	defer r.s.lock(ctx)()

	var out []outbox.Event
	for i := range r.s.d.outbox {
		if len(out) == batchSize {
			break
		}
		if r.s.d.outbox[i].Status != outbox.StatusPending {
			continue
		}
		r.s.d.outbox[i].Status = outbox.StatusInProgress
		out = append(out, r.s.d.outbox[i])
	}
	return out, nil
}

func (r *Outbox) MarkSent(ctx context.Context, ids []int64) error {
	defer r.s.lock(ctx)()

	for _, id := range ids {
		if e := r.find(id); e != nil {
			e.Status = outbox.StatusSent
		}
	}
	return nil
}

func (r *Outbox) MarkFailed(ctx context.Context, id int64, errMsg string) error {
	defer r.s.lock(ctx)()

	if e := r.find(id); e != nil {
		e.RetryCount++
		msg := errMsg
		e.LastError = &msg
		e.Status = outbox.StatusPending
		if e.RetryCount >= outbox.MaxRetries {
			e.Status = outbox.StatusFailed
		}
	}
	return nil
}

func (r *Outbox) find(id int64) *outbox.Event {
	for i := range r.s.d.outbox {
		if r.s.d.outbox[i].ID == id {
			return &r.s.d.outbox[i]
		}
	}
	return nil
}

func page[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if len(items) > limit {
		items = items[:limit]
	}
	return items
}
