// Package memstore is an in-process implementation of every repository the
// service uses. A store-wide mutex serialises units of work; a failed unit
// restores the snapshot taken when it began.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/MikeMC777/pos-restaurante/internal/order"
	"github.com/MikeMC777/pos-restaurante/internal/outbox"
	"github.com/MikeMC777/pos-restaurante/internal/product"
	"github.com/MikeMC777/pos-restaurante/internal/staff"
	"github.com/MikeMC777/pos-restaurante/internal/table"
)

type Store struct {
	mu  sync.Mutex
	d   data
	now func() time.Time
}

type data struct {
	orders   map[string]order.Order
	numbers  map[string]string
	products map[string]product.Product
	tables   map[string]table.Table
	staff    map[string]staff.Staff
	outbox   []outbox.Event
	eventSeq int64
}

func New() *Store {
	return &Store{
		d: data{
			orders:   map[string]order.Order{},
			numbers:  map[string]string{},
			products: map[string]product.Product{},
			tables:   map[string]table.Table{},
			staff:    map[string]staff.Staff{},
		},
		now: func() time.Time { return time.Now().UTC() },
	}
}

type txKey struct{}

// WithinTx runs fn holding the store lock. Nested calls join the outer unit.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.inTx(ctx) {
		return fn(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.d.clone()
	if err := fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		s.d = snap
		return err
	}
	return nil
}

func (s *Store) inTx(ctx context.Context) bool {
	owner, _ := ctx.Value(txKey{}).(*Store)
	return owner == s
}

// lock takes the store lock unless ctx already runs inside a unit of work.
func (s *Store) lock(ctx context.Context) func() {
	if s.inTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) Orders() *Orders     { return &Orders{s: s} }
func (s *Store) Products() *Products { return &Products{s: s} }
func (s *Store) Tables() *Tables     { return &Tables{s: s} }
func (s *Store) Staff() *Staff       { return &Staff{s: s} }
func (s *Store) Outbox() *Outbox     { return &Outbox{s: s} }

func (d data) clone() data {
	c := data{
		orders:   make(map[string]order.Order, len(d.orders)),
		numbers:  make(map[string]string, len(d.numbers)),
		products: make(map[string]product.Product, len(d.products)),
		tables:   make(map[string]table.Table, len(d.tables)),
		staff:    make(map[string]staff.Staff, len(d.staff)),
		outbox:   make([]outbox.Event, len(d.outbox)),
		eventSeq: d.eventSeq,
	}
	for k, v := range d.orders {
		c.orders[k] = cloneOrder(v)
	}
	for k, v := range d.numbers {
		c.numbers[k] = v
	}
	for k, v := range d.products {
		c.products[k] = v
	}
	for k, v := range d.tables {
		c.tables[k] = v
	}
	for k, v := range d.staff {
		c.staff[k] = v
	}
	copy(c.outbox, d.outbox)
	return c
}

func cloneOrder(o order.Order) order.Order {
	o.TableID = cloneString(o.TableID)
	o.CustomerName = cloneString(o.CustomerName)
	o.CustomerPhone = cloneString(o.CustomerPhone)
	o.CustomerAddress = cloneString(o.CustomerAddress)
	items := make([]order.Item, len(o.Items))
	for i, it := range o.Items {
		it.Notes = cloneString(it.Notes)
		items[i] = it
	}
	o.Items = items
	return o
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
