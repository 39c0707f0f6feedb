package memstore

import (
	"context"
	"fmt"
	"sort"

	"github.com/MikeMC777/pos-restaurante/internal/order"
)

// Orders implements order.Repository.
type Orders struct{ s *Store }

func (r *Orders) Create(ctx context.Context, o *order.Order) error {
	defer r.s.lock(ctx)()

	if _, ok := r.s.d.numbers[o.Number]; ok {
		return fmt.Errorf("%w: %s", order.ErrNumberTaken, o.Number)
	}
	r.s.d.orders[o.ID] = cloneOrder(*o)
	r.s.d.numbers[o.Number] = o.ID
	return nil
}

func (r *Orders) Get(ctx context.Context, id string) (*order.Order, error) {
	defer r.s.lock(ctx)()
	return r.get(id)
}

// Lock is Get: the store lock held by the unit of work already serialises writers.
func (r *Orders) Lock(ctx context.Context, id string) (*order.Order, error) {
	return r.Get(ctx, id)
}

func (r *Orders) GetByNumber(ctx context.Context, number string) (*order.Order, error) {
	defer r.s.lock(ctx)()

	id, ok := r.s.d.numbers[number]
	if !ok {
		return nil, fmt.Errorf("%w: %s", order.ErrNotFound, number)
	}
	return r.get(id)
}

func (r *Orders) get(id string) (*order.Order, error) {
	o, ok := r.s.d.orders[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", order.ErrNotFound, id)
	}
	c := r.describe(cloneOrder(o))
	return &c, nil
}

// describe fills the read-only table and product summaries like the SQL joins do.
func (r *Orders) describe(o order.Order) order.Order {
	o.Table = nil
	if o.TableID != nil {
		if t, ok := r.s.d.tables[*o.TableID]; ok {
			o.Table = t.Summary()
		}
	}
	for i := range o.Items {
		o.Items[i].Product = nil
		if p, ok := r.s.d.products[o.Items[i].ProductID]; ok {
			o.Items[i].Product = p.Summary()
		}
	}
	return o
}

func (r *Orders) List(ctx context.Context, f order.Filter) ([]order.Order, error) {
	defer r.s.lock(ctx)()

	f = f.Normalize()
	want := map[order.Status]bool{}
	for _, st := range f.Statuses {
		want[st] = true
	}

	out := []order.Order{}
	for _, o := range r.s.d.orders {
		if len(want) > 0 && !want[o.Status] {
			continue
		}
		if f.Type != nil && o.Type != *f.Type {
			continue
		}
		out = append(out, r.describe(cloneOrder(o)))
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			if f.OldestFirst {
				return a.CreatedAt.Before(b.CreatedAt)
			}
			return a.CreatedAt.After(b.CreatedAt)
		}
		if f.OldestFirst {
			return a.Number < b.Number
		}
		return a.Number > b.Number
	})

	return page(out, f.Offset, f.Limit), nil
}

func (r *Orders) Save(ctx context.Context, o *order.Order) error {
	defer r.s.lock(ctx)()

	cur, ok := r.s.d.orders[o.ID]
	if !ok {
		return fmt.Errorf("%w: %s", order.ErrNotFound, o.ID)
	}
	o.Version = cur.Version + 1
	cur.Status = o.Status
	cur.TableID = cloneString(o.TableID)
	cur.CustomerName = cloneString(o.CustomerName)
	cur.CustomerPhone = cloneString(o.CustomerPhone)
	cur.CustomerAddress = cloneString(o.CustomerAddress)
	cur.Subtotal, cur.Tax, cur.Total = o.Subtotal, o.Tax, o.Total
	cur.Version = o.Version
	cur.UpdatedAt = o.UpdatedAt
	r.s.d.orders[o.ID] = cur
	return nil
}

func (r *Orders) AddItems(ctx context.Context, items []order.Item) error {
	defer r.s.lock(ctx)()

	for _, it := range items {
		o, ok := r.s.d.orders[it.OrderID]
		if !ok {
			return fmt.Errorf("%w: %s", order.ErrNotFound, it.OrderID)
		}
		it.Notes = cloneString(it.Notes)
		o.Items = append(o.Items, it)
		r.s.d.orders[o.ID] = o
	}
	return nil
}

func (r *Orders) UpdateItem(ctx context.Context, it *order.Item) error {
	defer r.s.lock(ctx)()

	o, ok := r.s.d.orders[it.OrderID]
	if !ok {
		return fmt.Errorf("%w: %s", order.ErrNotFound, it.OrderID)
	}
	for i := range o.Items {
		if o.Items[i].ID == it.ID {
			o.Items[i].Quantity = it.Quantity
			o.Items[i].Notes = cloneString(it.Notes)
			o.Items[i].UpdatedAt = it.UpdatedAt
			return nil
		}
	}
	return fmt.Errorf("%w: %s", order.ErrItemNotFound, it.ID)
}

func (r *Orders) DeleteItem(ctx context.Context, orderID, itemID string) error {
	defer r.s.lock(ctx)()

	o, ok := r.s.d.orders[orderID]
	if !ok {
		return fmt.Errorf("%w: %s", order.ErrNotFound, orderID)
	}
	for i := range o.Items {
		if o.Items[i].ID == itemID {
			o.Items = append(o.Items[:i:i], o.Items[i+1:]...)
			r.s.d.orders[orderID] = o
			return nil
		}
	}
	return fmt.Errorf("%w: %s", order.ErrItemNotFound, itemID)
}
