package order

import (
	"context"

	"github.com/MikeMC777/pos-restaurante/internal/outbox"
	"github.com/MikeMC777/pos-restaurante/internal/product"
	"github.com/MikeMC777/pos-restaurante/internal/table"
)

// CatalogStore resolves the current price of a product.
type CatalogStore interface {
	GetByID(ctx context.Context, id string) (*product.Product, error)
}

// TableStore reads and flips the occupancy flag of a table.
type TableStore interface {
	GetByID(ctx context.Context, id string) (*table.Table, error)
	SetOccupied(ctx context.Context, id string, occupied bool) (*table.Table, error)
}

// Transactor runs fn as one unit of work against the backing store. Every
// store call made with the ctx handed to fn joins that unit.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventSink records domain events inside the current unit of work.
type EventSink interface {
	Append(ctx context.Context, e outbox.Event) error
}
