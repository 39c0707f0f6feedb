package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/pos-restaurante/internal/apperr"
	"github.com/MikeMC777/pos-restaurante/internal/postgres"
	"github.com/MikeMC777/pos-restaurante/internal/product"
	"github.com/MikeMC777/pos-restaurante/internal/table"
)

var (
	ErrNotFound     = fmt.Errorf("order %w", apperr.ErrNotFound)
	ErrItemNotFound = fmt.Errorf("order item %w", apperr.ErrNotFound)
	ErrClosed       = fmt.Errorf("order closed: %w", apperr.ErrInvalidState)
	ErrNumberTaken  = fmt.Errorf("order number %w", apperr.ErrConflict)
)

// Repository persists orders and their items. Every method joins the unit of
// work carried by ctx when there is one.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	Get(ctx context.Context, id string) (*Order, error)
	GetByNumber(ctx context.Context, number string) (*Order, error)
	// Lock loads the order and holds it until the unit of work ends.
	Lock(ctx context.Context, id string) (*Order, error)
	List(ctx context.Context, f Filter) ([]Order, error)
	// Save writes the header, totals included, and bumps Version.
	Save(ctx context.Context, o *Order) error
	AddItems(ctx context.Context, items []Item) error
	UpdateItem(ctx context.Context, it *Item) error
	DeleteItem(ctx context.Context, orderID, itemID string) error
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

// orderColumns reads from orders o LEFT JOIN tables t.
const orderColumns = `o.id, o.number, o.order_type, o.status, o.table_id, t.name, o.customer_name,
	o.customer_phone, o.customer_address, o.subtotal::text, o.tax::text, o.total::text, o.created_by,
	o.version, o.created_at, o.updated_at`

const orderFrom = `FROM orders o LEFT JOIN tables t ON t.id = o.table_id `

// itemColumns reads from order_items i LEFT JOIN products p.
const itemColumns = `i.id, i.order_id, i.product_id, p.name, i.quantity, i.price::text, i.notes,
	i.created_at, i.updated_at`

func (r *PGRepo) Create(ctx context.Context, o *Order) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	db := postgres.Conn(ctx, r.db)
	if _, err := db.Exec(ctx, `
		INSERT INTO orders (id, number, order_type, status, table_id, customer_name, customer_phone,
			customer_address, subtotal, tax, total, created_by, version, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
	`, o.ID, o.Number, o.Type, o.Status, o.TableID, o.CustomerName, o.CustomerPhone,
		o.CustomerAddress, o.Subtotal.String(), o.Tax.String(), o.Total.String(),
		o.CreatedBy, o.Version, o.CreatedAt, o.UpdatedAt); err != nil {
		err = apperr.FromPG(err)
		if errors.Is(err, apperr.ErrConflict) {
			return fmt.Errorf("%w: %s", ErrNumberTaken, o.Number)
		}
		return fmt.Errorf("insert order: %w", err)
	}
	return r.insertItems(ctx, db, o.Items)
}

func (r *PGRepo) Get(ctx context.Context, id string) (*Order, error) {
	if uuid.Validate(id) != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return r.getOne(ctx, `WHERE o.id=$1`, id)
}

func (r *PGRepo) GetByNumber(ctx context.Context, number string) (*Order, error) {
	return r.getOne(ctx, `WHERE o.number=$1`, number)
}

func (r *PGRepo) Lock(ctx context.Context, id string) (*Order, error) {
	if uuid.Validate(id) != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return r.getOne(ctx, `WHERE o.id=$1 FOR UPDATE OF o`, id)
}

func (r *PGRepo) getOne(ctx context.Context, where, key string) (*Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	db := postgres.Conn(ctx, r.db)
	o, err := scanOrder(db.QueryRow(ctx, `SELECT `+orderColumns+` `+orderFrom+where, key))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return nil, err
	}
	items, err := r.loadItems(ctx, db, []string{o.ID})
	if err != nil {
		return nil, err
	}
	if its, ok := items[o.ID]; ok {
		o.Items = its
	}
	return o, nil
}

func (r *PGRepo) List(ctx context.Context, f Filter) ([]Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	f = f.Normalize()
	statuses := make([]string, 0, len(f.Statuses))
	for _, s := range f.Statuses {
		statuses = append(statuses, string(s))
	}
	var typ *string
	if f.Type != nil {
		t := string(*f.Type)
		typ = &t
	}
	dir := "DESC"
	if f.OldestFirst {
		dir = "ASC"
	}

	db := postgres.Conn(ctx, r.db)
	rows, err := db.Query(ctx, `
		SELECT `+orderColumns+`
		`+orderFrom+`
		WHERE (cardinality($1::text[]) = 0 OR o.status = ANY($1))
		  AND ($2::text IS NULL OR o.order_type = $2)
		ORDER BY o.created_at `+dir+`, o.number `+dir+`
		LIMIT $3 OFFSET $4
	`, statuses, typ, f.Limit, f.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Order{}
	ids := []string{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return out, nil
	}

	items, err := r.loadItems(ctx, db, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		if its, ok := items[out[i].ID]; ok {
			out[i].Items = its
		}
	}
	return out, nil
}

func (r *PGRepo) Save(ctx context.Context, o *Order) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := postgres.Conn(ctx, r.db).QueryRow(ctx, `
		UPDATE orders
		SET status = $2, table_id = $3, customer_name = $4, customer_phone = $5, customer_address = $6,
		    subtotal = $7, tax = $8, total = $9, version = version + 1, updated_at = $10
		WHERE id = $1
		RETURNING version
	`, o.ID, o.Status, o.TableID, o.CustomerName, o.CustomerPhone, o.CustomerAddress,
		o.Subtotal.String(), o.Tax.String(), o.Total.String(), o.UpdatedAt).Scan(&o.Version)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %s", ErrNotFound, o.ID)
	}
	if err != nil {
		return fmt.Errorf("update order: %w", apperr.FromPG(err))
	}
	return nil
}

func (r *PGRepo) AddItems(ctx context.Context, items []Item) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return r.insertItems(ctx, postgres.Conn(ctx, r.db), items)
}

func (r *PGRepo) UpdateItem(ctx context.Context, it *Item) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := postgres.Conn(ctx, r.db).Exec(ctx, `
		UPDATE order_items
		SET quantity = $3, notes = $4, updated_at = $5
		WHERE id = $1 AND order_id = $2
	`, it.ID, it.OrderID, it.Quantity, it.Notes, it.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update order item: %w", apperr.FromPG(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrItemNotFound, it.ID)
	}
	return nil
}

func (r *PGRepo) DeleteItem(ctx context.Context, orderID, itemID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := postgres.Conn(ctx, r.db).Exec(ctx, `
		DELETE FROM order_items WHERE id = $1 AND order_id = $2
	`, itemID, orderID)
	if err != nil {
		return fmt.Errorf("delete order item: %w", apperr.FromPG(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
	}
	return nil
}

func (r *PGRepo) insertItems(ctx context.Context, db postgres.DB, items []Item) error {
	for _, it := range items {
		if _, err := db.Exec(ctx, `
			INSERT INTO order_items (id, order_id, product_id, quantity, price, notes, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		`, it.ID, it.OrderID, it.ProductID, it.Quantity, it.Price.String(), it.Notes, it.CreatedAt, it.UpdatedAt); err != nil {
			return fmt.Errorf("insert order item: %w", apperr.FromPG(err))
		}
	}
	return nil
}

// loadItems returns the items of the given orders keyed by order id, in the
// order they were added.
func (r *PGRepo) loadItems(ctx context.Context, db postgres.DB, orderIDs []string) (map[string][]Item, error) {
	rows, err := db.Query(ctx, `
		SELECT `+itemColumns+`
		FROM order_items i LEFT JOIN products p ON p.id = i.product_id
		WHERE i.order_id = ANY($1::uuid[])
		ORDER BY i.created_at ASC, i.id ASC
	`, orderIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]Item, len(orderIDs))
	for rows.Next() {
		var (
			it    Item
			name  *string
			price string
		)
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &name, &it.Quantity, &price, &it.Notes, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, err
		}
		if name != nil {
			it.Product = &product.Summary{ID: it.ProductID, Name: *name}
		}
		if it.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("order item %s price %q: %w", it.ID, price, err)
		}
		out[it.OrderID] = append(out[it.OrderID], it)
	}
	return out, rows.Err()
}

func scanOrder(row pgx.Row) (*Order, error) {
	var (
		o                    Order
		tableName            *string
		subtotal, tax, total string
	)
	if err := row.Scan(&o.ID, &o.Number, &o.Type, &o.Status, &o.TableID, &tableName, &o.CustomerName, &o.CustomerPhone,
		&o.CustomerAddress, &subtotal, &tax, &total, &o.CreatedBy, &o.Version, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	if o.TableID != nil && tableName != nil {
		o.Table = &table.Summary{ID: *o.TableID, Name: *tableName}
	}
	var err error
	if o.Subtotal, err = decimal.NewFromString(subtotal); err != nil {
		return nil, fmt.Errorf("order %s subtotal %q: %w", o.ID, subtotal, err)
	}
	if o.Tax, err = decimal.NewFromString(tax); err != nil {
		return nil, fmt.Errorf("order %s tax %q: %w", o.ID, tax, err)
	}
	if o.Total, err = decimal.NewFromString(total); err != nil {
		return nil, fmt.Errorf("order %s total %q: %w", o.ID, total, err)
	}
	o.Items = []Item{}
	return &o, nil
}
