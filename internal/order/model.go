package order

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MikeMC777/pos-restaurante/internal/apperr"
	"github.com/MikeMC777/pos-restaurante/internal/product"
	"github.com/MikeMC777/pos-restaurante/internal/table"
)

type Type string

const (
	TypeTable    Type = "table"
	TypeDelivery Type = "delivery"
)

func ParseType(s string) (Type, error) {
	switch t := Type(s); t {
	case TypeTable, TypeDelivery:
		return t, nil
	}
	return "", fmt.Errorf("%w: unknown order type %q", apperr.ErrValidation, s)
}

type Status string

const (
	StatusPending   Status = "pending"
	StatusPreparing Status = "preparing"
	StatusReady     Status = "ready"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
	StatusPaid      Status = "paid"
)

func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusPending, StatusPreparing, StatusReady, StatusDelivered, StatusCancelled, StatusPaid:
		return st, nil
	}
	return "", fmt.Errorf("%w: unknown order status %q", apperr.ErrValidation, s)
}

// Closed reports whether items of an order in this status are frozen.
// Status changes out of a closed status are still accepted.
func (s Status) Closed() bool {
	return s == StatusPaid || s == StatusDelivered || s == StatusCancelled
}

// releasesTable reports whether entering s frees the order's table.
func (s Status) releasesTable() bool {
	return s == StatusPaid || s == StatusDelivered
}

type Order struct {
	ID              string          `json:"id"`
	Number          string          `json:"order_number"`
	Type            Type            `json:"order_type"`
	Status          Status          `json:"status"`
	TableID         *string         `json:"table_id,omitempty"`
	Table           *table.Summary  `json:"table,omitempty"` // read only
	CustomerName    *string         `json:"customer_name,omitempty"`
	CustomerPhone   *string         `json:"customer_phone,omitempty"`
	CustomerAddress *string         `json:"customer_address,omitempty"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	Tax             decimal.Decimal `json:"tax"`
	Total           decimal.Decimal `json:"total"`
	CreatedBy       string          `json:"created_by"`
	Version         int64           `json:"version"`
	Items           []Item          `json:"items"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (o *Order) Totals() Totals {
	return Totals{Subtotal: o.Subtotal, Tax: o.Tax, Total: o.Total}
}

func (o *Order) setTotals(t Totals) {
	o.Subtotal, o.Tax, o.Total = t.Subtotal, t.Tax, t.Total
}

// item returns the line with the given id, or nil.
func (o *Order) item(id string) *Item {
	for i := range o.Items {
		if o.Items[i].ID == id {
			return &o.Items[i]
		}
	}
	return nil
}

type Item struct {
	ID        string           `json:"id"`
	OrderID   string           `json:"order_id"`
	ProductID string           `json:"product_id"`
	Product   *product.Summary `json:"product,omitempty"` // read only
	Quantity  int              `json:"quantity"`
	Price     decimal.Decimal  `json:"price"` // snapshot taken when the line was added
	Notes     *string          `json:"notes,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// MarshalJSON writes money with the scale of the NUMERIC(12,2) columns.
func (o Order) MarshalJSON() ([]byte, error) {
	type plain Order
	return json.Marshal(struct {
		plain
		Subtotal string `json:"subtotal"`
		Tax      string `json:"tax"`
		Total    string `json:"total"`
	}{
		plain:    plain(o),
		Subtotal: o.Subtotal.StringFixed(MoneyPlaces),
		Tax:      o.Tax.StringFixed(MoneyPlaces),
		Total:    o.Total.StringFixed(MoneyPlaces),
	})
}

func (it Item) MarshalJSON() ([]byte, error) {
	type plain Item
	return json.Marshal(struct {
		plain
		Price string `json:"price"`
	}{plain(it), it.Price.StringFixed(MoneyPlaces)})
}
