package product

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"` // NUMERIC(12,2)
	CategoryID  *string         `json:"category_id,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Summary is the part of a product shown on order lines.
type Summary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (p *Product) Summary() *Summary {
	return &Summary{ID: p.ID, Name: p.Name}
}

// MarshalJSON writes the price with its two decimal places.
func (p Product) MarshalJSON() ([]byte, error) {
	type plain Product
	return json.Marshal(struct {
		plain
		Price string `json:"price"`
	}{plain(p), p.Price.StringFixed(2)})
}

// ListResponse represents the paginated response of products.
// swagger:model
type ListResponse struct {
	// category filter applied
	CategoryID string `json:"category_id,omitempty"`
	// limit applied
	Limit int `json:"limit"`
	// offset applied
	Offset int `json:"offset"`
	// products found
	Items []Product `json:"items"`
}
