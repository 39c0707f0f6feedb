package order

// CreateItem payload of a line item.
// swagger:model CreateItem
type CreateItem struct {
	ProductID string  `json:"product_id" example:"4e7d4e5c-5cb9-4a3f-9f21-7e1a4f9f2b2a"`
	Quantity  int     `json:"quantity"   example:"2"`
	Notes     *string `json:"notes,omitempty" example:"sin cebolla"`
}

// CreateInput payload of order creation.
// swagger:model CreateInput
type CreateInput struct {
	Type            Type         `json:"order_type" example:"table"`
	TableID         *string      `json:"table_id,omitempty" example:"b2f5ff47-2b1e-4f22-8a96-5f3c1f2f2e7b"`
	CustomerName    *string      `json:"customer_name,omitempty"`
	CustomerPhone   *string      `json:"customer_phone,omitempty"`
	CustomerAddress *string      `json:"customer_address,omitempty"`
	Items           []CreateItem `json:"items"`
	CreatedBy       string       `json:"-"`
}

// ItemPatch partial update of a line item. Nil fields are left unchanged.
// swagger:model ItemPatch
type ItemPatch struct {
	Quantity *int    `json:"quantity,omitempty" example:"3"`
	Notes    *string `json:"notes,omitempty"`
}

// HeaderPatch partial update of the order header. Nil fields are left unchanged.
// swagger:model HeaderPatch
type HeaderPatch struct {
	Status          *Status `json:"status,omitempty" example:"preparing"`
	TableID         *string `json:"table_id,omitempty"`
	CustomerName    *string `json:"customer_name,omitempty"`
	CustomerPhone   *string `json:"customer_phone,omitempty"`
	CustomerAddress *string `json:"customer_address,omitempty"`
}

const MaxListLimit = 500

// Filter selects orders for listing.
type Filter struct {
	Statuses []Status
	Type     *Type
	Limit    int
	Offset   int
	// OldestFirst orders by created_at ascending; the default is newest first.
	OldestFirst bool
}

func (f Filter) Normalize() Filter {
	if f.Limit <= 0 {
		f.Limit = 100
	}
	if f.Limit > MaxListLimit {
		f.Limit = MaxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

// AddItemsRequest body of POST /orders/:id/items.
// swagger:model AddItemsRequest
type AddItemsRequest struct {
	Items []CreateItem `json:"items"`
}

// StatusRequest body of PUT /orders/:id/status.
// swagger:model StatusRequest
type StatusRequest struct {
	Status Status `json:"status" example:"ready"`
}
