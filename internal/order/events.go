package order

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/MikeMC777/pos-restaurante/internal/outbox"
)

const (
	EventCreated       = "order.created"
	EventItemsChanged  = "order.items_changed"
	EventStatusChanged = "order.status_changed"
	EventUpdated       = "order.updated"
)

// Event is the payload published for every committed order mutation.
type Event struct {
	OrderID        string          `json:"order_id"`
	Number         string          `json:"order_number"`
	Type           Type            `json:"order_type"`
	Status         Status          `json:"status"`
	PreviousStatus Status          `json:"previous_status,omitempty"`
	TableID        *string         `json:"table_id,omitempty"`
	Items          int             `json:"items"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	Tax            decimal.Decimal `json:"tax"`
	Total          decimal.Decimal `json:"total"`
	Version        int64           `json:"version"`
	OccurredAt     time.Time       `json:"occurred_at"`
}

func newEvent(ctx context.Context, kind string, o *Order, prev Status, at time.Time) (outbox.Event, error) {
	payload, err := json.Marshal(Event{
		OrderID:        o.ID,
		Number:         o.Number,
		Type:           o.Type,
		Status:         o.Status,
		PreviousStatus: prev,
		TableID:        o.TableID,
		Items:          len(o.Items),
		Subtotal:       o.Subtotal,
		Tax:            o.Tax,
		Total:          o.Total,
		Version:        o.Version,
		OccurredAt:     at,
	})
	if err != nil {
		return outbox.Event{}, err
	}

	headers := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, headers)

	return outbox.Event{
		AggregateType: "order",
		AggregateID:   o.ID,
		Type:          kind,
		Payload:       payload,
		Headers:       headers,
		CreatedAt:     at,
		Status:        outbox.StatusPending,
	}, nil
}
