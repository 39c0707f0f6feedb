package order

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/MikeMC777/pos-restaurante/internal/apperr"
	"github.com/MikeMC777/pos-restaurante/internal/table"
)

// Deps are the collaborators of the lifecycle engine. Events may be nil.
type Deps struct {
	Repo    Repository
	Catalog CatalogStore
	Tables  TableStore
	Tx      Transactor
	Events  EventSink
	Calc    Calculator
	Numbers *NumberGenerator
	Log     *slog.Logger
}

// Service is the order lifecycle engine. Each mutating operation runs as one
// unit of work: the order row is locked, totals are recomputed and the table
// flag, items, header and outbox event are written before commit.
type Service struct {
	repo    Repository
	catalog CatalogStore
	tables  TableStore
	tx      Transactor
	events  EventSink
	calc    Calculator
	numbers *NumberGenerator
	log     *slog.Logger
	tracer  trace.Tracer
	now     func() time.Time
}

func NewService(d Deps) *Service {
	if d.Numbers == nil {
		d.Numbers = NewNumberGenerator(time.UTC)
	}
	if d.Calc.TaxRate.IsZero() && d.Calc.Places == 0 {
		d.Calc = NewCalculator(DefaultTaxRate)
	}
	return &Service{
		repo:    d.Repo,
		catalog: d.Catalog,
		tables:  d.Tables,
		tx:      d.Tx,
		events:  d.Events,
		calc:    d.Calc,
		numbers: d.Numbers,
		log:     d.Log,
		tracer:  otel.Tracer("pos/order"),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Order, error) {
	ctx, span := s.tracer.Start(ctx, "order.Create", trace.WithAttributes(attribute.String("order.type", string(in.Type))))
	defer span.End()

	if err := validateCreate(in); err != nil {
		return nil, fail(span, err)
	}

	var out *Order
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var tbl *table.Table
		if in.Type == TypeTable {
			t, err := s.tables.GetByID(ctx, *trimmed(in.TableID))
			if err != nil {
				return err
			}
			if t.IsOccupied {
				// no double-booking check: the table is taken over by the new order
				s.log.Warn("table already occupied", "table_id", t.ID, "table", t.Name)
			}
			tbl = t
		}

		now := s.now()
		o := &Order{
			ID:        uuid.NewString(),
			Type:      in.Type,
			Status:    StatusPending,
			CreatedBy: in.CreatedBy,
			Version:   1,
			CreatedAt: now,
			UpdatedAt: now,
		}
		switch in.Type {
		case TypeTable:
			o.TableID = trimmed(in.TableID)
			o.Table = tbl.Summary()
		case TypeDelivery:
			o.CustomerName = trimmed(in.CustomerName)
			o.CustomerPhone = trimmed(in.CustomerPhone)
			o.CustomerAddress = trimmed(in.CustomerAddress)
		}

		items, err := s.snapshot(ctx, o.ID, in.Items, now)
		if err != nil {
			return err
		}
		o.Items = items
		o.setTotals(s.calc.Compute(items))

		if o.Number, err = s.numbers.Next(); err != nil {
			return err
		}
		if err := s.repo.Create(ctx, o); err != nil {
			return err
		}
		if o.Type == TypeTable {
			if _, err := s.tables.SetOccupied(ctx, *o.TableID, true); err != nil {
				return err
			}
		}
		if err := s.emit(ctx, EventCreated, o, ""); err != nil {
			return err
		}
		out = o
		return nil
	})
	if err != nil {
		return nil, fail(span, err)
	}

	s.log.Info("order created", "order_id", out.ID, "number", out.Number, "type", out.Type, "total", out.Total.StringFixed(MoneyPlaces))
	return out, nil
}

func (s *Service) AddItems(ctx context.Context, orderID string, items []CreateItem) (*Order, error) {
	ctx, span := s.tracer.Start(ctx, "order.AddItems", trace.WithAttributes(attribute.String("order.id", orderID)))
	defer span.End()

	if len(items) == 0 {
		return nil, fail(span, fmt.Errorf("%w: at least one item is required", apperr.ErrValidation))
	}
	if err := validateItems(items); err != nil {
		return nil, fail(span, err)
	}

	o, err := s.mutate(ctx, orderID, func(ctx context.Context, o *Order) (string, error) {
		if err := ensureOpen(o); err != nil {
			return "", err
		}
		added, err := s.snapshot(ctx, o.ID, items, s.now())
		if err != nil {
			return "", err
		}
		delta := decimal.Zero
		for _, it := range added {
			delta = delta.Add(LineTotal(it.Price, it.Quantity))
		}
		if err := s.repo.AddItems(ctx, added); err != nil {
			return "", err
		}
		o.Items = append(o.Items, added...)
		o.setTotals(s.calc.ApplyDelta(o.Totals(), delta))
		return EventItemsChanged, nil
	})
	if err != nil {
		return nil, fail(span, err)
	}
	return o, nil
}

func (s *Service) RemoveItem(ctx context.Context, orderID, itemID string) (*Order, error) {
	ctx, span := s.tracer.Start(ctx, "order.RemoveItem", trace.WithAttributes(
		attribute.String("order.id", orderID), attribute.String("order.item_id", itemID)))
	defer span.End()

	o, err := s.mutate(ctx, orderID, func(ctx context.Context, o *Order) (string, error) {
		if err := ensureOpen(o); err != nil {
			return "", err
		}
		it := o.item(itemID)
		if it == nil {
			return "", fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
		}
		delta := LineTotal(it.Price, it.Quantity).Neg()
		if err := s.repo.DeleteItem(ctx, o.ID, it.ID); err != nil {
			return "", err
		}
		o.Items = removeItem(o.Items, itemID)
		o.setTotals(s.calc.ApplyDelta(o.Totals(), delta))
		return EventItemsChanged, nil
	})
	if err != nil {
		return nil, fail(span, err)
	}
	return o, nil
}

func (s *Service) UpdateItem(ctx context.Context, orderID, itemID string, p ItemPatch) (*Order, error) {
	ctx, span := s.tracer.Start(ctx, "order.UpdateItem", trace.WithAttributes(
		attribute.String("order.id", orderID), attribute.String("order.item_id", itemID)))
	defer span.End()

	if p.Quantity != nil && *p.Quantity <= 0 {
		return nil, fail(span, fmt.Errorf("%w: quantity must be greater than zero", apperr.ErrValidation))
	}

	o, err := s.mutate(ctx, orderID, func(ctx context.Context, o *Order) (string, error) {
		if err := ensureOpen(o); err != nil {
			return "", err
		}
		it := o.item(itemID)
		if it == nil {
			return "", fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
		}
		before := LineTotal(it.Price, it.Quantity)
		if p.Quantity != nil {
			it.Quantity = *p.Quantity
		}
		if p.Notes != nil {
			notes := *p.Notes
			it.Notes = &notes
		}
		it.UpdatedAt = s.now()
		if err := s.repo.UpdateItem(ctx, it); err != nil {
			return "", err
		}
		after := LineTotal(it.Price, it.Quantity)
		o.setTotals(s.calc.ApplyDelta(o.Totals(), after.Sub(before)))
		return EventItemsChanged, nil
	})
	if err != nil {
		return nil, fail(span, err)
	}
	return o, nil
}

// SetStatus overwrites the status. Any status may follow any other; moving a
// table order into paid or delivered frees its table.
func (s *Service) SetStatus(ctx context.Context, orderID string, status Status) (*Order, error) {
	ctx, span := s.tracer.Start(ctx, "order.SetStatus", trace.WithAttributes(
		attribute.String("order.id", orderID), attribute.String("order.status", string(status))))
	defer span.End()

	if _, err := ParseStatus(string(status)); err != nil {
		return nil, fail(span, err)
	}
	o, err := s.UpdateHeader(ctx, orderID, HeaderPatch{Status: &status})
	if err != nil {
		return nil, fail(span, err)
	}
	return o, nil
}

// UpdateHeader applies only the supplied fields. Create-time rules on table
// and customer fields are not re-checked here.
func (s *Service) UpdateHeader(ctx context.Context, orderID string, p HeaderPatch) (*Order, error) {
	ctx, span := s.tracer.Start(ctx, "order.UpdateHeader", trace.WithAttributes(attribute.String("order.id", orderID)))
	defer span.End()

	if p.Status != nil {
		if _, err := ParseStatus(string(*p.Status)); err != nil {
			return nil, fail(span, err)
		}
	}

	var prev Status
	o, err := s.mutate(ctx, orderID, func(ctx context.Context, o *Order) (string, error) {
		prev = o.Status
		event := EventUpdated
		if p.Status != nil {
			if p.Status.releasesTable() && o.Type == TypeTable && o.TableID != nil {
				if _, err := s.tables.SetOccupied(ctx, *o.TableID, false); err != nil {
					return "", err
				}
			}
			o.Status = *p.Status
			event = EventStatusChanged
		}
		if p.TableID != nil {
			o.TableID = copyString(p.TableID)
			if err := s.describeTable(ctx, o); err != nil {
				return "", err
			}
		}
		if p.CustomerName != nil {
			o.CustomerName = copyString(p.CustomerName)
		}
		if p.CustomerPhone != nil {
			o.CustomerPhone = copyString(p.CustomerPhone)
		}
		if p.CustomerAddress != nil {
			o.CustomerAddress = copyString(p.CustomerAddress)
		}
		return event, nil
	})
	if err != nil {
		return nil, fail(span, err)
	}
	if p.Status != nil && prev != o.Status {
		s.log.Info("order status changed", "order_id", o.ID, "from", prev, "to", o.Status)
	}
	return o, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Order, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) GetByNumber(ctx context.Context, number string) (*Order, error) {
	return s.repo.GetByNumber(ctx, number)
}

func (s *Service) List(ctx context.Context, f Filter) ([]Order, error) {
	return s.repo.List(ctx, f.Normalize())
}

// KitchenQueue lists the orders the kitchen still has to work on, oldest first.
func (s *Service) KitchenQueue(ctx context.Context) ([]Order, error) {
	return s.repo.List(ctx, Filter{
		Statuses:    []Status{StatusPending, StatusPreparing},
		Limit:       MaxListLimit,
		OldestFirst: true,
	})
}

// CashierQueue lists ready or delivered orders awaiting payment, oldest first.
func (s *Service) CashierQueue(ctx context.Context) ([]Order, error) {
	return s.repo.List(ctx, Filter{
		Statuses:    []Status{StatusReady, StatusDelivered},
		Limit:       MaxListLimit,
		OldestFirst: true,
	})
}

// mutate locks the order, runs fn and persists the header with a bumped
// version. fn returns the kind of event to record.
func (s *Service) mutate(ctx context.Context, orderID string, fn func(ctx context.Context, o *Order) (string, error)) (*Order, error) {
	var out *Order
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		o, err := s.repo.Lock(ctx, orderID)
		if err != nil {
			return err
		}
		prev := o.Status
		kind, err := fn(ctx, o)
		if err != nil {
			return err
		}
		o.UpdatedAt = s.now()
		if err := s.repo.Save(ctx, o); err != nil {
			return err
		}
		if kind == EventStatusChanged && prev == o.Status {
			kind = EventUpdated
		}
		if err := s.emit(ctx, kind, o, prev); err != nil {
			return err
		}
		out = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) snapshot(ctx context.Context, orderID string, in []CreateItem, now time.Time) ([]Item, error) {
	items := make([]Item, 0, len(in))
	for _, ci := range in {
		p, err := s.catalog.GetByID(ctx, ci.ProductID)
		if err != nil {
			return nil, err
		}
		items = append(items, Item{
			ID:        uuid.NewString(),
			OrderID:   orderID,
			ProductID: p.ID,
			Product:   p.Summary(),
			Quantity:  ci.Quantity,
			Price:     p.Price,
			Notes:     copyString(ci.Notes),
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	return items, nil
}

// describeTable refreshes the table summary after table_id changed. An id
// that names no table leaves the summary empty.
func (s *Service) describeTable(ctx context.Context, o *Order) error {
	o.Table = nil
	if o.TableID == nil {
		return nil
	}
	t, err := s.tables.GetByID(ctx, *o.TableID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	o.Table = t.Summary()
	return nil
}

func (s *Service) emit(ctx context.Context, kind string, o *Order, prev Status) error {
	if s.events == nil {
		return nil
	}
	if prev == o.Status {
		prev = ""
	}
	ev, err := newEvent(ctx, kind, o, prev, s.now())
	if err != nil {
		return err
	}
	return s.events.Append(ctx, ev)
}

func validateCreate(in CreateInput) error {
	if _, err := ParseType(string(in.Type)); err != nil {
		return err
	}
	switch in.Type {
	case TypeTable:
		if blank(in.TableID) {
			return fmt.Errorf("%w: table_id is required for table orders", apperr.ErrValidation)
		}
	case TypeDelivery:
		var missing []string
		if blank(in.CustomerName) {
			missing = append(missing, "customer_name")
		}
		if blank(in.CustomerPhone) {
			missing = append(missing, "customer_phone")
		}
		if blank(in.CustomerAddress) {
			missing = append(missing, "customer_address")
		}
		if len(missing) > 0 {
			return fmt.Errorf("%w: delivery orders require %s", apperr.ErrValidation, strings.Join(missing, ", "))
		}
	}
	return validateItems(in.Items)
}

func validateItems(items []CreateItem) error {
	for i, it := range items {
		if strings.TrimSpace(it.ProductID) == "" {
			return fmt.Errorf("%w: item %d: product_id is required", apperr.ErrValidation, i+1)
		}
		if it.Quantity <= 0 {
			return fmt.Errorf("%w: item %d: quantity must be greater than zero", apperr.ErrValidation, i+1)
		}
	}
	return nil
}

func ensureOpen(o *Order) error {
	if o.Status.Closed() {
		return fmt.Errorf("%w: items of order %s cannot change in status %s", ErrClosed, o.Number, o.Status)
	}
	return nil
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

func removeItem(items []Item, id string) []Item {
	out := items[:0]
	for _, it := range items {
		if it.ID != id {
			out = append(out, it)
		}
	}
	return out
}

func blank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
