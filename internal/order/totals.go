package order

import "github.com/shopspring/decimal"

// DefaultTaxRate is used when no rate is configured.
var DefaultTaxRate = decimal.RequireFromString("0.10")

// MoneyPlaces is the precision of stored monetary columns (NUMERIC(12,2)).
const MoneyPlaces int32 = 2

type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// Calculator derives tax and total from a subtotal. It holds the single tax
// rate of the deployment.
type Calculator struct {
	TaxRate decimal.Decimal
	Places  int32
}

func NewCalculator(rate decimal.Decimal) Calculator {
	return Calculator{TaxRate: rate, Places: MoneyPlaces}
}

func LineTotal(price decimal.Decimal, quantity int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(quantity)))
}

// Compute sums the line totals of items and derives tax and total.
func (c Calculator) Compute(items []Item) Totals {
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(LineTotal(it.Price, it.Quantity))
	}
	return c.fromSubtotal(subtotal)
}

// ApplyDelta moves the subtotal by delta and recomputes tax and total from
// the new subtotal, never from the previous tax.
func (c Calculator) ApplyDelta(cur Totals, delta decimal.Decimal) Totals {
	return c.fromSubtotal(cur.Subtotal.Add(delta))
}

func (c Calculator) fromSubtotal(subtotal decimal.Decimal) Totals {
	tax := subtotal.Mul(c.TaxRate).Round(c.Places)
	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax),
	}
}
