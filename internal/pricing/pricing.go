package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/Simplici0/quotedesk/internal/model"
)

var hundred = decimal.NewFromInt(100)

// Totals contains roll-up values derived from a list of line items and a tax rate.
type Totals struct {
	Subtotal  decimal.Decimal `json:"subtotal"`
	TaxAmount decimal.Decimal `json:"tax_amount"`
	Total     decimal.Decimal `json:"total"`
}

// Result groups the recomputed line items and their totals.
type Result struct {
	Lines  []model.LineItem
	Totals Totals
}

// LineTotal returns quantity × unit price.
func LineTotal(quantity, unitPrice decimal.Decimal) decimal.Decimal {
	return quantity.Mul(unitPrice)
}

// Calculate recomputes every line total and the quotation totals. The stored
// Total of each input line is ignored. The input slice is not modified.
func Calculate(lines []model.LineItem, taxRate decimal.Decimal) Result {
	out := make([]model.LineItem, len(lines))
	subtotal := decimal.Zero
	for i, line := range lines {
		line.Total = LineTotal(line.Quantity, line.UnitPrice)
		subtotal = subtotal.Add(line.Total)
		out[i] = line
	}

	taxAmount := subtotal.Mul(taxRate).Div(hundred)

	return Result{
		Lines: out,
		Totals: Totals{
			Subtotal:  subtotal,
			TaxAmount: taxAmount,
			Total:     subtotal.Add(taxAmount),
		},
	}
}

// Apply recomputes q's line totals and quotation totals in place.
func Apply(q *model.Quotation) {
	res := Calculate(q.LineItems, q.TaxRate)
	q.LineItems = res.Lines
	q.Subtotal = res.Totals.Subtotal
	q.TaxAmount = res.Totals.TaxAmount
	q.Total = res.Totals.Total
}

// Consistent reports whether q's stored totals match its line items and tax rate.
func Consistent(q model.Quotation) bool {
	res := Calculate(q.LineItems, q.TaxRate)
	for i, line := range q.LineItems {
		if !line.Total.Equal(res.Lines[i].Total) {
			return false
		}
	}
	return q.Subtotal.Equal(res.Totals.Subtotal) &&
		q.TaxAmount.Equal(res.Totals.TaxAmount) &&
		q.Total.Equal(res.Totals.Total)
}

// SelectItem points line at a catalog item, snapshotting the item's current
// price and recomputing the line total. Later catalog changes do not reach
// lines that were already filled.
func SelectItem(line model.LineItem, item model.Item) model.LineItem {
	line.ItemID = item.ID
	line.UnitPrice = item.UnitPrice
	if line.Name == "" {
		line.Name = item.Name
	}
	if line.Description == "" {
		line.Description = item.Description
	}
	if line.Unit == "" {
		line.Unit = item.Unit
	}
	if line.Quantity.IsZero() {
		line.Quantity = decimal.NewFromInt(1)
	}
	line.Total = LineTotal(line.Quantity, line.UnitPrice)
	return line
}
