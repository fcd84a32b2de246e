package pricing

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/quotedesk/internal/model"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func equalDecimal(t *testing.T, name string, got, want decimal.Decimal) {
	t.Helper()
	if !got.Equal(want) {
		t.Fatalf("%s = %s, want %s", name, got, want)
	}
}

func line(qty, price string) model.LineItem {
	return model.LineItem{ItemID: "item", Quantity: d(qty), UnitPrice: d(price)}
}

func TestCalculate_TwoLinesWithTax(t *testing.T) {
	lines := []model.LineItem{line("2", "100"), line("1", "50")}

	result := Calculate(lines, d("18"))

	equalDecimal(t, "line[0].total", result.Lines[0].Total, d("200"))
	equalDecimal(t, "line[1].total", result.Lines[1].Total, d("50"))
	equalDecimal(t, "subtotal", result.Totals.Subtotal, d("250"))
	equalDecimal(t, "taxAmount", result.Totals.TaxAmount, d("45"))
	equalDecimal(t, "total", result.Totals.Total, d("295"))
}

func TestCalculate_EmptyLinesYieldZero(t *testing.T) {
	result := Calculate(nil, d("18"))

	equalDecimal(t, "subtotal", result.Totals.Subtotal, decimal.Zero)
	equalDecimal(t, "taxAmount", result.Totals.TaxAmount, decimal.Zero)
	equalDecimal(t, "total", result.Totals.Total, decimal.Zero)
	if len(result.Lines) != 0 {
		t.Fatalf("expected no lines, got %d", len(result.Lines))
	}
}

func TestCalculate_IgnoresStaleLineTotals(t *testing.T) {
	stale := line("3", "10")
	stale.Total = d("999")

	result := Calculate([]model.LineItem{stale}, decimal.Zero)

	equalDecimal(t, "line total", result.Lines[0].Total, d("30"))
	equalDecimal(t, "total", result.Totals.Total, d("30"))
	equalDecimal(t, "input untouched", stale.Total, d("999"))
}

func TestCalculate_TotalMatchesSubtotalTimesRate(t *testing.T) {
	cases := []struct {
		lines []model.LineItem
		rate  string
	}{
		{[]model.LineItem{line("1.5", "33.33")}, "18"},
		{[]model.LineItem{line("7", "0.1"), line("3", "19.99")}, "12.5"},
		{[]model.LineItem{line("10", "1234.56")}, "0"},
		{[]model.LineItem{line("2", "0")}, "28"},
	}

	for _, tc := range cases {
		result := Calculate(tc.lines, d(tc.rate))

		sum := decimal.Zero
		for _, l := range tc.lines {
			sum = sum.Add(l.Quantity.Mul(l.UnitPrice))
		}
		equalDecimal(t, "subtotal", result.Totals.Subtotal, sum)

		factor := decimal.NewFromInt(1).Add(d(tc.rate).Div(decimal.NewFromInt(100)))
		equalDecimal(t, "total", result.Totals.Total, result.Totals.Subtotal.Mul(factor))
	}
}

func TestCalculate_IsIdempotent(t *testing.T) {
	lines := []model.LineItem{line("4", "12.75"), line("1", "3")}

	first := Calculate(lines, d("5"))
	second := Calculate(first.Lines, d("5"))

	equalDecimal(t, "total", second.Totals.Total, first.Totals.Total)
	equalDecimal(t, "subtotal", second.Totals.Subtotal, first.Totals.Subtotal)
	for i := range first.Lines {
		equalDecimal(t, "line total", second.Lines[i].Total, first.Lines[i].Total)
	}
}

func TestApply_MakesQuotationConsistent(t *testing.T) {
	q := model.Quotation{
		LineItems: []model.LineItem{line("2", "100")},
		TaxRate:   d("10"),
		Total:     d("1"),
	}
	if Consistent(q) {
		t.Fatalf("expected stale quotation to be inconsistent")
	}

	Apply(&q)

	if !Consistent(q) {
		t.Fatalf("expected quotation to be consistent after Apply: %+v", q)
	}
	equalDecimal(t, "total", q.Total, d("220"))
}

func TestSelectItem_SnapshotsCatalogPrice(t *testing.T) {
	item := model.Item{ID: "sensor", Name: "Proximity sensor", Unit: "nos", UnitPrice: d("1500")}

	filled := SelectItem(model.LineItem{Quantity: d("3")}, item)

	if filled.ItemID != "sensor" || filled.Name != "Proximity sensor" || filled.Unit != "nos" {
		t.Fatalf("unexpected line: %+v", filled)
	}
	equalDecimal(t, "unit price", filled.UnitPrice, d("1500"))
	equalDecimal(t, "total", filled.Total, d("4500"))

	item.UnitPrice = d("2000")
	equalDecimal(t, "snapshot unchanged", filled.UnitPrice, d("1500"))
}
