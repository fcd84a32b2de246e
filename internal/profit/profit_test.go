package profit

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/quotedesk/internal/model"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func dp(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

func nearlyEqual(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("%s = %v, want %v", name, got, want)
	}
}

func equalDecimal(t *testing.T, name string, got, want decimal.Decimal) {
	t.Helper()
	if !got.Equal(want) {
		t.Fatalf("%s = %s, want %s", name, got, want)
	}
}

func quote(id, clientID string, status model.Status, total string, created time.Time, lines ...model.LineItem) model.Quotation {
	return model.Quotation{
		ID:        id,
		ClientID:  clientID,
		Status:    status,
		Total:     d(total),
		CreatedAt: created,
		LineItems: lines,
	}
}

func lineWithCost(itemID, qty, price, cost string) model.LineItem {
	l := model.LineItem{ItemID: itemID, Quantity: d(qty), UnitPrice: d(price)}
	if cost != "" {
		l.CostPrice = dp(cost)
	}
	return l
}

var jan = time.Date(2025, time.January, 15, 10, 0, 0, 0, time.UTC)

func TestForQuotation_UsesLineCostPrice(t *testing.T) {
	q := quote("q1", "c1", model.StatusAccepted, "1000", jan, lineWithCost("i1", "1", "1000", "400"))

	p := ForQuotation(q, Catalog{})

	equalDecimal(t, "revenue", p.Revenue, d("1000"))
	equalDecimal(t, "cost", p.Cost, d("400"))
	equalDecimal(t, "grossProfit", p.GrossProfit, d("600"))
	nearlyEqual(t, "profitMargin", p.ProfitMargin, 60)
	if !p.HasCompleteCostData {
		t.Fatalf("expected complete cost data")
	}
}

func TestForQuotation_FallsBackToCatalogCost(t *testing.T) {
	catalog := NewCatalog([]model.Item{{ID: "i1", CostPrice: dp("30")}})
	q := quote("q1", "c1", model.StatusAccepted, "200", jan,
		lineWithCost("i1", "2", "50", ""),
		lineWithCost("i1", "1", "50", "0"),
	)

	p := ForQuotation(q, catalog)

	equalDecimal(t, "cost", p.Cost, d("90"))
	equalDecimal(t, "grossProfit", p.GrossProfit, d("110"))
	if !p.HasCompleteCostData {
		t.Fatalf("expected complete cost data")
	}
}

func TestForQuotation_MissingCostFlagsIncomplete(t *testing.T) {
	catalog := NewCatalog([]model.Item{{ID: "i2", CostPrice: dp("0")}})
	q := quote("q1", "c1", model.StatusAccepted, "500", jan,
		lineWithCost("i1", "1", "250", "100"),
		lineWithCost("i2", "1", "250", ""),
	)

	p := ForQuotation(q, catalog)

	equalDecimal(t, "cost", p.Cost, d("100"))
	if p.HasCompleteCostData {
		t.Fatalf("expected incomplete cost data")
	}
}

func TestForQuotation_ZeroRevenueHasZeroMargin(t *testing.T) {
	q := quote("q1", "c1", model.StatusAccepted, "0", jan, lineWithCost("i1", "1", "0", "10"))

	p := ForQuotation(q, Catalog{})

	nearlyEqual(t, "profitMargin", p.ProfitMargin, 0)
	equalDecimal(t, "grossProfit", p.GrossProfit, d("-10"))
}

func TestOverall_OnlyAccepted(t *testing.T) {
	quotes := []model.Quotation{
		quote("q1", "c1", model.StatusAccepted, "1000", jan, lineWithCost("i1", "1", "1000", "400")),
		quote("q2", "c1", model.StatusAccepted, "500", jan, lineWithCost("i1", "1", "500", "400")),
		quote("q3", "c1", model.StatusSent, "9000", jan, lineWithCost("i1", "1", "9000", "1")),
	}

	m := Overall(quotes, Catalog{})

	if m.QuotationCount != 2 {
		t.Fatalf("quotationCount = %d, want 2", m.QuotationCount)
	}
	equalDecimal(t, "revenue", m.Revenue, d("1500"))
	equalDecimal(t, "cost", m.Cost, d("800"))
	nearlyEqual(t, "profitMargin", m.ProfitMargin, 700.0/1500.0*100)
}

func TestByClient_GroupsAndSortsByProfit(t *testing.T) {
	clients := []model.Client{{ID: "c1", Name: "ABC Industries"}, {ID: "c2", Name: "XYZ Manufacturing"}}
	quotes := []model.Quotation{
		quote("q1", "c1", model.StatusAccepted, "100", jan, lineWithCost("i1", "1", "100", "90")),
		quote("q2", "c2", model.StatusAccepted, "1000", jan, lineWithCost("i1", "1", "1000", "100")),
		quote("q3", "c1", model.StatusAccepted, "200", jan, lineWithCost("i1", "1", "200", "100")),
		quote("q4", "c3", model.StatusAccepted, "50", jan, lineWithCost("i1", "1", "50", "10")),
		quote("q5", "c2", model.StatusRejected, "5000", jan, lineWithCost("i1", "1", "5000", "1")),
	}

	got := ByClient(quotes, Catalog{}, clients)

	if len(got) != 3 {
		t.Fatalf("expected 3 clients, got %d: %+v", len(got), got)
	}
	if got[0].ClientID != "c2" || got[1].ClientID != "c1" || got[2].ClientID != "c3" {
		t.Fatalf("unexpected order: %+v", got)
	}
	if got[1].QuotationCount != 2 || got[1].ClientName != "ABC Industries" {
		t.Fatalf("unexpected c1 aggregate: %+v", got[1])
	}
	equalDecimal(t, "c1 profit", got[1].GrossProfit, d("110"))
	nearlyEqual(t, "c1 margin", got[1].ProfitMargin, 110.0/300.0*100)
	if got[2].ClientName != "Unknown" {
		t.Fatalf("expected Unknown for missing client, got %q", got[2].ClientName)
	}
}

func TestByCategory_ExplodesLines(t *testing.T) {
	catalog := NewCatalog([]model.Item{
		{ID: "plc", Category: "Automation", CostPrice: dp("600")},
		{ID: "helmet", Category: "Safety"},
	})
	quotes := []model.Quotation{
		quote("q1", "c1", model.StatusAccepted, "0", jan,
			lineWithCost("plc", "2", "1000", ""),
			lineWithCost("helmet", "10", "50", "20"),
			lineWithCost("ghost", "1", "70", ""),
		),
		quote("q2", "c1", model.StatusAccepted, "0", jan, lineWithCost("plc", "1", "900", "")),
		quote("q3", "c1", model.StatusDraft, "0", jan, lineWithCost("plc", "100", "1", "")),
	}

	got := ByCategory(quotes, catalog)

	if len(got) != 3 {
		t.Fatalf("expected 3 categories, got %+v", got)
	}
	if got[0].Category != "Automation" || got[1].Category != "Safety" || got[2].Category != UncategorizedLabel {
		t.Fatalf("unexpected order: %+v", got)
	}
	equalDecimal(t, "automation revenue", got[0].Revenue, d("2900"))
	equalDecimal(t, "automation cost", got[0].Cost, d("1800"))
	if got[0].ItemCount != 2 {
		t.Fatalf("automation item count = %d, want 2", got[0].ItemCount)
	}
	equalDecimal(t, "safety profit", got[1].GrossProfit, d("300"))
	equalDecimal(t, "uncategorized cost", got[2].Cost, decimal.Zero)
}

func TestMonthly_ZeroFillsTrailingMonths(t *testing.T) {
	now := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	quotes := []model.Quotation{
		quote("q1", "c1", model.StatusAccepted, "1000", time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC), lineWithCost("i", "1", "1000", "250")),
		quote("q2", "c1", model.StatusAccepted, "400", time.Date(2025, time.January, 31, 23, 0, 0, 0, time.UTC), lineWithCost("i", "1", "400", "100")),
		quote("q3", "c1", model.StatusSent, "999", time.Date(2025, time.February, 5, 0, 0, 0, 0, time.UTC), lineWithCost("i", "1", "999", "1")),
		quote("q4", "c1", model.StatusAccepted, "777", time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC), lineWithCost("i", "1", "777", "1")),
	}

	got := Monthly(quotes, Catalog{}, now, 0)

	if len(got) != DefaultMonths {
		t.Fatalf("expected %d months, got %d", DefaultMonths, len(got))
	}
	wantLabels := []string{"Oct", "Nov", "Dec", "Jan", "Feb", "Mar"}
	for i, m := range got {
		if m.Month != wantLabels[i] {
			t.Fatalf("month[%d] = %q, want %q", i, m.Month, wantLabels[i])
		}
	}
	if got[0].Year != 2024 || got[5].Year != 2025 {
		t.Fatalf("unexpected years: %d, %d", got[0].Year, got[5].Year)
	}
	equalDecimal(t, "jan revenue", got[3].Revenue, d("400"))
	equalDecimal(t, "feb revenue", got[4].Revenue, decimal.Zero)
	nearlyEqual(t, "feb margin", got[4].ProfitMargin, 0)
	equalDecimal(t, "mar profit", got[5].GrossProfit, d("750"))
	nearlyEqual(t, "mar margin", got[5].ProfitMargin, 75)
	equalDecimal(t, "oct revenue", got[0].Revenue, decimal.Zero)
}

func TestLowMargin_ClassifiesAndSkipsIncompleteData(t *testing.T) {
	quotes := []model.Quotation{
		quote("critical", "c1", model.StatusAccepted, "100", jan, lineWithCost("i", "1", "100", "95")),
		quote("warning", "c1", model.StatusSent, "100", jan, lineWithCost("i", "1", "100", "85")),
		quote("low", "c1", model.StatusAccepted, "100", jan, lineWithCost("i", "1", "100", "75")),
		quote("healthy", "c1", model.StatusAccepted, "100", jan, lineWithCost("i", "1", "100", "70")),
		quote("incomplete", "c1", model.StatusAccepted, "100", jan, lineWithCost("i", "1", "100", "")),
		quote("draft", "c1", model.StatusDraft, "100", jan, lineWithCost("i", "1", "100", "99")),
		quote("negative", "c1", model.StatusSent, "100", jan, lineWithCost("i", "1", "100", "150")),
	}

	got := LowMargin(quotes, Catalog{}, DefaultThresholds)

	wantIDs := []string{"negative", "critical", "warning", "low"}
	wantLevels := []AlertLevel{AlertCritical, AlertCritical, AlertWarning, AlertLow}
	if len(got) != len(wantIDs) {
		t.Fatalf("expected %d alerts, got %+v", len(wantIDs), got)
	}
	for i, alert := range got {
		if alert.Quotation.ID != wantIDs[i] || alert.Level != wantLevels[i] {
			t.Fatalf("alert[%d] = %s/%s, want %s/%s", i, alert.Quotation.ID, alert.Level, wantIDs[i], wantLevels[i])
		}
		if alert.Quotation.ID == "incomplete" {
			t.Fatalf("incomplete cost data must never raise an alert")
		}
	}
	nearlyEqual(t, "negative margin", got[0].ProfitMargin, -50)
}

func TestBuild_AssemblesReport(t *testing.T) {
	now := time.Date(2025, time.January, 20, 0, 0, 0, 0, time.UTC)
	items := []model.Item{{ID: "i1", Category: "Automation", CostPrice: dp("40")}}
	clients := []model.Client{{ID: "c1", Name: "ABC"}}
	quotes := []model.Quotation{quote("q1", "c1", model.StatusAccepted, "118", jan, lineWithCost("i1", "1", "100", ""))}

	r := Build(quotes, items, clients, now, 3)

	if r.Overall.QuotationCount != 1 || len(r.Clients) != 1 || len(r.Categories) != 1 || len(r.Monthly) != 3 {
		t.Fatalf("unexpected report: %+v", r)
	}
	equalDecimal(t, "overall profit", r.Overall.GrossProfit, d("78"))
	equalDecimal(t, "category profit", r.Categories[0].GrossProfit, d("60"))
	if len(r.Alerts) != 0 {
		t.Fatalf("expected no alerts, got %+v", r.Alerts)
	}
}
