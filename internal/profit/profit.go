// Package profit derives profitability views from persisted quotations and
// catalog cost data. Every function is pure and recomputes from scratch.
package profit

import (
	"cmp"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/quotedesk/internal/model"
)

const (
	// UncategorizedLabel is used for lines whose catalog item is missing or has no category.
	UncategorizedLabel = "Uncategorized"
	// DefaultMonths is the trailing window of the monthly trend.
	DefaultMonths = 6
	unknownClient = "Unknown"
)

var hundred = decimal.NewFromInt(100)

// Metrics holds revenue, cost and profit for a quotation or an aggregate.
type Metrics struct {
	Revenue      decimal.Decimal `json:"revenue"`
	Cost         decimal.Decimal `json:"cost"`
	GrossProfit  decimal.Decimal `json:"gross_profit"`
	ProfitMargin float64         `json:"profit_margin"`
}

// QuotationProfit is the profit of a single quotation.
type QuotationProfit struct {
	Quotation model.Quotation `json:"quotation"`
	Metrics
	HasCompleteCostData bool `json:"has_complete_cost_data"`
}

// OverallMetrics aggregates every accepted quotation.
type OverallMetrics struct {
	Metrics
	QuotationCount int `json:"quotation_count"`
}

type ClientProfit struct {
	ClientID       string          `json:"client_id"`
	ClientName     string          `json:"client_name"`
	TotalRevenue   decimal.Decimal `json:"total_revenue"`
	TotalCost      decimal.Decimal `json:"total_cost"`
	GrossProfit    decimal.Decimal `json:"gross_profit"`
	ProfitMargin   float64         `json:"profit_margin"`
	QuotationCount int             `json:"quotation_count"`
}

type CategoryProfit struct {
	Category     string          `json:"category"`
	Revenue      decimal.Decimal `json:"revenue"`
	Cost         decimal.Decimal `json:"cost"`
	GrossProfit  decimal.Decimal `json:"gross_profit"`
	ProfitMargin float64         `json:"profit_margin"`
	ItemCount    int             `json:"item_count"`
}

type MonthlyProfit struct {
	Month        string          `json:"month"`
	Year         int             `json:"year"`
	Revenue      decimal.Decimal `json:"revenue"`
	Cost         decimal.Decimal `json:"cost"`
	GrossProfit  decimal.Decimal `json:"gross_profit"`
	ProfitMargin float64         `json:"profit_margin"`
}

// Catalog indexes catalog items by id for cost and category lookups.
type Catalog map[string]model.Item

// NewCatalog builds a Catalog from a list of items.
func NewCatalog(items []model.Item) Catalog {
	c := make(Catalog, len(items))
	for _, it := range items {
		c[it.ID] = it
	}
	return c
}

// EffectiveCost returns the cost basis of a line: its own cost price when
// positive, else the catalog item's cost price when positive. ok is false
// when neither is available.
func (c Catalog) EffectiveCost(line model.LineItem) (cost decimal.Decimal, ok bool) {
	if line.CostPrice != nil && line.CostPrice.IsPositive() {
		return *line.CostPrice, true
	}
	if item, found := c[line.ItemID]; found && item.CostPrice != nil && item.CostPrice.IsPositive() {
		return *item.CostPrice, true
	}
	return decimal.Zero, false
}

// Margin returns profit / revenue × 100, or 0 when revenue is not positive.
func Margin(profit, revenue decimal.Decimal) float64 {
	if !revenue.IsPositive() {
		return 0
	}
	return profit.Div(revenue).Mul(hundred).InexactFloat64()
}

func newMetrics(revenue, cost decimal.Decimal) Metrics {
	profit := revenue.Sub(cost)
	return Metrics{
		Revenue:      revenue,
		Cost:         cost,
		GrossProfit:  profit,
		ProfitMargin: Margin(profit, revenue),
	}
}

// ForQuotation computes the profit of q. Revenue is the tax-inclusive total.
// Lines without any cost basis contribute zero cost and clear
// HasCompleteCostData.
func ForQuotation(q model.Quotation, catalog Catalog) QuotationProfit {
	cost := decimal.Zero
	complete := true
	for _, line := range q.LineItems {
		unitCost, ok := catalog.EffectiveCost(line)
		if !ok {
			complete = false
			continue
		}
		cost = cost.Add(unitCost.Mul(line.Quantity))
	}

	return QuotationProfit{
		Quotation:           q,
		Metrics:             newMetrics(q.Total, cost),
		HasCompleteCostData: complete,
	}
}

func accepted(quotes []model.Quotation) []model.Quotation {
	out := make([]model.Quotation, 0, len(quotes))
	for _, q := range quotes {
		if q.Status == model.StatusAccepted {
			out = append(out, q)
		}
	}
	return out
}

// Overall sums revenue and cost over accepted quotations.
func Overall(quotes []model.Quotation, catalog Catalog) OverallMetrics {
	revenue, cost := decimal.Zero, decimal.Zero
	count := 0
	for _, q := range accepted(quotes) {
		p := ForQuotation(q, catalog)
		revenue = revenue.Add(p.Revenue)
		cost = cost.Add(p.Cost)
		count++
	}
	return OverallMetrics{Metrics: newMetrics(revenue, cost), QuotationCount: count}
}

// ByClient groups accepted quotations by client, sorted by gross profit descending.
func ByClient(quotes []model.Quotation, catalog Catalog, clients []model.Client) []ClientProfit {
	names := make(map[string]string, len(clients))
	for _, c := range clients {
		names[c.ID] = c.Name
	}

	index := make(map[string]int)
	out := make([]ClientProfit, 0)
	for _, q := range accepted(quotes) {
		p := ForQuotation(q, catalog)

		i, ok := index[q.ClientID]
		if !ok {
			name := names[q.ClientID]
			if name == "" && q.Client != nil {
				name = q.Client.Name
			}
			if name == "" {
				name = unknownClient
			}
			out = append(out, ClientProfit{
				ClientID:     q.ClientID,
				ClientName:   name,
				TotalRevenue: decimal.Zero,
				TotalCost:    decimal.Zero,
				GrossProfit:  decimal.Zero,
			})
			i = len(out) - 1
			index[q.ClientID] = i
		}

		cp := &out[i]
		cp.TotalRevenue = cp.TotalRevenue.Add(p.Revenue)
		cp.TotalCost = cp.TotalCost.Add(p.Cost)
		cp.GrossProfit = cp.GrossProfit.Add(p.GrossProfit)
		cp.QuotationCount++
	}

	for i := range out {
		out[i].ProfitMargin = Margin(out[i].GrossProfit, out[i].TotalRevenue)
	}
	slices.SortStableFunc(out, func(a, b ClientProfit) int {
		return b.GrossProfit.Cmp(a.GrossProfit)
	})
	return out
}

// ByCategory explodes the lines of accepted quotations and attributes each
// one to its catalog item's category. Line revenue is pre-tax.
func ByCategory(quotes []model.Quotation, catalog Catalog) []CategoryProfit {
	index := make(map[string]int)
	out := make([]CategoryProfit, 0)
	for _, q := range accepted(quotes) {
		for _, line := range q.LineItems {
			category := UncategorizedLabel
			if item, ok := catalog[line.ItemID]; ok && item.Category != "" {
				category = item.Category
			}

			i, ok := index[category]
			if !ok {
				out = append(out, CategoryProfit{
					Category:    category,
					Revenue:     decimal.Zero,
					Cost:        decimal.Zero,
					GrossProfit: decimal.Zero,
				})
				i = len(out) - 1
				index[category] = i
			}

			revenue := line.UnitPrice.Mul(line.Quantity)
			unitCost, _ := catalog.EffectiveCost(line)
			cost := unitCost.Mul(line.Quantity)

			cp := &out[i]
			cp.Revenue = cp.Revenue.Add(revenue)
			cp.Cost = cp.Cost.Add(cost)
			cp.GrossProfit = cp.GrossProfit.Add(revenue.Sub(cost))
			cp.ItemCount++
		}
	}

	for i := range out {
		out[i].ProfitMargin = Margin(out[i].GrossProfit, out[i].Revenue)
	}
	slices.SortStableFunc(out, func(a, b CategoryProfit) int {
		return b.GrossProfit.Cmp(a.GrossProfit)
	})
	return out
}

// Monthly returns the trailing months calendar months ending with now's
// month, oldest first. Months without accepted quotations are zero-filled.
// A non-positive months uses DefaultMonths.
func Monthly(quotes []model.Quotation, catalog Catalog, now time.Time, months int) []MonthlyProfit {
	if months <= 0 {
		months = DefaultMonths
	}
	loc := now.Location()

	out := make([]MonthlyProfit, 0, months)
	for i := months - 1; i >= 0; i-- {
		start := time.Date(now.Year(), now.Month()-time.Month(i), 1, 0, 0, 0, 0, loc)

		revenue, cost := decimal.Zero, decimal.Zero
		for _, q := range accepted(quotes) {
			created := q.CreatedAt.In(loc)
			if created.Year() != start.Year() || created.Month() != start.Month() {
				continue
			}
			p := ForQuotation(q, catalog)
			revenue = revenue.Add(p.Revenue)
			cost = cost.Add(p.Cost)
		}

		m := newMetrics(revenue, cost)
		out = append(out, MonthlyProfit{
			Month:        start.Format("Jan"),
			Year:         start.Year(),
			Revenue:      m.Revenue,
			Cost:         m.Cost,
			GrossProfit:  m.GrossProfit,
			ProfitMargin: m.ProfitMargin,
		})
	}
	return out
}

// AlertLevel grades a low margin.
type AlertLevel string

const (
	AlertCritical AlertLevel = "critical"
	AlertWarning  AlertLevel = "warning"
	AlertLow      AlertLevel = "low"
)

// Thresholds are the upper bounds (exclusive, in percent) of each alert band.
type Thresholds struct {
	Critical float64 `json:"critical"`
	Warning  float64 `json:"warning"`
	Low      float64 `json:"low"`
}

var DefaultThresholds = Thresholds{Critical: 10, Warning: 20, Low: 30}

// Classify returns the alert level for margin, or "" when no alert applies.
func (t Thresholds) Classify(margin float64) AlertLevel {
	switch {
	case margin < t.Critical:
		return AlertCritical
	case margin < t.Warning:
		return AlertWarning
	case margin < t.Low:
		return AlertLow
	}
	return ""
}

type LowMarginAlert struct {
	Quotation    model.Quotation `json:"quotation"`
	ProfitMargin float64         `json:"profit_margin"`
	Revenue      decimal.Decimal `json:"revenue"`
	Level        AlertLevel      `json:"status"`
}

// LowMargin scans accepted and sent quotations with complete cost data and
// returns those under the thresholds, worst margin first.
func LowMargin(quotes []model.Quotation, catalog Catalog, t Thresholds) []LowMarginAlert {
	out := make([]LowMarginAlert, 0)
	for _, q := range quotes {
		if q.Status != model.StatusAccepted && q.Status != model.StatusSent {
			continue
		}
		p := ForQuotation(q, catalog)
		if !p.HasCompleteCostData {
			continue
		}
		level := t.Classify(p.ProfitMargin)
		if level == "" {
			continue
		}
		out = append(out, LowMarginAlert{
			Quotation:    q,
			ProfitMargin: p.ProfitMargin,
			Revenue:      p.Revenue,
			Level:        level,
		})
	}
	slices.SortStableFunc(out, func(a, b LowMarginAlert) int {
		return cmp.Compare(a.ProfitMargin, b.ProfitMargin)
	})
	return out
}

// Report bundles every analytics view for the dashboard.
type Report struct {
	Overall    OverallMetrics   `json:"overall"`
	Clients    []ClientProfit   `json:"clients"`
	Categories []CategoryProfit `json:"categories"`
	Monthly    []MonthlyProfit  `json:"monthly"`
	Alerts     []LowMarginAlert `json:"alerts"`
}

// Build computes the full report.
func Build(quotes []model.Quotation, items []model.Item, clients []model.Client, now time.Time, months int) Report {
	catalog := NewCatalog(items)
	return Report{
		Overall:    Overall(quotes, catalog),
		Clients:    ByClient(quotes, catalog, clients),
		Categories: ByCategory(quotes, catalog),
		Monthly:    Monthly(quotes, catalog, now, months),
		Alerts:     LowMargin(quotes, catalog, DefaultThresholds),
	}
}
