// Package model holds the records shared by the quotation engines and the
// persistence layer.
package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Status is the sales lifecycle state of a quotation. Any status may follow
// any other.
type Status string

const (
	StatusDraft    Status = "draft"
	StatusSent     Status = "sent"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

// Statuses lists every valid status in lifecycle order.
var Statuses = []Status{StatusDraft, StatusSent, StatusAccepted, StatusRejected}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusAccepted, StatusRejected:
		return true
	}
	return false
}

// ParseStatus converts raw input into a Status. An empty value yields draft.
func ParseStatus(raw string) (Status, error) {
	if raw == "" {
		return StatusDraft, nil
	}
	s := Status(raw)
	if !s.Valid() {
		return "", fmt.Errorf("unknown status %q", raw)
	}
	return s, nil
}

// LineItem is one catalog item placed on a quotation or template. UnitPrice
// is a snapshot of the catalog price taken when the line was edited.
type LineItem struct {
	ItemID      string           `json:"item_id"`
	Name        string           `json:"name,omitempty"`
	Description string           `json:"description,omitempty"`
	Notes       string           `json:"notes,omitempty"`
	Unit        string           `json:"unit,omitempty"`
	Quantity    decimal.Decimal  `json:"quantity"`
	UnitPrice   decimal.Decimal  `json:"unit_price"`
	CostPrice   *decimal.Decimal `json:"cost_price,omitempty"`
	Total       decimal.Decimal  `json:"total"`
}

// Client is a customer quotations are addressed to.
type Client struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	City      string    `json:"city,omitempty"`
	State     string    `json:"state,omitempty"`
	ZipCode   string    `json:"zip_code,omitempty"`
	TaxID     string    `json:"tax_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Item is a sellable catalog entry.
type Item struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Unit        string           `json:"unit"`
	UnitPrice   decimal.Decimal  `json:"unit_price"`
	CostPrice   *decimal.Decimal `json:"cost_price,omitempty"`
	Category    string           `json:"category,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}

// Quotation is a priced proposal. Subtotal, TaxAmount and Total are derived
// from LineItems and TaxRate and must never be stored stale.
type Quotation struct {
	ID                 string          `json:"id"`
	QuotationNumber    string          `json:"quotation_number"`
	ClientID           string          `json:"client_id"`
	Client             *Client         `json:"client,omitempty"`
	ProjectTitle       string          `json:"project_title"`
	ProjectDescription string          `json:"project_description,omitempty"`
	LineItems          []LineItem      `json:"line_items"`
	Subtotal           decimal.Decimal `json:"subtotal"`
	TaxRate            decimal.Decimal `json:"tax_rate"`
	TaxAmount          decimal.Decimal `json:"tax_amount"`
	Total              decimal.Decimal `json:"total"`
	Status             Status          `json:"status"`
	ValidUntil         string          `json:"valid_until,omitempty"` // YYYY-MM-DD
	Notes              string          `json:"notes,omitempty"`
	CreatedBy          string          `json:"created_by,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// QuotationData is the self-contained snapshot stored with every version.
type QuotationData struct {
	QuotationNumber    string          `json:"quotation_number"`
	ClientID           string          `json:"client_id"`
	ProjectTitle       string          `json:"project_title"`
	ProjectDescription string          `json:"project_description,omitempty"`
	LineItems          []LineItem      `json:"line_items"`
	Subtotal           decimal.Decimal `json:"subtotal"`
	TaxRate            decimal.Decimal `json:"tax_rate"`
	TaxAmount          decimal.Decimal `json:"tax_amount"`
	Total              decimal.Decimal `json:"total"`
	Status             Status          `json:"status"`
	ValidUntil         string          `json:"valid_until,omitempty"`
	Notes              string          `json:"notes,omitempty"`
}

// Snapshot copies the quotation's current field set.
func (q Quotation) Snapshot() QuotationData {
	lines := make([]LineItem, len(q.LineItems))
	copy(lines, q.LineItems)
	return QuotationData{
		QuotationNumber:    q.QuotationNumber,
		ClientID:           q.ClientID,
		ProjectTitle:       q.ProjectTitle,
		ProjectDescription: q.ProjectDescription,
		LineItems:          lines,
		Subtotal:           q.Subtotal,
		TaxRate:            q.TaxRate,
		TaxAmount:          q.TaxAmount,
		Total:              q.Total,
		Status:             q.Status,
		ValidUntil:         q.ValidUntil,
		Notes:              q.Notes,
	}
}

// QuotationVersion is an append-only history entry of a quotation.
type QuotationVersion struct {
	ID            string        `json:"id"`
	QuotationID   string        `json:"quotation_id"`
	VersionNumber int           `json:"version_number"`
	Data          QuotationData `json:"quotation_data"`
	Notes         string        `json:"notes,omitempty"`
	CreatedBy     string        `json:"created_by,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
}

// Template is a reusable seed for new quotations.
type Template struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	LineItems   []LineItem      `json:"line_items"`
	Notes       string          `json:"notes,omitempty"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type GoalType string

const (
	GoalRevenue        GoalType = "revenue"
	GoalConversionRate GoalType = "conversion_rate"
)

type PeriodType string

const (
	PeriodMonthly   PeriodType = "monthly"
	PeriodQuarterly PeriodType = "quarterly"
	PeriodYearly    PeriodType = "yearly"
)

// Goal is a revenue or conversion target over a period. PeriodType is
// descriptive only.
type Goal struct {
	ID          string          `json:"id"`
	GoalType    GoalType        `json:"goal_type"`
	TargetValue decimal.Decimal `json:"target_value"`
	PeriodType  PeriodType      `json:"period_type"`
	PeriodStart time.Time       `json:"period_start"`
	PeriodEnd   time.Time       `json:"period_end"`
	Description string          `json:"description,omitempty"`
	IsActive    bool            `json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// User is an account able to sign in.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
