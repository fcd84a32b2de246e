// Package versioning compares quotation version snapshots and prepares
// restores. Storage of versions lives in the store package.
package versioning

import (
	"github.com/shopspring/decimal"

	"github.com/Simplici0/quotedesk/internal/model"
)

// LineChange classifies one item_id across two snapshots.
type LineChange string

const (
	LineAdded     LineChange = "added"
	LineRemoved   LineChange = "removed"
	LineModified  LineChange = "modified"
	LineUnchanged LineChange = "unchanged"
)

// FieldChange describes one scalar field of two snapshots.
type FieldChange struct {
	Field   string           `json:"field"`
	Older   string           `json:"older"`
	Newer   string           `json:"newer"`
	Changed bool             `json:"changed"`
	Delta   *decimal.Decimal `json:"delta,omitempty"`
}

// LineDiff describes one item_id across two snapshots.
type LineDiff struct {
	ItemID string          `json:"item_id"`
	Name   string          `json:"name"`
	Older  *model.LineItem `json:"older,omitempty"`
	Newer  *model.LineItem `json:"newer,omitempty"`
	Change LineChange      `json:"change"`
}

// Comparison is the field-by-field diff of two versions.
type Comparison struct {
	Older  model.QuotationVersion `json:"older"`
	Newer  model.QuotationVersion `json:"newer"`
	Fields []FieldChange          `json:"fields"`
	Lines  []LineDiff             `json:"lines"`
}

// Changed returns only the fields whose values differ.
func (c Comparison) Changed() []FieldChange {
	out := make([]FieldChange, 0, len(c.Fields))
	for _, f := range c.Fields {
		if f.Changed {
			out = append(out, f)
		}
	}
	return out
}

// Count returns how many lines carry the given classification.
func (c Comparison) Count(change LineChange) int {
	n := 0
	for _, l := range c.Lines {
		if l.Change == change {
			n++
		}
	}
	return n
}

// Compare diffs two versions. Which side is older is decided by the caller;
// Compare does not look at version numbers.
func Compare(older, newer model.QuotationVersion) Comparison {
	return Comparison{
		Older:  older,
		Newer:  newer,
		Fields: compareFields(older.Data, newer.Data),
		Lines:  CompareLines(older.Data.LineItems, newer.Data.LineItems),
	}
}

func compareFields(a, b model.QuotationData) []FieldChange {
	return []FieldChange{
		textField("status", string(a.Status), string(b.Status)),
		textField("client_id", a.ClientID, b.ClientID),
		textField("project_title", a.ProjectTitle, b.ProjectTitle),
		textField("project_description", a.ProjectDescription, b.ProjectDescription),
		amountField("subtotal", a.Subtotal, b.Subtotal),
		amountField("tax_rate", a.TaxRate, b.TaxRate),
		amountField("tax_amount", a.TaxAmount, b.TaxAmount),
		amountField("total", a.Total, b.Total),
		textField("valid_until", a.ValidUntil, b.ValidUntil),
		textField("notes", a.Notes, b.Notes),
	}
}

func textField(name, a, b string) FieldChange {
	return FieldChange{Field: name, Older: a, Newer: b, Changed: a != b}
}

func amountField(name string, a, b decimal.Decimal) FieldChange {
	f := FieldChange{Field: name, Older: a.String(), Newer: b.String(), Changed: !a.Equal(b)}
	if f.Changed {
		delta := b.Sub(a)
		f.Delta = &delta
	}
	return f
}

// CompareLines classifies the union of item ids of both line lists, in order
// of first appearance (older list first). When an item id repeats within one
// list, its first line is the one compared.
func CompareLines(older, newer []model.LineItem) []LineDiff {
	ids := make([]string, 0, len(older)+len(newer))
	seen := make(map[string]bool)
	for _, list := range [][]model.LineItem{older, newer} {
		for _, l := range list {
			if !seen[l.ItemID] {
				seen[l.ItemID] = true
				ids = append(ids, l.ItemID)
			}
		}
	}

	out := make([]LineDiff, 0, len(ids))
	for _, id := range ids {
		a := findLine(older, id)
		b := findLine(newer, id)

		diff := LineDiff{ItemID: id, Older: a, Newer: b, Name: lineName(a, b)}
		switch {
		case a == nil:
			diff.Change = LineAdded
		case b == nil:
			diff.Change = LineRemoved
		case !a.Quantity.Equal(b.Quantity) || !a.UnitPrice.Equal(b.UnitPrice):
			diff.Change = LineModified
		default:
			diff.Change = LineUnchanged
		}
		out = append(out, diff)
	}
	return out
}

func findLine(lines []model.LineItem, id string) *model.LineItem {
	for i := range lines {
		if lines[i].ItemID == id {
			l := lines[i]
			return &l
		}
	}
	return nil
}

func lineName(a, b *model.LineItem) string {
	for _, l := range []*model.LineItem{b, a} {
		if l != nil && l.Name != "" {
			return l.Name
		}
	}
	for _, l := range []*model.LineItem{b, a} {
		if l != nil && l.Description != "" {
			return l.Description
		}
	}
	return "Unknown Item"
}

// DefaultPair picks the two most recent versions from a newest-first
// history. ok is false when fewer than two versions exist.
func DefaultPair(history []model.QuotationVersion) (older, newer model.QuotationVersion, ok bool) {
	if len(history) < 2 {
		return model.QuotationVersion{}, model.QuotationVersion{}, false
	}
	return history[1], history[0], true
}

// IsCurrent reports whether v is the newest entry of a newest-first history.
// The current version cannot be restored.
func IsCurrent(history []model.QuotationVersion, v model.QuotationVersion) bool {
	return len(history) > 0 && history[0].ID == v.ID
}

// ApplySnapshot copies the restorable fields of d onto q. Identity, number
// and timestamps of q are kept.
func ApplySnapshot(q model.Quotation, d model.QuotationData) model.Quotation {
	lines := make([]model.LineItem, len(d.LineItems))
	copy(lines, d.LineItems)

	q.ClientID = d.ClientID
	q.ProjectTitle = d.ProjectTitle
	q.ProjectDescription = d.ProjectDescription
	q.LineItems = lines
	q.Subtotal = d.Subtotal
	q.TaxRate = d.TaxRate
	q.TaxAmount = d.TaxAmount
	q.Total = d.Total
	q.Status = d.Status
	q.ValidUntil = d.ValidUntil
	q.Notes = d.Notes
	if q.Client != nil && q.Client.ID != d.ClientID {
		q.Client = nil
	}
	return q
}
