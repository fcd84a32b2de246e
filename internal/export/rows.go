// Package export publishes quotations as spreadsheets and documents.
package export

import (
	"time"

	"github.com/Simplici0/quotedesk/internal/model"
)

// SheetName is the single worksheet every export writes to.
const SheetName = "Quotations"

var Headers = []string{
	"Quotation Number",
	"Client Name",
	"Project Title",
	"Status",
	"Subtotal (₹)",
	"Tax Rate (%)",
	"Tax Amount (₹)",
	"Total (₹)",
	"Valid Until",
	"Created At",
}

// Row flattens q into cells aligned with Headers.
func Row(q model.Quotation) []any {
	client := ""
	if q.Client != nil {
		client = q.Client.Name
	}
	return []any{
		q.QuotationNumber,
		client,
		q.ProjectTitle,
		string(q.Status),
		q.Subtotal.InexactFloat64(),
		q.TaxRate.InexactFloat64(),
		q.TaxAmount.InexactFloat64(),
		q.Total.InexactFloat64(),
		displayDate(q.ValidUntil),
		q.CreatedAt.Format("02/01/2006"),
	}
}

// Table returns the header row followed by one row per quotation.
func Table(quotes []model.Quotation) [][]any {
	header := make([]any, len(Headers))
	for i, h := range Headers {
		header[i] = h
	}

	out := make([][]any, 0, len(quotes)+1)
	out = append(out, header)
	for _, q := range quotes {
		out = append(out, Row(q))
	}
	return out
}

func displayDate(raw string) string {
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return raw
	}
	return t.Format("02/01/2006")
}
