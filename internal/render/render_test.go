package render

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/quotedesk/internal/model"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestFormatINR(t *testing.T) {
	cases := map[string]string{
		"0":          "₹0.00",
		"295":        "₹295.00",
		"1234567.5":  "₹1,234,567.50",
		"10.005":     "₹10.01",
		"-42.1":      "-₹42.10",
	}
	for in, want := range cases {
		if got := FormatINR(d(in)); got != want {
			t.Fatalf("FormatINR(%s) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatAmountAndPlain(t *testing.T) {
	if got := FormatAmount(d("1250.5")); got != "1,250.50" {
		t.Fatalf("unexpected amount: %q", got)
	}
	if got := formatPlainINR(d("295")); got != "Rs. 295.00" {
		t.Fatalf("unexpected plain amount: %q", got)
	}
}

func TestQuotationPDF(t *testing.T) {
	q := model.Quotation{
		ID:              "q1",
		QuotationNumber: "ZEN-2025-0024",
		Client:          &model.Client{ID: "c1", Name: "Acme Industries", City: "Pune", TaxID: "27ABCDE1234F1Z5"},
		ProjectTitle:    "Control panel – phase 2",
		LineItems: []model.LineItem{
			{ItemID: "a", Name: "Cable tray", Description: "Perforated, hot-dip galvanised 300mm wide tray for the main run between panels", Unit: "m", Quantity: d("2"), UnitPrice: d("100"), Total: d("200")},
			{ItemID: "b", Name: "Junction box", Quantity: d("1"), UnitPrice: d("50"), Total: d("50")},
		},
		Subtotal:   d("250"),
		TaxRate:    d("18"),
		TaxAmount:  d("45"),
		Total:      d("295"),
		Status:     model.StatusSent,
		ValidUntil: "2025-04-30",
		Notes:      "Prices exclude civil work.",
		CreatedAt:  time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC),
	}

	var buf bytes.Buffer
	if err := NewRenderer(DefaultCompany).QuotationPDF(&buf, q); err != nil {
		t.Fatalf("render pdf: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Fatalf("expected a PDF document")
	}
	if buf.Len() < 1000 {
		t.Fatalf("document suspiciously small: %d bytes", buf.Len())
	}
}

func TestQuotationBytesWithoutClientOrLines(t *testing.T) {
	out, err := NewRenderer(Company{}).QuotationBytes(model.Quotation{ID: "q2", Status: model.StatusDraft})
	if err != nil {
		t.Fatalf("render pdf: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		t.Fatalf("expected a PDF document")
	}
}

func TestFilename(t *testing.T) {
	if got := Filename(model.Quotation{QuotationNumber: "ZEN-2025-0001"}); got != "Quotation_ZEN-2025-0001.pdf" {
		t.Fatalf("unexpected filename: %s", got)
	}
	if got := Filename(model.Quotation{ID: "abc"}); !strings.HasSuffix(got, "abc.pdf") {
		t.Fatalf("unexpected fallback filename: %s", got)
	}
}

func TestTermsAreComplete(t *testing.T) {
	if len(Terms) != 11 {
		t.Fatalf("expected 11 terms, got %d", len(Terms))
	}
	if Terms[0].Title != "Payment Terms" || Terms[len(Terms)-1].Title != "Return Policy" {
		t.Fatalf("unexpected term order")
	}
}
