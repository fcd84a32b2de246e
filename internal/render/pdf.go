// Package render turns quotations into customer-facing PDF documents.
package render

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"

	"github.com/Simplici0/quotedesk/internal/model"
)

// Company is the issuer printed in the document header.
type Company struct {
	Name    string
	Tagline string
	Address string
	Phone   string
	Email   string
	GSTIN   string
}

var DefaultCompany = Company{
	Name:    "Zen Engineering Solutions",
	Tagline: "Industrial Automation & Safety Solutions",
	Address: "Flat No. 001, Shree Ram Siddhi Apartment, 100 Feet Rd, Near Chetna Petrol Pump, Sangli - 416416, Maharashtra, India",
	Phone:   "9673727173",
	Email:   "darshan@zenengineerings.com",
	GSTIN:   "27AACFZ8216H1ZX",
}

// Term is one numbered commercial condition.
type Term struct {
	Title string
	Text  string
}

// Terms are printed on every quotation in this order.
var Terms = []Term{
	{"Payment Terms", "1) 50% advance along with PO. 2) 30% before material dispatch. 3) 15% against running bill. 4) 5% after completion of job within 7 working days."},
	{"Delivery Time", "As discussed in the proposal or within mutually agreed timelines from receipt of confirmed purchase order and advance payment."},
	{"Transportation", "Inclusive unless otherwise specified in the quotation."},
	{"Packing", "Standard packing included."},
	{"Unloading / Handling", "In client scope unless specifically mentioned."},
	{"Price Validity", "30 days from the date of quotation unless revised in writing."},
	{"Supply of Material", "As per standard manufacturer packing and specifications."},
	{"Jurisdiction", "All disputes subject to Sangli jurisdiction."},
	{"Statutory Variations", "Any change in duties / taxes / levies or new impositions by Central / State authorities will be to client's account."},
	{"Scaffolding / Labour Accommodation", "In client scope, wherever required."},
	{"Return Policy", "Goods once sold will not be taken back."},
}

const (
	margin     = 12.0
	lineHeight = 5.0
	font       = "Helvetica"
)

// Column widths of the line table, summing to the A4 content width.
var columns = []struct {
	title string
	width float64
	align string
}{
	{"Sr.", 10, "C"},
	{"Description", 78, "L"},
	{"Unit", 16, "C"},
	{"Qty", 16, "C"},
	{"Rate", 28, "R"},
	{"Amount", 38, "R"},
}

type Renderer struct {
	Company Company
}

func NewRenderer(c Company) *Renderer {
	if c.Name == "" {
		c.Name = DefaultCompany.Name
	}
	return &Renderer{Company: c}
}

// QuotationPDF writes q as a PDF document to w.
func (r *Renderer) QuotationPDF(w io.Writer, q model.Quotation) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, margin)
	pdf.SetTitle(q.QuotationNumber, true)
	pdf.SetCreator(r.Company.Name, true)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")

	r.header(pdf, tr)
	details(pdf, tr, q)
	lineTable(pdf, tr, q)
	totals(pdf, q)
	terms(pdf, tr, q)
	r.footer(pdf, tr)

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write quotation pdf: %w", err)
	}
	return nil
}

// QuotationBytes renders q into memory.
func (r *Renderer) QuotationBytes(q model.Quotation) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.QuotationPDF(&buf, q); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Filename is the download name of q's document.
func Filename(q model.Quotation) string {
	name := q.QuotationNumber
	if name == "" {
		name = q.ID
	}
	return "Quotation_" + name + ".pdf"
}

func (r *Renderer) header(pdf *gofpdf.Fpdf, tr func(string) string) {
	pdf.SetFont(font, "B", 16)
	pdf.CellFormat(0, 8, tr(r.Company.Name), "", 1, "L", false, 0, "")

	pdf.SetFont(font, "I", 9)
	if r.Company.Tagline != "" {
		pdf.CellFormat(0, lineHeight, tr(r.Company.Tagline), "", 1, "L", false, 0, "")
	}
	pdf.SetFont(font, "", 8)
	if r.Company.Address != "" {
		pdf.MultiCell(0, 4, tr(r.Company.Address), "", "L", false)
	}
	contact := []string{}
	if r.Company.Phone != "" {
		contact = append(contact, "Contact No: "+r.Company.Phone)
	}
	if r.Company.Email != "" {
		contact = append(contact, "Email: "+r.Company.Email)
	}
	if len(contact) > 0 {
		pdf.CellFormat(0, 4, tr(strings.Join(contact, " | ")), "", 1, "L", false, 0, "")
	}
	if r.Company.GSTIN != "" {
		pdf.CellFormat(0, 4, "GSTIN: "+r.Company.GSTIN, "", 1, "L", false, 0, "")
	}

	pdf.Ln(3)
	pdf.SetFillColor(30, 41, 59)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont(font, "B", 12)
	pdf.CellFormat(0, 8, "QUOTATION", "", 1, "C", true, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(3)
}

func details(pdf *gofpdf.Fpdf, tr func(string) string, q model.Quotation) {
	client := model.Client{}
	if q.Client != nil {
		client = *q.Client
	}

	left := [][2]string{
		{"To", client.Name},
		{"Address", joinNonEmpty(", ", client.Address, client.City, client.State, client.ZipCode)},
		{"Phone", client.Phone},
		{"Email", client.Email},
		{"GSTIN", client.TaxID},
	}
	right := [][2]string{
		{"Quotation No", q.QuotationNumber},
		{"Date", formatDate(q.CreatedAt)},
		{"Valid Until", formatValidUntil(q.ValidUntil)},
		{"Status", strings.ToUpper(string(q.Status))},
	}

	pdf.SetFont(font, "", 9)
	startY := pdf.GetY()
	for i := 0; i < len(left) || i < len(right); i++ {
		y := startY + float64(i)*lineHeight
		if i < len(left) && left[i][1] != "" {
			pdf.SetXY(margin, y)
			pdf.CellFormat(24, lineHeight, left[i][0], "", 0, "L", false, 0, "")
			pdf.CellFormat(86, lineHeight, tr(": "+left[i][1]), "", 0, "L", false, 0, "")
		}
		if i < len(right) && right[i][1] != "" {
			pdf.SetXY(margin+116, y)
			pdf.CellFormat(26, lineHeight, right[i][0], "", 0, "L", false, 0, "")
			pdf.CellFormat(44, lineHeight, tr(": "+right[i][1]), "", 0, "L", false, 0, "")
		}
	}
	rows := len(left)
	if len(right) > rows {
		rows = len(right)
	}
	pdf.SetXY(margin, startY+float64(rows)*lineHeight+2)

	if q.ProjectTitle != "" {
		pdf.SetFont(font, "B", 10)
		pdf.MultiCell(0, lineHeight, tr("Subject: "+q.ProjectTitle), "", "L", false)
	}
	if q.ProjectDescription != "" {
		pdf.SetFont(font, "", 9)
		pdf.MultiCell(0, 4.5, tr(q.ProjectDescription), "", "L", false)
	}
	pdf.Ln(2)
}

func lineTable(pdf *gofpdf.Fpdf, tr func(string) string, q model.Quotation) {
	pdf.SetFont(font, "B", 9)
	pdf.SetFillColor(226, 232, 240)
	for _, c := range columns {
		pdf.CellFormat(c.width, 7, c.title, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont(font, "", 9)
	for i, line := range q.LineItems {
		desc := line.Name
		if line.Description != "" {
			desc = joinNonEmpty(" - ", line.Name, line.Description)
		}
		if desc == "" {
			desc = line.ItemID
		}
		unit := line.Unit
		if unit == "" {
			unit = "Nos"
		}

		descLines := pdf.SplitLines([]byte(tr(desc)), columns[1].width-2)
		h := float64(len(descLines)) * lineHeight
		if h < 7 {
			h = 7
		}
		_, pageH := pdf.GetPageSize()
		if pdf.GetY()+h > pageH-margin {
			pdf.AddPage()
		}

		x, y := pdf.GetXY()
		pdf.CellFormat(columns[0].width, h, fmt.Sprint(i+1), "1", 0, "C", false, 0, "")
		pdf.Rect(x+columns[0].width, y, columns[1].width, h, "D")
		for j, dl := range descLines {
			pdf.SetXY(x+columns[0].width+1, y+float64(j)*lineHeight+1)
			pdf.CellFormat(columns[1].width-2, lineHeight, string(dl), "", 0, "L", false, 0, "")
		}
		pdf.SetXY(x+columns[0].width+columns[1].width, y)
		pdf.CellFormat(columns[2].width, h, tr(unit), "1", 0, "C", false, 0, "")
		pdf.CellFormat(columns[3].width, h, line.Quantity.String(), "1", 0, "C", false, 0, "")
		pdf.CellFormat(columns[4].width, h, FormatAmount(line.UnitPrice), "1", 0, "R", false, 0, "")
		pdf.CellFormat(columns[5].width, h, FormatAmount(line.Total), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(2)
}

func totals(pdf *gofpdf.Fpdf, q model.Quotation) {
	const labelW, valueW = 44.0, 38.0
	x := margin + 186 - labelW - valueW

	row := func(label, value string, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont(font, style, 9)
		pdf.SetX(x)
		pdf.CellFormat(labelW, 6, label, "1", 0, "L", bold, 0, "")
		pdf.CellFormat(valueW, 6, value, "1", 1, "R", bold, 0, "")
	}

	row("Subtotal", formatPlainINR(q.Subtotal), false)
	row(fmt.Sprintf("Tax (%s%%)", q.TaxRate.String()), formatPlainINR(q.TaxAmount), false)
	pdf.SetFillColor(226, 232, 240)
	row("Grand Total", formatPlainINR(q.Total), true)
	pdf.Ln(4)
}

func terms(pdf *gofpdf.Fpdf, tr func(string) string, q model.Quotation) {
	pdf.SetFont(font, "B", 10)
	pdf.CellFormat(0, 6, "TERMS & CONDITIONS", "", 1, "L", false, 0, "")

	pdf.SetFont(font, "", 8)
	for i, t := range Terms {
		pdf.MultiCell(0, 4, tr(fmt.Sprintf("%d. %s: %s", i+1, t.Title, t.Text)), "", "L", false)
	}

	if q.Notes != "" {
		pdf.Ln(2)
		pdf.SetFont(font, "B", 9)
		pdf.CellFormat(0, 5, "Special Notes:", "", 1, "L", false, 0, "")
		pdf.SetFont(font, "", 8)
		pdf.MultiCell(0, 4, tr(q.Notes), "", "L", false)
	}
	pdf.Ln(4)
}

func (r *Renderer) footer(pdf *gofpdf.Fpdf, tr func(string) string) {
	pdf.SetFont(font, "", 8)
	pdf.CellFormat(0, 4, "Thank you for the opportunity to submit this quotation.", "", 1, "L", false, 0, "")
	pdf.MultiCell(0, 4, "Kindly sign and return a copy of this document along with your purchase order as acceptance of the above terms.", "", "L", false)
	pdf.Ln(8)

	pdf.SetFont(font, "B", 9)
	pdf.CellFormat(0, 5, tr("For "+r.Company.Name), "", 1, "R", false, 0, "")
	pdf.Ln(10)
	pdf.SetFont(font, "", 8)
	pdf.CellFormat(0, 4, "Authorised Signatory", "", 1, "R", false, 0, "")
}

func joinNonEmpty(sep string, parts ...string) string {
	var kept []string
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02/01/2006")
}

func formatValidUntil(raw string) string {
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return raw
	}
	return formatDate(t)
}
