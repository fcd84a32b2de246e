package export

import (
	"context"

	"github.com/Simplici0/quotedesk/internal/model"
)

// Renderer produces the document uploaded for a quotation.
type Renderer interface {
	QuotationBytes(q model.Quotation) ([]byte, error)
}

// Uploader stores one rendered document.
type Uploader interface {
	UploadPDF(ctx context.Context, name string, pdf []byte) (File, error)
}

// DocumentResult is the outcome for one quotation of a batch.
type DocumentResult struct {
	QuotationID     string `json:"quotation_id"`
	QuotationNumber string `json:"quotation_number"`
	File
	Error string `json:"error,omitempty"`
}

// Batch summarizes a document export.
type Batch struct {
	Results   []DocumentResult `json:"results"`
	Succeeded int              `json:"succeeded"`
	Failed    int              `json:"failed"`
}

// ExportDocuments renders and uploads each quotation in turn. A failure is
// recorded on that quotation's result and the batch carries on.
func ExportDocuments(ctx context.Context, up Uploader, r Renderer, quotes []model.Quotation, filename func(model.Quotation) string) Batch {
	b := Batch{Results: make([]DocumentResult, 0, len(quotes))}
	for _, q := range quotes {
		res := DocumentResult{QuotationID: q.ID, QuotationNumber: q.QuotationNumber}

		if err := ctx.Err(); err != nil {
			res.Error = err.Error()
			b.Failed++
			b.Results = append(b.Results, res)
			continue
		}

		f, err := upload(ctx, up, r, q, filename(q))
		if err != nil {
			res.Error = err.Error()
			b.Failed++
		} else {
			res.File = f
			b.Succeeded++
		}
		b.Results = append(b.Results, res)
	}
	return b
}

func upload(ctx context.Context, up Uploader, r Renderer, q model.Quotation, name string) (File, error) {
	pdf, err := r.QuotationBytes(q)
	if err != nil {
		return File{}, err
	}
	return up.UploadPDF(ctx, name, pdf)
}
