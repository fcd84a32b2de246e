package quotes

import (
	"github.com/shopspring/decimal"

	"github.com/Simplici0/quotedesk/internal/model"
)

// Summary is the dashboard roll-up of all quotations.
type Summary struct {
	Total          int                  `json:"total"`
	ByStatus       map[model.Status]int `json:"by_status"`
	PipelineValue  decimal.Decimal      `json:"pipeline_value"`
	AcceptedValue  decimal.Decimal      `json:"accepted_value"`
	AcceptanceRate float64              `json:"acceptance_rate"`
	Recent         []model.Quotation    `json:"recent"`
}

// Summarize counts quotations per status and sums sent and accepted totals.
// quotes must be newest first; the first recent entries are kept.
func Summarize(quotes []model.Quotation, recent int) Summary {
	s := Summary{
		Total:         len(quotes),
		ByStatus:      make(map[model.Status]int, len(model.Statuses)),
		PipelineValue: decimal.Zero,
		AcceptedValue: decimal.Zero,
	}
	for _, st := range model.Statuses {
		s.ByStatus[st] = 0
	}

	for _, q := range quotes {
		s.ByStatus[q.Status]++
		switch q.Status {
		case model.StatusSent:
			s.PipelineValue = s.PipelineValue.Add(q.Total)
		case model.StatusAccepted:
			s.AcceptedValue = s.AcceptedValue.Add(q.Total)
		}
	}

	decided := s.ByStatus[model.StatusAccepted] + s.ByStatus[model.StatusRejected]
	if decided > 0 {
		s.AcceptanceRate = float64(s.ByStatus[model.StatusAccepted]) / float64(decided) * 100
	}

	if recent > len(quotes) {
		recent = len(quotes)
	}
	s.Recent = quotes[:recent]
	return s
}
