package quotes

import (
	"context"
	"strings"

	"github.com/Simplici0/quotedesk/internal/model"
	"github.com/Simplici0/quotedesk/internal/pricing"
)

// SaveTemplate validates t, fills catalog prices and stores it. A blank id
// creates a new template.
func (s *Service) SaveTemplate(ctx context.Context, t model.Template) (model.Template, error) {
	t.Name = strings.TrimSpace(t.Name)
	if t.Name == "" {
		return model.Template{}, invalid("name", "is required")
	}
	if err := validateTaxRate(t.TaxRate); err != nil {
		return model.Template{}, err
	}

	lines, err := s.fillLines(ctx, t.LineItems)
	if err != nil {
		return model.Template{}, err
	}
	t.LineItems = pricing.Calculate(lines, t.TaxRate).Lines

	if t.ID == "" {
		return s.repo.CreateTemplate(ctx, t)
	}
	return s.repo.UpdateTemplate(ctx, t)
}
