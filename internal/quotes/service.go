// Package quotes orchestrates quotation edits: validation, catalog fill,
// pricing and versioned persistence.
package quotes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/quotedesk/internal/identity"
	"github.com/Simplici0/quotedesk/internal/model"
	"github.com/Simplici0/quotedesk/internal/pricing"
	"github.com/Simplici0/quotedesk/internal/store"
)

const dateLayout = "2006-01-02"

// Repository is the persistence the service needs.
type Repository interface {
	GetQuotation(ctx context.Context, id string) (model.Quotation, error)
	CreateQuotation(ctx context.Context, q model.Quotation, createdBy string) (model.Quotation, model.QuotationVersion, error)
	UpdateQuotation(ctx context.Context, q model.Quotation, note, updatedBy string) (model.Quotation, model.QuotationVersion, error)
	DeleteQuotation(ctx context.Context, id string) error
	ListVersions(ctx context.Context, quotationID string) ([]model.QuotationVersion, error)
	RestoreVersion(ctx context.Context, quotationID, versionID, by string) (model.Quotation, model.QuotationVersion, error)
	GetClient(ctx context.Context, id string) (model.Client, error)
	ListItems(ctx context.Context) ([]model.Item, error)
	GetTemplate(ctx context.Context, id string) (model.Template, error)
	CreateTemplate(ctx context.Context, t model.Template) (model.Template, error)
	UpdateTemplate(ctx context.Context, t model.Template) (model.Template, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Input is the editable part of a quotation.
type Input struct {
	ClientID           string           `json:"client_id"`
	ProjectTitle       string           `json:"project_title"`
	ProjectDescription string           `json:"project_description"`
	LineItems          []model.LineItem `json:"line_items"`
	TaxRate            decimal.Decimal  `json:"tax_rate"`
	Status             string           `json:"status"`
	ValidUntil         string           `json:"valid_until"`
	Notes              string           `json:"notes"`
	// VersionNote labels the snapshot this edit produces.
	VersionNote string `json:"version_note"`
}

// Create validates in, prices it and stores it as version 1.
func (s *Service) Create(ctx context.Context, in Input) (model.Quotation, error) {
	q, err := s.build(ctx, model.Quotation{}, in)
	if err != nil {
		return model.Quotation{}, err
	}

	out, _, err := s.repo.CreateQuotation(ctx, q, identity.ID(ctx))
	if err != nil {
		return model.Quotation{}, fmt.Errorf("create quotation: %w", err)
	}
	return out, nil
}

// Update replaces the editable fields of quotation id and snapshots the
// result as a new version.
func (s *Service) Update(ctx context.Context, id string, in Input) (model.Quotation, error) {
	existing, err := s.repo.GetQuotation(ctx, id)
	if err != nil {
		return model.Quotation{}, err
	}

	q, err := s.build(ctx, existing, in)
	if err != nil {
		return model.Quotation{}, err
	}

	out, _, err := s.repo.UpdateQuotation(ctx, q, strings.TrimSpace(in.VersionNote), identity.ID(ctx))
	if err != nil {
		return model.Quotation{}, fmt.Errorf("update quotation: %w", err)
	}
	return out, nil
}

// SetStatus moves a quotation to status through the normal update path.
func (s *Service) SetStatus(ctx context.Context, id, status string) (model.Quotation, error) {
	existing, err := s.repo.GetQuotation(ctx, id)
	if err != nil {
		return model.Quotation{}, err
	}
	st, err := model.ParseStatus(status)
	if err != nil || status == "" {
		return model.Quotation{}, invalid("status", "must be one of draft, sent, accepted, rejected")
	}

	existing.Status = st
	pricing.Apply(&existing)
	out, _, err := s.repo.UpdateQuotation(ctx, existing, "Status changed to "+string(st), identity.ID(ctx))
	if err != nil {
		return model.Quotation{}, fmt.Errorf("update quotation status: %w", err)
	}
	return out, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.DeleteQuotation(ctx, id)
}

// FromTemplate starts a draft quotation from a template's lines, tax rate
// and notes. Blank fields of in fall back to the template.
func (s *Service) FromTemplate(ctx context.Context, templateID string, in Input) (model.Quotation, error) {
	tpl, err := s.repo.GetTemplate(ctx, templateID)
	if err != nil {
		return model.Quotation{}, err
	}

	if strings.TrimSpace(in.ProjectTitle) == "" {
		in.ProjectTitle = tpl.Name
	}
	if in.ProjectDescription == "" {
		in.ProjectDescription = tpl.Description
	}
	if len(in.LineItems) == 0 {
		in.LineItems = tpl.LineItems
	}
	if in.TaxRate.IsZero() {
		in.TaxRate = tpl.TaxRate
	}
	if in.Notes == "" {
		in.Notes = tpl.Notes
	}
	in.Status = string(model.StatusDraft)
	return s.Create(ctx, in)
}

// build validates in and applies it on top of base.
func (s *Service) build(ctx context.Context, base model.Quotation, in Input) (model.Quotation, error) {
	title := strings.TrimSpace(in.ProjectTitle)
	if title == "" {
		return model.Quotation{}, invalid("project_title", "is required")
	}
	if err := validateTaxRate(in.TaxRate); err != nil {
		return model.Quotation{}, err
	}

	status, err := model.ParseStatus(in.Status)
	if err != nil {
		return model.Quotation{}, invalid("status", "must be one of draft, sent, accepted, rejected")
	}
	if in.Status == "" && base.Status != "" {
		status = base.Status
	}

	validUntil := strings.TrimSpace(in.ValidUntil)
	if validUntil != "" {
		if _, err := time.Parse(dateLayout, validUntil); err != nil {
			return model.Quotation{}, invalid("valid_until", "must be a date formatted YYYY-MM-DD")
		}
	}

	clientID := strings.TrimSpace(in.ClientID)
	if clientID == "" {
		return model.Quotation{}, invalid("client_id", "is required")
	}
	if _, err := s.repo.GetClient(ctx, clientID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return model.Quotation{}, invalid("client_id", "unknown client")
		}
		return model.Quotation{}, fmt.Errorf("load client: %w", err)
	}

	lines, err := s.fillLines(ctx, in.LineItems)
	if err != nil {
		return model.Quotation{}, err
	}

	q := base
	q.ClientID = clientID
	if base.Client != nil && base.Client.ID != clientID {
		q.Client = nil
	}
	q.ProjectTitle = title
	q.ProjectDescription = strings.TrimSpace(in.ProjectDescription)
	q.LineItems = lines
	q.TaxRate = in.TaxRate
	q.Status = status
	q.ValidUntil = validUntil
	q.Notes = strings.TrimSpace(in.Notes)
	pricing.Apply(&q)
	return q, nil
}

// fillLines validates lines against the catalog. Every line must reference a
// known item; lines that carry no price take the item's current data.
func (s *Service) fillLines(ctx context.Context, lines []model.LineItem) ([]model.LineItem, error) {
	out := make([]model.LineItem, 0, len(lines))
	if len(lines) == 0 {
		return out, nil
	}

	items, err := s.repo.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	catalog := make(map[string]model.Item, len(items))
	for _, it := range items {
		catalog[it.ID] = it
	}

	for i, line := range lines {
		field := fmt.Sprintf("line_items[%d]", i)
		line.ItemID = strings.TrimSpace(line.ItemID)
		if line.ItemID == "" {
			return nil, invalid(field+".item_id", "is required")
		}
		it, ok := catalog[line.ItemID]
		if !ok {
			return nil, invalid(field+".item_id", "unknown item")
		}
		if !line.Quantity.IsPositive() {
			return nil, invalid(field+".quantity", "must be greater than zero")
		}
		if line.UnitPrice.IsNegative() {
			return nil, invalid(field+".unit_price", "must not be negative")
		}

		if line.UnitPrice.IsZero() {
			line = pricing.SelectItem(line, it)
		}
		out = append(out, line)
	}
	return out, nil
}

func validateTaxRate(rate decimal.Decimal) error {
	if rate.IsNegative() {
		return invalid("tax_rate", "must not be negative")
	}
	return nil
}
