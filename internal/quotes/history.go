package quotes

import (
	"context"
	"fmt"

	"github.com/Simplici0/quotedesk/internal/identity"
	"github.com/Simplici0/quotedesk/internal/model"
	"github.com/Simplici0/quotedesk/internal/store"
	"github.com/Simplici0/quotedesk/internal/versioning"
)

// Comparison wraps a version diff. When fewer than two versions exist,
// Insufficient is set and the diff is empty.
type Comparison struct {
	versioning.Comparison
	Insufficient bool `json:"insufficient"`
	Available    int  `json:"available"`
}

// History returns the versions of quotation id, newest first.
func (s *Service) History(ctx context.Context, id string) ([]model.QuotationVersion, error) {
	if _, err := s.repo.GetQuotation(ctx, id); err != nil {
		return nil, err
	}
	versions, err := s.repo.ListVersions(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	return versions, nil
}

// Compare diffs two versions of quotation id. Empty ids select the two most
// recent versions.
func (s *Service) Compare(ctx context.Context, id, olderID, newerID string) (Comparison, error) {
	history, err := s.History(ctx, id)
	if err != nil {
		return Comparison{}, err
	}
	if len(history) < 2 {
		return Comparison{Insufficient: true, Available: len(history)}, nil
	}

	older, newer, _ := versioning.DefaultPair(history)
	if olderID != "" {
		if older, err = findVersion(history, olderID); err != nil {
			return Comparison{}, err
		}
	}
	if newerID != "" {
		if newer, err = findVersion(history, newerID); err != nil {
			return Comparison{}, err
		}
	}

	return Comparison{Comparison: versioning.Compare(older, newer), Available: len(history)}, nil
}

// Restore copies version versionID back onto quotation id as a new version.
func (s *Service) Restore(ctx context.Context, id, versionID string) (model.Quotation, model.QuotationVersion, error) {
	history, err := s.History(ctx, id)
	if err != nil {
		return model.Quotation{}, model.QuotationVersion{}, err
	}
	target, err := findVersion(history, versionID)
	if err != nil {
		return model.Quotation{}, model.QuotationVersion{}, err
	}
	if versioning.IsCurrent(history, target) {
		return model.Quotation{}, model.QuotationVersion{}, invalid("version_id", "is already the current version")
	}

	q, v, err := s.repo.RestoreVersion(ctx, id, versionID, identity.ID(ctx))
	if err != nil {
		return model.Quotation{}, model.QuotationVersion{}, fmt.Errorf("restore version: %w", err)
	}
	return q, v, nil
}

func findVersion(history []model.QuotationVersion, id string) (model.QuotationVersion, error) {
	for _, v := range history {
		if v.ID == id {
			return v, nil
		}
	}
	return model.QuotationVersion{}, store.ErrNotFound
}
