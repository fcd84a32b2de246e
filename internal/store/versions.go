package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Simplici0/quotedesk/internal/model"
	"github.com/Simplici0/quotedesk/internal/versioning"
)

const versionColumns = `id, quotation_id, version_number, quotation_data, notes, created_by, created_at`

// appendVersion snapshots q as the next version. The number is computed by
// the insert itself; a concurrent writer that takes the same number fails
// the unique key and its transaction is replayed.
func (s *Store) appendVersion(ctx context.Context, tx *sql.Tx, q model.Quotation, note, by string) (model.QuotationVersion, error) {
	v := model.QuotationVersion{
		ID:          uuid.NewString(),
		QuotationID: q.ID,
		Data:        q.Snapshot(),
		Notes:       note,
		CreatedBy:   by,
		CreatedAt:   s.now(),
	}

	data, err := json.Marshal(v.Data)
	if err != nil {
		return model.QuotationVersion{}, fmt.Errorf("encode quotation snapshot: %w", err)
	}

	if err := tx.QueryRowContext(ctx, s.q(`
		INSERT INTO quotation_versions (`+versionColumns+`)
		SELECT CAST(? AS TEXT), CAST(? AS TEXT), COALESCE(MAX(version_number), 0) + 1,
		       CAST(? AS TEXT), CAST(? AS TEXT), CAST(? AS TEXT), CAST(? AS TEXT)
		FROM quotation_versions
		WHERE quotation_id = ?
		RETURNING version_number
	`), v.ID, v.QuotationID, string(data), v.Notes, v.CreatedBy, formatTime(v.CreatedAt), v.QuotationID).Scan(&v.VersionNumber); err != nil {
		return model.QuotationVersion{}, fmt.Errorf("insert quotation version: %w", err)
	}
	return v, nil
}

// ListVersions returns the history of a quotation newest first.
func (s *Store) ListVersions(ctx context.Context, quotationID string) ([]model.QuotationVersion, error) {
	rows, err := s.db.QueryContext(ctx, s.q(`
		SELECT `+versionColumns+`
		FROM quotation_versions
		WHERE quotation_id = ?
		ORDER BY version_number DESC
	`), quotationID)
	if err != nil {
		return nil, fmt.Errorf("query quotation versions: %w", err)
	}
	defer rows.Close()

	var out []model.QuotationVersion
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate quotation versions: %w", err)
	}
	return out, nil
}

// GetVersion loads one version of one quotation.
func (s *Store) GetVersion(ctx context.Context, quotationID, versionID string) (model.QuotationVersion, error) {
	return s.getVersion(ctx, s.db, quotationID, versionID)
}

func (s *Store) getVersion(ctx context.Context, qr querier, quotationID, versionID string) (model.QuotationVersion, error) {
	v, err := scanVersion(qr.QueryRowContext(ctx, s.q(`
		SELECT `+versionColumns+`
		FROM quotation_versions
		WHERE quotation_id = ? AND id = ?
	`), quotationID, versionID))
	if errors.Is(err, sql.ErrNoRows) {
		return model.QuotationVersion{}, ErrNotFound
	}
	return v, err
}

// RestoreNote labels the version written by a restore.
func RestoreNote(n int) string {
	return fmt.Sprintf("Restored from version %d", n)
}

// RestoreVersion copies a stored snapshot back onto the live quotation and
// records the result as a new version. Nothing is written unless the
// version and the quotation both exist.
func (s *Store) RestoreVersion(ctx context.Context, quotationID, versionID, by string) (model.Quotation, model.QuotationVersion, error) {
	var (
		out model.Quotation
		ver model.QuotationVersion
	)
	err := s.inWriteTx(ctx, func(tx *sql.Tx) error {
		target, err := s.getVersion(ctx, tx, quotationID, versionID)
		if err != nil {
			return err
		}
		live, err := s.getQuotation(ctx, tx, quotationID)
		if err != nil {
			return err
		}

		restored := versioning.ApplySnapshot(live, target.Data)
		out, ver, err = s.updateAndSnapshot(ctx, tx, restored, RestoreNote(target.VersionNumber), by)
		return err
	})
	if err != nil {
		return model.Quotation{}, model.QuotationVersion{}, err
	}
	return out, ver, nil
}

func scanVersion(row rowScanner) (model.QuotationVersion, error) {
	var (
		v             model.QuotationVersion
		data, created string
	)
	if err := row.Scan(&v.ID, &v.QuotationID, &v.VersionNumber, &data, &v.Notes, &v.CreatedBy, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.QuotationVersion{}, err
		}
		return model.QuotationVersion{}, fmt.Errorf("scan quotation version: %w", err)
	}
	if err := json.Unmarshal([]byte(data), &v.Data); err != nil {
		return model.QuotationVersion{}, fmt.Errorf("decode quotation snapshot: %w", err)
	}
	t, err := parseTime(created)
	if err != nil {
		return model.QuotationVersion{}, err
	}
	v.CreatedAt = t
	return v, nil
}
