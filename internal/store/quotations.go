package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Simplici0/quotedesk/internal/model"
)

const quotationColumns = `q.id, q.quotation_number, q.client_id, q.project_title, q.project_description,
	q.line_items, q.subtotal, q.tax_rate, q.tax_amount, q.total, q.status, q.valid_until, q.notes,
	q.created_by, q.created_at, q.updated_at,
	c.id, c.name, c.email, c.phone, c.address, c.city, c.state, c.zip_code, c.tax_id`

const quotationFrom = ` FROM quotations q LEFT JOIN clients c ON c.id = q.client_id`

// InitialVersionNote labels the snapshot taken when a quotation is created.
const InitialVersionNote = "Initial version"

// QuotationFilter narrows ListQuotations. Zero values match everything.
type QuotationFilter struct {
	Query    string
	Status   model.Status
	ClientID string
	Limit    int
}

// ListQuotations returns quotations newest first with their client joined.
func (s *Store) ListQuotations(ctx context.Context, f QuotationFilter) ([]model.Quotation, error) {
	var (
		where []string
		args  []any
	)
	if term := strings.ToLower(strings.TrimSpace(f.Query)); term != "" {
		like := "%" + term + "%"
		where = append(where, `(LOWER(q.quotation_number) LIKE ? OR LOWER(q.project_title) LIKE ? OR LOWER(q.notes) LIKE ? OR LOWER(COALESCE(c.name, '')) LIKE ?)`)
		args = append(args, like, like, like, like)
	}
	if f.Status != "" {
		where = append(where, `q.status = ?`)
		args = append(args, string(f.Status))
	}
	if f.ClientID != "" {
		where = append(where, `q.client_id = ?`)
		args = append(args, f.ClientID)
	}

	query := `SELECT ` + quotationColumns + quotationFrom
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, ` AND `)
	}
	query += ` ORDER BY q.created_at DESC, q.quotation_number DESC`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query quotations: %w", err)
	}
	defer rows.Close()

	var out []model.Quotation
	for rows.Next() {
		q, err := scanQuotation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate quotations: %w", err)
	}
	return out, nil
}

func (s *Store) GetQuotation(ctx context.Context, id string) (model.Quotation, error) {
	return s.getQuotation(ctx, s.db, id)
}

func (s *Store) getQuotation(ctx context.Context, qr querier, id string) (model.Quotation, error) {
	q, err := scanQuotation(qr.QueryRowContext(ctx, s.q(`SELECT `+quotationColumns+quotationFrom+` WHERE q.id = ?`), id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Quotation{}, ErrNotFound
	}
	return q, err
}

// CreateQuotation assigns an id and number to q, stores it and records
// version 1 in the same transaction.
func (s *Store) CreateQuotation(ctx context.Context, q model.Quotation, createdBy string) (model.Quotation, model.QuotationVersion, error) {
	var (
		out model.Quotation
		ver model.QuotationVersion
	)
	err := s.inWriteTx(ctx, func(tx *sql.Tx) error {
		now := s.now()
		number, err := s.nextNumber(ctx, tx, now.Year())
		if err != nil {
			return err
		}

		out = q
		out.ID = uuid.NewString()
		out.QuotationNumber = number
		out.CreatedBy = createdBy
		out.CreatedAt = now
		out.UpdatedAt = now
		if out.Status == "" {
			out.Status = model.StatusDraft
		}

		lines, err := encodeLines(out.LineItems)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, s.q(`
			INSERT INTO quotations (
				id, quotation_number, client_id, project_title, project_description, line_items,
				subtotal, tax_rate, tax_amount, total, status, valid_until, notes,
				created_by, created_at, updated_at
			)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`), out.ID, out.QuotationNumber, out.ClientID, out.ProjectTitle, out.ProjectDescription, lines,
			out.Subtotal.String(), out.TaxRate.String(), out.TaxAmount.String(), out.Total.String(),
			string(out.Status), out.ValidUntil, out.Notes, out.CreatedBy,
			formatTime(out.CreatedAt), formatTime(out.UpdatedAt)); err != nil {
			return fmt.Errorf("insert quotation: %w", err)
		}

		ver, err = s.appendVersion(ctx, tx, out, InitialVersionNote, createdBy)
		return err
	})
	if err != nil {
		return model.Quotation{}, model.QuotationVersion{}, err
	}
	return out, ver, nil
}

// UpdateQuotation overwrites the editable fields of q and appends a version
// snapshot of the result in the same transaction.
func (s *Store) UpdateQuotation(ctx context.Context, q model.Quotation, note, updatedBy string) (model.Quotation, model.QuotationVersion, error) {
	var (
		out model.Quotation
		ver model.QuotationVersion
	)
	err := s.inWriteTx(ctx, func(tx *sql.Tx) error {
		var err error
		out, ver, err = s.updateAndSnapshot(ctx, tx, q, note, updatedBy)
		return err
	})
	if err != nil {
		return model.Quotation{}, model.QuotationVersion{}, err
	}
	return out, ver, nil
}

func (s *Store) updateAndSnapshot(ctx context.Context, tx *sql.Tx, q model.Quotation, note, by string) (model.Quotation, model.QuotationVersion, error) {
	lines, err := encodeLines(q.LineItems)
	if err != nil {
		return model.Quotation{}, model.QuotationVersion{}, err
	}

	res, err := tx.ExecContext(ctx, s.q(`
		UPDATE quotations
		SET client_id = ?, project_title = ?, project_description = ?, line_items = ?,
		    subtotal = ?, tax_rate = ?, tax_amount = ?, total = ?, status = ?,
		    valid_until = ?, notes = ?, updated_at = ?
		WHERE id = ?
	`), q.ClientID, q.ProjectTitle, q.ProjectDescription, lines,
		q.Subtotal.String(), q.TaxRate.String(), q.TaxAmount.String(), q.Total.String(), string(q.Status),
		q.ValidUntil, q.Notes, s.stamp(), q.ID)
	if err != nil {
		return model.Quotation{}, model.QuotationVersion{}, fmt.Errorf("update quotation: %w", err)
	}
	if err := requireOne(res, "update quotation"); err != nil {
		return model.Quotation{}, model.QuotationVersion{}, err
	}

	// Reread so the snapshot holds exactly what was persisted.
	out, err := s.getQuotation(ctx, tx, q.ID)
	if err != nil {
		return model.Quotation{}, model.QuotationVersion{}, err
	}
	ver, err := s.appendVersion(ctx, tx, out, note, by)
	if err != nil {
		return model.Quotation{}, model.QuotationVersion{}, err
	}
	return out, ver, nil
}

// DeleteQuotation removes a quotation and its whole history.
func (s *Store) DeleteQuotation(ctx context.Context, id string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, s.q(`DELETE FROM quotation_versions WHERE quotation_id = ?`), id); err != nil {
			return fmt.Errorf("delete quotation versions: %w", err)
		}
		res, err := tx.ExecContext(ctx, s.q(`DELETE FROM quotations WHERE id = ?`), id)
		if err != nil {
			return fmt.Errorf("delete quotation: %w", err)
		}
		return requireOne(res, "delete quotation")
	})
}

// nextNumber bumps the per-year counter and formats PREFIX-YYYY-NNNN.
func (s *Store) nextNumber(ctx context.Context, tx *sql.Tx, year int) (string, error) {
	var n int
	if err := tx.QueryRowContext(ctx, s.q(`
		INSERT INTO quotation_sequences (year, last_value)
		VALUES (?, 1)
		ON CONFLICT (year) DO UPDATE SET last_value = quotation_sequences.last_value + 1
		RETURNING last_value
	`), year).Scan(&n); err != nil {
		return "", fmt.Errorf("next quotation number: %w", err)
	}
	return FormatNumber(s.prefix, year, n), nil
}

// FormatNumber renders a quotation number such as ZEN-2025-0024.
func FormatNumber(prefix string, year, n int) string {
	return fmt.Sprintf("%s-%d-%04d", prefix, year, n)
}

func scanQuotation(row rowScanner) (model.Quotation, error) {
	var (
		q                                    model.Quotation
		lines, subtotal, rate, tax, total    string
		status, created, updated             string
		cID, cName, cEmail, cPhone, cAddress sql.NullString
		cCity, cState, cZip, cTaxID          sql.NullString
	)
	if err := row.Scan(
		&q.ID, &q.QuotationNumber, &q.ClientID, &q.ProjectTitle, &q.ProjectDescription,
		&lines, &subtotal, &rate, &tax, &total, &status, &q.ValidUntil, &q.Notes,
		&q.CreatedBy, &created, &updated,
		&cID, &cName, &cEmail, &cPhone, &cAddress, &cCity, &cState, &cZip, &cTaxID,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Quotation{}, err
		}
		return model.Quotation{}, fmt.Errorf("scan quotation: %w", err)
	}

	var err error
	if q.LineItems, err = decodeLines(lines); err != nil {
		return model.Quotation{}, err
	}
	amounts := []struct {
		raw string
		dst *decimal.Decimal
	}{
		{subtotal, &q.Subtotal},
		{rate, &q.TaxRate},
		{tax, &q.TaxAmount},
		{total, &q.Total},
	}
	for _, a := range amounts {
		if *a.dst, err = decimal.NewFromString(a.raw); err != nil {
			return model.Quotation{}, fmt.Errorf("parse quotation amount %q: %w", a.raw, err)
		}
	}
	q.Status = model.Status(status)
	if q.CreatedAt, err = parseTime(created); err != nil {
		return model.Quotation{}, err
	}
	if q.UpdatedAt, err = parseTime(updated); err != nil {
		return model.Quotation{}, err
	}

	if cID.Valid {
		q.Client = &model.Client{
			ID:      cID.String,
			Name:    cName.String,
			Email:   cEmail.String,
			Phone:   cPhone.String,
			Address: cAddress.String,
			City:    cCity.String,
			State:   cState.String,
			ZipCode: cZip.String,
			TaxID:   cTaxID.String,
		}
	}
	return q, nil
}
