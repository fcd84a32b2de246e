package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Simplici0/quotedesk/internal/model"
)

const templateColumns = `id, name, description, line_items, notes, tax_rate, created_at, updated_at`

func (s *Store) ListTemplates(ctx context.Context) ([]model.Template, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+templateColumns+` FROM templates ORDER BY name ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query templates: %w", err)
	}
	defer rows.Close()

	var out []model.Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate templates: %w", err)
	}
	return out, nil
}

func (s *Store) GetTemplate(ctx context.Context, id string) (model.Template, error) {
	t, err := scanTemplate(s.db.QueryRowContext(ctx, s.q(`SELECT `+templateColumns+` FROM templates WHERE id = ?`), id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Template{}, ErrNotFound
	}
	return t, err
}

func (s *Store) CreateTemplate(ctx context.Context, t model.Template) (model.Template, error) {
	lines, err := encodeLines(t.LineItems)
	if err != nil {
		return model.Template{}, err
	}
	t.ID = uuid.NewString()
	t.CreatedAt = s.now()
	t.UpdatedAt = t.CreatedAt

	if _, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO templates (`+templateColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`), t.ID, t.Name, t.Description, lines, t.Notes, t.TaxRate.String(), formatTime(t.CreatedAt), formatTime(t.UpdatedAt)); err != nil {
		return model.Template{}, fmt.Errorf("insert template: %w", err)
	}
	return t, nil
}

func (s *Store) UpdateTemplate(ctx context.Context, t model.Template) (model.Template, error) {
	lines, err := encodeLines(t.LineItems)
	if err != nil {
		return model.Template{}, err
	}

	res, err := s.db.ExecContext(ctx, s.q(`
		UPDATE templates
		SET name = ?, description = ?, line_items = ?, notes = ?, tax_rate = ?, updated_at = ?
		WHERE id = ?
	`), t.Name, t.Description, lines, t.Notes, t.TaxRate.String(), s.stamp(), t.ID)
	if err != nil {
		return model.Template{}, fmt.Errorf("update template: %w", err)
	}
	if err := requireOne(res, "update template"); err != nil {
		return model.Template{}, err
	}
	return s.GetTemplate(ctx, t.ID)
}

func (s *Store) DeleteTemplate(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.q(`DELETE FROM templates WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	return requireOne(res, "delete template")
}

func encodeLines(lines []model.LineItem) (string, error) {
	if lines == nil {
		lines = []model.LineItem{}
	}
	raw, err := json.Marshal(lines)
	if err != nil {
		return "", fmt.Errorf("encode line items: %w", err)
	}
	return string(raw), nil
}

func decodeLines(raw string) ([]model.LineItem, error) {
	lines := []model.LineItem{}
	if raw == "" {
		return lines, nil
	}
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		return nil, fmt.Errorf("decode line items: %w", err)
	}
	return lines, nil
}

func scanTemplate(row rowScanner) (model.Template, error) {
	var (
		t                model.Template
		lines, rate      string
		created, updated string
	)
	if err := row.Scan(&t.ID, &t.Name, &t.Description, &lines, &t.Notes, &rate, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Template{}, err
		}
		return model.Template{}, fmt.Errorf("scan template: %w", err)
	}

	var err error
	if t.LineItems, err = decodeLines(lines); err != nil {
		return model.Template{}, err
	}
	if t.TaxRate, err = decimal.NewFromString(rate); err != nil {
		return model.Template{}, fmt.Errorf("parse template tax rate: %w", err)
	}
	if t.CreatedAt, err = parseTime(created); err != nil {
		return model.Template{}, err
	}
	if t.UpdatedAt, err = parseTime(updated); err != nil {
		return model.Template{}, err
	}
	return t, nil
}
