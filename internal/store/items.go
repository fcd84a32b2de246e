package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Simplici0/quotedesk/internal/model"
)

const itemColumns = `id, name, description, unit, unit_price, cost_price, category, created_at`

func (s *Store) ListItems(ctx context.Context) ([]model.Item, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+itemColumns+` FROM items ORDER BY name ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	var out []model.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return out, nil
}

func (s *Store) GetItem(ctx context.Context, id string) (model.Item, error) {
	it, err := scanItem(s.db.QueryRowContext(ctx, s.q(`SELECT `+itemColumns+` FROM items WHERE id = ?`), id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Item{}, ErrNotFound
	}
	return it, err
}

func (s *Store) CreateItem(ctx context.Context, it model.Item) (model.Item, error) {
	it.ID = uuid.NewString()
	it.CreatedAt = s.now()

	if _, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO items (`+itemColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`), it.ID, it.Name, it.Description, it.Unit, it.UnitPrice.String(), nullableDecimal(it.CostPrice), it.Category, formatTime(it.CreatedAt)); err != nil {
		return model.Item{}, fmt.Errorf("insert item: %w", err)
	}
	return it, nil
}

func (s *Store) UpdateItem(ctx context.Context, it model.Item) (model.Item, error) {
	res, err := s.db.ExecContext(ctx, s.q(`
		UPDATE items
		SET name = ?, description = ?, unit = ?, unit_price = ?, cost_price = ?, category = ?
		WHERE id = ?
	`), it.Name, it.Description, it.Unit, it.UnitPrice.String(), nullableDecimal(it.CostPrice), it.Category, it.ID)
	if err != nil {
		return model.Item{}, fmt.Errorf("update item: %w", err)
	}
	if err := requireOne(res, "update item"); err != nil {
		return model.Item{}, err
	}
	return s.GetItem(ctx, it.ID)
}

func (s *Store) DeleteItem(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.q(`DELETE FROM items WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return requireOne(res, "delete item")
}

func nullableDecimal(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return d.String()
}

func scanItem(row rowScanner) (model.Item, error) {
	var (
		it      model.Item
		price   string
		cost    sql.NullString
		created string
	)
	if err := row.Scan(&it.ID, &it.Name, &it.Description, &it.Unit, &price, &cost, &it.Category, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Item{}, err
		}
		return model.Item{}, fmt.Errorf("scan item: %w", err)
	}

	var err error
	if it.UnitPrice, err = decimal.NewFromString(price); err != nil {
		return model.Item{}, fmt.Errorf("parse item unit price: %w", err)
	}
	if cost.Valid && cost.String != "" {
		c, err := decimal.NewFromString(cost.String)
		if err != nil {
			return model.Item{}, fmt.Errorf("parse item cost price: %w", err)
		}
		it.CostPrice = &c
	}
	if it.CreatedAt, err = parseTime(created); err != nil {
		return model.Item{}, err
	}
	return it, nil
}
