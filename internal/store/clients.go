package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Simplici0/quotedesk/internal/model"
)

const clientColumns = `id, name, email, phone, address, city, state, zip_code, tax_id, created_at`

func (s *Store) ListClients(ctx context.Context) ([]model.Client, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+clientColumns+` FROM clients ORDER BY name ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query clients: %w", err)
	}
	defer rows.Close()

	var out []model.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate clients: %w", err)
	}
	return out, nil
}

func (s *Store) GetClient(ctx context.Context, id string) (model.Client, error) {
	c, err := scanClient(s.db.QueryRowContext(ctx, s.q(`SELECT `+clientColumns+` FROM clients WHERE id = ?`), id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Client{}, ErrNotFound
	}
	return c, err
}

func (s *Store) CreateClient(ctx context.Context, c model.Client) (model.Client, error) {
	c.ID = uuid.NewString()
	c.CreatedAt = s.now()

	if _, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO clients (`+clientColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`), c.ID, c.Name, c.Email, c.Phone, c.Address, c.City, c.State, c.ZipCode, c.TaxID, formatTime(c.CreatedAt)); err != nil {
		return model.Client{}, fmt.Errorf("insert client: %w", err)
	}
	return c, nil
}

func (s *Store) UpdateClient(ctx context.Context, c model.Client) (model.Client, error) {
	res, err := s.db.ExecContext(ctx, s.q(`
		UPDATE clients
		SET name = ?, email = ?, phone = ?, address = ?, city = ?, state = ?, zip_code = ?, tax_id = ?
		WHERE id = ?
	`), c.Name, c.Email, c.Phone, c.Address, c.City, c.State, c.ZipCode, c.TaxID, c.ID)
	if err != nil {
		return model.Client{}, fmt.Errorf("update client: %w", err)
	}
	if err := requireOne(res, "update client"); err != nil {
		return model.Client{}, err
	}
	return s.GetClient(ctx, c.ID)
}

func (s *Store) DeleteClient(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.q(`DELETE FROM clients WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	return requireOne(res, "delete client")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClient(row rowScanner) (model.Client, error) {
	var (
		c       model.Client
		created string
	)
	if err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.City, &c.State, &c.ZipCode, &c.TaxID, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Client{}, err
		}
		return model.Client{}, fmt.Errorf("scan client: %w", err)
	}
	t, err := parseTime(created)
	if err != nil {
		return model.Client{}, err
	}
	c.CreatedAt = t
	return c, nil
}
