package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Simplici0/quotedesk/internal/model"
)

func (s *Store) CreateUser(ctx context.Context, email, passwordHash string) (model.User, error) {
	now := s.now()
	u := model.User{ID: uuid.NewString(), Email: strings.ToLower(strings.TrimSpace(email)), PasswordHash: passwordHash, CreatedAt: now}

	if _, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO users (id, email, password_hash, created_at)
		VALUES (?, ?, ?, ?)
	`), u.ID, u.Email, u.PasswordHash, formatTime(now)); err != nil {
		return model.User{}, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

// UserByEmail looks a user up case-insensitively.
func (s *Store) UserByEmail(ctx context.Context, email string) (model.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, s.q(`
		SELECT id, email, password_hash, created_at FROM users WHERE email = ?
	`), strings.ToLower(strings.TrimSpace(email))))
}

func (s *Store) GetUser(ctx context.Context, id string) (model.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, s.q(`
		SELECT id, email, password_hash, created_at FROM users WHERE id = ?
	`), id))
}

func (s *Store) scanUser(row *sql.Row) (model.User, error) {
	var (
		u       model.User
		created string
	)
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, ErrNotFound
		}
		return model.User{}, fmt.Errorf("scan user: %w", err)
	}
	t, err := parseTime(created)
	if err != nil {
		return model.User{}, err
	}
	u.CreatedAt = t
	return u, nil
}
