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

const goalColumns = `id, goal_type, target_value, period_type, period_start, period_end, description, is_active, created_at, updated_at`

// ListGoals returns goals newest period first.
func (s *Store) ListGoals(ctx context.Context) ([]model.Goal, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+goalColumns+` FROM goals ORDER BY period_start DESC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query goals: %w", err)
	}
	defer rows.Close()

	var out []model.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate goals: %w", err)
	}
	return out, nil
}

func (s *Store) GetGoal(ctx context.Context, id string) (model.Goal, error) {
	g, err := scanGoal(s.db.QueryRowContext(ctx, s.q(`SELECT `+goalColumns+` FROM goals WHERE id = ?`), id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Goal{}, ErrNotFound
	}
	return g, err
}

func (s *Store) CreateGoal(ctx context.Context, g model.Goal) (model.Goal, error) {
	g.ID = uuid.NewString()
	g.CreatedAt = s.now()
	g.UpdatedAt = g.CreatedAt

	if _, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO goals (`+goalColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`), g.ID, string(g.GoalType), g.TargetValue.String(), string(g.PeriodType),
		formatTime(g.PeriodStart), formatTime(g.PeriodEnd), g.Description, boolInt(g.IsActive),
		formatTime(g.CreatedAt), formatTime(g.UpdatedAt)); err != nil {
		return model.Goal{}, fmt.Errorf("insert goal: %w", err)
	}
	return g, nil
}

func (s *Store) UpdateGoal(ctx context.Context, g model.Goal) (model.Goal, error) {
	res, err := s.db.ExecContext(ctx, s.q(`
		UPDATE goals
		SET goal_type = ?, target_value = ?, period_type = ?, period_start = ?, period_end = ?,
		    description = ?, is_active = ?, updated_at = ?
		WHERE id = ?
	`), string(g.GoalType), g.TargetValue.String(), string(g.PeriodType),
		formatTime(g.PeriodStart), formatTime(g.PeriodEnd), g.Description, boolInt(g.IsActive), s.stamp(), g.ID)
	if err != nil {
		return model.Goal{}, fmt.Errorf("update goal: %w", err)
	}
	if err := requireOne(res, "update goal"); err != nil {
		return model.Goal{}, err
	}
	return s.GetGoal(ctx, g.ID)
}

func (s *Store) DeleteGoal(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.q(`DELETE FROM goals WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	return requireOne(res, "delete goal")
}

func scanGoal(row rowScanner) (model.Goal, error) {
	var (
		g                            model.Goal
		goalType, periodType, target string
		start, end, created, updated string
		active                       int
	)
	if err := row.Scan(&g.ID, &goalType, &target, &periodType, &start, &end, &g.Description, &active, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Goal{}, err
		}
		return model.Goal{}, fmt.Errorf("scan goal: %w", err)
	}

	g.GoalType = model.GoalType(goalType)
	g.PeriodType = model.PeriodType(periodType)
	g.IsActive = active != 0

	var err error
	if g.TargetValue, err = decimal.NewFromString(target); err != nil {
		return model.Goal{}, fmt.Errorf("parse goal target: %w", err)
	}
	if g.PeriodStart, err = parseTime(start); err != nil {
		return model.Goal{}, err
	}
	if g.PeriodEnd, err = parseTime(end); err != nil {
		return model.Goal{}, err
	}
	if g.CreatedAt, err = parseTime(created); err != nil {
		return model.Goal{}, err
	}
	if g.UpdatedAt, err = parseTime(updated); err != nil {
		return model.Goal{}, err
	}
	return g, nil
}
