// Package goals measures quotations against revenue and conversion targets.
package goals

import (
	"errors"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/quotedesk/internal/model"
)

type Status string

const (
	StatusAchieved   Status = "achieved"
	StatusOnTrack    Status = "on-track"
	StatusBehind     Status = "behind"
	StatusNotStarted Status = "not-started"
)

// PaceTolerance is the share of linear expected progress that still counts
// as on track.
const PaceTolerance = 0.8

const day = 24 * time.Hour

// Progress is a goal measured at a point in time.
type Progress struct {
	Goal               model.Goal      `json:"goal"`
	CurrentValue       decimal.Decimal `json:"current_value"`
	ProgressPercentage float64         `json:"progress_percentage"`
	Status             Status          `json:"status"`
	DaysRemaining      int             `json:"days_remaining"`
	QuotationCount     int             `json:"quotation_count"`
}

var (
	ErrGoalType   = errors.New("goal type must be revenue or conversion_rate")
	ErrPeriodType = errors.New("period type must be monthly, quarterly or yearly")
	ErrTarget     = errors.New("target value must be greater than zero")
	ErrPeriod     = errors.New("period end must not be before period start")
)

// Validate checks the user supplied fields of a goal.
func Validate(g model.Goal) error {
	switch g.GoalType {
	case model.GoalRevenue, model.GoalConversionRate:
	default:
		return ErrGoalType
	}
	switch g.PeriodType {
	case model.PeriodMonthly, model.PeriodQuarterly, model.PeriodYearly:
	default:
		return ErrPeriodType
	}
	if !g.TargetValue.IsPositive() {
		return ErrTarget
	}
	if g.PeriodEnd.Before(g.PeriodStart) {
		return ErrPeriod
	}
	return nil
}

// DayBounds widens a date-only period so it covers whole days: start moves
// to midnight and end to the last instant of its day.
func DayBounds(start, end time.Time) (time.Time, time.Time) {
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	e := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, end.Location()).Add(day - time.Nanosecond)
	return s, e
}

// InPeriod returns quotations created within [start, end], both inclusive.
func InPeriod(g model.Goal, quotes []model.Quotation) []model.Quotation {
	out := make([]model.Quotation, 0, len(quotes))
	for _, q := range quotes {
		if q.CreatedAt.Before(g.PeriodStart) || q.CreatedAt.After(g.PeriodEnd) {
			continue
		}
		out = append(out, q)
	}
	return out
}

// CurrentValue is accepted revenue for revenue goals, and the accepted share
// in percent for conversion goals.
func CurrentValue(g model.Goal, inPeriod []model.Quotation) decimal.Decimal {
	accepted := 0
	revenue := decimal.Zero
	for _, q := range inPeriod {
		if q.Status != model.StatusAccepted {
			continue
		}
		accepted++
		revenue = revenue.Add(q.Total)
	}

	if g.GoalType == model.GoalRevenue {
		return revenue
	}
	if len(inPeriod) == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(accepted)).Mul(decimal.NewFromInt(100)).Div(decimal.NewFromInt(int64(len(inPeriod))))
}

// Calculate measures one goal against the full quotation list.
func Calculate(g model.Goal, quotes []model.Quotation, now time.Time) Progress {
	inPeriod := InPeriod(g, quotes)
	current := CurrentValue(g, inPeriod)

	pct := percentage(current, g.TargetValue)
	remaining := daysUntil(g.PeriodEnd, now)

	return Progress{
		Goal:               g,
		CurrentValue:       current,
		ProgressPercentage: pct,
		Status:             classify(g, current, pct, remaining, now),
		DaysRemaining:      remaining,
		QuotationCount:     len(inPeriod),
	}
}

// CalculateAll measures goals in order.
func CalculateAll(goals []model.Goal, quotes []model.Quotation, now time.Time) []Progress {
	out := make([]Progress, 0, len(goals))
	for _, g := range goals {
		out = append(out, Calculate(g, quotes, now))
	}
	return out
}

// Active keeps goals flagged active.
func Active(goals []model.Goal) []model.Goal {
	out := make([]model.Goal, 0, len(goals))
	for _, g := range goals {
		if g.IsActive {
			out = append(out, g)
		}
	}
	return out
}

// A non-positive target is met by any positive value.
func percentage(current, target decimal.Decimal) float64 {
	if !target.IsPositive() {
		if current.IsPositive() {
			return 100
		}
		return 0
	}
	pct := current.Div(target).Mul(decimal.NewFromInt(100)).InexactFloat64()
	return math.Min(pct, 100)
}

func daysUntil(end, now time.Time) int {
	d := math.Ceil(float64(end.Sub(now)) / float64(day))
	return int(math.Max(0, d))
}

func classify(g model.Goal, current decimal.Decimal, pct float64, remaining int, now time.Time) Status {
	switch {
	case pct >= 100:
		return StatusAchieved
	case current.IsZero():
		return StatusNotStarted
	case now.After(g.PeriodEnd):
		return StatusBehind
	}

	total := int(math.Ceil(float64(g.PeriodEnd.Sub(g.PeriodStart)) / float64(day)))
	if total <= 0 {
		return StatusOnTrack
	}
	passed := total - remaining
	expected := float64(passed) / float64(total) * 100
	if pct >= expected*PaceTolerance {
		return StatusOnTrack
	}
	return StatusBehind
}
