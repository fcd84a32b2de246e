package main

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/Simplici0/quotedesk/internal/goals"
	"github.com/Simplici0/quotedesk/internal/model"
	"github.com/Simplici0/quotedesk/internal/profit"
	"github.com/Simplici0/quotedesk/internal/quotes"
	"github.com/Simplici0/quotedesk/internal/store"
)

const goalDateLayout = "2006-01-02"

func (s *server) handleProfit(w http.ResponseWriter, r *http.Request) {
	months := defaultTrendMonths
	if raw := r.URL.Query().Get("months"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxTrendMonths {
			invalidField(w, r, "months", "must be between 1 and "+strconv.Itoa(maxTrendMonths))
			return
		}
		months = n
	}

	ctx := r.Context()
	all, err := s.store.ListQuotations(ctx, store.QuotationFilter{})
	if err != nil {
		fail(w, r, "list quotations", err)
		return
	}
	items, err := s.store.ListItems(ctx)
	if err != nil {
		fail(w, r, "list items", err)
		return
	}
	clients, err := s.store.ListClients(ctx)
	if err != nil {
		fail(w, r, "list clients", err)
		return
	}

	writeJSON(w, http.StatusOK, profit.Build(all, items, clients, s.now(), months))
}

type dashboardResponse struct {
	Summary quotes.Summary   `json:"summary"`
	Goals   []goals.Progress `json:"goals"`
}

func (s *server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	all, err := s.store.ListQuotations(ctx, store.QuotationFilter{})
	if err != nil {
		fail(w, r, "list quotations", err)
		return
	}
	list, err := s.store.ListGoals(ctx)
	if err != nil {
		fail(w, r, "list goals", err)
		return
	}

	writeJSON(w, http.StatusOK, dashboardResponse{
		Summary: quotes.Summarize(all, recentQuotations),
		Goals:   progressList(goals.Active(list), all, s.now()),
	})
}

func progressList(list []model.Goal, all []model.Quotation, now time.Time) []goals.Progress {
	out := goals.CalculateAll(list, all, now)
	if out == nil {
		out = []goals.Progress{}
	}
	return out
}

// goalRequest carries date-only period bounds; the end date is inclusive.
type goalRequest struct {
	GoalType    model.GoalType   `json:"goal_type"`
	TargetValue decimal.Decimal  `json:"target_value"`
	PeriodType  model.PeriodType `json:"period_type"`
	PeriodStart string           `json:"period_start"`
	PeriodEnd   string           `json:"period_end"`
	Description string           `json:"description"`
	IsActive    *bool            `json:"is_active"`
}

func decodeGoal(w http.ResponseWriter, r *http.Request) (model.Goal, bool) {
	var req goalRequest
	if !decodeJSON(w, r, &req) {
		return model.Goal{}, false
	}
	start, err := time.Parse(goalDateLayout, strings.TrimSpace(req.PeriodStart))
	if err != nil {
		invalidField(w, r, "period_start", "must be a YYYY-MM-DD date")
		return model.Goal{}, false
	}
	end, err := time.Parse(goalDateLayout, strings.TrimSpace(req.PeriodEnd))
	if err != nil {
		invalidField(w, r, "period_end", "must be a YYYY-MM-DD date")
		return model.Goal{}, false
	}
	start, end = goals.DayBounds(start, end)

	g := model.Goal{
		GoalType:    req.GoalType,
		TargetValue: req.TargetValue,
		PeriodType:  req.PeriodType,
		PeriodStart: start,
		PeriodEnd:   end,
		Description: strings.TrimSpace(req.Description),
		IsActive:    req.IsActive == nil || *req.IsActive,
	}
	if err := goals.Validate(g); err != nil {
		fail(w, r, "validate goal", err)
		return model.Goal{}, false
	}
	return g, true
}

func (s *server) handleGoalsList(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.ListGoals(r.Context())
	if err != nil {
		fail(w, r, "list goals", err)
		return
	}
	if list == nil {
		list = []model.Goal{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *server) handleGoalGet(w http.ResponseWriter, r *http.Request) {
	g, err := s.store.GetGoal(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, "get goal", err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *server) handleGoalCreate(w http.ResponseWriter, r *http.Request) {
	g, ok := decodeGoal(w, r)
	if !ok {
		return
	}
	out, err := s.store.CreateGoal(r.Context(), g)
	if err != nil {
		fail(w, r, "create goal", err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (s *server) handleGoalUpdate(w http.ResponseWriter, r *http.Request) {
	g, ok := decodeGoal(w, r)
	if !ok {
		return
	}
	g.ID = chi.URLParam(r, "id")
	out, err := s.store.UpdateGoal(r.Context(), g)
	if err != nil {
		fail(w, r, "update goal", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *server) handleGoalDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteGoal(r.Context(), chi.URLParam(r, "id")); err != nil {
		fail(w, r, "delete goal", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleGoalsProgress measures every active goal.
func (s *server) handleGoalsProgress(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	list, err := s.store.ListGoals(ctx)
	if err != nil {
		fail(w, r, "list goals", err)
		return
	}
	all, err := s.store.ListQuotations(ctx, store.QuotationFilter{})
	if err != nil {
		fail(w, r, "list quotations", err)
		return
	}
	writeJSON(w, http.StatusOK, progressList(goals.Active(list), all, s.now()))
}

func (s *server) handleGoalProgress(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	g, err := s.store.GetGoal(ctx, chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, "get goal", err)
		return
	}
	all, err := s.store.ListQuotations(ctx, store.QuotationFilter{})
	if err != nil {
		fail(w, r, "list quotations", err)
		return
	}
	writeJSON(w, http.StatusOK, goals.Calculate(g, all, s.now()))
}
