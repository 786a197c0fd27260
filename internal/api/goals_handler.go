package api

import (
	"net/http"
	"strings"

	"fjacquet/finance-advisor/internal/apperror"
	"fjacquet/finance-advisor/internal/goals"
	"fjacquet/finance-advisor/internal/logging"
	"fjacquet/finance-advisor/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// CreateGoal stores a new goal.
func CreateGoal(svc *goals.Service, logger logging.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in goals.CreateInput
		if err := decodeJSON(w, r, &in); err != nil {
			writeError(w, r, err, logger)
			return
		}
		goal, err := svc.Create(r.Context(), in)
		if err != nil {
			writeError(w, r, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, goal)
	}
}

// ListGoals returns every stored goal.
func ListGoals(svc *goals.Service, logger logging.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.List(r.Context())
		if err != nil {
			writeError(w, r, err, logger)
			return
		}
		if list == nil {
			list = []models.Goal{}
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// GetGoal returns a goal with its progress and savings plan. The optional
// monthly_income query parameter enables the feasibility check.
func GetGoal(svc *goals.Service, logger logging.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var income *decimal.Decimal
		if raw := strings.TrimSpace(r.URL.Query().Get("monthly_income")); raw != "" {
			v, err := decimal.NewFromString(raw)
			if err != nil || v.IsNegative() {
				writeError(w, r, apperror.NewValidationError("monthly_income", raw, "must be a non-negative number"), logger)
				return
			}
			income = &v
		}

		details, err := svc.Get(r.Context(), chi.URLParam(r, "goal_id"), income)
		if err != nil {
			writeError(w, r, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, details)
	}
}

// UpdateGoal changes the supplied fields of a goal.
func UpdateGoal(svc *goals.Service, logger logging.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in goals.UpdateInput
		if err := decodeJSON(w, r, &in); err != nil {
			writeError(w, r, err, logger)
			return
		}
		goal, err := svc.Update(r.Context(), chi.URLParam(r, "goal_id"), in)
		if err != nil {
			writeError(w, r, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, goal)
	}
}

type contributionRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Note   string          `json:"note,omitempty"`
}

type contributionResponse struct {
	Goal     models.Goal         `json:"goal"`
	Progress models.GoalProgress `json:"progress"`
}

// AddContribution adds an amount to a goal.
func AddContribution(svc *goals.Service, logger logging.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req contributionRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err, logger)
			return
		}
		goal, err := svc.Contribute(r.Context(), chi.URLParam(r, "goal_id"), req.Amount, req.Note)
		if err != nil {
			writeError(w, r, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, contributionResponse{Goal: goal, Progress: goals.Progress(goal)})
	}
}

type prioritizeRequest struct {
	// Goals, when omitted, defaults to every stored goal.
	Goals     []models.Goal   `json:"goals"`
	Available decimal.Decimal `json:"available_monthly_savings"`
}

// PrioritizeGoals ranks goals and distributes the available monthly savings.
func PrioritizeGoals(svc *goals.Service, logger logging.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req prioritizeRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err, logger)
			return
		}

		var (
			plan *models.AllocationPlan
			err  error
		)
		if req.Goals == nil {
			plan, err = svc.PrioritizeStored(r.Context(), req.Available)
		} else {
			plan, err = svc.Prioritize(req.Goals, req.Available)
		}
		if err != nil {
			writeError(w, r, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, plan)
	}
}
