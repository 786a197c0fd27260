// Package api exposes the advisory engine over HTTP.
package api

import (
	"context"
	"net/http"

	"fjacquet/finance-advisor/internal/advisor"
	"fjacquet/finance-advisor/internal/budget"
	"fjacquet/finance-advisor/internal/categorizer"
	"fjacquet/finance-advisor/internal/common"
	"fjacquet/finance-advisor/internal/goals"
	"fjacquet/finance-advisor/internal/health"
	"fjacquet/finance-advisor/internal/knowledge"
	"fjacquet/finance-advisor/internal/logging"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// ServiceCheck checks one backing service for the liveness report.
type ServiceCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Deps are the services the handlers call. Advisor and Knowledge may be nil:
// chat then answers with service_unavailable and knowledge search likewise.
type Deps struct {
	Categorizer *categorizer.Categorizer
	CSV         *common.CSVCodec
	Analyzer    *budget.Analyzer
	Scorer      *health.Scorer
	Goals       *goals.Service
	Advisor     *advisor.Advisor
	Knowledge   knowledge.Searcher
	// TopK is the knowledge search default when the request has no k.
	TopK int
	// Provider is the active completion provider id, empty when disabled.
	Provider    string
	CORSOrigins []string
	Checks      []ServiceCheck
}

// NewRouter wires every route.
func NewRouter(deps Deps, logger logging.Logger) *chi.Mux {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	if deps.TopK < 1 {
		deps.TopK = advisor.DefaultTopK
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(RequestLogger(logger))
	r.Use(CORSMiddleware(deps.CORSOrigins))

	r.Get("/health", Liveness(deps.Provider, deps.Checks))

	r.Route("/api", func(r chi.Router) {
		// Budget
		r.Post("/budget/upload-csv", UploadCSV(deps.CSV, deps.Categorizer, logger))
		r.Post("/budget/analyze", AnalyzeSpending(deps.Categorizer, deps.Analyzer, logger))
		r.Post("/budget/categorize", CategorizeTransaction(deps.Categorizer, logger))

		// Goals
		r.Get("/goals", ListGoals(deps.Goals, logger))
		r.Post("/goals", CreateGoal(deps.Goals, logger))
		r.Post("/goals/prioritize", PrioritizeGoals(deps.Goals, logger))
		r.Get("/goals/{goal_id}", GetGoal(deps.Goals, logger))
		r.Put("/goals/{goal_id}", UpdateGoal(deps.Goals, logger))
		r.Post("/goals/{goal_id}/contributions", AddContribution(deps.Goals, logger))

		// Health score
		r.Post("/health-score", CalculateHealthScore(deps.Scorer, logger))
		r.Get("/health-score/benchmarks", GetBenchmarks())

		// Chat
		r.Post("/chat", Chat(deps.Advisor, logger))
		r.Get("/chat/knowledge-search", SearchKnowledge(deps.Knowledge, deps.TopK, logger))
	})

	return r
}

// Liveness reports the process as up together with the state of each check.
func Liveness(provider string, checks []ServiceCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		services := map[string]string{"api": statusOperational}
		if provider == "" {
			services["completion"] = "disabled"
		} else {
			services["completion"] = provider
		}

		status := "healthy"
		for _, p := range checks {
			if err := p.Check(r.Context()); err != nil {
				services[p.Name] = statusUnavailable
				status = "degraded"
				continue
			}
			services[p.Name] = statusOperational
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":   status,
			"provider": provider,
			"services": services,
		})
	}
}

const (
	statusOperational = "operational"
	statusUnavailable = "unavailable"
)
