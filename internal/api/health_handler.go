package api

import (
	"net/http"

	"fjacquet/finance-advisor/internal/health"
	"fjacquet/finance-advisor/internal/logging"
	"fjacquet/finance-advisor/internal/models"
)

// CalculateHealthScore scores the submitted financial facts and adds action
// items for the weakest areas.
func CalculateHealthScore(scorer *health.Scorer, logger logging.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in models.HealthInput
		if err := decodeJSON(w, r, &in); err != nil {
			writeError(w, r, err, logger)
			return
		}
		report, err := scorer.Assess(r.Context(), in)
		if err != nil {
			writeError(w, r, err, logger)
			return
		}
		logger.Info("Calculated health score", logging.F("score", report.Score))
		writeJSON(w, http.StatusOK, report)
	}
}

// GetBenchmarks returns the reference ranges of each sub-score.
func GetBenchmarks() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"benchmarks": health.Benchmarks()})
	}
}
