package api

import (
	"net/http"
	"strconv"
	"strings"

	"fjacquet/finance-advisor/internal/advisor"
	"fjacquet/finance-advisor/internal/aiclient"
	"fjacquet/finance-advisor/internal/apperror"
	"fjacquet/finance-advisor/internal/knowledge"
	"fjacquet/finance-advisor/internal/logging"
	"fjacquet/finance-advisor/internal/models"
)

type chatRequest struct {
	Message string            `json:"message"`
	History []models.ChatTurn `json:"history"`
}

// Chat answers a question. The response carries the extended history for
// the client to send back on the next turn.
func Chat(adv *advisor.Advisor, logger logging.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err, logger)
			return
		}
		if adv == nil {
			writeError(w, r, capabilityMissing(aiclient.CapabilityCompletion), logger)
			return
		}
		reply, err := adv.Chat(r.Context(), req.Message, req.History)
		if err != nil {
			writeError(w, r, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, reply)
	}
}

const maxSearchResults = 20

type searchResponse struct {
	Query   string                `json:"query"`
	Results []models.SearchResult `json:"results"`
}

// SearchKnowledge ranks the knowledge corpus against the q parameter.
func SearchKnowledge(searcher knowledge.Searcher, defaultK int, logger logging.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := strings.TrimSpace(r.URL.Query().Get("q"))
		k := defaultK
		if raw := r.URL.Query().Get("k"); raw != "" {
			v, err := strconv.Atoi(raw)
			if err != nil || v < 1 || v > maxSearchResults {
				writeError(w, r, apperror.NewValidationError("k", raw, "must be an integer between 1 and 20"), logger)
				return
			}
			k = v
		}
		if searcher == nil {
			writeError(w, r, capabilityMissing(aiclient.CapabilityEmbedding), logger)
			return
		}

		results, err := searcher.Search(r.Context(), query, k)
		if err != nil {
			writeError(w, r, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, searchResponse{Query: query, Results: results})
	}
}
