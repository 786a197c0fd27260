package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"fjacquet/finance-advisor/internal/apperror"
	"fjacquet/finance-advisor/internal/budget"
	"fjacquet/finance-advisor/internal/categorizer"
	"fjacquet/finance-advisor/internal/common"
	"fjacquet/finance-advisor/internal/logging"
	"fjacquet/finance-advisor/internal/models"

	"github.com/shopspring/decimal"
)

type uploadResponse struct {
	Status           string                     `json:"status"`
	TransactionCount int                        `json:"transaction_count"`
	Transactions     []models.Transaction       `json:"transactions"`
	Warnings         []apperror.ValidationError `json:"warnings"`
	Stats            models.CategorizationStats `json:"stats"`
}

// UploadCSV imports a CSV body (raw or as the "file" part of a multipart
// form) and categorizes every accepted row.
func UploadCSV(codec *common.CSVCodec, cat *categorizer.Categorizer, logger logging.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxCSVBody)

		body, closeBody, err := csvBody(r)
		if err != nil {
			writeError(w, r, err, logger)
			return
		}
		defer closeBody()

		result, err := codec.ReadTransactions(body)
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				err = apperror.NewValidationError("file", "", fmt.Sprintf("must not exceed %d bytes", maxErr.Limit))
			}
			writeError(w, r, err, logger)
			return
		}

		categorized, stats := cat.CategorizeAll(r.Context(), result.Transactions)
		if err := cat.SaveMappings(); err != nil {
			logger.WithError(err).Warn("Failed to save learned merchant mappings")
		}

		warnings := result.Warnings
		if warnings == nil {
			warnings = []apperror.ValidationError{}
		}
		logger.Info("Uploaded and categorized transactions",
			logging.F(logging.FieldCount, len(categorized)),
			logging.F("skipped", len(warnings)))
		writeJSON(w, http.StatusOK, uploadResponse{
			Status:           "success",
			TransactionCount: len(categorized),
			Transactions:     categorized,
			Warnings:         warnings,
			Stats:            stats,
		})
	}
}

func csvBody(r *http.Request) (io.Reader, func(), error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return r.Body, func() {}, nil
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, nil, apperror.NewValidationError("file", "", "multipart upload must carry a 'file' part")
	}
	return file, func() { _ = file.Close() }, nil
}

type analyzeRequest struct {
	Transactions  []json.RawMessage `json:"transactions"`
	MonthlyIncome *decimal.Decimal  `json:"monthly_income,omitempty"`
}

// AnalyzeSpending categorizes rows that arrive without a category and
// returns the spending analysis. Rows that cannot be read are skipped and
// reported in the warnings of the report.
func AnalyzeSpending(cat *categorizer.Categorizer, analyzer *budget.Analyzer, logger logging.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req analyzeRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err, logger)
			return
		}
		transactions, warnings := acceptTransactions(req.Transactions)

		categorized, _ := cat.CategorizeAll(r.Context(), transactions)
		report, err := analyzer.Analyze(r.Context(), categorized, req.MonthlyIncome)
		if err != nil {
			writeError(w, r, err, logger)
			return
		}
		if len(warnings) > 0 {
			report.Warnings = append(report.Warnings, warnings...)
			logger.Warn("Skipped invalid transactions",
				logging.F(logging.FieldCount, len(transactions)),
				logging.F("skipped", len(warnings)))
		}
		writeJSON(w, http.StatusOK, report)
	}
}

// acceptTransactions decodes and validates rows one by one. Row numbers in
// the warnings are 1-based positions in the request.
func acceptTransactions(rows []json.RawMessage) ([]models.Transaction, []apperror.ValidationError) {
	transactions := make([]models.Transaction, 0, len(rows))
	var warnings []apperror.ValidationError
	for i, raw := range rows {
		var tx models.Transaction
		if err := json.Unmarshal(raw, &tx); err != nil {
			warnings = append(warnings, apperror.ValidationError{
				Field: "transaction", Reason: err.Error(), Row: i + 1,
			})
			continue
		}
		if verr := validateTransaction(tx); verr != nil {
			verr.Row = i + 1
			warnings = append(warnings, *verr)
			continue
		}
		transactions = append(transactions, tx)
	}
	return transactions, warnings
}

type categorizeResponse struct {
	Transaction models.Transaction `json:"transaction"`
	Category    string             `json:"category"`
	Source      string             `json:"source"`
	AIFailed    bool               `json:"ai_failed,omitempty"`
}

// CategorizeTransaction categorizes a single transaction.
func CategorizeTransaction(cat *categorizer.Categorizer, logger logging.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var tx models.Transaction
		if err := decodeJSON(w, r, &tx); err != nil {
			writeError(w, r, err, logger)
			return
		}
		if err := validateTransaction(tx); err != nil {
			writeError(w, r, err, logger)
			return
		}

		result, aiFailed := cat.Categorize(r.Context(), tx)
		writeJSON(w, http.StatusOK, categorizeResponse{
			Transaction: result,
			Category:    result.Category,
			Source:      result.CategorySource,
			AIFailed:    aiFailed,
		})
	}
}

func validateTransaction(tx models.Transaction) *apperror.ValidationError {
	if strings.TrimSpace(tx.Description) == "" {
		return apperror.NewValidationError("description", "", "must not be empty")
	}
	if tx.Date.IsZero() {
		return apperror.NewValidationError("date", "", "must be an ISO-8601 date")
	}
	return nil
}
