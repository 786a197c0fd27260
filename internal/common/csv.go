// Package common provides CSV import and export of transactions.
package common

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"fjacquet/finance-advisor/internal/apperror"
	"fjacquet/finance-advisor/internal/logging"
	"fjacquet/finance-advisor/internal/models"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
)

// Required and optional column names of the transaction CSV format.
const (
	ColumnDate        = "date"
	ColumnDescription = "description"
	ColumnAmount      = "amount"
	ColumnCategory    = "category"
)

// TransactionCSVRow is the on-disk shape of a transaction. All fields are
// kept as strings so that a bad value only rejects its own row.
type TransactionCSVRow struct {
	Date        string `csv:"date"`
	Description string `csv:"description"`
	Amount      string `csv:"amount"`
	Category    string `csv:"category,omitempty"`
}

// ImportResult holds the accepted transactions (in file order) and one
// warning per skipped or partially accepted row.
type ImportResult struct {
	Transactions []models.Transaction       `json:"transactions"`
	Warnings     []apperror.ValidationError `json:"warnings"`
}

// CSVCodec reads and writes transaction CSV files.
type CSVCodec struct {
	delimiter rune
	logger    logging.Logger
}

// NewCSVCodec creates a codec using the given field delimiter.
func NewCSVCodec(delimiter rune, logger logging.Logger) *CSVCodec {
	if delimiter == 0 {
		delimiter = ','
	}
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &CSVCodec{delimiter: delimiter, logger: logger}
}

// ReadTransactionsFile imports transactions from a CSV file.
func (c *CSVCodec) ReadTransactionsFile(path string) (ImportResult, error) {
	file, err := os.Open(path)
	if err != nil {
		return ImportResult{}, fmt.Errorf("error opening CSV file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			c.logger.WithError(err).Warn("Failed to close file", logging.F(logging.FieldFile, path))
		}
	}()

	c.logger.Info("Reading CSV file", logging.F(logging.FieldFile, path))
	return c.ReadTransactions(file)
}

// ReadTransactions imports transactions from CSV data. Only a missing or
// unusable header fails the whole import; bad rows become warnings.
func (c *CSVCodec) ReadTransactions(r io.Reader) (ImportResult, error) {
	reader := csv.NewReader(r)
	reader.Comma = c.delimiter
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return ImportResult{}, apperror.NewValidationError("csv", "", "file is empty")
	}
	if err != nil {
		return ImportResult{}, apperror.NewValidationError("csv", "", fmt.Sprintf("unreadable header: %v", err))
	}
	header, err = normalizeHeader(header)
	if err != nil {
		return ImportResult{}, err
	}

	result := ImportResult{Transactions: []models.Transaction{}}
	var records [][]string
	var lines []int
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			result.Warnings = append(result.Warnings, apperror.ValidationError{
				Field: "row", Reason: parseErr.Err.Error(), Row: parseErr.Line,
			})
			continue
		}
		if err != nil {
			return ImportResult{}, fmt.Errorf("error reading CSV: %w", err)
		}

		line, _ := reader.FieldPos(0)
		if isBlank(record) {
			continue
		}
		if len(record) != len(header) {
			result.Warnings = append(result.Warnings, apperror.ValidationError{
				Field:  "row",
				Value:  strings.Join(record, string(c.delimiter)),
				Reason: fmt.Sprintf("expected %d fields, got %d", len(header), len(record)),
				Row:    line,
			})
			continue
		}
		records = append(records, record)
		lines = append(lines, line)
	}

	var rows []TransactionCSVRow
	if len(records) > 0 {
		in := &recordReader{records: append([][]string{header}, records...)}
		if err := gocsv.UnmarshalCSV(in, &rows); err != nil {
			return ImportResult{}, fmt.Errorf("error parsing CSV rows: %w", err)
		}
	}

	for i, row := range rows {
		tx, warnings, ok := convertRow(row, lines[i])
		result.Warnings = append(result.Warnings, warnings...)
		if ok {
			result.Transactions = append(result.Transactions, tx)
		}
	}

	c.logger.Info("Imported transactions from CSV",
		logging.F(logging.FieldCount, len(result.Transactions)),
		logging.F("skipped", len(result.Warnings)))
	return result, nil
}

// WriteTransactions writes transactions as CSV including the category column.
func (c *CSVCodec) WriteTransactions(w io.Writer, transactions []models.Transaction) error {
	rows := make([]TransactionCSVRow, 0, len(transactions))
	for _, tx := range transactions {
		rows = append(rows, TransactionCSVRow{
			Date:        tx.Date.String(),
			Description: tx.Description,
			Amount:      tx.Amount.StringFixed(2),
			Category:    tx.Category,
		})
	}

	writer := csv.NewWriter(w)
	writer.Comma = c.delimiter
	if err := gocsv.MarshalCSV(&rows, gocsv.NewSafeCSVWriter(writer)); err != nil {
		return fmt.Errorf("error writing CSV: %w", err)
	}
	return nil
}

// WriteTransactionsFile writes transactions to path, creating parent
// directories as needed.
func (c *CSVCodec) WriteTransactionsFile(path string, transactions []models.Transaction) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating CSV file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			c.logger.WithError(err).Warn("Failed to close file", logging.F(logging.FieldFile, path))
		}
	}()

	c.logger.Info("Writing transactions to CSV file",
		logging.F(logging.FieldFile, path),
		logging.F(logging.FieldCount, len(transactions)))
	return c.WriteTransactions(file, transactions)
}

func normalizeHeader(header []string) ([]string, error) {
	out := make([]string, len(header))
	seen := make(map[string]bool, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if seen[name] {
			return nil, apperror.NewValidationError("header", name, "duplicate column")
		}
		seen[name] = true
		out[i] = name
	}
	for _, required := range []string{ColumnDate, ColumnDescription, ColumnAmount} {
		if !seen[required] {
			return nil, apperror.NewValidationError("header", strings.Join(out, ","), "missing required column "+required)
		}
	}
	return out, nil
}

func convertRow(row TransactionCSVRow, line int) (models.Transaction, []apperror.ValidationError, bool) {
	date, err := models.ParseDate(row.Date)
	if err != nil {
		return models.Transaction{}, []apperror.ValidationError{{
			Field: ColumnDate, Value: row.Date, Reason: "expected an ISO date (YYYY-MM-DD)", Row: line,
		}}, false
	}

	description := strings.TrimSpace(row.Description)
	if description == "" {
		return models.Transaction{}, []apperror.ValidationError{{
			Field: ColumnDescription, Reason: "is required", Row: line,
		}}, false
	}

	amount, err := ParseAmount(row.Amount)
	if err != nil {
		return models.Transaction{}, []apperror.ValidationError{{
			Field: ColumnAmount, Value: row.Amount, Reason: "expected a signed decimal number", Row: line,
		}}, false
	}

	tx := models.Transaction{Date: date, Description: description, Amount: amount}

	var warnings []apperror.ValidationError
	if label := strings.TrimSpace(row.Category); label != "" {
		if canonical, ok := models.CanonicalCategory(label); ok {
			tx = tx.WithCategory(canonical, models.SourceSupplied)
		} else {
			warnings = append(warnings, apperror.ValidationError{
				Field: ColumnCategory, Value: label, Reason: "unknown category, will be derived from the description", Row: line,
			})
		}
	}
	return tx, warnings, true
}

// ParseAmount parses a signed decimal amount, tolerating a leading currency
// symbol and surrounding whitespace.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	negative := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	s = strings.TrimLeft(s, "$€£ ")
	if negative {
		s = "-" + s
	}
	if s == "" || s == "-" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}
	return decimal.NewFromString(s)
}

func isBlank(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}

// recordReader feeds pre-read records to gocsv.
type recordReader struct {
	records [][]string
	pos     int
}

func (r *recordReader) Read() ([]string, error) {
	if r.pos >= len(r.records) {
		return nil, io.EOF
	}
	record := r.records[r.pos]
	r.pos++
	return record, nil
}

func (r *recordReader) ReadAll() ([][]string, error) {
	rest := r.records[r.pos:]
	r.pos = len(r.records)
	return rest, nil
}
