// Package batch merges several transaction statements into one
// chronological set for analysis.
package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"fjacquet/finance-advisor/internal/apperror"
	"fjacquet/finance-advisor/internal/common"
	"fjacquet/finance-advisor/internal/logging"
	"fjacquet/finance-advisor/internal/models"
	"fjacquet/finance-advisor/internal/textutils"

	"golang.org/x/sync/errgroup"
)

// DateRange is the span covered by a set of transactions.
type DateRange struct {
	Start models.Date `json:"start" yaml:"start"`
	End   models.Date `json:"end" yaml:"end"`
}

// String returns the range as "YYYY-MM-DD_YYYY-MM-DD".
func (dr DateRange) String() string {
	if dr.Start.IsZero() || dr.End.IsZero() {
		return ""
	}
	return dr.Start.String() + "_" + dr.End.String()
}

// Duplicate is a transaction seen more than once across the merged files.
type Duplicate struct {
	Transaction models.Transaction `json:"transaction" yaml:"transaction"`
	Files       []string           `json:"files" yaml:"files"`
}

// Result is the merged statement set.
type Result struct {
	Transactions []models.Transaction       `json:"transactions" yaml:"transactions"`
	Warnings     []apperror.ValidationError `json:"warnings" yaml:"warnings"`
	Duplicates   []Duplicate                `json:"duplicates,omitempty" yaml:"duplicates,omitempty"`
	Range        DateRange                  `json:"range" yaml:"range"`
	SourceFiles  []string                   `json:"source_files" yaml:"source_files"`
}

// Aggregator reads and merges CSV statements.
type Aggregator struct {
	codec       *common.CSVCodec
	concurrency int
	logger      logging.Logger
}

// NewAggregator creates an Aggregator. concurrency below 1 reads files one
// at a time.
func NewAggregator(codec *common.CSVCodec, concurrency int, logger logging.Logger) *Aggregator {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	if concurrency < 1 {
		concurrency = 1
	}
	return &Aggregator{codec: codec, concurrency: concurrency, logger: logger}
}

// ExpandInputs replaces every directory in paths with the .csv files it
// contains, sorted by name.
func ExpandInputs(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", p, err)
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		matches, err := filepath.Glob(filepath.Join(p, "*.csv"))
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", p, err)
		}
		sort.Strings(matches)
		files = append(files, matches...)
	}
	if len(files) == 0 {
		return nil, apperror.NewValidationError("input", strings.Join(paths, ","), "no CSV files found")
	}
	return files, nil
}

// Merge reads every file and returns their transactions sorted by date.
// Files are read concurrently; a file that cannot be read fails the merge.
// Potential duplicates are reported but kept.
func (a *Aggregator) Merge(ctx context.Context, files []string) (*Result, error) {
	imports := make([]common.ImportResult, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	for i, file := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := a.codec.ReadTransactionsFile(file)
			if err != nil {
				return fmt.Errorf("read %s: %w", file, err)
			}
			imports[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &Result{Warnings: []apperror.ValidationError{}}
	origin := make(map[int]string)
	for i, res := range imports {
		base := filepath.Base(files[i])
		result.SourceFiles = append(result.SourceFiles, base)
		for _, tx := range res.Transactions {
			origin[len(result.Transactions)] = base
			result.Transactions = append(result.Transactions, tx)
		}
		for _, w := range res.Warnings {
			w.Field = base + ":" + w.Field
			result.Warnings = append(result.Warnings, w)
		}
	}

	order := make([]int, len(result.Transactions))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return result.Transactions[order[i]].Date.Before(result.Transactions[order[j]].Date.Time)
	})
	sorted := make([]models.Transaction, len(order))
	sources := make([]string, len(order))
	for i, idx := range order {
		sorted[i] = result.Transactions[idx]
		sources[i] = origin[idx]
	}
	result.Transactions = sorted
	result.Duplicates = findDuplicates(sorted, sources)
	result.Range = RangeOf(sorted)

	if len(result.Duplicates) > 0 {
		a.logger.Warn("Found potential duplicate transactions",
			logging.F(logging.FieldCount, len(result.Duplicates)))
	}
	a.logger.Info("Merged statements",
		logging.F(logging.FieldCount, len(result.Transactions)),
		logging.F(logging.FieldFile, strings.Join(result.SourceFiles, ", ")))
	return result, nil
}

// RangeOf returns the earliest and latest dates in transactions.
func RangeOf(transactions []models.Transaction) DateRange {
	var dr DateRange
	for _, tx := range transactions {
		if tx.Date.IsZero() {
			continue
		}
		if dr.Start.IsZero() || tx.Date.Before(dr.Start.Time) {
			dr.Start = tx.Date
		}
		if dr.End.IsZero() || tx.Date.After(dr.End.Time) {
			dr.End = tx.Date
		}
	}
	return dr
}

// findDuplicates groups transactions sharing date, amount and normalized
// description. Only groups spanning more than one file are reported, since
// repeated purchases within one statement are legitimate.
func findDuplicates(transactions []models.Transaction, files []string) []Duplicate {
	type group struct {
		tx    models.Transaction
		files []string
	}
	groups := make(map[string]*group)
	var keys []string
	for i, tx := range transactions {
		key := tx.Date.String() + "|" + tx.Amount.String() + "|" + textutils.NormalizeDescription(tx.Description)
		g, ok := groups[key]
		if !ok {
			g = &group{tx: tx}
			groups[key] = g
			keys = append(keys, key)
		}
		g.files = append(g.files, files[i])
	}

	var dups []Duplicate
	for _, key := range keys {
		g := groups[key]
		if len(g.files) < 2 || !spansFiles(g.files) {
			continue
		}
		dups = append(dups, Duplicate{Transaction: g.tx, Files: g.files})
	}
	return dups
}

func spansFiles(files []string) bool {
	for _, f := range files[1:] {
		if f != files[0] {
			return true
		}
	}
	return false
}
