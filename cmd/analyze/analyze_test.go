package analyze

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"fjacquet/finance-advisor/cmd/root"
	"fjacquet/finance-advisor/internal/config"
	"fjacquet/finance-advisor/internal/container"
	"fjacquet/finance-advisor/internal/logging"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) *bytes.Buffer {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Categorization.RulesFile = filepath.Join(dir, "rules.yaml")
	cfg.Categorization.MerchantsFile = filepath.Join(dir, "merchants.yaml")

	c, err := container.NewContainerWithLogger(context.Background(), cfg, logging.NewDiscardLogger())
	require.NoError(t, err)

	originalContainer, originalFlags := root.AppContainer, root.SharedFlags
	root.AppContainer = c
	root.SharedFlags = root.CommonFlags{Format: "json"}
	income = ""
	t.Cleanup(func() {
		_ = c.Close()
		root.AppContainer, root.SharedFlags = originalContainer, originalFlags
	})

	var out bytes.Buffer
	Cmd.SetOut(&out)
	return &out
}

func statements(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "jan.csv"), []byte("date,description,amount\n"+
		"2024-01-20,Grocery Store,-82.50\n"+
		"2024-01-05,Salary,3200\n"+
		"2024-01-31,Netflix,-15.99\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "feb.csv"), []byte("date,description,amount\n"+
		"2024-02-03,Shell Gas,-45.00\n"+
		"2024-01-31,Netflix,-15.99\n"+
		"2024-02-30,Broken,-1\n"), 0o600))
	return dir
}

func TestAnalyzeCommand_Metadata(t *testing.T) {
	assert.Equal(t, "analyze [file or directory...]", Cmd.Use)
	assert.NotNil(t, Cmd.RunE)
	assert.NotNil(t, Cmd.Flags().Lookup("income"))
}

func TestAnalyzeCommand_Directory(t *testing.T) {
	out := setup(t)
	income = "4000"

	require.NoError(t, Cmd.RunE(Cmd, []string{statements(t)}))

	var got result
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, []string{"feb.csv", "jan.csv"}, got.SourceFiles)
	assert.Equal(t, "2024-01-05_2024-02-03", got.Range.String())
	require.Len(t, got.Duplicates, 1)
	assert.Equal(t, 5, got.Stats.Total)

	require.NotNil(t, got.Report)
	assert.True(t, decimal.RequireFromString("159.48").Equal(got.Report.TotalSpent), got.Report.TotalSpent.String())
	assert.True(t, decimal.RequireFromString("3200").Equal(got.Report.TotalIncome))
	assert.Len(t, got.Report.MonthlyTotals, 2)
	assert.Len(t, got.Report.Warnings, 1)
	require.NotNil(t, got.Report.Recommendation)
	assert.True(t, decimal.RequireFromString("2000").Equal(got.Report.Recommendation.Needs))
	assert.NotEmpty(t, got.Report.Insights)
}

func TestAnalyzeCommand_Errors(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		income string
	}{
		{name: "no input"},
		{name: "bad income", args: []string{"x.csv"}, income: "lots"},
		{name: "missing file", args: []string{"/nonexistent/statement.csv"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setup(t)
			income = tt.income
			assert.Error(t, Cmd.RunE(Cmd, tt.args))
		})
	}
}

func TestAnalyzeCommand_NegativeIncome(t *testing.T) {
	setup(t)
	income = "-100"
	err := Cmd.RunE(Cmd, []string{statements(t)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "monthly_income")
}
