package report

import (
	"bytes"
	"encoding/json"
	"testing"

	"fjacquet/finance-advisor/internal/logging"
	"fjacquet/finance-advisor/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sampleReport() *models.HealthScoreReport {
	return &models.HealthScoreReport{
		Score:  87,
		Grade:  "B",
		Status: "excellent",
		Breakdown: map[string]float64{
			models.MetricSavingsRate:        100,
			models.MetricDebtToIncome:       83.3,
			models.MetricEmergencyFund:      71.7,
			models.MetricSpendingDiscipline: 100,
		},
		Recommendations: []string{},
	}
}

func TestRenderer_JSON(t *testing.T) {
	r := NewRenderer(logging.NewDiscardLogger())

	data, err := r.Render(sampleReport(), FormatJSON)
	require.NoError(t, err)

	var decoded models.HealthScoreReport
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, 87, decoded.Score)
	assert.Equal(t, "B", decoded.Grade)
	assert.InDelta(t, 83.3, decoded.Breakdown[models.MetricDebtToIncome], 1e-9)
}

func TestRenderer_YAML(t *testing.T) {
	r := NewRenderer(nil)

	data, err := r.Render(sampleReport(), FormatYAML)
	require.NoError(t, err)

	var decoded models.HealthScoreReport
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	assert.Equal(t, 87, decoded.Score)
	assert.Equal(t, "excellent", decoded.Status)
}

func TestRenderer_DecimalAmounts(t *testing.T) {
	r := NewRenderer(nil)
	data, err := r.Render(map[string]decimal.Decimal{"total": decimal.RequireFromString("1734.56")}, FormatJSON)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"1734.56"`)
}

func TestRenderer_UnsupportedFormat(t *testing.T) {
	r := NewRenderer(nil)
	_, err := r.Render(sampleReport(), "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported report format")
}

func TestRenderer_Write(t *testing.T) {
	r := NewRenderer(nil)
	var buf bytes.Buffer
	require.NoError(t, r.Write(&buf, sampleReport(), FormatJSON))
	assert.True(t, bytes.HasSuffix(buf.Bytes(), []byte("}\n")))

	logger := logging.NewMockLogger()
	r = NewRenderer(logger)
	err := r.Write(&buf, func() {}, FormatJSON)
	require.Error(t, err)
	assert.True(t, logger.HasEntry("ERROR", "Failed to marshal JSON report"))
}
