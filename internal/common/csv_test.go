package common

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"fjacquet/finance-advisor/internal/apperror"
	"fjacquet/finance-advisor/internal/logging"
	"fjacquet/finance-advisor/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCodec() *CSVCodec {
	return NewCSVCodec(',', logging.NewMockLogger())
}

func TestReadTransactions_ValidRows(t *testing.T) {
	data := `date,description,amount
2024-01-15,Starbucks,-5.50
2024-01-16,Salary,3000.00
`
	result, err := newCodec().ReadTransactions(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, result.Transactions, 2)
	assert.Empty(t, result.Warnings)

	first := result.Transactions[0]
	assert.Equal(t, "2024-01-15", first.Date.String())
	assert.Equal(t, "Starbucks", first.Description)
	assert.True(t, decimal.RequireFromString("-5.50").Equal(first.Amount))
	assert.Empty(t, first.Category)
}

func TestReadTransactions_BadRowsBecomeWarnings(t *testing.T) {
	data := `Date, Description ,AMOUNT,category
2024-01-15,Rent,-1500,Housing
15/01/2024,Bad date,-1
2024-01-17,,-3
2024-01-18,Bad amount,abc
2024-01-19,Too,many,fields,here
,,,
2024-01-20,Coffee,-4.20,Coffee Shops
2024-01-21,Paycheck,$4500,income
`
	result, err := newCodec().ReadTransactions(strings.NewReader(data))
	require.NoError(t, err)

	require.Len(t, result.Transactions, 3)
	assert.Equal(t, "Rent", result.Transactions[0].Description)
	assert.Equal(t, models.CategoryHousing, result.Transactions[0].Category)
	assert.Equal(t, models.SourceSupplied, result.Transactions[0].CategorySource)

	assert.Equal(t, "Coffee", result.Transactions[1].Description)
	assert.Empty(t, result.Transactions[1].Category, "unknown labels are dropped so the categorizer derives one")

	assert.Equal(t, models.CategoryIncome, result.Transactions[2].Category)
	assert.True(t, decimal.NewFromInt(4500).Equal(result.Transactions[2].Amount))

	fields := map[string]int{}
	for _, w := range result.Warnings {
		fields[w.Field] = w.Row
	}
	assert.Equal(t, 3, fields[ColumnDate])
	assert.Equal(t, 4, fields[ColumnDescription])
	assert.Equal(t, 5, fields[ColumnAmount])
	assert.Equal(t, 6, fields["row"])
	assert.Equal(t, 8, fields[ColumnCategory])
	assert.Len(t, result.Warnings, 5)
}

func TestReadTransactions_HeaderErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "empty", data: ""},
		{name: "missing amount", data: "date,description\n2024-01-01,x\n"},
		{name: "duplicate column", data: "date,description,amount,amount\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newCodec().ReadTransactions(strings.NewReader(tt.data))
			require.Error(t, err)
			assert.Equal(t, apperror.KindValidation, apperror.Kind(err))
		})
	}
}

func TestReadTransactions_HeaderOnly(t *testing.T) {
	result, err := newCodec().ReadTransactions(strings.NewReader("date,description,amount\n"))
	require.NoError(t, err)
	assert.Empty(t, result.Transactions)
	assert.Empty(t, result.Warnings)
}

func TestReadTransactions_CustomDelimiter(t *testing.T) {
	codec := NewCSVCodec(';', nil)
	result, err := codec.ReadTransactions(strings.NewReader("date;description;amount\n2024-02-01;Netflix;-15.99\n"))
	require.NoError(t, err)
	require.Len(t, result.Transactions, 1)
	assert.Equal(t, "Netflix", result.Transactions[0].Description)
}

func TestWriteAndReadFileRoundTrip(t *testing.T) {
	codec := newCodec()
	path := filepath.Join(t.TempDir(), "out", "categorized.csv")
	txs := []models.Transaction{
		{Date: models.NewDate(2024, 1, 15), Description: "Starbucks", Amount: decimal.RequireFromString("-5.5"), Category: models.CategoryFoodDining},
		{Date: models.NewDate(2024, 1, 16), Description: "Salary, January", Amount: decimal.NewFromInt(3000), Category: models.CategoryIncome},
	}

	require.NoError(t, codec.WriteTransactionsFile(path, txs))

	result, err := codec.ReadTransactionsFile(path)
	require.NoError(t, err)
	require.Len(t, result.Transactions, 2)
	assert.Equal(t, "Salary, January", result.Transactions[1].Description)
	assert.Equal(t, models.CategoryFoodDining, result.Transactions[0].Category)
}

func TestWriteTransactions_Header(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, newCodec().WriteTransactions(&buf, nil))
	assert.Equal(t, "date,description,amount,category", strings.TrimSpace(buf.String()))
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{input: "-5.50", want: "-5.5"},
		{input: " 3000 ", want: "3000"},
		{input: "$12.30", want: "12.3"},
		{input: "-€7", want: "-7"},
		{input: "", wantErr: true},
		{input: "-", wantErr: true},
		{input: "1,000.00", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseAmount(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}
