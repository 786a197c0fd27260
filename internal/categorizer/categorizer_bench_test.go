package categorizer

import (
	"context"
	"fmt"
	"testing"

	"fjacquet/finance-advisor/internal/logging"
	"fjacquet/finance-advisor/internal/models"
	"fjacquet/finance-advisor/internal/store"
)

func BenchmarkCategorizeAll(b *testing.B) {
	c, err := NewCategorizer(&store.MockCategoryStore{}, Options{}, logging.NewDiscardLogger())
	if err != nil {
		b.Fatal(err)
	}

	descriptions := []string{"Starbucks", "Rent", "Amazon Marketplace", "Unknown vendor", "Salary ACME"}
	input := make([]models.Transaction, 1000)
	for i := range input {
		input[i] = tx(1+i%28, fmt.Sprintf("%s %d", descriptions[i%len(descriptions)], i), "-12.34")
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.CategorizeAll(context.Background(), input)
	}
}
