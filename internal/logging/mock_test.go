package logging

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockLogger_ChildSharesEntries(t *testing.T) {
	mock := NewMockLogger()
	child := mock.WithField(FieldOperation, "analyze").WithError(errors.New("boom"))

	child.Warn("insight generation failed", F(FieldProvider, "gemini"))
	mock.Info("done")

	entries := mock.GetEntries()
	require.Len(t, entries, 2)
	assert.Equal(t, "WARN", entries[0].Level)
	assert.EqualError(t, entries[0].Error, "boom")
	assert.Equal(t, []Field{F(FieldOperation, "analyze"), F(FieldProvider, "gemini")}, entries[0].Fields)
	assert.True(t, mock.HasEntry("INFO", "done"))
	assert.Len(t, mock.GetEntriesByLevel("WARN"), 1)
}

func TestMockLogger_ZeroValueUsable(t *testing.T) {
	var mock MockLogger
	mock.Debug("zero value")
	assert.True(t, mock.HasEntry("DEBUG", "zero value"))
}

func TestMockLogger_ConcurrentWrites(t *testing.T) {
	mock := NewMockLogger()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			mock.WithField(FieldRow, i).Info("row")
		}(i)
	}
	wg.Wait()
	assert.Len(t, mock.GetEntries(), 20)
}
