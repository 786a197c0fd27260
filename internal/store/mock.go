package store

import (
	"sync"

	"fjacquet/finance-advisor/internal/models"
)

// MockCategoryStore is an in-memory CategoryStore for tests.
type MockCategoryStore struct {
	Rules    []models.CategoryRule
	Mappings map[string]string
	Learned  map[string]string

	LoadRulesError    error
	LoadMappingsError error
	SaveMappingsError error

	mu        sync.Mutex
	SaveCalls int
}

// LoadRules returns Rules, or the built-in table when Rules is nil.
func (m *MockCategoryStore) LoadRules() ([]models.CategoryRule, error) {
	if m.LoadRulesError != nil {
		return nil, m.LoadRulesError
	}
	if m.Rules == nil {
		return models.DefaultRules(), nil
	}
	return append([]models.CategoryRule(nil), m.Rules...), nil
}

// LoadMerchantMappings returns copies of Mappings and Learned.
func (m *MockCategoryStore) LoadMerchantMappings() (models.MerchantMappings, error) {
	if m.LoadMappingsError != nil {
		return models.MerchantMappings{}, m.LoadMappingsError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return models.MerchantMappings{Manual: copyMap(m.Mappings), Learned: copyMap(m.Learned)}, nil
}

// SaveMerchantMappings replaces Mappings and Learned with copies of mappings.
func (m *MockCategoryStore) SaveMerchantMappings(mappings models.MerchantMappings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveCalls++
	if m.SaveMappingsError != nil {
		return m.SaveMappingsError
	}
	m.Mappings = copyMap(mappings.Manual)
	m.Learned = copyMap(mappings.Learned)
	return nil
}

func copyMap(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
