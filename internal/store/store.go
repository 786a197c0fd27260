// Package store persists the categorization rule table, merchant mappings
// and savings goals.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fjacquet/finance-advisor/internal/logging"
	"fjacquet/finance-advisor/internal/models"
	"fjacquet/finance-advisor/internal/textutils"

	"gopkg.in/yaml.v3"
)

// RulesFile is the YAML layout of the keyword rule table. Groups and their
// keywords are evaluated in file order.
type RulesFile struct {
	Rules []RuleGroup `yaml:"rules"`
}

// RuleGroup lists the keywords that map to one category.
type RuleGroup struct {
	Category string   `yaml:"category"`
	Keywords []string `yaml:"keywords"`
}

// MerchantsFile is the YAML layout of exact merchant mappings. Merchants
// holds manual corrections, Learned the language-model answers.
type MerchantsFile struct {
	Merchants map[string]string `yaml:"merchants"`
	Learned   map[string]string `yaml:"learned,omitempty"`
}

// CategoryStore loads the rule table and merchant mappings from YAML files.
// Missing files are not an error: the built-in rules and an empty mapping
// are used instead.
type CategoryStore struct {
	RulesFile     string
	MerchantsFile string
	logger        logging.Logger
}

// NewCategoryStore creates a store reading the given files.
func NewCategoryStore(rulesFile, merchantsFile string, logger logging.Logger) *CategoryStore {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &CategoryStore{RulesFile: rulesFile, MerchantsFile: merchantsFile, logger: logger}
}

// FindConfigFile looks for a configuration file in standard locations.
func (s *CategoryStore) FindConfigFile(filename string) (string, error) {
	if filename == "" {
		return "", os.ErrNotExist
	}
	if filepath.IsAbs(filename) {
		if _, err := os.Stat(filename); err == nil {
			return filename, nil
		}
		return "", os.ErrNotExist
	}

	locations := []string{
		filename,
		filepath.Join("config", filename),
		filepath.Join(".finance-advisor", filename),
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		locations = append(locations, filepath.Join(homeDir, ".finance-advisor", filename))
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location, nil
		}
	}
	return "", os.ErrNotExist
}

// LoadRules returns the ordered rule table.
func (s *CategoryStore) LoadRules() ([]models.CategoryRule, error) {
	path, err := s.FindConfigFile(s.RulesFile)
	if err != nil {
		s.logger.Debug("Rules file not found, using built-in rules", logging.F(logging.FieldFile, s.RulesFile))
		return models.DefaultRules(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading rules file: %w", err)
	}

	var file RulesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("error parsing rules file %s: %w", path, err)
	}

	var rules []models.CategoryRule
	for _, group := range file.Rules {
		category, ok := models.CanonicalCategory(group.Category)
		if !ok {
			return nil, fmt.Errorf("rules file %s: unknown category %q", path, group.Category)
		}
		for _, keyword := range group.Keywords {
			keyword = textutils.NormalizeDescription(keyword)
			if keyword == "" {
				continue
			}
			rules = append(rules, models.CategoryRule{Keyword: keyword, Category: category})
		}
	}

	if len(rules) == 0 {
		s.logger.Warn("Rules file has no rules, using built-in rules", logging.F(logging.FieldFile, path))
		return models.DefaultRules(), nil
	}

	s.logger.Debug("Loaded rules", logging.F(logging.FieldFile, path), logging.F(logging.FieldCount, len(rules)))
	return rules, nil
}

// LoadMerchantMappings returns the exact description->category mappings keyed
// by normalized description.
func (s *CategoryStore) LoadMerchantMappings() (models.MerchantMappings, error) {
	mappings := models.MerchantMappings{Manual: map[string]string{}, Learned: map[string]string{}}

	path, err := s.FindConfigFile(s.MerchantsFile)
	if err != nil {
		return mappings, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return mappings, fmt.Errorf("error reading merchants file: %w", err)
	}

	var file MerchantsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return mappings, fmt.Errorf("error parsing merchants file %s: %w", path, err)
	}

	s.normalizeInto(mappings.Manual, file.Merchants)
	s.normalizeInto(mappings.Learned, file.Learned)

	s.logger.Debug("Loaded merchant mappings",
		logging.F(logging.FieldFile, path),
		logging.F(logging.FieldCount, len(mappings.Manual)),
		logging.F("learned", len(mappings.Learned)))
	return mappings, nil
}

func (s *CategoryStore) normalizeInto(dst, src map[string]string) {
	for merchant, label := range src {
		category, ok := models.CanonicalCategory(label)
		if !ok {
			s.logger.Warn("Ignoring merchant mapping with unknown category",
				logging.F(logging.FieldDescription, merchant),
				logging.F(logging.FieldCategory, label))
			continue
		}
		if key := textutils.NormalizeDescription(merchant); key != "" {
			dst[key] = category
		}
	}
}

// SaveMerchantMappings writes mappings to the merchants file, creating it
// if needed.
func (s *CategoryStore) SaveMerchantMappings(mappings models.MerchantMappings) error {
	if strings.TrimSpace(s.MerchantsFile) == "" {
		return fmt.Errorf("no merchants file configured")
	}

	path, err := s.FindConfigFile(s.MerchantsFile)
	if err != nil {
		path = s.MerchantsFile
	}
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("error creating directory for merchants file: %w", err)
	}

	data, err := yaml.Marshal(MerchantsFile{Merchants: mappings.Manual, Learned: mappings.Learned})
	if err != nil {
		return fmt.Errorf("error encoding merchants file: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("error writing merchants file: %w", err)
	}

	s.logger.Info("Saved merchant mappings",
		logging.F(logging.FieldFile, path),
		logging.F(logging.FieldCount, len(mappings.Manual)),
		logging.F("learned", len(mappings.Learned)))
	return nil
}
