// Package config provides Viper-based hierarchical configuration management.
//
// Values are resolved in this order: built-in defaults, config.yaml, FINADV_*
// environment variables. GEMINI_API_KEY is bound explicitly.
package config

import (
	"fmt"
	"math"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// AI providers.
const (
	ProviderGemini       = "gemini"
	ProviderGeminiLegacy = "gemini-legacy"
	ProviderOllama       = "ollama"
)

// Goal store backends.
const (
	GoalBackendMemory = "memory"
	GoalBackendSQLite = "sqlite"
)

// HealthWeights are the composite score weights. They must add up to 1.
type HealthWeights struct {
	SavingsRate        float64 `mapstructure:"savings_rate" yaml:"savings_rate"`
	DebtToIncome       float64 `mapstructure:"debt_to_income" yaml:"debt_to_income"`
	EmergencyFund      float64 `mapstructure:"emergency_fund" yaml:"emergency_fund"`
	SpendingDiscipline float64 `mapstructure:"spending_discipline" yaml:"spending_discipline"`
}

// Sum returns the total weight.
func (w HealthWeights) Sum() float64 {
	return w.SavingsRate + w.DebtToIncome + w.EmergencyFund + w.SpendingDiscipline
}

// Config represents the complete application configuration.
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	CSV struct {
		Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`
	} `mapstructure:"csv" yaml:"csv"`

	AI struct {
		Enabled          bool   `mapstructure:"enabled" yaml:"enabled"`
		Provider         string `mapstructure:"provider" yaml:"provider"`
		Model            string `mapstructure:"model" yaml:"model"`
		EmbeddingModel   string `mapstructure:"embedding_model" yaml:"embedding_model"`
		TimeoutSeconds   int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
		FallbackProvider string `mapstructure:"fallback_provider" yaml:"fallback_provider"`
		OllamaURL        string `mapstructure:"ollama_url" yaml:"ollama_url"`
		OllamaModel      string `mapstructure:"ollama_model" yaml:"ollama_model"`
		APIKey           string `mapstructure:"api_key" yaml:"-"` // never serialized
	} `mapstructure:"ai" yaml:"ai"`

	Categorization struct {
		RulesFile     string `mapstructure:"rules_file" yaml:"rules_file"`
		MerchantsFile string `mapstructure:"merchants_file" yaml:"merchants_file"`
		AIEnabled     bool   `mapstructure:"ai_enabled" yaml:"ai_enabled"`
	} `mapstructure:"categorization" yaml:"categorization"`

	Analysis struct {
		TopN        int `mapstructure:"top_n" yaml:"top_n"`
		MaxInsights int `mapstructure:"max_insights" yaml:"max_insights"`
	} `mapstructure:"analysis" yaml:"analysis"`

	Health struct {
		Weights                 HealthWeights `mapstructure:"weights" yaml:"weights"`
		RecommendationThreshold float64       `mapstructure:"recommendation_threshold" yaml:"recommendation_threshold"`
	} `mapstructure:"health" yaml:"health"`

	Knowledge struct {
		CorpusFile  string `mapstructure:"corpus_file" yaml:"corpus_file"`
		TopK        int    `mapstructure:"top_k" yaml:"top_k"`
		CacheSize   int64  `mapstructure:"cache_size" yaml:"cache_size"`
		Concurrency int    `mapstructure:"concurrency" yaml:"concurrency"`
	} `mapstructure:"knowledge" yaml:"knowledge"`

	Chat struct {
		HistoryWindow int `mapstructure:"history_window" yaml:"history_window"`
	} `mapstructure:"chat" yaml:"chat"`

	Goals struct {
		Backend    string `mapstructure:"backend" yaml:"backend"`
		SQLitePath string `mapstructure:"sqlite_path" yaml:"sqlite_path"`
	} `mapstructure:"goals" yaml:"goals"`

	Server struct {
		Addr        string   `mapstructure:"addr" yaml:"addr"`
		CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
	} `mapstructure:"server" yaml:"server"`
}

// InitializeConfig loads the configuration. When configFile is empty the
// standard locations are searched and a missing file is not an error.
func InitializeConfig(configFile string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.finance-advisor")
		v.AddConfigPath(".finance-advisor")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("FINADV")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || configFile != "" {
			return nil, fmt.Errorf("failed to read config file %s: %w", v.ConfigFileUsed(), err)
		}
	}

	if err := v.BindEnv("ai.api_key", "GEMINI_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind GEMINI_API_KEY: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Default returns the configuration made only of built-in defaults.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var config Config
	// Defaults always decode.
	_ = v.Unmarshal(&config)
	return &config
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("csv.delimiter", ",")

	v.SetDefault("ai.enabled", false)
	v.SetDefault("ai.provider", ProviderGemini)
	v.SetDefault("ai.model", "gemini-2.0-flash")
	v.SetDefault("ai.embedding_model", "text-embedding-004")
	v.SetDefault("ai.timeout_seconds", 8)
	v.SetDefault("ai.fallback_provider", "")
	v.SetDefault("ai.ollama_url", "http://localhost:11434")
	v.SetDefault("ai.ollama_model", "llama3.1:8b")
	v.SetDefault("ai.api_key", "")

	v.SetDefault("categorization.rules_file", "rules.yaml")
	v.SetDefault("categorization.merchants_file", "merchants.yaml")
	v.SetDefault("categorization.ai_enabled", true)

	v.SetDefault("analysis.top_n", 5)
	v.SetDefault("analysis.max_insights", 4)

	v.SetDefault("health.weights.savings_rate", 0.25)
	v.SetDefault("health.weights.debt_to_income", 0.25)
	v.SetDefault("health.weights.emergency_fund", 0.30)
	v.SetDefault("health.weights.spending_discipline", 0.20)
	v.SetDefault("health.recommendation_threshold", 50.0)

	v.SetDefault("knowledge.corpus_file", "")
	v.SetDefault("knowledge.top_k", 3)
	v.SetDefault("knowledge.cache_size", 1000)
	v.SetDefault("knowledge.concurrency", 4)

	v.SetDefault("chat.history_window", 10)

	v.SetDefault("goals.backend", GoalBackendMemory)
	v.SetDefault("goals.sqlite_path", "goals.db")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.cors_origins", []string{"http://localhost:3000", "http://localhost:5173"})
}

func validateConfig(config *Config) error {
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}
	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	if len([]rune(config.CSV.Delimiter)) != 1 {
		return fmt.Errorf("CSV delimiter must be a single character, got: %s", config.CSV.Delimiter)
	}

	if !isProvider(config.AI.Provider) {
		return fmt.Errorf("invalid ai.provider: %s", config.AI.Provider)
	}
	if config.AI.FallbackProvider != "" {
		if !isProvider(config.AI.FallbackProvider) {
			return fmt.Errorf("invalid ai.fallback_provider: %s", config.AI.FallbackProvider)
		}
		if config.AI.FallbackProvider == config.AI.Provider {
			return fmt.Errorf("ai.fallback_provider must differ from ai.provider")
		}
	}
	if config.AI.TimeoutSeconds < 1 || config.AI.TimeoutSeconds > 30 {
		return fmt.Errorf("ai.timeout_seconds must be between 1 and 30, got: %d", config.AI.TimeoutSeconds)
	}
	if config.AI.Enabled && config.AI.APIKey == "" && usesGemini(config) {
		return fmt.Errorf("GEMINI_API_KEY required when a Gemini provider is enabled")
	}

	if config.Analysis.TopN < 5 || config.Analysis.TopN > 10 {
		return fmt.Errorf("analysis.top_n must be between 5 and 10, got: %d", config.Analysis.TopN)
	}
	if config.Analysis.MaxInsights < 2 || config.Analysis.MaxInsights > 5 {
		return fmt.Errorf("analysis.max_insights must be between 2 and 5, got: %d", config.Analysis.MaxInsights)
	}

	w := config.Health.Weights
	for name, value := range map[string]float64{
		"savings_rate":        w.SavingsRate,
		"debt_to_income":      w.DebtToIncome,
		"emergency_fund":      w.EmergencyFund,
		"spending_discipline": w.SpendingDiscipline,
	} {
		if value < 0 {
			return fmt.Errorf("health.weights.%s must not be negative, got: %f", name, value)
		}
	}
	if math.Abs(w.Sum()-1.0) > 1e-6 {
		return fmt.Errorf("health.weights must sum to 1.0, got: %f", w.Sum())
	}
	if config.Health.RecommendationThreshold < 0 || config.Health.RecommendationThreshold > 100 {
		return fmt.Errorf("health.recommendation_threshold must be between 0 and 100, got: %f", config.Health.RecommendationThreshold)
	}

	if config.Knowledge.TopK < 1 {
		return fmt.Errorf("knowledge.top_k must be at least 1, got: %d", config.Knowledge.TopK)
	}
	if config.Knowledge.CacheSize < 0 {
		return fmt.Errorf("knowledge.cache_size must not be negative, got: %d", config.Knowledge.CacheSize)
	}
	if config.Knowledge.Concurrency < 1 {
		return fmt.Errorf("knowledge.concurrency must be at least 1, got: %d", config.Knowledge.Concurrency)
	}

	if config.Chat.HistoryWindow < 2 {
		return fmt.Errorf("chat.history_window must be at least 2, got: %d", config.Chat.HistoryWindow)
	}

	switch config.Goals.Backend {
	case GoalBackendMemory:
	case GoalBackendSQLite:
		if config.Goals.SQLitePath == "" {
			return fmt.Errorf("goals.sqlite_path required for the sqlite backend")
		}
	default:
		return fmt.Errorf("invalid goals.backend: %s (must be 'memory' or 'sqlite')", config.Goals.Backend)
	}

	return nil
}

func isProvider(p string) bool {
	switch p {
	case ProviderGemini, ProviderGeminiLegacy, ProviderOllama:
		return true
	}
	return false
}

func usesGemini(config *Config) bool {
	return config.AI.Provider != ProviderOllama ||
		(config.AI.FallbackProvider != "" && config.AI.FallbackProvider != ProviderOllama)
}
