package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

// EngineConfigManager loads and validates engine configurations
type EngineConfigManager struct {
	validator *EngineValidator
}

// NewEngineConfigManager creates a new engine configuration manager
func NewEngineConfigManager() *EngineConfigManager {
	return &EngineConfigManager{
		validator: NewEngineValidator(),
	}
}

// LoadConfig loads configuration from an optional JSON file, applies
// environment overrides, and validates the result. An empty configFile starts
// from defaults only.
func (m *EngineConfigManager) LoadConfig(configFile string, accountSize float64) (*EngineConfig, error) {
	cfg := NewDefaultEngineConfig(accountSize)

	if configFile != "" {
		if err := m.loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	m.applyEnvOverrides(cfg)

	if err := m.validator.Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile loads configuration from a JSON file
func (m *EngineConfigManager) loadFromFile(configFile string, cfg *EngineConfig) error {
	data, err := os.ReadFile(configFile)
	if err != nil {
		return fmt.Errorf("could not read config file: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("could not parse config file: %w", err)
	}

	return nil
}

// applyEnvOverrides lets deployment environments override file values without
// editing the config file. Load a .env first with godotenv when needed.
func (m *EngineConfigManager) applyEnvOverrides(cfg *EngineConfig) {
	if size := getEnvFloat("RISK_ENGINE_ACCOUNT_SIZE", 0); size > 0 {
		cfg.AccountSize = size
	}
	if variant := os.Getenv("RISK_ENGINE_VARIANT"); variant != "" {
		cfg.Variant = Variant(variant)
	}
	if fraction := getEnvFloat("RISK_ENGINE_MIN_BET_FRACTION", 0); fraction > 0 {
		cfg.MinBetFraction = fraction
	}
	if fraction := getEnvFloat("RISK_ENGINE_MAX_BET_FRACTION", 0); fraction > 0 {
		cfg.MaxBetFraction = fraction
	}
}

func getEnvFloat(key string, defaultVal float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	parsed, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return defaultVal
	}
	return parsed
}
