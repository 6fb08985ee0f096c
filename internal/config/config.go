package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"bayesbet/domain/core"
	"bayesbet/domain/game"
	"bayesbet/internal/engine"
	"bayesbet/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig
	Game     GameConfig
	Batch    BatchConfig
	LogLevel string
}

// DatabaseConfig holds database connection settings. An empty URL selects
// the in-memory game store.
type DatabaseConfig struct {
	URL string
}

// Enabled reports whether a database URL was configured
func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

// GameConfig holds the defaults applied to new games
type GameConfig struct {
	PayoffRule     game.PayoffRule
	PlayerBudget   float64
	PersonaBudget  float64
	PlayerParadigm core.ParadigmID
}

// BatchConfig bounds concurrent scoring
type BatchConfig struct {
	Concurrency int
}

// LoadEnvFile loads a .env file when one exists. A missing file is not an error.
func LoadEnvFile(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return errors.Wrapf(err, "failed to load env file %s", p)
		}
	}
	return nil
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Game: GameConfig{
			PayoffRule:     loadPayoffRule(),
			PlayerBudget:   getEnvFloatOrDefault("PLAYER_BUDGET", 100),
			PersonaBudget:  getEnvFloatOrDefault("PERSONA_BUDGET", 100),
			PlayerParadigm: core.ParadigmID(getEnvOrDefault("PLAYER_PARADIGM", "")),
		},
		Batch: BatchConfig{
			Concurrency: getEnvIntOrDefault("BATCH_CONCURRENCY", 4),
		},
		LogLevel: getEnvOrDefault("LOG_LEVEL", "INFO"),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

// loadPayoffRule falls back to odds_against when PAYOFF_RULE is unset or unknown
func loadPayoffRule() game.PayoffRule {
	rule := game.PayoffRule(strings.ToLower(getEnvOrDefault("PAYOFF_RULE", string(game.DefaultPayoffRule))))
	if !rule.IsKnown() {
		return game.DefaultPayoffRule
	}
	return rule
}

func validateConfig(config *Config) error {
	if config.Game.PlayerBudget < 0 {
		return errors.ConfigInvalid("PLAYER_BUDGET must be non-negative")
	}
	if config.Game.PersonaBudget < 0 {
		return errors.ConfigInvalid("PERSONA_BUDGET must be non-negative")
	}
	if config.Game.PlayerBudget > engine.MAX_BET_BUDGET || config.Game.PersonaBudget > engine.MAX_BET_BUDGET {
		return errors.ConfigInvalid(fmt.Sprintf("budgets must not exceed %.0f credits", float64(engine.MAX_BET_BUDGET)))
	}
	if config.Batch.Concurrency < 1 {
		return errors.ConfigInvalid("BATCH_CONCURRENCY must be at least 1")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
