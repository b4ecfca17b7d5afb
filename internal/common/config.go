package common

import (
	"fmt"
	"os"
	"strconv"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string           `toml:"environment"` // "development" or "production"
	Server      ServerConfig     `toml:"server"`
	Storage     StorageConfig    `toml:"storage"`
	Logging     LoggingConfig    `toml:"logging"`
	MarketData  MarketDataConfig `toml:"marketdata"`
	LLM         LLMConfig        `toml:"llm"`
	Monitor     MonitorConfig    `toml:"monitor"`
}

type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Output []string `toml:"output"` // "stdout", "file"
}

// MarketDataConfig configures the market data provider client used to
// collect prices, headlines and fundamentals for the analysis engine.
type MarketDataConfig struct {
	APIKey       string `toml:"api_key"`
	BaseURL      string `toml:"base_url"`      // Override for tests; empty uses the provider default
	RateLimit    int    `toml:"rate_limit"`    // Requests per second
	LookbackDays int    `toml:"lookback_days"` // Price/news window fed into the engine
	MaxHeadlines int    `toml:"max_headlines"` // Cap on headlines per analysis
}

// LLMConfig configures the language model provider backing the analysis stages.
type LLMConfig struct {
	Provider    string  `toml:"provider"` // "claude" or "gemini"
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	Timeout     string  `toml:"timeout"` // e.g. "120s"
	MaxTokens   int     `toml:"max_tokens"`
	Temperature float32 `toml:"temperature"`
}

// MonitorConfig configures the background kill-criteria sweep over active theses.
type MonitorConfig struct {
	Enabled  bool   `toml:"enabled"`
	Schedule string `toml:"schedule"` // Cron expression
}

// LoadFromFiles loads configuration with the precedence
// defaults -> files (in order) -> environment variables.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		// Later files override earlier ones
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

func applyEnvOverrides(config *Config) {
	if v := os.Getenv("STOCKSENSE_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			config.Server.Port = port
		}
	}
	if v := os.Getenv("STOCKSENSE_HOST"); v != "" {
		config.Server.Host = v
	}
	if v := os.Getenv("STOCKSENSE_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
	if v := os.Getenv("STOCKSENSE_DB_PATH"); v != "" {
		config.Storage.Badger.Path = v
	}
	if v := os.Getenv("STOCKSENSE_MARKETDATA_API_KEY"); v != "" {
		config.MarketData.APIKey = v
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" && config.LLM.Provider == "claude" {
		config.LLM.APIKey = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" && config.LLM.Provider == "gemini" {
		config.LLM.APIKey = v
	}
	if v := os.Getenv("STOCKSENSE_MONITOR_SCHEDULE"); v != "" {
		config.Monitor.Schedule = v
	}
}

// ApplyFlagOverrides applies command-line flag values on top of the loaded
// configuration. Flags have the highest priority.
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port != 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}
