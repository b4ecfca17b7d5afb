package common

// NewDefaultConfig returns the baseline configuration applied before any
// config file or environment override.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8080,
			Host: "localhost",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path:           "./data/stocksense",
				ResetOnStartup: false,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout"},
		},
		MarketData: MarketDataConfig{
			RateLimit:    10,
			LookbackDays: 7,
			MaxHeadlines: 20,
		},
		LLM: LLMConfig{
			Provider:    "claude",
			Timeout:     "120s",
			MaxTokens:   8192,
			Temperature: 0.2,
		},
		Monitor: MonitorConfig{
			Enabled:  false,
			Schedule: "0 */6 * * *", // Every six hours
		},
	}
}
