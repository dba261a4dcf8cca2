package config

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Batch: BatchConfig{
			Concurrency: 4,
		},
		Journal: JournalConfig{
			Enabled:     true,
			MaxFailures: 5,
		},
		Events: EventsConfig{
			Buffer: 256,
		},
		Scenarios: map[string]string{},
	}
}
