package config

// LogConfig controls structured logging output.
type LogConfig struct {
	Level  string `json:"level"`  // debug, info, warn, error
	Format string `json:"format"` // "text" (console) or "json"
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Addr string `json:"addr"`
}

// BatchConfig configures the concurrent scenario runner.
type BatchConfig struct {
	Concurrency int `json:"concurrency"` // Max scenarios simulated at once
}

// JournalConfig configures the in-memory decision journal.
type JournalConfig struct {
	Enabled     bool `json:"enabled"`
	MaxFailures int  `json:"max_failures"` // Consecutive write failures before journaling is switched off
}

// EventsConfig configures the decision bus.
type EventsConfig struct {
	Buffer int `json:"buffer"` // Per-subscriber channel buffer
}

// Config is the top-level configuration.
type Config struct {
	Log       LogConfig         `json:"log"`
	Server    ServerConfig      `json:"server"`
	Batch     BatchConfig       `json:"batch"`
	Journal   JournalConfig     `json:"journal"`
	Events    EventsConfig      `json:"events"`
	Scenarios map[string]string `json:"scenarios,omitempty"` // name -> scenario file path
}
