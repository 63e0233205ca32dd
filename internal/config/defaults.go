package config

import "time"

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:       8080,
			SessionTTL: 24 * time.Hour,
		},
		DataDir: "data",
		PocketBase: PocketBaseConfig{
			URL:            "http://127.0.0.1:8090",
			AuthCollection: "users",
			Timeout:        30 * time.Second,
		},
		Listing: ListingConfig{
			PerPage:    10,
			MaxPerPage: 100,
		},
		Markdown: MarkdownConfig{
			HighlightStyle: "github",
		},
		Schema: SchemaConfig{
			File: "pb_schema.json",
		},
		Log: LogConfig{
			Level:  "info",
			Format: LogFormatConsole,
		},
	}
}
