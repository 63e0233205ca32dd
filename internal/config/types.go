package config

import "time"

// LogFormat selects the zap encoder.
type LogFormat string

const (
	LogFormatConsole LogFormat = "console"
	LogFormatJSON    LogFormat = "json"
)

// Config is the top-level panel configuration, corresponding to .contenthub.yml.
type Config struct {
	Server     ServerConfig     `yaml:"server" koanf:"server"`
	DataDir    string           `yaml:"data_dir" koanf:"data_dir"`
	PocketBase PocketBaseConfig `yaml:"pocketbase" koanf:"pocketbase"`
	Listing    ListingConfig    `yaml:"listing" koanf:"listing"`
	Markdown   MarkdownConfig   `yaml:"markdown" koanf:"markdown"`
	Schema     SchemaConfig     `yaml:"schema" koanf:"schema"`
	Log        LogConfig        `yaml:"log" koanf:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port" koanf:"port"`
	AllowAllOrigins bool          `yaml:"allow_all_origins" koanf:"allow_all_origins"`
	SessionTTL      time.Duration `yaml:"session_ttl" koanf:"session_ttl"`
	SecureCookies   bool          `yaml:"secure_cookies" koanf:"secure_cookies"`
}

// PocketBaseConfig points the panel at the hosted backend.
type PocketBaseConfig struct {
	URL            string        `yaml:"url" koanf:"url"`
	AuthCollection string        `yaml:"auth_collection" koanf:"auth_collection"`
	Timeout        time.Duration `yaml:"timeout" koanf:"timeout"`
}

// ListingConfig controls table pagination.
type ListingConfig struct {
	PerPage    int `yaml:"per_page" koanf:"per_page"`
	MaxPerPage int `yaml:"max_per_page" koanf:"max_per_page"`
}

// MarkdownConfig controls the editor preview renderer.
type MarkdownConfig struct {
	HighlightStyle string `yaml:"highlight_style" koanf:"highlight_style"`
	AllowHTML      bool   `yaml:"allow_html" koanf:"allow_html"`
}

// SchemaConfig controls the build-schema command.
type SchemaConfig struct {
	File    string   `yaml:"file" koanf:"file"`
	Exclude []string `yaml:"exclude" koanf:"exclude"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level  string    `yaml:"level" koanf:"level"`
	Format LogFormat `yaml:"format" koanf:"format"`
}
