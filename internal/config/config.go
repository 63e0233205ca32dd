package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/knadh/koanf/parsers/yaml"
	kenv "github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap/zapcore"
	yamlv3 "gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix for environment overrides. A double underscore
// separates nesting levels: CONTENTHUB_SERVER__PORT -> server.port.
const EnvPrefix = "CONTENTHUB_"

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (CONTENTHUB_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(kenv.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

func envKey(s string) string {
	s = strings.TrimPrefix(s, EnvPrefix)
	return strings.ToLower(strings.ReplaceAll(s, "__", "."))
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

var validLogFormats = map[LogFormat]bool{
	LogFormatConsole: true,
	LogFormatJSON:    true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Server.SessionTTL <= 0 {
		return fmt.Errorf("server.session_ttl must be positive")
	}
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}

	if c.PocketBase.URL == "" {
		return fmt.Errorf("pocketbase.url is required")
	}
	u, err := url.Parse(c.PocketBase.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid pocketbase.url %q", c.PocketBase.URL)
	}
	if c.PocketBase.AuthCollection == "" {
		return fmt.Errorf("pocketbase.auth_collection is required")
	}

	if c.Listing.PerPage < 1 {
		return fmt.Errorf("listing.per_page must be at least 1")
	}
	if c.Listing.MaxPerPage < c.Listing.PerPage {
		return fmt.Errorf("listing.max_per_page must be >= listing.per_page")
	}

	if !validLogFormats[c.Log.Format] {
		return fmt.Errorf("invalid log.format %q: must be one of console, json", c.Log.Format)
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log.level %q", c.Log.Level)
	}

	return nil
}

// Credentials are the superuser credentials used by build-schema. They
// only come from the process environment.
type Credentials struct {
	URL      string `env:"POCKETBASE_URL,required,notEmpty"`
	Email    string `env:"POCKETBASE_ADMIN_EMAIL,required,notEmpty"`
	Password string `env:"POCKETBASE_ADMIN_PASSWORD,required,notEmpty"`
}

// LoadCredentials parses the superuser credentials from the environment.
// The error names every missing variable.
func LoadCredentials() (*Credentials, error) {
	var creds Credentials
	if err := env.Parse(&creds); err != nil {
		return nil, fmt.Errorf("missing environment: %w", err)
	}
	return &creds, nil
}
