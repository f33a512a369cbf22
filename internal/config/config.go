package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// PathEnvVar overrides the config file location.
const PathEnvVar = "CONFIG_PATH"

var DefaultPaths = []string{"config.yaml", "config.yml"}

type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Catalog CatalogConfig `koanf:"catalog"`
	Search  SearchConfig  `koanf:"search"`
	HTTP    HTTPConfig    `koanf:"http"`
	Metrics MetricsConfig `koanf:"metrics"`
	Log     LogConfig     `koanf:"log"`

	// Source is the config file that was read, empty when none was.
	Source string `koanf:"-"`
}

type ServerConfig struct {
	Port            int           `koanf:"port" validate:"min=1,max=65535"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
}

type CatalogConfig struct {
	Path string `koanf:"path" validate:"required"`
}

type SearchConfig struct {
	Tokenizer       string `koanf:"tokenizer" validate:"oneof=word whitespace"`
	ThesaurusPath   string `koanf:"thesaurus_path"`
	Synonyms        bool   `koanf:"synonyms"`
	Stemming        bool   `koanf:"stemming"`
	RateLimitPerMin int    `koanf:"rate_limit_per_min" validate:"min=0"`
}

type HTTPConfig struct {
	CORSOrigins []string `koanf:"cors_origins"`
}

type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Token   string `koanf:"token" validate:"required_if=Enabled true"`
}

type LogConfig struct {
	Level string `koanf:"level" validate:"oneof=debug info warn error"`
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:            8000,
			ShutdownTimeout: 10 * time.Second,
		},
		Catalog: CatalogConfig{
			Path: "./dataset/netflix_titles.csv",
		},
		Search: SearchConfig{
			Tokenizer:       "word",
			Synonyms:        true,
			Stemming:        false,
			RateLimitPerMin: 120,
		},
		HTTP: HTTPConfig{
			CORSOrigins: []string{"*"},
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

var envKeys = map[string]string{
	"PORT":                  "server.port",
	"SHUTDOWN_TIMEOUT":      "server.shutdown_timeout",
	"CATALOG_PATH":          "catalog.path",
	"SEARCH_TOKENIZER":      "search.tokenizer",
	"SEARCH_THESAURUS_PATH": "search.thesaurus_path",
	"SEARCH_SYNONYMS":       "search.synonyms",
	"SEARCH_STEMMING":       "search.stemming",
	"SEARCH_RATE_LIMIT":     "search.rate_limit_per_min",
	"CORS_ORIGINS":          "http.cors_origins",
	"METRICS_ENABLED":       "metrics.enabled",
	"METRICS_TOKEN":         "metrics.token",
	"LOG_LEVEL":             "log.level",
}

var validate = validator.New()

// Load layers defaults, an optional YAML file and environment variables,
// in increasing priority, and validates the result.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaults(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	path := findFile()
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.ProviderWithValue("", ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	if err := splitList(k, "http.cors_origins"); err != nil {
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Source = path

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

// envKey maps a known, non-empty environment variable to its config key.
// Returning "" skips the variable.
func envKey(name, value string) (string, interface{}) {
	if value == "" {
		return "", nil
	}
	return envKeys[name], value
}

func findFile() string {
	if p := os.Getenv(PathEnvVar); p != "" {
		return p
	}
	for _, p := range DefaultPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// splitList turns a comma-separated env value into a list.
func splitList(k *koanf.Koanf, key string) error {
	s, ok := k.Get(key).(string)
	if !ok {
		return nil
	}

	parts := make([]string, 0, 4)
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if err := k.Set(key, parts); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}
