// Package config loads bloom settings from defaults, an optional YAML
// file, and BLOOM_ environment variables, in that precedence order.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	// EnvPrefix is the prefix for environment variables,
	// e.g. BLOOM_OPENAI_API_KEY -> openai.api_key.
	EnvPrefix = "BLOOM_"
	delimiter = "."
)

// Config is the full application configuration.
type Config struct {
	DBPath      string       `koanf:"db_path"`
	ResultLimit int          `koanf:"result_limit"`
	OpenAI      OpenAIConfig `koanf:"openai"`
	Log         LogConfig    `koanf:"log"`
}

// OpenAIConfig configures the preference extractor.
type OpenAIConfig struct {
	APIKey  string `koanf:"api_key"`
	Model   string `koanf:"model"`
	BaseURL string `koanf:"base_url"`
}

// LogConfig configures logging output.
type LogConfig struct {
	Level string `koanf:"level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		DBPath:      defaultDBPath(),
		ResultLimit: 6,
		OpenAI: OpenAIConfig{
			Model: "gpt-4o-mini",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "bloom.db"
	}
	return home + "/.bloom/catalog.db"
}

// Load builds the configuration. A missing file at path is an error;
// an empty path skips the file layer entirely.
func Load(path string) (*Config, error) {
	k := koanf.New(delimiter)

	def := Default()
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"db_path":         def.DBPath,
		"result_limit":    def.ResultLimit,
		"openai.api_key":  def.OpenAI.APIKey,
		"openai.model":    def.OpenAI.Model,
		"openai.base_url": def.OpenAI.BaseURL,
		"log.level":       def.Log.Level,
	}, delimiter), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, delimiter, envKey), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.ResultLimit <= 0 {
		return nil, fmt.Errorf("result_limit must be positive, got %d", cfg.ResultLimit)
	}
	return &cfg, nil
}

// envKey maps BLOOM_OPENAI_API_KEY to openai.api_key. A single
// underscore after the section name becomes the delimiter; the rest of
// the key keeps its underscores.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	for _, section := range []string{"openai_", "log_"} {
		if strings.HasPrefix(s, section) {
			return strings.TrimSuffix(section, "_") + delimiter + strings.TrimPrefix(s, section)
		}
	}
	return s
}
