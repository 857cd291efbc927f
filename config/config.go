package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"devai/internal/project"
	"devai/paths"

	"dario.cat/mergo"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the devai configuration
type Config struct {
	Model           string   `yaml:"model,omitempty" json:"model"`
	APIKey          string   `yaml:"api_key,omitempty" json:"api_key"`   // API key for LLM providers
	BaseURL         string   `yaml:"base_url,omitempty" json:"base_url"` // Base URL for LLM providers (optional)
	Stream          bool     `yaml:"stream" json:"stream"`
	PackageManager  string   `yaml:"package_manager,omitempty" json:"package_manager"`
	ScaffoldCommand string   `yaml:"scaffold_command,omitempty" json:"scaffold_command"`
	ScaffoldArgs    []string `yaml:"scaffold_args,omitempty" json:"scaffold_args"` // {name} is replaced by the app name
	CreationPhrase  string   `yaml:"creation_phrase,omitempty" json:"creation_phrase"`
	History         bool     `yaml:"history" json:"history"`         // write session transcripts
	AutoCommit      bool     `yaml:"auto_commit" json:"auto_commit"` // commit materialized files
	LogLevel        string   `yaml:"log_level,omitempty" json:"log_level"`
}

// Keys lists every configuration key in display order.
var Keys = []string{
	"model", "api_key", "base_url", "stream", "package_manager",
	"scaffold_command", "scaffold_args", "creation_phrase",
	"history", "auto_commit", "log_level",
}

// DefaultConfig returns a config with default values
func DefaultConfig() *Config {
	return &Config{
		Model:           "ollama:llama3.1",
		Stream:          true,
		PackageManager:  "npm",
		ScaffoldCommand: project.DefaultScaffoldCommand,
		ScaffoldArgs:    append([]string(nil), project.DefaultScaffoldArgs...),
		CreationPhrase:  "create a",
		History:         true,
		AutoCommit:      false,
		LogLevel:        "info",
	}
}

// boolLayer records which boolean keys a file sets explicitly. mergo skips
// zero values, so a file saying "stream: false" would otherwise be lost.
type boolLayer struct {
	Stream     *bool `yaml:"stream"`
	History    *bool `yaml:"history"`
	AutoCommit *bool `yaml:"auto_commit"`
}

func (b boolLayer) apply(cfg *Config) {
	if b.Stream != nil {
		cfg.Stream = *b.Stream
	}
	if b.History != nil {
		cfg.History = *b.History
	}
	if b.AutoCommit != nil {
		cfg.AutoCommit = *b.AutoCommit
	}
}

// LoadConfig loads configuration from global and local sources, then applies
// .env and environment overrides. Missing files are skipped; malformed ones
// are errors.
func LoadConfig(workspacePath string) (*Config, error) {
	// Start with default config
	cfg := DefaultConfig()

	// Load global config
	globalPath, err := paths.GetGlobalConfigPath()
	if err == nil {
		if err := mergeFile(cfg, globalPath); err != nil {
			return nil, err
		}
	}

	// Load local config (takes precedence)
	if err := mergeFile(cfg, paths.LocalConfigPath(workspacePath)); err != nil {
		return nil, err
	}

	// .env never overrides variables already set in the environment
	if err := godotenv.Load(filepath.Join(workspacePath, ".env")); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	applyEnv(cfg)

	return cfg, nil
}

// mergeFile merges a YAML (or JSON) config file into cfg.
func mergeFile(cfg *Config, configPath string) error {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	var layer Config
	if err := yaml.Unmarshal(data, &layer); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", configPath, err)
	}
	var bools boolLayer
	if err := yaml.Unmarshal(data, &bools); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", configPath, err)
	}

	if err := mergo.Merge(cfg, layer, mergo.WithOverride); err != nil {
		return fmt.Errorf("failed to merge config %s: %w", configPath, err)
	}
	bools.apply(cfg)
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("DEVAI_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("DEVAI_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("DEVAI_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("DEVAI_API_KEY"); v != "" {
		cfg.APIKey = v
	} else if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}
}

// Get retrieves a configuration value by key
func (c *Config) Get(key string) (interface{}, error) {
	switch key {
	case "model":
		return c.Model, nil
	case "api_key":
		return c.APIKey, nil
	case "base_url":
		return c.BaseURL, nil
	case "stream":
		return c.Stream, nil
	case "package_manager":
		return c.PackageManager, nil
	case "scaffold_command":
		return c.ScaffoldCommand, nil
	case "scaffold_args":
		return strings.Join(c.ScaffoldArgs, " "), nil
	case "creation_phrase":
		return c.CreationPhrase, nil
	case "history":
		return c.History, nil
	case "auto_commit":
		return c.AutoCommit, nil
	case "log_level":
		return c.LogLevel, nil
	default:
		return nil, fmt.Errorf("unknown config key: %s", key)
	}
}

// Set updates a configuration value by key
func (c *Config) Set(key string, value interface{}) error {
	// Convert value to string (CLI input is always string)
	str, ok := value.(string)
	if !ok {
		return fmt.Errorf("expected string value for %s", key)
	}

	switch key {
	case "model":
		c.Model = str
	case "api_key":
		c.APIKey = str
	case "base_url":
		c.BaseURL = str
	case "stream":
		return setBool(&c.Stream, key, str)
	case "package_manager":
		c.PackageManager = str
	case "scaffold_command":
		c.ScaffoldCommand = str
	case "scaffold_args":
		c.ScaffoldArgs = strings.Fields(str)
	case "creation_phrase":
		if strings.TrimSpace(str) == "" {
			return fmt.Errorf("creation_phrase must not be empty")
		}
		c.CreationPhrase = str
	case "history":
		return setBool(&c.History, key, str)
	case "auto_commit":
		return setBool(&c.AutoCommit, key, str)
	case "log_level":
		c.LogLevel = str
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

func setBool(dst *bool, key, str string) error {
	val, err := strconv.ParseBool(str)
	if err != nil {
		return fmt.Errorf("expected 'true' or 'false' for %s, got: %s", key, str)
	}
	*dst = val
	return nil
}

// SetLocal validates key=value and stores it in <workspace>/.devai/config.yaml.
// Other keys already in that file are left untouched, so defaults and the
// global file keep applying to everything not set locally.
func SetLocal(workspacePath, key, value string) error {
	probe := DefaultConfig()
	if err := probe.Set(key, value); err != nil {
		return err
	}
	typed, err := probe.Get(key)
	if err != nil {
		return err
	}
	if key == "scaffold_args" {
		typed = probe.ScaffoldArgs
	}

	configPath := paths.LocalConfigPath(workspacePath)
	raw := map[string]interface{}{}
	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("failed to parse config %s: %w", configPath, err)
		}
		if raw == nil {
			raw = map[string]interface{}{}
		}
	case !errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("failed to read config %s: %w", configPath, err)
	}
	raw[key] = typed

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	out, err := yaml.Marshal(raw)
	if err != nil {
		return err
	}
	return os.WriteFile(configPath, out, 0644)
}
