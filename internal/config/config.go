package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EmbedderConfig configures the placeholder embedder.
// Pointer fields distinguish "absent" from an explicit zero value, so an
// explicit dimension of 0 is passed through and rejected by the embedder.
type EmbedderConfig struct {
	Dimension     *int   `yaml:"dimension,omitempty"`
	Seed          *int64 `yaml:"seed,omitempty"`
	Deterministic *bool  `yaml:"deterministic,omitempty"`
	Normalize     *bool  `yaml:"normalize,omitempty"`
}

// PlaygroundConfig configures the interactive TUI.
type PlaygroundConfig struct {
	MinDimension int `yaml:"min_dimension"`
	MaxDimension int `yaml:"max_dimension"`
	Step         int `yaml:"step"`
	PreviewRows  int `yaml:"preview_rows"`
	Neighbors    int `yaml:"neighbors"`
}

// LoggingConfig configures the zerolog logger.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	OutputFile string `yaml:"output_file"`
	Console    bool   `yaml:"console"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Embedder   EmbedderConfig   `yaml:"embedder"`
	Playground PlaygroundConfig `yaml:"playground"`
	Logging    LoggingConfig    `yaml:"logging"`
}

const (
	DefaultDimension = 128

	envDimension     = "EMBEDGEN_DIMENSION"
	envSeed          = "EMBEDGEN_SEED"
	envDeterministic = "EMBEDGEN_DETERMINISTIC"
	envNormalize     = "EMBEDGEN_NORMALIZE"
	envLogLevel      = "EMBEDGEN_LOG_LEVEL"
)

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./embedgen.yaml first, then ~/.config/embedgen/config.yaml.
// If neither exists, it writes defaults to ~/.config/embedgen/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "embedgen.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadEnv loads environment variables from a .env file, searching up the directory tree.
func LoadEnv() error {
	dir, err := os.Getwd()
	if err != nil {
		return err
	}
	for {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			return godotenv.Load(envPath)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	// Not found is fine
	return nil
}

// ApplyEnv overrides config values with EMBEDGEN_* environment variables.
func ApplyEnv(cfg *AppConfig) error {
	if v, ok := os.LookupEnv(envDimension); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", envDimension, err)
		}
		cfg.Embedder.Dimension = &n
	}
	if v, ok := os.LookupEnv(envSeed); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", envSeed, err)
		}
		cfg.Embedder.Seed = &n
	}
	if v, ok := os.LookupEnv(envDeterministic); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", envDeterministic, err)
		}
		cfg.Embedder.Deterministic = &b
	}
	if v, ok := os.LookupEnv(envNormalize); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", envNormalize, err)
		}
		cfg.Embedder.Normalize = &b
	}
	if v, ok := os.LookupEnv(envLogLevel); ok && v != "" {
		cfg.Logging.Level = v
	}
	return nil
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "embedgen", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{Logging: LoggingConfig{Console: true}}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Embedder.Dimension == nil {
		d := DefaultDimension
		cfg.Embedder.Dimension = &d
	}
	if cfg.Embedder.Deterministic == nil {
		t := true
		cfg.Embedder.Deterministic = &t
	}
	if cfg.Embedder.Normalize == nil {
		t := true
		cfg.Embedder.Normalize = &t
	}
	if cfg.Playground.MinDimension <= 0 {
		cfg.Playground.MinDimension = 16
	}
	if cfg.Playground.MaxDimension < cfg.Playground.MinDimension {
		cfg.Playground.MaxDimension = 512
		if cfg.Playground.MaxDimension < cfg.Playground.MinDimension {
			cfg.Playground.MaxDimension = cfg.Playground.MinDimension
		}
	}
	if cfg.Playground.Step <= 0 {
		cfg.Playground.Step = 16
	}
	if cfg.Playground.PreviewRows <= 0 {
		cfg.Playground.PreviewRows = 3
	}
	if cfg.Playground.Neighbors <= 0 {
		cfg.Playground.Neighbors = 3
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "pretty"
	}
}
