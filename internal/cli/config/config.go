package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the NexusLang CLI's configuration, loaded from nexus.yml (or
// nexus.yaml) with environment-variable overrides via viper, the same
// defaulting pattern the teacher's internal/cli/config.Load uses.
type Config struct {
	Limits   LimitsConfig   `mapstructure:"limits"`
	Knowledge KnowledgeConfig `mapstructure:"knowledge"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Signing  SigningConfig  `mapstructure:"signing"`
}

// LimitsConfig bounds one execution (spec.md §5).
type LimitsConfig struct {
	TimeoutMS    int `mapstructure:"timeout_ms"`
	MaxCallDepth int `mapstructure:"max_call_depth"`
	MaxOutputKB  int `mapstructure:"max_output_kb"`
}

// Timeout converts TimeoutMS into a time.Duration.
func (l LimitsConfig) Timeout() time.Duration {
	return time.Duration(l.TimeoutMS) * time.Millisecond
}

// MaxOutputBytes converts MaxOutputKB into a byte count.
func (l LimitsConfig) MaxOutputBytes() int {
	return l.MaxOutputKB * 1024
}

// KnowledgeConfig configures the knowledge() intrinsic's backing store.
type KnowledgeConfig struct {
	DSN   string `mapstructure:"dsn"`
	Table string `mapstructure:"table"`
}

// CacheConfig configures the compiled-module cache.
type CacheConfig struct {
	Address string `mapstructure:"address"` // empty: in-memory only
}

// SigningConfig configures .nxb module signing/verification.
type SigningConfig struct {
	Key string `mapstructure:"key"`
}

// Load reads nexus.yml/nexus.yaml from the current directory, falling back
// to defaults safe enough to run the CLI with zero configuration.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("limits.timeout_ms", 5000)
	v.SetDefault("limits.max_call_depth", 4096)
	v.SetDefault("limits.max_output_kb", 1024)
	v.SetDefault("knowledge.dsn", "")
	v.SetDefault("knowledge.table", "knowledge_records")
	v.SetDefault("cache.address", "")
	v.SetDefault("signing.key", "")

	v.SetConfigName("nexus")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("NEXUS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// InProject reports whether the current directory holds a nexus.yml/.yaml.
func InProject() bool {
	if _, err := os.Stat("nexus.yml"); err == nil {
		return true
	}
	if _, err := os.Stat("nexus.yaml"); err == nil {
		return true
	}
	return false
}

// GetProjectRoot walks up from the working directory looking for
// nexus.yml/.yaml, the same upward-search pattern the teacher's
// GetProjectRoot uses for conduit.yml.
func GetProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "nexus.yml")); err == nil {
			return dir, nil
		}
		if _, err := os.Stat(filepath.Join(dir, "nexus.yaml")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("not in a NexusLang project (no nexus.yml found)")
		}
		dir = parent
	}
}

func validateConfig(cfg *Config) error {
	if cfg.Limits.TimeoutMS < 0 {
		return fmt.Errorf("limits.timeout_ms must not be negative, got: %d", cfg.Limits.TimeoutMS)
	}
	if cfg.Limits.MaxCallDepth < 0 {
		return fmt.Errorf("limits.max_call_depth must not be negative, got: %d", cfg.Limits.MaxCallDepth)
	}
	if cfg.Limits.MaxOutputKB < 0 {
		return fmt.Errorf("limits.max_output_kb must not be negative, got: %d", cfg.Limits.MaxOutputKB)
	}
	return nil
}
