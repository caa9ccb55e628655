// Package config handles configuration loading and management for hive.
// It supports XDG config paths, project-level overrides, and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for hive.
type Config struct {
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
	Swarm     SwarmConfig     `mapstructure:"swarm"`
	Merge     MergeConfig     `mapstructure:"merge"`
	Trace     TraceConfig     `mapstructure:"trace"`
	Inbox     InboxConfig     `mapstructure:"inbox"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	APIKey     string `mapstructure:"api_key"`
	Model      string `mapstructure:"model"`
	UseBedrock bool   `mapstructure:"use_bedrock"`
	AWSRegion  string `mapstructure:"aws_region"`
	AWSProfile string `mapstructure:"aws_profile"`
}

// SwarmConfig holds coordinator and executor settings.
type SwarmConfig struct {
	// MaxInFlight bounds concurrently running executors.
	MaxInFlight int `mapstructure:"max_in_flight"`
	// ExecutorTimeout is the per-subtask deadline; 0 disables it.
	ExecutorTimeout time.Duration `mapstructure:"executor_timeout"`
	// RetryAttempts is the total attempt count per subtask.
	RetryAttempts int `mapstructure:"retry_attempts"`
	// RetryBackoff is the base delay between attempts.
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
	// Manifest is the path to the executor manifest YAML.
	Manifest string `mapstructure:"manifest"`
}

// MergeConfig selects and tunes the merge policy.
type MergeConfig struct {
	// Policy is "all" or "quorum".
	Policy string `mapstructure:"policy"`
	// QuorumRatio is the success fraction required by the quorum policy.
	QuorumRatio float64 `mapstructure:"quorum_ratio"`
}

// TraceConfig holds execution audit settings.
type TraceConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DBPath  string `mapstructure:"db_path"`
}

// InboxConfig holds drop-directory watcher settings.
type InboxConfig struct {
	Dir string `mapstructure:"dir"`
}

// Load loads configuration from XDG paths, project overrides, and environment variables.
// Precedence (highest to lowest):
// 1. Environment variables (ANTHROPIC_API_KEY)
// 2. Project config (.hive.yaml in current directory or parent)
// 3. User config (~/.config/hive/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	userConfigDir := getUserConfigDir()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(userConfigDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	projectConfig := findProjectConfig()
	if projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	v.AutomaticEnv()
	v.BindEnv("anthropic.api_key", "ANTHROPIC_API_KEY")
	v.BindEnv("anthropic.model", "HIVE_MODEL")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Anthropic.APIKey = os.ExpandEnv(cfg.Anthropic.APIKey)

	return cfg, nil
}

// LoadFromPath loads configuration from a specific path (for testing).
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Anthropic.APIKey = os.ExpandEnv(cfg.Anthropic.APIKey)

	return cfg, nil
}

// Save writes the current configuration to the user config file.
func Save(cfg *Config) error {
	userConfigDir := getUserConfigDir()
	if err := os.MkdirAll(userConfigDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	configPath := filepath.Join(userConfigDir, "config.yaml")

	v := viper.New()
	v.SetConfigFile(configPath)

	v.Set("anthropic.api_key", cfg.Anthropic.APIKey)
	v.Set("anthropic.model", cfg.Anthropic.Model)
	v.Set("anthropic.use_bedrock", cfg.Anthropic.UseBedrock)
	v.Set("anthropic.aws_region", cfg.Anthropic.AWSRegion)
	v.Set("anthropic.aws_profile", cfg.Anthropic.AWSProfile)
	v.Set("swarm.max_in_flight", cfg.Swarm.MaxInFlight)
	v.Set("swarm.executor_timeout", cfg.Swarm.ExecutorTimeout.String())
	v.Set("swarm.retry_attempts", cfg.Swarm.RetryAttempts)
	v.Set("swarm.retry_backoff", cfg.Swarm.RetryBackoff.String())
	v.Set("swarm.manifest", cfg.Swarm.Manifest)
	v.Set("merge.policy", cfg.Merge.Policy)
	v.Set("merge.quorum_ratio", cfg.Merge.QuorumRatio)
	v.Set("trace.enabled", cfg.Trace.Enabled)
	v.Set("trace.db_path", cfg.Trace.DBPath)
	v.Set("inbox.dir", cfg.Inbox.Dir)

	return v.WriteConfig()
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// GetProjectConfigPath returns the path to the project config file if it exists.
func GetProjectConfigPath() string {
	return findProjectConfig()
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("anthropic.api_key", "")
	v.SetDefault("anthropic.model", "claude-sonnet-4-20250514")
	v.SetDefault("anthropic.use_bedrock", false)
	v.SetDefault("anthropic.aws_region", "")
	v.SetDefault("anthropic.aws_profile", "")

	v.SetDefault("swarm.max_in_flight", 4)
	v.SetDefault("swarm.executor_timeout", "2m")
	v.SetDefault("swarm.retry_attempts", 1)
	v.SetDefault("swarm.retry_backoff", "500ms")
	v.SetDefault("swarm.manifest", "")

	v.SetDefault("merge.policy", "all")
	v.SetDefault("merge.quorum_ratio", 0.5)

	v.SetDefault("trace.enabled", true)
	v.SetDefault("trace.db_path", "")

	v.SetDefault("inbox.dir", "")
}

// getUserConfigDir returns the XDG config directory for hive.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "hive")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "hive")
	}
	return filepath.Join(home, ".config", "hive")
}

// findProjectConfig searches for .hive.yaml in the current directory and parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ".hive.yaml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Anthropic: AnthropicConfig{
			Model: "claude-sonnet-4-20250514",
		},
		Swarm: SwarmConfig{
			MaxInFlight:     4,
			ExecutorTimeout: 2 * time.Minute,
			RetryAttempts:   1,
			RetryBackoff:    500 * time.Millisecond,
		},
		Merge: MergeConfig{
			Policy:      "all",
			QuorumRatio: 0.5,
		},
		Trace: TraceConfig{
			Enabled: true,
		},
	}
}
