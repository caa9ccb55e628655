package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/ShayCichocki/hive/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Manage configuration",
	Long: `View or modify hive configuration.

Without arguments, displays current configuration.
With one argument (key), displays the value for that key.
With two arguments (key value), sets the configuration value.

Configuration is stored at ~/.config/hive/config.yaml
Project-specific overrides can be placed in .hive.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		switch len(args) {
		case 0:
			displayAllConfig(cfg)
			return nil
		case 1:
			return displayConfigKey(cfg, args[0])
		default:
			return setConfigKey(cfg, args[0], args[1])
		}
	},
}

// displayAllConfig prints all configuration values.
func displayAllConfig(cfg *config.Config) {
	key, source, _ := config.ResolveAPIKey(cfg)
	fmt.Printf("anthropic.api_key: %s (from %s)\n", config.MaskAPIKey(key), source)
	fmt.Printf("anthropic.model: %s\n", cfg.Anthropic.Model)
	fmt.Printf("anthropic.use_bedrock: %t\n", cfg.Anthropic.UseBedrock)
	fmt.Printf("swarm.max_in_flight: %d\n", cfg.Swarm.MaxInFlight)
	fmt.Printf("swarm.executor_timeout: %s\n", cfg.Swarm.ExecutorTimeout)
	fmt.Printf("swarm.retry_attempts: %d\n", cfg.Swarm.RetryAttempts)
	fmt.Printf("swarm.retry_backoff: %s\n", cfg.Swarm.RetryBackoff)
	fmt.Printf("swarm.manifest: %s\n", cfg.Swarm.Manifest)
	fmt.Printf("merge.policy: %s\n", cfg.Merge.Policy)
	fmt.Printf("merge.quorum_ratio: %v\n", cfg.Merge.QuorumRatio)
	fmt.Printf("trace.enabled: %t\n", cfg.Trace.Enabled)
	fmt.Printf("trace.db_path: %s\n", cfg.Trace.DBPath)
	fmt.Printf("inbox.dir: %s\n", cfg.Inbox.Dir)
}

// displayConfigKey prints a single configuration value.
func displayConfigKey(cfg *config.Config, key string) error {
	value, err := getConfigValue(cfg, key)
	if err != nil {
		return err
	}
	fmt.Println(value)
	return nil
}

// setConfigKey sets a configuration value and saves the config.
func setConfigKey(cfg *config.Config, key, value string) error {
	if err := setConfigValue(cfg, key, value); err != nil {
		return err
	}
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	fmt.Printf("set %s = %s\n", key, value)
	fmt.Fprintf(os.Stderr, "written to %s\n", config.GetUserConfigPath())
	return nil
}

// getConfigValue reads one configuration value by dotted key.
func getConfigValue(cfg *config.Config, key string) (string, error) {
	switch key {
	case "anthropic.api_key":
		return config.MaskAPIKey(cfg.Anthropic.APIKey), nil
	case "anthropic.model":
		return cfg.Anthropic.Model, nil
	case "anthropic.use_bedrock":
		return strconv.FormatBool(cfg.Anthropic.UseBedrock), nil
	case "swarm.max_in_flight":
		return strconv.Itoa(cfg.Swarm.MaxInFlight), nil
	case "swarm.executor_timeout":
		return cfg.Swarm.ExecutorTimeout.String(), nil
	case "swarm.retry_attempts":
		return strconv.Itoa(cfg.Swarm.RetryAttempts), nil
	case "swarm.retry_backoff":
		return cfg.Swarm.RetryBackoff.String(), nil
	case "swarm.manifest":
		return cfg.Swarm.Manifest, nil
	case "merge.policy":
		return cfg.Merge.Policy, nil
	case "merge.quorum_ratio":
		return strconv.FormatFloat(cfg.Merge.QuorumRatio, 'f', -1, 64), nil
	case "trace.enabled":
		return strconv.FormatBool(cfg.Trace.Enabled), nil
	case "trace.db_path":
		return cfg.Trace.DBPath, nil
	case "inbox.dir":
		return cfg.Inbox.Dir, nil
	default:
		return "", fmt.Errorf("unknown config key: %s", key)
	}
}

// setConfigValue writes one configuration value by dotted key.
func setConfigValue(cfg *config.Config, key, value string) error {
	switch key {
	case "anthropic.api_key":
		cfg.Anthropic.APIKey = value
	case "anthropic.model":
		cfg.Anthropic.Model = value
	case "anthropic.use_bedrock":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid bool %q", value)
		}
		cfg.Anthropic.UseBedrock = b
	case "swarm.max_in_flight":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return fmt.Errorf("invalid count %q", value)
		}
		cfg.Swarm.MaxInFlight = n
	case "swarm.executor_timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration %q", value)
		}
		cfg.Swarm.ExecutorTimeout = d
	case "swarm.retry_attempts":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("invalid count %q", value)
		}
		cfg.Swarm.RetryAttempts = n
	case "swarm.retry_backoff":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration %q", value)
		}
		cfg.Swarm.RetryBackoff = d
	case "swarm.manifest":
		cfg.Swarm.Manifest = value
	case "merge.policy":
		if value != "all" && value != "quorum" {
			return fmt.Errorf("merge policy must be all or quorum")
		}
		cfg.Merge.Policy = value
	case "merge.quorum_ratio":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f <= 0 || f > 1 {
			return fmt.Errorf("quorum ratio must be in (0, 1]")
		}
		cfg.Merge.QuorumRatio = f
	case "trace.enabled":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid bool %q", value)
		}
		cfg.Trace.Enabled = b
	case "trace.db_path":
		cfg.Trace.DBPath = value
	case "inbox.dir":
		cfg.Inbox.Dir = value
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}
