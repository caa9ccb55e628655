package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadFromPath(t *testing.T) {
	path := writeConfigFile(t, `
anthropic:
  model: claude-haiku-test
swarm:
  max_in_flight: 8
  executor_timeout: 45s
merge:
  policy: quorum
  quorum_ratio: 0.75
trace:
  enabled: false
`)

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}

	if cfg.Anthropic.Model != "claude-haiku-test" {
		t.Errorf("model = %q", cfg.Anthropic.Model)
	}
	if cfg.Swarm.MaxInFlight != 8 {
		t.Errorf("max_in_flight = %d, want 8", cfg.Swarm.MaxInFlight)
	}
	if cfg.Swarm.ExecutorTimeout != 45*time.Second {
		t.Errorf("executor_timeout = %s, want 45s", cfg.Swarm.ExecutorTimeout)
	}
	if cfg.Merge.Policy != "quorum" || cfg.Merge.QuorumRatio != 0.75 {
		t.Errorf("merge = %q/%v", cfg.Merge.Policy, cfg.Merge.QuorumRatio)
	}
	if cfg.Trace.Enabled {
		t.Error("trace should be disabled")
	}
}

func TestLoadFromPath_DefaultsApplyWhenUnset(t *testing.T) {
	path := writeConfigFile(t, `
anthropic:
  api_key: sk-ant-test
`)

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}

	want := Default()
	if cfg.Swarm.MaxInFlight != want.Swarm.MaxInFlight {
		t.Errorf("max_in_flight = %d, want default %d", cfg.Swarm.MaxInFlight, want.Swarm.MaxInFlight)
	}
	if cfg.Merge.Policy != want.Merge.Policy {
		t.Errorf("policy = %q, want default %q", cfg.Merge.Policy, want.Merge.Policy)
	}
	if !cfg.Trace.Enabled {
		t.Error("trace should default to enabled")
	}
}

func TestLoadFromPath_ExpandsAPIKeyReference(t *testing.T) {
	t.Setenv("HIVE_TEST_KEY", "sk-ant-expanded")

	path := writeConfigFile(t, `
anthropic:
  api_key: ${HIVE_TEST_KEY}
`)

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}
	if cfg.Anthropic.APIKey != "sk-ant-expanded" {
		t.Errorf("api_key = %q, want expanded value", cfg.Anthropic.APIKey)
	}
}

func TestLoadFromPath_MissingFile(t *testing.T) {
	_, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Error("expected error for missing file")
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Swarm.MaxInFlight < 1 {
		t.Error("default max_in_flight must be positive")
	}
	if cfg.Merge.QuorumRatio <= 0 || cfg.Merge.QuorumRatio > 1 {
		t.Errorf("default quorum_ratio = %v", cfg.Merge.QuorumRatio)
	}
}
