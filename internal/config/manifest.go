package config

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"
)

// Executor type names accepted in a manifest.
const (
	ExecutorTypeStatic = "static"
	ExecutorTypeHTTP   = "http"
	ExecutorTypeLLM    = "llm"
)

// Manifest declares the executor fleet for a swarm. Declaration order
// matters: it breaks assignment ties between equally specific executors.
type Manifest struct {
	Executors []ExecutorSpec `yaml:"executors"`
}

// Duration wraps time.Duration so YAML values like "30s" parse.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// ExecutorSpec declares a single executor.
type ExecutorSpec struct {
	// Name is the unique executor name.
	Name string `yaml:"name"`
	// Type is static, http, or llm.
	Type string `yaml:"type"`
	// Capabilities lists the capability tags this executor covers.
	Capabilities []string `yaml:"capabilities"`
	// Timeout is the per-invocation deadline; 0 uses the swarm default.
	Timeout Duration `yaml:"timeout"`
	// Retries is the total attempt count; 0 uses the swarm default.
	Retries int `yaml:"retries"`

	// Response is the canned payload for static executors.
	Response map[string]any `yaml:"response"`
	// Endpoint is the URL for http executors.
	Endpoint string `yaml:"endpoint"`
	// SystemPrompt overrides the default prompt for llm executors.
	SystemPrompt string `yaml:"system_prompt"`
}

// LoadManifest reads and validates an executor manifest YAML file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}

	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("manifest %s: %w", path, err)
	}

	return &m, nil
}

// Validate checks the manifest for structural problems.
func (m *Manifest) Validate() error {
	if len(m.Executors) == 0 {
		return fmt.Errorf("no executors declared")
	}

	seen := make(map[string]bool, len(m.Executors))
	for i, spec := range m.Executors {
		if spec.Name == "" {
			return fmt.Errorf("executor %d has no name", i)
		}
		if seen[spec.Name] {
			return fmt.Errorf("duplicate executor name %q", spec.Name)
		}
		seen[spec.Name] = true

		if len(spec.Capabilities) == 0 {
			return fmt.Errorf("executor %q declares no capabilities", spec.Name)
		}

		switch spec.Type {
		case ExecutorTypeStatic:
		case ExecutorTypeHTTP:
			if spec.Endpoint == "" {
				return fmt.Errorf("executor %q has type http but no endpoint", spec.Name)
			}
		case ExecutorTypeLLM:
		default:
			return fmt.Errorf("executor %q has unknown type %q", spec.Name, spec.Type)
		}
	}

	return nil
}
