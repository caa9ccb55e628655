package main

import (
	"fmt"
	"os"

	"github.com/ShayCichocki/hive/internal/config"
	"github.com/ShayCichocki/hive/internal/coordinator"
	"github.com/ShayCichocki/hive/internal/decompose"
	"github.com/ShayCichocki/hive/internal/executor"
	"github.com/ShayCichocki/hive/internal/llm"
	"github.com/ShayCichocki/hive/internal/merge"
	"github.com/ShayCichocki/hive/internal/trace"
	"github.com/ShayCichocki/hive/pkg/models"
)

// defaultManifestName is looked for in the working directory when the
// config names no manifest.
const defaultManifestName = "executors.yaml"

// swarmBundle holds a constructed swarm and the resources behind it.
type swarmBundle struct {
	swarm    *coordinator.Swarm
	registry *coordinator.Registry
	tracker  *llm.TokenTracker
	recorder *trace.Recorder
	store    *trace.Store
}

// close releases the bundle's resources in dependency order.
func (b *swarmBundle) close() {
	b.swarm.Close()
	if b.recorder != nil {
		b.recorder.Close()
	}
	if b.store != nil {
		b.store.Close()
	}
}

// buildSwarm wires a swarm from configuration: manifest executors,
// decomposer, merge policy, and trace recorder.
func buildSwarm(cfg *config.Config, useLLMDecomposer bool) (*swarmBundle, error) {
	manifest, err := loadManifest(cfg)
	if err != nil {
		return nil, err
	}

	var client *llm.Client
	if useLLMDecomposer || manifestNeedsLLM(manifest) {
		client, err = buildClient(cfg)
		if err != nil {
			return nil, err
		}
	}

	registry := coordinator.NewRegistry()
	for _, spec := range manifest.Executors {
		exec, err := buildExecutor(cfg, spec, client)
		if err != nil {
			return nil, err
		}
		if err := registry.Register(exec); err != nil {
			return nil, fmt.Errorf("register executor %q: %w", spec.Name, err)
		}
	}

	var decomposer coordinator.Decomposer = decompose.Ops{}
	if useLLMDecomposer {
		decomposer = decompose.NewLLM(client)
	}

	policy, err := buildPolicy(cfg)
	if err != nil {
		return nil, err
	}

	bundle := &swarmBundle{registry: registry}
	if client != nil {
		bundle.tracker = client.Tracker()
	}

	opts := []coordinator.Option{
		coordinator.WithMaxInFlight(cfg.Swarm.MaxInFlight),
	}
	if cfg.Trace.Enabled {
		dbPath := cfg.Trace.DBPath
		if dbPath == "" {
			dbPath = trace.GlobalDBPath()
		}
		store, err := trace.Open(dbPath)
		if err != nil {
			return nil, fmt.Errorf("open trace store: %w", err)
		}
		bundle.store = store
		bundle.recorder = trace.NewRecorder(store, 64)
		opts = append(opts, coordinator.WithRecorder(bundle.recorder))
	}

	bundle.swarm = coordinator.New(decomposer, registry, policy, opts...)
	return bundle, nil
}

// loadManifest resolves the manifest path and loads it.
func loadManifest(cfg *config.Config) (*config.Manifest, error) {
	path := cfg.Swarm.Manifest
	if path == "" {
		if _, err := os.Stat(defaultManifestName); err != nil {
			return nil, fmt.Errorf("no executor manifest: set swarm.manifest or create %s", defaultManifestName)
		}
		path = defaultManifestName
	}
	return config.LoadManifest(path)
}

// manifestNeedsLLM reports whether any executor requires a model client.
func manifestNeedsLLM(m *config.Manifest) bool {
	for _, spec := range m.Executors {
		if spec.Type == config.ExecutorTypeLLM {
			return true
		}
	}
	return false
}

// buildClient creates the Anthropic completion client from configuration.
func buildClient(cfg *config.Config) (*llm.Client, error) {
	apiKey := ""
	if !cfg.Anthropic.UseBedrock {
		key, _, err := config.ResolveAPIKey(cfg)
		if err != nil {
			return nil, err
		}
		apiKey = key
	}

	return llm.NewClient(llm.ClientConfig{
		Model:         cfg.Anthropic.Model,
		APIKey:        apiKey,
		UseAWSBedrock: cfg.Anthropic.UseBedrock,
		AWSRegion:     cfg.Anthropic.AWSRegion,
		AWSProfile:    cfg.Anthropic.AWSProfile,
	})
}

// buildExecutor creates one executor from its manifest entry and wraps
// it with the configured timeout and retry behavior.
func buildExecutor(cfg *config.Config, spec config.ExecutorSpec, client *llm.Client) (executor.Executor, error) {
	caps := models.NewCapabilitySet(spec.Capabilities...)

	var base executor.Executor
	switch spec.Type {
	case config.ExecutorTypeStatic:
		base = executor.NewStatic(spec.Name, caps, models.Payload(spec.Response))

	case config.ExecutorTypeHTTP:
		base = executor.NewHTTPJSON(spec.Name, caps, spec.Endpoint, spec.Timeout.Std())

	case config.ExecutorTypeLLM:
		if client == nil {
			return nil, fmt.Errorf("executor %q needs a model client", spec.Name)
		}
		base = executor.NewLLM(spec.Name, caps, client).WithSystemPrompt(spec.SystemPrompt)

	default:
		return nil, fmt.Errorf("executor %q has unknown type %q", spec.Name, spec.Type)
	}

	timeout := spec.Timeout.Std()
	if timeout <= 0 {
		timeout = cfg.Swarm.ExecutorTimeout
	}
	base = executor.WithTimeout(base, timeout)

	retries := spec.Retries
	if retries <= 0 {
		retries = cfg.Swarm.RetryAttempts
	}
	return executor.WithRetry(base, retries, cfg.Swarm.RetryBackoff), nil
}

// buildPolicy selects the merge policy from configuration.
func buildPolicy(cfg *config.Config) (coordinator.MergePolicy, error) {
	switch cfg.Merge.Policy {
	case "", "all":
		return merge.All{}, nil
	case "quorum":
		return merge.NewQuorum(cfg.Merge.QuorumRatio), nil
	default:
		return nil, fmt.Errorf("unknown merge policy %q", cfg.Merge.Policy)
	}
}
