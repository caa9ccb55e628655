package executor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ShayCichocki/hive/pkg/models"
)

// Completer is the LLM completion surface the executor needs.
// *llm.Client satisfies it.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// llmSystemPrompt instructs the model to reply with a single JSON object.
const llmSystemPrompt = `You are a task execution worker in a swarm.
You receive one subtask as a JSON object and must produce its result.
Respond with a single JSON object containing the result fields.
Do not include any text outside the JSON object.`

// LLM is an executor that prompts a model with the subtask payload and
// parses a JSON object reply.
type LLM struct {
	name   string
	caps   models.CapabilitySet
	client Completer
	system string
}

// NewLLM creates an LLM executor backed by the given completion client.
func NewLLM(name string, caps models.CapabilitySet, client Completer) *LLM {
	return &LLM{name: name, caps: caps, client: client, system: llmSystemPrompt}
}

// WithSystemPrompt overrides the default system prompt and returns the
// executor for chaining.
func (l *LLM) WithSystemPrompt(prompt string) *LLM {
	if prompt != "" {
		l.system = prompt
	}
	return l
}

// Name returns the executor identifier.
func (l *LLM) Name() string { return l.name }

// Capabilities returns the declared capability set.
func (l *LLM) Capabilities() models.CapabilitySet { return l.caps }

// Execute prompts the model and decodes the JSON object in its reply.
func (l *LLM) Execute(ctx context.Context, payload models.Payload) (models.Payload, error) {
	request, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode subtask payload: %w", err)
	}

	reply, err := l.client.Complete(ctx, l.system, string(request))
	if err != nil {
		return nil, fmt.Errorf("model completion: %w", err)
	}

	result, err := ParseObjectReply(reply)
	if err != nil {
		return nil, fmt.Errorf("parse model reply: %w", err)
	}

	return result, nil
}

// ParseObjectReply extracts and decodes the first JSON object in a model
// reply. Models sometimes wrap the object in prose or code fences.
func ParseObjectReply(reply string) (models.Payload, error) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("no JSON object found in reply")
	}

	var result models.Payload
	if err := json.Unmarshal([]byte(reply[start:end+1]), &result); err != nil {
		return nil, fmt.Errorf("decode JSON object: %w", err)
	}

	return result, nil
}
