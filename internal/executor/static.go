package executor

import (
	"context"

	"github.com/ShayCichocki/hive/pkg/models"
)

// Static is an executor that returns a fixed response payload.
// It covers the family of placeholder responders that answer every
// request with canned content.
type Static struct {
	name     string
	caps     models.CapabilitySet
	response models.Payload
}

// NewStatic creates a Static executor with the given canned response.
func NewStatic(name string, caps models.CapabilitySet, response models.Payload) *Static {
	return &Static{name: name, caps: caps, response: response}
}

// Name returns the executor identifier.
func (s *Static) Name() string { return s.name }

// Capabilities returns the declared capability set.
func (s *Static) Capabilities() models.CapabilitySet { return s.caps }

// Execute returns a copy of the configured response.
// The input payload is echoed back under the "request" key.
func (s *Static) Execute(ctx context.Context, payload models.Payload) (models.Payload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := s.response.Clone()
	if out == nil {
		out = models.Payload{}
	}
	out["request"] = payload
	return out, nil
}
