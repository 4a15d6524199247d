package provider

import (
	"context"
	"fmt"
)

// Role identifies the author of a conversational turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is a single prior message replayed into the model's conversation.
type Turn struct {
	Role    Role
	Content string
}

// Prompt carries everything the language model needs for one generation:
// a system instruction (with the retrieved context embedded), the prior
// conversation turns in order, and the final user query.
type Prompt struct {
	System  string
	History []Turn
	Query   string
}

// Embedder converts texts into fixed-length vectors, preserving input order.
type Embedder interface {
	CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error)
}

// LLM generates a reply for a composed prompt.
type LLM interface {
	Generate(ctx context.Context, prompt Prompt) (string, error)
}

// UpstreamError wraps a failure from an external network-backed service.
// Failures are isolated to the request that triggered them.
type UpstreamError struct {
	Service string
	Err     error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Service, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }
