package port

import (
	"context"
	"encoding/json"
)

// Attachment is a binary part (image or PDF) sent alongside a prompt.
type Attachment struct {
	Filename string
	Data     []byte
	MimeType string
}

// CompletionRequest is a single provider call.
type CompletionRequest struct {
	Prompt      string
	Attachments []Attachment
	// JSONSchema, when set, asks the backend for a JSON response. Backends
	// that support native response schemas may forward it.
	JSONSchema  json.RawMessage
	MaxTokens   int
	Temperature float64
}

// CompletionResponse is the raw text returned by a provider.
type CompletionResponse struct {
	Text         string
	ModelUsed    string
	FinishReason string
}

// LLMBackend abstracts a generative model provider.
type LLMBackend interface {
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}

// StructuredRequest asks for output validated against a JSON Schema.
type StructuredRequest struct {
	SchemaName  string
	Schema      json.RawMessage
	Prompt      string
	Attachments []Attachment
	// MaxRetries is the number of additional attempts after the first
	// validation failure.
	MaxRetries int
}

// ModelGateway is the schema-validated model capability used by the extraction pipeline.
type ModelGateway interface {
	// CompleteStructured decodes a schema-valid response into out.
	CompleteStructured(ctx context.Context, req StructuredRequest, out any) error
	// CompleteText performs unstructured completion with no validation.
	CompleteText(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error)
}
