package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"reliefdocs/internal/port"
)

const (
	structuredTemperature = 0.1
	structuredMaxTokens   = 16384
)

// Gateway turns a raw LLMBackend into a schema-validated model gateway.
// It implements port.ModelGateway.
type Gateway struct {
	backend port.LLMBackend
	schemas *schemaCache
	metrics port.PipelineMetrics
}

// GatewayOption configures a Gateway.
type GatewayOption func(*Gateway)

// WithMetrics records every structured call on m.
func WithMetrics(m port.PipelineMetrics) GatewayOption {
	return func(g *Gateway) { g.metrics = m }
}

// NewGateway wraps backend with JSON extraction, schema validation and
// retry-on-validation-failure.
func NewGateway(backend port.LLMBackend, opts ...GatewayOption) *Gateway {
	g := &Gateway{backend: backend, schemas: newSchemaCache()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Gateway) observe(schema string, attempts int, outcome string) {
	if g.metrics != nil {
		g.metrics.ObserveStructuredCall(schema, attempts, outcome)
	}
}

// CompleteStructured sends req and decodes a schema-valid response into out.
// A response that cannot be parsed, fails the schema, or cannot be decoded
// into out is retried up to req.MaxRetries more times with the error appended
// to the prompt. After 1+MaxRetries failed attempts the last *ValidationError
// is returned. Transport errors are returned immediately.
func (g *Gateway) CompleteStructured(ctx context.Context, req port.StructuredRequest, out any) error {
	schema, err := g.schemas.get(req.SchemaName, req.Schema)
	if err != nil {
		return err
	}

	basePrompt := withSchemaInstructions(req.Prompt, req.Schema)
	prompt := basePrompt
	maxRetries := req.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	var lastErr *ValidationError
	for attempt := 1; attempt <= 1+maxRetries; attempt++ {
		if lastErr != nil {
			prompt = repairPrompt(basePrompt, lastErr.Output, lastErr.Err)
		}

		resp, err := g.backend.Complete(ctx, port.CompletionRequest{
			Prompt:      prompt,
			Attachments: req.Attachments,
			JSONSchema:  req.Schema,
			MaxTokens:   structuredMaxTokens,
			Temperature: structuredTemperature,
		})
		if err != nil {
			outcome := port.OutcomeTransportError
			if ctx.Err() != nil {
				outcome = port.OutcomeCancelled
			}
			g.observe(req.SchemaName, attempt, outcome)
			return fmt.Errorf("%s completion: %w", req.SchemaName, err)
		}

		verr := decodeStructured(schema, resp.Text, out)
		if verr == nil {
			g.observe(req.SchemaName, attempt, port.OutcomeOK)
			return nil
		}

		lastErr = &ValidationError{
			Schema:  req.SchemaName,
			Attempt: attempt,
			Output:  resp.Text,
			Err:     verr,
		}
		log.Printf("llm.Gateway: %s validation failed (attempt %d/%d): %v", req.SchemaName, attempt, 1+maxRetries, verr)
	}

	g.observe(req.SchemaName, 1+maxRetries, port.OutcomeValidationFailed)
	return lastErr
}

// CompleteText performs unstructured completion with no validation.
func (g *Gateway) CompleteText(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error) {
	if maxTokens <= 0 {
		maxTokens = 500
	}
	resp, err := g.backend.Complete(ctx, port.CompletionRequest{
		Prompt:      prompt,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("text completion: %w", err)
	}
	return resp.Text, nil
}

func decodeStructured(schema *jsonschema.Schema, text string, out any) error {
	parsed, err := parseStructuredJSON(text)
	if err != nil {
		return err
	}
	if err := validateStructuredJSON(schema, parsed); err != nil {
		return err
	}

	if err := json.Unmarshal(parsed, out); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return fmt.Errorf("field %q: expected %s", typeErr.Field, typeErr.Type)
		}
		return fmt.Errorf("decoding structured output: %w", err)
	}
	return nil
}
