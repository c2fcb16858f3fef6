package claude

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"reliefdocs/internal/config"
	"reliefdocs/internal/domain"
	"reliefdocs/internal/llm"
	"reliefdocs/internal/port"
)

const (
	apiURL     = "https://api.anthropic.com/v1/messages"
	apiVersion = "2023-06-01"
)

// Backend implements port.LLMBackend using the Anthropic Messages API.
type Backend struct {
	apiKey     string
	model      string
	endpoint   string
	maxRetries int
	client     *http.Client
}

// NewBackend creates a Claude backend from a provider config.
func NewBackend(cfg *config.LLMProviderConfig) *Backend {
	endpoint := apiURL
	if cfg.BaseURL != "" {
		endpoint = strings.TrimRight(cfg.BaseURL, "/") + "/messages"
	}
	return newBackend(cfg, endpoint)
}

// NewBackendWithEndpoint creates a backend pointing at a custom API endpoint (for testing).
func NewBackendWithEndpoint(cfg *config.LLMProviderConfig, endpoint string) *Backend {
	return newBackend(cfg, endpoint)
}

func newBackend(cfg *config.LLMProviderConfig, endpoint string) *Backend {
	model := cfg.DefaultModel
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}
	return &Backend{
		apiKey:     cfg.APIKey,
		model:      model,
		endpoint:   endpoint,
		maxRetries: cfg.MaxTransportRetries,
		client:     &http.Client{Timeout: llm.Timeout(cfg.TimeoutSecs)},
	}
}

func (b *Backend) Complete(ctx context.Context, req port.CompletionRequest) (*port.CompletionResponse, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	reqBody := map[string]interface{}{
		"model":       b.model,
		"max_tokens":  maxTokens,
		"temperature": req.Temperature,
		"messages": []map[string]interface{}{
			{
				"role":    "user",
				"content": buildContentBlocks(req),
			},
		},
	}

	respBody, err := llm.PostJSON(ctx, b.client, llm.HTTPCall{
		Provider: "claude",
		Endpoint: b.endpoint,
		Headers: map[string]string{
			"x-api-key":         b.apiKey,
			"anthropic-version": apiVersion,
		},
		Body:       reqBody,
		MaxRetries: b.maxRetries,
	})
	if err != nil {
		return nil, err
	}

	return parseResponse(respBody, b.model)
}

func buildContentBlocks(req port.CompletionRequest) []map[string]interface{} {
	var blocks []map[string]interface{}

	for _, a := range req.Attachments {
		blockType := "image"
		if a.MimeType == domain.MIMEPDF {
			blockType = "document"
		}
		blocks = append(blocks, map[string]interface{}{
			"type": blockType,
			"source": map[string]interface{}{
				"type":       "base64",
				"media_type": a.MimeType,
				"data":       base64.StdEncoding.EncodeToString(a.Data),
			},
		})
	}

	blocks = append(blocks, map[string]interface{}{
		"type": "text",
		"text": req.Prompt,
	})

	return blocks
}

// apiResponse models the Anthropic Messages API response.
type apiResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

func parseResponse(body []byte, model string) (*port.CompletionResponse, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}

	if len(resp.Content) == 0 {
		return nil, fmt.Errorf("empty response from API")
	}

	var sb strings.Builder
	for _, c := range resp.Content {
		if c.Type == "text" {
			sb.WriteString(c.Text)
		}
	}

	return &port.CompletionResponse{
		Text:         sb.String(),
		ModelUsed:    model,
		FinishReason: resp.StopReason,
	}, nil
}
