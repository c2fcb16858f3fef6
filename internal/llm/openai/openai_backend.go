package openai

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
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "gpt-4o"

	// CommonstackBaseURL and CommonstackModel are the relay defaults used
	// when a commonstack provider config leaves them empty.
	CommonstackBaseURL = "https://api.commonstack.ai/v1"
	CommonstackModel   = "google/gemini-2.5-flash"
)

// Backend implements port.LLMBackend against any OpenAI-compatible
// chat/completions endpoint (OpenAI itself or a relay with a custom base URL).
type Backend struct {
	apiKey     string
	model      string
	endpoint   string
	maxRetries int
	client     *http.Client
}

// NewBackend creates an OpenAI-compatible backend from a provider config.
func NewBackend(cfg *config.LLMProviderConfig) *Backend {
	return newRelayBackend(cfg, defaultBaseURL, defaultModel)
}

// NewCommonstackBackend creates a backend for the CommonStack relay. Base URL
// and model fall back to the relay's defaults, not OpenAI's.
func NewCommonstackBackend(cfg *config.LLMProviderConfig) *Backend {
	return newRelayBackend(cfg, CommonstackBaseURL, CommonstackModel)
}

func newRelayBackend(cfg *config.LLMProviderConfig, baseURL, model string) *Backend {
	resolved := *cfg
	if resolved.BaseURL == "" {
		resolved.BaseURL = baseURL
	}
	if resolved.DefaultModel == "" {
		resolved.DefaultModel = model
	}
	return newBackend(&resolved, strings.TrimRight(resolved.BaseURL, "/")+"/chat/completions")
}

// NewBackendWithEndpoint creates a backend pointing at a custom API endpoint (for testing).
func NewBackendWithEndpoint(cfg *config.LLMProviderConfig, endpoint string) *Backend {
	return newBackend(cfg, endpoint)
}

func newBackend(cfg *config.LLMProviderConfig, endpoint string) *Backend {
	model := cfg.DefaultModel
	if model == "" {
		model = defaultModel
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
	contentBlocks := buildContentBlocks(req)

	reqBody := map[string]interface{}{
		"model":       b.model,
		"temperature": req.Temperature,
		"messages": []map[string]interface{}{
			{
				"role":    "user",
				"content": contentBlocks,
			},
		},
	}
	if req.MaxTokens > 0 {
		reqBody["max_tokens"] = req.MaxTokens
	}
	if len(req.JSONSchema) > 0 {
		reqBody["response_format"] = map[string]interface{}{
			"type": "json_object",
		}
	}

	respBody, err := llm.PostJSON(ctx, b.client, llm.HTTPCall{
		Provider:   "openai",
		Endpoint:   b.endpoint,
		Headers:    map[string]string{"Authorization": "Bearer " + b.apiKey},
		Body:       reqBody,
		MaxRetries: b.maxRetries,
	})
	if err != nil {
		return nil, err
	}

	return parseResponse(respBody, b.model)
}

func buildContentBlocks(req port.CompletionRequest) []map[string]interface{} {
	blocks := []map[string]interface{}{
		{
			"type": "text",
			"text": req.Prompt,
		},
	}

	for _, a := range req.Attachments {
		dataURI := fmt.Sprintf("data:%s;base64,%s", a.MimeType, base64.StdEncoding.EncodeToString(a.Data))
		if a.MimeType == domain.MIMEPDF {
			filename := a.Filename
			if filename == "" {
				filename = "document.pdf"
			}
			blocks = append(blocks, map[string]interface{}{
				"type": "file",
				"file": map[string]interface{}{
					"filename":  filename,
					"file_data": dataURI,
				},
			})
			continue
		}
		blocks = append(blocks, map[string]interface{}{
			"type": "image_url",
			"image_url": map[string]interface{}{
				"url": dataURI,
			},
		})
	}

	return blocks
}

// apiResponse models the Chat Completions API response.
type apiResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

func parseResponse(body []byte, model string) (*port.CompletionResponse, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from API: no choices")
	}

	if resp.Model != "" {
		model = resp.Model
	}

	return &port.CompletionResponse{
		Text:         resp.Choices[0].Message.Content,
		ModelUsed:    model,
		FinishReason: resp.Choices[0].FinishReason,
	}, nil
}
