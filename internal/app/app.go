// Package app assembles the extraction pipeline from configuration so the
// HTTP server and the command-line tool run the same components.
package app

import (
	"fmt"
	"log"

	"reliefdocs/internal/catalog"
	"reliefdocs/internal/config"
	"reliefdocs/internal/llm"
	"reliefdocs/internal/llm/claude"
	"reliefdocs/internal/llm/gemini"
	"reliefdocs/internal/llm/openai"
	"reliefdocs/internal/ocr"
	"reliefdocs/internal/port"
	"reliefdocs/internal/service"
)

// Pipeline holds the wired evidence service and the collaborators callers
// report on directly.
type Pipeline struct {
	Service service.EvidenceService
	OCR     *ocr.Extractor
	Catalog *catalog.Catalog
}

// RegisterProviders adds every built-in model provider to the llm registry.
func RegisterProviders() {
	llm.RegisterProvider("gemini", func(cfg *config.LLMProviderConfig) (port.LLMBackend, error) {
		return gemini.NewBackend(cfg), nil
	})
	llm.RegisterProvider("openai", func(cfg *config.LLMProviderConfig) (port.LLMBackend, error) {
		return openai.NewBackend(cfg), nil
	})
	// CommonStack is an OpenAI-compatible relay with its own base URL and model defaults.
	llm.RegisterProvider("commonstack", func(cfg *config.LLMProviderConfig) (port.LLMBackend, error) {
		return openai.NewCommonstackBackend(cfg), nil
	})
	llm.RegisterProvider("claude", func(cfg *config.LLMProviderConfig) (port.LLMBackend, error) {
		return claude.NewBackend(cfg), nil
	})
}

// NewPipeline builds the backend chain, gateway, OCR extractor and evidence
// service. metrics may be nil.
func NewPipeline(cfg *config.Config, metrics port.PipelineMetrics) (*Pipeline, error) {
	RegisterProviders()

	backend, err := llm.NewBackendChain(&cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize llm backends: %w", err)
	}
	for _, pc := range cfg.LLM.ProviderChain() {
		if pc.APIKey == "" {
			log.Printf("WARNING: llm provider %q has no API key; model calls will fail and extraction will degrade", pc.Provider)
		}
	}

	var gatewayOpts []llm.GatewayOption
	var serviceOpts []service.Option
	if metrics != nil {
		gatewayOpts = append(gatewayOpts, llm.WithMetrics(metrics))
		serviceOpts = append(serviceOpts, service.WithMetrics(metrics))
	}
	gateway := llm.NewGateway(backend, gatewayOpts...)

	// Catalog is built once and shared read-only.
	cat := catalog.Default()

	textExtractor := ocr.NewExtractor(cfg.OCR)
	tools := textExtractor.Available()
	log.Printf("OCR tools: tesseract=%t pdf_rasterizer=%t", tools.Tesseract, tools.Rasterizer)

	return &Pipeline{
		Service: service.NewEvidenceService(cat, gateway, textExtractor, cfg.Evidence, serviceOpts...),
		OCR:     textExtractor,
		Catalog: cat,
	}, nil
}
