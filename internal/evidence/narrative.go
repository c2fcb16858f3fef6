package evidence

import (
	"context"
	"fmt"
	"log"
	"strings"

	"reliefdocs/internal/domain"
	"reliefdocs/internal/port"
)

const (
	narrativeMaxTokens   = 400
	narrativeTemperature = 0.3
)

// Narrator turns damage claims into a short paragraph for application letters.
type Narrator struct {
	gateway port.ModelGateway
}

// NewNarrator creates a Narrator backed by gateway.
func NewNarrator(gateway port.ModelGateway) *Narrator {
	return &Narrator{gateway: gateway}
}

// Narrate summarises claims. When the model call fails or returns nothing it
// falls back to a deterministic listing, so it only errors on cancellation.
func (n *Narrator) Narrate(ctx context.Context, claims []domain.DamageClaim, ectx domain.EvidenceContext) (string, error) {
	if len(claims) == 0 {
		return "No physical damage was documented in the submitted photos.", nil
	}

	text, err := n.gateway.CompleteText(ctx, narrativePrompt(claims, ectx), narrativeMaxTokens, narrativeTemperature)
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	if err != nil {
		log.Printf("evidence.Narrator: narrative generation failed, using fallback: %v", err)
		return fallbackNarrative(claims), nil
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return fallbackNarrative(claims), nil
	}
	return text, nil
}

func fallbackNarrative(claims []domain.DamageClaim) string {
	lines := make([]string, 0, len(claims)+1)
	lines = append(lines, fmt.Sprintf("The submitted photos document %d damage observation(s):", len(claims)))
	for _, c := range claims {
		line := "- " + c.Label
		if c.Detail != "" {
			line += ": " + c.Detail
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
