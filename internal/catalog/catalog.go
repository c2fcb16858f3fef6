// Package catalog holds the fixed list of evidence types a complete relief
// submission is expected to contain. The same catalog drives extraction
// prompts and missing-evidence detection.
package catalog

import (
	"fmt"
	"strings"
)

// DocumentRequirement is one evidence type expected in a complete submission.
type DocumentRequirement struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	RequiredFields     []string `json:"required_fields"`
	DateRange          string   `json:"date_range"`
	Forms              string   `json:"forms"`
	ActionableOutcomes string   `json:"actionable_outcomes"`
}

// Catalog is an immutable, ordered set of requirements plus the lowercase
// keywords that satisfy each one. Build it once at startup and share it.
type Catalog struct {
	requirements []DocumentRequirement
	keywords     map[string][]string
}

// New builds a Catalog, copying its inputs so later mutation by the caller
// cannot leak in. Requirement IDs must be unique.
func New(reqs []DocumentRequirement, keywords map[string][]string) (*Catalog, error) {
	seen := make(map[string]bool, len(reqs))
	out := make([]DocumentRequirement, len(reqs))
	for i, r := range reqs {
		if r.ID == "" {
			return nil, fmt.Errorf("requirement %d has empty id", i)
		}
		if seen[r.ID] {
			return nil, fmt.Errorf("duplicate requirement id: %s", r.ID)
		}
		seen[r.ID] = true
		r.RequiredFields = append([]string(nil), r.RequiredFields...)
		if r.Forms == "" {
			r.Forms = "None"
		}
		out[i] = r
	}

	kw := make(map[string][]string, len(keywords))
	for id, words := range keywords {
		lowered := make([]string, 0, len(words))
		for _, w := range words {
			w = strings.ToLower(strings.TrimSpace(w))
			if w != "" {
				lowered = append(lowered, w)
			}
		}
		kw[id] = lowered
	}

	return &Catalog{requirements: out, keywords: kw}, nil
}

// MustNew is New for static tables; it panics on a malformed catalog.
func MustNew(reqs []DocumentRequirement, keywords map[string][]string) *Catalog {
	c, err := New(reqs, keywords)
	if err != nil {
		panic(err)
	}
	return c
}

// Len returns the number of requirements.
func (c *Catalog) Len() int {
	return len(c.requirements)
}

// Requirements returns a copy of the requirements in catalog order.
func (c *Catalog) Requirements() []DocumentRequirement {
	out := make([]DocumentRequirement, len(c.requirements))
	for i, r := range c.requirements {
		r.RequiredFields = append([]string(nil), r.RequiredFields...)
		out[i] = r
	}
	return out
}

// Keywords returns the match keywords for a requirement id. A requirement
// without an explicit keyword list is matched by its own id.
func (c *Catalog) Keywords(id string) []string {
	if kw, ok := c.keywords[id]; ok && len(kw) > 0 {
		return append([]string(nil), kw...)
	}
	return []string{strings.ToLower(id)}
}

// PromptBlock renders the catalog as prompt lines.
func (c *Catalog) PromptBlock() string {
	lines := make([]string, 0, len(c.requirements))
	for _, r := range c.requirements {
		fields := "(visual only)"
		if len(r.RequiredFields) > 0 {
			fields = strings.Join(r.RequiredFields, ", ")
		}
		lines = append(lines, fmt.Sprintf("- %s: required_fields=%s; date_range=%s; forms=%s; outcomes=%s",
			r.Name, fields, r.DateRange, r.Forms, r.ActionableOutcomes))
	}
	return strings.Join(lines, "\n")
}
