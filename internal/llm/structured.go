package llm

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// schemaCache compiles each named schema once per process.
type schemaCache struct {
	mu       sync.Mutex
	compiled map[string]*jsonschema.Schema
}

func newSchemaCache() *schemaCache {
	return &schemaCache{compiled: make(map[string]*jsonschema.Schema)}
}

func (c *schemaCache) get(name string, raw json.RawMessage) (*jsonschema.Schema, error) {
	key := name + "\x00" + string(raw)

	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.compiled[key]; ok {
		return s, nil
	}

	compiler := jsonschema.NewCompiler()
	resource := name + ".json"
	if err := compiler.AddResource(resource, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("loading schema %s: %w", name, err)
	}
	s, err := compiler.Compile(resource)
	if err != nil {
		return nil, fmt.Errorf("compiling schema %s: %w", name, err)
	}
	c.compiled[key] = s
	return s, nil
}

// parseStructuredJSON returns the first complete JSON value in model output.
// Objects are preferred over arrays, so code fences, preambles and trailing
// commentary around the payload are skipped without special casing.
func parseStructuredJSON(content string) (json.RawMessage, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errors.New("empty structured output")
	}
	for _, open := range []byte{'{', '['} {
		if raw, ok := firstJSONValue(content, open); ok {
			return raw, nil
		}
	}
	return nil, errors.New("no JSON object or array found in structured output")
}

// firstJSONValue decodes from each occurrence of open in turn and returns the
// first one that yields a complete value, compacted.
func firstJSONValue(content string, open byte) (json.RawMessage, bool) {
	for i := strings.IndexByte(content, open); i >= 0; {
		var raw json.RawMessage
		if err := json.NewDecoder(strings.NewReader(content[i:])).Decode(&raw); err == nil {
			var buf bytes.Buffer
			if json.Compact(&buf, raw) == nil {
				return buf.Bytes(), true
			}
		}
		next := strings.IndexByte(content[i+1:], open)
		if next < 0 {
			break
		}
		i += next + 1
	}
	return nil, false
}

// validateStructuredJSON checks parsed against schema. Numbers are kept as
// json.Number so integer constraints see the literal the model wrote.
func validateStructuredJSON(schema *jsonschema.Schema, parsed json.RawMessage) error {
	dec := json.NewDecoder(bytes.NewReader(parsed))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("decoding structured output for validation: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("structured output does not match schema: %w", err)
	}
	return nil
}

// withSchemaInstructions appends the machine-checkable shape to the prompt.
func withSchemaInstructions(prompt string, schemaRaw json.RawMessage) string {
	return fmt.Sprintf(`%s

Respond with ONLY a JSON document (no markdown, no commentary) that conforms to this JSON Schema:
%s`, prompt, string(schemaRaw))
}

// repairPrompt appends the previous validation failure so the model can self-correct.
func repairPrompt(prompt string, lastOutput string, issue error) string {
	lastOutput = strings.TrimSpace(lastOutput)
	if len(lastOutput) > 12000 {
		lastOutput = lastOutput[:12000] + "\n...[truncated]"
	}

	return fmt.Sprintf(`%s

IMPORTANT: Your previous response failed validation with this error:
%v

Your previous output:
%s

Please fix the JSON output to conform to the schema.`, prompt, issue, lastOutput)
}
