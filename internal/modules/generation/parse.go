package generation

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// parsePayload decodes the model's JSON output, tolerating code fences and
// leading/trailing prose that models sometimes emit despite instructions.
func parsePayload(raw string) (*Payload, error) {
	var payload Payload
	if err := unmarshalModelJSON(raw, &payload); err != nil {
		return nil, err
	}

	payload.Summary = strings.TrimSpace(payload.Summary)
	payload.Interpretation = strings.TrimSpace(payload.Interpretation)
	payload.RelatedRefs = trimAll(payload.RelatedRefs)
	payload.ReflectionPrompts = trimAll(payload.ReflectionPrompts)
	payload.ApplicationPoints = trimAll(payload.ApplicationPoints)

	if payload.Summary == "" {
		return nil, errors.New("summary is empty in AI response")
	}
	return &payload, nil
}

func unmarshalModelJSON(raw string, out interface{}) error {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```JSON")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	if err := json.Unmarshal([]byte(cleaned), out); err == nil {
		return nil
	}

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start >= 0 && end > start {
		if err := json.Unmarshal([]byte(cleaned[start:end+1]), out); err == nil {
			return nil
		}
	}

	return fmt.Errorf("invalid JSON response from AI")
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
