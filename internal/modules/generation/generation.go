// Package generation adapts external LLM providers into the single
// generate-a-study-guide call the cache coordinator consumes. Failures of any
// kind (transport, quota, malformed output) surface as *Error so callers can
// present them as retriable without inspecting provider details.
package generation

import "fmt"

// Payload is the generated study-guide content for one input.
type Payload struct {
	Summary           string   `json:"summary"`
	Interpretation    string   `json:"interpretation"`
	RelatedRefs       []string `json:"related_refs"`
	ReflectionPrompts []string `json:"reflection_prompts"`
	ApplicationPoints []string `json:"application_points"`
}

// Error is the retriable upstream-failure class. Nothing is persisted when
// generation fails, so "try again" is always safe.
type Error struct {
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("generation failed: %s: %v", e.Reason, e.Err)
	}
	return "generation failed: " + e.Reason
}

func (e *Error) Unwrap() error { return e.Err }

func failf(err error, format string, args ...interface{}) error {
	return &Error{Reason: fmt.Sprintf(format, args...), Err: err}
}
