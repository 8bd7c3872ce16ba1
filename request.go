package toolchat

import "fmt"

// Request carries model selection and generation parameters.
// The gateway uses its own defaults when fields are zero/nil.
type Request struct {
	Model        string // model ID, gateway-specific; empty = gateway default
	SystemPrompt string
	Messages     []Message
	Tools        []Capability
	MaxTokens    int      // 0 = gateway default
	Temperature  *float64 // nil = gateway default
}

// Validate checks universal constraints on Request.
// Gateway implementations may apply additional gateway-specific validation.
func (r Request) Validate() error {
	if r.Temperature != nil {
		if *r.Temperature < 0 || *r.Temperature > 2 {
			return fmt.Errorf("temperature must be in [0, 2], got %g: %w", *r.Temperature, ErrValidation)
		}
	}
	if r.MaxTokens < 0 {
		return fmt.Errorf("max_tokens must be non-negative, got %d: %w", r.MaxTokens, ErrValidation)
	}
	seen := make(map[string]bool, len(r.Tools))
	for _, t := range r.Tools {
		if t.Name == "" {
			return fmt.Errorf("tool name must not be empty: %w", ErrValidation)
		}
		if seen[t.Name] {
			return fmt.Errorf("tool %q advertised twice: %w", t.Name, ErrValidation)
		}
		seen[t.Name] = true
	}
	return nil
}
