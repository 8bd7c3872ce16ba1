package toolchat

import (
	"context"
	"encoding/json"
)

// Tool is a named, schema-described function the model may invoke.
//
// Execute always returns text the model can read, typically a JSON payload
// with a "success" flag. Failures inside the tool are reported in that
// payload rather than returned as errors, so the model can see them and
// adapt. Arguments are the raw JSON object produced by the model; they are
// not validated against Schema before Execute is called.
type Tool interface {
	Name() string
	Description() string
	Schema() Schema
	Execute(ctx context.Context, args json.RawMessage) string
}

// Capability is the advertisement of one tool sent with every inference call.
type Capability struct {
	Name        string
	Description string
	Schema      Schema
}

// CapabilityOf returns the advertisement for t.
func CapabilityOf(t Tool) Capability {
	return Capability{
		Name:        t.Name(),
		Description: t.Description(),
		Schema:      t.Schema(),
	}
}

// ToolDispatcher routes tool invocations by name.
type ToolDispatcher interface {
	Capabilities() []Capability
	Dispatch(ctx context.Context, name string, args json.RawMessage) string
	Names() []string
}

// ErrorPayload renders msg in the failure shape tools report:
// {"success":false,"error":msg}.
func ErrorPayload(msg string) string {
	data, _ := json.Marshal(struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}{Error: msg})
	return string(data)
}

// IsErrorPayload reports whether a tool result is a JSON object whose
// "success" member is false.
func IsErrorPayload(out string) bool {
	var p struct {
		Success *bool `json:"success"`
	}
	if err := json.Unmarshal([]byte(out), &p); err != nil || p.Success == nil {
		return false
	}
	return !*p.Success
}
