package toolchat

import "encoding/json"

// Schema is the subset of JSON Schema used to describe tool parameters.
// The top-level schema of a tool is always of Type "object".
type Schema struct {
	Type        string             `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Required    []string           `json:"required,omitempty"`
	Enum        []string           `json:"enum,omitempty"`
	Default     any                `json:"default,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
}

// ObjectSchema returns an object schema with the given properties and
// required parameter names.
func ObjectSchema(props map[string]*Schema, required ...string) Schema {
	return Schema{Type: "object", Properties: props, Required: required}
}

// objectWire mirrors Schema but always emits properties.
type objectWire struct {
	Type        string             `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties"`
	Required    []string           `json:"required,omitempty"`
	Enum        []string           `json:"enum,omitempty"`
	Default     any                `json:"default,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
}

// JSON returns the schema encoded as JSON. An object schema always carries a
// properties member, which some services require even when it is empty.
func (s Schema) JSON() json.RawMessage {
	var v any = s
	if s.Type == "object" {
		w := objectWire(s)
		if w.Properties == nil {
			w.Properties = map[string]*Schema{}
		}
		v = w
	}
	// Schema contains only marshalable fields; Default is supplied by tools
	// as plain JSON values.
	data, _ := json.Marshal(v)
	return data
}

// Map returns the schema as a generic JSON object.
func (s Schema) Map() map[string]any {
	var m map[string]any
	_ = json.Unmarshal(s.JSON(), &m)
	return m
}
