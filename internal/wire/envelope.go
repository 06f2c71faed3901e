package wire

import (
	"encoding/json"
	"fmt"
)

// Envelope is a backend reply: {"success": bool, "message": string?, ...}.
// Payload keeps every other top-level key undecoded.
type Envelope struct {
	Success bool
	Message string
	Payload map[string]json.RawMessage
}

func (e *Envelope) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	if v, ok := raw["success"]; ok {
		if err := json.Unmarshal(v, &e.Success); err != nil {
			return fmt.Errorf("envelope success: %w", err)
		}
		delete(raw, "success")
	}
	if v, ok := raw["message"]; ok {
		// Some replies carry a non-string message; keep whatever text we can.
		if err := json.Unmarshal(v, &e.Message); err != nil {
			e.Message = string(v)
		}
		delete(raw, "message")
	}
	e.Payload = raw
	return nil
}

// Has reports whether key is present and not null.
func (e *Envelope) Has(key string) bool {
	v, ok := e.Payload[key]
	return ok && string(v) != "null"
}

// Object decodes Payload[key] as a JSON object. It returns nil when the key
// is absent or null.
func (e *Envelope) Object(key string) (map[string]any, error) {
	if !e.Has(key) {
		return nil, nil
	}
	var m map[string]any
	if err := json.Unmarshal(e.Payload[key], &m); err != nil {
		return nil, fmt.Errorf("decode %q: %w", key, err)
	}
	return m, nil
}

// Objects decodes Payload[key] as an array of JSON objects.
func (e *Envelope) Objects(key string) ([]map[string]any, error) {
	if !e.Has(key) {
		return nil, nil
	}
	var ms []map[string]any
	if err := json.Unmarshal(e.Payload[key], &ms); err != nil {
		return nil, fmt.Errorf("decode %q: %w", key, err)
	}
	return ms, nil
}

// Decode unmarshals Payload[key] into dst. Absent keys leave dst untouched.
func (e *Envelope) Decode(key string, dst any) error {
	if !e.Has(key) {
		return nil
	}
	if err := json.Unmarshal(e.Payload[key], dst); err != nil {
		return fmt.Errorf("decode %q: %w", key, err)
	}
	return nil
}
