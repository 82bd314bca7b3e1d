package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
)

type FieldType string

const (
	FieldString  FieldType = "string"
	FieldNumber  FieldType = "number"
	FieldDate    FieldType = "date"
	FieldBoolean FieldType = "boolean"
)

func (t FieldType) Valid() bool {
	switch t {
	case FieldString, FieldNumber, FieldDate, FieldBoolean:
		return true
	default:
		return false
	}
}

type FieldSpec struct {
	Type     FieldType `json:"type"`
	Required bool      `json:"required"`
	Label    string    `json:"label"`
}

// FieldSchema declares the extra fields inventories of an equipment type carry.
// On the wire it travels as a JSON-encoded string.
type FieldSchema map[string]FieldSpec

// Attributes is the schema-less key/value bag of an inventory.
// On the wire it travels as a JSON-encoded string.
type Attributes map[string]string

var errUnexpectedShape = errors.New("neither a JSON string nor an object")

// Encode returns the wire representation. Missing labels default to the key.
func (s FieldSchema) Encode() string {
	out := make(map[string]FieldSpec, len(s))
	for key, spec := range s {
		if key == "" {
			continue
		}
		if spec.Label == "" {
			spec.Label = key
		}
		if spec.Type == "" {
			spec.Type = FieldString
		}
		out[key] = spec
	}
	b, _ := json.Marshal(out)
	return string(b)
}

// Validate reports the keys whose declared type is unknown.
func (s FieldSchema) Validate() error {
	for key, spec := range s {
		if spec.Type != "" && !spec.Type.Valid() {
			return fmt.Errorf("%w: field %q has unknown type %q", ErrInvalidInput, key, spec.Type)
		}
	}
	return nil
}

func (s FieldSchema) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Encode())
}

func (s *FieldSchema) UnmarshalJSON(b []byte) error {
	schema := FieldSchema{}
	if err := decodeEmbedded(b, &schema); err != nil {
		slog.Warn("additional_fields decode failed", "kind", "schema", "error", err)
		schema = FieldSchema{}
	}
	*s = schema
	return nil
}

// DecodeFieldSchema parses a wire value, falling back to an empty schema.
func DecodeFieldSchema(raw string) FieldSchema {
	var s FieldSchema
	_ = s.UnmarshalJSON(quote(raw))
	return s
}

func (a Attributes) Encode() string {
	out := make(map[string]string, len(a))
	for k, v := range a {
		if k == "" {
			continue
		}
		out[k] = v
	}
	b, _ := json.Marshal(out)
	return string(b)
}

func (a Attributes) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Encode())
}

func (a *Attributes) UnmarshalJSON(b []byte) error {
	var loose map[string]any
	if err := decodeEmbedded(b, &loose); err != nil {
		slog.Warn("additional_fields decode failed", "kind", "attributes", "error", err)
		loose = nil
	}
	attrs := make(Attributes, len(loose))
	for k, v := range loose {
		attrs[k] = stringify(v)
	}
	*a = attrs
	return nil
}

// DecodeAttributes parses a wire value, falling back to an empty bag.
func DecodeAttributes(raw string) Attributes {
	var a Attributes
	_ = a.UnmarshalJSON(quote(raw))
	return a
}

// decodeEmbedded accepts either a JSON string holding an object or the object itself.
func decodeEmbedded(b []byte, dst any) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	switch b[0] {
	case '"':
		var inner string
		if err := json.Unmarshal(b, &inner); err != nil {
			return err
		}
		if inner == "" || inner == "null" {
			return nil
		}
		return json.Unmarshal([]byte(inner), dst)
	case '{':
		return json.Unmarshal(b, dst)
	default:
		return errUnexpectedShape
	}
}

func quote(raw string) []byte {
	b, _ := json.Marshal(raw)
	return b
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}
