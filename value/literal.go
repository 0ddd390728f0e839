package value

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// ParseLiteral parses a persisted JSON literal into the Value that matches
// declared type t, for use as an inline default (spec §4.1). Only primitive
// variants may appear as literals; a type mismatch is reported as an error
// so the caller can surface it as a definition-load error.
func ParseLiteral(t Type, raw json.RawMessage) (Value, error) {
	if !IsPrimitive(t.Tag) {
		return Value{}, fmt.Errorf("value: inline defaults only support primitive types, got %s", t)
	}

	switch t.Tag {
	case String:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return Value{}, fmt.Errorf("value: literal %s is not a String: %w", raw, err)
		}
		return NewString(s), nil
	case Integer:
		var i int64
		if err := json.Unmarshal(raw, &i); err != nil {
			return Value{}, fmt.Errorf("value: literal %s is not an Integer: %w", raw, err)
		}
		return NewInteger(i), nil
	case Float:
		var f float64
		if err := json.Unmarshal(raw, &f); err != nil {
			return Value{}, fmt.Errorf("value: literal %s is not a Float: %w", raw, err)
		}
		return NewFloat(f), nil
	case Boolean:
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return Value{}, fmt.Errorf("value: literal %s is not a Boolean: %w", raw, err)
		}
		return NewBoolean(b), nil
	case Json:
		var doc any
		if err := json.Unmarshal(raw, &doc); err != nil {
			return Value{}, fmt.Errorf("value: literal %s is not valid JSON: %w", raw, err)
		}
		return NewJson(doc), nil
	case Binary:
		var encoded string
		if err := json.Unmarshal(raw, &encoded); err != nil {
			return Value{}, fmt.Errorf("value: Binary literal must be a base64 string: %w", err)
		}
		decoded, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return Value{}, fmt.Errorf("value: Binary literal is not valid base64: %w", err)
		}
		return NewBinary(decoded), nil
	default:
		return Value{}, fmt.Errorf("value: unsupported literal type %s", t)
	}
}
