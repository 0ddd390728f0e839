package graphdef

import (
	"encoding/json"
	"fmt"

	"github.com/flowengine/flowengine/value"
)

// TypeLiteral is the wire encoding of a value.Type (spec §6): a bare string
// for every tag except List and Custom, which are encoded as
// {"List": <TypeLiteral>} and {"Custom": "name"} respectively.
type TypeLiteral struct {
	scalar string
	list   *TypeLiteral
	custom string
}

var scalarTags = map[string]value.Tag{
	"String":        value.String,
	"Integer":       value.Integer,
	"Float":         value.Float,
	"Boolean":       value.Boolean,
	"Json":          value.Json,
	"Binary":        value.Binary,
	"MessageList":   value.MessageList,
	"MessageEvent":  value.MessageEvent,
	"FunctionTools": value.FunctionTools,
	"BotAdapterRef": value.BotAdapterRef,
	"RedisRef":      value.RedisRef,
	"MySqlRef":      value.MySqlRef,
}

// FromType encodes a value.Type as its wire TypeLiteral.
func FromType(t value.Type) TypeLiteral {
	switch t.Tag {
	case value.List:
		var elem TypeLiteral
		if t.Elem != nil {
			elem = FromType(*t.Elem)
		}
		return TypeLiteral{list: &elem}
	case value.Custom:
		return TypeLiteral{custom: t.Custom}
	default:
		return TypeLiteral{scalar: string(t.Tag)}
	}
}

// ToType decodes a TypeLiteral into a value.Type, or returns a parse error
// for an unrecognized scalar tag (a DefinitionError at the call site).
func (tl TypeLiteral) ToType() (value.Type, error) {
	if tl.list != nil {
		elem, err := tl.list.ToType()
		if err != nil {
			return value.Type{}, err
		}
		return value.ListOf(elem), nil
	}
	if tl.custom != "" {
		return value.CustomType(tl.custom), nil
	}
	tag, ok := scalarTags[tl.scalar]
	if !ok {
		return value.Type{}, fmt.Errorf("unrecognized data type literal %q", tl.scalar)
	}
	return value.Simple(tag), nil
}

// MarshalJSON renders the TypeLiteral in its wire form.
func (tl TypeLiteral) MarshalJSON() ([]byte, error) {
	switch {
	case tl.list != nil:
		inner, err := tl.list.MarshalJSON()
		if err != nil {
			return nil, err
		}
		return json.Marshal(map[string]json.RawMessage{"List": inner})
	case tl.custom != "":
		return json.Marshal(map[string]string{"Custom": tl.custom})
	default:
		return json.Marshal(tl.scalar)
	}
}

// UnmarshalJSON parses either a bare string or a {"List": ...} / {"Custom":
// ...} object.
func (tl *TypeLiteral) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		tl.scalar, tl.list, tl.custom = s, nil, ""
		return nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("data_type: %w", err)
	}
	if raw, ok := obj["List"]; ok {
		var elem TypeLiteral
		if err := json.Unmarshal(raw, &elem); err != nil {
			return fmt.Errorf("data_type.List: %w", err)
		}
		tl.list, tl.scalar, tl.custom = &elem, "", ""
		return nil
	}
	if raw, ok := obj["Custom"]; ok {
		var name string
		if err := json.Unmarshal(raw, &name); err != nil {
			return fmt.Errorf("data_type.Custom: %w", err)
		}
		tl.custom, tl.scalar, tl.list = name, "", nil
		return nil
	}
	return fmt.Errorf("data_type: unrecognized object shape %s", data)
}
