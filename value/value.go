// Package value implements the engine's closed set of typed value variants
// (spec C1) and the declared-type predicate used to validate ports, inline
// defaults, and node outputs.
package value

import "fmt"

// Tag identifies one of the value variants flowing through a port.
type Tag string

// The closed set of value variants. Adding one is a deliberate choke point:
// it also requires updates to Type, satisfies, and the literal codec in
// graphdef.
const (
	String        Tag = "String"
	Integer       Tag = "Integer"
	Float         Tag = "Float"
	Boolean       Tag = "Boolean"
	Json          Tag = "Json"
	Binary        Tag = "Binary"
	List          Tag = "List"
	MessageList   Tag = "MessageList"
	MessageEvent  Tag = "MessageEvent"
	FunctionTools Tag = "FunctionTools"
	BotAdapterRef Tag = "BotAdapterRef"
	RedisRef      Tag = "RedisRef"
	MySqlRef      Tag = "MySqlRef"
	Custom        Tag = "Custom"
)

// primitiveTags are the variants that may be parsed from a literal JSON value
// for an inline default (spec §4.1).
var primitiveTags = map[Tag]bool{
	String:  true,
	Integer: true,
	Float:   true,
	Boolean: true,
	Json:    true,
	Binary:  true,
}

// IsPrimitive reports whether tag is one of the primitive variants.
func IsPrimitive(tag Tag) bool { return primitiveTags[tag] }

// opaque variants are compared only for tag equality; the engine never
// inspects their contents.
var opaqueTags = map[Tag]bool{
	MessageList:   true,
	MessageEvent:  true,
	FunctionTools: true,
	BotAdapterRef: true,
	RedisRef:      true,
	MySqlRef:      true,
	Custom:        true,
}

// IsOpaque reports whether tag is one of the opaque domain-reference variants.
func IsOpaque(tag Tag) bool { return opaqueTags[tag] }

// Type is a declared type: a value variant tag, plus an element Type when
// Tag is List, plus a name when Tag is Custom. Types are compared
// structurally, never by pointer.
type Type struct {
	Tag    Tag
	Elem   *Type  // non-nil iff Tag == List
	Custom string // non-empty iff Tag == Custom
}

// String renders the type the way it would appear in a diagnostic message.
func (t Type) String() string {
	switch t.Tag {
	case List:
		if t.Elem == nil {
			return "List<?>"
		}
		return fmt.Sprintf("List<%s>", t.Elem.String())
	case Custom:
		return fmt.Sprintf("Custom(%s)", t.Custom)
	default:
		return string(t.Tag)
	}
}

// Equal reports whether two declared types are structurally identical.
func (t Type) Equal(other Type) bool {
	if t.Tag != other.Tag {
		return false
	}
	switch t.Tag {
	case List:
		if t.Elem == nil || other.Elem == nil {
			return t.Elem == other.Elem
		}
		return t.Elem.Equal(*other.Elem)
	case Custom:
		return t.Custom == other.Custom
	default:
		return true
	}
}

// ListOf builds a List<elem> type. elem must not itself be a List — lists of
// lists are not required by the spec and are rejected by Validate.
func ListOf(elem Type) Type { return Type{Tag: List, Elem: &elem} }

// CustomType builds a Custom(name) type.
func CustomType(name string) Type { return Type{Tag: Custom, Custom: name} }

// Simple builds a declared type for any non-List, non-Custom tag.
func Simple(tag Tag) Type { return Type{Tag: tag} }

// Validate checks that a Type is well-formed: List must carry a non-nil,
// non-List element type; Custom must carry a non-empty name; every other tag
// must carry neither.
func (t Type) Validate() error {
	switch t.Tag {
	case List:
		if t.Elem == nil {
			return fmt.Errorf("value: List type missing element type")
		}
		if t.Elem.Tag == List {
			return fmt.Errorf("value: nested List types are not supported")
		}
		return t.Elem.Validate()
	case Custom:
		if t.Custom == "" {
			return fmt.Errorf("value: Custom type missing name")
		}
		return nil
	case "":
		return fmt.Errorf("value: empty type tag")
	default:
		return nil
	}
}

// Value is a tagged value carried on a port. Exactly one of the typed
// fields is meaningful, selected by Tag.
type Value struct {
	Tag     Tag
	Str     string
	Int     int64
	Flt     float64
	Bool    bool
	JsonV   any
	Bin     []byte
	Items   []Value // meaningful iff Tag == List
	Ref     string  // opaque handle for domain-reference variants
	Custom  string  // Custom(name) discriminator, meaningful iff Tag == Custom
}

// NewString builds a String value.
func NewString(s string) Value { return Value{Tag: String, Str: s} }

// NewInteger builds an Integer value.
func NewInteger(i int64) Value { return Value{Tag: Integer, Int: i} }

// NewFloat builds a Float value.
func NewFloat(f float64) Value { return Value{Tag: Float, Flt: f} }

// NewBoolean builds a Boolean value.
func NewBoolean(b bool) Value { return Value{Tag: Boolean, Bool: b} }

// NewJson builds a Json value wrapping an arbitrary structured document.
func NewJson(doc any) Value { return Value{Tag: Json, JsonV: doc} }

// NewBinary builds a Binary value.
func NewBinary(b []byte) Value { return Value{Tag: Binary, Bin: b} }

// NewList builds a List value from elements, all of which must share a
// single non-List element type (not enforced here; see TypeOf/Satisfies).
func NewList(items ...Value) Value { return Value{Tag: List, Items: items} }

// NewRef builds an opaque domain-reference value (MessageList, MessageEvent,
// FunctionTools, BotAdapterRef, RedisRef, MySqlRef) carrying a cheap-to-copy
// handle. The engine never dereferences ref.
func NewRef(tag Tag, ref string) Value { return Value{Tag: tag, Ref: ref} }

// NewCustom builds a Custom(name) opaque value.
func NewCustom(name, ref string) Value { return Value{Tag: Custom, Custom: name, Ref: ref} }

// TypeOf returns the declared type that describes v's shape.
func TypeOf(v Value) Type {
	switch v.Tag {
	case List:
		if len(v.Items) == 0 {
			// An empty list has no element type to infer; callers that need
			// to validate an empty list must compare against an explicitly
			// declared port type instead of inferring one here.
			return Type{Tag: List}
		}
		elemType := TypeOf(v.Items[0])
		return ListOf(elemType)
	case Custom:
		return CustomType(v.Custom)
	default:
		return Type{Tag: v.Tag}
	}
}

// Satisfies reports whether v's tags (recursively, for List) match t.
// Per spec §3: "a value satisfies a declared type iff tags match; for
// List<T> each element must satisfy T."
func Satisfies(v Value, t Type) bool {
	if v.Tag != t.Tag {
		return false
	}
	switch t.Tag {
	case List:
		if t.Elem == nil {
			return len(v.Items) == 0
		}
		for _, item := range v.Items {
			if !Satisfies(item, *t.Elem) {
				return false
			}
		}
		return true
	case Custom:
		return v.Custom == t.Custom
	default:
		return true
	}
}

// Clone returns a copy of v for a second consumer. Binary bytes and List
// items are copied recursively, so those slices are not shared. A Json
// document is not copied: the clone's JsonV refers to the same maps and
// slices as v's. Opaque reference variants copy only the handle string,
// per the engine's assumption that references are cheap to duplicate
// (spec §4.8).
func Clone(v Value) Value {
	out := v
	if v.Bin != nil {
		out.Bin = append([]byte(nil), v.Bin...)
	}
	if v.Items != nil {
		out.Items = make([]Value, len(v.Items))
		for i, item := range v.Items {
			out.Items[i] = Clone(item)
		}
	}
	return out
}
