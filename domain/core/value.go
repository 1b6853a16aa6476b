package core

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ValueKind discriminates the shapes an attribute value can take on a record.
type ValueKind string

const (
	KindString    ValueKind = "string"
	KindInt       ValueKind = "int"
	KindOption    ValueKind = "option"
	KindReference ValueKind = "reference"
)

// Reference points at a record on another entity through a lookup attribute.
type Reference struct {
	Entity string `json:"entity"`
	ID     string `json:"id"`
}

// Value is a tagged attribute value. Records are loosely typed attribute
// bags; type assertions happen once at the component boundary instead of
// being scattered through the engine.
type Value struct {
	Kind   ValueKind
	Str    string
	Int    int64
	Option int
	Ref    Reference
}

func StringValue(s string) Value { return Value{Kind: KindString, Str: s} }
func IntValue(n int64) Value { return Value{Kind: KindInt, Int: n} }
func OptionValue(o int) Value { return Value{Kind: KindOption, Option: o} }
func ReferenceValue(entity, id string) Value {
	return Value{Kind: KindReference, Ref: Reference{Entity: entity, ID: id}}
}

// IsBlank reports whether the value carries no usable content. A string of
// whitespace is blank; options and references are never blank once set.
func (v Value) IsBlank() bool {
	switch v.Kind {
	case KindString:
		return strings.TrimSpace(v.Str) == ""
	case "":
		return true
	default:
		return false
	}
}

// Text renders the value the way it appears inside a composed code.
func (v Value) Text() string {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindOption:
		return strconv.Itoa(v.Option)
	case KindReference:
		return v.Ref.ID
	default:
		return ""
	}
}

// OptionNumber returns the option value when the value is option-shaped.
// Integer values coerce, matching how hosts hand option sets over the wire.
func (v Value) OptionNumber() (int, bool) {
	switch v.Kind {
	case KindOption:
		return v.Option, true
	case KindInt:
		return int(v.Int), true
	default:
		return 0, false
	}
}

// AsReference returns the reference payload when the value is a lookup.
func (v Value) AsReference() (Reference, bool) {
	if v.Kind != KindReference {
		return Reference{}, false
	}
	return v.Ref, true
}

type valueJSON struct {
	Kind   ValueKind       `json:"kind"`
	Value  json.RawMessage `json:"value,omitempty"`
	Entity string          `json:"entity,omitempty"`
	ID     string          `json:"id,omitempty"`
}

// MarshalJSON encodes the tagged value for the HTTP surface.
func (v Value) MarshalJSON() ([]byte, error) {
	out := valueJSON{Kind: v.Kind}
	switch v.Kind {
	case KindString:
		raw, _ := json.Marshal(v.Str)
		out.Value = raw
	case KindInt:
		raw, _ := json.Marshal(v.Int)
		out.Value = raw
	case KindOption:
		raw, _ := json.Marshal(v.Option)
		out.Value = raw
	case KindReference:
		out.Entity = v.Ref.Entity
		out.ID = v.Ref.ID
	default:
		return nil, fmt.Errorf("cannot marshal value of unknown kind %q", v.Kind)
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a tagged value.
func (v *Value) UnmarshalJSON(data []byte) error {
	var in valueJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	switch in.Kind {
	case KindString:
		v.Kind = KindString
		return json.Unmarshal(in.Value, &v.Str)
	case KindInt:
		v.Kind = KindInt
		return json.Unmarshal(in.Value, &v.Int)
	case KindOption:
		v.Kind = KindOption
		return json.Unmarshal(in.Value, &v.Option)
	case KindReference:
		v.Kind = KindReference
		v.Ref = Reference{Entity: in.Entity, ID: in.ID}
		return nil
	default:
		return fmt.Errorf("cannot unmarshal value of unknown kind %q", in.Kind)
	}
}
