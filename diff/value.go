package diff

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/tidwall/gjson"
)

// Kind identifies which variant a Value holds.
type Kind int

const (
	KindAbsent Kind = iota
	KindScalar
	KindSequence
	KindStructured
)

func (k Kind) String() string {
	switch k {
	case KindAbsent:
		return "absent"
	case KindScalar:
		return "scalar"
	case KindSequence:
		return "sequence"
	case KindStructured:
		return "structured"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ScalarKind identifies the JSON type behind a Scalar.
type ScalarKind int

const (
	ScalarString ScalarKind = iota
	ScalarNumber
	ScalarBool
)

// Scalar is a single string, number or boolean attribute value.
// Numbers keep their JSON literal so they render exactly as the backend sent them.
type Scalar struct {
	kind ScalarKind
	text string
}

func StringScalar(s string) Scalar { return Scalar{kind: ScalarString, text: s} }

// NumberScalar wraps a JSON number literal such as "42" or "1.5".
func NumberScalar(literal string) Scalar { return Scalar{kind: ScalarNumber, text: literal} }

func BoolScalar(b bool) Scalar { return Scalar{kind: ScalarBool, text: strconv.FormatBool(b)} }

func (s Scalar) Kind() ScalarKind { return s.kind }

// String returns the display form of the scalar.
func (s Scalar) String() string { return s.text }

func (s Scalar) MarshalJSON() ([]byte, error) {
	if s.kind == ScalarString {
		return json.Marshal(s.text)
	}
	return []byte(s.text), nil
}

// Value is an attribute value as delivered by the history backend: absent,
// a scalar, an ordered sequence of scalars, or an opaque structured object.
// The zero Value is Absent.
type Value struct {
	kind   Kind
	scalar Scalar
	elems  []Scalar
	raw    json.RawMessage
}

func Absent() Value { return Value{} }

func String(s string) Value { return Value{kind: KindScalar, scalar: StringScalar(s)} }

func Number(literal string) Value { return Value{kind: KindScalar, scalar: NumberScalar(literal)} }

func Bool(b bool) Value { return Value{kind: KindScalar, scalar: BoolScalar(b)} }

func FromScalar(s Scalar) Value { return Value{kind: KindScalar, scalar: s} }

// Sequence builds a multi-valued Value. A nil argument list yields an empty sequence.
func Sequence(elems ...Scalar) Value {
	cp := make([]Scalar, len(elems))
	copy(cp, elems)
	return Value{kind: KindSequence, elems: cp}
}

// Strings builds a sequence of string scalars.
func Strings(items ...string) Value {
	elems := make([]Scalar, len(items))
	for i, item := range items {
		elems[i] = StringScalar(item)
	}
	return Value{kind: KindSequence, elems: elems}
}

// Structured wraps a raw JSON document that is neither a scalar nor a flat list of scalars.
// An empty document is Absent.
func Structured(raw json.RawMessage) Value {
	if len(bytes.TrimSpace(raw)) == 0 {
		return Absent()
	}
	cp := make(json.RawMessage, len(raw))
	copy(cp, raw)
	return Value{kind: KindStructured, raw: cp}
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsAbsent() bool { return v.kind == KindAbsent }

// Scalar returns the scalar held by v, if any.
func (v Value) Scalar() (Scalar, bool) {
	if v.kind != KindScalar {
		return Scalar{}, false
	}
	return v.scalar, true
}

// Elements returns a copy of the sequence elements; nil for non-sequences.
func (v Value) Elements() []Scalar {
	if v.kind != KindSequence {
		return nil
	}
	cp := make([]Scalar, len(v.elems))
	copy(cp, v.elems)
	return cp
}

// Len is the element count of a sequence and zero for every other variant.
func (v Value) Len() int {
	if v.kind != KindSequence {
		return 0
	}
	return len(v.elems)
}

// Raw returns the JSON document of a structured value.
func (v Value) Raw() json.RawMessage {
	if v.kind != KindStructured {
		return nil
	}
	return v.raw
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindScalar:
		return v.scalar.MarshalJSON()
	case KindSequence:
		if v.elems == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.elems)
	case KindStructured:
		return v.raw, nil
	}
	return []byte("null"), nil
}

func (v *Value) UnmarshalJSON(data []byte) error {
	parsed, err := ParseValue(data)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// Literal is the compact JSON text of v, used wherever a stable identity for a
// value is needed (cache keys, snapshot comparison).
func (v Value) Literal() string {
	b, err := v.MarshalJSON()
	if err != nil {
		return ""
	}
	if v.kind == KindStructured {
		var buf bytes.Buffer
		if err := json.Compact(&buf, b); err == nil {
			return buf.String()
		}
	}
	return string(b)
}

// ParseValue classifies a JSON document into a Value. Empty input and null are Absent.
// Arrays holding anything other than scalars are kept whole as Structured.
func ParseValue(data []byte) (Value, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Absent(), nil
	}
	if !gjson.ValidBytes(trimmed) {
		return Value{}, fmt.Errorf("invalid JSON attribute value: %.64q", trimmed)
	}
	return fromResult(gjson.ParseBytes(trimmed)), nil
}

func fromResult(r gjson.Result) Value {
	switch {
	case r.Type == gjson.Null:
		return Absent()
	case r.IsArray():
		elems := make([]Scalar, 0)
		flat := true
		r.ForEach(func(_, item gjson.Result) bool {
			s, ok := scalarFrom(item)
			if !ok {
				flat = false
				return false
			}
			elems = append(elems, s)
			return true
		})
		if !flat {
			return Structured(json.RawMessage(r.Raw))
		}
		return Value{kind: KindSequence, elems: elems}
	case r.IsObject():
		return Structured(json.RawMessage(r.Raw))
	}
	if s, ok := scalarFrom(r); ok {
		return FromScalar(s)
	}
	return Structured(json.RawMessage(r.Raw))
}

func scalarFrom(r gjson.Result) (Scalar, bool) {
	switch r.Type {
	case gjson.String:
		return StringScalar(r.Str), true
	case gjson.Number:
		return NumberScalar(r.Raw), true
	case gjson.True:
		return BoolScalar(true), true
	case gjson.False:
		return BoolScalar(false), true
	}
	return Scalar{}, false
}
