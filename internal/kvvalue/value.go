// Package kvvalue provides the tagged union of string and []byte that
// store values collapse to, per the store's bufferValues setting.
package kvvalue

import "fmt"

// Kind identifies which variant of a Value is authoritative.
type Kind byte

const (
	KindString Kind = iota
	KindBytes
)

// Value is a sum type holding either a string or a byte slice, never both.
type Value struct {
	kind  Kind
	str   string
	bytes []byte
}

// String wraps s as a string-kind value.
func String(s string) Value {
	return Value{kind: KindString, str: s}
}

// Bytes wraps a copy of b as a bytes-kind value.
func Bytes(b []byte) Value {
	cp := make([]byte, len(b))
	copy(cp, b)
	return Value{kind: KindBytes, bytes: cp}
}

// Kind reports which variant is populated.
func (v Value) Kind() Kind { return v.kind }

// AsString returns the value as a string, decoding bytes as UTF-8.
func (v Value) AsString() string {
	if v.kind == KindBytes {
		return string(v.bytes)
	}
	return v.str
}

// AsBytes returns the value as a byte slice, encoding a string as UTF-8.
func (v Value) AsBytes() []byte {
	if v.kind == KindString {
		return []byte(v.str)
	}
	cp := make([]byte, len(v.bytes))
	copy(cp, v.bytes)
	return cp
}

// Len reports the byte length of the value's wire representation.
func (v Value) Len() int {
	if v.kind == KindBytes {
		return len(v.bytes)
	}
	return len(v.str)
}

// Equal compares two values by their byte representation, regardless of
// which variant each was constructed with.
func (v Value) Equal(other Value) bool {
	return string(v.AsBytes()) == string(other.AsBytes())
}

// Normalize collapses an arbitrary host-supplied value to the store's
// configured kind: []byte -> string or string -> []byte via UTF-8, and any
// other scalar via its default string formatting (spec.md's "scalars ->
// string" rule).
func Normalize(bufferValues bool, in any) Value {
	var s string
	var b []byte
	switch t := in.(type) {
	case []byte:
		b = t
		s = string(t)
	case string:
		s = t
		b = []byte(t)
	default:
		s = fmt.Sprintf("%v", t)
		b = []byte(s)
	}
	if bufferValues {
		return Bytes(b)
	}
	return String(s)
}
