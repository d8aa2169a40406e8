// Package structured layers per-key/per-element callback registration and a
// tree-shaped convenience (Value/Struct) on top of the flat event stream of
// package luxem, mirroring read.py and write.py's Reader/Writer classes.
package structured

import (
	"errors"
	"fmt"

	"github.com/rendaw/luxem-go"
)

// ErrStructured is the root of every error this package returns on top of a
// well-formed event stream: a typed value whose tag doesn't match what a
// caller asked for, or a registration used twice where only one is allowed.
var ErrStructured = errors.New("structured: processing error")

// Tagged pairs a type tag with the value it annotates, the Go analogue of
// struct.Typed in the Python original this package is ported from.
type Tagged struct {
	Name  string
	Value any
}

// Kind discriminates what an Element currently holds.
type Kind uint8

const (
	KindPrimitive Kind = iota
	KindObject
	KindArray
)

// Element is one node of the event stream as seen by a registered callback:
// a primitive word, or a live Object/Array whose own callbacks are still
// being registered as its children arrive.
type Element struct {
	Kind      Kind
	Typed     bool
	TypeName  string
	Primitive []byte
	Object    *Object
	Array     *Array
}

func typeMismatch(want string, e *Element) error {
	got := "untyped"
	if e.Typed {
		got = e.TypeName
	}
	switch e.Kind {
	case KindObject:
		return fmt.Errorf("%w: expected %s, got an object (tag %s)", ErrStructured, want, got)
	case KindArray:
		return fmt.Errorf("%w: expected %s, got an array (tag %s)", ErrStructured, want, got)
	default:
		return fmt.Errorf("%w: expected %s, got primitive tagged %s", ErrStructured, want, got)
	}
}

func newStructuredError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrStructured, fmt.Sprintf(format, args...))
}

func decodeTypedBool(b []byte) bool {
	s := string(b)
	for _, candidate := range []string{"0", "false", "no"} {
		if equalFold(s, candidate) {
			return false
		}
	}
	return true
}

func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

// ProcessBool decodes a bool element. The vocabulary is the one spec.md's
// §9 Open Question settled on: case-insensitive "0"/"false"/"no" are false,
// every other spelling -- including nonsense like "banana" -- is true.
func ProcessBool(e *Element) (bool, error) {
	if e.Kind != KindPrimitive {
		return false, typeMismatch("bool", e)
	}
	if e.Typed && e.TypeName != "bool" {
		return false, typeMismatch("bool", e)
	}
	return decodeTypedBool(e.Primitive), nil
}

// ProcessInt decodes an int element using Go's own integer grammar, which is
// a stricter reading than Python's int(); spec.md leaves integer syntax to
// the host language.
func ProcessInt(e *Element) (int64, error) {
	if e.Kind != KindPrimitive {
		return 0, typeMismatch("int", e)
	}
	if e.Typed && e.TypeName != "int" {
		return 0, typeMismatch("int", e)
	}
	return parseInt(e.Primitive)
}

// ProcessFloat decodes a float element.
func ProcessFloat(e *Element) (float64, error) {
	if e.Kind != KindPrimitive {
		return 0, typeMismatch("float", e)
	}
	if e.Typed && e.TypeName != "float" {
		return 0, typeMismatch("float", e)
	}
	return parseFloat(e.Primitive)
}

// ProcessString decodes a string element, returning its bytes verbatim.
func ProcessString(e *Element) (string, error) {
	if e.Kind != KindPrimitive {
		return "", typeMismatch("string", e)
	}
	if e.Typed && e.TypeName != "string" {
		return "", typeMismatch("string", e)
	}
	return string(e.Primitive), nil
}

// ProcessAscii16 decodes a primitive tagged (or assumed) ascii16.
func ProcessAscii16(e *Element) ([]byte, error) {
	if e.Kind != KindPrimitive {
		return nil, typeMismatch("ascii16", e)
	}
	if e.Typed && e.TypeName != "ascii16" {
		return nil, typeMismatch("ascii16", e)
	}
	b, err := luxem.DecodeAscii16(e.Primitive)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStructured, err)
	}
	return b, nil
}

// ProcessBase64 decodes a primitive tagged (or assumed) base64.
func ProcessBase64(e *Element) ([]byte, error) {
	if e.Kind != KindPrimitive {
		return nil, typeMismatch("base64", e)
	}
	if e.Typed && e.TypeName != "base64" {
		return nil, typeMismatch("base64", e)
	}
	return decodeBase64(e.Primitive)
}

// ProcessBytes requires an explicit ascii16 or base64 tag and dispatches to
// the matching decoder, mirroring process_bytes's "no bare untyped bytes"
// rule.
func ProcessBytes(e *Element) ([]byte, error) {
	if e.Kind != KindPrimitive || !e.Typed {
		return nil, newStructuredError("bytes requires a typed primitive (ascii16 or base64)")
	}
	switch e.TypeName {
	case "ascii16":
		return ProcessAscii16(e)
	case "base64":
		return ProcessBase64(e)
	default:
		return nil, typeMismatch("bytes", e)
	}
}

// ProcessObject requires e to be an object and returns its registry.
func ProcessObject(e *Element) (*Object, error) {
	if e.Kind != KindObject {
		return nil, typeMismatch("object", e)
	}
	return e.Object, nil
}

// ProcessArray requires e to be an array and returns its registry.
func ProcessArray(e *Element) (*Array, error) {
	if e.Kind != KindArray {
		return nil, typeMismatch("array", e)
	}
	return e.Array, nil
}

// ProcessAny decodes e using its own type tag when one of the well-known
// names is present ("bool", "int", "float", "string", "ascii16", "base64",
// "bytes", "object", "array"); otherwise returns the raw primitive bytes,
// *Object, or *Array -- wrapped in a Tagged if e carries an unrecognized
// tag, so the tag is never silently dropped.
func ProcessAny(e *Element) any {
	if e.Typed {
		switch e.TypeName {
		case "bool":
			v, _ := ProcessBool(e)
			return v
		case "int":
			v, _ := ProcessInt(e)
			return v
		case "float":
			v, _ := ProcessFloat(e)
			return v
		case "string":
			v, _ := ProcessString(e)
			return v
		case "ascii16":
			v, _ := ProcessAscii16(e)
			return v
		case "base64":
			v, _ := ProcessBase64(e)
			return v
		case "bytes":
			v, _ := ProcessBytes(e)
			return v
		case "object":
			return e.Object
		case "array":
			return e.Array
		}
	}
	switch e.Kind {
	case KindObject:
		if e.Typed {
			return Tagged{Name: e.TypeName, Value: e.Object}
		}
		return e.Object
	case KindArray:
		if e.Typed {
			return Tagged{Name: e.TypeName, Value: e.Array}
		}
		return e.Array
	default:
		if e.Typed {
			return Tagged{Name: e.TypeName, Value: e.Primitive}
		}
		return e.Primitive
	}
}
