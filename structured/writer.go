package structured

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/rendaw/luxem-go"
)

// Writer builds a document from plain Go values -- map[string]any for
// objects, []any for arrays, Tagged for type-tagged values, and primitive
// scalars otherwise -- driving a luxem.Writer underneath. It ports
// write.py's Writer.value, whose iterative stack walk exists so that deep
// object/array nesting doesn't recurse through the host call stack; Go
// keeps that shape even though goroutine stacks grow, since the explicit
// stack also makes the walk trivially resumable and testable one step at a
// time.
type Writer struct {
	raw *luxem.Writer
}

// NewWriter builds a Writer around a fresh luxem.Writer configured with
// opts (sink selection, pretty-printing).
func NewWriter(opts ...luxem.WriterOption) *Writer {
	return &Writer{raw: luxem.NewWriter(opts...)}
}

// Err returns the underlying luxem.Writer's sticky error, if any.
func (w *Writer) Err() error { return w.raw.Err() }

// Dump returns the accumulated output of a buffer-mode Writer.
func (w *Writer) Dump() []byte { return w.raw.Dump() }

// Raw exposes the underlying event writer for callers who want to mix
// Value calls with direct RawWriter operations.
func (w *Writer) Raw() *luxem.Writer { return w.raw }

type stackStep interface {
	step(w *Writer, stack *[]stackStep) bool
}

type arrayStep struct {
	items []any
	i     int
}

func (s *arrayStep) step(w *Writer, stack *[]stackStep) bool {
	if s.i >= len(s.items) {
		w.raw.ArrayEnd()
		return false
	}
	item := s.items[s.i]
	s.i++
	w.process(stack, item)
	return true
}

type objectStep struct {
	m    map[string]any
	keys []string
	i    int
}

// newObjectStep sorts keys for deterministic output: a Go map carries no
// iteration order to preserve in the first place, unlike the dict Python's
// Writer walked.
func newObjectStep(m map[string]any) *objectStep {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return &objectStep{m: m, keys: keys}
}

func (s *objectStep) step(w *Writer, stack *[]stackStep) bool {
	if s.i >= len(s.keys) {
		w.raw.ObjectEnd()
		return false
	}
	key := s.keys[s.i]
	s.i++
	w.raw.Key([]byte(key))
	w.process(stack, s.m[key])
	return true
}

func (w *Writer) process(stack *[]stackStep, item any) {
	switch v := item.(type) {
	case map[string]any:
		w.raw.ObjectBegin()
		*stack = append(*stack, newObjectStep(v))
	case []any:
		w.raw.ArrayBegin()
		*stack = append(*stack, &arrayStep{items: v})
	case Tagged:
		w.raw.Type([]byte(v.Name))
		switch v.Name {
		case "ascii16":
			w.raw.Primitive(luxem.EncodeAscii16(toByteSlice(v.Value)))
		case "base64":
			w.raw.Primitive(encodeBase64(toByteSlice(v.Value)))
		default:
			w.process(stack, v.Value)
		}
	default:
		w.raw.Primitive([]byte(toPrimitiveWord(item)))
	}
}

// Value writes data -- recursively walking map[string]any/[]any/Tagged --
// as a single value at the writer's current position.
func (w *Writer) Value(data any) *Writer {
	var stack []stackStep
	w.process(&stack, data)
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		if !top.step(w, &stack) {
			stack = stack[:len(stack)-1]
		}
	}
	return w
}

func toByteSlice(v any) []byte {
	switch b := v.(type) {
	case []byte:
		return b
	case string:
		return []byte(b)
	default:
		return []byte(fmt.Sprintf("%v", b))
	}
}

func toPrimitiveWord(item any) string {
	switch v := item.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case bool:
		if v {
			return "true"
		}
		return "false"
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}
