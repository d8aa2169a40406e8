package luxem

import (
	"bytes"
	"fmt"
	"io"
)

// WriterOption configures a RawWriter's sink and pretty-print behavior,
// following the same functional-option idiom as ReaderOption.
type WriterOption func(*Writer)

// WithCallbackSink routes writer output through f, one fragment per call,
// with no guarantee on fragment size beyond roughly token boundaries.
func WithCallbackSink(f func([]byte) error) WriterOption {
	return func(w *Writer) { w.sink = f }
}

// WithWriterSink routes writer output to dst, retrying short writes until
// each fragment is fully written, per spec.md §4.3's sink-buffering rule.
func WithWriterSink(dst io.Writer) WriterOption {
	return func(w *Writer) {
		w.sink = func(b []byte) error {
			for len(b) > 0 {
				n, err := dst.Write(b)
				if err != nil {
					return fmt.Errorf("luxem: writing to sink: %w", err)
				}
				b = b[n:]
			}
			return nil
		}
	}
}

// WithPretty enables newline/indentation formatting (default: compact).
func WithPretty(pretty bool) WriterOption {
	return func(w *Writer) { w.pretty = pretty }
}

// WithSpaces selects spaces over tabs for indentation (default: tabs).
func WithSpaces(useSpaces bool) WriterOption {
	return func(w *Writer) { w.useSpaces = useSpaces }
}

// WithIndentMultiple sets the indent width per nesting level (default: 0).
func WithIndentMultiple(n int) WriterOption {
	return func(w *Writer) { w.indentMultiple = n }
}

type wFrame struct {
	kind frameKind
}

// Writer is a chainable, context-stack-driven event-to-text emitter, the
// mirror of RawReader. With no sink option it buffers in memory and the
// output is retrieved with Dump.
type Writer struct {
	sink func([]byte) error
	buf  *bytes.Buffer

	pretty         bool
	useSpaces      bool
	indentMultiple int

	stack      []wFrame
	pendingKey bool
	pendingType bool
	needIndent bool

	err error
}

// NewWriter builds a Writer. Pass WithCallbackSink or WithWriterSink to
// stream output; with neither, the writer accumulates into an internal
// buffer retrievable via Dump.
func NewWriter(opts ...WriterOption) *Writer {
	w := &Writer{stack: []wFrame{{kind: frameDoc}}}
	for _, opt := range opts {
		opt(w)
	}
	if w.sink == nil {
		w.buf = &bytes.Buffer{}
		buf := w.buf
		w.sink = func(b []byte) error {
			buf.Write(b)
			return nil
		}
	}
	return w
}

// Dump returns the accumulated output of a buffer-mode writer. It panics if
// the writer was built with an explicit sink, matching the "buffer mode
// only" constraint in spec.md §4.3.
func (w *Writer) Dump() []byte {
	if w.buf == nil {
		panic("luxem: Dump called on a writer with an explicit sink")
	}
	return append([]byte(nil), w.buf.Bytes()...)
}

// Err returns the first UsageError or sink error encountered, or nil. The
// writer keeps accepting calls after a UsageError (spec.md §7: "the writer
// is recoverable for UsageError only if the caller can restore consistent
// state") but every call is a no-op once Err is non-nil; callers that want
// to recover must build a fresh Writer.
func (w *Writer) Err() error { return w.err }

func (w *Writer) depth() int { return len(w.stack) - 1 }

func (w *Writer) emit(b []byte) {
	if w.err != nil {
		return
	}
	if err := w.sink(b); err != nil {
		w.err = fmt.Errorf("luxem: writing output: %w", err)
	}
}

// consumeIndent writes the indentation due before the next token, at the
// given depth, if a newline is pending. The newline itself was already
// written eagerly (right after '{'/'[' or right after a value's trailing
// comma); only the run of indent characters is decided lazily, once the
// caller knows whether the next token is a sibling (children's depth) or a
// closing brace (one shallower) — there is no other way to get the closing
// brace's lower indent right without either look-ahead or retracting
// already-flushed bytes.
func (w *Writer) consumeIndent(depth int) {
	if !w.needIndent {
		return
	}
	w.needIndent = false
	if w.indentMultiple <= 0 || depth <= 0 {
		return
	}
	ch := byte('\t')
	if w.useSpaces {
		ch = ' '
	}
	w.emit(bytes.Repeat([]byte{ch}, w.indentMultiple*depth))
}

func (w *Writer) checkValuePosition() error {
	top := w.stack[len(w.stack)-1]
	if top.kind == frameObject && !w.pendingKey {
		return newUsageError("value written in an object without a preceding Key")
	}
	return nil
}

// beginValue consumes a pending indent and clears the pending key/type
// flags; it must run after checkValuePosition succeeds and before the
// value's own bytes are written.
func (w *Writer) beginValue() {
	if !w.pendingType {
		w.consumeIndent(w.depth())
	}
	w.pendingKey = false
	w.pendingType = false
}

// afterValue writes the mandatory trailing separator. Every value, at any
// depth including the last element of a container, is followed by a comma
// (spec.md §4.3's Separator policy) so no look-ahead is needed to know
// whether more siblings follow.
func (w *Writer) afterValue() {
	w.emit([]byte(","))
	if w.pretty {
		w.emit([]byte("\n"))
		w.needIndent = true
	}
}

// renderWord quotes b iff it is empty or contains a reserved byte (any of
// the characters the reader's grammar treats as a delimiter, including
// ASCII whitespace), escaping '"' and '\\' inside the quotes.
func renderWord(b []byte) []byte {
	if !needsQuoting(b) {
		return b
	}
	out := make([]byte, 0, len(b)+2)
	out = append(out, '"')
	for _, c := range b {
		if c == '"' || c == '\\' {
			out = append(out, '\\')
		}
		out = append(out, c)
	}
	out = append(out, '"')
	return out
}

func needsQuoting(b []byte) bool {
	if len(b) == 0 {
		return true
	}
	for _, c := range b {
		if isDelim(c) {
			return true
		}
	}
	return false
}

// Key writes an object member's key. Legal only inside an object, with no
// key or type already pending.
func (w *Writer) Key(b []byte) *Writer {
	if w.err != nil {
		return w
	}
	top := w.stack[len(w.stack)-1]
	if top.kind != frameObject {
		w.err = newUsageError("Key called outside an object")
		return w
	}
	if w.pendingKey {
		w.err = newUsageError("Key called while a key is already pending")
		return w
	}
	if w.pendingType {
		w.err = newUsageError("Key called with a pending type")
		return w
	}
	w.consumeIndent(w.depth())
	w.emit(renderWord(b))
	w.emit([]byte(": "))
	w.pendingKey = true
	return w
}

// Type annotates the next value (primitive, ObjectBegin, or ArrayBegin)
// with a type tag. At most one Type call may be pending at a time.
func (w *Writer) Type(b []byte) *Writer {
	if w.err != nil {
		return w
	}
	if w.pendingType {
		w.err = newUsageError("Type called twice for the same value")
		return w
	}
	if err := w.checkValuePosition(); err != nil {
		w.err = err
		return w
	}
	w.consumeIndent(w.depth())
	w.emit([]byte("("))
	w.emit(renderWord(b))
	w.emit([]byte(") "))
	w.pendingType = true
	return w
}

// Primitive writes an atomic value at the current position.
func (w *Writer) Primitive(b []byte) *Writer {
	if w.err != nil {
		return w
	}
	if err := w.checkValuePosition(); err != nil {
		w.err = err
		return w
	}
	w.beginValue()
	w.emit(renderWord(b))
	w.afterValue()
	return w
}

// ObjectBegin opens an object at the current position.
func (w *Writer) ObjectBegin() *Writer {
	if w.err != nil {
		return w
	}
	if err := w.checkValuePosition(); err != nil {
		w.err = err
		return w
	}
	w.beginValue()
	w.emit([]byte("{"))
	w.stack = append(w.stack, wFrame{kind: frameObject})
	if w.pretty {
		w.emit([]byte("\n"))
		w.needIndent = true
	}
	return w
}

// ObjectEnd closes the innermost object. Legal only with no pending key or
// type.
func (w *Writer) ObjectEnd() *Writer {
	if w.err != nil {
		return w
	}
	top := w.stack[len(w.stack)-1]
	if top.kind != frameObject {
		w.err = newUsageError("ObjectEnd called outside an object")
		return w
	}
	if w.pendingKey || w.pendingType {
		w.err = newUsageError("ObjectEnd called with a pending key or type")
		return w
	}
	w.consumeIndent(w.depth() - 1)
	w.emit([]byte("}"))
	w.stack = w.stack[:len(w.stack)-1]
	w.afterValue()
	return w
}

// ArrayBegin opens an array at the current position.
func (w *Writer) ArrayBegin() *Writer {
	if w.err != nil {
		return w
	}
	if err := w.checkValuePosition(); err != nil {
		w.err = err
		return w
	}
	w.beginValue()
	w.emit([]byte("["))
	w.stack = append(w.stack, wFrame{kind: frameArray})
	if w.pretty {
		w.emit([]byte("\n"))
		w.needIndent = true
	}
	return w
}

// ArrayEnd closes the innermost array. Legal only with no pending type.
func (w *Writer) ArrayEnd() *Writer {
	if w.err != nil {
		return w
	}
	top := w.stack[len(w.stack)-1]
	if top.kind != frameArray {
		w.err = newUsageError("ArrayEnd called outside an array")
		return w
	}
	if w.pendingType {
		w.err = newUsageError("ArrayEnd called with a pending type")
		return w
	}
	w.consumeIndent(w.depth() - 1)
	w.emit([]byte("]"))
	w.stack = w.stack[:len(w.stack)-1]
	w.afterValue()
	return w
}
