package luxem

import (
	"errors"
	"fmt"
	"io"
	"iter"
)

// EventKind names one of the seven shapes an event from a RawReader can
// take. It mirrors the seven optional callbacks a RawReader is built with.
type EventKind uint8

const (
	EventObjectBegin EventKind = iota
	EventObjectEnd
	EventArrayBegin
	EventArrayEnd
	EventKey
	EventType
	EventPrimitive
)

func (k EventKind) String() string {
	switch k {
	case EventObjectBegin:
		return "object_begin"
	case EventObjectEnd:
		return "object_end"
	case EventArrayBegin:
		return "array_begin"
	case EventArrayEnd:
		return "array_end"
	case EventKey:
		return "key"
	case EventType:
		return "type"
	case EventPrimitive:
		return "primitive"
	}
	return "<unknown>"
}

// Event is the value produced by the Events convenience iterator. Data is
// nil for the four structural kinds.
type Event struct {
	Kind EventKind
	Data []byte
}

// ReaderOption configures one of the seven optional event callbacks a
// RawReader invokes as it parses. Following aledsdavies-opal's lexer
// configuration pattern (LexerOpt func(*LexerConfig)), rather than a single
// struct literal of seven fields, so zero or many can be supplied fluently.
type ReaderOption func(*RawReader)

func WithObjectBegin(f func()) ReaderOption { return func(r *RawReader) { r.onObjectBegin = f } }
func WithObjectEnd(f func()) ReaderOption   { return func(r *RawReader) { r.onObjectEnd = f } }
func WithArrayBegin(f func()) ReaderOption  { return func(r *RawReader) { r.onArrayBegin = f } }
func WithArrayEnd(f func()) ReaderOption    { return func(r *RawReader) { r.onArrayEnd = f } }
func WithKey(f func([]byte)) ReaderOption   { return func(r *RawReader) { r.onKey = f } }
func WithType(f func([]byte)) ReaderOption  { return func(r *RawReader) { r.onType = f } }
func WithPrimitive(f func([]byte)) ReaderOption {
	return func(r *RawReader) { r.onPrimitive = f }
}

type frameKind uint8

const (
	frameDoc frameKind = iota
	frameObject
	frameArray
)

// microState is the byte-granularity suspension point within the current
// scanCtx. It is exactly what spec.md calls the reader's micro-state, minus
// a dedicated IN_TAG value: tag content is tokenized with the same
// bare/quoted machinery as a key or a primitive, discriminated by wordKind,
// so it shares microBareWord/microQuotedWord rather than owning a state.
type microState uint8

const (
	microScan microState = iota
	microTagOpen
	microTagClose
	microBareWord
	microQuotedWord
	microEscape
)

// scanCtx says what a non-whitespace, non-comma byte means once microScan
// reaches one: the grammar production currently expected.
type scanCtx uint8

const (
	scDocValue scanCtx = iota
	scObjectMember
	scArrayElement
	scAfterKey
	scAfterColon
	scAfterTag
)

type wordKind uint8

const (
	wordKey wordKind = iota
	wordTag
	wordValue
)

// RawReader is a suspendable, byte-at-a-time pushdown automaton that turns
// luxem text into the event stream described in spec.md §3. All resumable
// state lives in its fields, the same way the teacher's parser struct
// (state, modeStack, buffer, pos) carries everything consumeCharacter needs
// between runes — here that is what lets Feed/FeedBytes suspend between
// calls instead of between runes of one io.Reader pass.
type RawReader struct {
	onObjectBegin func()
	onObjectEnd   func()
	onArrayBegin  func()
	onArrayEnd    func()
	onKey         func([]byte)
	onType        func([]byte)
	onPrimitive   func([]byte)

	stack []frameKind
	state microState
	ctx   scanCtx

	wk        wordKind
	quoted    bool
	buf       []byte
	escReturn microState

	pos int64
	err error
}

// NewReader builds a RawReader with the given event callbacks. Every
// callback is optional; a nil callback simply means that event is dropped.
func NewReader(opts ...ReaderOption) *RawReader {
	r := &RawReader{
		stack: []frameKind{frameDoc},
		ctx:   scDocValue,
		state: microScan,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Pos returns the cumulative number of bytes consumed across every Feed /
// FeedBytes call so far, the same offset reported in ParseError.
func (r *RawReader) Pos() int64 { return r.pos }

// FeedBytes parses b in place, generalizing the teacher's rune-at-a-time
// consumeCharacter loop to bytes with a resumable struct. finish asserts
// that b is the last chunk; the reader must then be in a valid terminal
// state (see spec.md §4.2 Termination) or FeedBytes returns ParseError.
//
// On success FeedBytes always consumes the whole slice: partial tokens are
// retained internally across calls (in buf/state), not by leaving bytes of
// this call unconsumed. On error, the returned count is the number of bytes
// that were consumed before the offending byte.
func (r *RawReader) FeedBytes(b []byte, finish bool) (n int, err error) {
	if r.err != nil {
		return 0, ErrPoisoned
	}
	defer func() {
		if rec := recover(); rec != nil {
			ce := &CallbackError{Cause: rec}
			r.err = ce
			err = ce
		}
	}()

	for n < len(b) {
		consumed, stepErr := r.step(b[n])
		if stepErr != nil {
			r.err = stepErr
			return n, stepErr
		}
		if consumed {
			n++
			r.pos++
		}
	}
	if finish {
		if fErr := r.finishCheck(); fErr != nil {
			r.err = fErr
			return n, fErr
		}
	}
	return n, nil
}

// Feed reads src in moderate blocks (4 KiB) until EOF, feeding each block to
// FeedBytes, per spec.md §4.2's "Stream input" contract. finish applies to
// the aggregate: the reader must reach a valid terminal state once src is
// exhausted.
func (r *RawReader) Feed(src io.Reader, finish bool) (int64, error) {
	if r.err != nil {
		return 0, ErrPoisoned
	}
	var total int64
	block := make([]byte, 4096)
	for {
		n, rerr := src.Read(block)
		if n > 0 {
			consumed, err := r.FeedBytes(block[:n], false)
			total += int64(consumed)
			if err != nil {
				return total, err
			}
		}
		if rerr != nil {
			if errors.Is(rerr, io.EOF) {
				break
			}
			return total, fmt.Errorf("luxem: reading source: %w", rerr)
		}
		if n == 0 {
			break
		}
	}
	if finish {
		if err := r.finishCheck(); err != nil {
			r.err = err
			return total, err
		}
	}
	return total, nil
}

// Events parses src to completion and yields its event stream as an
// iter.Seq2, the pull-iterator alternative to constructor callbacks that
// spec.md §9's Design Notes call out — grounded in rhogenson-ccl/lexer.go's
// iter.Seq2[token, error] pull tokenizer. A non-nil error, if any, is
// yielded last, after every event produced before the failure.
func Events(src io.Reader) iter.Seq2[Event, error] {
	return func(yield func(Event, error) bool) {
		var events []Event
		push := func(k EventKind, data []byte) {
			events = append(events, Event{Kind: k, Data: data})
		}
		r := NewReader(
			WithObjectBegin(func() { push(EventObjectBegin, nil) }),
			WithObjectEnd(func() { push(EventObjectEnd, nil) }),
			WithArrayBegin(func() { push(EventArrayBegin, nil) }),
			WithArrayEnd(func() { push(EventArrayEnd, nil) }),
			WithKey(func(b []byte) { push(EventKey, b) }),
			WithType(func(b []byte) { push(EventType, b) }),
			WithPrimitive(func(b []byte) { push(EventPrimitive, b) }),
		)
		_, err := r.Feed(src, true)
		for _, e := range events {
			if !yield(e, nil) {
				return
			}
		}
		if err != nil {
			yield(Event{}, err)
		}
	}
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

func isWSOrComma(c byte) bool {
	return c == ',' || isSpace(c)
}

func isDelim(c byte) bool {
	switch c {
	case '{', '}', '[', ']', '(', ')', ':', ',', '"', '\\':
		return true
	}
	return isSpace(c)
}

// step attempts to consume one byte. The bool return says whether c was
// actually consumed; when false (and err is nil) the byte was a delimiter
// that ended a token without being part of it, and the caller must
// re-dispatch the same byte now that state has moved on — the same pattern
// the teacher's `cc` action uses to rerun consumeCharacter on EOF.
func (r *RawReader) step(c byte) (bool, error) {
	switch r.state {
	case microScan:
		return r.scanStep(c)
	case microTagOpen:
		return r.startTagContent(c)
	case microTagClose:
		return r.tagCloseStep(c)
	case microBareWord:
		return r.bareWordStep(c)
	case microQuotedWord:
		return r.quotedWordStep(c)
	case microEscape:
		return r.escapeStep(c)
	}
	panic("luxem: unreachable reader state")
}

func (r *RawReader) scanStep(c byte) (bool, error) {
	if isWSOrComma(c) {
		return true, nil
	}
	switch r.ctx {
	case scObjectMember:
		if c == '}' {
			return true, r.closeObject()
		}
		return r.startKey(c)
	case scArrayElement:
		if c == ']' {
			return true, r.closeArray()
		}
		return r.startValue(c, true)
	case scDocValue:
		return r.startValue(c, true)
	case scAfterKey:
		if c == ':' {
			r.ctx = scAfterColon
			return true, nil
		}
		return false, newParseError(CategoryExpectedColon, r.pos, "missing ':' after key")
	case scAfterColon:
		return r.startValue(c, true)
	case scAfterTag:
		return r.startValue(c, false)
	}
	panic("luxem: unreachable scan context")
}

func (r *RawReader) startKey(c byte) (bool, error) {
	return r.startWord(c, wordKey)
}

func (r *RawReader) startValue(c byte, allowTag bool) (bool, error) {
	switch c {
	case '{':
		r.openObject()
		return true, nil
	case '[':
		r.openArray()
		return true, nil
	case '(':
		if allowTag {
			r.state = microTagOpen
			return true, nil
		}
		return false, newParseError(CategoryUnexpectedByte, r.pos, "unexpected byte '(': type tag already given")
	}
	return r.startWord(c, wordValue)
}

func (r *RawReader) startTagContent(c byte) (bool, error) {
	if c == ')' {
		return false, newParseError(CategoryEmptyTag, r.pos, "empty type tag")
	}
	return r.startWord(c, wordTag)
}

// startWord decides bare-vs-quoted on the first non-whitespace byte of a
// word (key, tag content, or primitive), per spec.md §4.2.
func (r *RawReader) startWord(c byte, kind wordKind) (bool, error) {
	r.wk = kind
	r.buf = r.buf[:0]
	switch {
	case c == '"':
		r.quoted = true
		r.state = microQuotedWord
		return true, nil
	case c == '\\':
		r.quoted = false
		r.escReturn = microBareWord
		r.state = microEscape
		return true, nil
	case isDelim(c):
		return false, newParseError(CategoryUnexpectedByte, r.pos, "unexpected byte %q", c)
	default:
		r.quoted = false
		r.state = microBareWord
		return r.bareWordStep(c)
	}
}

func (r *RawReader) bareWordStep(c byte) (bool, error) {
	if c == '\\' {
		r.escReturn = microBareWord
		r.state = microEscape
		return true, nil
	}
	if isDelim(c) {
		if err := r.finishWord(); err != nil {
			return false, err
		}
		return false, nil
	}
	r.buf = append(r.buf, c)
	return true, nil
}

func (r *RawReader) quotedWordStep(c byte) (bool, error) {
	if c == '\\' {
		r.escReturn = microQuotedWord
		r.state = microEscape
		return true, nil
	}
	if c == '"' {
		if err := r.finishWord(); err != nil {
			return false, err
		}
		return true, nil
	}
	r.buf = append(r.buf, c)
	return true, nil
}

func (r *RawReader) escapeStep(c byte) (bool, error) {
	r.buf = append(r.buf, c)
	r.state = r.escReturn
	return true, nil
}

func (r *RawReader) tagCloseStep(c byte) (bool, error) {
	if c != ')' {
		return false, newParseError(CategoryUnexpectedByte, r.pos, "expected ')' to close type tag, got %q", c)
	}
	r.ctx = scAfterTag
	r.state = microScan
	return true, nil
}

// finishWord is called the moment a key/tag/value word's content is fully
// known (on a closing quote, or on the delimiter that ends a bare word) and
// emits the corresponding event.
func (r *RawReader) finishWord() error {
	data := append([]byte{}, r.buf...)
	switch r.wk {
	case wordKey:
		r.emitKey(data)
		r.ctx = scAfterKey
		r.state = microScan
	case wordTag:
		r.emitType(data)
		r.state = microTagClose
	case wordValue:
		r.emitPrimitive(data)
		r.ctx = r.postValueCtx()
		r.state = microScan
	}
	return nil
}

func (r *RawReader) topFrame() frameKind {
	return r.stack[len(r.stack)-1]
}

func (r *RawReader) postValueCtx() scanCtx {
	switch r.topFrame() {
	case frameObject:
		return scObjectMember
	case frameArray:
		return scArrayElement
	default:
		return scDocValue
	}
}

func (r *RawReader) openObject() {
	r.emitObjectBegin()
	r.stack = append(r.stack, frameObject)
	r.ctx = scObjectMember
	r.state = microScan
}

func (r *RawReader) closeObject() error {
	r.stack = r.stack[:len(r.stack)-1]
	r.emitObjectEnd()
	r.ctx = r.postValueCtx()
	r.state = microScan
	return nil
}

func (r *RawReader) openArray() {
	r.emitArrayBegin()
	r.stack = append(r.stack, frameArray)
	r.ctx = scArrayElement
	r.state = microScan
}

func (r *RawReader) closeArray() error {
	r.stack = r.stack[:len(r.stack)-1]
	r.emitArrayEnd()
	r.ctx = r.postValueCtx()
	r.state = microScan
	return nil
}

func (r *RawReader) emitObjectBegin() {
	if r.onObjectBegin != nil {
		r.onObjectBegin()
	}
}

func (r *RawReader) emitObjectEnd() {
	if r.onObjectEnd != nil {
		r.onObjectEnd()
	}
}

func (r *RawReader) emitArrayBegin() {
	if r.onArrayBegin != nil {
		r.onArrayBegin()
	}
}

func (r *RawReader) emitArrayEnd() {
	if r.onArrayEnd != nil {
		r.onArrayEnd()
	}
}

func (r *RawReader) emitKey(b []byte) {
	if r.onKey != nil {
		r.onKey(b)
	}
}

func (r *RawReader) emitType(b []byte) {
	if r.onType != nil {
		r.onType(b)
	}
}

func (r *RawReader) emitPrimitive(b []byte) {
	if r.onPrimitive != nil {
		r.onPrimitive(b)
	}
}

// finishCheck enforces spec.md §4.2's Termination rule: on finish=true the
// reader must be at document position AFTER_VALUE or SCAN_WS at depth zero
// with no partial token, except that a trailing bare word at depth zero is
// completed by end-of-input rather than rejected.
func (r *RawReader) finishCheck() error {
	if r.state == microBareWord {
		if err := r.finishWord(); err != nil {
			return err
		}
	}
	switch r.state {
	case microQuotedWord:
		return newParseError(CategoryUnclosedString, r.pos, "unterminated quoted word")
	case microEscape:
		return newParseError(CategoryIncompleteInput, r.pos, "input ends mid-escape")
	case microTagOpen, microTagClose:
		return newParseError(CategoryIncompleteInput, r.pos, "input ends inside a type tag")
	}
	if r.ctx == scAfterKey || r.ctx == scAfterColon {
		return newParseError(CategoryIncompleteInput, r.pos, "input ends mid-member")
	}
	if len(r.stack) != 1 {
		return newParseError(CategoryUnclosedContainer, r.pos, "unclosed object or array at end of input")
	}
	return nil
}
