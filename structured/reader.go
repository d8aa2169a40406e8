package structured

import (
	"io"

	"github.com/rendaw/luxem-go"
)

type elemFrame struct {
	object *Object
	array  *Array
}

// Reader drives a luxem.RawReader and dispatches each event to whichever
// Object/Array registry is open at that point in the document, building the
// tree of user callbacks lazily as containers are entered. It mirrors
// read.py's Reader class, generalized from a single Python process to Go's
// explicit-error idiom: processing failures are recorded (the first one
// sticks) rather than raised, and are surfaced once Feed/FeedBytes returns.
type Reader struct {
	raw *luxem.RawReader

	stack       []*elemFrame
	currentKey  string
	haveKey     bool
	currentType string
	haveType    bool

	err error
}

// NewReader builds a Reader. Register what the top-level value should do by
// calling Element or Struct on it before feeding any data.
func NewReader() *Reader {
	r := &Reader{}
	root := &elemFrame{array: newArray(r)}
	r.stack = []*elemFrame{root}
	r.raw = luxem.NewReader(
		luxem.WithObjectBegin(r.onObjectBegin),
		luxem.WithObjectEnd(r.onEnd),
		luxem.WithArrayBegin(r.onArrayBegin),
		luxem.WithArrayEnd(r.onEnd),
		luxem.WithKey(r.onKey),
		luxem.WithType(r.onType),
		luxem.WithPrimitive(r.onPrimitive),
	)
	return r
}

func (r *Reader) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

// Element registers cb as the handler for the document's top-level values;
// cb runs once for each top-level primitive or container.
func (r *Reader) Element(cb func(*Element)) *Reader {
	r.stack[0].array.Element(cb)
	return r
}

// Struct registers cb to receive the document's top-level value decoded as
// a map[string]any / []any / Tagged tree.
func (r *Reader) Struct(cb func(any)) *Reader {
	r.stack[0].array.Struct(cb)
	return r
}

func (r *Reader) onObjectBegin() {
	obj := newObject(r)
	r.dispatchValue(&Element{Kind: KindObject, Object: obj})
	r.stack = append(r.stack, &elemFrame{object: obj})
}

func (r *Reader) onArrayBegin() {
	arr := newArray(r)
	r.dispatchValue(&Element{Kind: KindArray, Array: arr})
	r.stack = append(r.stack, &elemFrame{array: arr})
}

func (r *Reader) onEnd() {
	top := r.stack[len(r.stack)-1]
	if top.object != nil {
		top.object.runFinish()
	} else {
		top.array.runFinish()
	}
	r.stack = r.stack[:len(r.stack)-1]
}

func (r *Reader) onKey(b []byte) {
	r.currentKey = string(b)
	r.haveKey = true
}

func (r *Reader) onType(b []byte) {
	r.currentType = string(b)
	r.haveType = true
}

func (r *Reader) onPrimitive(b []byte) {
	r.dispatchValue(&Element{Kind: KindPrimitive, Primitive: append([]byte(nil), b...)})
}

func (r *Reader) dispatchValue(el *Element) {
	if r.haveType {
		el.Typed = true
		el.TypeName = r.currentType
		r.haveType = false
	}
	key := r.currentKey
	haveKey := r.haveKey
	r.currentKey = ""
	r.haveKey = false

	top := r.stack[len(r.stack)-1]
	if top.object != nil {
		top.object.dispatch(key, haveKey, el)
		return
	}
	top.array.dispatch(el)
}

// Feed streams src's remaining bytes through the reader, returning a parse
// error (from the underlying RawReader) or the first processing error
// recorded by a registered callback, whichever happened first.
func (r *Reader) Feed(src io.Reader, finish bool) (int64, error) {
	n, err := r.raw.Feed(src, finish)
	if err != nil {
		return n, err
	}
	return n, r.err
}

// FeedBytes is the fixed-buffer analogue of Feed.
func (r *Reader) FeedBytes(b []byte, finish bool) (int, error) {
	n, err := r.raw.FeedBytes(b, finish)
	if err != nil {
		return n, err
	}
	return n, r.err
}

// Err returns the first processing error recorded by a registered
// callback, independent of whether the underlying bytes ever get fed.
func (r *Reader) Err() error { return r.err }
