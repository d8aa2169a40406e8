package structured

// Object is the per-key callback registry for one object scope, live for as
// long as that object is open on the reader's context stack. Registration
// methods are meant to be called once, synchronously, from the callback
// that received the Element wrapping this Object -- exactly like Reader.
type Object struct {
	r           *Reader
	passthrough func(key string, el *Element)
	callbacks   map[string]func(*Element)
	finish      func()
}

func newObject(r *Reader) *Object {
	return &Object{r: r, callbacks: map[string]func(*Element){}}
}

func (o *Object) dispatch(key string, haveKey bool, el *Element) {
	if o.passthrough != nil {
		o.passthrough(key, el)
		return
	}
	if !haveKey {
		return
	}
	if cb, ok := o.callbacks[key]; ok {
		cb(el)
	}
}

func (o *Object) runFinish() {
	if o.finish != nil {
		o.finish()
	}
}

// Bool registers a bool-decoding callback for key.
func (o *Object) Bool(key string, cb func(bool)) {
	o.callbacks[key] = func(e *Element) {
		v, err := ProcessBool(e)
		if err != nil {
			o.r.fail(err)
			return
		}
		cb(v)
	}
}

// Int registers an int-decoding callback for key.
func (o *Object) Int(key string, cb func(int64)) {
	o.callbacks[key] = func(e *Element) {
		v, err := ProcessInt(e)
		if err != nil {
			o.r.fail(err)
			return
		}
		cb(v)
	}
}

// Float registers a float-decoding callback for key.
func (o *Object) Float(key string, cb func(float64)) {
	o.callbacks[key] = func(e *Element) {
		v, err := ProcessFloat(e)
		if err != nil {
			o.r.fail(err)
			return
		}
		cb(v)
	}
}

// String registers a string-decoding callback for key.
func (o *Object) String(key string, cb func(string)) {
	o.callbacks[key] = func(e *Element) {
		v, err := ProcessString(e)
		if err != nil {
			o.r.fail(err)
			return
		}
		cb(v)
	}
}

// Bytes registers a callback for key requiring an explicit ascii16 or
// base64 type tag.
func (o *Object) Bytes(key string, cb func([]byte)) {
	o.callbacks[key] = func(e *Element) {
		v, err := ProcessBytes(e)
		if err != nil {
			o.r.fail(err)
			return
		}
		cb(v)
	}
}

// Ascii16 registers an ascii16-decoding callback for key.
func (o *Object) Ascii16(key string, cb func([]byte)) {
	o.callbacks[key] = func(e *Element) {
		v, err := ProcessAscii16(e)
		if err != nil {
			o.r.fail(err)
			return
		}
		cb(v)
	}
}

// Base64 registers a base64-decoding callback for key.
func (o *Object) Base64(key string, cb func([]byte)) {
	o.callbacks[key] = func(e *Element) {
		v, err := ProcessBase64(e)
		if err != nil {
			o.r.fail(err)
			return
		}
		cb(v)
	}
}

// Object registers a callback for key whose value must itself be an object,
// handing the caller the nested registry to continue registering into.
func (o *Object) Object(key string, cb func(*Object)) {
	o.callbacks[key] = func(e *Element) {
		v, err := ProcessObject(e)
		if err != nil {
			o.r.fail(err)
			return
		}
		cb(v)
	}
}

// Array registers a callback for key whose value must itself be an array.
func (o *Object) Array(key string, cb func(*Array)) {
	o.callbacks[key] = func(e *Element) {
		v, err := ProcessArray(e)
		if err != nil {
			o.r.fail(err)
			return
		}
		cb(v)
	}
}

// Element registers a raw, unprocessed callback for key.
func (o *Object) Element(key string, cb func(*Element)) {
	o.callbacks[key] = cb
}

// Struct registers a callback for key that recursively decodes the value
// into a plain map[string]any / []any / Tagged tree -- see readStruct.
func (o *Object) Struct(key string, cb func(any)) {
	o.callbacks[key] = func(e *Element) { readStruct(e, cb) }
}

// Passthrough registers a catch-all callback invoked for every member of
// this Object, receiving the raw key. Setting Passthrough disables per-key
// callbacks entirely, matching
// read.py's Reader.Object._process.
func (o *Object) Passthrough(cb func(key string, el *Element)) {
	o.passthrough = cb
}

// Finished registers a callback run once this object's closing brace has
// been seen and every member has been dispatched.
func (o *Object) Finished(cb func()) {
	o.finish = cb
}

// Array is the single-callback registry for one array scope: at most one
// element-consuming registration (Element/Struct, or one of the typed
// convenience wrappers) may be made per array.
type Array struct {
	r        *Reader
	callback func(*Element)
	finish   func()
}

func newArray(r *Reader) *Array {
	return &Array{r: r}
}

func (a *Array) dispatch(el *Element) {
	if a.callback != nil {
		a.callback(el)
	}
}

func (a *Array) runFinish() {
	if a.finish != nil {
		a.finish()
	}
}

func (a *Array) setElement(cb func(*Element)) {
	if a.callback != nil {
		a.r.fail(newStructuredError("element callback already set for this array"))
		return
	}
	a.callback = cb
}

// Element registers the callback invoked once per array element.
func (a *Array) Element(cb func(*Element)) {
	a.setElement(cb)
}

// Bool registers a bool-decoding callback invoked once per element.
func (a *Array) Bool(cb func(bool)) {
	a.setElement(func(e *Element) {
		v, err := ProcessBool(e)
		if err != nil {
			a.r.fail(err)
			return
		}
		cb(v)
	})
}

// Int registers an int-decoding callback invoked once per element.
func (a *Array) Int(cb func(int64)) {
	a.setElement(func(e *Element) {
		v, err := ProcessInt(e)
		if err != nil {
			a.r.fail(err)
			return
		}
		cb(v)
	})
}

// Float registers a float-decoding callback invoked once per element.
func (a *Array) Float(cb func(float64)) {
	a.setElement(func(e *Element) {
		v, err := ProcessFloat(e)
		if err != nil {
			a.r.fail(err)
			return
		}
		cb(v)
	})
}

// String registers a string-decoding callback invoked once per element.
func (a *Array) String(cb func(string)) {
	a.setElement(func(e *Element) {
		v, err := ProcessString(e)
		if err != nil {
			a.r.fail(err)
			return
		}
		cb(v)
	})
}

// Bytes registers a callback requiring an explicit ascii16/base64 tag per
// element.
func (a *Array) Bytes(cb func([]byte)) {
	a.setElement(func(e *Element) {
		v, err := ProcessBytes(e)
		if err != nil {
			a.r.fail(err)
			return
		}
		cb(v)
	})
}

// Object registers a callback invoked once per element, requiring each
// element to be an object.
func (a *Array) Object(cb func(*Object)) {
	a.setElement(func(e *Element) {
		v, err := ProcessObject(e)
		if err != nil {
			a.r.fail(err)
			return
		}
		cb(v)
	})
}

// Array registers a callback invoked once per element, requiring each
// element to be an array.
func (a *Array) Array(cb func(*Array)) {
	a.setElement(func(e *Element) {
		v, err := ProcessArray(e)
		if err != nil {
			a.r.fail(err)
			return
		}
		cb(v)
	})
}

// Struct registers a callback invoked once per element with a recursively
// decoded map[string]any / []any / Tagged tree.
func (a *Array) Struct(cb func(any)) {
	a.setElement(func(e *Element) { readStruct(e, cb) })
}

// Finished registers a callback run once this array's closing bracket has
// been seen.
func (a *Array) Finished(cb func()) {
	a.finish = cb
}

// readStruct recursively decodes e into map[string]any (objects), []any
// (arrays), or the result of ProcessAny (primitives). An object or array
// result is wrapped in a Tagged whenever e carries a type tag; a primitive's
// tag is handled by ProcessAny. It mirrors _read_struct in the original
// read.py.
func readStruct(e *Element, cb func(any)) {
	switch e.Kind {
	case KindObject:
		out := map[string]any{}
		e.Object.Passthrough(func(key string, sub *Element) {
			readStruct(sub, func(v any) { out[key] = v })
		})
		e.Object.Finished(func() {
			if e.Typed {
				cb(Tagged{Name: e.TypeName, Value: out})
				return
			}
			cb(out)
		})
	case KindArray:
		var out []any
		e.Array.Element(func(sub *Element) {
			readStruct(sub, func(v any) { out = append(out, v) })
		})
		e.Array.Finished(func() {
			if out == nil {
				out = []any{}
			}
			if e.Typed {
				cb(Tagged{Name: e.TypeName, Value: out})
				return
			}
			cb(out)
		})
	default:
		cb(ProcessAny(e))
	}
}
