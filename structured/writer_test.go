package structured

import (
	"testing"
)

func TestWriterPrimitiveScalars(t *testing.T) {
	w := NewWriter()
	w.Value("hello")
	if got := string(w.Dump()); got != "hello," {
		t.Errorf("expected %q got %q", "hello,", got)
	}
}

func TestWriterObjectFromMap(t *testing.T) {
	w := NewWriter()
	w.Value(map[string]any{"b": 2, "a": 1})
	if err := w.Err(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// keys are sorted for determinism since Go maps carry no order.
	want := "{a: 1,b: 2,},"
	if got := string(w.Dump()); got != want {
		t.Errorf("expected %q got %q", want, got)
	}
}

func TestWriterArrayFromSlice(t *testing.T) {
	w := NewWriter()
	w.Value([]any{1, 2, 3})
	want := "[1,2,3,],"
	if got := string(w.Dump()); got != want {
		t.Errorf("expected %q got %q", want, got)
	}
}

func TestWriterNestedStructure(t *testing.T) {
	w := NewWriter()
	w.Value(map[string]any{
		"items": []any{1, map[string]any{"k": "v"}},
	})
	want := "{items: [1,{k: v,},],},"
	if got := string(w.Dump()); got != want {
		t.Errorf("expected %q got %q", want, got)
	}
}

func TestWriterTaggedPrimitive(t *testing.T) {
	w := NewWriter()
	w.Value(Tagged{Name: "int", Value: "7"})
	want := "(int) 7,"
	if got := string(w.Dump()); got != want {
		t.Errorf("expected %q got %q", want, got)
	}
}

func TestWriterTaggedAscii16(t *testing.T) {
	w := NewWriter()
	w.Value(Tagged{Name: "ascii16", Value: []byte{0x01, 0xef}})
	want := "(ascii16) abop,"
	if got := string(w.Dump()); got != want {
		t.Errorf("expected %q got %q", want, got)
	}
}

func TestWriterTaggedBase64(t *testing.T) {
	w := NewWriter()
	w.Value(Tagged{Name: "base64", Value: []byte("luxem")})
	want := "(base64) bHV4ZW0=,"
	if got := string(w.Dump()); got != want {
		t.Errorf("expected %q got %q", want, got)
	}
}

func TestWriterTaggedContainer(t *testing.T) {
	w := NewWriter()
	w.Value(Tagged{Name: "point", Value: map[string]any{"x": 1, "y": 2}})
	want := "(point) {x: 1,y: 2,},"
	if got := string(w.Dump()); got != want {
		t.Errorf("expected %q got %q", want, got)
	}
}

func TestWriterBoolAndNilPrimitives(t *testing.T) {
	w := NewWriter()
	w.Value([]any{true, false, nil})
	want := "[true,false,\"\",]," // nil renders as an empty word, which needs quoting
	if got := string(w.Dump()); got != want {
		t.Errorf("expected %q got %q", want, got)
	}
}

// TestWriterReaderStructRoundTrip writes a value through Writer.Value and
// reads it back through Reader.Struct, checking the two agree on shape.
func TestWriterReaderStructRoundTrip(t *testing.T) {
	w := NewWriter()
	w.Value(map[string]any{
		"name": "Ada",
		"tags": []any{"x", "y"},
	})
	if err := w.Err(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got any
	r := NewReader().Struct(func(v any) { got = v })
	if _, err := r.FeedBytes(w.Dump(), true); err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	m, ok := got.(map[string]any)
	if !ok {
		t.Fatalf("expected map[string]any, got %T", got)
	}
	if string(m["name"].([]byte)) != "Ada" {
		t.Errorf("name mismatch: %v", m["name"])
	}
	tags, ok := m["tags"].([]any)
	if !ok || len(tags) != 2 {
		t.Fatalf("tags mismatch: %v", m["tags"])
	}
	if string(tags[0].([]byte)) != "x" || string(tags[1].([]byte)) != "y" {
		t.Errorf("tags content mismatch: %v", tags)
	}
}
