package structured

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestReaderElementPrimitive(t *testing.T) {
	var got string
	r := NewReader().Element(func(e *Element) {
		v, err := ProcessString(e)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got = v
	})
	if _, err := r.FeedBytes([]byte(`"hello"`), true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "hello" {
		t.Errorf("expected %q got %q", "hello", got)
	}
}

func TestReaderTypedPrimitive(t *testing.T) {
	var got int64
	r := NewReader().Element(func(e *Element) {
		v, err := ProcessInt(e)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got = v
	})
	if _, err := r.FeedBytes([]byte("(int) 42"), true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 42 {
		t.Errorf("expected 42 got %d", got)
	}
}

func TestReaderObjectPerKeyCallbacks(t *testing.T) {
	var name string
	var age int64
	var finished bool
	r := NewReader().Element(func(e *Element) {
		obj, err := ProcessObject(e)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		obj.String("name", func(v string) { name = v })
		obj.Int("age", func(v int64) { age = v })
		obj.Finished(func() { finished = true })
	})
	if _, err := r.FeedBytes([]byte(`{name: "Ada", age: 36}`), true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if name != "Ada" || age != 36 || !finished {
		t.Errorf("got name=%q age=%d finished=%v", name, age, finished)
	}
}

func TestReaderArrayOfInts(t *testing.T) {
	var got []int64
	r := NewReader().Element(func(e *Element) {
		arr, err := ProcessArray(e)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		arr.Int(func(v int64) { got = append(got, v) })
	})
	if _, err := r.FeedBytes([]byte("[1,2,3]"), true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]int64{1, 2, 3}, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestReaderPassthrough(t *testing.T) {
	var keys []string
	r := NewReader().Element(func(e *Element) {
		obj, _ := ProcessObject(e)
		obj.Passthrough(func(key string, sub *Element) {
			keys = append(keys, key)
		})
	})
	if _, err := r.FeedBytes([]byte("{a:1 b:2 c:3}"), true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, keys); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestReaderStructDecodesTree(t *testing.T) {
	var got any
	r := NewReader().Struct(func(v any) { got = v })
	if _, err := r.FeedBytes([]byte(`{a: 1, b: [1,2,"x"], c: {d: true}}`), true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string]any{
		"a": []byte("1"),
		"b": []any{[]byte("1"), []byte("2"), []byte("x")},
		"c": map[string]any{"d": []byte("true")},
	}
	gotMap, ok := got.(map[string]any)
	if !ok {
		t.Fatalf("expected map[string]any, got %T", got)
	}
	if string(gotMap["a"].([]byte)) != string(want["a"].([]byte)) {
		t.Errorf("a mismatch: %v", gotMap["a"])
	}
	bArr, ok := gotMap["b"].([]any)
	if !ok || len(bArr) != 3 {
		t.Fatalf("b mismatch: %v", gotMap["b"])
	}
	cMap, ok := gotMap["c"].(map[string]any)
	if !ok || string(cMap["d"].([]byte)) != "true" {
		t.Fatalf("c mismatch: %v", gotMap["c"])
	}
}

func TestReaderStructWithTypedTopLevel(t *testing.T) {
	var got any
	r := NewReader().Struct(func(v any) { got = v })
	if _, err := r.FeedBytes([]byte(`(point) {x: 1, y: 2}`), true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tagged, ok := got.(Tagged)
	if !ok {
		t.Fatalf("expected Tagged, got %T", got)
	}
	if tagged.Name != "point" {
		t.Errorf("expected tag %q got %q", "point", tagged.Name)
	}
	if _, ok := tagged.Value.(map[string]any); !ok {
		t.Errorf("expected map[string]any value, got %T", tagged.Value)
	}
}

func TestReaderBoolVocabulary(t *testing.T) {
	for _, test := range []struct {
		input string
		want  bool
	}{
		{"0", false}, {"false", false}, {"no", false},
		{"FALSE", false}, {"No", false},
		{"1", true}, {"yes", true}, {"banana", true}, {"", true},
	} {
		var got bool
		r := NewReader().Element(func(e *Element) {
			v, err := ProcessBool(e)
			if err != nil {
				t.Fatalf("unexpected error for %q: %v", test.input, err)
			}
			got = v
		})
		if _, err := r.FeedBytes([]byte(`"`+test.input+`"`), true); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != test.want {
			t.Errorf("input %q: expected %v got %v", test.input, test.want, got)
		}
	}
}

func TestReaderProcessErrorSurfacesFromFeed(t *testing.T) {
	var r *Reader
	r = NewReader().Element(func(e *Element) {
		if _, err := ProcessInt(e); err != nil {
			r.fail(err)
		}
	})
	_, err := r.FeedBytes([]byte(`"not-an-int"`), true)
	if err == nil {
		t.Fatal("expected a processing error")
	}
}

func TestReaderBytesRequiresExplicitTag(t *testing.T) {
	var r *Reader
	r = NewReader().Element(func(e *Element) {
		if _, err := ProcessBytes(e); err != nil {
			r.fail(err)
		}
	})
	if _, err := r.FeedBytes([]byte(`"abop"`), true); err == nil {
		t.Fatal("expected an error for an untyped bytes primitive")
	}
}

func TestReaderAscii16ThroughElement(t *testing.T) {
	var got []byte
	r := NewReader().Element(func(e *Element) {
		v, err := ProcessAscii16(e)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got = v
	})
	if _, err := r.FeedBytes([]byte("(ascii16) abop"), true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []byte{0x01, 0xef}
	if string(got) != string(want) {
		t.Errorf("expected %v got %v", want, got)
	}
}
