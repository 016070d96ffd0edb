package console

import (
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"reflect"
	"sort"
	"time"

	"github.com/solatis/cratekeeper/internal/types"
)

// InstantFormat is the historical timestamp pattern emitted for time values.
// The DD field is day-of-year, not day-of-month. Console clients parse the
// output as-is, so the field stays what it has always been.
const InstantFormat = "yyyy-MM-DD HH:mm:ss"

// maxEncodeDepth bounds recursion so cyclic value graphs fail with
// types.ErrValueTooDeep instead of exhausting the stack. Legitimate console
// payloads stay far below this.
const maxEncodeDepth = 64

// Object is an insertion-ordered string-keyed mapping.
//
// EncodeValue emits plain Go maps in sorted-key order (maps have no stable
// iteration order); operations that need a specific key order build an Object
// instead and get insertion order on the wire.
type Object struct {
	keys   []string
	values map[string]any
}

// NewObject returns an empty ordered mapping.
func NewObject() *Object {
	return &Object{values: make(map[string]any)}
}

// Put sets key to value, appending the key on first insertion.
// Returns the Object for chaining.
func (o *Object) Put(key string, value any) *Object {
	if _, exists := o.values[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
	return o
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (any, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Len returns the number of keys.
func (o *Object) Len() int {
	return len(o.keys)
}

// EncodeValue writes value to w as a JSON token stream.
//
// The value's shape is decided by type, tested in order: string, ordered
// Object, keyed mapping, slice/array, pull sequence (iter.Seq, drained fully
// and not restartable), time instant, and finally a fallback that stringifies
// anything else (nil becomes the JSON null literal). Unrecognized types never
// fail; only writer errors and over-deep nesting propagate.
func EncodeValue(w io.Writer, value any) error {
	return encodeValue(w, value, 0)
}

func encodeValue(w io.Writer, value any, depth int) error {
	if depth > maxEncodeDepth {
		return types.ErrValueTooDeep
	}

	switch v := value.(type) {
	case nil:
		_, err := io.WriteString(w, "null")
		return err

	case string:
		return encodeString(w, v)

	case *Object:
		if v == nil {
			_, err := io.WriteString(w, "null")
			return err
		}
		if err := writeByte(w, '{'); err != nil {
			return err
		}
		for i, key := range v.keys {
			if err := writeMember(w, i, key, v.values[key], depth); err != nil {
				return err
			}
		}
		return writeByte(w, '}')

	case map[string]any:
		return encodeStringMap(w, v, depth)

	case []any:
		return encodeElements(w, func(yield func(any) bool) {
			for _, e := range v {
				if !yield(e) {
					return
				}
			}
		}, depth)

	case iter.Seq[any]:
		// Draining consumes the sequence; a one-shot sequence encoded twice
		// yields an empty array the second time.
		return encodeElements(w, v, depth)

	case time.Time:
		return encodeString(w, FormatInstant(v))

	case *time.Time:
		if v == nil {
			_, err := io.WriteString(w, "null")
			return err
		}
		return encodeString(w, FormatInstant(*v))
	}

	return encodeReflected(w, value, depth)
}

// encodeReflected handles the shapes the type switch cannot name statically:
// arbitrary map and slice/array types, and the stringify-everything fallback.
func encodeReflected(w io.Writer, value any, depth int) error {
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Map:
		// Keys are coerced to their default textual form and sorted so
		// repeated encodings of the same map are byte-identical.
		keys := make([]string, 0, rv.Len())
		byKey := make(map[string]any, rv.Len())
		mr := rv.MapRange()
		for mr.Next() {
			k := fmt.Sprint(mr.Key().Interface())
			keys = append(keys, k)
			byKey[k] = mr.Value().Interface()
		}
		sort.Strings(keys)

		if err := writeByte(w, '{'); err != nil {
			return err
		}
		for i, key := range keys {
			if err := writeMember(w, i, key, byKey[key], depth); err != nil {
				return err
			}
		}
		return writeByte(w, '}')

	case reflect.Slice, reflect.Array:
		return encodeElements(w, func(yield func(any) bool) {
			for i := 0; i < rv.Len(); i++ {
				if !yield(rv.Index(i).Interface()) {
					return
				}
			}
		}, depth)
	}

	return encodeString(w, fmt.Sprint(value))
}

// encodeStringMap emits a map[string]any in sorted-key order.
func encodeStringMap(w io.Writer, m map[string]any, depth int) error {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	if err := writeByte(w, '{'); err != nil {
		return err
	}
	for i, key := range keys {
		if err := writeMember(w, i, key, m[key], depth); err != nil {
			return err
		}
	}
	return writeByte(w, '}')
}

// encodeElements drains seq into a JSON array, encoding elements recursively.
func encodeElements(w io.Writer, seq iter.Seq[any], depth int) error {
	if err := writeByte(w, '['); err != nil {
		return err
	}
	i := 0
	var encodeErr error
	seq(func(e any) bool {
		if i > 0 {
			if encodeErr = writeByte(w, ','); encodeErr != nil {
				return false
			}
		}
		i++
		encodeErr = encodeValue(w, e, depth+1)
		return encodeErr == nil
	})
	if encodeErr != nil {
		return encodeErr
	}
	return writeByte(w, ']')
}

// writeMember emits one object member (comma, quoted key, colon, value).
func writeMember(w io.Writer, index int, key string, value any, depth int) error {
	if index > 0 {
		if err := writeByte(w, ','); err != nil {
			return err
		}
	}
	if err := encodeString(w, key); err != nil {
		return err
	}
	if err := writeByte(w, ':'); err != nil {
		return err
	}
	return encodeValue(w, value, depth+1)
}

func encodeString(w io.Writer, s string) error {
	// json.Marshal on a string cannot fail; it supplies the escaping rules.
	raw, _ := json.Marshal(s)
	_, err := w.Write(raw)
	return err
}

func writeByte(w io.Writer, b byte) error {
	_, err := w.Write([]byte{b})
	return err
}

// FormatInstant renders t using InstantFormat's literal field semantics:
// year, month, day-of-year (not day-of-month), then wall-clock time.
func FormatInstant(t time.Time) string {
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d",
		t.Year(), int(t.Month()), t.YearDay(), t.Hour(), t.Minute(), t.Second())
}
