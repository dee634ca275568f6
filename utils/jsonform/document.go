package jsonform

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/bytedance/sonic"
	"github.com/iancoleman/orderedmap"
)

// ErrDocumentInvalid is matched by every error returned for input that is not
// well-formed JSON.
var ErrDocumentInvalid = errors.New("document is not valid JSON")

type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	if e.Err == nil {
		return ErrDocumentInvalid.Error()
	}
	return fmt.Sprintf("%s: %v", ErrDocumentInvalid.Error(), e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func (e *ParseError) Is(target error) bool {
	return target == ErrDocumentInvalid
}

// NewObject returns an empty JSON object that keeps key insertion order.
func NewObject() *orderedmap.OrderedMap {
	o := orderedmap.New()
	o.SetEscapeHTML(false)
	return o
}

// ParseDocument decodes data into a document tree: objects become
// *orderedmap.OrderedMap, arrays []any, numbers float64.
func ParseDocument(data []byte) (any, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, &ParseError{Err: errors.New("empty input")}
	}
	if !sonic.Valid(trimmed) {
		return nil, &ParseError{Err: errors.New("malformed JSON")}
	}
	// orderedmap only decodes objects, so the value is wrapped to support any root.
	wrapped := make([]byte, 0, len(trimmed)+6)
	wrapped = append(wrapped, `{"v":`...)
	wrapped = append(wrapped, trimmed...)
	wrapped = append(wrapped, '}')

	holder := NewObject()
	if err := holder.UnmarshalJSON(wrapped); err != nil {
		return nil, &ParseError{Err: err}
	}
	v, _ := holder.Get("v")
	return normalize(v), nil
}

// normalize converts decoder output into the canonical tree representation.
func normalize(v any) any {
	switch t := v.(type) {
	case orderedmap.OrderedMap:
		return normalizeObject(&t)
	case *orderedmap.OrderedMap:
		return normalizeObject(t)
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		o := NewObject()
		for _, k := range keys {
			o.Set(k, normalize(t[k]))
		}
		return o
	case []any:
		out := make([]any, len(t))
		for i, el := range t {
			out[i] = normalize(el)
		}
		return out
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return t.String()
		}
		return f
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case float32:
		return float64(t)
	default:
		return v
	}
}

func normalizeObject(src *orderedmap.OrderedMap) *orderedmap.OrderedMap {
	o := NewObject()
	for _, k := range src.Keys() {
		child, _ := src.Get(k)
		o.Set(k, normalize(child))
	}
	return o
}

// MarshalDocument writes the tree as compact JSON, keeping object key order.
func MarshalDocument(doc any) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeValue(&buf, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeValue(buf *bytes.Buffer, v any) error {
	switch t := v.(type) {
	case nil:
		buf.WriteString("null")
	case bool:
		buf.WriteString(strconv.FormatBool(t))
	case float64:
		writeNumber(buf, t)
	case int:
		buf.WriteString(strconv.Itoa(t))
	case string:
		return writeString(buf, t)
	case *orderedmap.OrderedMap:
		buf.WriteByte('{')
		for i, k := range t.Keys() {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeString(buf, k); err != nil {
				return err
			}
			buf.WriteByte(':')
			child, _ := t.Get(k)
			if err := writeValue(buf, child); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case orderedmap.OrderedMap:
		return writeValue(buf, &t)
	case []any:
		buf.WriteByte('[')
		for i, el := range t {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeValue(buf, el); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	default:
		// foreign Go values (structs, typed maps) go through a sonic round trip
		data, err := sonic.Marshal(t)
		if err != nil {
			return err
		}
		parsed, err := ParseDocument(data)
		if err != nil {
			return err
		}
		return writeValue(buf, parsed)
	}
	return nil
}

func writeString(buf *bytes.Buffer, s string) error {
	encoded, err := sonic.Marshal(s)
	if err != nil {
		return err
	}
	buf.Write(encoded)
	return nil
}

// writeNumber follows encoding/json float formatting; NaN and infinities have
// no JSON form and are written as null.
func writeNumber(buf *bytes.Buffer, f float64) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		buf.WriteString("null")
		return
	}
	abs := math.Abs(f)
	format := byte('f')
	if abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		format = 'e'
	}
	b := strconv.AppendFloat(buf.AvailableBuffer(), f, format, -1, 64)
	if format == 'e' {
		// clean up e-09 to e-9
		n := len(b)
		if n >= 4 && b[n-4] == 'e' && b[n-3] == '-' && b[n-2] == '0' {
			b[n-2] = b[n-1]
			b = b[:n-1]
		}
	}
	buf.Write(b)
}

// EncodeText is MarshalDocument for callers that want a string and a value
// that always encodes.
func EncodeText(v any) string {
	data, err := MarshalDocument(v)
	if err != nil {
		return "null"
	}
	return string(data)
}

// Equal reports whether two trees hold the same JSON value. Object key order
// is ignored.
func Equal(a, b any) bool {
	switch ta := a.(type) {
	case *orderedmap.OrderedMap:
		tb, ok := b.(*orderedmap.OrderedMap)
		if !ok || len(ta.Keys()) != len(tb.Keys()) {
			return false
		}
		for _, k := range ta.Keys() {
			va, _ := ta.Get(k)
			vb, ok := tb.Get(k)
			if !ok || !Equal(va, vb) {
				return false
			}
		}
		return true
	case []any:
		tb, ok := b.([]any)
		if !ok || len(ta) != len(tb) {
			return false
		}
		for i := range ta {
			if !Equal(ta[i], tb[i]) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}
