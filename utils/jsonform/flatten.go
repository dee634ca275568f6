package jsonform

import (
	"github.com/iancoleman/orderedmap"
)

type FieldType string

const (
	FieldTypeString  FieldType = "string"
	FieldTypeNumber  FieldType = "number"
	FieldTypeBoolean FieldType = "boolean"
	FieldTypeArray   FieldType = "array"
	FieldTypeObject  FieldType = "object"
	FieldTypeNull    FieldType = "null"
)

func ParseFieldType(s string) (FieldType, bool) {
	switch FieldType(s) {
	case FieldTypeString, FieldTypeNumber, FieldTypeBoolean, FieldTypeArray, FieldTypeObject, FieldTypeNull:
		return FieldType(s), true
	default:
		return "", false
	}
}

// Field is one editable leaf of a flattened document.
//
// Value holds a scalar, or the JSON text of the value when IsRawArray is set
// or Type is FieldTypeObject.
type Field struct {
	ID         string    `json:"id"`
	Path       Path      `json:"path"`
	Value      any       `json:"value"`
	Type       FieldType `json:"type"`
	IsRawArray bool      `json:"is_raw_array"`
}

// DefaultExpandKeys lists the keys whose array values are exploded into one
// field per element.
var DefaultExpandKeys = []string{
	"services",
	"features",
	"benefits",
	"requirements",
	"skills",
	"tools",
	"technologies",
	"advantages",
}

type Flattener struct {
	expand map[string]struct{}
}

// NewFlattener builds a Flattener for the given expand-listed keys. A nil
// slice selects DefaultExpandKeys; an empty one disables expansion.
func NewFlattener(expandKeys []string) *Flattener {
	if expandKeys == nil {
		expandKeys = DefaultExpandKeys
	}
	expand := make(map[string]struct{}, len(expandKeys))
	for _, k := range expandKeys {
		expand[k] = struct{}{}
	}
	return &Flattener{expand: expand}
}

// Flatten lists the leaf fields of doc in depth-first, key-insertion order.
func (f *Flattener) Flatten(doc any) []Field {
	fields := make([]Field, 0, 16)
	f.walk(doc, Path{}, &fields)
	return fields
}

func (f *Flattener) walk(v any, path Path, out *[]Field) {
	switch t := v.(type) {
	case *orderedmap.OrderedMap:
		keys := t.Keys()
		if len(keys) == 0 {
			*out = append(*out, newField(path, "{}", FieldTypeObject, false))
			return
		}
		for _, k := range keys {
			child, _ := t.Get(k)
			f.walk(child, path.Child(Key(k)), out)
		}
	case []any:
		f.walkArray(t, path, out)
	default:
		*out = append(*out, newField(path, t, scalarType(t), false))
	}
}

func (f *Flattener) walkArray(arr []any, path Path, out *[]Field) {
	if len(arr) > 0 && f.expandable(path) {
		for i, el := range arr {
			itemPath := path.Child(Index(i))
			switch el.(type) {
			case *orderedmap.OrderedMap:
				*out = append(*out, newField(itemPath, EncodeText(el), FieldTypeObject, false))
			case []any:
				*out = append(*out, newField(itemPath, EncodeText(el), FieldTypeArray, true))
			default:
				*out = append(*out, newField(itemPath, el, scalarType(el), false))
			}
		}
		return
	}
	if isObjectArray(arr) {
		for i, el := range arr {
			f.walk(el, path.Child(Index(i)), out)
		}
		return
	}
	*out = append(*out, newField(path, EncodeText(arr), FieldTypeArray, true))
}

func (f *Flattener) expandable(path Path) bool {
	last, ok := path.Last()
	if !ok || last.IsIndex() {
		return false
	}
	_, ok = f.expand[last.Key]
	return ok
}

// isObjectArray reports a non-empty array whose elements are all objects.
func isObjectArray(arr []any) bool {
	if len(arr) == 0 {
		return false
	}
	for _, el := range arr {
		if _, ok := el.(*orderedmap.OrderedMap); !ok {
			return false
		}
	}
	return true
}

func scalarType(v any) FieldType {
	switch v.(type) {
	case nil:
		return FieldTypeNull
	case bool:
		return FieldTypeBoolean
	case float64, int:
		return FieldTypeNumber
	default:
		return FieldTypeString
	}
}

func newField(path Path, value any, typ FieldType, rawArray bool) Field {
	return Field{
		ID:         fieldID(path),
		Path:       path,
		Value:      value,
		Type:       typ,
		IsRawArray: rawArray,
	}
}

func fieldID(path Path) string {
	return "field:" + path.String()
}
