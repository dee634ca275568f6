package jsonform

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/iancoleman/orderedmap"
)

// Rebuild reconstructs a document from a field list. Field order decides the
// key order of rebuilt objects.
//
// Every container that sits above an index segment is first built as an
// object keyed by decimal strings, then turned into an array of its values in
// numeric key order. Gaps left by removed items are closed.
func Rebuild(fields []Field) any {
	arrayPaths := make(map[string]Path)
	for _, field := range fields {
		for i, seg := range field.Path {
			if seg.IsIndex() {
				container := field.Path[:i].Clone()
				arrayPaths[container.String()+"\x00"+strconv.Itoa(len(container))] = container
			}
		}
	}

	var root any = NewObject()
	for _, field := range fields {
		value := coerceValue(field)
		if len(field.Path) == 0 {
			root = value
			continue
		}
		current, ok := root.(*orderedmap.OrderedMap)
		if !ok {
			current = NewObject()
			root = current
		}
		for _, seg := range field.Path[:len(field.Path)-1] {
			key := seg.String()
			child, exists := current.Get(key)
			next, isObject := child.(*orderedmap.OrderedMap)
			if !exists || !isObject {
				next = NewObject()
				current.Set(key, next)
			}
			current = next
		}
		last := field.Path[len(field.Path)-1]
		current.Set(last.String(), value)
	}

	ordered := make([]Path, 0, len(arrayPaths))
	for _, p := range arrayPaths {
		ordered = append(ordered, p)
	}
	// deepest first, so a parent is still an object while its children convert
	sort.SliceStable(ordered, func(a, b int) bool {
		if len(ordered[a]) != len(ordered[b]) {
			return len(ordered[a]) > len(ordered[b])
		}
		return ordered[a].String() < ordered[b].String()
	})
	for _, p := range ordered {
		root = convertToArray(root, p)
	}
	return root
}

func convertToArray(root any, path Path) any {
	if len(path) == 0 {
		if arr, ok := objectToArray(root); ok {
			return arr
		}
		return root
	}
	current, ok := root.(*orderedmap.OrderedMap)
	if !ok {
		return root
	}
	for _, seg := range path[:len(path)-1] {
		child, _ := current.Get(seg.String())
		next, ok := child.(*orderedmap.OrderedMap)
		if !ok {
			return root
		}
		current = next
	}
	key := path[len(path)-1].String()
	child, _ := current.Get(key)
	if arr, ok := objectToArray(child); ok {
		current.Set(key, arr)
	}
	return root
}

// objectToArray converts an object whose keys are all decimal integers.
func objectToArray(v any) ([]any, bool) {
	obj, ok := v.(*orderedmap.OrderedMap)
	if !ok {
		return nil, false
	}
	keys := obj.Keys()
	indexes := make([]int, 0, len(keys))
	byIndex := make(map[int]any, len(keys))
	for _, k := range keys {
		if !isDigits(k) {
			return nil, false
		}
		n, err := strconv.Atoi(k)
		if err != nil {
			return nil, false
		}
		value, _ := obj.Get(k)
		indexes = append(indexes, n)
		byIndex[n] = value
	}
	sort.Ints(indexes)
	out := make([]any, 0, len(indexes))
	for _, n := range indexes {
		out = append(out, byIndex[n])
	}
	return out, true
}

// coerceValue turns an edited field value back into a document value. Raw
// arrays and objects that fail to parse become empty containers.
func coerceValue(field Field) any {
	if field.IsRawArray || field.Type == FieldTypeArray {
		return parseContainer(field.Value, FieldTypeArray)
	}
	switch field.Type {
	case FieldTypeNumber:
		return coerceNumber(field.Value)
	case FieldTypeBoolean:
		switch v := field.Value.(type) {
		case bool:
			return v
		case string:
			return v == "true"
		default:
			return false
		}
	case FieldTypeObject:
		return parseContainer(field.Value, FieldTypeObject)
	case FieldTypeNull:
		return nil
	default:
		switch v := field.Value.(type) {
		case string:
			return v
		case nil:
			return ""
		default:
			return fmt.Sprint(v)
		}
	}
}

// coerceNumber turns a submitted value into a float64. Text that does not
// parse as a number becomes 0 rather than keeping the previous value, so a
// number field always stores a number.
func coerceNumber(v any) any {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return float64(0)
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return float64(0)
		}
		return f
	case bool:
		if n {
			return float64(1)
		}
		return float64(0)
	default:
		return float64(0)
	}
}

func parseContainer(v any, want FieldType) any {
	var parsed any
	switch t := v.(type) {
	case string:
		doc, err := ParseDocument([]byte(t))
		if err == nil {
			parsed = doc
		}
	default:
		parsed = normalize(v)
	}
	if want == FieldTypeArray {
		if arr, ok := parsed.([]any); ok {
			return arr
		}
		return []any{}
	}
	if obj, ok := parsed.(*orderedmap.OrderedMap); ok {
		return obj
	}
	return NewObject()
}
