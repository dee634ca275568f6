package jsonform

import (
	"errors"
	"fmt"
	"strings"

	"github.com/iancoleman/orderedmap"
)

var (
	ErrPathNotFound     = errors.New("path does not resolve in document")
	ErrInvalidName      = errors.New("invalid field name")
	ErrFieldExists      = errors.New("field already exists")
	ErrNotContainer     = errors.New("target is not an object or array")
	ErrNotRenamable     = errors.New("array items cannot be renamed")
	ErrInvalidFieldType = errors.New("unknown field type")
	ErrRootPath         = errors.New("the document root cannot be changed")
)

// Clone deep-copies a document tree.
func Clone(v any) any {
	switch t := v.(type) {
	case *orderedmap.OrderedMap:
		o := NewObject()
		for _, k := range t.Keys() {
			child, _ := t.Get(k)
			o.Set(k, Clone(child))
		}
		return o
	case []any:
		out := make([]any, len(t))
		for i, el := range t {
			out[i] = Clone(el)
		}
		return out
	default:
		return v
	}
}

// step resolves one segment against a container. Index segments and
// all-digit keys address array elements; everything else addresses object keys.
func step(container any, seg Segment) (any, bool) {
	switch c := container.(type) {
	case *orderedmap.OrderedMap:
		if seg.IsIndex() {
			// objects rebuilt from digit keys still answer to index segments
			return c.Get(seg.String())
		}
		return c.Get(seg.Key)
	case []any:
		i, ok := seg.index()
		if !ok || i >= len(c) {
			return nil, false
		}
		return c[i], true
	default:
		return nil, false
	}
}

// Resolve returns the value stored at path.
func Resolve(doc any, path Path) (any, bool) {
	current := doc
	for _, seg := range path {
		next, ok := step(current, seg)
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}

func setChild(container any, seg Segment, value any) (any, error) {
	switch c := container.(type) {
	case *orderedmap.OrderedMap:
		c.Set(seg.String(), value)
		return c, nil
	case []any:
		i, ok := seg.index()
		if !ok || i >= len(c) {
			return nil, fmt.Errorf("%w: index %s", ErrPathNotFound, seg.String())
		}
		c[i] = value
		return c, nil
	default:
		return nil, ErrNotContainer
	}
}

// replaceAt stores value at path and returns the new root.
func replaceAt(doc any, path Path, value any) (any, error) {
	if len(path) == 0 {
		return value, nil
	}
	parent, ok := Resolve(doc, path[:len(path)-1])
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPathNotFound, path.Parent())
	}
	if _, err := setChild(parent, path[len(path)-1], value); err != nil {
		return nil, err
	}
	return doc, nil
}

func validName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name is empty", ErrInvalidName)
	}
	return nil
}

// Rename replaces the key addressed by path with newName. The key keeps its
// position among its siblings. The input document is never modified.
func Rename(doc any, path Path, newName string) (any, error) {
	if len(path) == 0 {
		return nil, ErrRootPath
	}
	if err := validName(newName); err != nil {
		return nil, err
	}
	out := Clone(doc)
	parent, ok := Resolve(out, path[:len(path)-1])
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPathNotFound, path)
	}
	obj, ok := parent.(*orderedmap.OrderedMap)
	if !ok {
		return nil, ErrNotRenamable
	}
	last := path[len(path)-1]
	oldName := last.String()
	value, ok := obj.Get(oldName)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPathNotFound, path)
	}
	if oldName == newName {
		return out, nil
	}
	if _, exists := obj.Get(newName); exists {
		return nil, fmt.Errorf("%w: %q", ErrFieldExists, newName)
	}

	keys := append([]string(nil), obj.Keys()...)
	values := make([]any, len(keys))
	for i, k := range keys {
		values[i], _ = obj.Get(k)
	}
	renamed := NewObject()
	for i, k := range keys {
		if k == oldName {
			renamed.Set(newName, value)
			continue
		}
		renamed.Set(k, values[i])
	}
	return replaceAt(out, path[:len(path)-1], renamed)
}

// Delete removes the field or array element addressed by path. Later array
// elements shift down by one.
func Delete(doc any, path Path) (any, error) {
	if len(path) == 0 {
		return nil, ErrRootPath
	}
	out := Clone(doc)
	parentPath := path[:len(path)-1]
	parent, ok := Resolve(out, parentPath)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPathNotFound, path)
	}
	last := path[len(path)-1]
	switch c := parent.(type) {
	case []any:
		i, ok := last.index()
		if !ok || i >= len(c) {
			return nil, fmt.Errorf("%w: %s", ErrPathNotFound, path)
		}
		shrunk := make([]any, 0, len(c)-1)
		shrunk = append(shrunk, c[:i]...)
		shrunk = append(shrunk, c[i+1:]...)
		return replaceAt(out, parentPath, shrunk)
	case *orderedmap.OrderedMap:
		if _, ok := c.Get(last.String()); !ok {
			return nil, fmt.Errorf("%w: %s", ErrPathNotFound, path)
		}
		c.Delete(last.String())
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrPathNotFound, path)
	}
}

// DefaultValue is the value a newly added field of type t starts with.
func DefaultValue(t FieldType) (any, error) {
	switch t {
	case FieldTypeString:
		return "", nil
	case FieldTypeNumber:
		return float64(0), nil
	case FieldTypeBoolean:
		return false, nil
	case FieldTypeArray:
		return []any{}, nil
	case FieldTypeObject:
		return NewObject(), nil
	case FieldTypeNull:
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidFieldType, t)
	}
}

// Add creates name under the container at sectionPath, creating missing
// objects on the way. When the container is an array the new value is
// appended and name is ignored.
func Add(doc any, sectionPath Path, name string, t FieldType) (any, error) {
	value, err := DefaultValue(t)
	if err != nil {
		return nil, err
	}
	out := Clone(doc)
	if out == nil && len(sectionPath) == 0 {
		out = NewObject()
	}

	current := out
	for i, seg := range sectionPath {
		next, ok := step(current, seg)
		if ok {
			current = next
			continue
		}
		obj, isObject := current.(*orderedmap.OrderedMap)
		if !isObject {
			return nil, fmt.Errorf("%w: %s", ErrPathNotFound, sectionPath[:i+1])
		}
		created := NewObject()
		obj.Set(seg.String(), created)
		current = created
	}

	switch c := current.(type) {
	case []any:
		grown := append(append(make([]any, 0, len(c)+1), c...), value)
		return replaceAt(out, sectionPath, grown)
	case *orderedmap.OrderedMap:
		if err := validName(name); err != nil {
			return nil, err
		}
		if _, exists := c.Get(name); exists {
			return nil, fmt.Errorf("%w: %q", ErrFieldExists, name)
		}
		c.Set(name, value)
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrNotContainer, sectionPath)
	}
}
