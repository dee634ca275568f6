package jsonform

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFlattenExpandListedArray(t *testing.T) {
	fields := NewFlattener(nil).Flatten(mustParse(t, `{"skills":["x","y","z"]}`))

	require.Len(t, fields, 3)
	for i, want := range []string{"x", "y", "z"} {
		require.Equal(t, Path{Key("skills"), Index(i)}, fields[i].Path)
		require.Equal(t, want, fields[i].Value)
		require.Equal(t, FieldTypeString, fields[i].Type)
		require.False(t, fields[i].IsRawArray)
	}
	require.Equal(t, "field:skills[1]", fields[1].ID)
}

func TestFlattenRawArray(t *testing.T) {
	fields := NewFlattener(nil).Flatten(mustParse(t, `{"tags":[1,"two",true]}`))

	require.Len(t, fields, 1)
	require.Equal(t, Path{Key("tags")}, fields[0].Path)
	require.True(t, fields[0].IsRawArray)
	require.Equal(t, FieldTypeArray, fields[0].Type)
	require.Equal(t, `[1,"two",true]`, fields[0].Value)
}

func TestFlattenArrayOfObjects(t *testing.T) {
	fields := NewFlattener(nil).Flatten(mustParse(t, `{"items":[{"a":1},{"a":2,"b":true}]}`))

	require.Len(t, fields, 3)
	require.Equal(t, "items[0].a", fields[0].Path.String())
	require.Equal(t, "items[1].a", fields[1].Path.String())
	require.Equal(t, "items[1].b", fields[2].Path.String())
	require.Equal(t, FieldTypeNumber, fields[0].Type)
	require.Equal(t, FieldTypeBoolean, fields[2].Type)
}

func TestFlattenLeafKinds(t *testing.T) {
	fields := NewFlattener(nil).Flatten(mustParse(t,
		`{"title":"t","empty":{},"none":null,"list":[],"services":[{"name":"audit"},["a"],3]}`))

	byPath := make(map[string]Field, len(fields))
	order := make([]string, 0, len(fields))
	for _, f := range fields {
		byPath[f.Path.String()] = f
		order = append(order, f.Path.String())
	}
	require.Equal(t, []string{"title", "empty", "none", "list", "services[0]", "services[1]", "services[2]"}, order)

	require.Equal(t, FieldTypeObject, byPath["empty"].Type)
	require.Equal(t, "{}", byPath["empty"].Value)
	require.Equal(t, FieldTypeNull, byPath["none"].Type)
	require.True(t, byPath["list"].IsRawArray)
	require.Equal(t, "[]", byPath["list"].Value)

	require.Equal(t, FieldTypeObject, byPath["services[0]"].Type)
	require.Equal(t, `{"name":"audit"}`, byPath["services[0]"].Value)
	require.Equal(t, FieldTypeArray, byPath["services[1]"].Type)
	require.True(t, byPath["services[1]"].IsRawArray)
	require.Equal(t, FieldTypeNumber, byPath["services[2]"].Type)
}

func TestFlattenExpandKeysConfigurable(t *testing.T) {
	doc := mustParse(t, `{"skills":["x","y"],"colors":["red","blue"]}`)

	none := NewFlattener([]string{}).Flatten(doc)
	require.Len(t, none, 2)
	require.True(t, none[0].IsRawArray)

	custom := NewFlattener([]string{"colors"}).Flatten(doc)
	require.Len(t, custom, 3)
	require.Equal(t, "colors[1]", custom[2].Path.String())
}

func TestFlattenScalarRoot(t *testing.T) {
	fields := NewFlattener(nil).Flatten("hello")
	require.Len(t, fields, 1)
	require.Empty(t, fields[0].Path)
	require.Equal(t, "hello", fields[0].Value)
}
