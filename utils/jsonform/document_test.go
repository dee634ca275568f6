package jsonform

import (
	"testing"

	"github.com/iancoleman/orderedmap"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, text string) any {
	t.Helper()
	doc, err := ParseDocument([]byte(text))
	require.NoError(t, err)
	return doc
}

func TestParseDocumentKeepsKeyOrder(t *testing.T) {
	doc := mustParse(t, `{"b":1,"a":[true,null,"x"],"c":{"z":{},"y":[{"k":2}]}}`)

	obj, ok := doc.(*orderedmap.OrderedMap)
	require.True(t, ok)
	require.Equal(t, []string{"b", "a", "c"}, obj.Keys())

	c, _ := obj.Get("c")
	inner, ok := c.(*orderedmap.OrderedMap)
	require.True(t, ok)
	require.Equal(t, []string{"z", "y"}, inner.Keys())

	y, _ := inner.Get("y")
	arr, ok := y.([]any)
	require.True(t, ok)
	_, ok = arr[0].(*orderedmap.OrderedMap)
	require.True(t, ok)

	require.Equal(t, `{"b":1,"a":[true,null,"x"],"c":{"z":{},"y":[{"k":2}]}}`, EncodeText(doc))
}

func TestParseDocumentScalars(t *testing.T) {
	require.Equal(t, "x", mustParse(t, `"x"`))
	require.Equal(t, 1.5, mustParse(t, ` 1.5 `))
	require.Nil(t, mustParse(t, `null`))
	require.Equal(t, []any{float64(1), float64(2)}, mustParse(t, `[1,2]`))
}

func TestParseDocumentErrors(t *testing.T) {
	for _, text := range []string{``, `   `, `{"a":`, `{a:1}`, `[1,]`} {
		_, err := ParseDocument([]byte(text))
		require.ErrorIs(t, err, ErrDocumentInvalid, "input %q", text)
	}
}

func TestMarshalDocumentNumbers(t *testing.T) {
	require.Equal(t, `[100,0.25,-3,1e+21]`, EncodeText([]any{100.0, 0.25, -3.0, 1e21}))
	require.Equal(t, `{"s":"a\"b"}`, EncodeText(mustParse(t, `{"s":"a\"b"}`)))
}

func TestEqualIgnoresKeyOrder(t *testing.T) {
	require.True(t, Equal(mustParse(t, `{"a":1,"b":[1,{"c":null}]}`), mustParse(t, `{"b":[1,{"c":null}],"a":1}`)))
	require.False(t, Equal(mustParse(t, `{"a":1}`), mustParse(t, `{"a":"1"}`)))
	require.False(t, Equal(mustParse(t, `[1,2]`), mustParse(t, `[2,1]`)))
}
