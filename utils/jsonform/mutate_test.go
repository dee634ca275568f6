package jsonform

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRename(t *testing.T) {
	t.Run("keeps sibling order", func(t *testing.T) {
		out, err := Rename(mustParse(t, `{"a":1,"b":2,"c":3}`), ParsePath("b"), "x")
		require.NoError(t, err)
		require.Equal(t, `{"a":1,"x":2,"c":3}`, EncodeText(out))
	})
	t.Run("under an array item", func(t *testing.T) {
		out, err := Rename(mustParse(t, `{"items":[{"title":"t","n":1}]}`), ParsePath("items.0.title"), "heading")
		require.NoError(t, err)
		require.Equal(t, `{"items":[{"heading":"t","n":1}]}`, EncodeText(out))
	})
	t.Run("missing path leaves document unchanged", func(t *testing.T) {
		doc := mustParse(t, `{"a":{"b":1}}`)
		before := EncodeText(doc)
		_, err := Rename(doc, ParsePath("a.zz"), "c")
		require.ErrorIs(t, err, ErrPathNotFound)
		_, err = Rename(doc, ParsePath("q.b"), "c")
		require.ErrorIs(t, err, ErrPathNotFound)
		require.Equal(t, before, EncodeText(doc))
	})
	t.Run("rejects duplicates and bad names", func(t *testing.T) {
		doc := mustParse(t, `{"a":1,"b":2}`)
		_, err := Rename(doc, ParsePath("a"), "b")
		require.ErrorIs(t, err, ErrFieldExists)
		_, err = Rename(doc, ParsePath("a"), "  ")
		require.ErrorIs(t, err, ErrInvalidName)
		_, err = Rename(doc, Path{}, "x")
		require.ErrorIs(t, err, ErrRootPath)
	})
	t.Run("array items have no name", func(t *testing.T) {
		_, err := Rename(mustParse(t, `{"skills":["x"]}`), ParsePath("skills.0"), "y")
		require.ErrorIs(t, err, ErrNotRenamable)
	})
	t.Run("same name is a no-op", func(t *testing.T) {
		out, err := Rename(mustParse(t, `{"a":1}`), ParsePath("a"), "a")
		require.NoError(t, err)
		require.Equal(t, `{"a":1}`, EncodeText(out))
	})
}

func TestDelete(t *testing.T) {
	out, err := Delete(mustParse(t, `{"a":1,"b":2}`), Path{Key("a")})
	require.NoError(t, err)
	require.Equal(t, `{"b":2}`, EncodeText(out))

	out, err = Delete(mustParse(t, `{"skills":["x","y","z"]}`), ParsePath("skills.1"))
	require.NoError(t, err)
	require.Equal(t, `{"skills":["x","z"]}`, EncodeText(out))

	out, err = Delete(mustParse(t, `{"items":[{"a":1},{"a":2}]}`), ParsePath("items[0].a"))
	require.NoError(t, err)
	require.Equal(t, `{"items":[{},{"a":2}]}`, EncodeText(out))

	doc := mustParse(t, `{"a":1}`)
	_, err = Delete(doc, ParsePath("b"))
	require.ErrorIs(t, err, ErrPathNotFound)
	_, err = Delete(doc, ParsePath("a.b"))
	require.ErrorIs(t, err, ErrPathNotFound)
	_, err = Delete(mustParse(t, `{"s":["x"]}`), ParsePath("s.4"))
	require.ErrorIs(t, err, ErrPathNotFound)
	require.Equal(t, `{"a":1}`, EncodeText(doc))
}

func TestAddDefaults(t *testing.T) {
	cases := map[FieldType]string{
		FieldTypeString:  `{"f":""}`,
		FieldTypeNumber:  `{"f":0}`,
		FieldTypeBoolean: `{"f":false}`,
		FieldTypeArray:   `{"f":[]}`,
		FieldTypeObject:  `{"f":{}}`,
		FieldTypeNull:    `{"f":null}`,
	}
	for typ, want := range cases {
		t.Run(string(typ), func(t *testing.T) {
			out, err := Add(mustParse(t, `{}`), Path{}, "f", typ)
			require.NoError(t, err)
			require.Equal(t, want, EncodeText(out))
		})
	}
}

func TestAdd(t *testing.T) {
	t.Run("creates missing objects", func(t *testing.T) {
		doc := mustParse(t, `{"title":"t"}`)
		out, err := Add(doc, ParsePath("contact.social"), "x", FieldTypeString)
		require.NoError(t, err)
		require.Equal(t, `{"title":"t","contact":{"social":{"x":""}}}`, EncodeText(out))
		require.Equal(t, `{"title":"t"}`, EncodeText(doc))
	})
	t.Run("appends to arrays", func(t *testing.T) {
		out, err := Add(mustParse(t, `{"skills":["x"]}`), ParsePath("skills"), "", FieldTypeString)
		require.NoError(t, err)
		require.Equal(t, `{"skills":["x",""]}`, EncodeText(out))
	})
	t.Run("inside an array item", func(t *testing.T) {
		out, err := Add(mustParse(t, `{"items":[{"a":1}]}`), ParsePath("items.0"), "b", FieldTypeBoolean)
		require.NoError(t, err)
		require.Equal(t, `{"items":[{"a":1,"b":false}]}`, EncodeText(out))
	})
	t.Run("errors", func(t *testing.T) {
		doc := mustParse(t, `{"a":1,"s":["x"]}`)
		_, err := Add(doc, Path{}, "a", FieldTypeString)
		require.ErrorIs(t, err, ErrFieldExists)
		_, err = Add(doc, Path{}, "b", FieldType("date"))
		require.ErrorIs(t, err, ErrInvalidFieldType)
		_, err = Add(doc, ParsePath("a"), "b", FieldTypeString)
		require.ErrorIs(t, err, ErrNotContainer)
		_, err = Add(doc, ParsePath("s.3"), "b", FieldTypeString)
		require.ErrorIs(t, err, ErrPathNotFound)
		_, err = Add(doc, Path{}, "", FieldTypeString)
		require.ErrorIs(t, err, ErrInvalidName)
		require.Equal(t, `{"a":1,"s":["x"]}`, EncodeText(doc))
	})
}
