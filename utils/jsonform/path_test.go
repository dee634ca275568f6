package jsonform

import (
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/require"
)

func TestParsePath(t *testing.T) {
	want := Path{Key("items"), Index(0), Key("title")}

	require.Equal(t, want, ParsePath("items.0.title"))
	require.Equal(t, want, ParsePath("items[0].title"))
	require.Equal(t, Path{}, ParsePath(""))
	require.Equal(t, Path{Key("a.b"), Key("c")}, ParsePath(`a\.b.c`))
	require.Equal(t, Path{Index(2)}, ParsePath("[2]"))
}

func TestPathString(t *testing.T) {
	cases := map[string]Path{
		"items[0].title": {Key("items"), Index(0), Key("title")},
		"":               {},
		`a\.b.c`:         {Key("a.b"), Key("c")},
		"[1].name":       {Index(1), Key("name")},
	}
	for text, path := range cases {
		t.Run(text, func(t *testing.T) {
			require.Equal(t, text, path.String())
			require.Equal(t, path, ParsePath(text))
		})
	}
}

func TestPathHelpers(t *testing.T) {
	p := Path{Key("a"), Index(1), Key("b")}

	require.Equal(t, Path{Key("a"), Index(1)}, p.Parent())
	require.Equal(t, Path{}, Path{}.Parent())

	last, ok := p.Last()
	require.True(t, ok)
	require.Equal(t, Key("b"), last)

	child := p[:1].Child(Key("z"))
	require.Equal(t, Key("b"), p[2], "Child must not alias the receiver")
	require.True(t, child.Equal(Path{Key("a"), Key("z")}))
	require.False(t, child.Equal(p))
}

func TestSegmentDigits(t *testing.T) {
	require.True(t, ParseSegment("12").IsIndex())
	require.False(t, ParseSegment("1a").IsIndex())
	require.False(t, ParseSegment("").IsIndex())
	require.False(t, ParseSegment("-1").IsIndex())

	i, ok := Key("3").index()
	require.True(t, ok)
	require.Equal(t, 3, i)
}

func TestPathJSON(t *testing.T) {
	data, err := sonic.Marshal(Path{Key("items"), Index(0), Key("title")})
	require.NoError(t, err)
	require.JSONEq(t, `["items",0,"title"]`, string(data))

	var p Path
	require.NoError(t, sonic.Unmarshal([]byte(`["items",0,"7"]`), &p))
	require.Equal(t, Path{Key("items"), Index(0), Key("7")}, p)

	require.Error(t, sonic.Unmarshal([]byte(`[-1]`), &p))
	require.Error(t, sonic.Unmarshal([]byte(`[1.5]`), &p))
}
