package jsonform

import (
	"math/rand"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func roundTrip(t *testing.T, text string) any {
	t.Helper()
	return Rebuild(NewFlattener(nil).Flatten(mustParse(t, text)))
}

func TestRebuildRoundTripExamples(t *testing.T) {
	cases := []string{
		`{"title":"Accueil","price":49.9,"published":true,"note":null}`,
		`{"items":[{"a":1},{"a":2}]}`,
		`{"skills":["x","y","z"]}`,
		`{"tags":[1,"two",true]}`,
		`{"services":[{"name":"audit","tags":["a"]},["nested"],3,"plain"]}`,
		`{"empty":{},"list":[],"skills":[]}`,
		`{"packages":[{"name":"Essentiel","options":[{"label":"x"},{"label":"y"}]},{"name":"Premium","options":[]}]}`,
		`{"0":"digit key","nested":{"12":{"x":1}}}`,
		`[{"a":1},{"a":2}]`,
		`"scalar root"`,
		`{}`,
	}
	for _, text := range cases {
		t.Run(text, func(t *testing.T) {
			doc := mustParse(t, text)
			rebuilt := roundTrip(t, text)
			require.True(t, Equal(doc, rebuilt), "got %s", EncodeText(rebuilt))
			require.Equal(t, EncodeText(doc), EncodeText(rebuilt))
		})
	}
}

func TestRebuildArrayOfObjectsOrder(t *testing.T) {
	rebuilt := roundTrip(t, `{"items":[{"a":1},{"a":2}]}`)
	items, ok := Resolve(rebuilt, Path{Key("items")})
	require.True(t, ok)
	arr, ok := items.([]any)
	require.True(t, ok)
	require.Len(t, arr, 2)
	require.Equal(t, `{"a":1}`, EncodeText(arr[0]))
}

func TestRebuildCoercion(t *testing.T) {
	fields := []Field{
		{Path: Path{Key("count")}, Value: " 42 ", Type: FieldTypeNumber},
		{Path: Path{Key("bad")}, Value: "abc", Type: FieldTypeNumber},
		{Path: Path{Key("on")}, Value: "true", Type: FieldTypeBoolean},
		{Path: Path{Key("off")}, Value: "yes", Type: FieldTypeBoolean},
		{Path: Path{Key("tags")}, Value: "[1,", Type: FieldTypeArray, IsRawArray: true},
		{Path: Path{Key("meta")}, Value: "not json", Type: FieldTypeObject},
		{Path: Path{Key("label")}, Value: 12.0, Type: FieldTypeString},
		{Path: Path{Key("gone")}, Value: "x", Type: FieldTypeNull},
	}
	require.Equal(t,
		`{"count":42,"bad":0,"on":true,"off":false,"tags":[],"meta":{},"label":"12","gone":null}`,
		EncodeText(Rebuild(fields)))
}

func TestRebuildClosesIndexGaps(t *testing.T) {
	fields := []Field{
		{Path: Path{Key("skills"), Index(0)}, Value: "x", Type: FieldTypeString},
		{Path: Path{Key("skills"), Index(2)}, Value: "z", Type: FieldTypeString},
	}
	require.Equal(t, `{"skills":["x","z"]}`, EncodeText(Rebuild(fields)))
}

func TestRebuildSortsIndexesNumerically(t *testing.T) {
	fields := make([]Field, 0, 12)
	for i := 11; i >= 0; i-- {
		fields = append(fields, Field{Path: Path{Key("n"), Index(i)}, Value: float64(i), Type: FieldTypeNumber})
	}
	require.Equal(t, `{"n":[0,1,2,3,4,5,6,7,8,9,10,11]}`, EncodeText(Rebuild(fields)))
}

func TestRebuildNoFields(t *testing.T) {
	require.Equal(t, `{}`, EncodeText(Rebuild(nil)))
}

// docGen builds random documents made of the shapes the flattener keeps
// distinct: scalars, objects, scalar arrays and non-empty object arrays.
type docGen struct {
	r *rand.Rand
}

func (g docGen) key() string {
	const letters = "abcdefghijklmnopqrstuvwxyzABCDEFGH"
	n := 1 + g.r.Intn(6)
	b := make([]byte, n)
	for i := range b {
		b[i] = letters[g.r.Intn(len(letters))]
	}
	return string(b)
}

func (g docGen) scalar() any {
	switch g.r.Intn(5) {
	case 0:
		return nil
	case 1:
		return g.r.Intn(2) == 0
	case 2:
		return float64(g.r.Intn(2000) - 1000)
	case 3:
		return g.r.Float64() * 1000
	default:
		words := []string{"", "Accueil", "à propos", `quote"d`, "line\nbreak", "42", "true", "{}"}
		return words[g.r.Intn(len(words))]
	}
}

func (g docGen) object(depth int) any {
	o := NewObject()
	n := g.r.Intn(5)
	for i := 0; i < n; i++ {
		k := g.key()
		if _, exists := o.Get(k); exists {
			continue
		}
		o.Set(k, g.value(depth+1))
	}
	return o
}

func (g docGen) value(depth int) any {
	if depth > 3 {
		return g.scalar()
	}
	switch g.r.Intn(6) {
	case 0:
		return g.object(depth)
	case 1:
		arr := make([]any, g.r.Intn(4))
		for i := range arr {
			arr[i] = g.scalar()
		}
		return arr
	case 2:
		arr := make([]any, 1+g.r.Intn(3))
		for i := range arr {
			arr[i] = g.object(depth)
		}
		return arr
	default:
		return g.scalar()
	}
}

func TestRebuildRoundTripRandom(t *testing.T) {
	gen := docGen{r: rand.New(rand.NewSource(20240611))}
	flattener := NewFlattener(nil)
	for i := 0; i < 500; i++ {
		doc := gen.object(0)
		text := EncodeText(doc)
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			rebuilt := Rebuild(flattener.Flatten(doc))
			require.True(t, Equal(doc, rebuilt), "input %s\ngot   %s", text, EncodeText(rebuilt))
		})
	}
}
