package jsonform

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func sectionsOf(t *testing.T, labels Labels, text string) []Section {
	t.Helper()
	return NewGrouper(labels).Group(NewFlattener(nil).Flatten(mustParse(t, text)))
}

func TestGroupOrdersByDepth(t *testing.T) {
	sections := sectionsOf(t, EnglishLabels, `{"hero":{"cta":{"label":"Go"}},"title":"Home","footer":{"note":"n"}}`)

	require.Len(t, sections, 3)
	require.Equal(t, "section:", sections[0].ID)
	require.Equal(t, "General", sections[0].Name)
	require.Equal(t, "section:footer", sections[1].ID)
	require.Equal(t, "Footer", sections[1].Name)
	require.Equal(t, "section:hero.cta", sections[2].ID)
	require.Equal(t, "Call to Action", sections[2].Name)
	require.Len(t, sections[0].Fields, 1)
}

func TestGroupKeepsFirstSeenOrderForEqualDepth(t *testing.T) {
	sections := sectionsOf(t, EnglishLabels, `{"b":{"x":1},"a":{"y":2},"c":{"z":3}}`)

	require.Len(t, sections, 3)
	require.Equal(t, []string{"B", "A", "C"}, []string{sections[0].Name, sections[1].Name, sections[2].Name})
}

func TestLabelItems(t *testing.T) {
	fr := NewGrouper(FrenchLabels)
	en := NewGrouper(EnglishLabels)

	packages := Path{Key("packages"), Index(0)}
	require.Equal(t, "Packages › Package 1", fr.Label(packages))
	require.Equal(t, "Packages › Package 1", en.Label(packages))

	widgets := Path{Key("widgets"), Index(2)}
	require.Equal(t, "Widgets › Élément 3", fr.Label(widgets))
	require.Equal(t, "Widgets › Item 3", en.Label(widgets))

	require.Equal(t, "Général", fr.Label(Path{}))
	require.Equal(t, "Témoignages", fr.Label(Path{Key("testimonials")}))
	require.Equal(t, "Page Header › Main Title", en.Label(Path{Key("pageHeader"), Key("mainTitle")}))
}

func TestHumanize(t *testing.T) {
	require.Equal(t, "Hero Title", Humanize("heroTitle"))
	require.Equal(t, "Title", Humanize("title"))
	require.Equal(t, "", Humanize(""))
}

func TestLabelsFor(t *testing.T) {
	require.Equal(t, "General", LabelsFor("en").Root)
	require.Equal(t, "Général", LabelsFor("fr").Root)
	require.Equal(t, "Général", LabelsFor("de").Root)
}
