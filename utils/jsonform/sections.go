package jsonform

import (
	"sort"
	"strconv"
	"strings"
	"unicode"
)

type Section struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Path   Path    `json:"path"`
	Fields []Field `json:"fields"`
}

// Labels holds the per-locale tables used to name sections.
type Labels struct {
	Root      string
	Item      string
	Separator string
	// Names maps a section's last key to a fixed title.
	Names map[string]string
	// Singular maps a collection key to the label of one of its items.
	Singular map[string]string
}

var FrenchLabels = Labels{
	Root:      "Général",
	Item:      "Élément",
	Separator: " › ",
	Names: map[string]string{
		"hero":         "Section principale",
		"about":        "À propos",
		"services":     "Services",
		"packages":     "Forfaits",
		"features":     "Fonctionnalités",
		"benefits":     "Avantages",
		"advantages":   "Atouts",
		"testimonials": "Témoignages",
		"faq":          "Questions fréquentes",
		"pricing":      "Tarifs",
		"contact":      "Contact",
		"team":         "Équipe",
		"cta":          "Appel à l'action",
		"seo":          "Référencement",
		"footer":       "Pied de page",
		"skills":       "Compétences",
		"tools":        "Outils",
		"process":      "Méthode",
		"steps":        "Étapes",
		"requirements": "Prérequis",
		"technologies": "Technologies",
	},
	Singular: map[string]string{
		"services":     "Service",
		"packages":     "Package",
		"features":     "Fonctionnalité",
		"benefits":     "Avantage",
		"advantages":   "Atout",
		"testimonials": "Témoignage",
		"faq":          "Question",
		"questions":    "Question",
		"items":        "Élément",
		"steps":        "Étape",
		"team":         "Membre",
		"members":      "Membre",
		"plans":        "Formule",
		"skills":       "Compétence",
		"tools":        "Outil",
		"links":        "Lien",
	},
}

var EnglishLabels = Labels{
	Root:      "General",
	Item:      "Item",
	Separator: " › ",
	Names: map[string]string{
		"hero":         "Hero Section",
		"about":        "About",
		"services":     "Services",
		"packages":     "Packages",
		"features":     "Features",
		"benefits":     "Benefits",
		"advantages":   "Advantages",
		"testimonials": "Testimonials",
		"faq":          "FAQ",
		"pricing":      "Pricing",
		"contact":      "Contact",
		"team":         "Team",
		"cta":          "Call to Action",
		"seo":          "SEO",
		"footer":       "Footer",
	},
	Singular: map[string]string{
		"services":     "Service",
		"packages":     "Package",
		"features":     "Feature",
		"benefits":     "Benefit",
		"advantages":   "Advantage",
		"testimonials": "Testimonial",
		"faq":          "Question",
		"questions":    "Question",
		"items":        "Item",
		"steps":        "Step",
		"team":         "Member",
		"members":      "Member",
		"plans":        "Plan",
		"skills":       "Skill",
		"tools":        "Tool",
		"links":        "Link",
	},
}

// LabelsFor returns the label tables of a locale, French when unknown.
func LabelsFor(locale string) Labels {
	switch strings.ToLower(locale) {
	case "en", "en-us", "en-gb":
		return EnglishLabels
	default:
		return FrenchLabels
	}
}

type Grouper struct {
	labels Labels
}

func NewGrouper(labels Labels) *Grouper {
	if labels.Separator == "" {
		labels.Separator = " › "
	}
	return &Grouper{labels: labels}
}

// Group buckets fields by parent path. Sections are ordered by ascending path
// length; sections of equal length keep their first-seen order, and fields
// keep their order inside a section.
func (g *Grouper) Group(fields []Field) []Section {
	positions := make(map[string]int)
	sections := make([]Section, 0)
	for _, field := range fields {
		parent := field.Path.Parent()
		id := SectionID(parent)
		i, ok := positions[id]
		if !ok {
			i = len(sections)
			positions[id] = i
			sections = append(sections, Section{
				ID:   id,
				Name: g.Label(parent),
				Path: parent,
			})
		}
		sections[i].Fields = append(sections[i].Fields, field)
	}
	sort.SliceStable(sections, func(a, b int) bool {
		return len(sections[a].Path) < len(sections[b].Path)
	})
	return sections
}

func SectionID(path Path) string {
	return "section:" + path.String()
}

// Label names the section rooted at path.
func (g *Grouper) Label(path Path) string {
	if len(path) == 0 {
		return g.labels.Root
	}
	last := path[len(path)-1]
	if !last.IsIndex() {
		if name, ok := g.labels.Names[last.Key]; ok {
			return name
		}
	}
	parts := make([]string, 0, len(path))
	for i, seg := range path {
		if !seg.IsIndex() {
			parts = append(parts, Humanize(seg.Key))
			continue
		}
		item := g.labels.Item
		if parent, ok := precedingKey(path[:i]); ok {
			if singular, ok := g.labels.Singular[parent]; ok {
				item = singular
			}
		}
		parts = append(parts, item+" "+strconv.Itoa(seg.Index+1))
	}
	return strings.Join(parts, g.labels.Separator)
}

func precedingKey(path Path) (string, bool) {
	for i := len(path) - 1; i >= 0; i-- {
		if !path[i].IsIndex() {
			return path[i].Key, true
		}
	}
	return "", false
}

// Humanize turns "heroTitle" into "Hero Title".
func Humanize(key string) string {
	var b strings.Builder
	runes := []rune(key)
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) && !unicode.IsSpace(runes[i-1]) {
			b.WriteRune(' ')
		}
		if i == 0 {
			r = unicode.ToUpper(r)
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}
