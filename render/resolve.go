package render

import "github.com/letmevibethatforyou/hitview"

// Source names the representation a resolved field came from.
type Source int

const (
	SourceNone Source = iota
	SourceSnippet
	SourceHighlight
	SourceRaw
)

// String implements fmt.Stringer.
func (s Source) String() string {
	switch s {
	case SourceSnippet:
		return "snippet"
	case SourceHighlight:
		return "highlight"
	case SourceRaw:
		return "raw"
	default:
		return "none"
	}
}

// MarshalText lets Source serialise by name.
func (s Source) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Resolved is the render-ready output for one field of one hit. Items are
// safe HTML and must be embedded without further escaping.
type Resolved struct {
	Field  string   `json:"field"`
	Label  string   `json:"label"`
	Source Source   `json:"source"`
	Multi  bool     `json:"multi"`
	Items  []string `json:"items"`
}

// Absent reports whether there is nothing to render.
func (r Resolved) Absent() bool {
	return len(r.Items) == 0
}

// HTML returns the first fragment, which is the whole output of a scalar
// field.
func (r Resolved) HTML() string {
	if len(r.Items) == 0 {
		return ""
	}
	return r.Items[0]
}

// tier is one step of the precedence order. Trusted tiers come from the
// backend already sanitized and are used verbatim; the raw tier is
// sanitized locally.
type tier struct {
	source  Source
	value   hitview.Value
	trusted bool
}

func tiers(snippet, highlight, raw hitview.Value) []tier {
	return []tier{
		{source: SourceSnippet, value: snippet, trusted: true},
		{source: SourceHighlight, value: highlight, trusted: true},
		{source: SourceRaw, value: raw},
	}
}

// items returns the non-empty fragments a tier contributes for field.
func (t tier) items(field Field) []string {
	values := NormalizeField(field, t.value)
	if t.trusted {
		return values
	}

	maxLength := field.fallbackLength()
	out := make([]string, 0, len(values))
	for _, v := range values {
		if s := sanitizeRaw(v, maxLength); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func resolve(field Field, multi bool, snippet, highlight, raw hitview.Value) Resolved {
	out := Resolved{Field: field.Name, Label: field.Label, Multi: multi}
	for _, t := range tiers(snippet, highlight, raw) {
		items := t.items(field)
		if len(items) == 0 {
			continue
		}
		if !multi {
			items = items[:1]
		}
		out.Source = t.source
		out.Items = items
		return out
	}
	return out
}

// Resolve picks the single fragment to show for a scalar field: the
// snippet, else the highlight, else the raw value stripped, truncated and
// escaped. A list-shaped representation contributes its first non-empty
// element.
func Resolve(field Field, snippet, highlight, raw hitview.Value) Resolved {
	return resolve(field, false, snippet, highlight, raw)
}

// ResolveList is Resolve for list fields. Presence of each tier is judged
// over the whole list, so a list with an empty head still counts.
func ResolveList(field Field, snippet, highlight, raw hitview.Value) Resolved {
	return resolve(field, true, snippet, highlight, raw)
}

// ResolveHit resolves field against hit using the variant its shape calls
// for.
func ResolveHit(hit hitview.Hit, field Field) Resolved {
	snippet := hit.Snippet(field.Name)
	highlight := hit.Highlight(field.Name)
	raw := hit.Raw(field.Name)
	if field.Shape.IsList() {
		return ResolveList(field, snippet, highlight, raw)
	}
	return Resolve(field, snippet, highlight, raw)
}
