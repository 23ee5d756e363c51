// Package render turns search hits into safe, truncated, highlighted HTML
// previews and collects the images embedded in their content.
package render

import (
	"fmt"
	"slices"

	"github.com/letmevibethatforyou/hitview"
)

// Shape selects the item coercion applied to a field's raw value.
type Shape int

const (
	// ShapeText is a single HTML string.
	ShapeText Shape = iota
	// ShapeAnswers is a list of answers; each may be a string, a list whose
	// head is the answer, or an object with a "text" member.
	ShapeAnswers
	// ShapeHyperlinks is a list of links; each may be a string or an object
	// with a url, href or link member.
	ShapeHyperlinks
)

// IsList reports whether fields of this shape resolve to a list.
func (s Shape) IsList() bool {
	return s == ShapeAnswers || s == ShapeHyperlinks
}

// Field describes one displayable hit field.
type Field struct {
	Name  string
	Label string
	Shape Shape

	// SnippetLength is the word budget requested from the backend's
	// snippeting. It is never enforced locally.
	SnippetLength int

	// FallbackLength is the character budget applied to raw content when the
	// backend returned neither snippet nor highlight.
	FallbackLength int
}

const (
	// DefaultFallbackLength is the raw-content budget for a text field
	// outside the field table.
	DefaultFallbackLength = 200

	// DefaultListFallbackLength is the per-item budget for a list field
	// outside the field table.
	DefaultListFallbackLength = 160
)

// Fields is the closed set of rendered fields in display order.
var Fields = []Field{
	{Name: "prompt", Label: "Prompt", Shape: ShapeText, SnippetLength: 30, FallbackLength: 240},
	{Name: "answers", Label: "Answers", Shape: ShapeAnswers, SnippetLength: 12, FallbackLength: 140},
	{Name: "explanation", Label: "Explanation", Shape: ShapeText, SnippetLength: 30, FallbackLength: 240},
	{Name: "hyperlinks", Label: "Hyperlinks", Shape: ShapeHyperlinks, SnippetLength: 12, FallbackLength: 140},
	{Name: "questionHeader", Label: "Question Header", Shape: ShapeText, SnippetLength: 18, FallbackLength: 180},
	{Name: "meta", Label: "Meta", Shape: ShapeText, SnippetLength: 20, FallbackLength: 200},
}

// DefaultFields are searched when the caller does not pick any.
var DefaultFields = []string{"prompt", "answers", "explanation"}

// ImageFields is the order in which image groups are reported.
var ImageFields = []string{"questionHeader", "prompt", "answers", "explanation", "hyperlinks", "meta"}

// Lookup returns the field definition for name.
func Lookup(name string) (Field, bool) {
	for _, f := range Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

func (f Field) fallbackLength() int {
	if f.FallbackLength > 0 {
		return f.FallbackLength
	}
	if f.Shape.IsList() {
		return DefaultListFallbackLength
	}
	return DefaultFallbackLength
}

// FallbackLength returns the truncation budget for a field name. Unknown
// names get DefaultFallbackLength.
func FallbackLength(name string) int {
	f, ok := Lookup(name)
	if !ok {
		return DefaultFallbackLength
	}
	return f.fallbackLength()
}

// SnippetAttributes returns "name:length" pairs for every field.
func SnippetAttributes() []string {
	attrs := make([]string, 0, len(Fields))
	for _, f := range Fields {
		attrs = append(attrs, fmt.Sprintf("%s:%d", f.Name, f.SnippetLength))
	}
	return attrs
}

// NormalizeSelection keeps the known names of selected, in display order and
// without duplicates.
func NormalizeSelection(selected []string) []string {
	out := make([]string, 0, len(selected))
	for _, f := range Fields {
		if slices.Contains(selected, f.Name) {
			out = append(out, f.Name)
		}
	}
	return out
}

// SearchDefaults configures a search the way the card renderer expects:
// snippets sized per field, <mark> highlight tags and a single-glyph
// ellipsis.
func SearchDefaults() []hitview.SearchOption {
	return []hitview.SearchOption{
		hitview.WithSnippetAttributes(SnippetAttributes()...),
		hitview.WithHighlightTags("<mark>", "</mark>"),
		hitview.WithSnippetEllipsis(Ellipsis),
	}
}
