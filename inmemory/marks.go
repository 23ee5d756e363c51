package inmemory

import (
	"fmt"
	"html"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/letmevibethatforyou/hitview"
	"github.com/microcosm-cc/bluemonday"
)

// defaultSnippetWords is used for a snippet attribute given without a
// length.
const defaultSnippetWords = 10

var textPolicy = bluemonday.StrictPolicy()

// blockBreaks puts a space before block-level tags so adjacent blocks do
// not run together once the markup is gone.
var blockBreaks = strings.NewReplacer(
	"<p", " <p", "</p", " </p",
	"<div", " <div", "</div", " </div",
	"<li", " <li", "</li", " </li",
	"<td", " <td", "<br", " <br", "<img", " <img",
)

// plainText drops all markup from s and collapses whitespace.
func plainText(s string) string {
	sanitized := textPolicy.Sanitize(blockBreaks.Replace(s))
	return strings.Join(strings.Fields(html.UnescapeString(sanitized)), " ")
}

// flattenText joins the plain text of every scalar inside value.
func flattenText(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return plainText(v)
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, flattenText(item))
		}
		return strings.Join(parts, " ")
	case map[string]any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, flattenText(item))
		}
		return strings.Join(parts, " ")
	default:
		return fmt.Sprint(v)
	}
}

// marker builds highlights and snippets for one query. Its output is
// escaped text plus the configured tags and ellipsis, nothing else.
type marker struct {
	terms    []string
	pre      string
	post     string
	ellipsis string
	lengths  map[string]int
}

func newMarker(queryTerms []string, cfg *hitview.SearchConfig) *marker {
	m := &marker{
		pre:      cfg.HighlightPreTag,
		post:     cfg.HighlightPostTag,
		ellipsis: cfg.SnippetEllipsis,
		lengths:  make(map[string]int, len(cfg.SnippetAttributes)),
	}

	for _, term := range queryTerms {
		if core := strings.TrimFunc(term, notWordRune); core != "" {
			m.terms = append(m.terms, core)
		}
	}

	for _, attr := range cfg.SnippetAttributes {
		name, length := parseSnippetAttribute(attr)
		if name != "" {
			m.lengths[name] = length
		}
	}
	return m
}

// parseSnippetAttribute splits "name:words".
func parseSnippetAttribute(attr string) (string, int) {
	name, raw, found := strings.Cut(attr, ":")
	if !found {
		return name, defaultSnippetWords
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return name, defaultSnippetWords
	}
	return name, n
}

func (m *marker) highlights(fields map[string]any) map[string]hitview.Value {
	out := make(map[string]hitview.Value, len(fields))
	for key, value := range fields {
		if key == "objectID" {
			continue
		}
		if v := markValue(value, m.highlightText); !hitview.IsAbsent(v) {
			out[key] = v
		}
	}
	return out
}

func (m *marker) snippets(fields map[string]any) map[string]hitview.Value {
	out := make(map[string]hitview.Value, len(m.lengths))
	for name, length := range m.lengths {
		value, ok := fields[name]
		if !ok {
			continue
		}
		v := markValue(value, func(s string) string {
			return m.snippetText(s, length)
		})
		if !hitview.IsAbsent(v) {
			out[name] = v
		}
	}
	return out
}

// markValue mirrors the shape of a stored value, marking every string.
// Values that carry no text are Absent.
func markValue(value any, mark func(string) string) hitview.Value {
	switch v := value.(type) {
	case string:
		if text := mark(v); text != "" {
			return hitview.Scalar(text)
		}
		return hitview.Absent{}
	case []any:
		list := make(hitview.List, 0, len(v))
		for _, item := range v {
			list = append(list, markValue(item, mark))
		}
		return list
	case map[string]any:
		obj := make(hitview.Object, len(v))
		for key, item := range v {
			obj[key] = markValue(item, mark)
		}
		return obj
	default:
		return hitview.Absent{}
	}
}

func (m *marker) highlightText(s string) string {
	words := strings.Fields(plainText(s))
	return m.markWords(words)
}

// snippetText returns a window of n words around the first matching word,
// or the leading n words when nothing matches. Elided text on either side
// is marked with the ellipsis.
func (m *marker) snippetText(s string, n int) string {
	words := strings.Fields(plainText(s))
	if len(words) == 0 {
		return ""
	}

	first := 0
	for i, w := range words {
		if m.matches(wordCore(w)) {
			first = i
			break
		}
	}

	start := max(0, min(first-n/2, len(words)-n))
	end := min(start+n, len(words))

	var b strings.Builder
	if start > 0 {
		b.WriteString(m.ellipsis)
	}
	b.WriteString(m.markWords(words[start:end]))
	if end < len(words) {
		b.WriteString(m.ellipsis)
	}
	return b.String()
}

func (m *marker) markWords(words []string) string {
	marked := make([]string, len(words))
	for i, w := range words {
		marked[i] = m.markWord(w)
	}
	return strings.Join(marked, " ")
}

// markWord wraps the letters and digits of a matching word in the tags,
// leaving surrounding punctuation outside.
func (m *marker) markWord(w string) string {
	start := strings.IndexFunc(w, isWordRune)
	if start < 0 || len(m.terms) == 0 {
		return html.EscapeString(w)
	}
	end := strings.LastIndexFunc(w, isWordRune)
	_, size := utf8.DecodeRuneInString(w[end:])
	end += size

	core := w[start:end]
	if !m.matches(core) {
		return html.EscapeString(w)
	}
	return html.EscapeString(w[:start]) + m.pre + html.EscapeString(core) + m.post + html.EscapeString(w[end:])
}

func (m *marker) matches(word string) bool {
	if word == "" {
		return false
	}
	lower := strings.ToLower(word)
	for _, term := range m.terms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

func wordCore(w string) string {
	return strings.TrimFunc(w, notWordRune)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func notWordRune(r rune) bool {
	return !isWordRune(r)
}
