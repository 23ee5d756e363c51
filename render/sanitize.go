package render

import (
	"regexp"
	"strings"
	"unicode"
)

// Ellipsis marks truncated fallback text.
const Ellipsis = "…"

// htmlEscaper rewrites the five HTML-significant characters. A Replacer
// makes a single pass, so entities it emits are never escaped again.
var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

// EscapeHTML escapes text for embedding in HTML element content or a quoted
// attribute.
func EscapeHTML(text string) string {
	return htmlEscaper.Replace(text)
}

var (
	tagPattern        = regexp.MustCompile(`<[^>]*>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// StripMarkup drops every <...> span and collapses whitespace. It is a
// pattern match, not a parser, and only runs on raw fallback text.
func StripMarkup(text string) string {
	text = tagPattern.ReplaceAllString(text, " ")
	text = whitespacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// Truncate cuts text to at most maxLength characters and appends Ellipsis
// when anything was removed. Trailing whitespace before the ellipsis is
// trimmed. Budgets below 1 are treated as 1.
func Truncate(text string, maxLength int) string {
	if text == "" {
		return ""
	}
	if maxLength < 1 {
		maxLength = 1
	}

	runes := []rune(text)
	if len(runes) <= maxLength {
		return text
	}
	head := strings.TrimRightFunc(string(runes[:maxLength]), unicode.IsSpace)
	return head + Ellipsis
}

// sanitizeRaw is the local fallback path: strip, cut, escape.
func sanitizeRaw(text string, maxLength int) string {
	return EscapeHTML(Truncate(StripMarkup(text), maxLength))
}
