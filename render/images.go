package render

import (
	"html"
	"log/slog"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/cockroachdb/errors"
	"github.com/letmevibethatforyou/hitview"
)

// SourceFinder discovers image references in one HTML-bearing string.
// Returned sources are raw; the extractor normalizes them.
type SourceFinder interface {
	FindSources(value string) ([]string, error)
}

// SourceFinderFunc adapts a function to SourceFinder.
type SourceFinderFunc func(string) ([]string, error)

// FindSources implements SourceFinder.
func (f SourceFinderFunc) FindSources(value string) ([]string, error) {
	return f(value)
}

// MarkupFinder parses the value as an HTML fragment and reads the source of
// every img element.
type MarkupFinder struct{}

// FindSources implements SourceFinder.
func (MarkupFinder) FindSources(value string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(value))
	if err != nil {
		return nil, errors.Wrap(err, "parse html fragment")
	}

	var sources []string
	doc.Find("img").Each(func(_ int, img *goquery.Selection) {
		src, _ := img.Attr("src")
		if strings.TrimSpace(src) == "" {
			// lazy-loaded images keep the real URL here
			src, _ = img.Attr("data-src")
		}
		if src != "" {
			sources = append(sources, src)
		}
	})
	return sources, nil
}

var imageURLPattern = regexp.MustCompile(`(?i)(?:https?:)?//[^\s"'()<>\\]+?\.(?:png|jpe?g|gif|webp|svg)\b(?:\?[^\s"'()<>\\]*)?`)

// PatternFinder scans the raw string for bare or protocol-relative URLs
// ending in a known image extension. It catches references the parser
// cannot see, such as inline styles or broken tags. Matches are
// entity-decoded so they agree with attribute values read by MarkupFinder.
type PatternFinder struct{}

// FindSources implements SourceFinder.
func (PatternFinder) FindSources(value string) ([]string, error) {
	matches := imageURLPattern.FindAllString(value, -1)
	for i, m := range matches {
		matches[i] = html.UnescapeString(m)
	}
	return matches, nil
}

// ImageExtractor runs every finder over each value and unions the results.
type ImageExtractor struct {
	finders []SourceFinder
}

// ExtractorOption configures an ImageExtractor.
type ExtractorOption func(*ImageExtractor)

// WithoutMarkupParser leaves only the pattern scan, for environments where
// structured parsing is unavailable.
func WithoutMarkupParser() ExtractorOption {
	return func(e *ImageExtractor) {
		e.finders = []SourceFinder{PatternFinder{}}
	}
}

// WithFinders replaces the finder passes.
func WithFinders(finders ...SourceFinder) ExtractorOption {
	return func(e *ImageExtractor) {
		e.finders = finders
	}
}

// NewImageExtractor returns an extractor running the markup parser and then
// the pattern scan.
func NewImageExtractor(opts ...ExtractorOption) *ImageExtractor {
	e := &ImageExtractor{
		finders: []SourceFinder{MarkupFinder{}, PatternFinder{}},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var defaultExtractor = NewImageExtractor()

// CollectImageSources collects images with the default extractor.
func CollectImageSources(values []string) []string {
	return defaultExtractor.Collect(values)
}

// Collect returns the unique normalized image sources across values in
// first-seen order. A finder failing on one value is logged and skipped;
// the remaining finders and values still run.
func (e *ImageExtractor) Collect(values []string) []string {
	set := newOrderedSet()
	for _, value := range values {
		if value == "" {
			continue
		}
		for _, finder := range e.finders {
			found, err := findSafely(finder, value)
			if err != nil {
				slog.Debug("image finder failed, continuing", "finder", finderName(finder), "error", err)
				continue
			}
			for _, src := range found {
				if normalized, ok := NormalizeImageSource(src); ok {
					set.add(normalized)
				}
			}
		}
	}
	return set.items
}

// findSafely turns a panicking finder into an error so one bad value never
// aborts extraction for the others.
func findSafely(finder SourceFinder, value string) (found []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Newf("image finder panicked: %v", r)
		}
	}()
	return finder.FindSources(value)
}

func finderName(f SourceFinder) string {
	switch f.(type) {
	case MarkupFinder, *MarkupFinder:
		return "markup"
	case PatternFinder, *PatternFinder:
		return "pattern"
	default:
		return "custom"
	}
}

// NormalizeImageSource turns a discovered reference into a displayable URL.
// data: URIs, absolute http(s) URLs and root-relative paths are kept,
// protocol-relative URLs get https:, and JSON-escaped quotes left around a
// value are removed. Anything else passes through for the consumer to
// resolve. Blank input is rejected.
func NormalizeImageSource(src string) (string, bool) {
	trimmed := strings.TrimSpace(src)
	switch {
	case trimmed == "":
		return "", false
	case strings.HasPrefix(trimmed, "data:"):
		return trimmed, true
	case strings.HasPrefix(trimmed, "http://"), strings.HasPrefix(trimmed, "https://"):
		return trimmed, true
	case strings.HasPrefix(trimmed, "//"):
		return "https:" + trimmed, true
	case strings.HasPrefix(trimmed, "/"):
		return trimmed, true
	case strings.HasPrefix(trimmed, `\`):
		unescaped := strings.ReplaceAll(trimmed, `\"`, "")
		if unescaped == trimmed {
			return trimmed, true
		}
		return NormalizeImageSource(unescaped)
	default:
		return trimmed, true
	}
}

// ImageGroup is the set of images found in one field of a hit.
type ImageGroup struct {
	Field   string   `json:"field"`
	Label   string   `json:"label"`
	Sources []string `json:"sources"`
}

// ImageGroups extracts one group per image-bearing field of hit, in
// ImageFields order. Fields without images are omitted.
func (e *ImageExtractor) ImageGroups(hit hitview.Hit) []ImageGroup {
	var groups []ImageGroup
	for _, name := range ImageFields {
		field, ok := Lookup(name)
		if !ok {
			continue
		}
		sources := e.Collect(NormalizeField(field, hit.Raw(name)))
		if len(sources) == 0 {
			continue
		}
		groups = append(groups, ImageGroup{Field: field.Name, Label: field.Label, Sources: sources})
	}
	return groups
}

type orderedSet struct {
	seen  map[string]struct{}
	items []string
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: make(map[string]struct{})}
}

func (s *orderedSet) add(item string) {
	if _, ok := s.seen[item]; ok {
		return
	}
	s.seen[item] = struct{}{}
	s.items = append(s.items, item)
}
