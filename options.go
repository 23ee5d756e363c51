package hitview

// SearchOption represents a search configuration option.
type SearchOption interface {
	Apply(*SearchConfig)
}

// SearchConfig holds all search configuration parameters.
type SearchConfig struct {
	// Limit is the page size.
	Limit int

	// Offset is the number of hits to skip for pagination.
	Offset int

	// Filters contains facet filters, combined with AND.
	Filters []Expression

	// Attributes restricts which fields the query is matched against.
	// Empty means every searchable field.
	Attributes []string

	// SnippetAttributes lists "field:words" pairs the backend should snippet.
	SnippetAttributes []string

	// HighlightPreTag and HighlightPostTag wrap matched terms in snippets
	// and highlights.
	HighlightPreTag  string
	HighlightPostTag string

	// SnippetEllipsis marks text elided from a snippet.
	SnippetEllipsis string
}

// NewSearchConfig applies opts over the backend defaults.
func NewSearchConfig(opts ...SearchOption) *SearchConfig {
	cfg := &SearchConfig{
		HighlightPreTag:  "<em>",
		HighlightPostTag: "</em>",
		SnippetEllipsis:  "…",
	}
	for _, opt := range opts {
		opt.Apply(cfg)
	}
	if cfg.Limit <= 0 {
		cfg.Limit = 10
	}
	if cfg.Offset < 0 {
		cfg.Offset = 0
	}
	return cfg
}

type optionFunc func(*SearchConfig)

// Apply implements the SearchOption interface for optionFunc.
func (f optionFunc) Apply(cfg *SearchConfig) {
	f(cfg)
}

// WithLimit sets the maximum number of hits to return.
func WithLimit(n int) SearchOption {
	return optionFunc(func(cfg *SearchConfig) {
		cfg.Limit = n
	})
}

// WithOffset sets the number of hits to skip for pagination.
func WithOffset(n int) SearchOption {
	return optionFunc(func(cfg *SearchConfig) {
		cfg.Offset = n
	})
}

// WithAttributes restricts the searchable attributes. Calling it with no
// names clears the restriction.
func WithAttributes(names ...string) SearchOption {
	return optionFunc(func(cfg *SearchConfig) {
		cfg.Attributes = append([]string(nil), names...)
	})
}

// WithSnippetAttributes asks the backend to snippet the given "field:words"
// pairs.
func WithSnippetAttributes(attrs ...string) SearchOption {
	return optionFunc(func(cfg *SearchConfig) {
		cfg.SnippetAttributes = append(cfg.SnippetAttributes, attrs...)
	})
}

// WithHighlightTags sets the markup wrapped around matched terms.
func WithHighlightTags(pre, post string) SearchOption {
	return optionFunc(func(cfg *SearchConfig) {
		cfg.HighlightPreTag = pre
		cfg.HighlightPostTag = post
	})
}

// WithSnippetEllipsis sets the marker for elided snippet text.
func WithSnippetEllipsis(s string) SearchOption {
	return optionFunc(func(cfg *SearchConfig) {
		cfg.SnippetEllipsis = s
	})
}
