package hitview

// Hit is one search result. Fields holds the raw stored record as decoded
// JSON. Snippets and Highlights hold the backend's pre-sanitized markup,
// keyed by field name and shaped like the raw value. Backends never store
// an empty string in either map; a field without one is simply missing.
type Hit struct {
	ID         string           `json:"objectID"`
	Score      float64          `json:"score"`
	Fields     map[string]any   `json:"fields"`
	Snippets   map[string]Value `json:"-"`
	Highlights map[string]Value `json:"-"`
}

// Raw returns the stored value of a field.
func (h Hit) Raw(field string) Value {
	return ValueOf(h.Fields[field])
}

// Snippet returns the backend snippet of a field, or Absent.
func (h Hit) Snippet(field string) Value {
	if v, ok := h.Snippets[field]; ok && v != nil {
		return v
	}
	return Absent{}
}

// Highlight returns the backend highlight of a field, or Absent.
func (h Hit) Highlight(field string) Value {
	if v, ok := h.Highlights[field]; ok && v != nil {
		return v
	}
	return Absent{}
}

// Results is one page of hits with metadata.
type Results struct {
	Hits []Hit

	// Total is the total number of matching records.
	Total int64

	// Took is the time taken to execute the search in milliseconds.
	Took int64

	// Query is the original query string for reference.
	Query string

	// NextOffset is set when another page exists.
	NextOffset *int
}
