// Package inmemory implements hitview.Searcher over documents held in
// memory. It answers with the same shape a hosted index does: highlights
// and snippets are pre-sanitized markup, so hits render identically
// whichever backend produced them.
package inmemory

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/letmevibethatforyou/hitview"
)

// Document represents a stored record.
type Document struct {
	// ID is the unique identifier for the document.
	ID string
	// Fields contains the record as decoded JSON.
	Fields map[string]any
}

// Searcher implements hitview.Searcher using an in-memory store.
type Searcher struct {
	mu        sync.RWMutex
	documents []Document
	idIndex   map[string]int // maps document ID to index in documents slice
}

// New creates an empty searcher. It is safe for concurrent use.
func New() *Searcher {
	return &Searcher{
		documents: make([]Document, 0),
		idIndex:   make(map[string]int),
	}
}

// AddDocument adds a document, replacing any document with the same ID.
func (s *Searcher) AddDocument(doc Document) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if idx, exists := s.idIndex[doc.ID]; exists {
		s.documents[idx] = doc
		return
	}
	s.idIndex[doc.ID] = len(s.documents)
	s.documents = append(s.documents, doc)
}

// AddJSON parses a JSON object and stores it under id.
func (s *Searcher) AddJSON(id string, jsonData []byte) error {
	var fields map[string]any
	if err := json.Unmarshal(jsonData, &fields); err != nil {
		return errors.Wrap(err, "failed to unmarshal JSON")
	}

	s.AddDocument(Document{
		ID:     id,
		Fields: fields,
	})
	return nil
}

// LoadJSON reads a JSON array of records, each carrying a string objectID.
// It returns the number of records loaded. Nothing is stored when any
// record is invalid.
func (s *Searcher) LoadJSON(r io.Reader) (int, error) {
	var records []map[string]any
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return 0, errors.Wrap(err, "failed to decode JSON records")
	}

	docs := make([]Document, 0, len(records))
	for i, record := range records {
		doc, err := recordDocument(record)
		if err != nil {
			return 0, errors.Wrapf(err, "record %d", i)
		}
		docs = append(docs, doc)
	}

	for _, doc := range docs {
		s.AddDocument(doc)
	}
	return len(docs), nil
}

// LoadJSONL reads newline-delimited JSON records. Blank lines are skipped.
func (s *Searcher) LoadJSONL(r io.Reader) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var docs []Document
	line := 0
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}

		var record map[string]any
		if err := json.Unmarshal(raw, &record); err != nil {
			return 0, errors.Wrapf(err, "line %d", line)
		}
		doc, err := recordDocument(record)
		if err != nil {
			return 0, errors.Wrapf(err, "line %d", line)
		}
		docs = append(docs, doc)
	}
	if err := scanner.Err(); err != nil {
		return 0, errors.Wrap(err, "failed to read JSONL records")
	}

	for _, doc := range docs {
		s.AddDocument(doc)
	}
	return len(docs), nil
}

func recordDocument(record map[string]any) (Document, error) {
	id, _ := record["objectID"].(string)
	if id == "" {
		return Document{}, errors.New("missing objectID")
	}
	return Document{ID: id, Fields: record}, nil
}

// RemoveDocument removes a document by ID and reports whether it existed.
func (s *Searcher) RemoveDocument(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, exists := s.idIndex[id]
	if !exists {
		return false
	}

	s.documents = append(s.documents[:idx], s.documents[idx+1:]...)

	delete(s.idIndex, id)
	for i := idx; i < len(s.documents); i++ {
		s.idIndex[s.documents[i].ID] = i
	}

	return true
}

// Clear removes all documents from the store.
func (s *Searcher) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.documents = make([]Document, 0)
	s.idIndex = make(map[string]int)
}

// Size returns the number of stored documents.
func (s *Searcher) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.documents)
}

// Search implements hitview.Searcher. An empty query matches every
// document that passes the filters.
func (s *Searcher) Search(ctx context.Context, query string, opts ...hitview.SearchOption) (*hitview.Results, error) {
	startTime := time.Now()

	select {
	case <-ctx.Done():
		return nil, hitview.ErrCanceled
	default:
	}

	cfg := hitview.NewSearchConfig(opts...)
	terms := queryTerms(query)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []scoredDocument
	for _, doc := range s.documents {
		select {
		case <-ctx.Done():
			return nil, hitview.ErrCanceled
		default:
		}

		if !matchesFilters(doc, cfg.Filters) {
			continue
		}

		score := scoreDocument(doc, terms, cfg.Attributes)
		if score > 0 {
			matches = append(matches, scoredDocument{
				document: doc,
				score:    score,
			})
		}
	}

	// stable keeps insertion order among equal scores
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})

	total := int64(len(matches))
	start := min(cfg.Offset, len(matches))
	end := min(cfg.Offset+cfg.Limit, len(matches))

	results := &hitview.Results{
		Hits:  make([]hitview.Hit, 0, end-start),
		Total: total,
		Query: query,
	}

	m := newMarker(terms, cfg)
	for _, match := range matches[start:end] {
		results.Hits = append(results.Hits, hitview.Hit{
			ID:         match.document.ID,
			Score:      match.score,
			Fields:     match.document.Fields,
			Snippets:   m.snippets(match.document.Fields),
			Highlights: m.highlights(match.document.Fields),
		})
	}

	if end < len(matches) {
		nextOffset := end
		results.NextOffset = &nextOffset
	}

	results.Took = time.Since(startTime).Milliseconds()
	return results, nil
}

type scoredDocument struct {
	document Document
	score    float64
}

func queryTerms(query string) []string {
	return strings.Fields(strings.ToLower(query))
}

// scoreDocument counts, per query term, the searchable attributes whose
// text contains it. Matching every term boosts the score by half.
func scoreDocument(doc Document, terms []string, attributes []string) float64 {
	if len(terms) == 0 {
		return 1.0
	}

	texts := searchableTexts(doc, attributes)

	score := 0.0
	matchedTerms := 0
	for _, term := range terms {
		termMatched := false
		for _, text := range texts {
			if strings.Contains(text, term) {
				termMatched = true
				score += 1.0
			}
		}
		if termMatched {
			matchedTerms++
		}
	}

	if matchedTerms == 0 {
		return 0
	}
	if matchedTerms == len(terms) {
		score *= 1.5
	}
	return score
}

// searchableTexts returns the lower-cased, markup-free text of each
// searchable attribute. attributes may hold dotted paths.
func searchableTexts(doc Document, attributes []string) []string {
	var texts []string
	if len(attributes) == 0 {
		for key, value := range doc.Fields {
			if key == "objectID" {
				continue
			}
			texts = append(texts, strings.ToLower(flattenText(value)))
		}
		return texts
	}

	for _, attr := range attributes {
		if value, ok := lookupPath(doc.Fields, attr); ok {
			texts = append(texts, strings.ToLower(flattenText(value)))
		}
	}
	return texts
}
