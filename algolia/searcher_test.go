package algolia

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/letmevibethatforyou/hitview"
)

func TestNewSearcher(t *testing.T) {
	client := NewClient(StaticSecrets("test-app", "test-key"))
	searcher := NewSearcher(client, "question_objects")

	if searcher.client != client {
		t.Error("Searcher client not set correctly")
	}

	if searcher.indexName != "question_objects" {
		t.Errorf("Expected index name 'question_objects', got '%s'", searcher.indexName)
	}
}

func TestBuildSearchParams(t *testing.T) {
	tests := []struct {
		name          string
		opts          []hitview.SearchOption
		expectedCount int
		expectErr     bool
	}{
		{
			name:          "defaults",
			expectedCount: 4, // HitsPerPage, both highlight tags, ellipsis
		},
		{
			name:          "with offset",
			opts:          []hitview.SearchOption{hitview.WithLimit(12), hitview.WithOffset(24)},
			expectedCount: 5,
		},
		{
			name:          "with filters",
			opts:          []hitview.SearchOption{hitview.Eq("tag_categories.tests", "MCAT")},
			expectedCount: 5,
		},
		{
			name: "with restricted attributes and snippets",
			opts: []hitview.SearchOption{
				hitview.WithAttributes("prompt", "answers"),
				hitview.WithSnippetAttributes("prompt:30", "answers:12"),
			},
			expectedCount: 6,
		},
		{
			name:          "cleared tags",
			opts:          []hitview.SearchOption{hitview.WithHighlightTags("", ""), hitview.WithSnippetEllipsis("")},
			expectedCount: 1,
		},
		{
			name:      "unsupported filter",
			opts:      []hitview.SearchOption{hitview.Exists("meta")},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params, err := buildSearchParams(hitview.NewSearchConfig(tt.opts...))
			if tt.expectErr {
				if !errors.Is(err, hitview.ErrInvalidExpression) {
					t.Errorf("Expected ErrInvalidExpression, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if len(params) != tt.expectedCount {
				t.Errorf("Expected %d parameters, got %d", tt.expectedCount, len(params))
			}
		})
	}
}

func TestCalculateScore(t *testing.T) {
	tests := []struct {
		name         string
		totalResults int
		position     int
		expected     float64
	}{
		{name: "first result", totalResults: 10, position: 0, expected: 1.0},
		{name: "middle result", totalResults: 10, position: 4, expected: 0.6},
		{name: "last result", totalResults: 10, position: 9, expected: 0.1},
		{name: "no results", totalResults: 0, position: 0, expected: 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if score := calculateScore(tt.totalResults, tt.position); score != tt.expected {
				t.Errorf("Expected score %f, got %f", tt.expected, score)
			}
		})
	}
}

func TestConvertExpressionToFilter(t *testing.T) {
	tests := []struct {
		name     string
		expr     hitview.Expression
		expected string
	}{
		{
			name:     "equality on nested facet",
			expr:     hitview.Eq("tag_categories.subjects", "Biology"),
			expected: `tag_categories.subjects:"Biology"`,
		},
		{
			name:     "not equal",
			expr:     hitview.Ne("status", "archived"),
			expected: `NOT status:"archived"`,
		},
		{
			name:     "and",
			expr:     hitview.And(hitview.Eq("tag_categories.tests", "MCAT"), hitview.Eq("status", "live")),
			expected: `(tag_categories.tests:"MCAT") AND (status:"live")`,
		},
		{
			name:     "or",
			expr:     hitview.Or(hitview.Eq("tag_categories.topics", "Cells"), hitview.Eq("tag_categories.topics", "Organs")),
			expected: `(tag_categories.topics:"Cells") OR (tag_categories.topics:"Organs")`,
		},
		{
			name:     "not",
			expr:     hitview.Not(hitview.Eq("status", "deleted")),
			expected: `NOT (status:"deleted")`,
		},
		{
			name:     "empty and",
			expr:     hitview.And(),
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := convertExpressionToFilter(tt.expr)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if result != tt.expected {
				t.Errorf("Expected filter '%s', got '%s'", tt.expected, result)
			}
		})
	}
}

func TestConvertExpressionToFilter_NestedUnsupported(t *testing.T) {
	_, err := convertExpressionToFilter(hitview.Or(hitview.Eq("a", "b"), hitview.Not(hitview.Exists("c"))))
	if !errors.Is(err, hitview.ErrInvalidExpression) {
		t.Errorf("Expected ErrInvalidExpression, got %v", err)
	}
}

func TestEscapeField(t *testing.T) {
	tests := []struct {
		field    string
		expected string
	}{
		{field: "prompt", expected: "prompt"},
		{field: "tag_categories.tests", expected: "tag_categories.tests"},
		{field: "question header", expected: `"question header"`},
		{field: "user:id", expected: `"user:id"`},
		{field: "created-at", expected: `"created-at"`},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			if result := escapeField(tt.field); result != tt.expected {
				t.Errorf("Expected escaped field '%s', got '%s'", tt.expected, result)
			}
		})
	}
}

func TestEscapeValue(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		expected string
	}{
		{name: "string", value: "MCAT", expected: `"MCAT"`},
		{name: "string with quotes", value: `say "hi"`, expected: `"say \"hi\""`},
		{name: "bool", value: true, expected: `"true"`},
		{name: "nil", value: nil, expected: "null"},
		{name: "int", value: 42, expected: `"42"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := escapeValue(tt.value); result != tt.expected {
				t.Errorf("Expected escaped value '%s', got '%s'", tt.expected, result)
			}
		})
	}
}

func TestSearchWithInvalidClient(t *testing.T) {
	client := NewClient(func() (Secrets, error) {
		return Secrets{}, fmt.Errorf("secrets unavailable")
	})
	searcher := NewSearcher(client, "question_objects")

	_, err := searcher.Search(context.Background(), "kidney")
	if !errors.Is(err, hitview.ErrBackendUnavailable) {
		t.Fatalf("Expected ErrBackendUnavailable, got: %v", err)
	}
	if hitview.CodeOf(err) != hitview.ErrCodeBackendUnavailable {
		t.Errorf("Expected code %d, got %d", hitview.ErrCodeBackendUnavailable, hitview.CodeOf(err))
	}

	errStr := fmt.Sprintf("%+v", err)
	if !strings.Contains(errStr, "failed to get Algolia client") {
		t.Errorf("Expected error details to contain 'failed to get Algolia client', got: %v", errStr)
	}
}

func TestSearchWithEmptyCredentials(t *testing.T) {
	for name, secrets := range map[string]Secrets{
		"empty app id":  {APIKey: "key"},
		"empty api key": {AppID: "app"},
	} {
		t.Run(name, func(t *testing.T) {
			searcher := NewSearcher(NewClient(StaticSecrets(secrets.AppID, secrets.APIKey)), "question_objects")
			_, err := searcher.Search(context.Background(), "kidney")
			if !errors.Is(err, hitview.ErrBackendUnavailable) {
				t.Errorf("Expected ErrBackendUnavailable, got: %v", err)
			}
		})
	}
}

func TestSearchWithCanceledContext(t *testing.T) {
	searcher := NewSearcher(NewClient(StaticSecrets("test-app", "test-key")), "question_objects")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := searcher.Search(ctx, "kidney"); err != hitview.ErrCanceled {
		t.Errorf("Expected ErrCanceled, got: %v", err)
	}
}

func TestSearchWithExpiredDeadline(t *testing.T) {
	searcher := NewSearcher(NewClient(StaticSecrets("test-app", "test-key")), "question_objects")

	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	time.Sleep(time.Millisecond)

	if _, err := searcher.Search(ctx, "kidney"); err != hitview.ErrCanceled {
		t.Errorf("Expected ErrCanceled for expired context, got: %v", err)
	}
}

func TestClientWritesWithInvalidClient(t *testing.T) {
	client := NewClient(func() (Secrets, error) {
		return Secrets{}, fmt.Errorf("secrets unavailable")
	})
	ctx := context.Background()

	if err := client.SaveObject(ctx, "question_objects", map[string]any{"objectID": "q1"}); err == nil {
		t.Error("Expected SaveObject error")
	}
	if err := client.DeleteObject(ctx, "question_objects", "q1"); err == nil {
		t.Error("Expected DeleteObject error")
	}
	if err := client.BatchSaveObjects(ctx, "question_objects", []map[string]any{{"objectID": "q1"}}); err == nil {
		t.Error("Expected BatchSaveObjects error")
	}

	// empty batches never touch the client
	if err := client.BatchSaveObjects(ctx, "question_objects", nil); err != nil {
		t.Errorf("Expected nil for empty batch save, got %v", err)
	}
}
