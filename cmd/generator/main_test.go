package main

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/letmevibethatforyou/hitview"
	"github.com/letmevibethatforyou/hitview/internal/ddb"
	"github.com/letmevibethatforyou/hitview/render"
)

func TestGenerateRandomQuestion(t *testing.T) {
	for i := 0; i < 50; i++ {
		q := generateRandomQuestion()

		if q.Prompt == "" {
			t.Fatal("Prompt should not be empty")
		}
		if len(q.Answers) != 4 {
			t.Fatalf("Expected 4 answers, got %d", len(q.Answers))
		}

		correct := 0
		for _, a := range q.Answers {
			if a.Correct {
				correct++
			}
		}
		if correct != 1 {
			t.Errorf("Expected exactly one correct answer, got %d", correct)
		}
		if len(q.TagCategories["tests"]) != 1 || len(q.TagCategories["subjects"]) != 1 {
			t.Errorf("Unexpected tag categories: %v", q.TagCategories)
		}
		if _, err := ddb.MarshalQuestion("id", defaultIndex, q); err != nil {
			t.Errorf("MarshalQuestion failed: %v", err)
		}
	}
}

func TestGeneratedImagesAreExtractable(t *testing.T) {
	for i := 0; i < 20; i++ {
		markup := imageMarkup("kidney")
		sources := render.CollectImageSources([]string{markup})
		if len(sources) != 1 {
			t.Fatalf("Expected one image in %q, got %v", markup, sources)
		}
	}
}

func TestGeneratedQuestionRenders(t *testing.T) {
	q := generateRandomQuestion()
	hit := hitview.Hit{
		ID: "q1",
		Fields: map[string]any{
			"prompt":      q.Prompt,
			"explanation": q.Explanation,
			"answers":     []any{map[string]any{"text": q.Answers[0].Text}},
		},
	}

	card := render.NewRenderer().Render(hit)
	answers, ok := card.Field("answers")
	if !ok || len(answers.Items) != 1 || answers.Items[0] != q.Answers[0].Text {
		t.Errorf("Unexpected answers field: %+v", answers)
	}
	if len(card.Images) != 1 || card.Images[0].Field != "explanation" {
		t.Errorf("Expected one explanation image group, got %+v", card.Images)
	}
}

func TestCapitalize(t *testing.T) {
	tests := map[string]string{"kidney": "Kidney", "": "", "a": "A"}
	for in, want := range tests {
		if got := capitalize(in); got != want {
			t.Errorf("capitalize(%q) = %q, want %q", in, got, want)
		}
	}
}

type mockBatchIndexer struct {
	indexName string
	objects   []map[string]any
	err       error
}

func (m *mockBatchIndexer) BatchSaveObjects(_ context.Context, indexName string, objects []map[string]any) error {
	m.indexName = indexName
	m.objects = objects
	return m.err
}

func TestIndexItems(t *testing.T) {
	q := generateRandomQuestion()
	q.QuestionHeader = ""
	q.Explanation = `<p>See <img src="https://cdn.example.com/k.png?w=1&amp;h=2"></p>`

	first, err := ddb.MarshalQuestion("q1", defaultIndex, q)
	if err != nil {
		t.Fatalf("MarshalQuestion failed: %v", err)
	}
	second, err := ddb.MarshalQuestion("q2", defaultIndex, ddb.Question{Prompt: "<p>No images</p>", Status: "live"})
	if err != nil {
		t.Fatalf("MarshalQuestion failed: %v", err)
	}

	indexer := &mockBatchIndexer{}
	if err := indexItems(context.Background(), indexer, defaultIndex, []map[string]types.AttributeValue{first, second}); err != nil {
		t.Fatalf("indexItems failed: %v", err)
	}

	if indexer.indexName != defaultIndex {
		t.Errorf("Expected index %s, got %s", defaultIndex, indexer.indexName)
	}
	if len(indexer.objects) != 2 {
		t.Fatalf("Expected 2 objects in one batch, got %d", len(indexer.objects))
	}

	obj := indexer.objects[0]
	if obj["objectID"] != "q1" || obj["prompt"] != q.Prompt {
		t.Errorf("Unexpected object: %v", obj)
	}
	groups, ok := obj["images"].([]render.ImageGroup)
	if !ok || len(groups) != 1 || groups[0].Field != "explanation" {
		t.Fatalf("Expected one explanation image group, got %v", obj["images"])
	}
	if len(groups[0].Sources) != 1 || groups[0].Sources[0] != "https://cdn.example.com/k.png?w=1&h=2" {
		t.Errorf("Unexpected sources: %v", groups[0].Sources)
	}

	empty, ok := indexer.objects[1]["images"].([]render.ImageGroup)
	if !ok || empty == nil || len(empty) != 0 {
		t.Errorf("Expected empty image manifest, got %#v", indexer.objects[1]["images"])
	}
}

func TestIndexItemsPropagatesWriteError(t *testing.T) {
	item, err := ddb.MarshalQuestion("q1", defaultIndex, ddb.Question{Prompt: "p", Status: "live"})
	if err != nil {
		t.Fatalf("MarshalQuestion failed: %v", err)
	}

	writeErr := errors.New("algolia down")
	indexer := &mockBatchIndexer{err: writeErr}
	if err := indexItems(context.Background(), indexer, defaultIndex, []map[string]types.AttributeValue{item}); !errors.Is(err, writeErr) {
		t.Errorf("Expected write error, got %v", err)
	}
}
