package render

import (
	"context"
	"fmt"
	"testing"

	"github.com/letmevibethatforyou/hitview"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleHit(id string) hitview.Hit {
	return hitview.Hit{
		ID: id,
		Fields: map[string]any{
			"prompt":      `<p>Which organ <b>filters</b> blood?</p><img src="/kidney.png">`,
			"explanation": nil,
			"answers":     []any{map[string]any{"text": "Kidney"}, "Liver"},
			"meta":        "",
		},
		Snippets: map[string]hitview.Value{
			"prompt": hitview.Scalar("Which organ <mark>filters</mark> blood?"),
		},
	}
}

func TestRender(t *testing.T) {
	card := NewRenderer().Render(sampleHit("q-1"))

	assert.Equal(t, "q-1", card.ID)
	assert.Equal(t, "https://admin.bootcamp.com/questions/q-1", card.AdminURL)

	var names []string
	for _, f := range card.Fields {
		names = append(names, f.Field)
	}
	assert.Equal(t, []string{"prompt", "answers", "hyperlinks"}, names)

	prompt, ok := card.Field("prompt")
	require.True(t, ok)
	assert.Equal(t, SourceSnippet, prompt.Source)
	assert.Equal(t, "Which organ <mark>filters</mark> blood?", prompt.HTML())

	answers, ok := card.Field("answers")
	require.True(t, ok)
	assert.Equal(t, []string{"Kidney", "Liver"}, answers.Items)

	links, ok := card.Field("hyperlinks")
	require.True(t, ok)
	assert.True(t, links.Absent())

	_, ok = card.Field("explanation")
	assert.False(t, ok)

	assert.Equal(t, []ImageGroup{{Field: "prompt", Label: "Prompt", Sources: []string{"/kidney.png"}}}, card.Images)
}

func TestRender_AdminBaseURL(t *testing.T) {
	card := NewRenderer(WithAdminBaseURL("https://admin.example/")).Render(sampleHit("a/b"))
	assert.Equal(t, "https://admin.example/questions/a%2Fb", card.AdminURL)

	card = NewRenderer(WithAdminBaseURL("")).Render(sampleHit("q-2"))
	assert.Empty(t, card.AdminURL)
}

func TestRender_CustomExtractor(t *testing.T) {
	r := NewRenderer(WithExtractor(NewImageExtractor(WithoutMarkupParser())))
	card := r.Render(sampleHit("q-3"))
	assert.Empty(t, card.Images)
}

func TestRenderHits(t *testing.T) {
	hits := make([]hitview.Hit, 50)
	for i := range hits {
		hits[i] = sampleHit(fmt.Sprintf("q-%02d", i))
	}

	cards, err := NewRenderer().RenderHits(context.Background(), hits)
	require.NoError(t, err)
	require.Len(t, cards, len(hits))
	for i, card := range cards {
		assert.Equal(t, hits[i].ID, card.ID)
	}
}

func TestRenderHits_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cards, err := NewRenderer().RenderHits(ctx, []hitview.Hit{sampleHit("q-1")})
	assert.Nil(t, cards)
	assert.ErrorIs(t, err, hitview.ErrCanceled)
	assert.Equal(t, hitview.ErrCodeCanceled, hitview.CodeOf(err))
}

func TestRenderHits_Empty(t *testing.T) {
	cards, err := NewRenderer().RenderHits(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, cards)
}
