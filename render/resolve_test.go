package render

import (
	"strings"
	"testing"

	"github.com/letmevibethatforyou/hitview"
	"github.com/stretchr/testify/assert"
)

func mustLookup(t *testing.T, name string) Field {
	t.Helper()
	f, ok := Lookup(name)
	if !ok {
		t.Fatalf("field %q not configured", name)
	}
	return f
}

func TestResolve_Precedence(t *testing.T) {
	prompt := mustLookup(t, "prompt")

	tests := []struct {
		name       string
		snippet    hitview.Value
		highlight  hitview.Value
		raw        hitview.Value
		wantSource Source
		want       string
	}{
		{
			name:       "snippet wins verbatim",
			snippet:    hitview.Scalar("<mark>cat</mark>s"),
			highlight:  hitview.Scalar("<mark>cat</mark>s and dogs"),
			raw:        hitview.Scalar("<b>cats</b> and dogs"),
			wantSource: SourceSnippet,
			want:       "<mark>cat</mark>s",
		},
		{
			name:       "highlight when no snippet",
			snippet:    hitview.Absent{},
			highlight:  hitview.Scalar("<mark>cat</mark>s &amp; dogs"),
			raw:        hitview.Scalar("cats & dogs"),
			wantSource: SourceHighlight,
			want:       "<mark>cat</mark>s &amp; dogs",
		},
		{
			name:       "raw stripped and escaped",
			raw:        hitview.Scalar("<b>Tom</b> & Jerry <3"),
			wantSource: SourceRaw,
			want:       "Tom &amp; Jerry &lt;3",
		},
		{
			name:       "list snippet on scalar field uses first non-empty",
			snippet:    hitview.List{hitview.Scalar(""), hitview.Scalar("<mark>b</mark>"), hitview.Scalar("c")},
			wantSource: SourceSnippet,
			want:       "<mark>b</mark>",
		},
		{
			name:       "raw list on scalar field takes first",
			raw:        hitview.ValueOf([]any{"<p>one</p>", "two"}),
			wantSource: SourceRaw,
			want:       "one",
		},
		{
			name:       "empty highlight list falls through to raw",
			highlight:  hitview.List{},
			raw:        hitview.Scalar("plain"),
			wantSource: SourceRaw,
			want:       "plain",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(prompt, tt.snippet, tt.highlight, tt.raw)
			assert.Equal(t, tt.wantSource, got.Source)
			assert.Equal(t, tt.want, got.HTML())
			assert.Len(t, got.Items, 1)
			assert.False(t, got.Multi)
		})
	}
}

func TestResolve_Absent(t *testing.T) {
	prompt := mustLookup(t, "prompt")

	for name, raw := range map[string]hitview.Value{
		"null":        hitview.ValueOf(nil),
		"empty":       hitview.ValueOf(""),
		"only markup": hitview.Scalar(`<img src="/a.png">`),
		"shape miss":  hitview.Object{"unexpected": hitview.Scalar("x")},
	} {
		t.Run(name, func(t *testing.T) {
			got := Resolve(prompt, hitview.Absent{}, hitview.Absent{}, raw)
			assert.True(t, got.Absent())
			assert.Equal(t, SourceNone, got.Source)
			assert.Equal(t, "", got.HTML())
		})
	}
}

func TestResolve_FallbackBudget(t *testing.T) {
	short := Field{Name: "custom", FallbackLength: 5}
	got := Resolve(short, nil, nil, hitview.Scalar("<p>Hello <b>world</b></p>"))
	assert.Equal(t, "Hello…", got.HTML())

	long := strings.Repeat("a", 300)
	unconfigured := Field{Name: "unconfigured"}
	got = Resolve(unconfigured, nil, nil, hitview.Scalar(long))
	assert.Equal(t, strings.Repeat("a", DefaultFallbackLength)+Ellipsis, got.HTML())

	unconfiguredList := Field{Name: "unconfiguredList", Shape: ShapeAnswers}
	got = ResolveList(unconfiguredList, nil, nil, hitview.Scalar(long))
	assert.Equal(t, strings.Repeat("a", DefaultListFallbackLength)+Ellipsis, got.HTML())

	prompt := mustLookup(t, "prompt")
	got = Resolve(prompt, nil, nil, hitview.Scalar(long))
	assert.Equal(t, strings.Repeat("a", 240)+Ellipsis, got.HTML())
}

func TestFallbackLength(t *testing.T) {
	assert.Equal(t, 240, FallbackLength("prompt"))
	assert.Equal(t, 140, FallbackLength("answers"))
	assert.Equal(t, 180, FallbackLength("questionHeader"))
	assert.Equal(t, DefaultFallbackLength, FallbackLength("nope"))
}

func TestResolve_RawOutputIsMarkupFree(t *testing.T) {
	inputs := []string{
		"<p>Hello <b>world</b></p>",
		"a < b > c",
		"<<script>alert(1)</script>>",
		`<img src="x" onerror="alert(1)">text`,
		"unclosed <div class='x'",
		"<",
		">",
		"<a href='javascript:alert(1)'>click</a> & more",
	}

	for _, field := range Fields {
		for _, input := range inputs {
			got := ResolveHit(hitview.Hit{Fields: map[string]any{field.Name: input}}, field)
			for _, item := range got.Items {
				assert.NotContains(t, item, "<", "field %s input %q", field.Name, input)
				assert.NotContains(t, item, ">", "field %s input %q", field.Name, input)
			}
		}
	}
}

func TestResolveList(t *testing.T) {
	answers := mustLookup(t, "answers")

	tests := []struct {
		name       string
		snippet    hitview.Value
		highlight  hitview.Value
		raw        hitview.Value
		wantSource Source
		want       []string
	}{
		{
			name:       "raw answers escaped independently",
			raw:        hitview.ValueOf([]any{map[string]any{"text": "42"}, "43"}),
			wantSource: SourceRaw,
			want:       []string{"42", "43"},
		},
		{
			name:       "snippet list with empty head still present",
			snippet:    hitview.List{hitview.Scalar(""), hitview.Scalar("<mark>b</mark>")},
			highlight:  hitview.List{hitview.Scalar("x")},
			raw:        hitview.ValueOf([]any{"a", "b"}),
			wantSource: SourceSnippet,
			want:       []string{"<mark>b</mark>"},
		},
		{
			name:       "highlight list verbatim",
			highlight:  hitview.List{hitview.Scalar("<mark>a</mark> &amp; b"), hitview.Scalar("c")},
			raw:        hitview.ValueOf([]any{"a & b", "c"}),
			wantSource: SourceHighlight,
			want:       []string{"<mark>a</mark> &amp; b", "c"},
		},
		{
			name:       "highlight object items coerced",
			highlight:  hitview.List{hitview.Object{"text": hitview.Scalar("<mark>42</mark>")}},
			wantSource: SourceHighlight,
			want:       []string{"<mark>42</mark>"},
		},
		{
			name:       "raw items emptied by stripping are dropped",
			raw:        hitview.ValueOf([]any{"<img src='a.png'>", "<b>kept</b>"}),
			wantSource: SourceRaw,
			want:       []string{"kept"},
		},
		{
			name:       "raw items truncated",
			raw:        hitview.ValueOf([]any{strings.Repeat("b", 141)}),
			wantSource: SourceRaw,
			want:       []string{strings.Repeat("b", 140) + Ellipsis},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveList(answers, tt.snippet, tt.highlight, tt.raw)
			assert.True(t, got.Multi)
			assert.Equal(t, tt.wantSource, got.Source)
			assert.Equal(t, tt.want, got.Items)
		})
	}
}

func TestResolveList_Absent(t *testing.T) {
	answers := mustLookup(t, "answers")
	got := ResolveList(answers, hitview.Absent{}, hitview.Absent{}, hitview.ValueOf(nil))
	assert.True(t, got.Absent())
	assert.Equal(t, SourceNone, got.Source)
	assert.True(t, got.Multi)
}

func TestResolveHit(t *testing.T) {
	hit := hitview.Hit{
		ID: "q1",
		Fields: map[string]any{
			"prompt":  "<p>What is <b>6 × 7</b>?</p>",
			"answers": []any{map[string]any{"text": "42"}, "43"},
			"meta":    nil,
		},
		Snippets: map[string]hitview.Value{
			"prompt": hitview.Scalar("What is <mark>6</mark> × 7?"),
		},
		Highlights: map[string]hitview.Value{
			"answers": hitview.List{hitview.Scalar("<mark>42</mark>"), hitview.Scalar("43")},
		},
	}

	prompt := ResolveHit(hit, mustLookup(t, "prompt"))
	assert.Equal(t, SourceSnippet, prompt.Source)
	assert.Equal(t, "What is <mark>6</mark> × 7?", prompt.HTML())

	answers := ResolveHit(hit, mustLookup(t, "answers"))
	assert.Equal(t, SourceHighlight, answers.Source)
	assert.Equal(t, []string{"<mark>42</mark>", "43"}, answers.Items)

	meta := ResolveHit(hit, mustLookup(t, "meta"))
	assert.True(t, meta.Absent())
}

func TestSourceMarshalText(t *testing.T) {
	for source, want := range map[Source]string{
		SourceNone:      "none",
		SourceSnippet:   "snippet",
		SourceHighlight: "highlight",
		SourceRaw:       "raw",
	} {
		got, err := source.MarshalText()
		assert.NoError(t, err)
		assert.Equal(t, want, string(got))
	}
}
