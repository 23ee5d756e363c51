package render

import (
	"html/template"
	"io"
	"net/url"
	"strings"

	"github.com/cockroachdb/errors"
)

// PageData is the input of WritePage.
type PageData struct {
	Title string
	Query string
	Total int64
	Cards []Card

	// ImageBase resolves relative image URLs. Empty leaves them as found.
	ImageBase string
}

// ResolveImageURL resolves src against base. data: URIs, absolute URLs and
// unparsable input are returned unchanged, as is everything when base is
// empty.
func ResolveImageURL(base, src string) string {
	if base == "" || strings.HasPrefix(src, "data:") {
		return src
	}
	ref, err := url.Parse(src)
	if err != nil || ref.IsAbs() {
		return src
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return src
	}
	return baseURL.ResolveReference(ref).String()
}

var pageTemplate = template.Must(template.New("page").Funcs(template.FuncMap{
	"lower": strings.ToLower,

	// Resolved items are already safe HTML.
	"trusted": func(s string) template.HTML { return template.HTML(s) },

	// Only inline images are trusted; every other URL goes through the
	// template's scheme filter.
	"imageURL": func(base, src string) any {
		resolved := ResolveImageURL(base, src)
		if strings.HasPrefix(resolved, "data:image/") {
			return template.URL(resolved)
		}
		return resolved
	},
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
<header class="results-header">
  <h1>{{.Title}}</h1>
  <p class="stats">{{.Total}} results for &ldquo;{{.Query}}&rdquo;</p>
</header>
<main class="results">
{{- $base := .ImageBase}}
{{- range .Cards}}
<article class="hit-card">
  <div class="hit-header">
    <div class="hit-id">ID: {{.ID}}</div>
    {{- if .AdminURL}}
    <a class="hit-link" href="{{.AdminURL}}" target="_blank" rel="noreferrer">Open in Admin</a>
    {{- end}}
  </div>
  {{- range .Fields}}
  {{- if .Multi}}
  <div class="hit-section hit-{{.Field}}">
    <div class="hit-section-title">{{.Label}}</div>
    {{- if .Items}}
    <div class="hit-list">
      {{- range .Items}}
      <div>{{trusted .}}</div>
      {{- end}}
    </div>
    {{- else}}
    <div class="hit-muted">No {{lower .Label}} in this record.</div>
    {{- end}}
  </div>
  {{- else}}
  <div class="hit-section hit-{{.Field}}">
    <div class="hit-section-title">{{.Label}}</div>
    <div class="hit-text fr-view">{{trusted .HTML}}</div>
  </div>
  {{- end}}
  {{- end}}
  {{- if .Images}}
  <div class="hit-section">
    <div class="hit-section-title">Images</div>
    <div class="image-groups">
      {{- range .Images}}
      {{- $label := .Label}}
      <div class="image-group">
        <div class="image-group-label">{{$label}}</div>
        <div class="image-grid">
          {{- range .Sources}}
          <a class="image-button" href="{{imageURL $base .}}" target="_blank" rel="noreferrer"><img src="{{imageURL $base .}}" alt="{{$label}} image" loading="lazy"></a>
          {{- end}}
        </div>
      </div>
      {{- end}}
    </div>
  </div>
  {{- end}}
</article>
{{- end}}
</main>
</body>
</html>
`))

// WritePage renders cards as a standalone HTML page.
func WritePage(w io.Writer, data PageData) error {
	if data.Title == "" {
		data.Title = "Search results"
	}
	if err := pageTemplate.Execute(w, data); err != nil {
		return errors.Wrap(err, "render page")
	}
	return nil
}
