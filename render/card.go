package render

import (
	"context"
	"net/url"
	"runtime"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/letmevibethatforyou/hitview"
	"golang.org/x/sync/errgroup"
)

// DefaultAdminBaseURL is where question records are edited.
const DefaultAdminBaseURL = "https://admin.bootcamp.com"

// Card is everything the page shows for one hit.
type Card struct {
	ID       string       `json:"objectID"`
	AdminURL string       `json:"adminURL,omitempty"`
	Fields   []Resolved   `json:"fields"`
	Images   []ImageGroup `json:"images,omitempty"`
}

// Field returns the resolved field with the given name.
func (c Card) Field(name string) (Resolved, bool) {
	for _, f := range c.Fields {
		if f.Field == name {
			return f, true
		}
	}
	return Resolved{}, false
}

// Renderer builds cards from hits. It holds configuration only and is safe
// for concurrent use.
type Renderer struct {
	extractor    *ImageExtractor
	adminBaseURL string
}

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithExtractor overrides the image extractor.
func WithExtractor(e *ImageExtractor) RendererOption {
	return func(r *Renderer) {
		r.extractor = e
	}
}

// WithAdminBaseURL sets the base for each card's admin link. An empty base
// disables the link.
func WithAdminBaseURL(base string) RendererOption {
	return func(r *Renderer) {
		r.adminBaseURL = strings.TrimRight(base, "/")
	}
}

// NewRenderer returns a Renderer with the default extractor and admin base.
func NewRenderer(opts ...RendererOption) *Renderer {
	r := &Renderer{
		extractor:    defaultExtractor,
		adminBaseURL: DefaultAdminBaseURL,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render resolves every field of hit and collects its images. Scalar fields
// that resolve to nothing are left out; list fields are always present so
// the page can say they are empty.
func (r *Renderer) Render(hit hitview.Hit) Card {
	card := Card{ID: hit.ID}
	if r.adminBaseURL != "" && hit.ID != "" {
		card.AdminURL = r.adminBaseURL + "/questions/" + url.PathEscape(hit.ID)
	}

	for _, field := range Fields {
		resolved := ResolveHit(hit, field)
		if resolved.Absent() && !field.Shape.IsList() {
			continue
		}
		card.Fields = append(card.Fields, resolved)
	}
	card.Images = r.extractor.ImageGroups(hit)
	return card
}

// RenderHits renders hits in parallel and returns cards in input order.
// Rendering itself cannot fail; the only error is ctx ending first.
func (r *Renderer) RenderHits(ctx context.Context, hits []hitview.Hit) ([]Card, error) {
	cards := make([]Card, len(hits))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range hits {
		if gCtx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			cards[i] = r.Render(hits[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.WithSecondaryError(hitview.ErrCanceled, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.WithSecondaryError(hitview.ErrCanceled, err)
	}
	return cards, nil
}
