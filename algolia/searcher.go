package algolia

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/algolia/algoliasearch-client-go/v3/algolia/opt"
	"github.com/cockroachdb/errors"
	"github.com/letmevibethatforyou/hitview"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Searcher implements hitview.Searcher using Algolia.
type Searcher struct {
	client    *Client
	indexName string
}

// NewSearcher creates a new Algolia searcher for the specified index.
func NewSearcher(client *Client, indexName string) *Searcher {
	return &Searcher{
		client:    client,
		indexName: indexName,
	}
}

// Search implements hitview.Searcher. Empty queries are allowed; Algolia
// returns every record.
func (s *Searcher) Search(ctx context.Context, query string, opts ...hitview.SearchOption) (*hitview.Results, error) {
	startTime := time.Now()

	select {
	case <-ctx.Done():
		return nil, hitview.ErrCanceled
	default:
	}

	cfg := hitview.NewSearchConfig(opts...)

	ctx, span := s.client.tracer.Start(ctx, "algolia.search",
		trace.WithAttributes(
			attribute.String("algolia.index_name", s.indexName),
			attribute.Int("algolia.limit", cfg.Limit),
			attribute.Int("algolia.offset", cfg.Offset),
		),
	)
	defer span.End()

	params, err := buildSearchParams(cfg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid search parameters")
		return nil, err
	}
	// the SDK picks a context out of the variadic options
	params = append(params, ctx)

	index, err := s.client.index(s.indexName)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to get Algolia client")
		return nil, errors.WithSecondaryError(
			hitview.ErrBackendUnavailable,
			errors.Wrap(err, "failed to get Algolia client"),
		)
	}

	res, err := index.Search(query, params...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "search failed")
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, hitview.ErrTimeout
		}
		if errors.Is(err, context.Canceled) {
			return nil, hitview.ErrCanceled
		}
		return nil, errors.WithSecondaryError(
			hitview.ErrBackendUnavailable,
			errors.Wrap(err, "Algolia search failed"),
		)
	}

	results := &hitview.Results{
		Hits:  make([]hitview.Hit, 0, len(res.Hits)),
		Total: int64(res.NbHits),
		Query: query,
		Took:  time.Since(startTime).Milliseconds(),
	}

	for i, raw := range res.Hits {
		hit := decodeHit(raw)
		hit.Score = calculateScore(len(res.Hits), i)
		results.Hits = append(results.Hits, hit)
	}

	nextPage := res.Page + 1
	if nextPage < res.NbPages {
		nextOffset := nextPage * cfg.Limit
		results.NextOffset = &nextOffset
	}

	span.SetAttributes(attribute.Int("algolia.hit_count", len(results.Hits)))
	span.SetStatus(codes.Ok, "search completed")
	return results, nil
}

// buildSearchParams converts a SearchConfig to Algolia search parameters.
func buildSearchParams(cfg *hitview.SearchConfig) ([]any, error) {
	params := []any{opt.HitsPerPage(cfg.Limit)}
	if cfg.Offset > 0 {
		params = append(params, opt.Page(cfg.Offset/cfg.Limit))
	}

	if len(cfg.Filters) > 0 {
		filterStrings := make([]string, 0, len(cfg.Filters))
		for _, expr := range cfg.Filters {
			filterStr, err := convertExpressionToFilter(expr)
			if err != nil {
				return nil, err
			}
			if filterStr != "" {
				filterStrings = append(filterStrings, filterStr)
			}
		}
		if len(filterStrings) > 0 {
			params = append(params, opt.Filters(strings.Join(filterStrings, " AND ")))
		}
	}

	if len(cfg.Attributes) > 0 {
		params = append(params, opt.RestrictSearchableAttributes(cfg.Attributes...))
	}
	if len(cfg.SnippetAttributes) > 0 {
		params = append(params, opt.AttributesToSnippet(cfg.SnippetAttributes...))
	}
	if cfg.HighlightPreTag != "" {
		params = append(params, opt.HighlightPreTag(cfg.HighlightPreTag))
	}
	if cfg.HighlightPostTag != "" {
		params = append(params, opt.HighlightPostTag(cfg.HighlightPostTag))
	}
	if cfg.SnippetEllipsis != "" {
		params = append(params, opt.SnippetEllipsisText(cfg.SnippetEllipsis))
	}

	return params, nil
}

// calculateScore derives a rank-based score; Algolia does not expose one.
func calculateScore(totalResults, position int) float64 {
	if totalResults == 0 {
		return 1.0
	}
	return float64(totalResults-position) / float64(totalResults)
}

// convertExpressionToFilter renders an expression in Algolia filter syntax.
func convertExpressionToFilter(expr hitview.Expression) (string, error) {
	switch e := expr.(type) {
	case hitview.AndExpr:
		return joinExpressions(e.Exprs, " AND ")
	case hitview.OrExpr:
		return joinExpressions(e.Exprs, " OR ")
	case hitview.NotExpr:
		inner, err := convertExpressionToFilter(e.Inner)
		if err != nil || inner == "" {
			return "", err
		}
		return "NOT (" + inner + ")", nil
	case hitview.EqExpr:
		return fmt.Sprintf("%s:%s", escapeField(e.Field), escapeValue(e.Value)), nil
	case hitview.NeExpr:
		return fmt.Sprintf("NOT %s:%s", escapeField(e.Field), escapeValue(e.Value)), nil
	case hitview.ExistsExpr:
		// Algolia has no existence operator
		return "", errors.WithSecondaryError(
			hitview.ErrInvalidExpression,
			errors.Newf("exists filter on %q is not supported by Algolia", e.Field),
		)
	default:
		return "", errors.WithSecondaryError(
			hitview.ErrInvalidExpression,
			errors.Newf("unsupported expression %T", expr),
		)
	}
}

func joinExpressions(exprs []hitview.Expression, sep string) (string, error) {
	filters := make([]string, 0, len(exprs))
	for _, e := range exprs {
		filter, err := convertExpressionToFilter(e)
		if err != nil {
			return "", err
		}
		if filter != "" {
			filters = append(filters, "("+filter+")")
		}
	}
	return strings.Join(filters, sep), nil
}

// escapeField quotes attribute names containing filter syntax.
func escapeField(field string) string {
	if strings.ContainsAny(field, " :-()") {
		return fmt.Sprintf(`"%s"`, field)
	}
	return field
}

// escapeValue quotes facet values.
func escapeValue(value any) string {
	if value == nil {
		return "null"
	}

	switch v := value.(type) {
	case string:
		return fmt.Sprintf(`"%s"`, strings.ReplaceAll(v, `"`, `\"`))
	case bool:
		return fmt.Sprintf(`"%s"`, strconv.FormatBool(v))
	default:
		return fmt.Sprintf(`"%v"`, value)
	}
}
