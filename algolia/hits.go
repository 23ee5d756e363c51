package algolia

import (
	"strings"

	"github.com/letmevibethatforyou/hitview"
)

const (
	snippetResultKey   = "_snippetResult"
	highlightResultKey = "_highlightResult"
)

// decodeHit converts a wire hit into a hitview.Hit. Stored attributes land
// in Fields; the snippet and highlight trees are decoded per attribute and
// every other "_"-prefixed key (ranking info, distinct seq) is dropped.
func decodeHit(raw map[string]any) hitview.Hit {
	hit := hitview.Hit{
		Fields:     make(map[string]any, len(raw)),
		Snippets:   decodeResults(raw[snippetResultKey]),
		Highlights: decodeResults(raw[highlightResultKey]),
	}

	for key, value := range raw {
		if strings.HasPrefix(key, "_") {
			continue
		}
		hit.Fields[key] = value
	}

	if id, ok := raw["objectID"].(string); ok {
		hit.ID = id
	}
	return hit
}

func decodeResults(tree any) map[string]hitview.Value {
	attrs, ok := tree.(map[string]any)
	if !ok {
		return nil
	}

	out := make(map[string]hitview.Value, len(attrs))
	for attr, node := range attrs {
		v := decodeMatchTree(node)
		if hitview.IsAbsent(v) {
			continue
		}
		out[attr] = v
	}
	return out
}

// decodeMatchTree mirrors the stored attribute's shape. A match node
// {"value": ..., "matchLevel": ...} becomes a Scalar, arrays become Lists
// and other objects (attributes stored as objects, e.g. answers as
// {"text": ...}) become Objects of decoded members. Empty values become
// Absent.
func decodeMatchTree(node any) hitview.Value {
	switch n := node.(type) {
	case map[string]any:
		if value, ok := n["value"].(string); ok {
			if value == "" {
				return hitview.Absent{}
			}
			return hitview.Scalar(value)
		}
		obj := make(hitview.Object, len(n))
		for key, child := range n {
			obj[key] = decodeMatchTree(child)
		}
		return obj
	case []any:
		list := make(hitview.List, 0, len(n))
		for _, child := range n {
			list = append(list, decodeMatchTree(child))
		}
		return list
	default:
		return hitview.Absent{}
	}
}
