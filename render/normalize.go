package render

import "github.com/letmevibethatforyou/hitview"

// NormalizeToList flattens v into its non-empty strings. Absent yields
// nothing, a Scalar yields itself and a List yields its non-empty Scalar
// elements in order. Nested lists and objects are not strings and are
// dropped; apply a shape coercion first to reduce them.
func NormalizeToList(v hitview.Value) []string {
	switch t := v.(type) {
	case hitview.Scalar:
		if t == "" {
			return nil
		}
		return []string{string(t)}
	case hitview.List:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(hitview.Scalar); ok && s != "" {
				out = append(out, string(s))
			}
		}
		return out
	default:
		return nil
	}
}

// NormalizeAnswer reduces one answer item: a list to its first element and
// an object to its "text" member. Other values are returned unchanged.
func NormalizeAnswer(v hitview.Value) hitview.Value {
	switch t := v.(type) {
	case hitview.List:
		if len(t) == 0 {
			return hitview.Absent{}
		}
		return t[0]
	case hitview.Object:
		if text, ok := t["text"]; ok {
			return text
		}
		return t
	default:
		return v
	}
}

var linkMembers = []string{"url", "href", "link"}

// NormalizeHyperlink reduces one hyperlink item. Strings pass through and
// objects yield their first present url, href or link member. Anything else
// is Absent.
func NormalizeHyperlink(v hitview.Value) hitview.Value {
	switch t := v.(type) {
	case hitview.Scalar:
		return t
	case hitview.Object:
		for _, name := range linkMembers {
			if s, ok := t.Member(name); ok {
				return hitview.Scalar(s)
			}
		}
	}
	return hitview.Absent{}
}

// coerce applies the shape's item coercion to every element of v. A scalar
// or object value of a list-shaped field is treated as a single item.
func coerce(shape Shape, v hitview.Value) hitview.Value {
	var item func(hitview.Value) hitview.Value
	switch shape {
	case ShapeAnswers:
		item = NormalizeAnswer
	case ShapeHyperlinks:
		item = NormalizeHyperlink
	default:
		return v
	}

	switch t := v.(type) {
	case hitview.List:
		out := make(hitview.List, 0, len(t))
		for _, elem := range t {
			out = append(out, item(elem))
		}
		return out
	case hitview.Absent, nil:
		return hitview.Absent{}
	default:
		return hitview.List{item(t)}
	}
}

// NormalizeField coerces v according to field's shape and flattens it.
func NormalizeField(field Field, v hitview.Value) []string {
	return NormalizeToList(coerce(field.Shape, v))
}
