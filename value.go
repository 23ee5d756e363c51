package hitview

import (
	"encoding/json"
	"strconv"
)

// Value is one field representation of a hit: raw stored content, snippet
// or highlight. The set of variants is closed: Absent, Scalar, List and
// Object.
type Value interface {
	value()
}

// Absent is a missing, null or empty value.
type Absent struct{}

// Scalar is a single string, possibly carrying HTML.
type Scalar string

// List is an ordered sequence of values. Elements may themselves be lists,
// e.g. an answer stored as ["text", "explanation"].
type List []Value

// Object is a tagged object such as {"text": ...} or a link
// {"url": ..., "href": ...}.
type Object map[string]Value

func (Absent) value() {}
func (Scalar) value() {}
func (List) value()   {}
func (Object) value() {}

// Member returns the string value of a member when it holds a non-empty
// scalar.
func (o Object) Member(name string) (string, bool) {
	s, ok := o[name].(Scalar)
	if !ok || s == "" {
		return "", false
	}
	return string(s), true
}

// IsAbsent reports whether v carries nothing to render. A nil interface
// counts as absent.
func IsAbsent(v Value) bool {
	switch t := v.(type) {
	case nil, Absent:
		return true
	case Scalar:
		return t == ""
	case List:
		return len(t) == 0
	case Object:
		return len(t) == 0
	default:
		return true
	}
}

// ValueOf converts decoded JSON into a Value. Strings become Scalar, slices
// become List and string-keyed maps become Object. Numbers and true become
// their text. nil, "", false and any unrecognised type become Absent.
func ValueOf(raw any) Value {
	switch v := raw.(type) {
	case nil:
		return Absent{}
	case Value:
		return v
	case string:
		if v == "" {
			return Absent{}
		}
		return Scalar(v)
	case bool:
		if !v {
			return Absent{}
		}
		return Scalar("true")
	case float64:
		return Scalar(strconv.FormatFloat(v, 'f', -1, 64))
	case int:
		return Scalar(strconv.Itoa(v))
	case int64:
		return Scalar(strconv.FormatInt(v, 10))
	case json.Number:
		return Scalar(v.String())
	case []string:
		list := make(List, 0, len(v))
		for _, item := range v {
			list = append(list, ValueOf(item))
		}
		return list
	case []any:
		list := make(List, 0, len(v))
		for _, item := range v {
			list = append(list, ValueOf(item))
		}
		return list
	case map[string]string:
		obj := make(Object, len(v))
		for k, item := range v {
			obj[k] = ValueOf(item)
		}
		return obj
	case map[string]any:
		obj := make(Object, len(v))
		for k, item := range v {
			obj[k] = ValueOf(item)
		}
		return obj
	default:
		return Absent{}
	}
}
