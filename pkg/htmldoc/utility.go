package htmldoc

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/net/html"

	htmlparse "htmldoc/internal/html"
	"htmldoc/pkg/htmldoc/middleware"
)

// FormatAttribute renders one attribute. A string slice is joined with
// spaces, true renders the bare name and false renders nothing, an empty
// value renders the bare name. Values are escaped.
func FormatAttribute(name string, value any) string {
	name = html.EscapeString(name)

	switch v := value.(type) {
	case nil:
		return name
	case []string:
		return name + `="` + html.EscapeString(strings.Join(v, " ")) + `"`
	case bool:
		if v {
			return name
		}
		return ""
	case string:
		if v == "" {
			return name
		}
		return name + `="` + html.EscapeString(v) + `"`
	default:
		if s := fmt.Sprint(v); s != "" {
			return name + `="` + html.EscapeString(s) + `"`
		}
		return name
	}
}

// FormatAttributes renders attributes in order, separated by single spaces.
func FormatAttributes(attrs []html.Attribute) string {
	parts := make([]string, 0, len(attrs))
	for _, a := range attrs {
		name := a.Key
		if a.Namespace != "" {
			name = a.Namespace + ":" + a.Key
		}
		parts = append(parts, FormatAttribute(name, a.Val))
	}
	return strings.Join(parts, " ")
}

// FormatAttributeMap renders a map of attributes sorted by name. Attributes
// that render to nothing, such as false booleans, are left out.
func FormatAttributeMap(attrs map[string]any) string {
	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	slices.Sort(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		if s := FormatAttribute(name, attrs[name]); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// CountRootNodes counts the top-level elements, comments and non-blank
// text runs of a markup fragment.
func CountRootNodes(markup string) int {
	return htmlparse.CountRootNodes(markup)
}

// Wrap surrounds markup with the synthetic wrapper element.
func Wrap(markup string) string {
	return middleware.Wrap(markup)
}

// Unwrap strips a wrapper element added by Wrap.
func Unwrap(markup string) string {
	return middleware.Unwrap(markup)
}

// NodeContains reports whether child is parent or one of its descendants.
func NodeContains(parent, child *html.Node) bool {
	if parent == nil {
		return false
	}
	for n := child; n != nil; n = n.Parent {
		if n == parent {
			return true
		}
	}
	return false
}
