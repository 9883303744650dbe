package selector

import (
	"regexp"
	"strings"
)

var (
	whitespaceRegex = regexp.MustCompile(`\s+`)
	childRegex      = regexp.MustCompile(`\s*>\s*`)
	adjacentRegex   = regexp.MustCompile(`\s*\+\s*`)
	siblingRegex    = regexp.MustCompile(`\s*~\s*`)
	groupRegex      = regexp.MustCompile(`\s*,\s*`)
)

// Normalize collapses whitespace and spaces combinators evenly so equal
// selectors compare equal. Selectors containing quotes or brackets are only
// trimmed, since their attribute values may hold any of these characters.
func Normalize(selector string) string {
	selector = strings.TrimSpace(selector)
	if strings.ContainsAny(selector, `'"[(\`) {
		return selector
	}

	selector = whitespaceRegex.ReplaceAllString(selector, " ")
	selector = childRegex.ReplaceAllString(selector, " > ")
	selector = adjacentRegex.ReplaceAllString(selector, " + ")
	selector = siblingRegex.ReplaceAllString(selector, " ~ ")
	selector = groupRegex.ReplaceAllString(selector, ", ")

	return selector
}
