package middleware

import "strings"

// Trim strips surrounding whitespace from markup before it is parsed.
type Trim struct {
	Base
}

func NewTrim() *Trim {
	return &Trim{}
}

func (t *Trim) Kind() Kind { return KindTrim }

func (t *Trim) BeforeLoad(markup string) string {
	return strings.TrimSpace(markup)
}
