package middleware

import (
	"regexp"
	"strings"
	"unicode"
)

// Doctype is the declaration InjectDoctype adds.
const Doctype = "<!DOCTYPE html>"

var leadingDoctypeRegex = regexp.MustCompile(`(?i)^\s*<!doctype`)

type doctypeState int

const (
	doctypeIdle doctypeState = iota
	doctypeInjected
)

// InjectDoctype gives markup without a doctype the HTML5 one for parsing and
// removes it again on save.
//
// State: BeforeLoad resets to idle and moves to injected only when it
// prepended Doctype. AfterSave strips one leading Doctype while injected.
type InjectDoctype struct {
	Base
	state doctypeState
}

func NewInjectDoctype() *InjectDoctype {
	return &InjectDoctype{}
}

func (d *InjectDoctype) Kind() Kind { return KindInjectDoctype }

// Injected reports whether the last load had a doctype added.
func (d *InjectDoctype) Injected() bool { return d.state == doctypeInjected }

func (d *InjectDoctype) BeforeLoad(markup string) string {
	d.state = doctypeIdle
	if leadingDoctypeRegex.MatchString(markup) {
		return markup
	}

	d.state = doctypeInjected
	return Doctype + markup
}

func (d *InjectDoctype) AfterSave(markup string) string {
	if d.state != doctypeInjected {
		return markup
	}

	trimmed := strings.TrimLeftFunc(markup, unicode.IsSpace)
	if !strings.HasPrefix(trimmed, Doctype) {
		return markup
	}
	return trimmed[len(Doctype):]
}
