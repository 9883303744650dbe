package middleware

import (
	"regexp"
	"strings"
)

// WrapperTag names the synthetic container put around multi-root markup.
const WrapperTag = "htmldoc-wrapper"

var doctypeDeclRegex = regexp.MustCompile(`(?is)^\s*<!doctype[^>]*>`)

const (
	wrapperOpen  = "<" + WrapperTag + ">"
	wrapperClose = "</" + WrapperTag + ">"
)

// RootCounter counts the top-level nodes of a markup fragment. It must not
// load the markup through a middleware chain.
type RootCounter func(markup string) int

type wrapState int

const (
	wrapIdle wrapState = iota
	wrapApplied
)

// WrapRoots puts markup with more than one top-level node inside a single
// WrapperTag element so the parser keeps every root, and strips the wrapper
// again on save.
//
// State: BeforeLoad resets to idle and moves to applied only when it wrapped.
// AfterSave reads the state and never changes it, so repeated saves of the
// same load all unwrap.
type WrapRoots struct {
	Base
	count RootCounter
	state wrapState
}

func NewWrapRoots(count RootCounter) *WrapRoots {
	return &WrapRoots{count: count}
}

func (w *WrapRoots) Kind() Kind { return KindWrapRoots }

// Wrapped reports whether the last load was wrapped.
func (w *WrapRoots) Wrapped() bool { return w.state == wrapApplied }

// BeforeLoad keeps a leading doctype outside the wrapper.
func (w *WrapRoots) BeforeLoad(markup string) string {
	w.state = wrapIdle
	if w.count(markup) <= 1 {
		return markup
	}

	w.state = wrapApplied
	decl, rest := splitDoctype(markup)
	return decl + Wrap(rest)
}

func (w *WrapRoots) AfterSave(markup string) string {
	if w.state != wrapApplied {
		return markup
	}
	decl, rest := splitDoctype(markup)
	if decl == "" {
		return Unwrap(markup)
	}
	return decl + Unwrap(rest)
}

// splitDoctype separates a leading doctype declaration from the markup after it.
func splitDoctype(markup string) (string, string) {
	loc := doctypeDeclRegex.FindStringIndex(markup)
	if loc == nil {
		return "", markup
	}
	return markup[:loc[1]], markup[loc[1]:]
}

// Wrap surrounds markup with the wrapper element.
func Wrap(markup string) string {
	return wrapperOpen + markup + wrapperClose
}

// Unwrap removes the wrapper element when it encloses the whole trimmed
// markup. Anything else is returned unchanged.
func Unwrap(markup string) string {
	trimmed := strings.TrimSpace(markup)
	if len(trimmed) < len(wrapperOpen)+len(wrapperClose) ||
		!strings.HasPrefix(trimmed, wrapperOpen) ||
		!strings.HasSuffix(trimmed, wrapperClose) {
		return markup
	}
	return trimmed[len(wrapperOpen) : len(trimmed)-len(wrapperClose)]
}
