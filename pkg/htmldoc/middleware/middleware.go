// Package middleware implements the normalization transforms that run around
// every document parse and serialize.
//
// Load hooks run in registration order and save hooks in reverse, so the
// first transform applied on load is the last one undone on save.
package middleware

import (
	"fmt"
	"slices"

	"github.com/sirupsen/logrus"
)

// Kind identifies a middleware for removal from a chain.
type Kind string

const (
	KindSuppressDiagnostics Kind = "suppress-diagnostics"
	KindWrapRoots           Kind = "wrap-roots"
	KindInjectDoctype       Kind = "inject-doctype"
	KindTrim                Kind = "trim"
	KindBlankTag            Kind = "blank-tag"
)

// Kinds lists the built-in kinds in default chain order.
func Kinds() []Kind {
	return []Kind{KindSuppressDiagnostics, KindWrapRoots, KindInjectDoctype, KindTrim, KindBlankTag}
}

// ParseKind resolves the name of a built-in kind.
func ParseKind(name string) (Kind, error) {
	for _, k := range Kinds() {
		if string(k) == name {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown middleware %q", name)
}

// Middleware is a transform applied symmetrically around parse and serialize.
// Each hook receives the current output of the chain, not the original input.
type Middleware interface {
	Kind() Kind
	BeforeLoad(markup string) string
	AfterLoad()
	BeforeSave()
	AfterSave(markup string) string
}

// Base provides no-op hooks. Embed it and override the hooks you need.
type Base struct{}

func (Base) BeforeLoad(markup string) string { return markup }
func (Base) AfterLoad()                      {}
func (Base) BeforeSave()                     {}
func (Base) AfterSave(markup string) string  { return markup }

// Hooks adapts plain functions to Middleware. Nil functions are no-ops.
type Hooks struct {
	Name     Kind
	OnLoad   func(markup string) string
	OnLoaded func()
	OnSave   func()
	OnSaved  func(markup string) string
}

func (h Hooks) Kind() Kind { return h.Name }

func (h Hooks) BeforeLoad(markup string) string {
	if h.OnLoad == nil {
		return markup
	}
	return h.OnLoad(markup)
}

func (h Hooks) AfterLoad() {
	if h.OnLoaded != nil {
		h.OnLoaded()
	}
}

func (h Hooks) BeforeSave() {
	if h.OnSave != nil {
		h.OnSave()
	}
}

func (h Hooks) AfterSave(markup string) string {
	if h.OnSaved == nil {
		return markup
	}
	return h.OnSaved(markup)
}

// Without returns chain minus every middleware whose kind is in kinds.
// With no kinds it returns an empty chain.
func Without(chain []Middleware, kinds ...Kind) []Middleware {
	if len(kinds) == 0 {
		return nil
	}
	return slices.DeleteFunc(slices.Clone(chain), func(m Middleware) bool {
		return slices.Contains(kinds, m.Kind())
	})
}

// Pipeline runs the hooks of a fixed snapshot of a chain. A hook that panics
// is logged and its input passed through unchanged.
type Pipeline struct {
	chain []Middleware
	log   logrus.FieldLogger
}

// NewPipeline snapshots chain. Later changes to the slice do not affect the pipeline.
func NewPipeline(chain []Middleware, log logrus.FieldLogger) *Pipeline {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Pipeline{chain: slices.Clone(chain), log: log}
}

// Len returns the number of middleware in the pipeline.
func (p *Pipeline) Len() int {
	return len(p.chain)
}

// BeforeLoad runs BeforeLoad hooks in registration order.
func (p *Pipeline) BeforeLoad(markup string) string {
	for _, m := range p.chain {
		in := markup
		p.guard(m, "BeforeLoad", func() { markup = m.BeforeLoad(in) })
	}
	return markup
}

// AfterLoad runs AfterLoad hooks in registration order.
func (p *Pipeline) AfterLoad() {
	for _, m := range p.chain {
		p.guard(m, "AfterLoad", m.AfterLoad)
	}
}

// BeforeSave runs BeforeSave hooks in reverse registration order.
func (p *Pipeline) BeforeSave() {
	for i := len(p.chain) - 1; i >= 0; i-- {
		m := p.chain[i]
		p.guard(m, "BeforeSave", m.BeforeSave)
	}
}

// AfterSave runs AfterSave hooks in reverse registration order.
func (p *Pipeline) AfterSave(markup string) string {
	for i := len(p.chain) - 1; i >= 0; i-- {
		m := p.chain[i]
		in := markup
		p.guard(m, "AfterSave", func() { markup = m.AfterSave(in) })
	}
	return markup
}

func (p *Pipeline) guard(m Middleware, hook string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			p.log.WithField("middleware", m.Kind()).Warnf("%s hook failed, leaving markup unchanged: %v", hook, r)
		}
	}()
	fn()
}
