package middleware

// Options selects the built-in middleware of a chain.
type Options struct {
	SuppressDiagnostics bool
	WrapRoots           bool
	InjectDoctype       bool
	Trim                bool
	BlankTags           []string
}

// DefaultOptions enables every built-in with the default blanked tags.
func DefaultOptions() Options {
	return Options{
		SuppressDiagnostics: true,
		WrapRoots:           true,
		InjectDoctype:       true,
		Trim:                true,
		BlankTags:           append([]string(nil), DefaultBlankTags...),
	}
}

// Build assembles a chain in the canonical order: diagnostics, wrapping,
// doctype, trimming, then one BlankTag per tag. Wrapping runs before doctype
// injection so the doctype ends up outside the wrapper and is removed first
// on save.
func Build(opts Options, parser DiagnosticsToggle, count RootCounter) []Middleware {
	var chain []Middleware

	if opts.SuppressDiagnostics && parser != nil {
		chain = append(chain, NewSuppressDiagnostics(parser))
	}
	if opts.WrapRoots && count != nil {
		chain = append(chain, NewWrapRoots(count))
	}
	if opts.InjectDoctype {
		chain = append(chain, NewInjectDoctype())
	}
	if opts.Trim {
		chain = append(chain, NewTrim())
	}
	for _, tag := range opts.BlankTags {
		chain = append(chain, NewBlankTag(tag))
	}

	return chain
}

// Default returns the full default chain.
func Default(parser DiagnosticsToggle, count RootCounter) []Middleware {
	return Build(DefaultOptions(), parser, count)
}
