package htmldoc

import (
	"fmt"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"

	"htmldoc/internal/config"
	htmlparse "htmldoc/internal/html"
	"htmldoc/pkg/htmldoc/middleware"
)

// Config is the document configuration. See DefaultConfig and LoadConfig.
type Config = config.Config

// Diagnostic is a parser tolerance note, such as an end tag that closes nothing.
type Diagnostic = htmlparse.Diagnostic

// DefaultConfig returns the configuration New uses when none is given.
func DefaultConfig() Config {
	return config.Default()
}

// LoadConfig reads a YAML, JSON or TOML configuration file.
func LoadConfig(path string) (Config, error) {
	return config.Load(path)
}

// Document is a parsed HTML tree together with the middleware chain its
// loads and saves run through. A Document is not safe for concurrent use.
type Document struct {
	cfg      config.Config
	log      logrus.FieldLogger
	parser   *htmlparse.NetParser
	chain    []middleware.Middleware
	defaults bool

	root    *html.Node
	managed map[*html.Node]*Element
}

// Option configures a Document.
type Option func(*Document)

// WithLogger sets the logger. The default is logrus.StandardLogger().
func WithLogger(log logrus.FieldLogger) Option {
	return func(d *Document) {
		if log != nil {
			d.log = log
		}
	}
}

// WithConfig replaces the configuration.
func WithConfig(cfg Config) Option {
	return func(d *Document) {
		d.cfg = cfg
	}
}

// WithImpliedStructure keeps the html, head and body elements the parser
// adds to markup that does not spell them out.
func WithImpliedStructure(implied bool) Option {
	return func(d *Document) {
		d.cfg.ImpliedStructure = implied
	}
}

// WithoutDefaultMiddleware starts the document with an empty chain.
func WithoutDefaultMiddleware() Option {
	return func(d *Document) {
		d.defaults = false
	}
}

// New creates an empty document.
func New(opts ...Option) *Document {
	d := &Document{
		cfg:      config.Default(),
		log:      logrus.StandardLogger(),
		parser:   htmlparse.NewParser(),
		defaults: true,
		managed:  make(map[*html.Node]*Element),
	}

	for _, opt := range opts {
		opt(d)
	}

	d.parser.SetImplied(d.cfg.ImpliedStructure)

	if d.defaults {
		d.chain = middleware.Build(middlewareOptions(d.cfg), d.parser, d.parser.CountRootNodes)
	}

	return d
}

// FromHTML creates a document and loads markup into it.
func FromHTML(markup string, opts ...Option) (*Document, error) {
	d := New(opts...)
	if err := d.Load(markup); err != nil {
		return nil, err
	}
	return d, nil
}

func middlewareOptions(cfg config.Config) middleware.Options {
	return middleware.Options{
		SuppressDiagnostics: cfg.SuppressDiagnostics,
		WrapRoots:           cfg.WrapMultipleRoots,
		InjectDoctype:       cfg.InjectDoctype,
		Trim:                cfg.Trim,
		BlankTags:           cfg.BlankTags,
	}
}

// WithMiddleware appends m to the chain. It affects later loads and saves only.
func (d *Document) WithMiddleware(m ...middleware.Middleware) *Document {
	d.chain = append(slices.Clone(d.chain), m...)
	return d
}

// WithoutMiddleware removes every middleware of the given kinds from the
// chain, or all of them when no kind is given.
func (d *Document) WithoutMiddleware(kinds ...middleware.Kind) *Document {
	d.chain = middleware.Without(d.chain, kinds...)
	return d
}

// Middleware returns a copy of the current chain.
func (d *Document) Middleware() []middleware.Middleware {
	return slices.Clone(d.chain)
}

// Config returns the document configuration.
func (d *Document) Config() Config {
	return d.cfg
}

// Load parses markup through the middleware chain and replaces the tree.
// Malformed markup is tolerated; Load only fails when the parser cannot
// produce a tree at all.
func (d *Document) Load(markup string) error {
	pipeline := middleware.NewPipeline(d.chain, d.log)

	d.parser.SetCollectDiagnostics(true)
	d.parser.ClearDiagnostics()

	source := pipeline.BeforeLoad(markup)

	root, err := d.parser.Parse(source)
	if err != nil {
		return fmt.Errorf("failed to load document: %w", err)
	}

	d.root = root
	d.managed = make(map[*html.Node]*Element)

	pipeline.AfterLoad()

	for _, diag := range d.parser.Diagnostics() {
		d.log.Debugf("parser diagnostic: %s", diag)
	}
	d.log.Debugf("loaded %d bytes through %d middleware", len(markup), pipeline.Len())

	return nil
}

// Save serializes the whole document through the middleware chain.
func (d *Document) Save() (string, error) {
	if d.root == nil {
		return "", fmt.Errorf("%w: %w", ErrSave, ErrNotLoaded)
	}
	return d.save(d.root)
}

// SaveNode serializes node, including the node itself, through the
// middleware chain.
func (d *Document) SaveNode(node *html.Node) (string, error) {
	if node == nil {
		return "", fmt.Errorf("%w: nil node", ErrSave)
	}
	return d.save(node)
}

func (d *Document) save(node *html.Node) (string, error) {
	pipeline := middleware.NewPipeline(d.chain, d.log)
	pipeline.BeforeSave()

	out, err := htmlparse.RenderString(d.parser, node)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSave, err)
	}

	out = strings.TrimSpace(pipeline.AfterSave(out))
	d.log.Debugf("saved %d bytes through %d middleware", len(out), pipeline.Len())

	return out, nil
}

// String returns the saved document, or an empty string if saving fails.
func (d *Document) String() string {
	out, err := d.Save()
	if err != nil {
		return ""
	}
	return out
}

// Root returns the document node, or nil before the first Load.
func (d *Document) Root() *html.Node {
	return d.root
}

// DocumentElement returns the first top-level element, or nil.
func (d *Document) DocumentElement() *Element {
	if d.root == nil {
		return nil
	}
	for c := d.root.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return d.adopt(c)
		}
	}
	return nil
}

// IsHTML5 reports whether the document has a plain <!DOCTYPE html>.
func (d *Document) IsHTML5() bool {
	if d.root == nil {
		return false
	}
	for c := d.root.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.DoctypeNode {
			continue
		}
		if !strings.EqualFold(c.Data, "html") {
			return false
		}
		for _, a := range c.Attr {
			if (a.Key == "public" || a.Key == "system") && a.Val != "" {
				return false
			}
		}
		return true
	}
	return false
}

// Contains reports whether node is part of the document tree.
func (d *Document) Contains(node *html.Node) bool {
	if d.root == nil {
		return false
	}
	return NodeContains(d.root, node)
}

// Diagnostics returns the parser diagnostics of the last load. The default
// chain suppresses them, so this is empty unless suppression was removed.
func (d *Document) Diagnostics() []Diagnostic {
	return d.parser.Diagnostics()
}

// MapRecursive maps fn over the whole tree. See MapRecursive.
func (d *Document) MapRecursive(fn MapFunc) *Document {
	if d.root != nil {
		MapRecursive(d.root, fn)
	}
	return d
}

// adopt returns the managed element for n, creating it without moving n.
func (d *Document) adopt(n *html.Node) *Element {
	if el, ok := d.managed[n]; ok {
		return el
	}
	el := &Element{node: n, doc: d}
	d.managed[n] = el
	return el
}
