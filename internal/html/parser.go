package html

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var (
	fullDocumentRegex   = regexp.MustCompile(`(?is)^\s*(<!doctype[^>]*>)?\s*<html[\s>]`)
	leadingDoctypeRegex = regexp.MustCompile(`(?is)^\s*<!doctype[^>]*>`)
	headTagRegex        = regexp.MustCompile(`(?i)<head[\s>]`)
	bodyTagRegex        = regexp.MustCompile(`(?i)<body[\s>]`)
)

// NetParser implements Parser on top of golang.org/x/net/html.
//
// Markup that starts with an <html> element is parsed as a full document;
// anything else is parsed as a body fragment so the parser does not invent
// html, head and body elements around it.
type NetParser struct {
	implied     bool
	collect     bool
	diagnostics []Diagnostic
}

// NewParser creates a parser that collects diagnostics and keeps
// implied elements out of the tree.
func NewParser() *NetParser {
	return &NetParser{collect: true}
}

// SetImplied makes every parse a full document parse that keeps the
// html, head and body elements the HTML5 algorithm implies.
func (p *NetParser) SetImplied(implied bool) {
	p.implied = implied
}

// SetCollectDiagnostics toggles diagnostic collection for later parses.
func (p *NetParser) SetCollectDiagnostics(enabled bool) {
	p.collect = enabled
}

// CollectsDiagnostics reports whether diagnostics are being collected.
func (p *NetParser) CollectsDiagnostics() bool {
	return p.collect
}

// Diagnostics returns a copy of the diagnostics collected so far.
func (p *NetParser) Diagnostics() []Diagnostic {
	out := make([]Diagnostic, len(p.diagnostics))
	copy(out, p.diagnostics)
	return out
}

// ClearDiagnostics drops all accumulated diagnostics.
func (p *NetParser) ClearDiagnostics() {
	p.diagnostics = nil
}

// Parse parses markup into a document node. Malformed markup never fails;
// the parser always returns a best-effort tree.
func (p *NetParser) Parse(markup string) (*html.Node, error) {
	if p.collect {
		p.diagnostics = append(p.diagnostics, scanDiagnostics(markup)...)
	}

	if p.implied || fullDocumentRegex.MatchString(markup) {
		return p.parseDocument(markup)
	}

	return p.parseFragment(markup)
}

func (p *NetParser) parseDocument(markup string) (*html.Node, error) {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	if !p.implied {
		pruneImplied(doc, markup)
	}

	return doc, nil
}

func (p *NetParser) parseFragment(markup string) (*html.Node, error) {
	root := &html.Node{Type: html.DocumentNode}

	rest := markup
	if loc := leadingDoctypeRegex.FindStringIndex(markup); loc != nil {
		doctype, err := parseDoctype(markup[:loc[1]])
		if err != nil {
			return nil, err
		}
		if doctype != nil {
			root.AppendChild(doctype)
		}
		rest = markup[loc[1]:]
	}

	nodes, err := html.ParseFragment(strings.NewReader(rest), BodyContext())
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML fragment: %w", err)
	}

	for _, n := range nodes {
		root.AppendChild(n)
	}

	return root, nil
}

// Render serializes node and its subtree. Document nodes render their children.
func (p *NetParser) Render(w io.Writer, node *html.Node) error {
	if node == nil {
		return errors.New("cannot render a nil node")
	}
	return html.Render(w, node)
}

// CountRootNodes counts the top-level nodes in a markup fragment: elements,
// comments and non-blank text. Doctypes are not counted. It tokenizes only,
// so it never re-enters a load pipeline.
func (p *NetParser) CountRootNodes(markup string) int {
	return CountRootNodes(markup)
}

// CountRootNodes is the parser-independent implementation of NetParser.CountRootNodes.
func CountRootNodes(markup string) int {
	z := html.NewTokenizer(strings.NewReader(markup))
	depth, count := 0, 0

	for {
		switch z.Next() {
		case html.ErrorToken:
			return count
		case html.TextToken:
			if depth == 0 && strings.TrimSpace(string(z.Text())) != "" {
				count++
			}
		case html.CommentToken, html.SelfClosingTagToken:
			if depth == 0 {
				count++
			}
		case html.StartTagToken:
			name, _ := z.TagName()
			if depth == 0 {
				count++
			}
			if !IsVoidElement(string(name)) {
				depth++
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if depth > 0 && !IsVoidElement(string(name)) {
				depth--
			}
		}
	}
}

// RenderString renders node with p and returns the markup.
func RenderString(p Parser, node *html.Node) (string, error) {
	var buf strings.Builder
	if err := p.Render(&buf, node); err != nil {
		return "", fmt.Errorf("failed to serialize HTML: %w", err)
	}
	return buf.String(), nil
}

// BodyContext returns a detached <body> element used as fragment context.
func BodyContext() *html.Node {
	return &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
}

func parseDoctype(markup string) (*html.Node, error) {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("failed to parse doctype: %w", err)
	}

	for c := doc.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.DoctypeNode {
			doc.RemoveChild(c)
			return c, nil
		}
	}

	return nil, nil
}

// pruneImplied removes the head and body elements html.Parse invents when
// the source never spelled them out.
func pruneImplied(doc *html.Node, markup string) {
	root := firstElement(doc, atom.Html)
	if root == nil {
		return
	}

	if !headTagRegex.MatchString(markup) {
		if head := firstElement(root, atom.Head); head != nil && head.FirstChild == nil && len(head.Attr) == 0 {
			root.RemoveChild(head)
		}
	}

	if !bodyTagRegex.MatchString(markup) {
		if body := firstElement(root, atom.Body); body != nil && len(body.Attr) == 0 {
			unwrap(body)
		}
	}
}

func firstElement(parent *html.Node, a atom.Atom) *html.Node {
	for c := parent.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == a {
			return c
		}
	}
	return nil
}

// unwrap replaces n with its children.
func unwrap(n *html.Node) {
	parent := n.Parent
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		parent.InsertBefore(c, n)
		c = next
	}
	parent.RemoveChild(n)
}

// scanDiagnostics tokenizes markup and reports unbalanced tags.
func scanDiagnostics(markup string) []Diagnostic {
	var (
		diags []Diagnostic
		open  []string
	)

	z := html.NewTokenizer(strings.NewReader(markup))
	line := 1

	for {
		tt := z.Next()
		raw := z.Raw()

		switch tt {
		case html.ErrorToken:
			if err := z.Err(); err != nil && !errors.Is(err, io.EOF) {
				diags = append(diags, Diagnostic{Line: line, Message: err.Error()})
			}
			for i := len(open) - 1; i >= 0; i-- {
				diags = append(diags, Diagnostic{Line: line, Message: fmt.Sprintf("unclosed tag <%s>", open[i])})
			}
			return diags

		case html.StartTagToken:
			name, _ := z.TagName()
			if !IsVoidElement(string(name)) {
				open = append(open, string(name))
			}

		case html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)

			idx := -1
			for i := len(open) - 1; i >= 0; i-- {
				if open[i] == tag {
					idx = i
					break
				}
			}

			if idx < 0 {
				if !IsVoidElement(tag) {
					diags = append(diags, Diagnostic{Line: line, Message: fmt.Sprintf("unexpected end tag </%s>", tag)})
				}
				break
			}

			for i := len(open) - 1; i > idx; i-- {
				diags = append(diags, Diagnostic{Line: line, Message: fmt.Sprintf("tag <%s> implicitly closed by </%s>", open[i], tag)})
			}
			open = open[:idx]
		}

		line += bytes.Count(raw, []byte("\n"))
	}
}
