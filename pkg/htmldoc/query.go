package htmldoc

import (
	"fmt"

	"golang.org/x/net/html"

	"htmldoc/internal/query"
	"htmldoc/internal/selector"
)

// QuerySelector returns the first element matching css, or nil when nothing
// matches. A selector that cannot be translated is an error.
func (d *Document) QuerySelector(css string) (*Element, error) {
	return d.querySelector(d.root, css, selector.DescendantOrSelf)
}

// QuerySelectorAll returns every element matching css. The list is never nil.
func (d *Document) QuerySelectorAll(css string) (*NodeList, error) {
	return d.querySelectorAll(d.root, css, selector.DescendantOrSelf)
}

// Query runs an XPath expression against the document. An expression the
// engine rejects yields an empty list.
func (d *Document) Query(expr string) *NodeList {
	return d.QueryAt(d.root, expr)
}

// Evaluate is an alias for Query.
func (d *Document) Evaluate(expr string) *NodeList {
	return d.Query(expr)
}

// QueryAt runs an XPath expression with node as the context node.
func (d *Document) QueryAt(node *html.Node, expr string) *NodeList {
	nodes, err := d.run(node, expr)
	if err != nil {
		d.log.Debugf("query %q returned no results: %v", expr, err)
		return &NodeList{}
	}
	return d.FromRawResults(nodes)
}

func (d *Document) querySelector(ctx *html.Node, css string, axis selector.Axis) (*Element, error) {
	expr, err := selector.Translate(css, axis)
	if err != nil {
		return nil, fmt.Errorf("failed to translate selector: %w", err)
	}

	// Only the first element is upgraded; later matches stay untouched.
	nodes, err := d.run(ctx, expr)
	if err != nil {
		d.log.Debugf("selector %q returned no results: %v", css, err)
		return nil, nil
	}

	for _, n := range nodes {
		if el, ok := d.upgrade(n).Element(); ok {
			return el, nil
		}
	}
	return nil, nil
}

func (d *Document) querySelectorAll(ctx *html.Node, css string, axis selector.Axis) (*NodeList, error) {
	expr, err := selector.Translate(css, axis)
	if err != nil {
		return &NodeList{}, fmt.Errorf("failed to translate selector: %w", err)
	}

	nodes, err := d.run(ctx, expr)
	if err != nil {
		d.log.Debugf("selector %q returned no results: %v", css, err)
		return &NodeList{}, nil
	}

	return d.FromRawResults(nodes), nil
}

func (d *Document) run(ctx *html.Node, expr string) ([]*html.Node, error) {
	if ctx == nil {
		return nil, ErrNotLoaded
	}
	return query.Select(ctx, expr)
}

// QuerySelector returns the first element below e matching css, or nil.
func (e *Element) QuerySelector(css string) (*Element, error) {
	return e.doc.querySelector(e.node, css, selector.Descendant)
}

// QuerySelectorAll returns every element below e matching css.
func (e *Element) QuerySelectorAll(css string) (*NodeList, error) {
	return e.doc.querySelectorAll(e.node, css, selector.Descendant)
}

// Query runs an XPath expression with e as the context node.
func (e *Element) Query(expr string) *NodeList {
	return e.doc.QueryAt(e.node, expr)
}

// Evaluate is an alias for Query.
func (e *Element) Evaluate(expr string) *NodeList {
	return e.Query(expr)
}
