// Package query executes XPath 1.0 expressions against golang.org/x/net/html trees.
package query

import (
	"errors"
	"fmt"
	"sync"

	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xpath"
	"golang.org/x/net/html"
)

// ErrInvalidExpression is returned for expressions the XPath engine cannot compile.
var ErrInvalidExpression = errors.New("invalid XPath expression")

var cache sync.Map // string -> *xpath.Expr

// Compile compiles expr, reusing a previous compilation of the same text.
func Compile(expr string) (*xpath.Expr, error) {
	if cached, ok := cache.Load(expr); ok {
		return cached.(*xpath.Expr), nil
	}

	compiled, err := xpath.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidExpression, expr, err)
	}

	cache.Store(expr, compiled)
	return compiled, nil
}

// Select evaluates expr with ctx as the context node and returns the matched
// nodes in the order the engine yields them.
//
// Attribute matches come back as detached elements named after the attribute
// with a single text child holding its value. Text and comment matches are
// the live nodes from the tree.
func Select(ctx *html.Node, expr string) ([]*html.Node, error) {
	if ctx == nil {
		return nil, errors.New("cannot query a nil node")
	}

	compiled, err := Compile(expr)
	if err != nil {
		return nil, err
	}

	return unique(htmlquery.QuerySelectorAll(ctx, compiled)), nil
}

// SelectOne returns the first node matched by expr, or nil.
func SelectOne(ctx *html.Node, expr string) (*html.Node, error) {
	if ctx == nil {
		return nil, errors.New("cannot query a nil node")
	}

	compiled, err := Compile(expr)
	if err != nil {
		return nil, err
	}

	return htmlquery.QuerySelector(ctx, compiled), nil
}

// Value evaluates expr and returns its raw result: a float64, string or bool
// for scalar expressions, or the matched nodes for node-set expressions.
func Value(ctx *html.Node, expr string) (any, error) {
	if ctx == nil {
		return nil, errors.New("cannot query a nil node")
	}

	compiled, err := Compile(expr)
	if err != nil {
		return nil, err
	}

	result := compiled.Evaluate(htmlquery.CreateXPathNavigator(ctx))
	iter, ok := result.(*xpath.NodeIterator)
	if !ok {
		return result, nil
	}

	var nodes []*html.Node
	for iter.MoveNext() {
		nodes = append(nodes, currentNode(iter.Current().(*htmlquery.NodeNavigator)))
	}
	return unique(nodes), nil
}

// unique drops repeated nodes, keeping the first occurrence. The engine
// yields a node once per context node that reaches it.
func unique(nodes []*html.Node) []*html.Node {
	seen := make(map[*html.Node]struct{}, len(nodes))
	out := nodes[:0]
	for _, n := range nodes {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// currentNode mirrors htmlquery: an attribute comes back as a detached
// element named after it, holding the value as its only child.
func currentNode(nav *htmlquery.NodeNavigator) *html.Node {
	if nav.NodeType() != xpath.AttributeNode {
		return nav.Current()
	}
	value := &html.Node{Type: html.TextNode, Data: nav.Value()}
	return &html.Node{Type: html.ElementNode, Data: nav.LocalName(), FirstChild: value, LastChild: value}
}

// IsAttribute reports whether n is a detached attribute result.
func IsAttribute(n *html.Node) bool {
	return n != nil && n.Type == html.ElementNode && n.Parent == nil &&
		n.FirstChild != nil && n.FirstChild == n.LastChild && n.FirstChild.Type == html.TextNode
}
