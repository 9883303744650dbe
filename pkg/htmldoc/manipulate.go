package htmldoc

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"htmldoc/pkg/htmldoc/middleware"
)

// CreateElement creates a detached element owned by d, with text as its
// only child when text is not empty.
func (d *Document) CreateElement(tag, text string) (*Element, error) {
	if !tagNameRegex.MatchString(tag) {
		return nil, &NodeError{Op: "create element", Tag: tag, Err: ErrInvalidTagName}
	}

	tag = strings.ToLower(tag)
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
	if text != "" {
		n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	}

	return d.adopt(n), nil
}

// CreateElementFromNode creates a detached element owned by d that deep
// copies an element node, possibly from another tree. node is left untouched.
func (d *Document) CreateElementFromNode(node *html.Node) (*Element, error) {
	if node == nil || node.Type != html.ElementNode {
		return nil, &NodeError{Op: "create element", Err: ErrInvalidTagName}
	}

	el, err := d.CreateElement(node.Data, "")
	if err != nil {
		return nil, err
	}

	el.node.Namespace = node.Namespace
	el.node.Attr = append(el.node.Attr, node.Attr...)
	for c := node.FirstChild; c != nil; c = c.NextSibling {
		el.node.AppendChild(cloneNode(c))
	}

	return el, nil
}

// CreateElementFromHTML parses markup without middleware and copies its
// first top-level element into a detached element owned by d.
func (d *Document) CreateElementFromHTML(markup string) (*Element, error) {
	scratch := New(WithoutDefaultMiddleware(), WithLogger(d.log))
	if err := scratch.Load(markup); err != nil {
		return nil, err
	}

	root := scratch.DocumentElement()
	if root == nil {
		return nil, fmt.Errorf("failed to create element: %w", ErrNoElement)
	}

	return d.CreateElementFromNode(root.node)
}

// WithoutSelector removes every element matching css from the document.
func (d *Document) WithoutSelector(css string) (*Document, error) {
	list, err := d.QuerySelectorAll(css)
	if err != nil {
		return d, err
	}
	removeAll(list)
	return d, nil
}

// WithoutComments removes every comment from the document. Placeholders
// of blanked tags stay so their blocks come back on save.
func (d *Document) WithoutComments() *Document {
	removeComments(d.Query("//comment()"))
	return d
}

// WithoutSelector removes every element below e matching css.
func (e *Element) WithoutSelector(css string) (*Element, error) {
	list, err := e.QuerySelectorAll(css)
	if err != nil {
		return e, err
	}
	removeAll(list)
	return e, nil
}

// WithoutComments removes every comment below e except blank placeholders.
func (e *Element) WithoutComments() *Element {
	removeComments(e.Query("descendant::comment()"))
	return e
}

func removeAll(list *NodeList) {
	for _, entry := range list.All() {
		detach(entry.Node())
	}
}

func removeComments(list *NodeList) {
	for _, entry := range list.All() {
		if n := entry.Node(); !middleware.IsPlaceholder(n.Data) {
			detach(n)
		}
	}
}

// ReplaceText splits a text node around the first occurrence of search and
// puts a copy of replacement between the two halves.
func (d *Document) ReplaceText(text *html.Node, search string, replacement *html.Node) error {
	if text == nil || text.Type != html.TextNode {
		return &NodeError{Op: "replace text", Err: ErrNotText}
	}
	if text.Parent == nil {
		return &NodeError{Op: "replace text", Tag: "#text", Err: ErrNoParent}
	}

	before, after, found := strings.Cut(text.Data, search)
	if search == "" || !found {
		return &NodeError{Op: "replace text", Tag: "#text", Err: fmt.Errorf("%w: %q", ErrSearchNotFound, search)}
	}

	parent := text.Parent
	if before != "" {
		parent.InsertBefore(&html.Node{Type: html.TextNode, Data: before}, text)
	}
	if replacement != nil {
		parent.InsertBefore(cloneNode(replacement), text)
	}
	if after != "" {
		parent.InsertBefore(&html.Node{Type: html.TextNode, Data: after}, text)
	}
	parent.RemoveChild(text)

	return nil
}

// cloneNode deep copies n without its parent and siblings.
func cloneNode(n *html.Node) *html.Node {
	c := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
		Attr:      append([]html.Attribute(nil), n.Attr...),
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		c.AppendChild(cloneNode(child))
	}
	return c
}

// ElementFromHTML creates a detached element from markup in a new document.
func ElementFromHTML(markup string, opts ...Option) (*Element, error) {
	return New(opts...).CreateElementFromHTML(markup)
}

// ElementFromNode creates a detached copy of an element node in a new document.
func ElementFromNode(node *html.Node, opts ...Option) (*Element, error) {
	return New(opts...).CreateElementFromNode(node)
}

// NodeListFromHTML parses markup as a list of sibling nodes without
// middleware. Elements are upgraded, text and comments passed through.
func NodeListFromHTML(markup string, opts ...Option) (*NodeList, error) {
	d := New(append(opts, WithoutDefaultMiddleware())...)
	if err := d.Load(middleware.Wrap(markup)); err != nil {
		return nil, err
	}

	wrapper := d.DocumentElement()
	if wrapper == nil {
		return &NodeList{}, nil
	}
	return wrapper.ChildNodes(), nil
}
