package htmldoc

import (
	"fmt"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	htmlparse "htmldoc/internal/html"
)

// Element is an element node managed by a Document.
type Element struct {
	node *html.Node
	doc  *Document
}

// Node returns the underlying node.
func (e *Element) Node() *html.Node {
	return e.node
}

// Document returns the owning document.
func (e *Element) Document() *Document {
	return e.doc
}

// TagName returns the element's tag name.
func (e *Element) TagName() string {
	return e.node.Data
}

// Attr returns the value of the named attribute.
func (e *Element) Attr(name string) (string, bool) {
	name = strings.ToLower(name)
	for _, a := range e.node.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// HasAttr reports whether the named attribute is set.
func (e *Element) HasAttr(name string) bool {
	_, ok := e.Attr(name)
	return ok
}

// SetAttr sets an attribute, keeping its position when it already exists.
func (e *Element) SetAttr(name, value string) *Element {
	name = strings.ToLower(name)
	for i, a := range e.node.Attr {
		if a.Namespace == "" && a.Key == name {
			e.node.Attr[i].Val = value
			return e
		}
	}
	e.node.Attr = append(e.node.Attr, html.Attribute{Key: name, Val: value})
	return e
}

// SetAttrList sets an attribute to values joined by spaces.
func (e *Element) SetAttrList(name string, values ...string) *Element {
	return e.SetAttr(name, strings.Join(values, " "))
}

// RemoveAttr removes an attribute if present.
func (e *Element) RemoveAttr(name string) *Element {
	name = strings.ToLower(name)
	e.node.Attr = slices.DeleteFunc(e.node.Attr, func(a html.Attribute) bool {
		return a.Namespace == "" && a.Key == name
	})
	return e
}

// ToggleAttr removes the attribute if present and sets it empty otherwise.
// It reports whether the attribute is present afterwards.
func (e *Element) ToggleAttr(name string) bool {
	if e.HasAttr(name) {
		e.RemoveAttr(name)
		return false
	}
	e.SetAttr(name, "")
	return true
}

// Attributes returns a copy of the attributes in document order.
func (e *Element) Attributes() []html.Attribute {
	return slices.Clone(e.node.Attr)
}

// ClassList returns the classes of the class attribute.
func (e *Element) ClassList() []string {
	class, ok := e.Attr("class")
	if !ok {
		return nil
	}
	return strings.Fields(class)
}

// SetClassList replaces the class attribute. An empty list removes it.
func (e *Element) SetClassList(classes []string) *Element {
	if len(classes) == 0 {
		return e.RemoveAttr("class")
	}
	return e.SetAttrList("class", classes...)
}

// HasClass reports whether class is in the class list.
func (e *Element) HasClass(class string) bool {
	return slices.Contains(e.ClassList(), class)
}

// AddClass appends the classes that are not already present.
func (e *Element) AddClass(classes ...string) *Element {
	list := e.ClassList()
	for _, c := range classes {
		if c != "" && !slices.Contains(list, c) {
			list = append(list, c)
		}
	}
	if len(list) == 0 {
		return e
	}
	return e.SetClassList(list)
}

// RemoveClass removes classes. The attribute goes away with the last class.
func (e *Element) RemoveClass(classes ...string) *Element {
	if !e.HasAttr("class") {
		return e
	}
	list := slices.DeleteFunc(e.ClassList(), func(c string) bool {
		return slices.Contains(classes, c)
	})
	return e.SetClassList(list)
}

// IsVoidElement reports whether the element never has content.
func (e *Element) IsVoidElement() bool {
	return htmlparse.IsVoidElement(e.node.Data)
}

// OuterHTML renders the element with its own attribute formatting. Void
// elements end in ">" in HTML5 documents and " />" otherwise.
func (e *Element) OuterHTML() string {
	tag := e.node.Data

	attrs := FormatAttributes(e.node.Attr)
	if attrs != "" {
		attrs = " " + attrs
	}

	if e.IsVoidElement() {
		if e.doc.IsHTML5() {
			return "<" + tag + attrs + ">"
		}
		return "<" + tag + attrs + " />"
	}

	return "<" + tag + attrs + ">" + e.InnerHTML() + "</" + tag + ">"
}

// InnerHTML renders the element's children. Child nodes other than text go
// through the document's save chain.
func (e *Element) InnerHTML() string {
	var b strings.Builder
	raw := htmlparse.IsRawTextElement(e.node.Data)

	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			if raw {
				b.WriteString(c.Data)
			} else {
				b.WriteString(html.EscapeString(c.Data))
			}
			continue
		}

		out, err := e.doc.SaveNode(c)
		if err != nil {
			e.doc.log.Debugf("skipping child of <%s>: %v", e.node.Data, err)
			continue
		}
		b.WriteString(out)
	}

	return b.String()
}

// Text returns the combined text of the element and its descendants.
func (e *Element) Text() string {
	return goquery.NewDocumentFromNode(e.node).Text()
}

// SetText replaces the children with a single text node.
func (e *Element) SetText(text string) *Element {
	removeChildren(e.node)
	if text != "" {
		e.node.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	}
	return e
}

// SetInnerHTML replaces the children with markup parsed in the element's context.
func (e *Element) SetInnerHTML(markup string) error {
	nodes, err := html.ParseFragment(strings.NewReader(markup), e.node)
	if err != nil {
		return fmt.Errorf("failed to parse inner HTML: %w", err)
	}

	removeChildren(e.node)
	for _, n := range nodes {
		e.node.AppendChild(n)
	}
	return nil
}

// HTML saves the element through the document's middleware chain.
func (e *Element) HTML() (string, error) {
	return e.doc.SaveNode(e.node)
}

func (e *Element) String() string {
	out, err := e.HTML()
	if err != nil {
		return ""
	}
	return out
}

// Replace puts node where the element is. The element ends up detached.
func (e *Element) Replace(node *html.Node) error {
	parent := e.node.Parent
	if parent == nil {
		return &NodeError{Op: "replace", Tag: e.node.Data, Err: ErrNoParent}
	}
	if node == e.node {
		return nil
	}

	detach(node)
	parent.InsertBefore(node, e.node)
	parent.RemoveChild(e.node)
	return nil
}

// Remove detaches the element from its parent.
func (e *Element) Remove() *Element {
	detach(e.node)
	return e
}

// AppendChild moves node to the end of the element's children.
func (e *Element) AppendChild(node *html.Node) *Element {
	detach(node)
	e.node.AppendChild(node)
	return e
}

// Parent returns the parent element, or nil at the top of the tree.
func (e *Element) Parent() *Element {
	if p := e.node.Parent; p != nil && p.Type == html.ElementNode {
		return e.doc.adopt(p)
	}
	return nil
}

// Children returns the child elements.
func (e *Element) Children() []*Element {
	var out []*Element
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, e.doc.adopt(c))
		}
	}
	return out
}

// ChildNodes returns every child: elements upgraded, other nodes passed through.
func (e *Element) ChildNodes() *NodeList {
	l := &NodeList{}
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		l.entries = append(l.entries, e.doc.wrap(c))
	}
	return l
}

// NextSibling returns the next element sibling, or nil.
func (e *Element) NextSibling() *Element {
	for s := e.node.NextSibling; s != nil; s = s.NextSibling {
		if s.Type == html.ElementNode {
			return e.doc.adopt(s)
		}
	}
	return nil
}

// PrevSibling returns the previous element sibling, or nil.
func (e *Element) PrevSibling() *Element {
	for s := e.node.PrevSibling; s != nil; s = s.PrevSibling {
		if s.Type == html.ElementNode {
			return e.doc.adopt(s)
		}
	}
	return nil
}

// Matches reports whether the element matches a CSS selector.
func (e *Element) Matches(css string) (bool, error) {
	sel, err := cascadia.Compile(css)
	if err != nil {
		return false, fmt.Errorf("failed to compile selector: %w", err)
	}
	return goquery.NewDocumentFromNode(e.node).IsMatcher(sel), nil
}

// Closest returns the nearest element, starting with e itself, that matches
// a CSS selector, or nil.
func (e *Element) Closest(css string) (*Element, error) {
	sel, err := cascadia.Compile(css)
	if err != nil {
		return nil, fmt.Errorf("failed to compile selector: %w", err)
	}

	found := goquery.NewDocumentFromNode(e.node).ClosestMatcher(sel)
	if found.Length() == 0 {
		return nil, nil
	}
	return e.doc.adopt(found.Get(0)), nil
}

// Contains reports whether node is e or one of its descendants.
func (e *Element) Contains(node *html.Node) bool {
	return NodeContains(e.node, node)
}

// MapRecursive maps fn over the element's subtree. See MapRecursive.
func (e *Element) MapRecursive(fn MapFunc) *Element {
	MapRecursive(e.node, fn)
	return e
}

// wrap returns the entry for n without moving it.
func (d *Document) wrap(n *html.Node) Entry {
	if n.Type == html.ElementNode && tagNameRegex.MatchString(n.Data) {
		return Upgraded(d.adopt(n))
	}
	return Passthrough(n)
}

func detach(n *html.Node) {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

func removeChildren(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
}
