package htmldoc

import (
	"iter"
	"regexp"
	"slices"

	"golang.org/x/net/html"
)

var tagNameRegex = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_.:-]*$`)

// Entry is one position of a NodeList: either an upgraded Element or a raw
// node passed through because it could not be upgraded. The zero Entry is a
// deleted position.
type Entry struct {
	element *Element
	raw     *html.Node
}

// Upgraded returns an entry holding el.
func Upgraded(el *Element) Entry {
	return Entry{element: el}
}

// Passthrough returns an entry holding a raw node.
func Passthrough(n *html.Node) Entry {
	return Entry{raw: n}
}

// Element returns the upgraded element, if this entry holds one.
func (e Entry) Element() (*Element, bool) {
	return e.element, e.element != nil
}

// Node returns the underlying node of either variant, or nil for a deleted entry.
func (e Entry) Node() *html.Node {
	if e.element != nil {
		return e.element.node
	}
	return e.raw
}

// IsPassthrough reports whether the entry holds a raw node.
func (e Entry) IsPassthrough() bool {
	return e.element == nil && e.raw != nil
}

// IsZero reports whether the entry is empty.
func (e Entry) IsZero() bool {
	return e.element == nil && e.raw == nil
}

// NodeList is an ordered, index-addressable query result. Deleting an
// index leaves a hole instead of shifting later entries.
type NodeList struct {
	entries []Entry
}

// NewNodeList builds a list from elements in the given order.
func NewNodeList(elements ...*Element) *NodeList {
	l := &NodeList{entries: make([]Entry, 0, len(elements))}
	for _, el := range elements {
		if el == nil {
			l.entries = append(l.entries, Entry{})
			continue
		}
		l.entries = append(l.entries, Upgraded(el))
	}
	return l
}

// FromRawResults builds a NodeList from raw query results, upgrading every
// node it can into a managed Element. An upgraded node that sits in the tree
// is replaced there by its element, so the tree holds what the list holds.
// Nodes that are not elements are kept as passthrough entries.
func (d *Document) FromRawResults(nodes []*html.Node) *NodeList {
	l := &NodeList{entries: make([]Entry, 0, len(nodes))}
	for _, n := range nodes {
		l.entries = append(l.entries, d.upgrade(n))
	}
	return l
}

// upgrade materializes n as a managed element with the same tag, attributes
// and children. Children are moved, not copied.
func (d *Document) upgrade(n *html.Node) Entry {
	if n == nil {
		return Entry{}
	}
	if el, ok := d.managed[n]; ok {
		return Upgraded(el)
	}
	if n.Type != html.ElementNode || !tagNameRegex.MatchString(n.Data) {
		return Passthrough(n)
	}

	if n.Parent == nil {
		return Upgraded(d.adopt(n))
	}

	fresh := &html.Node{
		Type:      html.ElementNode,
		Data:      n.Data,
		DataAtom:  n.DataAtom,
		Namespace: n.Namespace,
		Attr:      slices.Clone(n.Attr),
	}
	moveChildren(n, fresh)

	n.Parent.InsertBefore(fresh, n)
	n.Parent.RemoveChild(n)

	el := d.adopt(fresh)
	d.managed[n] = el
	return Upgraded(el)
}

func moveChildren(from, to *html.Node) {
	for c := from.FirstChild; c != nil; {
		next := c.NextSibling
		from.RemoveChild(c)
		to.AppendChild(c)
		c = next
	}
}

// Count returns the number of present entries.
func (l *NodeList) Count() int {
	n := 0
	for _, e := range l.entries {
		if !e.IsZero() {
			n++
		}
	}
	return n
}

// Len returns the highest index plus one, holes included.
func (l *NodeList) Len() int {
	return len(l.entries)
}

// Get returns the entry at i. It reports false for an index out of range or deleted.
func (l *NodeList) Get(i int) (Entry, bool) {
	if i < 0 || i >= len(l.entries) || l.entries[i].IsZero() {
		return Entry{}, false
	}
	return l.entries[i], true
}

// Set stores e at i, growing the list with holes when i is past the end.
// Negative indexes are ignored.
func (l *NodeList) Set(i int, e Entry) {
	if i < 0 {
		return
	}
	if i >= len(l.entries) {
		l.entries = append(l.entries, make([]Entry, i-len(l.entries)+1)...)
	}
	l.entries[i] = e
}

// Delete removes the entry at i without renumbering the others.
func (l *NodeList) Delete(i int) {
	if i >= 0 && i < len(l.entries) {
		l.entries[i] = Entry{}
	}
}

// Item returns the element at i, or nil when i is out of range, deleted or
// holds a passthrough node.
func (l *NodeList) Item(i int) *Element {
	e, ok := l.Get(i)
	if !ok {
		return nil
	}
	el, _ := e.Element()
	return el
}

// All iterates present entries in list order with their indexes.
func (l *NodeList) All() iter.Seq2[int, Entry] {
	return func(yield func(int, Entry) bool) {
		for i, e := range l.entries {
			if e.IsZero() {
				continue
			}
			if !yield(i, e) {
				return
			}
		}
	}
}

// Entries returns the present entries in order.
func (l *NodeList) Entries() []Entry {
	out := make([]Entry, 0, len(l.entries))
	for _, e := range l.All() {
		out = append(out, e)
	}
	return out
}

// Elements returns the upgraded elements in order, skipping passthrough entries.
func (l *NodeList) Elements() []*Element {
	out := make([]*Element, 0, len(l.entries))
	for _, e := range l.All() {
		if el, ok := e.Element(); ok {
			out = append(out, el)
		}
	}
	return out
}

// Nodes returns the underlying nodes of the present entries in order.
func (l *NodeList) Nodes() []*html.Node {
	out := make([]*html.Node, 0, len(l.entries))
	for _, e := range l.All() {
		out = append(out, e.Node())
	}
	return out
}
