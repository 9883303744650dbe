package htmldoc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func TestNodeList_Accessors(t *testing.T) {
	a, b := element(t, `<a>1</a>`), element(t, `<b>2</b>`)
	list := NewNodeList(a, b)

	assert.Equal(t, 2, list.Count())
	assert.Same(t, a, list.Item(0))
	assert.Same(t, b, list.Item(1))
	assert.Nil(t, list.Item(2))
	assert.Nil(t, list.Item(-1))

	_, ok := list.Get(5)
	assert.False(t, ok)
}

func TestNodeList_DeleteDoesNotCompact(t *testing.T) {
	list := NewNodeList(element(t, `<a></a>`), element(t, `<b></b>`), element(t, `<i></i>`))

	list.Delete(1)
	assert.Equal(t, 2, list.Count())
	assert.Equal(t, 3, list.Len())
	assert.Nil(t, list.Item(1))
	assert.Equal(t, "i", list.Item(2).TagName())

	var indexes []int
	for i := range list.All() {
		indexes = append(indexes, i)
	}
	assert.Equal(t, []int{0, 2}, indexes)

	list.Delete(10)
	assert.Equal(t, 2, list.Count())
}

func TestNodeList_SetGrowsWithHoles(t *testing.T) {
	list := &NodeList{}
	comment := &html.Node{Type: html.CommentNode, Data: "c"}

	list.Set(2, Passthrough(comment))
	assert.Equal(t, 1, list.Count())
	assert.Equal(t, 3, list.Len())

	entry, ok := list.Get(2)
	require.True(t, ok)
	assert.True(t, entry.IsPassthrough())
	assert.Same(t, comment, entry.Node())
	_, isElement := entry.Element()
	assert.False(t, isElement)

	list.Set(0, Upgraded(element(t, `<p></p>`)))
	assert.Equal(t, 2, list.Count())
	assert.Equal(t, "p", list.Item(0).TagName())

	list.Set(-1, Passthrough(comment))
	assert.Equal(t, 3, list.Len())
}

func TestNodeList_AllStopsEarly(t *testing.T) {
	list := NewNodeList(element(t, `<a></a>`), element(t, `<b></b>`))

	seen := 0
	for range list.All() {
		seen++
		break
	}
	assert.Equal(t, 1, seen)
}

func TestNodeList_ElementsSkipsPassthrough(t *testing.T) {
	list, err := NodeListFromHTML(`Foo<div>Bar</div><!-- c --><p>Baz</p>`)
	require.NoError(t, err)

	assert.Equal(t, 4, list.Count())
	require.Len(t, list.Elements(), 2)
	assert.Equal(t, "div", list.Elements()[0].TagName())
	assert.Equal(t, "p", list.Elements()[1].TagName())
	assert.Len(t, list.Nodes(), 4)
}

func TestNodeListFromHTML(t *testing.T) {
	list, err := NodeListFromHTML(`<div></div><p></p>`)
	require.NoError(t, err)
	assert.Equal(t, 2, list.Count())

	list, err = NodeListFromHTML(``)
	require.NoError(t, err)
	assert.Equal(t, 0, list.Count())
}

func TestFromRawResults(t *testing.T) {
	doc := load(t, `<div><p>a</p><!-- c --></div>`)
	div := findElement(doc.Root(), "div")
	require.NotNil(t, div)

	raw := []*html.Node{div.FirstChild, div.LastChild, nil}
	list := doc.FromRawResults(raw)

	assert.Equal(t, 2, list.Count())
	assert.Equal(t, 3, list.Len())
	require.NotNil(t, list.Item(0))
	assert.Equal(t, "p", list.Item(0).TagName())
	assert.Same(t, div, list.Item(0).Node().Parent)

	entry, ok := list.Get(1)
	require.True(t, ok)
	assert.True(t, entry.IsPassthrough())
}

func TestFromRawResults_InvalidTagNamePassesThrough(t *testing.T) {
	doc := New()
	odd := &html.Node{Type: html.ElementNode, Data: "1odd"}

	entry, ok := doc.FromRawResults([]*html.Node{odd}).Get(0)
	require.True(t, ok)
	assert.True(t, entry.IsPassthrough())
}
