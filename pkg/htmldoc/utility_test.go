package htmldoc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/net/html"
)

func TestFormatAttribute(t *testing.T) {
	tests := []struct {
		name  string
		attr  string
		value any
		want  string
	}{
		{name: "nil", attr: "checked", value: nil, want: "checked"},
		{name: "string list", attr: "class", value: []string{"a", "b"}, want: `class="a b"`},
		{name: "true", attr: "hidden", value: true, want: "hidden"},
		{name: "false", attr: "hidden", value: false, want: ""},
		{name: "empty string", attr: "alt", value: "", want: "alt"},
		{name: "escaped", attr: "title", value: `a "q" & b`, want: `title="a &#34;q&#34; &amp; b"`},
		{name: "number", attr: "width", value: 10, want: `width="10"`},
		{name: "name escaped with value", attr: `a"b`, value: "v", want: `a&#34;b="v"`},
		{name: "name escaped in list", attr: `a&b`, value: []string{"x"}, want: `a&amp;b="x"`},
		{name: "name escaped bare", attr: `a&b`, value: true, want: `a&amp;b`},
		{name: "name escaped once for other types", attr: `a&b`, value: 1, want: `a&amp;b="1"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatAttribute(tt.attr, tt.value))
		})
	}
}

func TestFormatAttributes(t *testing.T) {
	got := FormatAttributes([]html.Attribute{
		{Key: "id", Val: "x"},
		{Namespace: "xlink", Key: "href", Val: "#a"},
		{Key: "disabled"},
	})
	assert.Equal(t, `id="x" xlink:href="#a" disabled`, got)
	assert.Equal(t, "", FormatAttributes(nil))
}

func TestFormatAttributeMap(t *testing.T) {
	got := FormatAttributeMap(map[string]any{
		"c": false,
		"b": true,
		"a": "x",
	})
	assert.Equal(t, `a="x" b`, got)
}

func TestCountRootNodes(t *testing.T) {
	assert.Equal(t, 2, CountRootNodes(`<div></div><p></p>`))
	assert.Equal(t, 1, CountRootNodes(`<div><p></p></div>`))
	assert.Equal(t, 0, CountRootNodes(""))
}

func TestNodeContains(t *testing.T) {
	el := element(t, `<div><p><b>x</b></p></div>`)
	b := findElement(el.Node(), "b")

	assert.True(t, NodeContains(el.Node(), b))
	assert.True(t, NodeContains(b, b))
	assert.False(t, NodeContains(b, el.Node()))
	assert.False(t, NodeContains(nil, b))
	assert.False(t, NodeContains(el.Node(), nil))
}

func TestWrapUnwrap(t *testing.T) {
	markup := `<p>a</p><p>b</p>`

	wrapped := Wrap(markup)
	assert.NotEqual(t, markup, wrapped)
	assert.Equal(t, 1, CountRootNodes(wrapped))
	assert.Equal(t, markup, Unwrap(wrapped))

	assert.Equal(t, markup, Unwrap(markup), "unwrapped markup is left alone")
}
