package html

import (
	"fmt"
	"io"

	"golang.org/x/net/html"
)

// Parser is the delegate markup engine behind a document.
// Any HTML parsing library can sit behind it as long as it produces
// golang.org/x/net/html trees.
type Parser interface {
	// Tree construction
	Parse(markup string) (*html.Node, error)
	CountRootNodes(markup string) int

	// Serialization
	Render(w io.Writer, node *html.Node) error

	// Diagnostics
	SetCollectDiagnostics(enabled bool)
	CollectsDiagnostics() bool
	Diagnostics() []Diagnostic
	ClearDiagnostics()
}

// Diagnostic is a tolerance note recorded while tokenizing markup,
// such as an end tag that closes nothing.
type Diagnostic struct {
	Line    int
	Message string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("line %d: %s", d.Line, d.Message)
}

// voidElements lists elements that never have content or an end tag.
var voidElements = map[string]bool{
	"area":    true,
	"base":    true,
	"br":      true,
	"col":     true,
	"command": true,
	"embed":   true,
	"hr":      true,
	"img":     true,
	"input":   true,
	"keygen":  true,
	"link":    true,
	"meta":    true,
	"param":   true,
	"source":  true,
	"track":   true,
	"wbr":     true,
}

// IsVoidElement reports whether tag is a void element.
func IsVoidElement(tag string) bool {
	return voidElements[tag]
}

// rawTextElements hold text that is serialized without escaping.
var rawTextElements = map[string]bool{
	"iframe":    true,
	"noembed":   true,
	"noframes":  true,
	"noscript":  true,
	"plaintext": true,
	"script":    true,
	"style":     true,
	"xmp":       true,
}

// IsRawTextElement reports whether the text content of tag is written unescaped.
func IsRawTextElement(tag string) bool {
	return rawTextElements[tag]
}
