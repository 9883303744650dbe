package htmldoc

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func nullLogger() logrus.FieldLogger {
	logger, _ := test.NewNullLogger()
	return logger
}

func load(t *testing.T, markup string, opts ...Option) *Document {
	t.Helper()
	doc, err := FromHTML(markup, append([]Option{WithLogger(nullLogger())}, opts...)...)
	require.NoError(t, err)
	return doc
}

func save(t *testing.T, doc *Document) string {
	t.Helper()
	out, err := doc.Save()
	require.NoError(t, err)
	return out
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}
