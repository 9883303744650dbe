// Package htmldoc loads, queries, edits and saves HTML documents with
// predictable round trips.
//
// Every Load and Save runs through a chain of middleware that works around
// parser quirks: multi-root fragments are wrapped so no root is lost, a
// doctype is injected for parsing and removed again, and the content of
// template, script, style and textarea blocks is hidden from the parser so it
// comes back byte for byte.
//
//	doc, err := htmldoc.FromHTML(`<p class="lead">Hello</p><p>World</p>`)
//	if err != nil {
//	    return err
//	}
//	lead, err := doc.QuerySelector(".lead")
//	...
//	out, err := doc.Save() // <p class="lead">Hello</p><p>World</p>
//
// Queries accept CSS selectors, which are translated to XPath, or XPath
// expressions directly. Results come back as a NodeList whose entries are
// either managed Elements or, for nodes that are not elements such as
// comments and text, the raw node passed through.
package htmldoc
