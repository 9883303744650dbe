package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/antchfx/htmlquery"
	"github.com/spf13/cobra"
	"golang.org/x/net/html"

	"htmldoc/internal/query"
	"htmldoc/pkg/htmldoc"
)

type queryOptions struct {
	xpath  bool
	text   bool
	count  bool
	output string
}

func newQueryCmd(root *rootOptions) *cobra.Command {
	opts := &queryOptions{}

	cmd := &cobra.Command{
		Use:   "query <selector> [file]",
		Short: "Print the nodes matching a CSS selector or XPath expression",
		Long: `The query command prints every match of a CSS selector, one per line.
With --xpath the argument is an XPath expression; expressions that
evaluate to a number, string or boolean print that value.

Example:
  htmldoc query "nav a[href^='http']" page.html
  htmldoc query --text h1 page.html
  htmldoc query --xpath "count(//img[not(@alt)])" page.html`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, root, opts, args[0], args[1:])
		},
	}

	cmd.Flags().BoolVarP(&opts.xpath, "xpath", "x", false, "Treat the argument as an XPath expression")
	cmd.Flags().BoolVarP(&opts.text, "text", "t", false, "Print text content instead of markup")
	cmd.Flags().BoolVar(&opts.count, "count", false, "Print the number of matches only")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

func runQuery(cmd *cobra.Command, root *rootOptions, opts *queryOptions, expr string, args []string) error {
	doc, _, err := root.newDocument(cmd)
	if err != nil {
		return err
	}
	if _, err := loadInput(cmd, doc, args); err != nil {
		return err
	}

	var nodes []*html.Node
	if opts.xpath {
		value, err := query.Value(doc.Root(), expr)
		if err != nil {
			return err
		}
		found, ok := value.([]*html.Node)
		if !ok {
			return writeString(cmd.OutOrStdout(), formatScalar(value), opts.output)
		}
		nodes = doc.FromRawResults(found).Nodes()
	} else {
		list, err := doc.QuerySelectorAll(expr)
		if err != nil {
			return err
		}
		nodes = list.Nodes()
	}

	if opts.count {
		return writeString(cmd.OutOrStdout(), strconv.Itoa(len(nodes)), opts.output)
	}

	lines := make([]string, 0, len(nodes))
	for _, n := range nodes {
		line, err := formatNode(doc, n, opts.text)
		if err != nil {
			return err
		}
		lines = append(lines, line)
	}

	if len(lines) == 0 {
		return nil
	}
	return writeString(cmd.OutOrStdout(), strings.Join(lines, "\n"), opts.output)
}

func formatNode(doc *htmldoc.Document, n *html.Node, text bool) (string, error) {
	if text || query.IsAttribute(n) {
		return htmlquery.InnerText(n), nil
	}
	return doc.SaveNode(n)
}

func formatScalar(v any) string {
	switch v := v.(type) {
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
