package main

import (
	"errors"

	"github.com/spf13/cobra"
)

type stripOptions struct {
	selectors []string
	comments  bool
	output    string
}

func newStripCmd(root *rootOptions) *cobra.Command {
	opts := &stripOptions{}

	cmd := &cobra.Command{
		Use:   "strip [file]",
		Short: "Remove elements or comments and print the rest",
		Long: `The strip command removes every element matching the given selectors,
and optionally every comment, then saves the document.

Example:
  htmldoc strip --selector script --selector "link[rel=preload]" page.html
  htmldoc strip --comments page.html -o page.min.html`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(opts.selectors) == 0 && !opts.comments {
				return errors.New("nothing to strip: give --selector or --comments")
			}
			return runStrip(cmd, root, opts, args)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.selectors, "selector", "s", nil, "CSS selector of elements to remove (repeatable)")
	cmd.Flags().BoolVar(&opts.comments, "comments", false, "Remove comments")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

func runStrip(cmd *cobra.Command, root *rootOptions, opts *stripOptions, args []string) error {
	doc, log, err := root.newDocument(cmd)
	if err != nil {
		return err
	}

	source, err := loadInput(cmd, doc, args)
	if err != nil {
		return err
	}

	for _, sel := range opts.selectors {
		if _, err := doc.WithoutSelector(sel); err != nil {
			return err
		}
	}
	if opts.comments {
		doc.WithoutComments()
	}

	log.Debugf("stripped %s", source)
	return writeOutput(cmd, doc, opts.output)
}
