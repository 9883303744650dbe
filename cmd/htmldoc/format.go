package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

type formatOptions struct {
	output    string
	inputDir  string
	outputDir string
}

func newFormatCmd(root *rootOptions) *cobra.Command {
	opts := &formatOptions{}

	cmd := &cobra.Command{
		Use:   "format [file]",
		Short: "Load and save HTML through the middleware chain",
		Long: `The format command runs markup through a load and save round trip and
prints the result. Without a file it reads stdin.

Example:
  htmldoc format page.html
  cat page.html | htmldoc format -o page.out.html
  htmldoc format --input-dir templates --output-dir build`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.inputDir != "" {
				if len(args) > 0 {
					return errors.New("cannot specify both a file and --input-dir")
				}
				if opts.outputDir == "" {
					return errors.New("--output-dir required when using --input-dir")
				}
				return runFormatBatch(cmd, root, opts)
			}
			return runFormat(cmd, root, opts, args)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().StringVar(&opts.inputDir, "input-dir", "", "Format all HTML files in a directory")
	cmd.Flags().StringVar(&opts.outputDir, "output-dir", "", "Output directory for --input-dir")

	return cmd
}

func runFormat(cmd *cobra.Command, root *rootOptions, opts *formatOptions, args []string) error {
	doc, _, err := root.newDocument(cmd)
	if err != nil {
		return err
	}

	if _, err := loadInput(cmd, doc, args); err != nil {
		return err
	}

	if err := writeOutput(cmd, doc, opts.output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// runFormatBatch formats every HTML file below inputDir into the same
// relative path below outputDir. A file that fails is logged and skipped.
func runFormatBatch(cmd *cobra.Command, root *rootOptions, opts *formatOptions) error {
	files, err := findHTMLFiles(opts.inputDir)
	if err != nil {
		return fmt.Errorf("failed to find HTML files: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no HTML files found in directory: %s", opts.inputDir)
	}

	failed := 0
	for i, inputPath := range files {
		doc, log, err := root.newDocument(cmd)
		if err != nil {
			return err
		}
		log.Debugf("formatting %d/%d: %s", i+1, len(files), inputPath)

		if err := doc.LoadFile(inputPath); err != nil {
			log.Warnf("skipping %s: %v", inputPath, err)
			failed++
			continue
		}

		rel, err := filepath.Rel(opts.inputDir, inputPath)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", inputPath, err)
		}
		outputPath := filepath.Join(opts.outputDir, rel)

		if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
			log.Warnf("failed to create output directory for %s: %v", outputPath, err)
			failed++
			continue
		}

		n, err := doc.SaveFile(outputPath)
		if err != nil {
			log.Warnf("failed to write %s: %v", outputPath, err)
			failed++
			continue
		}
		log.Debugf("wrote %s (%d bytes)", outputPath, n)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(files))
	}
	return nil
}

func findHTMLFiles(dir string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		switch strings.ToLower(filepath.Ext(path)) {
		case ".html", ".htm":
			files = append(files, path)
		}
		return nil
	})

	return files, err
}
