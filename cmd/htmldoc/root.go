package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/natefinch/atomic"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"htmldoc/internal/config"
	"htmldoc/pkg/htmldoc"
	"htmldoc/pkg/htmldoc/middleware"
)

// rootOptions holds the flags shared by every subcommand.
type rootOptions struct {
	configPath   string
	profile      string
	verbose      bool
	quiet        bool
	noMiddleware bool
	without      []string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "htmldoc",
		Short: "Load, query and rewrite HTML without losing its shape",
		Long: `htmldoc loads HTML fragments and documents through a middleware chain that
keeps the markup close to how it was written: multiple top-level nodes,
a missing doctype and the contents of script, style, template and textarea
elements all survive a load and save round trip.

Example:
  htmldoc format page.html
  htmldoc query "ul > li:first-child" page.html
  htmldoc query --xpath "count(//a)" page.html
  htmldoc strip --selector script --comments page.html -o clean.html`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.quiet && opts.verbose {
				return errors.New("cannot specify both --quiet and --verbose")
			}
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "Config file (.yaml, .json, .jsonc or .toml)")
	flags.StringVarP(&opts.profile, "profile", "p", "", "Config profile when no config file is given (default, document, fragment, raw)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")
	flags.BoolVarP(&opts.quiet, "quiet", "q", false, "Log errors only")
	flags.BoolVar(&opts.noMiddleware, "no-middleware", false, "Load and save without any middleware")
	flags.StringSliceVar(&opts.without, "without", nil, "Remove middleware kinds from the chain (repeatable)")

	cmd.AddCommand(
		newFormatCmd(opts),
		newQueryCmd(opts),
		newStripCmd(opts),
	)

	return cmd
}

// loadConfig reads the config file, or the named profile when there is none.
func (o *rootOptions) loadConfig() (config.Config, error) {
	if o.configPath != "" {
		if o.profile != "" {
			return config.Config{}, errors.New("cannot specify both --config and --profile")
		}
		return config.Load(o.configPath)
	}
	return config.Profile(o.profile)
}

func (o *rootOptions) logger(cmd *cobra.Command, cfg config.Config) (*logrus.Logger, error) {
	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}

	switch {
	case o.verbose:
		level = logrus.DebugLevel
	case o.quiet:
		level = logrus.ErrorLevel
	}

	log := logrus.New()
	log.SetOutput(cmd.ErrOrStderr())
	log.SetLevel(level)
	return log, nil
}

// newDocument builds an empty document from the global flags.
func (o *rootOptions) newDocument(cmd *cobra.Command) (*htmldoc.Document, logrus.FieldLogger, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, nil, err
	}

	log, err := o.logger(cmd, cfg)
	if err != nil {
		return nil, nil, err
	}

	docOpts := []htmldoc.Option{htmldoc.WithConfig(cfg), htmldoc.WithLogger(log)}
	if o.noMiddleware {
		docOpts = append(docOpts, htmldoc.WithoutDefaultMiddleware())
	}
	doc := htmldoc.New(docOpts...)

	if len(o.without) > 0 {
		kinds := make([]middleware.Kind, 0, len(o.without))
		for _, name := range o.without {
			kind, err := middleware.ParseKind(name)
			if err != nil {
				return nil, nil, err
			}
			kinds = append(kinds, kind)
		}
		doc.WithoutMiddleware(kinds...)
	}

	log.Debugf("using profile %q with %d middleware", cfg.Profile, len(doc.Middleware()))
	return doc, log, nil
}

// loadInput loads args[0], or stdin when no file is given.
func loadInput(cmd *cobra.Command, doc *htmldoc.Document, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		if err := doc.LoadReader(cmd.InOrStdin(), ""); err != nil {
			return "", fmt.Errorf("failed to read from stdin: %w", err)
		}
		return "<stdin>", nil
	}

	f, err := os.Open(args[0])
	if err != nil {
		return "", fmt.Errorf("failed to read input file %s: %w", args[0], err)
	}
	defer f.Close()

	if err := doc.LoadReader(f, ""); err != nil {
		return "", fmt.Errorf("failed to load %s: %w", args[0], err)
	}
	return args[0], nil
}

// writeOutput saves doc to path, or to stdout when path is empty.
func writeOutput(cmd *cobra.Command, doc *htmldoc.Document, path string) error {
	if path != "" {
		_, err := doc.SaveFile(path)
		return err
	}

	out, err := doc.Save()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
	return err
}

// writeString atomically writes content to path, or to w when path is empty.
func writeString(w io.Writer, content, path string) error {
	if path == "" {
		_, err := fmt.Fprintln(w, content)
		return err
	}
	return atomic.WriteFile(path, strings.NewReader(content+"\n"))
}
