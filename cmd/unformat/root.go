package main

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/cespare/unformat"
)

type cliOptions struct {
	typesFile     string
	caseSensitive bool
	output        string
	verbose       bool
}

func newRootCmd() *cobra.Command {
	var opts cliOptions
	root := &cobra.Command{
		Use:          "unformat",
		Short:        "Extract values from text with format-style templates",
		SilenceUsage: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&opts.typesFile, "types", "", "YAML file defining extra field types")
	pf.BoolVar(&opts.caseSensitive, "case-sensitive", false, "match literal text and fields case-sensitively")
	pf.StringVarP(&opts.output, "output", "o", "yaml", "output format: yaml or json")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "log debug details to stderr")

	root.AddCommand(
		newMatchCmd(&opts, modeParse, "parse TEMPLATE [TEXT...]", "Match each text against the whole template"),
		newMatchCmd(&opts, modeSearch, "search TEMPLATE [TEXT...]", "Find the first match of the template in each text"),
		newMatchCmd(&opts, modeFindAll, "findall TEMPLATE [TEXT...]", "Find every match of the template in each text"),
		newExprCmd(&opts),
	)
	return root
}

func (o *cliOptions) logger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func (o *cliOptions) compile(cmd *cobra.Command, template string) (*unformat.Parser, *slog.Logger, error) {
	logger := o.logger(cmd.ErrOrStderr())
	opts := []unformat.Option{
		unformat.CaseSensitive(o.caseSensitive),
		unformat.WithLogger(logger),
	}
	if o.typesFile != "" {
		types, err := loadTypes(o.typesFile)
		if err != nil {
			return nil, nil, err
		}
		logger.Debug("loaded extra types", "file", o.typesFile, "count", len(types))
		opts = append(opts, unformat.WithExtraTypes(types))
	}
	p, err := unformat.Compile(template, opts...)
	if err != nil {
		return nil, nil, err
	}
	return p, logger, nil
}

func newExprCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "expr TEMPLATE",
		Short: "Print the expression a template compiles to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, _, err := opts.compile(cmd, args[0])
			if err != nil {
				return err
			}
			w := bufio.NewWriter(cmd.OutOrStdout())
			fmt.Fprintf(w, "expression: %s\n", p.Expression())
			fmt.Fprintf(w, "fixed fields: %d\n", len(p.FixedFields()))
			for _, name := range p.NamedFields() {
				fmt.Fprintf(w, "named field: %s\n", name)
			}
			return w.Flush()
		},
	}
}
