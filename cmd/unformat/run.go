package main

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cespare/unformat"
)

type matchMode int

const (
	modeParse matchMode = iota
	modeSearch
	modeFindAll
)

func newMatchCmd(opts *cliOptions, mode matchMode, use, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, logger, err := opts.compile(cmd, args[0])
			if err != nil {
				return err
			}
			out, err := newPrinter(cmd.OutOrStdout(), opts.output)
			if err != nil {
				return err
			}
			r := &runner{mode: mode, parser: p, out: out, logger: logger}
			if len(args) > 1 {
				for _, text := range args[1:] {
					if err := r.match(text); err != nil {
						return err
					}
				}
			} else if err := r.matchLines(cmd.InOrStdin()); err != nil {
				return err
			}
			if err := out.flush(); err != nil {
				return err
			}
			if r.misses > 0 {
				return fmt.Errorf("%d of %d inputs did not match", r.misses, r.inputs)
			}
			return nil
		},
	}
}

type runner struct {
	mode   matchMode
	parser *unformat.Parser
	out    printer
	logger *slog.Logger

	inputs, misses int
}

func (r *runner) matchLines(in io.Reader) error {
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		if err := r.match(strings.TrimSuffix(sc.Text(), "\r")); err != nil {
			return err
		}
	}
	return sc.Err()
}

func (r *runner) match(text string) error {
	r.inputs++
	var results []*unformat.Result
	switch r.mode {
	case modeParse, modeSearch:
		var res *unformat.Result
		var err error
		if r.mode == modeParse {
			res, err = r.parser.Parse(text)
		} else {
			res, err = r.parser.Search(text)
		}
		if err != nil {
			return err
		}
		if res != nil {
			results = append(results, res)
		}
	case modeFindAll:
		var err error
		if results, err = r.parser.FindAll(text).Collect(); err != nil {
			return err
		}
	}
	if len(results) == 0 {
		r.misses++
		r.logger.Warn("no match", "template", r.parser.Template(), "input", text)
		return nil
	}
	r.logger.Debug("matched", "input", text, "results", len(results))
	for _, res := range results {
		if err := r.out.print(newRecord(text, res)); err != nil {
			return err
		}
	}
	return nil
}
