package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/csvedit/internal/bridge"
	"github.com/JonMunkholm/csvedit/internal/config"
	"github.com/JonMunkholm/csvedit/internal/core"
	"github.com/JonMunkholm/csvedit/internal/csv"
)

type convertOptions struct {
	settings       string
	section        string
	out            string
	readDelimiter  string
	writeDelimiter string
	newline        string
	comments       string
	hasHeader      bool
	quoteAll       bool
}

var newlines = map[string]string{
	"":     "",
	"lf":   "\n",
	"crlf": "\r\n",
	"cr":   "\r",
}

func newConvertCmd() *cobra.Command {
	var opts convertOptions

	cmd := &cobra.Command{
		Use:   "convert <file>",
		Short: "Parse a CSV file and write it back with the write options",
		Example: `  csvedit convert data.csv --write-delimiter ';' --newline crlf
  csvedit convert data.csv --settings settings.json -o out.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, args[0], opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.settings, "settings", "", "settings file providing the read and write options")
	f.StringVar(&opts.section, "section", "csv-edit", "settings section")
	f.StringVarP(&opts.out, "output", "o", "", "output file (default stdout)")
	f.StringVar(&opts.readDelimiter, "read-delimiter", "", "read delimiter (default detect)")
	f.StringVar(&opts.writeDelimiter, "write-delimiter", "", "write delimiter (default the one read)")
	f.StringVar(&opts.newline, "newline", "", "write line ending: lf, crlf or cr (default the one read)")
	f.StringVar(&opts.comments, "comments", "", "comment marker for reading and writing (overrides settings)")
	f.BoolVar(&opts.hasHeader, "has-header", false, "treat the first row as header")
	f.BoolVar(&opts.quoteAll, "quote-all", false, "quote every field")
	return cmd
}

func runConvert(cmd *cobra.Command, path string, opts convertOptions) error {
	newline, ok := newlines[opts.newline]
	if !ok {
		return fmt.Errorf("unknown newline %q: want lf, crlf or cr", opts.newline)
	}

	ext := config.DefaultExtensionConfig()
	if opts.settings != "" {
		store, err := config.NewViperStore(opts.settings, opts.section)
		if err != nil {
			return err
		}
		ext = config.LoadExtension(store, opts.section, func(msg string) {
			fmt.Fprintln(cmd.ErrOrStderr(), msg)
		})
	}

	read := core.ReadOptionsFrom(ext)
	write := core.WriteOptionsFrom(ext)
	if opts.comments != "" {
		read.Comments, write.Comments = opts.comments, opts.comments
	}
	if opts.readDelimiter != "" {
		read.Delimiter = opts.readDelimiter
	}
	read.HasHeader = read.HasHeader || opts.hasHeader
	write.QuoteAllFields = write.QuoteAllFields || opts.quoteAll
	write.Newline = newline

	session := core.NewSession(bridge.New(), core.SessionConfig{Read: read, Write: write})

	content, err := csv.ReadFile(path)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := session.SetInitialContent(ctx, content); err != nil {
		return err
	}

	if opts.writeDelimiter != "" {
		w := session.WriteOptions()
		w.Delimiter = opts.writeDelimiter
		session.SetWriteOptions(w)
	}

	result, err := session.CSV()
	if err != nil {
		return err
	}

	if opts.out == "" {
		_, err := fmt.Fprint(cmd.OutOrStdout(), result)
		return err
	}
	return csv.WriteFile(opts.out, result)
}
