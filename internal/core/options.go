package core

import (
	"unicode/utf8"

	"github.com/JonMunkholm/csvedit/internal/config"
	"github.com/JonMunkholm/csvedit/internal/csv"
)

// ReadOptions controls how document text is parsed. An empty Delimiter is
// detected from the content; an empty Comments disables comment handling.
type ReadOptions struct {
	Delimiter  string `json:"delimiter"`
	QuoteChar  string `json:"quoteChar"`
	EscapeChar string `json:"escapeChar"`
	Comments   string `json:"comments"`
	HasHeader  bool   `json:"hasHeader"`
}

// WriteOptions controls how the table is serialized. An empty Newline reuses
// the line ending read from the input.
type WriteOptions struct {
	Delimiter      string `json:"delimiter"`
	QuoteChar      string `json:"quoteChar"`
	EscapeChar     string `json:"escapeChar"`
	Comments       string `json:"comments"`
	Newline        string `json:"newline"`
	Header         bool   `json:"header"`
	QuoteAllFields bool   `json:"quoteAllFields"`
}

// ReadOptionsFrom maps the user's settings to read options.
func ReadOptionsFrom(ext config.ExtensionConfig) ReadOptions {
	return ReadOptions{
		Delimiter:  ext.ReadOptionDelimiter,
		QuoteChar:  ext.ReadOptionQuoteChar,
		EscapeChar: ext.ReadOptionEscapeChar,
		Comments:   ext.ReadOptionComment,
		HasHeader:  ext.ReadOptionHasHeader,
	}
}

// WriteOptionsFrom maps the user's settings to write options.
func WriteOptionsFrom(ext config.ExtensionConfig) WriteOptions {
	return WriteOptions{
		Delimiter:      ext.WriteOptionDelimiter,
		QuoteChar:      ext.WriteOptionQuoteChar,
		EscapeChar:     ext.WriteOptionEscapeChar,
		Comments:       ext.WriteOptionComment,
		Header:         ext.WriteOptionHasHeader,
		QuoteAllFields: ext.QuoteAllFields,
	}
}

func (o ReadOptions) parseConfig() csv.ReadConfig {
	return csv.ReadConfig{
		Delimiter:  o.Delimiter,
		QuoteChar:  firstRune(o.QuoteChar),
		EscapeChar: firstRune(o.EscapeChar),
	}
}

func (o WriteOptions) unparseConfig(newline string) csv.WriteConfig {
	return csv.WriteConfig{
		Delimiter:  o.Delimiter,
		Newline:    newline,
		QuoteChar:  firstRune(o.QuoteChar),
		EscapeChar: firstRune(o.EscapeChar),
		QuoteAll:   o.QuoteAllFields,
	}
}

// firstRune returns 0 for an empty string so the csv package applies its
// default.
func firstRune(s string) rune {
	if s == "" {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r
}
