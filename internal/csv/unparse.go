package csv

import "strings"

// WriteConfig controls Unparse. Zero values select the defaults.
type WriteConfig struct {
	Delimiter      string // default ","
	Newline        string // default "\r\n"
	QuoteChar      rune   // default '"'
	EscapeChar     rune   // default QuoteChar
	QuoteAll       bool
	SkipEmptyLines bool
}

func (c WriteConfig) withDefaults() WriteConfig {
	if c.Delimiter == "" {
		c.Delimiter = DefaultDelimiter
	}
	if c.Newline == "" {
		c.Newline = "\r\n"
	}
	c.QuoteChar = orDefault(c.QuoteChar, '"')
	c.EscapeChar = orDefault(c.EscapeChar, c.QuoteChar)
	return c
}

// Unparse serializes data. Rows are separated by cfg.Newline with no trailing
// newline, and each row keeps its own number of fields.
func Unparse(data [][]string, cfg WriteConfig) string {
	cfg = cfg.withDefaults()
	quote := string(cfg.QuoteChar)
	escape := string(cfg.EscapeChar)

	var b strings.Builder
	first := true
	for _, row := range data {
		if cfg.SkipEmptyLines && isEmptyRow(row) {
			continue
		}
		if !first {
			b.WriteString(cfg.Newline)
		}
		first = false

		for i, field := range row {
			if i > 0 {
				b.WriteString(cfg.Delimiter)
			}
			if !cfg.QuoteAll && !needsQuotes(field, cfg.Delimiter, quote) {
				b.WriteString(field)
				continue
			}
			b.WriteString(quote)
			b.WriteString(strings.ReplaceAll(field, quote, escape+quote))
			b.WriteString(quote)
		}
	}
	return b.String()
}

func needsQuotes(field, delim, quote string) bool {
	if field == "" {
		return false
	}
	if strings.ContainsAny(field, "\r\n"+bom) {
		return true
	}
	if strings.Contains(field, quote) || strings.Contains(field, delim) {
		return true
	}
	return field[0] == ' ' || field[len(field)-1] == ' '
}
