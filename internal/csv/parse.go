// Package csv tokenizes and serializes delimiter-separated text for the editor.
//
// The reader detects the delimiter and line ending when they are not
// configured, accepts a configurable quote and escape character, and reports
// malformed quoting as a list of row-addressed errors instead of failing on
// the first one. The writer is the inverse: it quotes only what has to be
// quoted unless asked to quote everything.
package csv

import (
	"math"
	"strings"
)

// Error types reported in ParseError.Type.
const (
	ErrTypeQuotes    = "Quotes"
	ErrTypeDelimiter = "Delimiter"
)

// Error codes reported in ParseError.Code.
const (
	CodeMissingQuotes         = "MissingQuotes"
	CodeInvalidQuotes         = "InvalidQuotes"
	CodeUndetectableDelimiter = "UndetectableDelimiter"
)

const (
	RecordSep = "\x1e"
	UnitSep   = "\x1f"
	bom       = "\ufeff"

	// DefaultDelimiter is used when detection fails.
	DefaultDelimiter = ","

	guessPreviewRows = 10
	guessSampleBytes = 1024 * 1024
)

var guessableDelimiters = []string{",", "\t", "|", ";", RecordSep, UnitSep}

// ReadConfig controls Parse. Zero values select detection or defaults.
type ReadConfig struct {
	Delimiter      string // "" detects
	Newline        string // "" detects
	QuoteChar      rune   // 0 means '"'
	EscapeChar     rune   // 0 means QuoteChar
	Comments       string // "" keeps comment lines
	SkipEmptyLines bool
}

// ParseError describes one problem found while tokenizing.
type ParseError struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Row     int    `json:"row"` // zero-based data row, -1 when not tied to a row
}

func (e ParseError) Error() string {
	return e.Message
}

// Meta carries what Parse decided about the input.
type Meta struct {
	Delimiter string `json:"delimiter"`
	Linebreak string `json:"linebreak"`
}

// Result is the outcome of Parse. Data is populated even when Errors is not
// empty.
type Result struct {
	Data   [][]string
	Errors []ParseError
	Meta   Meta
}

// Parse tokenizes input according to cfg.
func Parse(input string, cfg ReadConfig) Result {
	quote := string(orDefault(cfg.QuoteChar, '"'))
	escape := string(orDefault(cfg.EscapeChar, orDefault(cfg.QuoteChar, '"')))

	var res Result

	newline := cfg.Newline
	if newline == "" {
		newline = GuessLinebreak(input, quote)
	}
	res.Meta.Linebreak = newline

	delim := cfg.Delimiter
	if delim == "" {
		guessed, ok := guessDelimiter(input, newline, quote, escape, cfg.Comments, cfg.SkipEmptyLines)
		if !ok {
			res.Errors = append(res.Errors, ParseError{
				Type:    ErrTypeDelimiter,
				Code:    CodeUndetectableDelimiter,
				Message: "Unable to auto-detect delimiting character; defaulted to '" + DefaultDelimiter + "'",
				Row:     -1,
			})
			guessed = DefaultDelimiter
		}
		delim = guessed
	}
	res.Meta.Delimiter = delim

	t := &tokenizer{
		in:        input,
		delim:     delim,
		newline:   newline,
		quote:     quote,
		escape:    escape,
		comments:  cfg.Comments,
		skipEmpty: cfg.SkipEmptyLines,
	}
	t.run()

	res.Data = t.rows
	res.Errors = append(res.Errors, t.errs...)
	return res
}

// GuessLinebreak returns "\n", "\r\n" or "\r" for input. Quoted text is
// ignored so that line breaks inside fields do not skew the result.
func GuessLinebreak(input, quote string) string {
	if len(input) > guessSampleBytes {
		input = input[:guessSampleBytes]
	}
	input = stripQuoted(input, quote)

	r := strings.Split(input, "\r")
	n := strings.Split(input, "\n")

	nAppearsFirst := len(n) > 1 && len(n[0]) < len(r[0])
	if len(r) == 1 || nAppearsFirst {
		return "\n"
	}

	withN := 0
	for _, seg := range r {
		if strings.HasPrefix(seg, "\n") {
			withN++
		}
	}
	if float64(withN) >= float64(len(r))/2 {
		return "\r\n"
	}
	return "\r"
}

func stripQuoted(s, quote string) string {
	if quote == "" || !strings.Contains(s, quote) {
		return s
	}
	var b strings.Builder
	for {
		open := strings.Index(s, quote)
		if open < 0 {
			b.WriteString(s)
			break
		}
		closing := strings.Index(s[open+len(quote):], quote)
		if closing < 0 {
			b.WriteString(s)
			break
		}
		b.WriteString(s[:open])
		s = s[open+len(quote)+closing+len(quote):]
	}
	return b.String()
}

// guessDelimiter picks the candidate with the most consistent field count.
func guessDelimiter(input, newline, quote, escape, comments string, skipEmpty bool) (string, bool) {
	var (
		best      string
		bestDelta = math.MaxInt
		maxAvg    = -1.0
	)

	for _, delim := range guessableDelimiters {
		t := &tokenizer{
			in:       input,
			delim:    delim,
			newline:  newline,
			quote:    quote,
			escape:   escape,
			comments: comments,
			limit:    guessPreviewRows,
		}
		t.run()

		delta := 0
		sum := 0
		empty := 0
		prev := -1
		for _, row := range t.rows {
			if skipEmpty && isEmptyRow(row) {
				empty++
				continue
			}
			count := len(row)
			sum += count
			if prev < 0 {
				prev = count
				continue
			}
			if count > 0 {
				delta += abs(count - prev)
				prev = count
			}
		}

		avg := 0.0
		if counted := len(t.rows) - empty; counted > 0 {
			avg = float64(sum) / float64(counted)
		}

		if delta <= bestDelta && avg > maxAvg && avg > 1.99 {
			best = delim
			bestDelta = delta
			maxAvg = avg
		}
	}

	return best, best != ""
}

// tokenizer splits input into rows of fields. It never fails; problems are
// collected in errs and tokenizing continues.
type tokenizer struct {
	in        string
	delim     string
	newline   string
	quote     string
	escape    string
	comments  string
	skipEmpty bool
	limit     int // stop after this many rows, 0 for all

	rows   [][]string
	errs   []ParseError
	rowIdx int
}

func (t *tokenizer) run() {
	in := t.in
	if in == "" {
		return
	}

	pos := 0
	var row []string

	for {
		if len(row) == 0 && t.comments != "" && strings.HasPrefix(in[pos:], t.comments) {
			nl := strings.Index(in[pos:], t.newline)
			if nl < 0 {
				return
			}
			pos += nl + len(t.newline)
			continue
		}

		if strings.HasPrefix(in[pos:], t.quote) {
			field, next, end, ok := t.quoted(pos)
			row = append(row, field)
			if !ok {
				t.push(row)
				return
			}
			pos = next
			switch end {
			case endOfInput:
				t.push(row)
				return
			case endOfRow:
				if t.push(row) {
					return
				}
				row = nil
			}
			continue
		}

		rest := in[pos:]
		d := strings.Index(rest, t.delim)
		nl := strings.Index(rest, t.newline)
		switch {
		case d >= 0 && (nl < 0 || d < nl):
			row = append(row, rest[:d])
			pos += d + len(t.delim)
		case nl >= 0:
			row = append(row, rest[:nl])
			pos += nl + len(t.newline)
			if t.push(row) {
				return
			}
			row = nil
		default:
			row = append(row, rest)
			t.push(row)
			return
		}
	}
}

type fieldEnd int

const (
	endOfField fieldEnd = iota
	endOfRow
	endOfInput
)

// quoted reads the quoted field starting at pos. It returns the unescaped
// value, the position after the trailing delimiter or newline, and how the
// field ended. ok is false when the closing quote is missing; the value is
// then the raw remainder of the input.
func (t *tokenizer) quoted(pos int) (value string, next int, end fieldEnd, ok bool) {
	in := t.in
	start := pos + len(t.quote)
	i := start

	var b strings.Builder
	for {
		j := strings.Index(in[i:], t.quote)
		if j < 0 {
			t.errs = append(t.errs, ParseError{
				Type:    ErrTypeQuotes,
				Code:    CodeMissingQuotes,
				Message: "Quoted field unterminated",
				Row:     t.rowIdx,
			})
			return in[pos:], len(in), endOfInput, false
		}
		at := i + j

		if t.escape != t.quote && at-len(t.escape) >= start && in[at-len(t.escape):at] == t.escape {
			b.WriteString(in[i : at-len(t.escape)])
			b.WriteString(t.quote)
			i = at + len(t.quote)
			continue
		}

		if t.escape == t.quote && strings.HasPrefix(in[at+len(t.quote):], t.quote) {
			b.WriteString(in[i:at])
			b.WriteString(t.quote)
			i = at + 2*len(t.quote)
			continue
		}

		b.WriteString(in[i:at])
		after := at + len(t.quote)

		k := after
		for k < len(in) && (in[k] == ' ' || in[k] == '\t') {
			k++
		}

		switch {
		case k == len(in):
			return b.String(), len(in), endOfInput, true
		case strings.HasPrefix(in[k:], t.delim):
			// A delimiter at the very end still opens an empty last field.
			return b.String(), k + len(t.delim), endOfField, true
		case strings.HasPrefix(in[k:], t.newline):
			return b.String(), k + len(t.newline), endOfRow, true
		}

		t.errs = append(t.errs, ParseError{
			Type:    ErrTypeQuotes,
			Code:    CodeInvalidQuotes,
			Message: "Trailing quote on quoted field is malformed",
			Row:     t.rowIdx,
		})
		b.WriteString(t.quote)
		i = after
	}
}

// push appends row and reports whether the row limit has been reached.
func (t *tokenizer) push(row []string) bool {
	t.rowIdx++
	if t.skipEmpty && isEmptyRow(row) {
		return false
	}
	t.rows = append(t.rows, row)
	return t.limit > 0 && len(t.rows) >= t.limit
}

func isEmptyRow(row []string) bool {
	for _, f := range row {
		if f != "" {
			return false
		}
	}
	return true
}

func orDefault(r, def rune) rune {
	if r == 0 {
		return def
	}
	return r
}

func abs(i int) int {
	if i < 0 {
		return -i
	}
	return i
}
