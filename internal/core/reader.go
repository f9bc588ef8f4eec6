package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/csvedit/internal/csv"
)

// DefaultContentIfEmpty replaces empty documents so the grid always has a
// column to show.
const DefaultContentIfEmpty = "column 1\n"

// ErrParse is wrapped by every ParseCSV failure.
var ErrParse = errors.New("csv parse failed")

// ParseFailure lists the problems that made ParseCSV give up, one message per
// tokenizer error.
type ParseFailure struct {
	Messages []string
}

func (f *ParseFailure) Error() string {
	return fmt.Sprintf("%s: %s", ErrParse, strings.Join(f.Messages, "; "))
}

func (f *ParseFailure) Unwrap() error {
	return ErrParse
}

// ParseOutcome is a successful parse.
type ParseOutcome struct {
	Data      [][]string `json:"data"`
	Delimiter string     `json:"delimiter"`
	Linebreak string     `json:"linebreak"`
}

// ParseCSV parses content with opts. Comment lines are returned as ordinary
// rows. A failed delimiter detection on its own is not an error: the comma is
// used. Any other tokenizer error fails the parse with a *ParseFailure.
func ParseCSV(content string, opts ReadOptions) (*ParseOutcome, error) {
	if content == "" {
		content = DefaultContentIfEmpty
	}

	res := csv.Parse(content, opts.parseConfig())

	var msgs []string
	for _, e := range res.Errors {
		if e.Type == csv.ErrTypeDelimiter && e.Code == csv.CodeUndetectableDelimiter {
			continue
		}
		if e.Row != 0 {
			msgs = append(msgs, fmt.Sprintf("%s on line %d", e.Message, e.Row))
			continue
		}
		msgs = append(msgs, e.Message)
	}
	if len(msgs) > 0 {
		return nil, &ParseFailure{Messages: msgs}
	}

	return &ParseOutcome{
		Data:      res.Data,
		Delimiter: res.Meta.Delimiter,
		Linebreak: res.Meta.Linebreak,
	}, nil
}

// IsCommentRow reports whether row starts with marker once leading and
// trailing whitespace of its first cell is ignored. An empty marker matches
// nothing.
func IsCommentRow(row []string, marker string) bool {
	if marker == "" || len(row) == 0 {
		return false
	}
	return strings.HasPrefix(strings.TrimSpace(row[0]), marker)
}

// SplitComments separates comment rows from data rows. Comment rows before the
// first data row form before; every later comment row, including ones between
// data rows, forms after. Each comment row is rejoined with delimiter and
// returned without its marker.
func SplitComments(rows [][]string, marker, delimiter string) (before []string, data [][]string, after []string) {
	if marker == "" {
		return nil, rows, nil
	}

	seenData := false
	for _, row := range rows {
		if !IsCommentRow(row, marker) {
			seenData = true
			data = append(data, row)
			continue
		}

		text := commentText(row, marker, delimiter)
		if seenData {
			after = append(after, text)
		} else {
			before = append(before, text)
		}
	}
	return before, data, after
}

func commentText(row []string, marker, delimiter string) string {
	cells := make([]string, len(row))
	copy(cells, row)
	cells[0] = strings.TrimPrefix(strings.TrimSpace(cells[0]), marker)

	end := len(cells)
	for end > 1 && cells[end-1] == "" {
		end--
	}
	return strings.Join(cells[:end], delimiter)
}
