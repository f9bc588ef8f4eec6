package core

import (
	"errors"
	"strings"

	"github.com/JonMunkholm/csvedit/internal/csv"
)

// ErrNoHeaderRow is returned when headers are written but the table has none.
var ErrNoHeaderRow = errors.New("header row was null")

// Table is the grid's content. A nil cell is a cell the grid never filled,
// such as one in a freshly inserted row.
type Table struct {
	Rows           [][]*string `json:"rows"`
	HeaderRow      []*string   `json:"headerRow"`
	DefaultHeaders bool        `json:"defaultHeaders"`
}

// TableFromRows builds a table with default headers from parsed rows.
func TableFromRows(rows [][]string) Table {
	t := Table{Rows: make([][]*string, len(rows)), DefaultHeaders: true}
	for i, row := range rows {
		t.Rows[i] = cellsOf(row)
	}
	return t
}

func cellsOf(row []string) []*string {
	if row == nil {
		return nil
	}
	cells := make([]*string, len(row))
	for i := range row {
		v := row[i]
		cells[i] = &v
	}
	return cells
}

func stringsOf(cells []*string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		if c != nil {
			out[i] = *c
		}
	}
	return out
}

// ColumnCount returns the width of the widest row or of the header row.
func (t Table) ColumnCount() int {
	n := len(t.HeaderRow)
	for _, row := range t.Rows {
		if len(row) > n {
			n = len(row)
		}
	}
	return n
}

// Clone returns a deep copy.
func (t Table) Clone() Table {
	out := Table{DefaultHeaders: t.DefaultHeaders, HeaderRow: cloneRow(t.HeaderRow)}
	if t.Rows != nil {
		out.Rows = make([][]*string, len(t.Rows))
		for i, row := range t.Rows {
			out.Rows[i] = cloneRow(row)
		}
	}
	return out
}

func cloneRow(row []*string) []*string {
	if row == nil {
		return nil
	}
	out := make([]*string, len(row))
	for i, c := range row {
		if c != nil {
			v := *c
			out[i] = &v
		}
	}
	return out
}

// DataAsCSV serializes t. An empty write newline falls back to
// newlineFromInput. When both comment markers are set, rows whose first cell
// starts with the read marker are written as one cell carrying the write
// marker and the remaining cells joined by spaces.
func DataAsCSV(t Table, read ReadOptions, write WriteOptions, newlineFromInput string) (string, error) {
	newline := write.Newline
	if newline == "" {
		newline = newlineFromInput
	}

	data := make([][]string, 0, len(t.Rows)+1)

	if write.Header {
		if t.DefaultHeaders {
			n := t.ColumnCount()
			header := make([]string, n)
			for i := range header {
				header[i] = SpreadsheetColumnLabel(i)
			}
			data = append(data, header)
		} else {
			if t.HeaderRow == nil {
				return "", ErrNoHeaderRow
			}
			data = append(data, stringsOf(t.HeaderRow))
		}
	}

	commentsOn := read.Comments != "" && write.Comments != ""

	for _, row := range t.Rows {
		if len(row) == 0 || row[0] == nil || !commentsOn ||
			!strings.HasPrefix(strings.TrimSpace(*row[0]), read.Comments) {
			data = append(data, stringsOf(row))
			continue
		}

		cells := stringsOf(compressCommentRow(row))
		cells[0] = strings.TrimPrefix(strings.TrimSpace(cells[0]), read.Comments)
		data = append(data, []string{write.Comments + strings.Join(cells, " ")})
	}

	return csv.Unparse(data, write.unparseConfig(newline)), nil
}

// compressCommentRow drops trailing empty cells. The first cell is always
// kept.
func compressCommentRow(row []*string) []*string {
	end := len(row)
	for end > 1 {
		c := row[end-1]
		if c != nil && *c != "" {
			break
		}
		end--
	}
	return row[:end]
}

// ComposeWithComments surrounds body with the comment blocks before and after.
// Each line of a block is written as marker followed by the line. With an
// empty marker the blocks are dropped.
func ComposeWithComments(before, body, after, marker, newline string) string {
	if marker == "" {
		return body
	}

	var parts []string
	if lines := commentLines(before, marker, newline); lines != "" {
		parts = append(parts, lines)
	}
	if body != "" {
		parts = append(parts, body)
	}

	var b strings.Builder
	b.WriteString(strings.Join(parts, newline))

	if lines := commentLines(after, marker, newline); lines != "" {
		if b.Len() > 0 && !strings.HasSuffix(b.String(), newline) {
			b.WriteString(newline)
		}
		b.WriteString(lines)
	}
	return b.String()
}

func commentLines(block, marker, newline string) string {
	if block == "" {
		return ""
	}
	block = strings.ReplaceAll(block, "\r\n", "\n")
	lines := strings.Split(block, "\n")
	for i, l := range lines {
		lines[i] = marker + l
	}
	return strings.Join(lines, newline)
}
