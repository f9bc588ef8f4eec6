//go:build property

package csv

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestRoundTripProperties checks that serialized tables parse back unchanged
// when delimiter and newline are fixed.
func TestRoundTripProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(1357)
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	cell := gen.OneGenOf(
		gen.AlphaString(),
		gen.OneConstOf("", ",", `"`, `""`, " x", "x ", "a\nb", "a\r\nb", "\r", "é,ü"),
	)
	row := gen.SliceOfN(3, cell)

	for _, quoteAll := range []bool{false, true} {
		quoteAll := quoteAll
		name := "unparse then parse is identity"
		if quoteAll {
			name += " with quote all"
		}

		properties.Property(name, prop.ForAll(
			func(rows [][]string) bool {
				if len(rows) == 1 && isEmptyRow(rows[0]) && len(rows[0]) == 1 {
					return true
				}

				text := Unparse(rows, WriteConfig{Delimiter: ",", Newline: "\r\n", QuoteAll: quoteAll})
				res := Parse(text, ReadConfig{Delimiter: ",", Newline: "\r\n"})
				if len(res.Errors) != 0 || len(res.Data) != len(rows) {
					return false
				}
				for i := range rows {
					if len(res.Data[i]) != len(rows[i]) {
						return false
					}
					for j := range rows[i] {
						if res.Data[i][j] != rows[i][j] {
							return false
						}
					}
				}
				return true
			},
			gen.SliceOf(row),
		))
	}

	properties.Property("detected delimiter matches the written one", prop.ForAll(
		func(delim string, rows int) bool {
			data := make([][]string, rows)
			for i := range data {
				data[i] = []string{"a", "b", "c"}
			}
			res := Parse(Unparse(data, WriteConfig{Delimiter: delim}), ReadConfig{})
			return res.Meta.Delimiter == delim && len(res.Errors) == 0
		},
		gen.OneConstOf(",", "\t", "|", ";"),
		gen.IntRange(1, 20),
	))

	properties.TestingRun(t)
}
