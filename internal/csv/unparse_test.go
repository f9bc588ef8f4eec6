package csv

import "testing"

func TestUnparse(t *testing.T) {
	tests := []struct {
		name string
		data [][]string
		cfg  WriteConfig
		want string
	}{
		{
			name: "defaults",
			data: [][]string{{"a", "b"}, {"1", "2"}},
			want: "a,b\r\n1,2",
		},
		{
			name: "fields that need quotes",
			data: [][]string{{"x,y", `q"q`, " lead", "trail ", "l1\nl2", ""}},
			want: `"x,y","q""q"," lead","trail ","l1` + "\n" + `l2",`,
		},
		{
			name: "quote all",
			data: [][]string{{"a", ""}},
			cfg:  WriteConfig{QuoteAll: true},
			want: `"a",""`,
		},
		{
			name: "custom delimiter and newline",
			data: [][]string{{"a", "b"}, {"c", "d"}},
			cfg:  WriteConfig{Delimiter: ";", Newline: "\n"},
			want: "a;b\nc;d",
		},
		{
			name: "custom delimiter quotes fields containing it",
			data: [][]string{{"a;b", "a,b"}},
			cfg:  WriteConfig{Delimiter: ";"},
			want: `"a;b";a,b`,
		},
		{
			name: "escape char",
			data: [][]string{{`a"b`}},
			cfg:  WriteConfig{EscapeChar: '\\'},
			want: `"a\"b"`,
		},
		{
			name: "custom quote char",
			data: [][]string{{"it's", "x,y"}},
			cfg:  WriteConfig{QuoteChar: '\''},
			want: `'it''s','x,y'`,
		},
		{
			name: "empty rows kept",
			data: [][]string{{"a"}, {""}, {"b"}},
			want: "a\r\n\r\nb",
		},
		{
			name: "empty rows skipped",
			data: [][]string{{"a"}, {""}, {"b"}},
			cfg:  WriteConfig{SkipEmptyLines: true},
			want: "a\r\nb",
		},
		{
			name: "ragged rows",
			data: [][]string{{"a", "b", "c"}, {"d"}},
			want: "a,b,c\r\nd",
		},
		{
			name: "no rows",
			data: nil,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Unparse(tt.data, tt.cfg); got != tt.want {
				t.Errorf("Unparse() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUnparseThenParse(t *testing.T) {
	data := [][]string{
		{"name", "note"},
		{"a", "has, comma"},
		{"b", "has \"quote\""},
		{"c", "multi\r\nline"},
		{"d", " padded "},
	}

	text := Unparse(data, WriteConfig{Delimiter: "|", Newline: "\r\n"})
	res := Parse(text, ReadConfig{})

	if len(res.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	if res.Meta.Delimiter != "|" {
		t.Errorf("detected delimiter = %q, want %q", res.Meta.Delimiter, "|")
	}
	if res.Meta.Linebreak != "\r\n" {
		t.Errorf("detected linebreak = %q, want %q", res.Meta.Linebreak, "\r\n")
	}
	if len(res.Data) != len(data) {
		t.Fatalf("rows = %d, want %d", len(res.Data), len(data))
	}
	for i := range data {
		for j := range data[i] {
			if res.Data[i][j] != data[i][j] {
				t.Errorf("cell [%d][%d] = %q, want %q", i, j, res.Data[i][j], data[i][j])
			}
		}
	}
}
