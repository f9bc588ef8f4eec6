package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/csvedit/internal/core"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestConvert(t *testing.T) {
	in := writeTemp(t, "in.csv", "a;b;c\n1;2;3\n")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "keeps detected format",
			args: []string{"convert", in},
			want: "a;b;c\n1;2;3\n",
		},
		{
			name: "new delimiter and newline",
			args: []string{"convert", in, "--write-delimiter", ",", "--newline", "crlf"},
			want: "a,b,c\r\n1,2,3\r\n",
		},
		{
			name: "quote all",
			args: []string{"convert", in, "--quote-all"},
			want: "\"a\";\"b\";\"c\"\n\"1\";\"2\";\"3\"\n\"\"",
		},
		{
			name: "header row is kept",
			args: []string{"convert", in, "--has-header", "--write-delimiter", "|"},
			want: "a|b|c\n1|2|3\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := execute(t, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConvert_CommentsAndSettings(t *testing.T) {
	in := writeTemp(t, "in.csv", "# title\na,b\n1,2")
	settings := writeTemp(t, "settings.json", `{"csv-edit": {"writeOption_comment": "//", "writeOption_delimiter": ";"}}`)

	got, err := execute(t, "convert", in, "--settings", settings, "--write-delimiter", ";")
	require.NoError(t, err)
	assert.Contains(t, got, "// title\na;b\n1;2")
	assert.Contains(t, got, "Could not find option: quoteAllFields in csv-edit configuration")
}

func TestConvert_OutputFile(t *testing.T) {
	in := writeTemp(t, "in.csv", "\ufeffx,y\n1,2")
	out := filepath.Join(t.TempDir(), "out.csv")

	_, err := execute(t, "convert", in, "-o", out)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "x,y\n1,2", string(data))
}

func TestConvert_Errors(t *testing.T) {
	bad := writeTemp(t, "bad.csv", "a,b\n\"c,d\n")

	_, err := execute(t, "convert", bad)
	assert.ErrorIs(t, err, core.ErrParse)

	_, err = execute(t, "convert", bad, "--newline", "nel")
	assert.ErrorContains(t, err, "unknown newline")

	_, err = execute(t, "convert", filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)

	_, err = execute(t, "convert")
	assert.Error(t, err)
}
