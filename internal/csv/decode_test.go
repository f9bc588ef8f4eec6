package csv

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestBOMSkippingReader(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected string
	}{
		{
			name:     "file with BOM",
			input:    append([]byte{0xEF, 0xBB, 0xBF}, []byte("hello,world")...),
			expected: "hello,world",
		},
		{
			name:     "file without BOM",
			input:    []byte("hello,world"),
			expected: "hello,world",
		},
		{
			name:     "empty file",
			input:    []byte{},
			expected: "",
		},
		{
			name:     "only BOM",
			input:    []byte{0xEF, 0xBB, 0xBF},
			expected: "",
		},
		{
			name:     "partial BOM at start",
			input:    []byte{0xEF, 0xBB, 'a', 'b', 'c'},
			expected: string([]byte{0xEF, 0xBB, 'a', 'b', 'c'}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := NewBOMSkippingReader(bytes.NewReader(tt.input))
			result, err := io.ReadAll(reader)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(result) != tt.expected {
				t.Errorf("got %q, want %q", string(result), tt.expected)
			}
		})
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected string
	}{
		{
			name:     "valid ASCII",
			input:    []byte("a,b\n1,2"),
			expected: "a,b\n1,2",
		},
		{
			name:     "valid multibyte",
			input:    []byte("größe,€"),
			expected: "größe,€",
		},
		{
			name:     "invalid byte replaced",
			input:    []byte{'h', 'e', 0x80, 'l', 'o'},
			expected: "he�lo",
		},
		{
			name:     "BOM and invalid byte",
			input:    []byte{0xEF, 0xBB, 0xBF, 'a', 0xFF},
			expected: "a�",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(bytes.NewReader(tt.input))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("Decode() = %q, want %q", got, tt.expected)
			}
			if s := DecodeString(string(tt.input)); s != tt.expected {
				t.Errorf("DecodeString() = %q, want %q", s, tt.expected)
			}
		})
	}
}

func TestReadWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")

	if err := os.WriteFile(path, append([]byte{0xEF, 0xBB, 0xBF}, "a,b\n"...), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	text, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if text != "a,b\n" {
		t.Errorf("ReadFile() = %q, want %q", text, "a,b\n")
	}

	if err := WriteFile(path, "x;y"); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	text, err = ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() after write error = %v", err)
	}
	if text != "x;y" {
		t.Errorf("ReadFile() after write = %q, want %q", text, "x;y")
	}

	if _, err := ReadFile(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Error("ReadFile() on missing file should fail")
	}
}
