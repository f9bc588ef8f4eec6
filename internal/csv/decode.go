package csv

// decode.go normalizes text before it reaches the tokenizer:
//
//   - the UTF-8 BOM (0xEF 0xBB 0xBF) written by Windows tools is dropped
//   - invalid UTF-8 bytes are replaced with U+FFFD
//
// Whole documents are read into memory; the editor works on complete files.

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Decode reads r completely and returns its text without a leading BOM and
// with invalid UTF-8 replaced.
func Decode(r io.Reader) (string, error) {
	data, err := io.ReadAll(NewBOMSkippingReader(r))
	if err != nil {
		return "", fmt.Errorf("decode csv: %w", err)
	}
	return string(sanitizeUTF8(data)), nil
}

// DecodeString is Decode for text already in memory.
func DecodeString(s string) string {
	data := bytes.TrimPrefix([]byte(s), utf8BOM)
	return string(sanitizeUTF8(data))
}

// BOMSkippingReader wraps an io.Reader and skips the UTF-8 BOM if present.
type BOMSkippingReader struct {
	br      *bufio.Reader
	checked bool
}

// NewBOMSkippingReader creates a new BOM-skipping reader.
func NewBOMSkippingReader(r io.Reader) *BOMSkippingReader {
	return &BOMSkippingReader{br: bufio.NewReader(r)}
}

// Read implements io.Reader. The first call discards a leading BOM.
func (r *BOMSkippingReader) Read(p []byte) (int, error) {
	if !r.checked {
		r.checked = true
		head, err := r.br.Peek(len(utf8BOM))
		if err != nil && err != io.EOF {
			return 0, err
		}
		if bytes.Equal(head, utf8BOM) {
			if _, err := r.br.Discard(len(utf8BOM)); err != nil {
				return 0, err
			}
		}
	}
	return r.br.Read(p)
}

func sanitizeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}

	var buf bytes.Buffer
	buf.Grow(len(data))

	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			buf.WriteRune(utf8.RuneError)
		} else {
			buf.Write(data[:size])
		}
		data = data[size:]
	}

	return buf.Bytes()
}

// ReadFile returns the decoded contents of the file at path.
func ReadFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	text, err := Decode(f)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return text, nil
}

// WriteFile writes text to path, replacing any existing file.
func WriteFile(path, text string) error {
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
