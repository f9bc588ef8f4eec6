package core

// SpreadsheetColumnLabel returns the spreadsheet-style name of the zero-based
// column i: A..Z, AA..AZ, BA and so on.
func SpreadsheetColumnLabel(i int) string {
	if i < 0 {
		return ""
	}
	var buf []byte
	for n := i + 1; n > 0; n = (n - 1) / 26 {
		buf = append([]byte{byte('A' + (n-1)%26)}, buf...)
	}
	return string(buf)
}
