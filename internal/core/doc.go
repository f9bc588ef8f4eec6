// Package core holds the editor panel's domain logic, independent of any
// transport.
//
// # Reading
//
// [ParseCSV] turns document text into rows. Comment lines are kept as rows so
// the grid can show them; [SplitComments] moves leading and trailing comment
// lines out of the table when the session is configured to edit them
// separately. The detected delimiter and line ending are reported so that
// writing preserves them.
//
// # Writing
//
// [DataAsCSV] serializes a [Table] back to text. Comment rows are collapsed to
// a single cell prefixed with the write comment marker, an optional header row
// is emitted first, and the write line ending falls back to the one read from
// the input.
//
// # Session
//
// A [Session] is one open document. HTTP handlers and the host connection
// share it; every method is safe for concurrent use. Messages for the host go
// through a [Poster], normally a *bridge.Bridge.
//
// # Error Handling
//
// Technical errors are mapped to user-facing messages with [MapError]:
//
//   - CSV001-CSV003: content that could not be parsed
//   - HDR001: header row missing when writing headers
//   - BRG001-BRG002: host connection problems
//   - REQ001-REQ004: malformed, oversized, cancelled or timed-out requests
package core
