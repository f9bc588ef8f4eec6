package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/JonMunkholm/csvedit/internal/bridge"
	"github.com/JonMunkholm/csvedit/internal/logging"
)

// Poster delivers messages to the host. *bridge.Bridge implements it.
type Poster interface {
	PostInformation(ctx context.Context, text string) error
	PostWarning(ctx context.Context, text string) error
	PostError(ctx context.Context, text string) error
	PostCopyToClipboard(ctx context.Context, text string) error
	PostApplyContent(ctx context.Context, csvContent string, saveSourceFile bool) error
}

// SessionConfig holds the options a session starts with.
type SessionConfig struct {
	Read  ReadOptions
	Write WriteOptions

	// SeparateComments edits leading and trailing comment lines as text
	// blocks instead of table rows.
	SeparateComments bool
}

// SessionState is a point-in-time view of a session.
type SessionState struct {
	ID                string       `json:"id"`
	Read              ReadOptions  `json:"readOptions"`
	Write             WriteOptions `json:"writeOptions"`
	NewlineFromInput  string       `json:"newlineFromInput"`
	DetectedDelimiter string       `json:"detectedDelimiter"`
	SeparateComments  bool         `json:"separateComments"`
	CommentsBefore    string       `json:"commentsBefore"`
	CommentsAfter     string       `json:"commentsAfter"`
	Rows              int          `json:"rows"`
	Columns           int          `json:"columns"`
}

// Session is one open document.
type Session struct {
	id     string
	poster Poster

	mu                sync.RWMutex
	read              ReadOptions
	write             WriteOptions
	writeHeader       bool // header flag as configured; HasHeader overrides it
	headerFromRead    bool
	separate          bool
	initialContent    string
	newlineFromInput  string
	detectedDelimiter string
	table             Table
	commentsBefore    string
	commentsAfter     string
}

// NewSession returns an empty session that talks to the host through poster.
func NewSession(poster Poster, cfg SessionConfig) *Session {
	return &Session{
		id:               uuid.NewString(),
		poster:           poster,
		read:             cfg.Read,
		write:            cfg.Write,
		writeHeader:      cfg.Write.Header,
		separate:         cfg.SeparateComments,
		newlineFromInput: "\n",
		table:            Table{DefaultHeaders: true},
	}
}

// ID returns the session's unique id.
func (s *Session) ID() string {
	return s.id
}

// ResetData parses content and replaces the table. When parsing fails the
// previous table is kept, each problem is shown on the host and the error is
// returned.
func (s *Session) ResetData(ctx context.Context, content string) error {
	log := logging.WithFields(ctx, "session_id", s.id)

	s.mu.Lock()
	out, err := ParseCSV(content, s.read)
	if err != nil {
		s.mu.Unlock()

		var pf *ParseFailure
		if errors.As(err, &pf) {
			for _, msg := range pf.Messages {
				s.postError(ctx, msg)
			}
		}
		log.Warn("content rejected", "error", err)
		return err
	}

	s.detectedDelimiter = out.Delimiter
	s.write.Delimiter = out.Delimiter
	s.newlineFromInput = out.Linebreak

	rows := out.Data
	s.commentsBefore, s.commentsAfter = "", ""
	if s.separate {
		var before, after []string
		before, rows, after = SplitComments(rows, s.read.Comments, out.Delimiter)
		s.commentsBefore = strings.Join(before, "\n")
		s.commentsAfter = strings.Join(after, "\n")
	}

	table := TableFromRows(rows)
	s.write.Header = s.writeHeader
	s.headerFromRead = false
	if s.read.HasHeader && len(table.Rows) > 0 {
		table.HeaderRow = table.Rows[0]
		table.Rows = table.Rows[1:]
		table.DefaultHeaders = false
		s.write.Header = true
		s.headerFromRead = true
	}
	s.table = table
	nRows, nCols := len(table.Rows), table.ColumnCount()
	s.mu.Unlock()

	log.Info("content loaded", "rows", nRows, "columns", nCols, "delimiter", out.Delimiter)
	return nil
}

// Reload parses the last content received from the host again, typically
// after the read options changed.
func (s *Session) Reload(ctx context.Context) error {
	s.mu.RLock()
	content := s.initialContent
	s.mu.RUnlock()
	return s.ResetData(ctx, content)
}

// SetInitialContent records content as the document text and loads it.
func (s *Session) SetInitialContent(ctx context.Context, content string) error {
	s.mu.Lock()
	s.initialContent = content
	s.mu.Unlock()
	return s.ResetData(ctx, content)
}

// Data returns a copy of the table rows.
func (s *Session) Data() [][]*string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.table.Clone().Rows
}

// Table returns a copy of the table.
func (s *Session) Table() Table {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.table.Clone()
}

// FirstRow returns a copy of the first row, or an empty row when the table
// has none.
func (s *Session) FirstRow() []*string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.table.Rows) == 0 {
		return []*string{}
	}
	return cloneRow(s.table.Rows[0])
}

// SetData replaces the table rows with what the grid holds.
func (s *Session) SetData(rows [][]*string) {
	t := Table{Rows: rows}.Clone()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.table.Rows = t.Rows
}

// SetHeaderRow sets the header row. A nil row switches back to default
// headers.
func (s *Session) SetHeaderRow(row []*string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.table.HeaderRow = cloneRow(row)
	s.table.DefaultHeaders = row == nil
}

// SetComments replaces the comment blocks. Lines are separated by "\n".
func (s *Session) SetComments(before, after string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commentsBefore = before
	s.commentsAfter = after
}

// ReadOptions returns the current read options.
func (s *Session) ReadOptions() ReadOptions {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read
}

// SetReadOptions replaces the read options. The table is not re-parsed; call
// Reload for that.
func (s *Session) SetReadOptions(o ReadOptions) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.read = o
}

// WriteOptions returns the current write options.
func (s *Session) WriteOptions() WriteOptions {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.write
}

// SetWriteOptions replaces the write options. An empty delimiter writes with
// the delimiter detected in the content. While the header row comes from the
// content, o.Header does not change the header setting restored by the next
// parse without one.
func (s *Session) SetWriteOptions(o WriteOptions) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.write = o
	if !s.headerFromRead {
		s.writeHeader = o.Header
	}
}

// CSV serializes the table with the current options, including the comment
// blocks when they are edited separately.
func (s *Session) CSV() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	write := s.write
	if write.Delimiter == "" {
		write.Delimiter = s.detectedDelimiter
	}

	body, err := DataAsCSV(s.table, s.read, write, s.newlineFromInput)
	if err != nil {
		return "", err
	}
	if !s.separate {
		return body, nil
	}

	newline := write.Newline
	if newline == "" {
		newline = s.newlineFromInput
	}
	return ComposeWithComments(s.commentsBefore, body, s.commentsAfter, write.Comments, newline), nil
}

// ApplyContent sends the serialized table to the host, asking it to save the
// file when saveSourceFile is set.
func (s *Session) ApplyContent(ctx context.Context, saveSourceFile bool) error {
	content, err := s.CSV()
	if err != nil {
		s.postError(ctx, err.Error())
		return fmt.Errorf("apply content: %w", err)
	}
	return s.poster.PostApplyContent(ctx, content, saveSourceFile)
}

// CopyToClipboard asks the host to copy text.
func (s *Session) CopyToClipboard(ctx context.Context, text string) error {
	return s.poster.PostCopyToClipboard(ctx, text)
}

// Notify shows text on the host with the given severity.
func (s *Session) Notify(ctx context.Context, level bridge.MsgBoxType, text string) error {
	switch level {
	case bridge.MsgBoxInfo:
		return s.poster.PostInformation(ctx, text)
	case bridge.MsgBoxWarn:
		return s.poster.PostWarning(ctx, text)
	case bridge.MsgBoxError:
		return s.poster.PostError(ctx, text)
	default:
		return fmt.Errorf("unknown message box type %q", level)
	}
}

// HandleHostMessage implements bridge.Handler.
func (s *Session) HandleHostMessage(ctx context.Context, msg bridge.Inbound) error {
	switch msg.Command {
	case bridge.CommandCSVUpdate:
		return s.SetInitialContent(ctx, msg.CSVContent)
	case bridge.CommandApplyPress:
		return s.ApplyContent(ctx, false)
	case bridge.CommandApplyAndSavePress:
		return s.ApplyContent(ctx, true)
	default:
		s.postError(ctx, "received unknown message from host")
		return fmt.Errorf("%w: %q", bridge.ErrUnknownCommand, msg.Command)
	}
}

// Snapshot returns the session's current state without the table cells.
func (s *Session) Snapshot() SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return SessionState{
		ID:                s.id,
		Read:              s.read,
		Write:             s.write,
		NewlineFromInput:  s.newlineFromInput,
		DetectedDelimiter: s.detectedDelimiter,
		SeparateComments:  s.separate,
		CommentsBefore:    s.commentsBefore,
		CommentsAfter:     s.commentsAfter,
		Rows:              len(s.table.Rows),
		Columns:           s.table.ColumnCount(),
	}
}

// postError must not be called with s.mu held: a ChannelHost send blocks
// until the host reads.
func (s *Session) postError(ctx context.Context, text string) {
	if err := s.poster.PostError(ctx, text); err != nil {
		logging.WithFields(ctx, "session_id", s.id).Warn("post error to host failed", "error", err)
	}
}
