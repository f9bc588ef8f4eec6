package bridge

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/JonMunkholm/csvedit/internal/logging"
)

var (
	// ErrUnknownCommand is returned by handlers for inbound commands they do
	// not understand.
	ErrUnknownCommand = errors.New("unknown host command")

	// ErrHostClosed reports that the host side of a transport went away.
	ErrHostClosed = errors.New("host connection closed")
)

// Host is a transport able to deliver messages to the host process.
type Host interface {
	Send(ctx context.Context, msg Outbound) error
}

// Handler consumes messages received from the host.
type Handler interface {
	HandleHostMessage(ctx context.Context, msg Inbound) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, msg Inbound) error

func (f HandlerFunc) HandleHostMessage(ctx context.Context, msg Inbound) error {
	return f(ctx, msg)
}

// Bridge is the panel's view of the host. At most one host is attached at a
// time; while none is attached every post is logged and dropped, which lets
// the panel run stand-alone in a browser.
type Bridge struct {
	mu   sync.RWMutex
	host Host
}

// New returns a bridge with no host attached.
func New() *Bridge {
	return &Bridge{}
}

// Attach makes h the current host, replacing any previous one.
func (b *Bridge) Attach(h Host) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.host = h
}

// Detach removes h if it is still the current host.
func (b *Bridge) Detach(h Host) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.host == h {
		b.host = nil
	}
}

// Connected reports whether a host is attached.
func (b *Bridge) Connected() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.host != nil
}

// PostInformation shows text in an info message box.
func (b *Bridge) PostInformation(ctx context.Context, text string) error {
	return b.post(ctx, "postInformation", NewMsgBox(MsgBoxInfo, text))
}

// PostWarning shows text in a warning message box.
func (b *Bridge) PostWarning(ctx context.Context, text string) error {
	return b.post(ctx, "postWarning", NewMsgBox(MsgBoxWarn, text))
}

// PostError shows text in an error message box.
func (b *Bridge) PostError(ctx context.Context, text string) error {
	return b.post(ctx, "postError", NewMsgBox(MsgBoxError, text))
}

// PostCopyToClipboard asks the host to copy text.
func (b *Bridge) PostCopyToClipboard(ctx context.Context, text string) error {
	return b.post(ctx, "postCopyToClipboard", NewCopyToClipboard(text))
}

// PostApplyContent sends the serialized table to the host, which replaces
// the document content and saves the file when saveSourceFile is set.
func (b *Bridge) PostApplyContent(ctx context.Context, csvContent string, saveSourceFile bool) error {
	return b.post(ctx, "postApplyContent", NewApply(csvContent, saveSourceFile))
}

func (b *Bridge) post(ctx context.Context, op string, msg Outbound) error {
	b.mu.RLock()
	host := b.host
	b.mu.RUnlock()

	if host == nil {
		logging.FromContext(ctx).Info(op+" (no host attached)", "command", msg.HostCommand())
		return nil
	}

	if err := host.Send(ctx, msg); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
