package bridge

import (
	"context"
	"fmt"

	"github.com/JonMunkholm/csvedit/internal/logging"
)

// ChannelHost is an in-process Host backed by a channel. It is used when the
// host runs in the same process and in tests.
type ChannelHost struct {
	out chan Outbound
}

// NewChannelHost returns a host whose outbox holds up to buffer messages.
func NewChannelHost(buffer int) *ChannelHost {
	return &ChannelHost{out: make(chan Outbound, buffer)}
}

// Send queues msg, blocking while the outbox is full.
func (c *ChannelHost) Send(ctx context.Context, msg Outbound) error {
	select {
	case c.out <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Messages returns the outbox.
func (c *ChannelHost) Messages() <-chan Outbound {
	return c.out
}

// Dispatch feeds messages from in to h until in is closed or ctx is done.
// Handler errors are logged and do not stop dispatching.
func Dispatch(ctx context.Context, h Handler, in <-chan Inbound) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-in:
			if !ok {
				return nil
			}
			if err := h.HandleHostMessage(ctx, msg); err != nil {
				logging.FromContext(ctx).Warn("host message failed", "command", msg.Command, "error", err)
			}
		}
	}
}

// Expect reads the next message from the outbox and checks its command.
func (c *ChannelHost) Expect(ctx context.Context, command string) (Outbound, error) {
	select {
	case msg := <-c.out:
		if msg.HostCommand() != command {
			return msg, fmt.Errorf("got command %q, want %q", msg.HostCommand(), command)
		}
		return msg, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
