package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/csvedit/internal/logging"
)

// DefaultPingInterval is how often Serve pings an idle host.
const DefaultPingInterval = 30 * time.Second

// Conn is a Host that writes JSON messages to a websocket.
type Conn struct {
	ws *websocket.Conn
}

// NewConn wraps an accepted or dialed websocket.
func NewConn(ws *websocket.Conn) *Conn {
	return &Conn{ws: ws}
}

// Send writes msg as a JSON text frame. Writes may be called concurrently.
func (c *Conn) Send(ctx context.Context, msg Outbound) error {
	if err := wsjson.Write(ctx, c.ws, msg); err != nil {
		return fmt.Errorf("send %s: %w", msg.HostCommand(), err)
	}
	return nil
}

// ServeOptions tunes Serve.
type ServeOptions struct {
	PingInterval time.Duration
}

// Serve attaches ws to b as the current host and dispatches inbound messages
// to h until the host disconnects or ctx is done. A clean close from the host
// returns nil.
func Serve(ctx context.Context, ws *websocket.Conn, b *Bridge, h Handler, opts ServeOptions) error {
	if opts.PingInterval <= 0 {
		opts.PingInterval = DefaultPingInterval
	}

	conn := NewConn(ws)
	b.Attach(conn)
	defer b.Detach(conn)

	logging.FromContext(ctx).Info("host attached")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return conn.readLoop(gctx, h)
	})
	g.Go(func() error {
		return conn.keepalive(gctx, opts.PingInterval)
	})

	err := g.Wait()
	ws.Close(websocket.StatusNormalClosure, "")

	if errors.Is(err, ErrHostClosed) {
		logging.FromContext(ctx).Info("host detached")
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

func (c *Conn) readLoop(ctx context.Context, h Handler) error {
	for {
		typ, data, err := c.ws.Read(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return ErrHostClosed
			}
			return fmt.Errorf("read host message: %w", err)
		}

		if typ != websocket.MessageText {
			logging.FromContext(ctx).Warn("ignoring binary host message", "bytes", len(data))
			continue
		}

		var msg Inbound
		if err := json.Unmarshal(data, &msg); err != nil {
			logging.FromContext(ctx).Warn("ignoring malformed host message", "error", err)
			continue
		}

		if err := h.HandleHostMessage(ctx, msg); err != nil {
			logging.FromContext(ctx).Warn("host message failed", "command", msg.Command, "error", err)
		}
	}
}

func (c *Conn) keepalive(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, interval)
			err := c.ws.Ping(pingCtx)
			cancel()
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("ping host: %w", err)
			}
		}
	}
}
