package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/poiesic/claimdesk/session"
	"golang.org/x/time/rate"
)

// client is one websocket connection and its search session.
type client struct {
	id      string
	conn    *websocket.Conn
	ctrl    *session.Controller
	limiter *rate.Limiter
	logger  *slog.Logger

	writeMu   sync.Mutex
	closeOnce sync.Once
}

// serve pushes snapshots to the client and applies its frames until the
// connection fails or ctx ends.
func (c *client) serve(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	unsubscribe := c.ctrl.Subscribe(func(snapshot session.Snapshot) {
		c.write(newSnapshotFrame(c.id, snapshot))
	})
	defer unsubscribe()

	// Tell the client who it is before anything else happens
	c.write(newSnapshotFrame(c.id, c.ctrl.Snapshot()))

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("websocket read error", "err", err)
			}
			return
		}

		var frame ClientFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			c.write(newErrorFrame(c.id, fmt.Errorf("%w: %w", ErrUnknownFrame, err)))
			continue
		}

		switch frame.Type {
		case FrameQuery:
			if err := c.limiter.Wait(ctx); err != nil {
				return
			}
			c.ctrl.SetQuery(frame.Query)
		case FrameHide:
			c.ctrl.Hide()
		case FrameShow:
			c.ctrl.Show()
		default:
			c.write(newErrorFrame(c.id, fmt.Errorf("%w: %q", ErrUnknownFrame, frame.Type)))
		}
	}
}

// write sends one frame. gorilla/websocket allows a single concurrent writer.
func (c *client) write(frame ServerFrame) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := c.conn.WriteJSON(frame); err != nil {
		c.logger.Debug("error writing frame", "type", frame.Type, "err", err)
	}
}

func (c *client) close() {
	c.closeOnce.Do(func() {
		c.ctrl.Close()
		c.conn.Close()
	})
}
