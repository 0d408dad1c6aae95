package ws

import (
	"context"
	crand "crypto/rand"
	"encoding/hex"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"nhooyr.io/websocket"

	"example.com/battlegrid/internal/match"
)

func randID() string {
	b := make([]byte, 8)
	_, _ = crand.Read(b)
	return hex.EncodeToString(b)
}

// Client is one websocket connection. It implements match.Peer.
type Client struct {
	id    string
	conn  *websocket.Conn
	codec codec
	log   *zap.Logger

	mu     sync.Mutex
	send   chan []byte
	closed bool

	// owned by the read loop
	match  *match.Match
	player string
}

func newClient(conn *websocket.Conn, c codec, buffer int, log *zap.Logger) *Client {
	id := randID()
	return &Client{
		id:    id,
		conn:  conn,
		codec: c,
		log:   log.With(zap.String("client", id)),
		send:  make(chan []byte, buffer),
	}
}

func (c *Client) SendState(s match.Snapshot) { c.sendMsg(Msg{T: TypeStateUpdate, M: s}) }
func (c *Client) SendEvent(e match.Event)    { c.sendMsg(Msg{T: TypeEvent, M: e}) }

func (c *Client) sendError(err error) {
	c.sendMsg(Msg{T: TypeError, M: ErrorMessage{Message: err.Error()}})
}

// sendMsg queues msg without blocking; a full queue drops it.
func (c *Client) sendMsg(msg Msg) {
	b, err := c.codec.Marshal(msg)
	if err != nil {
		c.log.Error("encode message", zap.String("type", msg.T), zap.Error(err))
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- b:
	default:
		c.log.Warn("send queue full, dropping message", zap.String("type", msg.T))
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// writeLoop drains the send queue and keeps the connection alive with pings.
func (c *Client) writeLoop(ctx context.Context, pingEvery time.Duration) {
	ping := time.NewTicker(pingEvery)
	defer func() {
		ping.Stop()
		_ = c.conn.Close(websocket.StatusNormalClosure, "bye")
	}()
	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.Write(ctx, c.codec.MessageType(), msg); err != nil {
				if !errors.Is(err, context.Canceled) {
					c.log.Debug("write failed", zap.Error(err))
				}
				return
			}
		case <-ping.C:
			if err := c.conn.Ping(ctx); err != nil {
				c.log.Debug("ping failed", zap.Error(err))
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
