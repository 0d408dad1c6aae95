package ws

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"nhooyr.io/websocket"

	"example.com/battlegrid/internal/game"
	"example.com/battlegrid/internal/match"
)

// FleetPlanner suggests a complete, valid fleet layout.
type FleetPlanner interface {
	Plan(ctx context.Context) ([]game.Ship, error)
}

type Config struct {
	AllowOrigins []string
	PingInterval time.Duration
	SendBuffer   int
	Planner      FleetPlanner
	Logger       *zap.Logger
}

// Hub accepts websocket connections and routes player actions to matches.
type Hub struct {
	allowOrigins map[string]bool
	registry     *match.Registry
	planner      FleetPlanner
	pingEvery    time.Duration
	sendBuffer   int
	log          *zap.Logger

	mu      sync.RWMutex
	clients map[*Client]struct{}
}

func NewHub(registry *match.Registry, cfg Config) *Hub {
	m := map[string]bool{}
	for _, a := range cfg.AllowOrigins {
		if a != "" {
			m[a] = true
		}
	}
	h := &Hub{
		allowOrigins: m,
		registry:     registry,
		planner:      cfg.Planner,
		pingEvery:    cfg.PingInterval,
		sendBuffer:   cfg.SendBuffer,
		log:          cfg.Logger,
		clients:      map[*Client]struct{}{},
	}
	if h.pingEvery <= 0 {
		h.pingEvery = 15 * time.Second
	}
	if h.sendBuffer <= 0 {
		h.sendBuffer = 64
	}
	if h.log == nil {
		h.log = zap.NewNop()
	}
	return h
}

// Connected reports the number of open connections.
func (h *Hub) Connected() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	origin := r.Header.Get("Origin")
	if origin != "" && !h.allowOrigins[origin] {
		http.Error(w, "forbidden origin", http.StatusForbidden)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		h.log.Debug("websocket accept failed", zap.Error(err))
		return
	}

	ctx := r.Context()
	client := newClient(conn, codecFor(r.URL.Query().Get("codec")), h.sendBuffer, h.log)

	h.mu.Lock()
	h.clients[client] = struct{}{}
	h.mu.Unlock()
	client.log.Info("client connected", zap.String("codec", client.codec.Name()))

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		client.writeLoop(ctx, h.pingEvery)
	}()

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			break
		}
		var in Inbound
		if err := client.codec.Unmarshal(data, &in); err != nil {
			client.log.Debug("discarding malformed frame", zap.Error(err))
			continue
		}
		h.dispatch(ctx, client, in)
	}

	h.leave(client)
	h.mu.Lock()
	delete(h.clients, client)
	h.mu.Unlock()
	client.close()
	<-writerDone

	client.log.Info("client disconnected")
}

func (h *Hub) dispatch(ctx context.Context, c *Client, in Inbound) {
	switch in.T {
	case TypeJoinMatch:
		h.join(c, in.Match, in.Player)

	case TypePlaceShips:
		if !h.seated(c) {
			return
		}
		if err := c.match.SubmitFleet(c.player, in.Ships); err != nil {
			c.sendError(err)
		}

	case TypeFireShot:
		if in.Target == nil || !h.seated(c) {
			return
		}
		if err := c.match.FireShot(c.player, *in.Target); err != nil {
			c.sendError(err)
		}

	case TypeSuggestFleet:
		if h.planner == nil {
			return
		}
		ships, err := h.planner.Plan(ctx)
		if err != nil {
			c.log.Warn("fleet planner failed", zap.Error(err))
			c.sendError(errors.New("fleet suggestion unavailable"))
			return
		}
		c.sendMsg(Msg{T: TypeFleetSuggestion, M: FleetSuggestion{Ships: ships}})

	case TypePong:
		// ignore

	default:
		c.log.Debug("unknown message type", zap.String("type", in.T))
	}
}

// join attaches c to a match. The previous binding is released only once the
// new one succeeds, so a rejected join leaves c where it was.
func (h *Hub) join(c *Client, code, requestedID string) {
	m, err := h.registry.Get(code)
	if err != nil {
		c.sendError(err)
		return
	}
	if c.match == m && c.player != "" && (requestedID == "" || requestedID == c.player) {
		requestedID = c.player
	}

	id, err := m.AttachPlayer(c, requestedID)
	if err != nil {
		c.sendError(err)
		return
	}
	if c.match != nil && (c.match != m || c.player != id) {
		h.leave(c)
	}
	c.match, c.player = m, id
	c.log.Info("client bound", zap.String("match", m.ID()), zap.String("player", id))
	c.sendMsg(Msg{T: TypeJoined, M: Joined{Match: m.ID(), Player: id}})
}

// seated reports whether c still holds its seat. A connection whose player
// reconnected elsewhere loses its binding here.
func (h *Hub) seated(c *Client) bool {
	if c.match == nil {
		return false
	}
	if !c.match.Bound(c.player, c) {
		c.log.Info("binding superseded", zap.String("match", c.match.ID()), zap.String("player", c.player))
		c.match, c.player = nil, ""
		return false
	}
	return true
}

func (h *Hub) leave(c *Client) {
	if c.match != nil {
		c.match.Detach(c.player, c)
		c.match, c.player = nil, ""
	}
}
