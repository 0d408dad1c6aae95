package match

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"example.com/battlegrid/internal/game"
)

const maxPlayers = 2

// Match owns the state of one game. All exported methods serialize on the
// match lock, so a Match may be driven from any number of connection handlers.
type Match struct {
	mu sync.Mutex

	id     string
	phase  Phase
	order  []string // join order
	boards map[string]*game.Board
	peers  map[string]Peer
	turn   string
	winner string

	log   *zap.Logger
	newID func() string
}

type Option func(*Match)

// WithLogger sets the logger used for lifecycle and rejection logs.
func WithLogger(l *zap.Logger) Option {
	return func(m *Match) {
		if l != nil {
			m.log = l
		}
	}
}

// WithIDGenerator replaces the generator used for fresh player ids.
func WithIDGenerator(gen func() string) Option {
	return func(m *Match) {
		if gen != nil {
			m.newID = gen
		}
	}
}

func New(id string, opts ...Option) *Match {
	m := &Match{
		id:     id,
		phase:  PhaseLobby,
		boards: map[string]*game.Board{},
		peers:  map[string]Peer{},
		log:    zap.NewNop(),
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.log = m.log.With(zap.String("match", id))
	return m
}

func (m *Match) ID() string { return m.id }

func (m *Match) Phase() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase
}

// AttachPlayer binds peer to the match. A requestedID naming a current
// participant is a reconnect: the peer is rebound and sent a fresh snapshot.
// Anything else is a join and returns the new player's id. The player id is
// the only credential; whoever presents it controls that seat.
func (m *Match) AttachPlayer(peer Peer, requestedID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.boards[requestedID]; ok && requestedID != "" {
		m.peers[requestedID] = peer
		m.log.Info("player reconnected", zap.String("player", requestedID))
		m.sendStateLocked(requestedID)
		return requestedID, nil
	}

	if len(m.order) >= maxPlayers {
		m.log.Debug("join rejected", zap.Error(ErrCapacity))
		return "", ErrCapacity
	}

	id := requestedID
	if id == "" {
		id = m.newID()
	}
	m.order = append(m.order, id)
	m.boards[id] = game.NewBoard()
	m.peers[id] = peer
	m.log.Info("player joined", zap.String("player", id), zap.Int("seat", len(m.order)))

	if len(m.order) == maxPlayers {
		m.setPhaseLocked(PhasePlacement)
		m.broadcastLocked()
	} else {
		m.sendStateLocked(id)
	}
	return id, nil
}

// Detach clears the transport binding for playerID if it is still peer.
func (m *Match) Detach(playerID string, peer Peer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cur, ok := m.peers[playerID]; ok && cur == peer {
		delete(m.peers, playerID)
		m.log.Info("player disconnected", zap.String("player", playerID))
	}
}

// Bound reports whether peer is the transport currently bound to playerID.
func (m *Match) Bound(playerID string, peer Peer) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.peers[playerID]
	return ok && cur == peer
}

// SubmitFleet replaces the player's fleet. Every ship must be valid against
// the ships before it in the same submission; on the first violation the whole
// submission is rejected. Outside the placement phase it is a no-op.
func (m *Match) SubmitFleet(playerID string, ships []game.Ship) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.phase != PhasePlacement {
		return nil
	}
	board, ok := m.boards[playerID]
	if !ok {
		return nil
	}

	accepted := make([]game.Ship, 0, len(ships))
	seen := make(map[string]struct{}, len(ships))
	for _, s := range ships {
		if _, dup := seen[s.ID]; dup {
			return m.rejectPlacement(playerID, fmt.Errorf("%w: duplicate ship id %q", ErrInvalidPlacement, s.ID))
		}
		if !game.ValidPlacement(s, accepted) {
			return m.rejectPlacement(playerID, fmt.Errorf("%w: %s %q at %s", ErrInvalidPlacement, s.Type, s.ID, s.Position))
		}
		seen[s.ID] = struct{}{}
		s.Sunk = false
		accepted = append(accepted, s)
	}
	board.Ships = accepted
	m.log.Info("fleet accepted", zap.String("player", playerID), zap.Int("ships", len(accepted)))

	ready := true
	for _, id := range m.order {
		if len(m.boards[id].Ships) == 0 {
			ready = false
			break
		}
	}
	if ready {
		m.turn = m.order[0]
		m.setPhaseLocked(PhaseActive)
	}
	m.broadcastLocked()
	return nil
}

func (m *Match) rejectPlacement(playerID string, err error) error {
	m.log.Debug("fleet rejected", zap.String("player", playerID), zap.Error(err))
	return err
}

// FireShot resolves playerID's shot at target against the opponent's board.
// Shots outside the active phase, off the board, or at a cell already fired
// at are ignored.
func (m *Match) FireShot(playerID string, target game.Coordinate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.phase != PhaseActive {
		return nil
	}
	if playerID != m.turn {
		if _, ok := m.boards[playerID]; ok {
			m.log.Debug("shot rejected", zap.String("player", playerID), zap.Error(ErrOutOfTurn))
			return ErrOutOfTurn
		}
		return nil
	}
	if !game.InBounds(target) {
		return nil
	}
	opponent := m.opponentLocked(playerID)
	board := m.boards[opponent]
	if _, done := board.Shot(target); done {
		return nil
	}

	res := game.ResolveShot(board, target)
	board.Record(target, res.Outcome)

	var evt Event
	if res.SunkShip != nil {
		sunk, _ := board.MarkSunk(res.SunkShip.ID)
		evt = sunkEvent(sunk)
	} else {
		evt = outcomeEvent(res.Outcome, target)
	}
	m.log.Debug("shot resolved",
		zap.String("player", playerID),
		zap.String("target", target.Key()),
		zap.String("outcome", string(res.Outcome)))
	m.emitLocked(evt)

	if game.FleetDefeated(board) {
		m.winner = playerID
		m.setPhaseLocked(PhaseFinished)
		m.log.Info("match won", zap.String("player", playerID))
	} else {
		m.turn = opponent
	}
	m.broadcastLocked()
	return nil
}

// View returns the snapshot playerID is entitled to see.
func (m *Match) View(playerID string) Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.viewLocked(playerID)
}

func (m *Match) Summary() Summary {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Summary{MatchID: m.id, Phase: m.phase, Players: len(m.order)}
}

func (m *Match) opponentLocked(playerID string) string {
	for _, id := range m.order {
		if id != playerID {
			return id
		}
	}
	return ""
}

// setPhaseLocked only ever moves the phase forward.
func (m *Match) setPhaseLocked(p Phase) {
	if phaseRank[p] <= phaseRank[m.phase] {
		return
	}
	m.log.Info("phase changed", zap.String("from", string(m.phase)), zap.String("to", string(p)))
	m.phase = p
}

var phaseRank = map[Phase]int{
	PhaseLobby:     0,
	PhasePlacement: 1,
	PhaseActive:    2,
	PhaseFinished:  3,
}

func (m *Match) sendStateLocked(playerID string) {
	if peer := m.peers[playerID]; peer != nil {
		peer.SendState(m.viewLocked(playerID))
	}
}

// broadcastLocked sends every connected participant its own projection.
func (m *Match) broadcastLocked() {
	for _, id := range m.order {
		m.sendStateLocked(id)
	}
}

func (m *Match) emitLocked(evt Event) {
	for _, id := range m.order {
		if peer := m.peers[id]; peer != nil {
			peer.SendEvent(evt)
		}
	}
}
