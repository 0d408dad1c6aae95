package match

import "example.com/battlegrid/internal/game"

type Phase string

const (
	PhaseLobby     Phase = "lobby"
	PhasePlacement Phase = "placement"
	PhaseActive    Phase = "active"
	PhaseFinished  Phase = "finished"
)

// ShotEntry is a recorded shot in wire form: [coordKey, outcome].
type ShotEntry [2]string

type BoardView struct {
	Ships []game.Ship `json:"ships"`
	Shots []ShotEntry `json:"shots"`
}

// Snapshot is the state of a match as one participant is allowed to see it.
type Snapshot struct {
	MatchID string               `json:"matchId"`
	Phase   Phase                `json:"phase"`
	Players map[string]BoardView `json:"players"`
	Turn    string               `json:"turn"`
	Winner  *string              `json:"winner"`
}

type EventType string

const (
	EventMiss EventType = "miss"
	EventHit  EventType = "hit"
	EventSunk EventType = "sunk"
)

// Event is the transient notice broadcast after each resolved shot. Miss and
// hit events carry Coord; sunk events carry Ship.
type Event struct {
	Type  EventType        `json:"type"`
	Coord *game.Coordinate `json:"coord,omitempty"`
	Ship  *game.Ship       `json:"ship,omitempty"`
}

func outcomeEvent(o game.Outcome, c game.Coordinate) Event {
	t := EventMiss
	if o == game.Hit {
		t = EventHit
	}
	return Event{Type: t, Coord: &c}
}

func sunkEvent(s game.Ship) Event {
	return Event{Type: EventSunk, Ship: &s}
}

// Summary is public match metadata, identical for every caller.
type Summary struct {
	MatchID string `json:"matchId"`
	Phase   Phase  `json:"phase"`
	Players int    `json:"players"`
}

// Peer is the transport's handle on a connected player. Sends must not block;
// a peer that cannot take a message drops it.
type Peer interface {
	SendState(Snapshot)
	SendEvent(Event)
}

// viewLocked projects the match for viewer. A board's ships are shown in full
// to its owner and to everyone once the match is finished; otherwise only
// sunk ships are included.
func (m *Match) viewLocked(viewer string) Snapshot {
	players := make(map[string]BoardView, len(m.order))
	for _, id := range m.order {
		b := m.boards[id]
		reveal := id == viewer || m.phase == PhaseFinished
		ships := make([]game.Ship, 0, len(b.Ships))
		for _, s := range b.Ships {
			if reveal || s.Sunk {
				ships = append(ships, s)
			}
		}
		shots := make([]ShotEntry, 0, b.ShotCount())
		for _, c := range b.Shots() {
			o, _ := b.Shot(c)
			shots = append(shots, ShotEntry{c.Key(), string(o)})
		}
		players[id] = BoardView{Ships: ships, Shots: shots}
	}
	snap := Snapshot{
		MatchID: m.id,
		Phase:   m.phase,
		Players: players,
		Turn:    m.turn,
	}
	if m.winner != "" {
		w := m.winner
		snap.Winner = &w
	}
	return snap
}
