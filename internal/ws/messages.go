package ws

import (
	"example.com/battlegrid/internal/game"
	"example.com/battlegrid/internal/match"
)

// Inbound message types.
const (
	TypeJoinMatch    = "join_match"
	TypePlaceShips   = "place_ships"
	TypeFireShot     = "fire_shot"
	TypeSuggestFleet = "suggest_fleet"
	TypePong         = "pong"
)

// Outbound message types.
const (
	TypeJoined          = "joined"
	TypeStateUpdate     = "state_update"
	TypeEvent           = "event"
	TypeError           = "error"
	TypeFleetSuggestion = "fleet_suggestion"
)

// Msg is the outbound envelope.
type Msg struct {
	T string `json:"t"`
	M any    `json:"m,omitempty"`
}

// Inbound is every client frame. Only the fields relevant to T are read.
type Inbound struct {
	T      string           `json:"t" jsonschema:"enum=join_match,enum=place_ships,enum=fire_shot,enum=suggest_fleet,enum=pong"`
	Match  string           `json:"match,omitempty" jsonschema:"description=match code for join_match"`
	Player string           `json:"player,omitempty" jsonschema:"description=player id to reconnect as"`
	Ships  []game.Ship      `json:"ships,omitempty"`
	Target *game.Coordinate `json:"target,omitempty"`
}

type Joined struct {
	Match  string `json:"match"`
	Player string `json:"player"`
}

type ErrorMessage struct {
	Message string `json:"message"`
}

type FleetSuggestion struct {
	Ships []game.Ship `json:"ships"`
}

// payloads lists the outbound payload shapes for schema generation.
var payloads = map[string]any{
	TypeJoined:          &Joined{},
	TypeStateUpdate:     &match.Snapshot{},
	TypeEvent:           &match.Event{},
	TypeError:           &ErrorMessage{},
	TypeFleetSuggestion: &FleetSuggestion{},
}
