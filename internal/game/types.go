package game

import (
	"fmt"
	"strconv"
	"strings"
)

// BoardSize is the width and height of every board.
const BoardSize = 10

type Coordinate struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Key returns the canonical "x,y" form used on the wire.
func (c Coordinate) Key() string {
	return strconv.Itoa(c.X) + "," + strconv.Itoa(c.Y)
}

func (c Coordinate) String() string { return c.Key() }

// ParseKey is the inverse of Coordinate.Key.
func ParseKey(key string) (Coordinate, error) {
	xs, ys, ok := strings.Cut(key, ",")
	if !ok {
		return Coordinate{}, fmt.Errorf("coordinate key %q: missing separator", key)
	}
	x, err := strconv.Atoi(xs)
	if err != nil {
		return Coordinate{}, fmt.Errorf("coordinate key %q: %w", key, err)
	}
	y, err := strconv.Atoi(ys)
	if err != nil {
		return Coordinate{}, fmt.Errorf("coordinate key %q: %w", key, err)
	}
	return Coordinate{X: x, Y: y}, nil
}

type ShipType string

const (
	Carrier    ShipType = "carrier"
	Battleship ShipType = "battleship"
	Cruiser    ShipType = "cruiser"
	Submarine  ShipType = "submarine"
	Destroyer  ShipType = "destroyer"
)

// Fleet is the reference fleet in canonical order.
var Fleet = []ShipType{Carrier, Battleship, Cruiser, Submarine, Destroyer}

var shipLengths = map[ShipType]int{
	Carrier:    5,
	Battleship: 4,
	Cruiser:    3,
	Submarine:  3,
	Destroyer:  2,
}

// Length reports how many cells the ship type occupies, 0 if unknown.
func (t ShipType) Length() int { return shipLengths[t] }

type Orientation string

const (
	Horizontal Orientation = "horizontal"
	Vertical   Orientation = "vertical"
)

func (o Orientation) valid() bool { return o == Horizontal || o == Vertical }

// Ship is one placed vessel. Position is the top-left anchor cell.
type Ship struct {
	ID          string      `json:"id"`
	Type        ShipType    `json:"type"`
	Position    Coordinate  `json:"position"`
	Orientation Orientation `json:"orientation"`
	Sunk        bool        `json:"sunk"`
}

type Outcome string

const (
	Miss Outcome = "miss"
	Hit  Outcome = "hit"
	Sunk Outcome = "sunk"
)

// Board is one player's fleet plus the ledger of shots landed against it.
type Board struct {
	Ships []Ship
	shots map[Coordinate]Outcome
	order []Coordinate
}

func NewBoard() *Board {
	return &Board{shots: map[Coordinate]Outcome{}}
}

// Shot returns the recorded outcome at c, if any.
func (b *Board) Shot(c Coordinate) (Outcome, bool) {
	o, ok := b.shots[c]
	return o, ok
}

// Record stores the outcome of a shot at c. A cell is recorded at most once;
// later calls for the same cell are ignored and report false.
func (b *Board) Record(c Coordinate, o Outcome) bool {
	if b.shots == nil {
		b.shots = map[Coordinate]Outcome{}
	}
	if _, dup := b.shots[c]; dup {
		return false
	}
	b.shots[c] = o
	b.order = append(b.order, c)
	return true
}

// ShotCount is the number of distinct cells fired at.
func (b *Board) ShotCount() int { return len(b.order) }

// Shots lists recorded shots in the order they landed.
func (b *Board) Shots() []Coordinate {
	return append([]Coordinate(nil), b.order...)
}

// MarkSunk sets the sunk flag on the ship with the given id.
func (b *Board) MarkSunk(id string) (Ship, bool) {
	for i := range b.Ships {
		if b.Ships[i].ID == id {
			b.Ships[i].Sunk = true
			return b.Ships[i], true
		}
	}
	return Ship{}, false
}
