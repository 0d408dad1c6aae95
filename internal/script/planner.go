// Package script runs Lua fleet planners that suggest ship layouts.
//
// A planner script sees these globals:
//
//	fleet       list of ship type names to place
//	board_size  board width and height
//	random(n)   integer in [0, n)
//	place(type, x, y, orientation) -> bool
//
// place only accepts a ship that is valid against the ships placed so far.
package script

import (
	"context"
	_ "embed"
	"fmt"
	"math/rand/v2"
	"os"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"example.com/battlegrid/internal/game"
)

//go:embed default_fleet.lua
var defaultScript string

type Planner struct {
	name   string
	source string
	log    *zap.Logger

	rngMu sync.Mutex
	rng   *rand.Rand
}

type Option func(*Planner)

func WithLogger(l *zap.Logger) Option {
	return func(p *Planner) {
		if l != nil {
			p.log = l
		}
	}
}

// WithSeed makes plans reproducible.
func WithSeed(seed uint64) Option {
	return func(p *Planner) { p.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) }
}

// NewPlanner builds a planner from Lua source.
func NewPlanner(name, source string, opts ...Option) *Planner {
	p := &Planner{
		name:   name,
		source: source,
		log:    zap.NewNop(),
		rng:    rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// DefaultPlanner uses the embedded random layout script.
func DefaultPlanner(opts ...Option) *Planner {
	return NewPlanner("default_fleet.lua", defaultScript, opts...)
}

// LoadPlanner reads a planner script from disk.
func LoadPlanner(path string, opts ...Option) (*Planner, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load fleet script: %w", err)
	}
	return NewPlanner(path, string(src), opts...), nil
}

func (p *Planner) Name() string { return p.name }

// Plan runs the script in a fresh Lua state and returns the fleet it placed.
func (p *Planner) Plan(ctx context.Context) ([]game.Ship, error) {
	L := lua.NewState()
	defer L.Close()
	L.SetContext(ctx)

	var ships []game.Ship
	kinds := L.NewTable()
	for _, t := range game.Fleet {
		kinds.Append(lua.LString(t))
	}
	L.SetGlobal("fleet", kinds)
	L.SetGlobal("board_size", lua.LNumber(game.BoardSize))
	L.SetGlobal("random", L.NewFunction(func(L *lua.LState) int {
		n := L.CheckInt(1)
		if n <= 0 {
			L.ArgError(1, "must be positive")
			return 0
		}
		L.Push(lua.LNumber(p.intN(n)))
		return 1
	}))
	L.SetGlobal("place", L.NewFunction(func(L *lua.LState) int {
		s := game.Ship{
			Type:        game.ShipType(L.CheckString(1)),
			Position:    game.Coordinate{X: L.CheckInt(2), Y: L.CheckInt(3)},
			Orientation: game.Orientation(L.OptString(4, string(game.Horizontal))),
		}
		s.ID = fmt.Sprintf("%s-%d", s.Type, len(ships)+1)
		ok := game.ValidPlacement(s, ships)
		if ok {
			ships = append(ships, s)
		}
		L.Push(lua.LBool(ok))
		return 1
	}))

	if err := L.DoString(p.source); err != nil {
		p.log.Debug("fleet script failed", zap.String("script", p.name), zap.Error(err))
		return nil, fmt.Errorf("run fleet script %s: %w", p.name, err)
	}
	if err := completeFleet(ships); err != nil {
		return nil, fmt.Errorf("fleet script %s: %w", p.name, err)
	}
	return ships, nil
}

func (p *Planner) intN(n int) int {
	p.rngMu.Lock()
	defer p.rngMu.Unlock()
	return p.rng.IntN(n)
}

// completeFleet checks that every reference ship type was placed once.
func completeFleet(ships []game.Ship) error {
	count := map[game.ShipType]int{}
	for _, s := range ships {
		count[s.Type]++
	}
	for _, t := range game.Fleet {
		if count[t] != 1 {
			return fmt.Errorf("placed %d %s, want 1", count[t], t)
		}
	}
	if len(ships) != len(game.Fleet) {
		return fmt.Errorf("placed %d ships, want %d", len(ships), len(game.Fleet))
	}
	return nil
}
