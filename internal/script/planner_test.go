package script

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"example.com/battlegrid/internal/game"
)

func TestDefaultPlannerPlacesValidFleet(t *testing.T) {
	p := DefaultPlanner(WithSeed(7), WithLogger(zaptest.NewLogger(t)))
	for round := 0; round < 20; round++ {
		ships, err := p.Plan(context.Background())
		if err != nil {
			t.Fatalf("round %d: %v", round, err)
		}
		if len(ships) != len(game.Fleet) {
			t.Fatalf("round %d: %d ships", round, len(ships))
		}
		var accepted []game.Ship
		for _, s := range ships {
			if !game.ValidPlacement(s, accepted) {
				t.Fatalf("round %d: invalid ship %+v", round, s)
			}
			accepted = append(accepted, s)
		}
	}
}

func TestSeededPlansRepeat(t *testing.T) {
	a, err := DefaultPlanner(WithSeed(42)).Plan(context.Background())
	if err != nil {
		t.Fatalf("plan a: %v", err)
	}
	b, err := DefaultPlanner(WithSeed(42)).Plan(context.Background())
	if err != nil {
		t.Fatalf("plan b: %v", err)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("ship %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestFixedScript(t *testing.T) {
	src := `
for i, kind in ipairs(fleet) do
  assert(place(kind, 0, (i - 1) * 2, "horizontal"), kind)
end
-- overlapping placement is refused
assert(not place("destroyer", 0, 0, "vertical"))
`
	ships, err := NewPlanner("rows", src).Plan(context.Background())
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if ships[0].Type != game.Carrier || ships[0].Position != (game.Coordinate{X: 0, Y: 0}) {
		t.Fatalf("first ship = %+v", ships[0])
	}
	if ships[4].Position != (game.Coordinate{X: 0, Y: 8}) {
		t.Fatalf("last ship = %+v", ships[4])
	}
}

func TestIncompleteFleetFails(t *testing.T) {
	_, err := NewPlanner("lazy", `place("carrier", 0, 0, "horizontal")`).Plan(context.Background())
	if err == nil || !strings.Contains(err.Error(), "battleship") {
		t.Fatalf("err = %v, want missing battleship", err)
	}
}

func TestScriptErrorSurfaces(t *testing.T) {
	_, err := NewPlanner("broken", `error("boom")`).Plan(context.Background())
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("err = %v, want script error", err)
	}
}

func TestPlanHonoursContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := NewPlanner("spin", `while true do end`).Plan(ctx); err == nil {
		t.Fatalf("endless script returned without error")
	}
}

func TestLoadPlanner(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fleet.lua")
	if err := os.WriteFile(path, []byte(defaultScript), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}
	p, err := LoadPlanner(path, WithSeed(1))
	if err != nil {
		t.Fatalf("LoadPlanner: %v", err)
	}
	if p.Name() != path {
		t.Fatalf("Name = %q", p.Name())
	}
	if _, err := p.Plan(context.Background()); err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if _, err := LoadPlanner(filepath.Join(t.TempDir(), "missing.lua")); err == nil {
		t.Fatalf("missing script loaded")
	}
}
