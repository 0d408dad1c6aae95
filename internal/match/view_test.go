package match

import (
	"encoding/json"
	"reflect"
	"testing"

	"go.uber.org/zap/zaptest"

	"example.com/battlegrid/internal/game"
)

func wireJSON(t *testing.T, s Snapshot) map[string]any {
	t.Helper()
	b, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal snapshot: %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("decode %s: %v", b, err)
	}
	return out
}

func wireBoard(t *testing.T, snap map[string]any, player string) map[string]any {
	t.Helper()
	players, ok := snap["players"].(map[string]any)
	if !ok {
		t.Fatalf("players is %T, want object", snap["players"])
	}
	board, ok := players[player].(map[string]any)
	if !ok {
		t.Fatalf("players[%q] is %T, want object", player, players[player])
	}
	return board
}

func TestSnapshotWireLayoutInLobby(t *testing.T) {
	m := New("ABC123", WithLogger(zaptest.NewLogger(t)), WithIDGenerator(sequentialIDs()))
	id, err := m.AttachPlayer(&recorder{}, "")
	if err != nil {
		t.Fatalf("join: %v", err)
	}

	snap := wireJSON(t, m.View(id))
	for _, key := range []string{"matchId", "phase", "players", "turn", "winner"} {
		if _, ok := snap[key]; !ok {
			t.Errorf("snapshot missing %q: %v", key, snap)
		}
	}
	if len(snap) != 5 {
		t.Errorf("snapshot has %d keys, want 5: %v", len(snap), snap)
	}
	if snap["matchId"] != "ABC123" || snap["phase"] != "lobby" || snap["turn"] != "" {
		t.Errorf("snapshot header = %v", snap)
	}
	if snap["winner"] != nil {
		t.Errorf("winner = %v, want null", snap["winner"])
	}

	board := wireBoard(t, snap, id)
	for _, key := range []string{"ships", "shots"} {
		list, ok := board[key].([]any)
		if !ok || len(list) != 0 {
			t.Errorf("%s = %#v, want []", key, board[key])
		}
	}
}

func TestSnapshotWireShotsArePairs(t *testing.T) {
	f := newActiveFixture(t)
	fire(t, f.m, f.a, 0, 1)
	fire(t, f.m, f.b, 0, 0)

	snap := wireJSON(t, f.m.View(f.a))
	if snap["phase"] != "active" || snap["turn"] != f.a || snap["winner"] != nil {
		t.Fatalf("snapshot header = %v", snap)
	}
	want := []any{[]any{"0,1", "miss"}}
	if got := wireBoard(t, snap, f.b)["shots"]; !reflect.DeepEqual(got, want) {
		t.Errorf("opponent shots = %#v, want %#v", got, want)
	}
	want = []any{[]any{"0,0", "hit"}}
	if got := wireBoard(t, snap, f.a)["shots"]; !reflect.DeepEqual(got, want) {
		t.Errorf("own shots = %#v, want %#v", got, want)
	}
	if ships, _ := wireBoard(t, snap, f.b)["ships"].([]any); ships == nil || len(ships) != 0 {
		t.Errorf("hidden opponent ships = %#v, want []", wireBoard(t, snap, f.b)["ships"])
	}

	ship, _ := wireBoard(t, snap, f.a)["ships"].([]any)
	if len(ship) != 5 {
		t.Fatalf("own ships = %d, want 5", len(ship))
	}
	first, _ := ship[0].(map[string]any)
	for _, key := range []string{"id", "type", "position", "orientation", "sunk"} {
		if _, ok := first[key]; !ok {
			t.Errorf("ship missing %q: %v", key, first)
		}
	}
}

func TestSnapshotWireWinner(t *testing.T) {
	f := newActiveFixture(t)
	var targets []game.Coordinate
	for _, s := range fleet("b") {
		targets = append(targets, game.OccupiedCells(s)...)
	}
	for i, c := range targets {
		fire(t, f.m, f.a, c.X, c.Y)
		if i < len(targets)-1 {
			fire(t, f.m, f.b, i%10, 1+2*(i/10))
		}
	}

	snap := wireJSON(t, f.m.View(f.b))
	if snap["phase"] != "finished" || snap["winner"] != f.a {
		t.Fatalf("finished snapshot phase %v winner %v", snap["phase"], snap["winner"])
	}
	ships, _ := wireBoard(t, snap, f.a)["ships"].([]any)
	if len(ships) != 5 {
		t.Errorf("loser sees %d winner ships, want 5", len(ships))
	}
}
