package game

// The functions in this file are pure: they never mutate their arguments and
// are safe to call from any number of matches at once.

// OccupiedCells returns the cells covered by s, starting at its anchor.
func OccupiedCells(s Ship) []Coordinate {
	n := s.Type.Length()
	cells := make([]Coordinate, 0, n)
	for i := 0; i < n; i++ {
		c := s.Position
		if s.Orientation == Vertical {
			c.Y += i
		} else {
			c.X += i
		}
		cells = append(cells, c)
	}
	return cells
}

func InBounds(c Coordinate) bool {
	return c.X >= 0 && c.X < BoardSize && c.Y >= 0 && c.Y < BoardSize
}

// ValidPlacement reports whether candidate lies fully on the board without
// sharing a cell with any of placed. Ships in placed with the candidate's id
// are skipped so a ship can be moved over its own previous position.
func ValidPlacement(candidate Ship, placed []Ship) bool {
	if candidate.Type.Length() == 0 || !candidate.Orientation.valid() {
		return false
	}
	cells := OccupiedCells(candidate)
	for _, c := range cells {
		if !InBounds(c) {
			return false
		}
	}
	occupied := make(map[Coordinate]struct{}, 17)
	for _, s := range placed {
		if s.ID == candidate.ID {
			continue
		}
		for _, c := range OccupiedCells(s) {
			occupied[c] = struct{}{}
		}
	}
	for _, c := range cells {
		if _, taken := occupied[c]; taken {
			return false
		}
	}
	return true
}

// ShotResult is the outcome of a shot. SunkShip is set only when Outcome is Sunk.
type ShotResult struct {
	Outcome  Outcome
	SunkShip *Ship
}

// ResolveShot computes what a shot at target does to b without recording it.
// The caller must not fire at a cell b already has a shot for.
func ResolveShot(b *Board, target Coordinate) ShotResult {
	for i := range b.Ships {
		ship := b.Ships[i]
		cells := OccupiedCells(ship)
		if !contains(cells, target) {
			continue
		}
		hits := 0
		for _, c := range cells {
			if c == target {
				hits++
				continue
			}
			if o, ok := b.Shot(c); ok && (o == Hit || o == Sunk) {
				hits++
			}
		}
		if hits == len(cells) {
			return ShotResult{Outcome: Sunk, SunkShip: &ship}
		}
		return ShotResult{Outcome: Hit}
	}
	return ShotResult{Outcome: Miss}
}

// FleetDefeated reports whether every ship on b is sunk.
func FleetDefeated(b *Board) bool {
	for _, s := range b.Ships {
		if !s.Sunk {
			return false
		}
	}
	return true
}

func contains(cells []Coordinate, c Coordinate) bool {
	for _, x := range cells {
		if x == c {
			return true
		}
	}
	return false
}
