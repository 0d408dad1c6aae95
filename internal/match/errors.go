package match

import "errors"

// Player-local, recoverable errors. They are reported to the offending player
// only and never change match state.
var (
	ErrCapacity         = errors.New("match full")
	ErrInvalidPlacement = errors.New("invalid placement")
	ErrOutOfTurn        = errors.New("not your turn")
	ErrMatchNotFound    = errors.New("match not found")
)
