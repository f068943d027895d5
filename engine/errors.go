package engine

import "errors"

// Action rejection taxonomy. Every rejected bid/play/pass returns one of
// these sentinels (possibly wrapped with detail); state is never mutated
// on rejection.
var (
	// ErrIllegalShape: the submitted cards form no recognized hand shape.
	ErrIllegalShape = errors.New("cards do not form a legal shape")
	// ErrCannotBeat: the shape is legal but does not outrank the last play.
	ErrCannotBeat = errors.New("shape does not beat the last play")
	// ErrNotYourTurn: action submitted by a seat that is not current.
	ErrNotYourTurn = errors.New("not your turn")
	// ErrCardsNotHeld: submitted cards are not all present in the seat's hand.
	ErrCardsNotHeld = errors.New("cards not held")
	// ErrIllegalPass: pass attempted while leading a trick.
	ErrIllegalPass = errors.New("cannot pass when leading")
	// ErrWrongPhase: action does not belong to the table's current phase.
	ErrWrongPhase = errors.New("action not valid in current phase")
)
