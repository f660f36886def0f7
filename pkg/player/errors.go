package player

import "errors"

// Failure taxonomy shared by player operations and the game engine. Every
// failure is scoped to the triggering event and leaves state untouched.
var (
	// ErrNotFound means a referenced content id does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState means the action is not valid in the current mode.
	ErrInvalidState = errors.New("invalid state")

	// ErrInsufficientResource means not enough gold, fatigue or items.
	ErrInsufficientResource = errors.New("insufficient resource")

	// ErrCapacityExceeded means a slot or usage limit is full.
	ErrCapacityExceeded = errors.New("capacity exceeded")
)

// Equip failure modes, each wrapping a taxonomy error so callers can
// match either the specific cause or the broad class.
var (
	ErrNotOwned        = wrap("item not in inventory", ErrInsufficientResource)
	ErrAlreadyEquipped = wrap("artifact already equipped", ErrInvalidState)
	ErrNotAnArtifact   = wrap("item is not an artifact", ErrInvalidState)
	ErrNoFreeSlot      = wrap("no free artifact slot", ErrCapacityExceeded)
	ErrNotEquipped     = wrap("artifact not equipped", ErrInvalidState)
)

type wrapped struct {
	msg  string
	base error
}

func wrap(msg string, base error) error { return &wrapped{msg: msg, base: base} }
func (w *wrapped) Error() string        { return w.msg }
func (w *wrapped) Unwrap() error        { return w.base }
