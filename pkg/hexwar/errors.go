package hexwar

import "errors"

// Malformed events, rejected before any state is consulted.
var (
	ErrUnknownEvent   = errors.New("unknown event type")
	ErrMissingHex     = errors.New("hex is required")
	ErrMissingUnitID  = errors.New("unit id is required")
	ErrHexOutOfBounds = errors.New("hex is outside the map")
)

// Events that are well formed but not allowed in the current state.
var (
	ErrNotYourTurn       = errors.New("not your turn")
	ErrWrongAction       = errors.New("event not allowed in the current phase")
	ErrUnitNotFound      = errors.New("unit not found")
	ErrUnitNotOwned      = errors.New("unit belongs to the other player")
	ErrUnitNotSelectable = errors.New("unit cannot be selected")
	ErrNotInRange        = errors.New("destination is not in range")
	ErrEnemyOccupied     = errors.New("destination is occupied by an enemy unit")
	ErrWaterHex          = errors.New("destination is water")
)

// Inconsistent stored state.
var (
	ErrNoSelectedUnit      = errors.New("no unit is selected")
	ErrSelectedUnitMissing = errors.New("selected unit is missing from the game state")
	ErrStateMissing        = errors.New("game has no unit state")
)

// ErrorClass groups engine errors by who is at fault.
type ErrorClass int

const (
	ClassNone         ErrorClass = iota
	ClassValidation              // malformed input
	ClassPrecondition            // legal input, wrong moment
	ClassTurn                    // acting out of turn
	ClassNotFound                // referenced unit does not exist
	ClassIntegrity               // stored state is inconsistent
)

var errorClasses = []struct {
	err   error
	class ErrorClass
}{
	{ErrUnknownEvent, ClassValidation},
	{ErrMissingHex, ClassValidation},
	{ErrMissingUnitID, ClassValidation},
	{ErrHexOutOfBounds, ClassValidation},
	{ErrNotYourTurn, ClassTurn},
	{ErrWrongAction, ClassPrecondition},
	{ErrUnitNotOwned, ClassPrecondition},
	{ErrUnitNotSelectable, ClassPrecondition},
	{ErrNotInRange, ClassPrecondition},
	{ErrEnemyOccupied, ClassPrecondition},
	{ErrWaterHex, ClassPrecondition},
	{ErrUnitNotFound, ClassNotFound},
	{ErrNoSelectedUnit, ClassIntegrity},
	{ErrSelectedUnitMissing, ClassIntegrity},
	{ErrStateMissing, ClassIntegrity},
}

// Classify returns the class of an engine error, or ClassNone for errors
// that did not originate here.
func Classify(err error) ErrorClass {
	if err == nil {
		return ClassNone
	}
	for _, ec := range errorClasses {
		if errors.Is(err, ec.err) {
			return ec.class
		}
	}
	return ClassNone
}
