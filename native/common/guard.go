package common

import "errors"

var (
	// ErrFrozen is returned once the one-way freeze switch has been set.
	ErrFrozen = errors.New("ledger frozen")
	// ErrPaused is returned while the reversible pause switch is active.
	ErrPaused = errors.New("ledger paused")
)

// GateView exposes the two global mutation gates. The frozen gate is one-way;
// the paused gate is reversible. Reads are never gated.
type GateView interface {
	IsFrozen() bool
	IsPaused() bool
}

// Guard rejects mutations while either global gate is active. It is checked
// before any other precondition in every state-changing operation.
func Guard(v GateView) error {
	if v == nil {
		return nil
	}
	if v.IsFrozen() {
		return ErrFrozen
	}
	if v.IsPaused() {
		return ErrPaused
	}
	return nil
}
