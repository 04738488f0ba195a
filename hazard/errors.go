package hazard

import "errors"

// ErrCellsExhausted is returned by CaptureCell when every cell in a Domain
// is already leased. It is the (N+1)th concurrent capture's deterministic
// failure mode required by the cell-accounting property.
var ErrCellsExhausted = errors.New("hazard: all cells are currently leased")

// ErrHandleReleased is the value Protect, TryProtect, Reset and Retire
// panic with when called on a Handle after Release has already run.
var ErrHandleReleased = errors.New("hazard: handle already released")
