package board

import (
	"errors"
	"fmt"
)

// ErrIllegalMove is returned when a requested move is not in the current
// legal move list. No state is changed when it is returned.
var ErrIllegalMove = errors.New("illegal move")

// FormatError reports a malformed position import string.
type FormatError struct {
	Field  string // placement, side, castling, enpassant, halfmove, fullmove or record
	Value  string
	Reason string
}

func (e *FormatError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// InvariantViolation is the panic value for a broken caller contract: an
// off-board square or an unmake with nothing to undo. It is never returned.
type InvariantViolation string

func (v InvariantViolation) Error() string {
	return "board invariant violated: " + string(v)
}
