package draft

import "errors"

// Engine rejections. All of these are returned to the immediate caller with
// the draft left unchanged; none should crash the hosting process.
var (
	// ErrOutOfBounds means a location addressed a row or column outside the
	// board's current dimensions and the board could not extend to cover it.
	ErrOutOfBounds = errors.New("location out of bounds")

	// ErrEmptyCell means a removal addressed a cell with no cards in it.
	ErrEmptyCell = errors.New("cell is empty")

	// ErrNotYourTurn means a pick was submitted by a seat other than the one
	// named by ResolveActingSeat. The caller should re-sync from the last
	// broadcast state.
	ErrNotYourTurn = errors.New("not your turn")

	// ErrDraftComplete means a command arrived after the draft went terminal.
	ErrDraftComplete = errors.New("draft already complete")

	// ErrInvalidSelection means the selection payload did not match any legal
	// option for the acting seat (wrong card, wrong shape, stale cells).
	ErrInvalidSelection = errors.New("invalid selection")
)
