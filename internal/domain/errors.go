package domain

import "errors"

var (
	// ErrInvalidParameters is returned when a request is missing required fields.
	ErrInvalidParameters = errors.New("invalid parameters")
	// ErrMatchInProgress is returned when a match is already active on this engine.
	ErrMatchInProgress = errors.New("match already in progress")
	// ErrNoActiveMatch is returned when an operation requires an active match.
	ErrNoActiveMatch = errors.New("no active match")
	// ErrUnknownPlayer indicates a player id that is not part of the match.
	ErrUnknownPlayer = errors.New("player not found in match")
	// ErrUnknownQuestion indicates a question id outside the match's question set.
	ErrUnknownQuestion = errors.New("question not found")
	// ErrOutOfBounds indicates a board coordinate outside the grid.
	ErrOutOfBounds = errors.New("cell out of bounds")
	// ErrAlreadyMarked indicates the targeted cell is already marked.
	ErrAlreadyMarked = errors.New("cell already marked")
	// ErrNoCellsAvailable indicates a full board with nothing left to mark.
	ErrNoCellsAvailable = errors.New("no unmarked cells available")
)
