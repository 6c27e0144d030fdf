package engine

import "errors"

var (
	ErrInvalidMap     = errors.New("invalid map")
	ErrNoAdjacentCell = errors.New("station has no open adjacent cell")
	ErrUnknownStation = errors.New("unknown station")
	ErrEmptyPath      = errors.New("path is empty")
	ErrSequencerBusy  = errors.New("movement already in progress")
	ErrNotInDialogue  = errors.New("no dialogue is showing")
	ErrRunFinished    = errors.New("exercise run is finished")
)
