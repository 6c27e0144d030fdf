package engine

import (
	"sync"
	"time"
)

// PlayerPosition is the token's last settled cell. It outlives individual
// exercises: the owner creates one per player and hands it to every
// controller it builds, so the token never snaps back to the spawn cell.
type PlayerPosition struct {
	mu   sync.RWMutex
	cell Cell
}

// NewPlayerPosition creates a position settled at the given cell
func NewPlayerPosition(start Cell) *PlayerPosition {
	return &PlayerPosition{cell: start}
}

// Get returns the settled cell
func (p *PlayerPosition) Get() Cell {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cell
}

// set is only called by the Sequencer when a movement settles
func (p *PlayerPosition) set(c Cell) {
	p.mu.Lock()
	p.cell = c
	p.mu.Unlock()
}

// MovementState describes the movement currently being played back
type MovementState struct {
	Path      Path `json:"path"`
	StepIndex int  `json:"step_index"`
	IsMoving  bool `json:"is_moving"`
}

// Sequencer advances a token along a path one cell at a time. It is driven
// by an external clock through Advance; nothing in it sleeps or spawns
// goroutines. Horizontal and vertical steps take different durations.
//
// Sequencer is not safe for concurrent use; the Controller that owns it
// serializes access together with the PlayerPosition it writes.
type Sequencer struct {
	timing     Timing
	position   *PlayerPosition
	state      *MovementState
	elapsed    time.Duration
	onStep     func(Cell)
	onComplete func(Cell)
}

// NewSequencer creates an idle sequencer that settles movements into position
func NewSequencer(timing Timing, position *PlayerPosition) *Sequencer {
	return &Sequencer{
		timing:   timing,
		position: position,
	}
}

// Start begins playing back path. path[0] must be the current settled cell.
// onStep fires after each completed step with the cell just reached;
// onComplete fires once with the final cell after it has been persisted.
// Either callback may be nil. A single-cell path completes immediately.
func (s *Sequencer) Start(path Path, onStep, onComplete func(Cell)) error {
	if len(path) == 0 {
		return ErrEmptyPath
	}
	if s.state != nil {
		return ErrSequencerBusy
	}

	if len(path) == 1 {
		s.position.set(path[0])
		if onComplete != nil {
			onComplete(path[0])
		}
		return nil
	}

	s.state = &MovementState{
		Path:      append(Path(nil), path...),
		StepIndex: 0,
		IsMoving:  true,
	}
	s.elapsed = 0
	s.onStep = onStep
	s.onComplete = onComplete
	return nil
}

// IsActive reports whether a movement is in flight
func (s *Sequencer) IsActive() bool {
	return s.state != nil
}

// Advance moves the clock forward by dt, completing as many steps as fit.
// Leftover time carries into the next step, so steps never overlap and the
// total playback time is independent of how the clock is sliced.
func (s *Sequencer) Advance(dt time.Duration) {
	if dt <= 0 {
		return
	}
	for s.state != nil {
		from := s.state.Path[s.state.StepIndex]
		to := s.state.Path[s.state.StepIndex+1]
		remaining := stepDuration(from, to, s.timing) - s.elapsed
		if dt < remaining {
			s.elapsed += dt
			return
		}

		dt -= remaining
		s.elapsed = 0
		s.state.StepIndex++

		if s.onStep != nil {
			s.onStep(to)
		}

		if s.state.StepIndex == len(s.state.Path)-1 {
			s.finish(to)
		}
	}
}

// Position returns the interpolated position of the token
func (s *Sequencer) Position() Point {
	if s.state == nil {
		return s.position.Get().Center()
	}
	from := s.state.Path[s.state.StepIndex]
	to := s.state.Path[s.state.StepIndex+1]
	d := stepDuration(from, to, s.timing)
	if d <= 0 {
		return to.Center()
	}
	return Lerp(from, to, float64(s.elapsed)/float64(d))
}

// State returns a copy of the active movement, or nil when idle
func (s *Sequencer) State() *MovementState {
	if s.state == nil {
		return nil
	}
	cp := *s.state
	cp.Path = append(Path(nil), s.state.Path...)
	return &cp
}

// Remaining returns the cells still to be visited, starting with the cell
// the current step departs from
func (s *Sequencer) Remaining() Path {
	if s.state == nil {
		return nil
	}
	return append(Path(nil), s.state.Path[s.state.StepIndex:]...)
}

// Interrupt drops the remaining steps and settles the token on the grid cell
// nearest to its interpolated position. onComplete is not invoked.
func (s *Sequencer) Interrupt() (Cell, bool) {
	if s.state == nil {
		return Cell{}, false
	}
	settled := NearestCell(s.Position())
	s.position.set(settled)
	s.clear()
	return settled, true
}

func (s *Sequencer) finish(final Cell) {
	onComplete := s.onComplete
	s.position.set(final)
	s.clear()
	if onComplete != nil {
		onComplete(final)
	}
}

func (s *Sequencer) clear() {
	s.state = nil
	s.elapsed = 0
	s.onStep = nil
	s.onComplete = nil
}
