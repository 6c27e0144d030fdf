package engine

import (
	"fmt"
	"sync"
	"time"
)

// State is the phase of one mini-game attempt
type State string

const (
	StateIdle      State = "idle"
	StatePlanning  State = "planning"
	StateMoving    State = "moving"
	StateResolving State = "resolving"
	StateDialogue  State = "dialogue"
	StateRejected  State = "rejected"
)

// Reasons reported when a tap is ignored
const (
	ReasonBusy           = "busy"
	ReasonBlocked        = "blocked"
	ReasonOutOfBounds    = "out_of_bounds"
	ReasonNoPath         = "no_path"
	ReasonAlreadyThere   = "already_there"
	ReasonUnknownStation = "unknown_station"
	ReasonNotATarget     = "not_a_target"
	ReasonCompleted      = "exercise_completed"
	ReasonStationCell    = "station_cell"
)

// EventType names the notifications a Controller emits
type EventType string

const (
	EventStep             EventType = "step"
	EventArrived          EventType = "arrived"
	EventDialogue         EventType = "dialogue"
	EventRejected         EventType = "rejected"
	EventRejectionCleared EventType = "rejection_cleared"
	EventCompleted        EventType = "completed"
	EventInterrupted      EventType = "interrupted"
)

// Event is a notification for the surrounding screen
type Event struct {
	Type       EventType `json:"type"`
	Cell       *Cell     `json:"cell,omitempty"`
	StationKey string    `json:"station_key,omitempty"`
	Points     int       `json:"points,omitempty"`
	Message    string    `json:"message,omitempty"`
	Dialogue   *Dialogue `json:"dialogue,omitempty"`
}

// Listener receives controller events. Events are delivered after the
// controller has released its lock, in the order they happened.
type Listener interface {
	HandleEvent(Event)
}

// ListenerFunc adapts a function to the Listener interface
type ListenerFunc func(Event)

// HandleEvent calls f(e)
func (f ListenerFunc) HandleEvent(e Event) {
	f(e)
}

// TapResult reports how a tap was handled
type TapResult struct {
	Accepted bool    `json:"accepted"`
	Reason   string  `json:"reason,omitempty"`
	Target   *Cell   `json:"target,omitempty"`
	Path     Path    `json:"path,omitempty"`
	Events   []Event `json:"events,omitempty"`
}

// ControllerOptions tunes a Controller
type ControllerOptions struct {
	Timing   Timing
	Points   int
	Listener Listener
}

// ControllerSnapshot is a point-in-time view for presentation layers
type ControllerSnapshot struct {
	State                State          `json:"state"`
	Busy                 bool           `json:"busy"`
	Position             Point          `json:"position"`
	Settled              Cell           `json:"settled"`
	Movement             *MovementState `json:"movement,omitempty"`
	RemainingPath        Path           `json:"remaining_path,omitempty"`
	TargetStation        string         `json:"target_station"`
	HeadingTo            string         `json:"heading_to,omitempty"`
	Dialogue             *Dialogue      `json:"dialogue,omitempty"`
	DialogueIndex        int            `json:"dialogue_index"`
	RejectedStation      string         `json:"rejected_station,omitempty"`
	RejectionRemainingMS int64          `json:"rejection_remaining_ms,omitempty"`
	Completed            bool           `json:"completed"`
}

// Controller orchestrates one exercise attempt: it accepts taps, plans a
// path, plays it back through a Sequencer and judges station arrivals.
// All methods are safe for concurrent use; the settled PlayerPosition and
// the active movement are guarded by the same lock.
type Controller struct {
	mu sync.Mutex

	grid     *Grid
	finder   *PathFinder
	position *PlayerPosition
	seq      *Sequencer
	resolver Resolver
	exercise Exercise
	points   int
	timing   Timing
	listener Listener

	state         State
	headingTo     string
	dialogueIndex int
	rejectionLeft time.Duration
	completed     bool

	events []Event
}

// NewController creates a controller for one exercise. position is shared
// with whoever owns the player and is only written on movement completion.
func NewController(grid *Grid, finder *PathFinder, position *PlayerPosition, ex Exercise, opts ControllerOptions) (*Controller, error) {
	target, ok := grid.Station(ex.TargetStation)
	if !ok {
		return nil, fmt.Errorf("%w: exercise %q targets %q", ErrUnknownStation, ex.ID, ex.TargetStation)
	}
	if !target.Targetable() {
		return nil, fmt.Errorf("%w: exercise %q targets %s station %q", ErrInvalidMap, ex.ID, target.Type, target.Key)
	}

	return &Controller{
		grid:     grid,
		finder:   finder,
		position: position,
		seq:      NewSequencer(opts.Timing, position),
		exercise: ex,
		points:   opts.Points,
		timing:   opts.Timing,
		listener: opts.Listener,
		state:    StateIdle,
	}, nil
}

// Exercise returns the exercise this controller judges against
func (c *Controller) Exercise() Exercise {
	return c.exercise
}

// State returns the current phase
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Busy reports whether taps are currently ignored
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state != StateIdle
}

// IsMoving reports whether a movement is in flight
func (c *Controller) IsMoving() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seq.IsActive()
}

// Completed reports whether the exercise has been finished
func (c *Controller) Completed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.completed
}

// TapCell requests a walk to a free cell
func (c *Controller) TapCell(target Cell) TapResult {
	c.mu.Lock()
	result := c.tapCell(target)
	result.Events = c.drain()
	c.mu.Unlock()

	c.dispatch(result.Events)
	return result
}

func (c *Controller) tapCell(target Cell) TapResult {
	if c.state != StateIdle {
		return ignored(ReasonBusy)
	}
	if c.completed {
		return ignored(ReasonCompleted)
	}
	if !c.grid.InBounds(target) {
		return ignored(ReasonOutOfBounds)
	}
	if c.grid.IsBlocked(target) {
		return ignored(ReasonBlocked)
	}
	// station cells are tapped as stations; paths may still cross open ones
	if _, ok := c.grid.StationAt(target); ok {
		return ignored(ReasonStationCell)
	}

	c.state = StatePlanning
	path := c.finder.FindPath(c.position.Get(), target)
	switch {
	case len(path) == 0:
		c.state = StateIdle
		return ignored(ReasonNoPath)
	case len(path) == 1:
		c.state = StateIdle
		return ignored(ReasonAlreadyThere)
	}

	c.headingTo = ""
	c.state = StateMoving
	if err := c.seq.Start(path, c.onStep, c.onArrive); err != nil {
		c.state = StateIdle
		return ignored(ReasonBusy)
	}
	return TapResult{Accepted: true, Target: &target, Path: path}
}

// TapStation requests a walk to the open cell next to a station; arriving
// there resolves the station against the exercise target. If the token is
// already next to the station the arrival is resolved without moving.
func (c *Controller) TapStation(key string) TapResult {
	c.mu.Lock()
	result := c.tapStation(key)
	result.Events = c.drain()
	c.mu.Unlock()

	c.dispatch(result.Events)
	return result
}

func (c *Controller) tapStation(key string) TapResult {
	if c.state != StateIdle {
		return ignored(ReasonBusy)
	}
	if c.completed {
		return ignored(ReasonCompleted)
	}
	station, ok := c.grid.Station(key)
	if !ok {
		return ignored(ReasonUnknownStation)
	}
	if !station.Targetable() {
		return ignored(ReasonNotATarget)
	}

	start := c.position.Get()
	if IsAdjacent(start, station.Cell()) {
		c.state = StateResolving
		c.resolve(station)
		return TapResult{Accepted: true, Target: &start, Path: Path{start}}
	}

	target, ok := c.grid.AdjacentOpenCell(station.Cell(), start)
	if !ok {
		return ignored(ReasonNoPath)
	}

	c.state = StatePlanning
	path := c.finder.FindPath(start, target)
	if len(path) == 0 {
		c.state = StateIdle
		return ignored(ReasonNoPath)
	}

	c.headingTo = key
	c.state = StateMoving
	if err := c.seq.Start(path, c.onStep, c.onArrive); err != nil {
		c.headingTo = ""
		c.state = StateIdle
		return ignored(ReasonBusy)
	}
	return TapResult{Accepted: true, Target: &target, Path: path}
}

// Tick advances the movement clock and the rejection window by dt
func (c *Controller) Tick(dt time.Duration) []Event {
	if dt < 0 {
		dt = 0
	}
	c.mu.Lock()
	switch c.state {
	case StateMoving:
		c.seq.Advance(dt)
	case StateRejected:
		c.rejectionLeft -= dt
		if c.rejectionLeft <= 0 {
			c.clearRejection()
		}
	}
	events := c.drain()
	c.mu.Unlock()

	c.dispatch(events)
	return events
}

// AdvanceDialogue pages to the next dialogue message and returns its index.
// The index stops at the last message.
func (c *Controller) AdvanceDialogue() (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateDialogue {
		return 0, ErrNotInDialogue
	}
	if c.dialogueIndex < len(c.exercise.Dialogue.Messages)-1 {
		c.dialogueIndex++
	}
	return c.dialogueIndex, nil
}

// DismissDialogue closes the dialogue and completes the exercise, emitting
// a completed event carrying the awarded points
func (c *Controller) DismissDialogue() ([]Event, error) {
	c.mu.Lock()
	if c.state != StateDialogue {
		c.mu.Unlock()
		return nil, ErrNotInDialogue
	}

	c.state = StateIdle
	c.completed = true
	c.dialogueIndex = 0
	c.emit(Event{Type: EventCompleted, Points: c.points, StationKey: c.exercise.TargetStation})
	events := c.drain()
	c.mu.Unlock()

	c.dispatch(events)
	return events, nil
}

// Interrupt stops an in-flight movement, settling the token on the nearest
// cell. Station resolution for the interrupted walk is skipped.
func (c *Controller) Interrupt() []Event {
	c.mu.Lock()
	if c.state == StateMoving {
		if cell, ok := c.seq.Interrupt(); ok {
			c.emit(Event{Type: EventInterrupted, Cell: &cell})
		}
		c.headingTo = ""
		c.state = StateIdle
	}
	events := c.drain()
	c.mu.Unlock()

	c.dispatch(events)
	return events
}

// Snapshot returns the live state for rendering
func (c *Controller) Snapshot() ControllerSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := ControllerSnapshot{
		State:         c.state,
		Busy:          c.state != StateIdle,
		Position:      c.seq.Position(),
		Settled:       c.position.Get(),
		Movement:      c.seq.State(),
		RemainingPath: c.seq.Remaining(),
		TargetStation: c.exercise.TargetStation,
		HeadingTo:     c.headingTo,
		DialogueIndex: c.dialogueIndex,
		Completed:     c.completed,
	}
	if c.state == StateDialogue {
		d := c.exercise.Dialogue
		snap.Dialogue = &d
	}
	if key, ok := c.resolver.Rejected(); ok {
		snap.RejectedStation = key
		snap.RejectionRemainingMS = c.rejectionLeft.Milliseconds()
	}
	return snap
}

func (c *Controller) onStep(cell Cell) {
	c.emit(Event{Type: EventStep, Cell: &cell})
}

func (c *Controller) onArrive(cell Cell) {
	c.emit(Event{Type: EventArrived, Cell: &cell, StationKey: c.headingTo})

	if c.headingTo == "" {
		c.state = StateIdle
		return
	}
	station, ok := c.grid.Station(c.headingTo)
	c.headingTo = ""
	if !ok {
		c.state = StateIdle
		return
	}
	c.state = StateResolving
	c.resolve(station)
}

func (c *Controller) resolve(station Station) {
	outcome := c.resolver.ResolveArrival(station, c.exercise)
	if outcome.Correct {
		c.state = StateDialogue
		c.dialogueIndex = 0
		d := c.exercise.Dialogue
		c.emit(Event{
			Type:       EventDialogue,
			StationKey: outcome.StationKey,
			Message:    c.exercise.Feedback.Correct,
			Dialogue:   &d,
		})
		return
	}

	c.state = StateRejected
	c.rejectionLeft = c.timing.RejectionWindow()
	c.emit(Event{
		Type:       EventRejected,
		StationKey: outcome.StationKey,
		Message:    c.exercise.Feedback.Incorrect,
	})
	if c.rejectionLeft <= 0 {
		c.clearRejection()
	}
}

func (c *Controller) clearRejection() {
	key, _ := c.resolver.Rejected()
	c.resolver.ClearRejection()
	c.rejectionLeft = 0
	c.state = StateIdle
	c.emit(Event{Type: EventRejectionCleared, StationKey: key})
}

func (c *Controller) emit(e Event) {
	c.events = append(c.events, e)
}

func (c *Controller) drain() []Event {
	events := c.events
	c.events = nil
	return events
}

func (c *Controller) dispatch(events []Event) {
	if c.listener == nil {
		return
	}
	for _, e := range events {
		c.listener.HandleEvent(e)
	}
}

func ignored(reason string) TapResult {
	return TapResult{Accepted: false, Reason: reason}
}
