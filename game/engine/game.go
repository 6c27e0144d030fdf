package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Run-level events emitted by Game in addition to controller events
const (
	EventExerciseStarted EventType = "exercise_started"
	EventRunFinished     EventType = "run_finished"
)

// GameOptions tunes a Game
type GameOptions struct {
	// Position is shared with an earlier run when set; otherwise the token
	// starts on the map's spawn cell.
	Position *PlayerPosition
	Listener Listener
}

// GameSnapshot is the full view of a run for presentation layers
type GameSnapshot struct {
	MapName       string             `json:"map_name"`
	Cols          int                `json:"cols"`
	Rows          int                `json:"rows"`
	Layout        []string           `json:"layout"`
	Stations      []Station          `json:"stations"`
	Exercise      Exercise           `json:"exercise"`
	ExerciseIndex int                `json:"exercise_index"`
	ExerciseCount int                `json:"exercise_count"`
	Score         int                `json:"score"`
	Finished      bool               `json:"finished"`
	Message       string             `json:"message"`
	Attempts      int                `json:"attempts"`
	Controller    ControllerSnapshot `json:"controller"`
}

// Game owns one run through a map's exercises. It keeps a single
// PlayerPosition for the whole run and hands it to a fresh Controller for
// every exercise, so the token stays where the previous exercise left it.
type Game struct {
	mu sync.Mutex

	config   *MapConfig
	grid     *Grid
	finder   *PathFinder
	position *PlayerPosition
	listener Listener

	controller *Controller
	index      int
	score      int
	finished   bool
	message    string
	attempts   []AttemptEntry
}

// NewGame creates a run over the provided map configuration
func NewGame(config *MapConfig, opts GameOptions) (*Game, error) {
	if err := ValidateMapConfig(config); err != nil {
		return nil, err
	}
	grid, err := NewGridFromConfig(config)
	if err != nil {
		return nil, err
	}

	position := opts.Position
	if position == nil {
		position = NewPlayerPosition(config.Spawn)
	} else if grid.IsBlocked(position.Get()) {
		return nil, fmt.Errorf("%w: shared position (%d,%d) is blocked on map %q",
			ErrInvalidMap, position.Get().X, position.Get().Y, config.Name)
	}

	g := &Game{
		config:   config,
		grid:     grid,
		finder:   NewPathFinder(grid),
		position: position,
		listener: opts.Listener,
	}
	if _, err := g.startExercise(0); err != nil {
		return nil, err
	}
	return g, nil
}

// NewGameWithDefaults creates a run on the default branch map
func NewGameWithDefaults(rows int) *Game {
	g, err := NewGame(DefaultMapConfig(rows), GameOptions{})
	if err != nil {
		panic(fmt.Sprintf("default branch map is invalid: %v", err))
	}
	return g
}

// Config returns the map configuration
func (g *Game) Config() *MapConfig {
	return g.config
}

// Grid returns the map grid
func (g *Game) Grid() *Grid {
	return g.grid
}

// PlayerPosition returns the shared settled position
func (g *Game) PlayerPosition() *PlayerPosition {
	return g.position
}

// Score returns the points earned in this run
func (g *Game) Score() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.score
}

// Finished reports whether every exercise has been completed
func (g *Game) Finished() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.finished
}

// Exercise returns the current exercise and its index
func (g *Game) Exercise() (Exercise, int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.config.Exercises[g.index], g.index
}

// State returns the phase of the current exercise
func (g *Game) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.controller.State()
}

// Busy reports whether taps are currently ignored
func (g *Game) Busy() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.controller.Busy()
}

// Attempts returns every resolved station arrival, oldest first
func (g *Game) Attempts() []AttemptEntry {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]AttemptEntry, len(g.attempts))
	copy(out, g.attempts)
	return out
}

// TapCell forwards a free-cell tap to the current exercise
func (g *Game) TapCell(target Cell) TapResult {
	g.mu.Lock()
	result := g.controller.TapCell(target)
	result.Events = g.observe(result.Events)
	g.mu.Unlock()

	g.dispatch(result.Events)
	return result
}

// TapStation forwards a station tap to the current exercise
func (g *Game) TapStation(key string) TapResult {
	g.mu.Lock()
	result := g.controller.TapStation(key)
	result.Events = g.observe(result.Events)
	g.mu.Unlock()

	g.dispatch(result.Events)
	return result
}

// Tick advances the clock of the current exercise
func (g *Game) Tick(dt time.Duration) []Event {
	g.mu.Lock()
	events := g.observe(g.controller.Tick(dt))
	g.mu.Unlock()

	g.dispatch(events)
	return events
}

// AdvanceDialogue pages the dialogue of the current exercise
func (g *Game) AdvanceDialogue() (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.controller.AdvanceDialogue()
}

// DismissDialogue closes the dialogue, scores the exercise and moves on to
// the next one. After the last exercise a run_finished event is emitted.
func (g *Game) DismissDialogue() ([]Event, error) {
	g.mu.Lock()
	if g.finished {
		g.mu.Unlock()
		return nil, ErrRunFinished
	}
	events, err := g.controller.DismissDialogue()
	if err != nil {
		g.mu.Unlock()
		return nil, err
	}
	events = g.observe(events)
	g.mu.Unlock()

	g.dispatch(events)
	return events, nil
}

// Reset interrupts any movement and restarts the run at the first exercise.
// The token keeps its position and the attempt history is preserved.
func (g *Game) Reset() []Event {
	g.mu.Lock()
	events := g.controller.Interrupt()
	g.score = 0
	g.finished = false
	started, err := g.startExercise(0)
	if err == nil {
		events = append(events, started...)
	}
	g.mu.Unlock()

	g.dispatch(events)
	return events
}

// PlanPath previews the path a free tap on target would take, without moving
func (g *Game) PlanPath(target Cell) Path {
	return g.finder.FindPath(g.position.Get(), target)
}

// PlanStation previews the walk a station tap would take, without moving.
// The returned cell is the open cell next to the station that would be used.
func (g *Game) PlanStation(key string) (Cell, Path, error) {
	station, ok := g.grid.Station(key)
	if !ok {
		return Cell{}, nil, fmt.Errorf("%w: %q", ErrUnknownStation, key)
	}
	start := g.position.Get()
	if IsAdjacent(start, station.Cell()) {
		return start, Path{start}, nil
	}
	target, ok := g.grid.AdjacentOpenCell(station.Cell(), start)
	if !ok {
		return Cell{}, nil, fmt.Errorf("%w: station %q", ErrNoAdjacentCell, key)
	}
	return target, g.finder.FindPath(start, target), nil
}

// Snapshot returns the full state of the run
func (g *Game) Snapshot() GameSnapshot {
	g.mu.Lock()
	defer g.mu.Unlock()

	layout := make([]string, len(g.config.Layout))
	copy(layout, g.config.Layout)

	return GameSnapshot{
		MapName:       g.config.Name,
		Cols:          g.grid.Cols(),
		Rows:          g.grid.Rows(),
		Layout:        layout,
		Stations:      g.grid.Stations(),
		Exercise:      g.config.Exercises[g.index],
		ExerciseIndex: g.index,
		ExerciseCount: len(g.config.Exercises),
		Score:         g.score,
		Finished:      g.finished,
		Message:       g.message,
		Attempts:      len(g.attempts),
		Controller:    g.controller.Snapshot(),
	}
}

// startExercise replaces the controller; callers hold g.mu
func (g *Game) startExercise(index int) ([]Event, error) {
	ex := g.config.Exercises[index]
	c, err := NewController(g.grid, g.finder, g.position, ex, ControllerOptions{
		Timing: g.config.Timing,
		Points: g.config.PointsFor(ex),
	})
	if err != nil {
		return nil, err
	}
	g.controller = c
	g.index = index
	g.message = ex.Statement
	return []Event{{Type: EventExerciseStarted, StationKey: ex.TargetStation, Message: ex.Statement}}, nil
}

// observe records attempts and advances the run; callers hold g.mu
func (g *Game) observe(events []Event) []Event {
	out := events
	for _, e := range events {
		switch e.Type {
		case EventDialogue:
			g.record(e.StationKey, true, 0)
			g.message = e.Message
		case EventRejected:
			g.record(e.StationKey, false, 0)
			g.message = e.Message
		case EventCompleted:
			g.score += e.Points
			if n := len(g.attempts); n > 0 {
				g.attempts[n-1].Points = e.Points
			}
			if g.index+1 < len(g.config.Exercises) {
				started, err := g.startExercise(g.index + 1)
				if err == nil {
					out = append(out, started...)
				}
				continue
			}
			g.finished = true
			g.message = fmt.Sprintf("Run complete: %d points", g.score)
			out = append(out, Event{Type: EventRunFinished, Points: g.score, Message: g.message})
		}
	}
	return out
}

func (g *Game) record(stationKey string, correct bool, points int) {
	g.attempts = append(g.attempts, AttemptEntry{
		ID:         uuid.NewString(),
		ExerciseID: g.config.Exercises[g.index].ID,
		StationKey: stationKey,
		Correct:    correct,
		Points:     points,
		Position:   g.position.Get(),
		Timestamp:  time.Now(),
		Number:     len(g.attempts) + 1,
	})
}

func (g *Game) dispatch(events []Event) {
	if g.listener == nil {
		return
	}
	for _, e := range events {
		g.listener.HandleEvent(e)
	}
}
