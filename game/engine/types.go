package engine

import "time"

// StationType identifies the gameplay role of a station
type StationType string

const (
	Entrance       StationType = "entrance"
	ATM            StationType = "atm"
	HelpDesk       StationType = "helpDesk"
	PaymentStation StationType = "paymentStation"

	// Layout characters
	OpenChar     = '.'
	ObstacleChar = '#'

	// Validation constants
	MinGridSize = 3
	MaxGridSize = 64

	// Branch map defaults
	DefaultCols              = 7
	DefaultHorizontalStepMS  = 380
	DefaultVerticalStepMS    = 180
	DefaultRejectionWindowMS = 2500
	DefaultPointsPerExercise = 20
)

// Cell is a discrete grid coordinate
type Cell struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// Point is a continuous position in grid units; (x, y) is the center of Cell{x, y}
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Center returns the continuous position of the cell center
func (c Cell) Center() Point {
	return Point{X: float64(c.X), Y: float64(c.Y)}
}

// Path is an ordered, obstacle-free, 4-connected sequence of cells
type Path []Cell

// Last returns the final cell of the path. The path must not be empty.
func (p Path) Last() Cell {
	return p[len(p)-1]
}

// Station is a named point of interest on the map
type Station struct {
	Key  string      `json:"key" yaml:"key"`
	Type StationType `json:"type" yaml:"type"`
	X    int         `json:"x" yaml:"x"`
	Y    int         `json:"y" yaml:"y"`
}

// Cell returns the grid cell the station occupies
func (s Station) Cell() Cell {
	return Cell{X: s.X, Y: s.Y}
}

// Targetable reports whether the station can be the destination of a station tap
func (s Station) Targetable() bool {
	return s.Type != Entrance
}

// Dialogue is the conversation shown after a correct arrival
type Dialogue struct {
	Speaker  string   `json:"speaker" yaml:"speaker"`
	Messages []string `json:"messages" yaml:"messages"`
}

// Feedback holds the short texts shown after an arrival
type Feedback struct {
	Correct   string `json:"correct" yaml:"correct"`
	Incorrect string `json:"incorrect" yaml:"incorrect"`
}

// Exercise is one round of the mini-game with a designated target station
type Exercise struct {
	ID            string   `json:"id" yaml:"id"`
	Title         string   `json:"title,omitempty" yaml:"title,omitempty"`
	Statement     string   `json:"statement,omitempty" yaml:"statement,omitempty"`
	TargetStation string   `json:"target_station" yaml:"target_station"`
	Dialogue      Dialogue `json:"dialogue" yaml:"dialogue"`
	Feedback      Feedback `json:"feedback" yaml:"feedback"`
	Points        int      `json:"points,omitempty" yaml:"points,omitempty"`
}

// Timing holds the pacing parameters of a map, in milliseconds
type Timing struct {
	HorizontalStepMS  int `json:"horizontal_step_ms" yaml:"horizontal_step_ms"`
	VerticalStepMS    int `json:"vertical_step_ms" yaml:"vertical_step_ms"`
	RejectionWindowMS int `json:"rejection_window_ms" yaml:"rejection_window_ms"`
}

// HorizontalStep is the duration of one left/right step
func (t Timing) HorizontalStep() time.Duration {
	return time.Duration(t.HorizontalStepMS) * time.Millisecond
}

// VerticalStep is the duration of one up/down step
func (t Timing) VerticalStep() time.Duration {
	return time.Duration(t.VerticalStepMS) * time.Millisecond
}

// RejectionWindow is how long an incorrect arrival keeps input blocked
func (t Timing) RejectionWindow() time.Duration {
	return time.Duration(t.RejectionWindowMS) * time.Millisecond
}

// DefaultTiming returns the pacing of the branch map
func DefaultTiming() Timing {
	return Timing{
		HorizontalStepMS:  DefaultHorizontalStepMS,
		VerticalStepMS:    DefaultVerticalStepMS,
		RejectionWindowMS: DefaultRejectionWindowMS,
	}
}

// MapConfig describes one mini-game map and its exercise sequence
type MapConfig struct {
	Name              string     `json:"name" yaml:"name"`
	Description       string     `json:"description" yaml:"description"`
	Cols              int        `json:"cols" yaml:"cols"`
	Rows              int        `json:"rows" yaml:"rows"`
	Layout            []string   `json:"layout" yaml:"layout"`
	Stations          []Station  `json:"stations" yaml:"stations"`
	Spawn             Cell       `json:"spawn" yaml:"spawn"`
	Timing            Timing     `json:"timing" yaml:"timing"`
	PointsPerExercise int        `json:"points_per_exercise" yaml:"points_per_exercise"`
	Exercises         []Exercise `json:"exercises" yaml:"exercises"`
}

// PointsFor returns the points awarded for completing the exercise
func (c *MapConfig) PointsFor(ex Exercise) int {
	if ex.Points > 0 {
		return ex.Points
	}
	if c.PointsPerExercise > 0 {
		return c.PointsPerExercise
	}
	return DefaultPointsPerExercise
}

// AttemptEntry records one resolved station arrival
type AttemptEntry struct {
	ID         string    `json:"id"`
	ExerciseID string    `json:"exercise_id"`
	StationKey string    `json:"station_key"`
	Correct    bool      `json:"correct"`
	Points     int       `json:"points"`
	Position   Cell      `json:"position"`
	Timestamp  time.Time `json:"timestamp"`
	Number     int       `json:"number"`
}
