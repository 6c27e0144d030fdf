package service

import (
	"errors"
	"time"

	"github.com/wricardo/bank-branch-game/game/engine"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrConfigNotFound  = errors.New("configuration not found")
	ErrInvalidConfig   = errors.New("invalid configuration")
	ErrInvalidRequest  = errors.New("invalid request")
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string               `json:"id"`
	ConfigName     string               `json:"config_name"`
	CreatedAt      time.Time            `json:"created_at"`
	LastAccessedAt time.Time            `json:"last_accessed_at"`
	GameState      *engine.GameSnapshot `json:"game_state"`
}

// ActionResult contains the result of a tap, dismissal or reset
type ActionResult struct {
	Accepted   bool                 `json:"accepted"`
	Reason     string               `json:"reason,omitempty"`
	Target     *engine.Cell         `json:"target,omitempty"`
	Path       engine.Path          `json:"path,omitempty"`
	DurationMS int64                `json:"duration_ms,omitempty"`
	Events     []GameEvent          `json:"events,omitempty"`
	Message    string               `json:"message"`
	GameState  *engine.GameSnapshot `json:"game_state"`
}

// DialogueResult describes the dialogue page being shown
type DialogueResult struct {
	Speaker   string               `json:"speaker"`
	Index     int                  `json:"index"`
	Total     int                  `json:"total"`
	Text      string               `json:"text"`
	IsLast    bool                 `json:"is_last"`
	GameState *engine.GameSnapshot `json:"game_state"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type       string           `json:"type"`
	Message    string           `json:"message,omitempty"`
	Timestamp  time.Time        `json:"timestamp"`
	Cell       *engine.Cell     `json:"cell,omitempty"`
	StationKey string           `json:"station_key,omitempty"`
	Points     int              `json:"points,omitempty"`
	Dialogue   *engine.Dialogue `json:"dialogue,omitempty"`
}

// PositionUpdate is streamed on every tick while the token is moving
type PositionUpdate struct {
	Position  engine.Point `json:"position"`
	Settled   engine.Cell  `json:"settled"`
	StepIndex int          `json:"step_index"`
	Remaining engine.Path  `json:"remaining,omitempty"`
}

// PlanRequest selects what to plan a walk to: a station key or a cell
type PlanRequest struct {
	Station string `json:"station,omitempty"`
	X       *int   `json:"x,omitempty"`
	Y       *int   `json:"y,omitempty"`
}

// PlanResult is a dry-run search from the current position
type PlanResult struct {
	From       engine.Cell `json:"from"`
	Target     engine.Cell `json:"target"`
	Reachable  bool        `json:"reachable"`
	Steps      int         `json:"steps"`
	DurationMS int64       `json:"duration_ms"`
	Path       engine.Path `json:"path,omitempty"`
}

// HistoryOptions configures attempt history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated attempt history
type HistoryResponse struct {
	Attempts      []engine.AttemptEntry `json:"attempts"`
	TotalAttempts int                   `json:"total_attempts"`
	Page          int                   `json:"page"`
	PageSize      int                   `json:"page_size"`
	TotalPages    int                   `json:"total_pages"`
	HasNext       bool                  `json:"has_next"`
	HasPrevious   bool                  `json:"has_previous"`
}

// MapInfo provides information about a map configuration
type MapInfo struct {
	Filename    string   `json:"filename"`
	ConfigID    string   `json:"config_id"` // The identifier to use for session creation
	Name        string   `json:"name"`      // Display name
	Description string   `json:"description"`
	Cols        int      `json:"cols"`
	Rows        int      `json:"rows"`
	Stations    []string `json:"stations"`
	Exercises   int      `json:"exercises"`
}
