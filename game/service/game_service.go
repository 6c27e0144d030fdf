package service

import (
	"context"
	"time"

	"github.com/wricardo/bank-branch-game/game/engine"
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, configName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Game Operations
	TapCell(ctx context.Context, sessionID string, x, y int) (*ActionResult, error)
	TapStation(ctx context.Context, sessionID, stationKey string) (*ActionResult, error)
	AdvanceDialogue(ctx context.Context, sessionID string) (*DialogueResult, error)
	DismissDialogue(ctx context.Context, sessionID string) (*ActionResult, error)
	Reset(ctx context.Context, sessionID string) (*ActionResult, error)

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*engine.GameSnapshot, error)
	PlanPath(ctx context.Context, sessionID string, req PlanRequest) (*PlanResult, error)
	GetAttemptHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*MapInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.MapConfig, error)
	SaveConfig(ctx context.Context, configName string, config *engine.MapConfig) error

	// Movement clock
	Tick(ctx context.Context, dt time.Duration) int
	Run(ctx context.Context, interval time.Duration)
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, config *engine.MapConfig) (*Session, error)
	Get(id string) (*Session, error)
	GetOrCreate(id string, config *engine.MapConfig) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
}

// ConfigManager handles map configuration loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.MapConfig, error)
	ListConfigs() ([]*MapInfo, error)
	GetDefault() *engine.MapConfig
	SaveConfig(name string, config *engine.MapConfig) error
}

// Notifier pushes live updates to the clients watching a session
type Notifier interface {
	BroadcastToSession(sessionID string, state *engine.GameSnapshot)
	BroadcastEvent(sessionID string, event string, data interface{})
}

// Session represents an active game session
type Session struct {
	ID             string
	Game           *engine.Game
	Config         *engine.MapConfig
	ConfigID       string
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
