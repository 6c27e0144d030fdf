package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/wricardo/bank-branch-game/game/engine"
)

// DefaultTickInterval is how often Run advances the movement clock
const DefaultTickInterval = 50 * time.Millisecond

// reasonMessages explains ignored taps to players
var reasonMessages = map[string]string{
	engine.ReasonBusy:           "Wait for the current action to finish",
	engine.ReasonBlocked:        "That spot is blocked",
	engine.ReasonOutOfBounds:    "That spot is outside the branch",
	engine.ReasonNoPath:         "There is no way to get there",
	engine.ReasonAlreadyThere:   "You are already there",
	engine.ReasonUnknownStation: "There is no such station",
	engine.ReasonNotATarget:     "That is the way out",
	engine.ReasonCompleted:      "This exercise is already complete",
	engine.ReasonStationCell:    "Tap the station itself to visit it",
}

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	notifier Notifier
	mu       sync.RWMutex
}

// NewGameService creates a new game service instance. notifier may be nil.
func NewGameService(sessions SessionManager, configs ConfigManager, notifier Notifier) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
		notifier: notifier,
	}
}

// getConfigID returns the config_id for a given map name, used for consistent API responses
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	if configName == "" {
		return "default"
	}
	return configName
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var config *engine.MapConfig
	var err error
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			if errors.Is(err, ErrConfigNotFound) {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("%w: '%s'. Available configs: %v", ErrConfigNotFound, configName, configIDs)
				}
				return nil, fmt.Errorf("%w: '%s'. Use /api/configs to list available maps", ErrConfigNotFound, configName)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	session, err := s.sessions.Create("", config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	configID := configName
	if configID == "" {
		configID = s.getConfigID(config.Name)
	}
	session.ConfigID = configID

	return s.sessionInfo(session), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	s.sessions.UpdateLastAccessed(sessionID)
	return s.sessionInfo(session), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return fmt.Errorf("%w: %v", ErrSessionNotFound, err)
	}
	return nil
}

// TapCell asks the session's token to walk to a free cell
func (s *gameServiceImpl) TapCell(ctx context.Context, sessionID string, x, y int) (*ActionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	s.sessions.UpdateLastAccessed(sessionID)

	tap := sess.Game.TapCell(engine.Cell{X: x, Y: y})
	return s.actionResult(sess, tap, sess.Config.Timing), nil
}

// TapStation asks the session's token to walk to a station and be judged there
func (s *gameServiceImpl) TapStation(ctx context.Context, sessionID, stationKey string) (*ActionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	s.sessions.UpdateLastAccessed(sessionID)

	tap := sess.Game.TapStation(stationKey)
	return s.actionResult(sess, tap, sess.Config.Timing), nil
}

// AdvanceDialogue pages to the next dialogue message
func (s *gameServiceImpl) AdvanceDialogue(ctx context.Context, sessionID string) (*DialogueResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	s.sessions.UpdateLastAccessed(sessionID)

	idx, err := sess.Game.AdvanceDialogue()
	if err != nil {
		return nil, err
	}

	snap := sess.Game.Snapshot()
	dialogue := snap.Exercise.Dialogue
	result := &DialogueResult{
		Speaker:   dialogue.Speaker,
		Index:     idx,
		Total:     len(dialogue.Messages),
		IsLast:    idx == len(dialogue.Messages)-1,
		GameState: &snap,
	}
	if idx < len(dialogue.Messages) {
		result.Text = dialogue.Messages[idx]
	}
	s.notifyState(sess.ID, &snap)
	return result, nil
}

// DismissDialogue completes the current exercise and moves to the next one
func (s *gameServiceImpl) DismissDialogue(ctx context.Context, sessionID string) (*ActionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	s.sessions.UpdateLastAccessed(sessionID)

	events, err := sess.Game.DismissDialogue()
	if err != nil {
		return nil, err
	}
	return s.actionResult(sess, engine.TapResult{Accepted: true, Events: events}, sess.Config.Timing), nil
}

// Reset restarts the run at the first exercise without moving the token
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*ActionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	s.sessions.UpdateLastAccessed(sessionID)

	events := sess.Game.Reset()
	return s.actionResult(sess, engine.TapResult{Accepted: true, Events: events}, sess.Config.Timing), nil
}

// GetGameState retrieves the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	s.sessions.UpdateLastAccessed(sessionID)

	snap := sess.Game.Snapshot()
	return &snap, nil
}

// PlanPath runs a dry-run search from the current settled position
func (s *gameServiceImpl) PlanPath(ctx context.Context, sessionID string, req PlanRequest) (*PlanResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	from := sess.Game.PlayerPosition().Get()
	var target engine.Cell
	var path engine.Path

	switch {
	case req.Station != "":
		target, path, err = sess.Game.PlanStation(req.Station)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
	case req.X != nil && req.Y != nil:
		target = engine.Cell{X: *req.X, Y: *req.Y}
		path = sess.Game.PlanPath(target)
	default:
		return nil, fmt.Errorf("%w: either station or x and y are required", ErrInvalidRequest)
	}

	result := &PlanResult{
		From:      from,
		Target:    target,
		Reachable: len(path) > 0,
		Path:      path,
	}
	if result.Reachable {
		result.Steps = len(path) - 1
		result.DurationMS = engine.PathDuration(path, sess.Config.Timing).Milliseconds()
	}
	return result, nil
}

// GetAttemptHistory returns paginated attempt history
func (s *gameServiceImpl) GetAttemptHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	history := sess.Game.Attempts()
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	attempts := []engine.AttemptEntry{}
	if start < total {
		if opts.Order == "desc" {
			// Most recent first
			for i := total - 1 - start; i >= total-end; i-- {
				attempts = append(attempts, history[i])
			}
		} else {
			attempts = append(attempts, history[start:end]...)
		}
	}

	return &HistoryResponse{
		Attempts:      attempts,
		TotalAttempts: total,
		Page:          opts.Page,
		PageSize:      opts.Limit,
		TotalPages:    totalPages,
		HasNext:       opts.Page < totalPages,
		HasPrevious:   opts.Page > 1,
	}, nil
}

// ListConfigs returns available map configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*MapInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific map configuration
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.MapConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a map configuration to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.MapConfig) error {
	return s.configs.SaveConfig(configName, config)
}

// Tick advances the movement clock of every session that is walking or
// showing a rejection, and streams what happened. It returns the number of
// sessions that were advanced.
func (s *gameServiceImpl) Tick(ctx context.Context, dt time.Duration) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	advanced := 0
	for _, sess := range s.sessions.List() {
		if ctx.Err() != nil {
			break
		}
		state := sess.Game.State()
		if state != engine.StateMoving && state != engine.StateRejected {
			continue
		}
		advanced++

		events := sess.Game.Tick(dt)
		if s.notifier == nil {
			continue
		}

		snap := sess.Game.Snapshot()
		if state == engine.StateMoving {
			update := PositionUpdate{
				Position:  snap.Controller.Position,
				Settled:   snap.Controller.Settled,
				Remaining: snap.Controller.RemainingPath,
			}
			if snap.Controller.Movement != nil {
				update.StepIndex = snap.Controller.Movement.StepIndex
			}
			s.notifier.BroadcastEvent(sess.ID, "position", update)
		}
		for _, e := range toGameEvents(events) {
			s.notifier.BroadcastEvent(sess.ID, e.Type, e)
		}
		if len(events) > 0 {
			s.notifier.BroadcastToSession(sess.ID, &snap)
		}
	}
	return advanced
}

// Run drives Tick at the given interval until ctx is cancelled. The real
// elapsed time is passed to Tick so a late tick does not slow the token down.
func (s *gameServiceImpl) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Printf("[TICK] movement clock started (interval=%v)", interval)
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			log.Printf("[TICK] movement clock stopped")
			return
		case now := <-ticker.C:
			s.Tick(ctx, now.Sub(last))
			last = now
		}
	}
}

// getSession looks a session up and wraps lookup failures in ErrSessionNotFound
func (s *gameServiceImpl) getSession(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	return sess, nil
}

func (s *gameServiceImpl) sessionInfo(sess *Session) *SessionInfo {
	configID := sess.ConfigID
	if configID == "" {
		configID = s.getConfigID(sess.Config.Name)
	}
	snap := sess.Game.Snapshot()
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     configID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      &snap,
	}
}

// actionResult converts an engine result and streams its events
func (s *gameServiceImpl) actionResult(sess *Session, tap engine.TapResult, timing engine.Timing) *ActionResult {
	snap := sess.Game.Snapshot()
	result := &ActionResult{
		Accepted:  tap.Accepted,
		Reason:    tap.Reason,
		Target:    tap.Target,
		Path:      tap.Path,
		Events:    toGameEvents(tap.Events),
		Message:   snap.Message,
		GameState: &snap,
	}
	if len(tap.Path) > 1 {
		result.DurationMS = engine.PathDuration(tap.Path, timing).Milliseconds()
	}
	if !tap.Accepted {
		if msg, ok := reasonMessages[tap.Reason]; ok {
			result.Message = msg
		}
	}

	if s.notifier != nil && tap.Accepted {
		for _, e := range result.Events {
			s.notifier.BroadcastEvent(sess.ID, e.Type, e)
		}
		s.notifyState(sess.ID, &snap)
	}
	return result
}

// notifyState pushes a snapshot to the session's live subscribers, if any
func (s *gameServiceImpl) notifyState(sessionID string, snap *engine.GameSnapshot) {
	if s.notifier == nil {
		return
	}
	s.notifier.BroadcastToSession(sessionID, snap)
}

func toGameEvents(events []engine.Event) []GameEvent {
	if len(events) == 0 {
		return nil
	}
	now := time.Now()
	out := make([]GameEvent, 0, len(events))
	for _, e := range events {
		out = append(out, GameEvent{
			Type:       string(e.Type),
			Message:    e.Message,
			Timestamp:  now,
			Cell:       e.Cell,
			StationKey: e.StationKey,
			Points:     e.Points,
			Dialogue:   e.Dialogue,
		})
	}
	return out
}

// IsConflict reports whether err comes from acting in the wrong dialogue or run phase
func IsConflict(err error) bool {
	return errors.Is(err, engine.ErrNotInDialogue) || errors.Is(err, engine.ErrRunFinished)
}
