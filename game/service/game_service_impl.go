package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/wricardo/mcp-training/autopilot/game/engine"
	"github.com/wricardo/mcp-training/autopilot/game/planner"
	"github.com/wricardo/mcp-training/autopilot/game/telemetry"
	"github.com/wricardo/mcp-training/autopilot/game/world"
)

var (
	// ErrGameOver is returned by autopilot operations on a finished game
	ErrGameOver = errors.New("game is over")
	// ErrSessionNotFound wraps every session lookup failure
	ErrSessionNotFound = errors.New("session not found")
	// ErrUnknownStrategy is returned by Plan for strategies other than goal and explore
	ErrUnknownStrategy = errors.New("unknown strategy")
)

func sessionNotFound(id string, err error) error {
	return fmt.Errorf("%w: %s (%v)", ErrSessionNotFound, id, err)
}

// Option configures the game service
type Option func(*gameServiceImpl)

// WithLogger sets the logger used by the service and the session autopilots
func WithLogger(l *slog.Logger) Option {
	return func(s *gameServiceImpl) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRecorder records every autopilot tick
func WithRecorder(r telemetry.Recorder) Option {
	return func(s *gameServiceImpl) { s.recorder = r }
}

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	recorder telemetry.Recorder
	logger   *slog.Logger
	mu       sync.RWMutex
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager, opts ...Option) GameService {
	s := &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// getConfigID returns the config_id for a scenario display name
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

func (s *gameServiceImpl) sessionInfo(sess *Session, configID string) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     configID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      sess.Engine.GetState(),
		GameConfig:     sess.Config,
	}
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var config *engine.GameConfig
	if configName != "" {
		var err error
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			// Provide helpful error message with available options
			if strings.Contains(err.Error(), "configuration not found") {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("config '%s' not found. Available configs: %v", configName, configIDs)
				}
				return nil, fmt.Errorf("config '%s' not found. Use /api/configs to list available configurations", configName)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	// Let session manager generate a 4-character ID
	sess, err := s.sessions.Create("", config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	configID := configName
	if configID == "" {
		configID = s.getConfigID(config.Name)
	}
	return s.sessionInfo(sess, configID), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, sessionNotFound(sessionID, err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	return s.sessionInfo(sess, s.getConfigID(sess.Config.Name)), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess, s.getConfigID(sess.Config.Name)))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sessions.Delete(sessionID)
}

// lockedSession fetches a session for a mutating operation; the caller holds s.mu
func (s *gameServiceImpl) lockedSession(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, sessionNotFound(sessionID, err)
	}
	s.sessions.UpdateLastAccessed(sessionID)
	return sess, nil
}

func (s *gameServiceImpl) persist(sessionID, operation string) {
	if err := s.sessions.Save(sessionID); err != nil {
		s.logger.Warn("failed to persist session", "session", sessionID, "after", operation, "error", err)
	}
}

// Drive executes a single command for a session
func (s *gameServiceImpl) Drive(ctx context.Context, sessionID, command string, reset bool) (*DriveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.lockedSession(sessionID)
	if err != nil {
		return nil, err
	}

	var events []GameEvent
	if reset {
		s.reset(sess)
		events = append(events, resetEvent())
	}

	result := s.execute(sess, 1, command, false)
	result.Events = append(events, result.Events...)

	s.persist(sessionID, "drive")
	return result, nil
}

// BulkDrive executes commands in sequence until one fails or the game ends
func (s *gameServiceImpl) BulkDrive(ctx context.Context, sessionID string, commands []string, reset bool) (*BulkDriveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.lockedSession(sessionID)
	if err != nil {
		return nil, err
	}

	result := &BulkDriveResult{
		RequestedMoves: len(commands),
		Events:         make([]GameEvent, 0),
		Success:        true,
	}

	if reset {
		s.reset(sess)
		result.Events = append(result.Events, resetEvent())
	}

	start := sess.Engine.GetState()
	result.StartPos = start.Position
	result.StartHealth = start.Health
	startKeys := len(start.Keys)

	// Limit commands to prevent abuse
	if len(commands) > engine.MaxBulkMoves {
		result.Truncated = true
		result.Limit = engine.MaxBulkMoves
		commands = commands[:engine.MaxBulkMoves]
	}

	for i, command := range commands {
		if sess.Engine.IsGameOver() {
			result.StoppedReason = "game already over"
			result.StopReasonCode = gameOverCode(sess.Engine.GetState())
			result.StoppedOnMove = i + 1
			break
		}

		drive := s.execute(sess, i+1, command, false)
		result.Events = append(result.Events, drive.Events...)
		if !drive.Success {
			result.Success = false
			result.StoppedReason = fmt.Sprintf("move %d blocked: %s", i+1, command)
			result.StopReasonCode = StopBlocked
			if !slices.Contains(engine.Commands, command) {
				result.StopReasonCode = StopUnknown
			}
			result.StoppedOnMove = i + 1
			result.AttemptedTo = drive.AttemptedTo
			break
		}

		result.MovesExecuted++
		result.Steps = append(result.Steps, *drive.Step)
	}

	end := sess.Engine.GetState()
	result.GameState = end
	result.EndPos = end.Position
	result.EndHealth = end.Health
	result.KeysGained = len(end.Keys) - startKeys
	result.GameOver = end.GameOver
	result.Message = end.Message
	if result.GameOver && result.StopReasonCode == "" {
		result.StopReasonCode = gameOverCode(end)
	}

	// Decision aids
	result.PossibleCommands = sess.Engine.GetPossibleCommands()
	result.LocalView3x3 = buildLocal3x3(end)
	result.HealthRisk = riskCode(end.HealthRisk)

	s.persist(sessionID, "bulk drive")
	return result, nil
}

// execute drives one command and describes what happened
func (s *gameServiceImpl) execute(sess *Session, idx int, command string, autopilot bool) *DriveResult {
	before := sess.Engine.GetState()
	from, heading, health, keys := before.Position, before.Orientation, before.Health, len(before.Keys)

	var success bool
	if autopilot {
		success = sess.Engine.DriveAutopilot(command)
	} else {
		success = sess.Engine.Drive(command)
	}

	state := sess.Engine.GetState()
	result := &DriveResult{
		Success:   success,
		GameState: state,
		Message:   state.Message,
	}
	if !success {
		result.AttemptedTo = attemptInfo(state, from, heading, command)
		return result
	}

	tile, _ := state.TileAt(state.Position)
	step := &StepInfo{
		Idx:             idx,
		Command:         command,
		From:            from,
		To:              state.Position,
		FromOrientation: heading,
		ToOrientation:   state.Orientation,
		TileChar:        engine.TileChar(tile),
		TileType:        tile.String(),
		HealthBefore:    health,
		HealthAfter:     state.Health,
		Success:         true,
		Victory:         state.Victory,
	}
	if len(state.Keys) > keys && tile.IsLava() {
		step.KeyCollected = tile.Key
	}
	result.Step = step
	result.Events = moveEvents(state, step)
	return result
}

// Reset resets a game session to its initial state
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.lockedSession(sessionID)
	if err != nil {
		return nil, err
	}

	state := s.reset(sess)
	s.persist(sessionID, "reset")
	return state, nil
}

// reset restarts the game and clears the autopilot's route history. The
// autopilot keeps what it learned about the map.
func (s *gameServiceImpl) reset(sess *Session) *engine.GameState {
	state := sess.Engine.Reset()
	state.HealthRisk = engine.AnalyzeHealthRisk(state, sess.Engine.LavaDamage())
	if sess.Autopilot != nil {
		sess.Autopilot.Reset()
	}
	return state
}

// GetGameState retrieves the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, sessionNotFound(sessionID, err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	return sess.Engine.GetState(), nil
}

// GetMoveHistory returns paginated move history
func (s *gameServiceImpl) GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, sessionNotFound(sessionID, err)
	}

	history := sess.Engine.GetMoveHistory()
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
	end := min(start+opts.Limit, total)

	moves := []engine.MoveHistoryEntry{}
	if opts.Order == "desc" {
		// most recent first
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			moves = append(moves, history[i])
		}
	} else if start < total {
		moves = append(moves, history[start:end]...)
	}

	return &HistoryResponse{
		Moves:       moves,
		TotalMoves:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// ListConfigs returns available scenarios
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific scenario
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a scenario to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	return s.configs.SaveConfig(configName, config)
}

func resetEvent() GameEvent {
	return GameEvent{Type: "reset", Message: "Game reset to initial state", Timestamp: time.Now()}
}

// moveEvents generates the events of an executed command
func moveEvents(state *engine.GameState, step *StepInfo) []GameEvent {
	now := time.Now()
	events := []GameEvent{{
		Type:      "move",
		Message:   fmt.Sprintf("Drove %s to %v facing %s", step.Command, step.To, step.ToOrientation),
		Timestamp: now,
		Position:  step.To,
	}}

	switch {
	case step.KeyCollected > 0:
		events = append(events, GameEvent{Type: "key", Message: fmt.Sprintf("Key %d collected", step.KeyCollected), Timestamp: now, Position: step.To})
	case step.HealthAfter < step.HealthBefore:
		events = append(events, GameEvent{Type: "lava", Message: fmt.Sprintf("Lava! Health %d/%d", step.HealthAfter, state.MaxHealth), Timestamp: now, Position: step.To})
	case step.HealthAfter > step.HealthBefore:
		events = append(events, GameEvent{Type: "heal", Message: fmt.Sprintf("Healed to %d/%d", step.HealthAfter, state.MaxHealth), Timestamp: now, Position: step.To})
	}

	if state.GameOver {
		eventType := "game_over"
		if state.Victory {
			eventType = "victory"
		}
		events = append(events, GameEvent{Type: eventType, Message: state.Message, Timestamp: now, Position: step.To})
	}
	return events
}

// attemptInfo describes the tile a blocked command tried to enter
func attemptInfo(state *engine.GameState, from world.Coordinate, heading world.Orientation, command string) *AttemptInfo {
	if command == engine.CommandNone || !slices.Contains(engine.Commands, command) {
		return nil
	}
	target := from.Add(planner.Turn(heading, planner.RelativeDirection(command)).Delta())
	info := &AttemptInfo{X: target.X, Y: target.Y, TileChar: "W", TileType: "boundary"}
	if tile, ok := state.TileAt(target); ok {
		info.TileChar = engine.TileChar(tile)
		info.TileType = tile.String()
		info.Passable = state.CanMoveTo(target)
	}
	return info
}

// gameOverCode classifies how a finished game ended
func gameOverCode(state *engine.GameState) string {
	tile, _ := state.TileAt(state.Position)
	switch {
	case !state.GameOver:
		return ""
	case state.Victory:
		return StopVictory
	case state.Health <= 0:
		return StopDestroyed
	case tile.IsMud():
		return StopStuck
	}
	return StopGameOver
}

// buildLocal3x3 renders the tiles around the car, north row first. The car is C.
func buildLocal3x3(state *engine.GameState) []string {
	if state == nil {
		return nil
	}
	lines := make([]string, 0, 3)
	for dy := 1; dy >= -1; dy-- {
		var row strings.Builder
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				row.WriteString("C")
				continue
			}
			tile, ok := state.TileAt(state.Position.Add(world.Coordinate{X: dx, Y: dy}))
			if !ok {
				// out of bounds reads as wall
				row.WriteString("W")
				continue
			}
			row.WriteString(engine.TileChar(tile))
		}
		lines = append(lines, row.String())
	}
	return lines
}

func riskCode(text string) string {
	t := strings.ToLower(text)
	switch {
	case strings.Contains(t, "critical"):
		return "CRITICAL"
	case strings.Contains(t, "danger"):
		return "DANGER"
	case strings.Contains(t, "caution"):
		return "CAUTION"
	case strings.Contains(t, "low"):
		return "LOW"
	case strings.Contains(t, "safe"):
		return "SAFE"
	default:
		return "UNKNOWN"
	}
}
