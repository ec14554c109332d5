package service

import (
	"time"

	"github.com/wricardo/mcp-training/autopilot/game/autopilot"
	"github.com/wricardo/mcp-training/autopilot/game/engine"
	"github.com/wricardo/mcp-training/autopilot/game/planner"
	"github.com/wricardo/mcp-training/autopilot/game/world"
)

const (
	// MaxAutodriveTicks caps a single autodrive call
	MaxAutodriveTicks = 500
	// DefaultAutodriveTicks is used when the caller does not ask for a tick count
	DefaultAutodriveTicks = 100
)

// Planning strategies accepted by Plan
const (
	StrategyGoal    = "goal"
	StrategyExplore = "explore"
)

// Stop reason codes reported by bulk drive and autodrive
const (
	StopBlocked   = "blocked"
	StopUnknown   = "unknown_command"
	StopGameOver  = "game_over"
	StopVictory   = "victory"
	StopDestroyed = "destroyed"
	StopStuck     = "stuck"
	StopNoRoute   = "no_route"
	StopTickLimit = "tick_limit"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	GameState      *engine.GameState  `json:"game_state"`
	GameConfig     *engine.GameConfig `json:"game_config"`
}

// DriveResult contains the result of a single command
type DriveResult struct {
	Success     bool              `json:"success"`
	GameState   *engine.GameState `json:"game_state"`
	Message     string            `json:"message"`
	Events      []GameEvent       `json:"events,omitempty"`
	Step        *StepInfo         `json:"step,omitempty"`
	AttemptedTo *AttemptInfo      `json:"attempted_to,omitempty"`
}

// BulkDriveResult contains the result of multiple commands
type BulkDriveResult struct {
	MovesExecuted  int               `json:"moves_executed"`
	RequestedMoves int               `json:"requested_moves"`
	Success        bool              `json:"success"`
	GameState      *engine.GameState `json:"game_state"`
	Events         []GameEvent       `json:"events"`
	StoppedReason  string            `json:"stopped_reason,omitempty"`
	StopReasonCode string            `json:"stop_reason_code,omitempty"` // blocked|unknown_command|game_over|victory|destroyed|stuck
	StoppedOnMove  int               `json:"stopped_on_move,omitempty"`  // 1-based index of the command that caused the stop
	Truncated      bool              `json:"truncated,omitempty"`
	Limit          int               `json:"limit,omitempty"`

	StartPos    world.Coordinate `json:"start_pos"`
	EndPos      world.Coordinate `json:"end_pos"`
	StartHealth int              `json:"start_health"`
	EndHealth   int              `json:"end_health"`
	KeysGained  int              `json:"keys_gained"`

	Steps       []StepInfo   `json:"steps,omitempty"`
	AttemptedTo *AttemptInfo `json:"attempted_to,omitempty"`

	GameOver         bool     `json:"game_over"`
	Message          string   `json:"message,omitempty"`
	PossibleCommands []string `json:"possible_commands,omitempty"`
	LocalView3x3     []string `json:"local_view_3x3,omitempty"`
	HealthRisk       string   `json:"health_risk,omitempty"`
}

// StepInfo is a compact record of one executed command
type StepInfo struct {
	Idx             int               `json:"idx"`
	Command         string            `json:"command"`
	From            world.Coordinate  `json:"from"`
	To              world.Coordinate  `json:"to"`
	FromOrientation world.Orientation `json:"from_orientation"`
	ToOrientation   world.Orientation `json:"to_orientation"`
	TileChar        string            `json:"tile_char"`
	TileType        string            `json:"tile_type"`
	HealthBefore    int               `json:"health_before"`
	HealthAfter     int               `json:"health_after"`
	Success         bool              `json:"success"`
	KeyCollected    int               `json:"key_collected,omitempty"`
	Victory         bool              `json:"victory,omitempty"`
}

// AttemptInfo details the tile a blocked command tried to enter
type AttemptInfo struct {
	X        int    `json:"x"`
	Y        int    `json:"y"`
	TileChar string `json:"tile_char"`
	TileType string `json:"tile_type"`
	Passable bool   `json:"passable"`
}

// StepResult is one autopilot tick: the decision and the command it drove
type StepResult struct {
	Decision autopilot.Decision `json:"decision"`
	Drive    *DriveResult       `json:"drive"`
}

// AutodriveResult summarises an autopilot run of several ticks
type AutodriveResult struct {
	Ticks          int                  `json:"ticks"`
	Decisions      []autopilot.Decision `json:"decisions"`
	Steps          []StepInfo           `json:"steps"`
	StopReasonCode string               `json:"stop_reason_code"`
	Thrashing      int                  `json:"thrashing"` // ticks that kept a previous route
	GameState      *engine.GameState    `json:"game_state"`
	GameOver       bool                 `json:"game_over"`
	Victory        bool                 `json:"victory"`
	Message        string               `json:"message,omitempty"`
}

// PlanResult is a route preview computed on the autopilot's knowledge without driving
type PlanResult struct {
	Strategy string             `json:"strategy"`
	Goals    []world.Coordinate `json:"goals"`
	Finals   []world.Coordinate `json:"finals"`
	Plan     planner.Plan       `json:"plan"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string           `json:"type"` // "move", "key", "lava", "heal", "game_over", "victory", "reset"
	Message   string           `json:"message"`
	Timestamp time.Time        `json:"timestamp"`
	Position  world.Coordinate `json:"position,omitempty"`
}

// HistoryOptions configures move history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated move history
type HistoryResponse struct {
	Moves       []engine.MoveHistoryEntry `json:"moves"`
	TotalMoves  int                       `json:"total_moves"`
	Page        int                       `json:"page"`
	PageSize    int                       `json:"page_size"`
	TotalPages  int                       `json:"total_pages"`
	HasNext     bool                      `json:"has_next"`
	HasPrevious bool                      `json:"has_previous"`
}

// ConfigInfo provides information about a scenario
type ConfigInfo struct {
	Filename    string `json:"filename"`
	ConfigID    string `json:"config_id"` // The identifier to use for session creation
	Name        string `json:"name"`      // Display name
	Description string `json:"description"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	MaxHealth   int    `json:"max_health"`
	Keys        int    `json:"keys"`
}

// NewConfigInfo summarises a scenario loaded from filename
func NewConfigInfo(filename, configID string, config *engine.GameConfig) *ConfigInfo {
	info := &ConfigInfo{
		Filename:    filename,
		ConfigID:    configID,
		Name:        config.Name,
		Description: config.Description,
		Height:      len(config.Layout),
		MaxHealth:   config.MaxHealth,
		Keys:        engine.InitGameStateFromConfig(config).TotalKeys,
	}
	if len(config.Layout) > 0 {
		info.Width = len(config.Layout[0])
	}
	return info
}
