package service

import (
	"context"
	"time"

	"github.com/wricardo/mcp-training/autopilot/game/autopilot"
	"github.com/wricardo/mcp-training/autopilot/game/engine"
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, configName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Manual driving
	Drive(ctx context.Context, sessionID, command string, reset bool) (*DriveResult, error)
	BulkDrive(ctx context.Context, sessionID string, commands []string, reset bool) (*BulkDriveResult, error)
	Reset(ctx context.Context, sessionID string) (*engine.GameState, error)

	// Autopilot
	Step(ctx context.Context, sessionID string) (*StepResult, error)
	Autodrive(ctx context.Context, sessionID string, maxTicks int) (*AutodriveResult, error)
	Plan(ctx context.Context, sessionID, strategy string) (*PlanResult, error)

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error)
	GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error)
	SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, config *engine.GameConfig) (*Session, error)
	Get(id string) (*Session, error)
	GetOrCreate(id string, config *engine.GameConfig) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error
}

// ConfigManager handles scenario loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.GameConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.GameConfig
	SaveConfig(name string, config *engine.GameConfig) error
}

// Session represents an active game session. Autopilot is built on the first
// autopilot request and is not persisted; a restored session starts with a
// fresh autopilot that relearns the map from the car's camera.
type Session struct {
	ID             string
	Engine         *engine.GameEngine
	Config         *engine.GameConfig
	Autopilot      *autopilot.Autopilot
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
