package engine

import (
	"fmt"

	"github.com/wricardo/mcp-training/autopilot/game/world"
)

// Engine provides the main interface for game operations
type Engine interface {
	// Game state management
	GetState() *GameState
	SetState(state *GameState) error
	Reset() *GameState
	IsGameOver() bool
	IsVictory() bool
	GetHealth() int
	GetPosition() world.Coordinate
	GetOrientation() world.Orientation
	GetKeys() world.KeySet

	// Driving operations
	Drive(command string) bool
	CanDrive(command string) bool
	GetPossibleCommands() []string

	// Configuration
	GetConfig() *GameConfig
	SetConfig(config *GameConfig) error

	// History
	GetMoveHistory() []MoveHistoryEntry
	GetLastMove() *MoveHistoryEntry

	// Perception
	GetLocalView() []VisibleTile
	View() world.Map
	Knowledge() world.Map

	// Keys and objectives
	GetTotalKeys() int
	GetRemainingKeys() int
}

// GameEngine implements the Engine interface
type GameEngine struct {
	state  *GameState
	config *GameConfig
}

var _ Engine = (*GameEngine)(nil)

// NewEngine creates a new game engine with the provided configuration
func NewEngine(config *GameConfig) (*GameEngine, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}

	engine := &GameEngine{
		config: config,
		state:  InitGameStateFromConfig(config),
	}

	return engine, nil
}

// GetState returns the current game state
func (e *GameEngine) GetState() *GameState {
	return e.state
}

// SetState sets the game state (used for persistence loading)
func (e *GameEngine) SetState(state *GameState) error {
	if state == nil {
		return fmt.Errorf("state cannot be nil")
	}
	e.state = state
	return nil
}

// Reset resets the game to initial state
func (e *GameEngine) Reset() *GameState {
	// Preserve cumulative history and totals across resets
	prevHistory := e.state.MoveHistory
	prevTotal := e.state.TotalMoves

	e.state = InitGameStateFromConfig(e.config)

	// Restore cumulative history and totals; clear only the current segment
	e.state.MoveHistory = prevHistory
	e.state.TotalMoves = prevTotal
	e.state.CurrentMoves = []MoveHistoryEntry{}
	e.state.CurrentMovesCount = 0

	return e.state
}

// IsGameOver returns whether the game is over
func (e *GameEngine) IsGameOver() bool {
	return e.state.GameOver
}

// IsVictory returns whether the car escaped
func (e *GameEngine) IsVictory() bool {
	return e.state.Victory
}

// GetHealth returns the current health
func (e *GameEngine) GetHealth() int {
	return e.state.Health
}

// GetPosition returns the current car position
func (e *GameEngine) GetPosition() world.Coordinate {
	return e.state.Position
}

// GetOrientation returns the car's heading
func (e *GameEngine) GetOrientation() world.Orientation {
	return e.state.Orientation
}

// GetKeys returns the collected keys
func (e *GameEngine) GetKeys() world.KeySet {
	return e.state.KeySet()
}

// Drive executes a relative command and records it in the history
func (e *GameEngine) Drive(command string) bool {
	return e.drive(command, false)
}

// DriveAutopilot is Drive for commands chosen by the autopilot
func (e *GameEngine) DriveAutopilot(command string) bool {
	return e.drive(command, true)
}

func (e *GameEngine) drive(command string, autopilot bool) bool {
	if e.config == nil {
		return false
	}

	prevPos, prevHeading := e.state.Position, e.state.Orientation
	success := e.state.DriveCar(command, e.config)
	e.state.LocalView = e.state.GenerateLocalView()
	e.state.HealthRisk = AnalyzeHealthRisk(e.state, lavaDamage(e.config))

	e.state.AddMoveToHistory(command, prevPos, prevHeading, success, autopilot)
	return success
}

// CanDrive checks if the command would move the car (or hold it in place)
func (e *GameEngine) CanDrive(command string) bool {
	if e.state.GameOver {
		return false
	}
	if command == CommandNone {
		return true
	}
	next, _, ok := e.state.target(command)
	return ok && e.state.CanMoveTo(next)
}

// GetPossibleCommands returns every command that currently succeeds
func (e *GameEngine) GetPossibleCommands() []string {
	var possible []string
	for _, command := range Commands {
		if e.CanDrive(command) {
			possible = append(possible, command)
		}
	}
	return possible
}

// GetConfig returns the current game configuration
func (e *GameEngine) GetConfig() *GameConfig {
	return e.config
}

// SetConfig sets a new game configuration and resets the game
func (e *GameEngine) SetConfig(config *GameConfig) error {
	if err := ValidateGameConfig(config); err != nil {
		return err
	}

	e.config = config
	e.state = InitGameStateFromConfig(config)
	return nil
}

// GetMoveHistory returns the complete move history
func (e *GameEngine) GetMoveHistory() []MoveHistoryEntry {
	return e.state.MoveHistory
}

// GetLastMove returns the last move made, or nil if no moves
func (e *GameEngine) GetLastMove() *MoveHistoryEntry {
	if len(e.state.MoveHistory) == 0 {
		return nil
	}
	return &e.state.MoveHistory[len(e.state.MoveHistory)-1]
}

// GetLocalView returns the 8 tiles around the car
func (e *GameEngine) GetLocalView() []VisibleTile {
	return e.state.GenerateLocalView()
}

// View returns what the car's camera sees this tick
func (e *GameEngine) View() world.Map {
	return e.state.View(viewRadius(e.config))
}

// Knowledge returns the initial map with traps disguised as road
func (e *GameEngine) Knowledge() world.Map {
	return e.state.Knowledge()
}

// LavaDamage returns the damage dealt per lava tile in this scenario
func (e *GameEngine) LavaDamage() int {
	return lavaDamage(e.config)
}

// GetTotalKeys returns the number of distinct keys needed to exit
func (e *GameEngine) GetTotalKeys() int {
	return e.state.TotalKeys
}

// GetRemainingKeys returns the number of keys not yet collected
func (e *GameEngine) GetRemainingKeys() int {
	return e.state.TotalKeys - len(e.state.Keys)
}

// BulkDrive executes multiple commands in sequence, returning success status for each
func (e *GameEngine) BulkDrive(commands []string) []bool {
	results := make([]bool, 0, len(commands))

	for _, command := range commands {
		// Stop if game is over
		if e.IsGameOver() {
			break
		}

		results = append(results, e.Drive(command))
	}

	return results
}
