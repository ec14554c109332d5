package engine

import (
	"testing"

	"github.com/wricardo/mcp-training/autopilot/game/world"
)

func createTestEngine(t *testing.T) *GameEngine {
	t.Helper()
	engine, err := NewEngine(createValidConfig())
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	return engine
}

func at(x, y int) world.Coordinate {
	return world.Coordinate{X: x, Y: y}
}

func TestNewEngine(t *testing.T) {
	config := createValidConfig()
	engine, err := NewEngine(config)
	if err != nil {
		t.Fatalf("Failed to create new engine: %v", err)
	}

	if engine.GetHealth() != config.StartingHealth {
		t.Errorf("Expected starting health %d, got %d", config.StartingHealth, engine.GetHealth())
	}
	if engine.GetPosition() != at(1, 3) {
		t.Errorf("Expected start position (1,3), got %v", engine.GetPosition())
	}
	if engine.GetOrientation() != world.East {
		t.Errorf("Expected orientation east, got %s", engine.GetOrientation())
	}
	if engine.IsGameOver() || engine.IsVictory() {
		t.Error("Expected a fresh game")
	}
	if engine.GetTotalKeys() != 1 || engine.GetRemainingKeys() != 1 {
		t.Errorf("Expected one key remaining, got %d/%d", engine.GetRemainingKeys(), engine.GetTotalKeys())
	}
}

func TestNewEngine_InvalidConfig(t *testing.T) {
	config := createValidConfig()
	config.Name = ""

	if _, err := NewEngine(config); err == nil {
		t.Error("Expected error for invalid config")
	}
}

func TestEngine_BasicDriving(t *testing.T) {
	engine := createTestEngine(t)

	if !engine.Drive(CommandForward) {
		t.Fatal("Expected successful forward move")
	}
	state := engine.GetState()
	if state.Position != at(2, 3) || state.Orientation != world.East {
		t.Errorf("Expected (2,3) facing east, got %v facing %s", state.Position, state.Orientation)
	}
	if state.Velocity != 1 || state.Ticks != 1 {
		t.Errorf("Expected velocity 1 after one tick, got velocity %d ticks %d", state.Velocity, state.Ticks)
	}

	history := engine.GetMoveHistory()
	if len(history) != 1 {
		t.Fatalf("Expected 1 move in history, got %d", len(history))
	}
	last := engine.GetLastMove()
	if last.Action != CommandForward || last.FromPosition != at(1, 3) || last.ToPosition != at(2, 3) || !last.Success {
		t.Errorf("Unexpected history entry: %+v", last)
	}
}

func TestEngine_RelativeCommands(t *testing.T) {
	tests := []struct {
		command     string
		success     bool
		position    world.Coordinate
		orientation world.Orientation
	}{
		{CommandForward, true, at(2, 3), world.East},
		{CommandRight, true, at(1, 2), world.South},
		{CommandLeft, false, at(1, 3), world.East},     // north is a wall
		{CommandBackward, false, at(1, 3), world.East}, // west is a wall
		{CommandNone, true, at(1, 3), world.East},
		{"sideways", false, at(1, 3), world.East},
	}

	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			engine := createTestEngine(t)
			if got := engine.Drive(tt.command); got != tt.success {
				t.Errorf("Expected success %v, got %v (%s)", tt.success, got, engine.GetState().Message)
			}
			if engine.GetPosition() != tt.position || engine.GetOrientation() != tt.orientation {
				t.Errorf("Expected %v facing %s, got %v facing %s",
					tt.position, tt.orientation, engine.GetPosition(), engine.GetOrientation())
			}
		})
	}
}

func TestEngine_GetPossibleCommands(t *testing.T) {
	engine := createTestEngine(t)
	possible := engine.GetPossibleCommands()

	want := []string{CommandForward, CommandRight, CommandNone}
	if len(possible) != len(want) {
		t.Fatalf("Expected %v, got %v", want, possible)
	}
	for i := range want {
		if possible[i] != want[i] {
			t.Errorf("Expected %v, got %v", want, possible)
		}
	}
}

func TestEngine_KeyAndVictory(t *testing.T) {
	engine := createTestEngine(t)

	results := engine.BulkDrive([]string{CommandForward, CommandForward, CommandForward})
	for i, ok := range results {
		if !ok {
			t.Fatalf("Move %d failed: %s", i, engine.GetState().Message)
		}
	}

	state := engine.GetState()
	if !state.HasKey(1) {
		t.Fatal("Expected key 1 after driving over its lava")
	}
	if state.Health != 30 {
		t.Errorf("Expected lava to deal 10 damage, health is %d", state.Health)
	}
	if state.Message != "Key 1 collected!" {
		t.Errorf("Unexpected message '%s'", state.Message)
	}

	// turn south twice: down the corridor onto the exit
	engine.Drive(CommandRight)
	engine.Drive(CommandForward)
	if !engine.IsVictory() || !engine.IsGameOver() {
		t.Errorf("Expected victory at the exit, got message '%s'", engine.GetState().Message)
	}
	if engine.Drive(CommandForward) {
		t.Error("Expected no moves after the game is over")
	}
}

func TestEngine_LockedExit(t *testing.T) {
	config := createValidConfig()
	config.Layout = []string{
		"WWWWWWW",
		"WSRFR1W",
		"WWWWWWW",
	}
	engine, err := NewEngine(config)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	engine.Drive(CommandForward)
	engine.Drive(CommandForward)
	if engine.IsGameOver() {
		t.Fatal("Exit must stay locked without the key")
	}
	if engine.GetState().Message != "Locked, 1 keys missing" {
		t.Errorf("Unexpected message '%s'", engine.GetState().Message)
	}

	engine.BulkDrive([]string{CommandForward, CommandForward, CommandBackward, CommandForward})
	if !engine.IsVictory() {
		t.Errorf("Expected victory after returning with the key, got '%s'", engine.GetState().Message)
	}
}

func TestEngine_ConfigManagement(t *testing.T) {
	engine := createTestEngine(t)
	engine.Drive(CommandForward)

	newConfig := createValidConfig()
	newConfig.Name = "Other"
	newConfig.StartingHealth = 10
	if err := engine.SetConfig(newConfig); err != nil {
		t.Fatalf("Failed to set config: %v", err)
	}
	if engine.GetConfig().Name != "Other" || engine.GetHealth() != 10 || engine.GetPosition() != at(1, 3) {
		t.Error("Expected a fresh game for the new config")
	}

	invalid := createValidConfig()
	invalid.Layout = nil
	if err := engine.SetConfig(invalid); err == nil {
		t.Error("Expected error for invalid config")
	}
}

func TestEngine_Reset(t *testing.T) {
	engine := createTestEngine(t)
	engine.Drive(CommandForward)
	engine.Drive(CommandForward)

	state := engine.Reset()
	if state.Position != at(1, 3) || state.Ticks != 0 || state.Health != 40 {
		t.Errorf("Expected the initial state after reset, got %+v", state)
	}
	if state.TotalMoves != 2 || len(state.MoveHistory) != 2 {
		t.Errorf("Expected cumulative history to survive reset, got %d moves", state.TotalMoves)
	}
	if state.CurrentMovesCount != 0 || len(state.CurrentMoves) != 0 {
		t.Error("Expected the current segment to be cleared")
	}

	engine.Drive(CommandForward)
	if engine.GetState().TotalMoves != 3 || engine.GetState().CurrentMovesCount != 1 {
		t.Error("Expected counters to continue after reset")
	}
}

func TestEngine_Perception(t *testing.T) {
	engine := createTestEngine(t)

	view := engine.View()
	if len(view) != 9 {
		t.Errorf("Expected a 3x3 view for radius 1, got %d tiles", len(view))
	}
	if tile := view[at(2, 3)]; !tile.Is(world.Road) {
		t.Errorf("Expected road east of the start, got %v", tile)
	}
	if _, ok := view[at(4, 3)]; ok {
		t.Error("Expected the key tile to be out of view")
	}

	known := engine.Knowledge()
	if tile := known[at(4, 3)]; !tile.Is(world.Road) {
		t.Errorf("Expected lava disguised as road, got %v", tile)
	}
	if tile := known[at(3, 1)]; !tile.Is(world.Road) {
		t.Errorf("Expected mud disguised as road, got %v", tile)
	}
	if tile := known[at(0, 0)]; !tile.Is(world.Wall) {
		t.Errorf("Expected walls to be known, got %v", tile)
	}

	local := engine.GetLocalView()
	if len(local) != 8 {
		t.Fatalf("Expected 8 local tiles, got %d", len(local))
	}
	if local[0].X != 1 || local[0].Y != 4 || !local[0].Tile.Is(world.Wall) {
		t.Errorf("Expected a wall north of the start, got %+v", local[0])
	}

	full := engine.GetState().Map()
	if len(full) != len(known) {
		t.Errorf("Expected the full map to cover the grid, got %d of %d tiles", len(full), len(known))
	}
	if tile := full[at(4, 3)]; !tile.IsLava() || tile.Key != 1 {
		t.Errorf("Expected key 1 lava in the full map, got %v", tile)
	}
	if tile := full[at(3, 1)]; !tile.IsMud() {
		t.Errorf("Expected mud in the full map, got %v", tile)
	}
}

func TestEngine_StateConsistency(t *testing.T) {
	engine := createTestEngine(t)
	engine.Drive(CommandForward)

	saved := *engine.GetState()
	other := createTestEngine(t)
	if err := other.SetState(&saved); err != nil {
		t.Fatalf("Failed to set state: %v", err)
	}
	if other.GetPosition() != engine.GetPosition() || other.GetHealth() != engine.GetHealth() {
		t.Error("Expected restored state to match")
	}
	if err := other.SetState(nil); err == nil {
		t.Error("Expected error for nil state")
	}
}
