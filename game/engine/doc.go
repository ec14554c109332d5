// Package engine provides the car simulator the autopilot drives.
//
// The engine package implements the game mechanics including:
//   - Relative driving: every command turns the car and advances it one tile
//   - Lava damage and key collection, mud traps and health tiles
//   - Locked exits that open once every key is held
//   - Game state management and persistence
//   - Configuration loading and validation
//
// Core Types:
//
// The Engine interface defines the main contract for game operations,
// implemented by GameEngine. GameState represents the current game state,
// while GameConfig defines the scenario layout and rules loaded from JSON files.
//
// Usage:
//
//	config, err := engine.LoadConfigByName("classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameEngine, err := engine.NewEngine(config)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Turn right and advance one tile
//	success := gameEngine.Drive("right")
//	state := gameEngine.GetState()
//
// Coordinates:
//
// Layout row 0 is the northern edge. World coordinates put north at +Y and east
// at +X, so the bottom-left layout character is (0,0).
//
// Game Rules:
//
// The car starts with only the layout in mind: every trap looks like road until
// it comes into view. Lava hurts and hands over the key it holds, mud ends the
// game, health tiles heal a little every tick the car spends on them. The game
// is won by reaching an exit with every key and lost when health runs out.
package engine
