package engine

import (
	"fmt"
	"slices"
	"time"

	"github.com/wricardo/mcp-training/autopilot/game/planner"
	"github.com/wricardo/mcp-training/autopilot/game/world"
)

// TileAt returns the tile at c, or false when c is outside the grid
func (gs *GameState) TileAt(c world.Coordinate) (world.Tile, bool) {
	row, col, ok := indexOf(gs.Grid, c)
	if !ok {
		return world.Tile{}, false
	}
	return gs.Grid[row][col], true
}

// CanMoveTo checks if the car can enter the specified coordinate.
// Mud is enterable; it just never lets go.
func (gs *GameState) CanMoveTo(c world.Coordinate) bool {
	tile, ok := gs.TileAt(c)
	if !ok {
		return false
	}
	return !tile.Is(world.Wall) && !tile.Is(world.Empty)
}

// HasKey reports whether the car holds key id
func (gs *GameState) HasKey(id int) bool {
	return slices.Contains(gs.Keys, id)
}

// KeySet returns the collected keys as a set
func (gs *GameState) KeySet() world.KeySet {
	return world.NewKeySet(gs.Keys...)
}

// target returns where a command would take the car and its new heading
func (gs *GameState) target(command string) (world.Coordinate, world.Orientation, bool) {
	switch command {
	case CommandForward, CommandBackward, CommandLeft, CommandRight:
	default:
		return gs.Position, gs.Orientation, false
	}
	heading := planner.Turn(gs.Orientation, planner.RelativeDirection(command))
	return gs.Position.Add(heading.Delta()), heading, true
}

// DriveCar executes one relative command. The car turns to the new heading and
// advances one tile along it; "none" holds position for a tick.
func (gs *GameState) DriveCar(command string, config *GameConfig) bool {
	if gs.GameOver {
		return false
	}

	if command == CommandNone {
		gs.Velocity = 0
		gs.tick(config)
		gs.applyTile(config, false)
		gs.checkTicks(config)
		return true
	}

	next, heading, ok := gs.target(command)
	if !ok {
		gs.Message = fmt.Sprintf("Unknown command %q", command)
		return false
	}

	if !gs.CanMoveTo(next) {
		obstacle := "boundary"
		if tile, inside := gs.TileAt(next); inside {
			obstacle = tile.String()
		}
		gs.Message = fmt.Sprintf("Can't move %s: %s at %v", command, obstacle, next)
		if config.Messages.CantMove != "" {
			gs.Message = config.Messages.CantMove + fmt.Sprintf(" [Blocked by: %s]", obstacle)
		}
		gs.Velocity = 0
		return false
	}

	gs.Position = next
	gs.Orientation = heading
	gs.Velocity = 1
	if command == CommandBackward {
		gs.Velocity = -1
	}
	gs.tick(config)
	gs.applyTile(config, true)
	gs.checkTicks(config)
	return true
}

func (gs *GameState) tick(config *GameConfig) {
	gs.Ticks++
	gs.Message = messagef(config.Messages.HealthStatus, "Health: %d/%d", gs.Health, gs.MaxHealth)
}

// applyTile resolves the effect of the tile under the car
func (gs *GameState) applyTile(config *GameConfig, entered bool) {
	tile, _ := gs.TileAt(gs.Position)

	switch {
	case tile.IsMud():
		gs.GameOver = true
		gs.Message = messagef(config.Messages.Mud, "Stuck in the mud! Game Over!")

	case tile.IsLava():
		gs.Health -= lavaDamage(config)
		gs.Message = messagef(config.Messages.Lava, "Lava! Health: %d", gs.Health)
		if tile.Key > 0 && !gs.HasKey(tile.Key) {
			gs.Keys = append(gs.Keys, tile.Key)
			slices.Sort(gs.Keys)
			gs.Message = messagef(config.Messages.KeyCollected, "Key %d collected!", tile.Key)
		}
		if gs.Health <= 0 {
			gs.Health = 0
			gs.GameOver = true
			gs.Message = config.Messages.Destroyed
		}

	case tile.IsHealth():
		if gs.Health < gs.MaxHealth {
			gs.Health = min(gs.Health+tile.Heal, gs.MaxHealth)
			gs.Message = messagef(config.Messages.Healed, "Healing... Health: %d", gs.Health)
		}

	case tile.Is(world.Finish) && entered:
		missing := gs.TotalKeys - len(gs.Keys)
		if missing <= 0 {
			gs.Victory = true
			gs.GameOver = true
			gs.Message = fmt.Sprintf(config.Messages.Victory, len(gs.Keys))
		} else {
			gs.Message = messagef(config.Messages.Locked, "The exit is locked, %d keys missing", missing)
		}
	}
}

func (gs *GameState) checkTicks(config *GameConfig) {
	if gs.GameOver || config.MaxTicks == 0 || gs.Ticks < config.MaxTicks {
		return
	}
	gs.GameOver = true
	gs.Message = messagef(config.Messages.OutOfTicks, "Out of time! Game Over!")
}

// messagef formats a scenario message, falling back when the scenario leaves it out
func messagef(template, fallback string, args ...any) string {
	if template == "" {
		template = fallback
	}
	if len(args) == 0 {
		return template
	}
	return fmt.Sprintf(template, args...)
}

// View returns the tiles within radius of the car (a square, as the car's camera sees it)
func (gs *GameState) View(radius int) world.Map {
	view := make(world.Map)
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			c := gs.Position.Add(world.Coordinate{X: dx, Y: dy})
			if tile, ok := gs.TileAt(c); ok {
				view[c] = tile
			}
		}
	}
	return view
}

// Knowledge returns the map a driver starts with: the full layout with every
// trap disguised as road
func (gs *GameState) Knowledge() world.Map {
	m := gridMap(gs.Grid)
	for c, tile := range m {
		if tile.IsTrap() {
			m[c] = world.Tile{Type: world.Road}
		}
	}
	return m
}

// GenerateLocalView creates the list of 8 tiles surrounding the car
func (gs *GameState) GenerateLocalView() []VisibleTile {
	directions := []world.Coordinate{
		{X: 0, Y: 1},   // North
		{X: 1, Y: 1},   // North-East
		{X: 1, Y: 0},   // East
		{X: 1, Y: -1},  // South-East
		{X: 0, Y: -1},  // South
		{X: -1, Y: -1}, // South-West
		{X: -1, Y: 0},  // West
		{X: -1, Y: 1},  // North-West
	}

	surroundings := make([]VisibleTile, len(directions))
	for i, d := range directions {
		c := gs.Position.Add(d)
		tile, ok := gs.TileAt(c)
		if !ok {
			tile = world.Tile{Type: world.Wall} // out of bounds = wall
		}
		surroundings[i] = VisibleTile{X: c.X, Y: c.Y, Tile: tile}
	}
	return surroundings
}

// AddMoveToHistory adds a command to the game's move history
func (gs *GameState) AddMoveToHistory(action string, from world.Coordinate, fromHeading world.Orientation, success, autopilot bool) {
	entry := MoveHistoryEntry{
		Action:          action,
		FromPosition:    from,
		ToPosition:      gs.Position,
		FromOrientation: fromHeading,
		ToOrientation:   gs.Orientation,
		Health:          gs.Health,
		Timestamp:       time.Now().Unix(),
		Success:         success,
		MoveNumber:      gs.TotalMoves + 1,
		Autopilot:       autopilot,
	}
	// Append to cumulative history (never cleared by reset) and increment total
	gs.MoveHistory = append(gs.MoveHistory, entry)
	gs.TotalMoves++

	// Append to current segment history and increment its counter
	gs.CurrentMoves = append(gs.CurrentMoves, entry)
	gs.CurrentMovesCount++
}
