package engine

import (
	"strconv"

	"github.com/wricardo/mcp-training/autopilot/game/world"
)

// CountKeys counts the distinct key ids held by lava tiles in the grid
func CountKeys(grid [][]world.Tile) int {
	ids := world.NewKeySet()
	for _, row := range grid {
		for _, tile := range row {
			if tile.IsLava() && tile.Key > 0 {
				ids.Add(tile.Key)
			}
		}
	}
	return len(ids)
}

// coordinateOf converts a grid index into a world coordinate (north is +Y)
func coordinateOf(grid [][]world.Tile, row, col int) world.Coordinate {
	return world.Coordinate{X: col, Y: len(grid) - 1 - row}
}

// indexOf converts a world coordinate into grid indexes, reporting whether it is inside the grid
func indexOf(grid [][]world.Tile, c world.Coordinate) (row, col int, ok bool) {
	row = len(grid) - 1 - c.Y
	col = c.X
	if row < 0 || row >= len(grid) || col < 0 || col >= len(grid[row]) {
		return 0, 0, false
	}
	return row, col, true
}

// findTiles returns the coordinates of every tile matching pred, ordered by (y, x)
func findTiles(grid [][]world.Tile, pred func(world.Tile) bool) []world.Coordinate {
	var found []world.Coordinate
	for row := range grid {
		for col, tile := range grid[row] {
			if pred(tile) {
				found = append(found, coordinateOf(grid, row, col))
			}
		}
	}
	world.SortCoordinates(found)
	return found
}

// gridMap returns the full grid as a map snapshot
func gridMap(grid [][]world.Tile) world.Map {
	m := make(world.Map)
	for row := range grid {
		for col, tile := range grid[row] {
			m[coordinateOf(grid, row, col)] = tile
		}
	}
	return m
}

// FindNearestHealth finds the closest health tile and returns its position and distance
func FindNearestHealth(state *GameState) (world.Coordinate, int, bool) {
	tiles := findTiles(state.Grid, func(t world.Tile) bool { return t.IsHealth() })
	nearest, ok := world.Nearest(state.Position, tiles)
	if !ok {
		return world.Coordinate{}, -1, false
	}
	return nearest, world.ManhattanDistance(state.Position, nearest), true
}

// AnalyzeHealthRisk assesses how many lava tiles the car can still survive
func AnalyzeHealthRisk(state *GameState, lavaDamage int) string {
	if state.Health <= 0 {
		return "CRITICAL: Car destroyed!"
	}
	if lavaDamage <= 0 {
		lavaDamage = DefaultLavaDamage
	}

	survivable := (state.Health - 1) / lavaDamage
	_, _, healthFound := FindNearestHealth(state)

	switch {
	case survivable == 0:
		return "DANGER: One more lava tile destroys the car!"
	case survivable <= 2 && !healthFound:
		return "DANGER: Low health and no health tiles available!"
	case survivable <= 2:
		return "CAUTION: Low health, prioritize healing"
	case state.Health <= state.MaxHealth/3:
		return "LOW: Consider healing soon"
	}
	return "SAFE: Health sufficient"
}

// CountTileType counts the tiles of a specific type in the grid
func CountTileType(grid [][]world.Tile, tileType world.TileType) int {
	count := 0
	for _, row := range grid {
		for _, tile := range row {
			if tile.Is(tileType) {
				count++
			}
		}
	}
	return count
}

// TileChar returns the layout character of a tile. Unexplored road reads as '?'.
func TileChar(t world.Tile) string {
	switch {
	case t.IsLava() && t.Key > 0:
		return strconv.Itoa(t.Key)
	case t.IsLava():
		return "L"
	case t.IsMud():
		return "M"
	case t.IsHealth():
		return "H"
	case t.Trap == world.Grass:
		return "G"
	}
	switch t.Type {
	case world.Wall:
		return "W"
	case world.Road:
		return "R"
	case world.Utility:
		return "?"
	case world.Start:
		return "S"
	case world.Finish:
		return "F"
	}
	return "."
}

// Map returns the complete grid as a map snapshot, traps included
func (gs *GameState) Map() world.Map {
	return gridMap(gs.Grid)
}
