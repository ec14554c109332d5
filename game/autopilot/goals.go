package autopilot

import (
	"slices"

	"github.com/wricardo/mcp-training/autopilot/game/world"
)

// Exits returns the known finish tiles
func Exits(m world.Map) []world.Coordinate {
	return m.Find(func(t world.Tile) bool { return t.Is(world.Finish) })
}

// UncollectedKeys returns the known lava tiles holding a key the car does not have.
// Tiles repeating the same key id are all returned.
func UncollectedKeys(m world.Map, keys world.KeySet) []world.Coordinate {
	return m.Find(func(t world.Tile) bool {
		return t.IsLava() && t.Key > 0 && !keys.Has(t.Key)
	})
}

// HealthTiles returns the known health traps
func HealthTiles(m world.Map) []world.Coordinate {
	return m.Find(func(t world.Tile) bool { return t.IsHealth() })
}

// Unexplored returns the utility tiles other than from, nearest to from first
func Unexplored(m world.Map, from world.Coordinate) []world.Coordinate {
	found := m.Find(func(t world.Tile) bool { return t.Is(world.Utility) })
	found = slices.DeleteFunc(found, func(c world.Coordinate) bool { return c == from })
	slices.SortStableFunc(found, func(a, b world.Coordinate) int {
		return world.ManhattanDistance(from, a) - world.ManhattanDistance(from, b)
	})
	return found
}

// harmless reports whether no coordinate of path sits on a damaging trap
func harmless(m world.Map, path []world.Coordinate) bool {
	for _, c := range path {
		if t, ok := m.Tile(c); ok && t.Damaging() {
			return false
		}
	}
	return true
}
