package planner

import "github.com/wricardo/mcp-training/autopilot/game/world"

// Search runs a best-first search from start to goal over the known map.
//
// The frontier member with the lowest policy key is expanded next, ties going to
// the member discovered first. Closed coordinates are never reopened even if a
// cheaper route to them shows up later; the policies adjust costs by negative
// amounts, so this trades optimality for a bounded, single visit per tile.
//
// The returned path runs from start to goal inclusive, or is empty when the goal
// cannot be reached through observed, passable tiles.
func Search(m world.MapView, start, goal world.Coordinate, policy CostPolicy) Path {
	open := newFrontier()
	closed := make(map[world.Coordinate]struct{})
	cameFrom := make(map[world.Coordinate]world.Coordinate)
	scores := scoreTable{start: {}}

	open.add(start, policy.Key(Score{}, start, goal))

	for open.Len() > 0 {
		current := open.popMin()
		if current == goal {
			return reconstructPath(cameFrom, current, scores.get(current).Damage)
		}
		closed[current] = struct{}{}

		for _, next := range current.Neighbours() {
			tile, ok := passable(m, next)
			if !ok {
				continue
			}
			if _, done := closed[next]; done {
				continue
			}

			candidate := policy.Enter(scores.get(current), tile)
			inOpen := open.contains(next)
			if inOpen && !policy.Better(candidate, scores.get(next)) {
				continue
			}

			cameFrom[next] = current
			scores[next] = candidate
			key := policy.Key(candidate, next, goal)
			if inOpen {
				open.update(next, key)
			} else {
				open.add(next, key)
			}
		}
	}

	return Path{}
}

// passable returns the tile at c when the car may enter it. Unobserved
// coordinates, walls, mud and empty placeholders are impassable.
func passable(m world.MapView, c world.Coordinate) (world.Tile, bool) {
	tile, ok := m.Tile(c)
	if !ok {
		return world.Tile{}, false
	}
	if tile.Is(world.Wall) || tile.Is(world.Empty) || tile.IsMud() {
		return world.Tile{}, false
	}
	return tile, true
}

// reconstructPath walks predecessors back from goal and returns the route start first
func reconstructPath(cameFrom map[world.Coordinate]world.Coordinate, current world.Coordinate, damage int) Path {
	coords := []world.Coordinate{current}
	for {
		prev, ok := cameFrom[current]
		if !ok {
			break
		}
		coords = append(coords, prev)
		current = prev
	}
	for i, j := 0, len(coords)-1; i < j; i, j = i+1, j-1 {
		coords[i], coords[j] = coords[j], coords[i]
	}
	return Path{Coords: coords, Damage: damage}
}
