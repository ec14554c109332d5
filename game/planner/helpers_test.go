package planner

import (
	"testing"

	"github.com/wricardo/mcp-training/autopilot/game/world"
)

// parseGrid builds a map from rows drawn north at the top. The bottom row is y=0.
//
//	# wall   . road   u utility   e empty   (space) unobserved
//	L lava   1-9 lava holding that key   M mud   H health (heal 10)   G grass
//	S start  F finish
func parseGrid(t *testing.T, rows ...string) world.Map {
	t.Helper()
	m := world.Map{}
	for i, row := range rows {
		y := len(rows) - 1 - i
		for x, ch := range row {
			c := world.Coordinate{X: x, Y: y}
			switch {
			case ch == ' ':
				continue
			case ch == '#':
				m.Set(c, world.Tile{Type: world.Wall})
			case ch == '.':
				m.Set(c, world.Tile{Type: world.Road})
			case ch == 'u':
				m.Set(c, world.Tile{Type: world.Utility})
			case ch == 'e':
				m.Set(c, world.Tile{Type: world.Empty})
			case ch == 'S':
				m.Set(c, world.Tile{Type: world.Start})
			case ch == 'F':
				m.Set(c, world.Tile{Type: world.Finish})
			case ch == 'L':
				m.Set(c, world.LavaTile(0))
			case ch >= '1' && ch <= '9':
				m.Set(c, world.LavaTile(int(ch-'0')))
			case ch == 'M':
				m.Set(c, world.MudTile())
			case ch == 'H':
				m.Set(c, world.HealthTile(10))
			case ch == 'G':
				m.Set(c, world.GrassTile())
			default:
				t.Fatalf("unknown grid character %q", ch)
			}
		}
	}
	return m
}

func coord(x, y int) world.Coordinate {
	return world.Coordinate{X: x, Y: y}
}

func coords(xy ...int) []world.Coordinate {
	out := make([]world.Coordinate, 0, len(xy)/2)
	for i := 0; i+1 < len(xy); i += 2 {
		out = append(out, coord(xy[i], xy[i+1]))
	}
	return out
}

func pathOf(xy ...int) Path {
	return Path{Coords: coords(xy...)}
}

func assertCoords(t *testing.T, got, want []world.Coordinate) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v (first difference at %d)", want, got, i)
		}
	}
}

func assertWellFormed(t *testing.T, p Path, start, goal world.Coordinate) {
	t.Helper()
	if p.Empty() {
		return
	}
	if p.Coords[0] != start {
		t.Errorf("path starts at %v, expected %v", p.Coords[0], start)
	}
	if last, _ := p.Goal(); last != goal {
		t.Errorf("path ends at %v, expected %v", last, goal)
	}
	if !p.Connected() {
		t.Errorf("path has a non-adjacent step: %v", p.Coords)
	}
}
