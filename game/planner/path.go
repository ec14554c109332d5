package planner

import "github.com/wricardo/mcp-training/autopilot/game/world"

// Path is an ordered route from start to goal inclusive plus the damage
// accumulated along it. An empty Coords slice means no route was found.
type Path struct {
	Coords []world.Coordinate `json:"coords"`
	Damage int                `json:"damage"`
}

// Empty reports whether the path holds no coordinates
func (p Path) Empty() bool {
	return len(p.Coords) == 0
}

// Len returns the number of coordinates in the path
func (p Path) Len() int {
	return len(p.Coords)
}

// Goal returns the last coordinate of the path
func (p Path) Goal() (world.Coordinate, bool) {
	if p.Empty() {
		return world.Coordinate{}, false
	}
	return p.Coords[len(p.Coords)-1], true
}

// Clone returns a deep copy; the result never shares its backing array with p
func (p Path) Clone() Path {
	var coords []world.Coordinate
	if p.Coords != nil {
		coords = make([]world.Coordinate, len(p.Coords))
		copy(coords, p.Coords)
	}
	return Path{Coords: coords, Damage: p.Damage}
}

// Equal compares coordinate sequences by value. Damage is not compared.
func (p Path) Equal(o Path) bool {
	if len(p.Coords) != len(o.Coords) {
		return false
	}
	for i := range p.Coords {
		if p.Coords[i] != o.Coords[i] {
			return false
		}
	}
	return true
}

// Connected reports whether every consecutive pair is 4-neighbour adjacent
func (p Path) Connected() bool {
	for i := 1; i < len(p.Coords); i++ {
		if !p.Coords[i-1].Adjacent(p.Coords[i]) {
			return false
		}
	}
	return true
}
