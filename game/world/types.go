package world

import (
	"fmt"
	"sort"
)

// TileType represents the broad classification of a grid cell
type TileType string

const (
	Wall    TileType = "wall"
	Empty   TileType = "empty"   // placeholder for cells outside the drivable world
	Utility TileType = "utility" // road that has not been driven over or seen up close yet
	Road    TileType = "road"
	Start   TileType = "start"
	Finish  TileType = "finish"
	Trap    TileType = "trap"
)

// TrapKind identifies the trap subtype of a Trap tile
type TrapKind string

const (
	NoTrap TrapKind = ""
	Lava   TrapKind = "lava"
	Mud    TrapKind = "mud"
	Health TrapKind = "health"
	Grass  TrapKind = "grass"
)

// Tile is the classification of a single coordinate
type Tile struct {
	Type TileType `json:"type"`
	Trap TrapKind `json:"trap,omitempty"`
	Key  int      `json:"key,omitempty"`  // lava only, 0 means no key
	Heal int      `json:"heal,omitempty"` // health only
}

// LavaTile returns a lava trap carrying the given key (0 for none)
func LavaTile(key int) Tile {
	return Tile{Type: Trap, Trap: Lava, Key: key}
}

// HealthTile returns a health trap restoring the given amount
func HealthTile(heal int) Tile {
	return Tile{Type: Trap, Trap: Health, Heal: heal}
}

// MudTile returns an impassable mud trap
func MudTile() Tile {
	return Tile{Type: Trap, Trap: Mud}
}

// GrassTile returns a grass trap
func GrassTile() Tile {
	return Tile{Type: Trap, Trap: Grass}
}

func (t Tile) IsTrap() bool   { return t.Type == Trap }
func (t Tile) IsLava() bool   { return t.Type == Trap && t.Trap == Lava }
func (t Tile) IsMud() bool    { return t.Type == Trap && t.Trap == Mud }
func (t Tile) IsHealth() bool { return t.Type == Trap && t.Trap == Health }

// Is reports whether the tile has the given broad type
func (t Tile) Is(tt TileType) bool {
	return t.Type == tt
}

// Damaging reports whether entering the tile can hurt the car
func (t Tile) Damaging() bool {
	return t.IsTrap() && !t.IsHealth()
}

func (t Tile) String() string {
	switch {
	case t.IsLava() && t.Key > 0:
		return fmt.Sprintf("lava(key=%d)", t.Key)
	case t.IsHealth():
		return fmt.Sprintf("health(+%d)", t.Heal)
	case t.IsTrap():
		return string(t.Trap)
	default:
		return string(t.Type)
	}
}

// Coordinate is an integer grid position
type Coordinate struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add returns the coordinate offset by d
func (c Coordinate) Add(d Coordinate) Coordinate {
	return Coordinate{X: c.X + d.X, Y: c.Y + d.Y}
}

// Neighbours returns the 4-connected neighbours in expansion order
func (c Coordinate) Neighbours() [4]Coordinate {
	return [4]Coordinate{
		{X: c.X + 1, Y: c.Y},
		{X: c.X - 1, Y: c.Y},
		{X: c.X, Y: c.Y + 1},
		{X: c.X, Y: c.Y - 1},
	}
}

// Adjacent reports whether o is a 4-neighbour of c
func (c Coordinate) Adjacent(o Coordinate) bool {
	return ManhattanDistance(c, o) == 1
}

func (c Coordinate) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// ManhattanDistance calculates the Manhattan distance between two coordinates
func ManhattanDistance(from, to Coordinate) int {
	dx := from.X - to.X
	if dx < 0 {
		dx = -dx
	}
	dy := from.Y - to.Y
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

// Nearest returns the candidate closest to pos. Ties keep the earliest candidate.
func Nearest(pos Coordinate, candidates []Coordinate) (Coordinate, bool) {
	if len(candidates) == 0 {
		return Coordinate{}, false
	}
	best := candidates[0]
	bestDist := ManhattanDistance(pos, best)
	for _, c := range candidates[1:] {
		if d := ManhattanDistance(pos, c); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best, true
}

// KeySet holds the ids of keys the car has collected
type KeySet map[int]struct{}

// NewKeySet builds a key set from ids
func NewKeySet(ids ...int) KeySet {
	ks := make(KeySet, len(ids))
	for _, id := range ids {
		ks[id] = struct{}{}
	}
	return ks
}

func (ks KeySet) Has(id int) bool {
	_, ok := ks[id]
	return ok
}

// Add marks id as collected
func (ks KeySet) Add(id int) {
	ks[id] = struct{}{}
}

// IDs returns the collected ids in ascending order
func (ks KeySet) IDs() []int {
	ids := make([]int, 0, len(ks))
	for id := range ks {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Clone returns an independent copy of the set
func (ks KeySet) Clone() KeySet {
	out := make(KeySet, len(ks))
	for id := range ks {
		out[id] = struct{}{}
	}
	return out
}
