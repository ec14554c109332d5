package world

import "sort"

// MapView is a read-only lookup of tile classifications.
// The second return value is false for coordinates that have not been observed.
type MapView interface {
	Tile(c Coordinate) (Tile, bool)
}

// Map is a snapshot of observed tiles keyed by coordinate
type Map map[Coordinate]Tile

// Tile implements MapView
func (m Map) Tile(c Coordinate) (Tile, bool) {
	t, ok := m[c]
	return t, ok
}

// Set records the tile at c
func (m Map) Set(c Coordinate, t Tile) {
	m[c] = t
}

// Clone returns an independent copy of the map
func (m Map) Clone() Map {
	out := make(Map, len(m))
	for c, t := range m {
		out[c] = t
	}
	return out
}

// Merge copies the observed view into the map. Empty placeholders in the view
// are ignored so they never overwrite real knowledge.
func (m Map) Merge(view Map) {
	for c, t := range view {
		if t.Is(Empty) {
			continue
		}
		m[c] = t
	}
}

// MarkUnexplored turns every road tile into a utility tile
func (m Map) MarkUnexplored() {
	for c, t := range m {
		if t.Is(Road) {
			m[c] = Tile{Type: Utility}
		}
	}
}

// Find returns every coordinate whose tile satisfies pred, ordered by row then column
func (m Map) Find(pred func(Tile) bool) []Coordinate {
	var found []Coordinate
	for c, t := range m {
		if pred(t) {
			found = append(found, c)
		}
	}
	SortCoordinates(found)
	return found
}

// SortCoordinates orders coordinates by Y then X so map iteration order never leaks out
func SortCoordinates(cs []Coordinate) {
	sort.Slice(cs, func(i, j int) bool {
		if cs[i].Y != cs[j].Y {
			return cs[i].Y < cs[j].Y
		}
		return cs[i].X < cs[j].X
	})
}
