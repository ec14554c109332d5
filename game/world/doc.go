// Package world describes the grid the car drives on as seen by the planner.
//
// The package provides:
//   - Coordinate, an (x, y) grid position usable as a map key
//   - Orientation, the car's compass heading (north is +Y, east is +X)
//   - Tile and TileType, the classification of a single grid cell
//   - MapView, the read-only lookup consumed by the planner
//   - Map, a mutable snapshot of everything the car has observed so far
//
// A coordinate missing from a Map has not been observed yet. The planner treats
// such coordinates exactly like impassable tiles.
//
// Usage:
//
//	known := world.Map{}
//	known.Set(world.Coordinate{X: 1, Y: 1}, world.Tile{Type: world.Road})
//	known.Set(world.Coordinate{X: 2, Y: 1}, world.LavaTile(3))
//
//	if tile, ok := known.Tile(world.Coordinate{X: 2, Y: 1}); ok && tile.IsLava() {
//		fmt.Println("key", tile.Key)
//	}
package world
