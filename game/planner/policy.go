package planner

import (
	"math"

	"github.com/wricardo/mcp-training/autopilot/game/world"
)

const (
	// DefaultLavaDamage is the damage taken for each lava tile entered
	DefaultLavaDamage = 5

	keyAttraction     = 100 // GoalSeeking bonus for an uncollected key
	unexploredPenalty = 10  // GoalSeeking penalty for utility tiles
	trapPenalty       = 10  // GoalSeeking penalty for any other trap
	trapAvoidance     = 100 // DamageAverse priority penalty for non-damaging traps
)

// Unreached is the score read for coordinates the search has not scored yet.
// It is larger than any accumulated cost and never takes part in arithmetic.
const Unreached = math.MaxInt

// Score is the per-coordinate state a policy accumulates along a route
type Score struct {
	Cost   int // movement cost or movement priority
	Damage int
}

var unreachedScore = Score{Cost: Unreached, Damage: Unreached}

// CostPolicy decides how routes are scored and compared
type CostPolicy interface {
	// Enter returns the score after stepping from a coordinate scored from onto tile
	Enter(from Score, tile world.Tile) Score
	// Key is the frontier priority for coordinate c holding score s; lower pops first
	Key(s Score, c, goal world.Coordinate) int
	// Better reports whether candidate should replace the stored score
	Better(candidate, stored Score) bool
}

// GoalSeeking scores routes by step count guided by Manhattan distance.
// Uncollected keys strongly attract, unexplored roads and traps repel.
type GoalSeeking struct {
	Keys       world.KeySet
	LavaDamage int
}

func (g GoalSeeking) Enter(from Score, tile world.Tile) Score {
	next := Score{Cost: from.Cost + 1, Damage: from.Damage}
	switch {
	case tile.IsLava() && tile.Key > 0 && !g.Keys.Has(tile.Key):
		next.Cost -= keyAttraction
	case tile.Is(world.Utility):
		next.Cost += unexploredPenalty
	case tile.IsTrap():
		next.Cost += trapPenalty
	}
	// damage is informational here and never steers the search
	if tile.IsLava() {
		next.Damage += lavaDamage(g.LavaDamage)
	}
	return next
}

func (g GoalSeeking) Key(s Score, c, goal world.Coordinate) int {
	return s.Cost + world.ManhattanDistance(c, goal)
}

func (g GoalSeeking) Better(candidate, stored Score) bool {
	return candidate.Cost < stored.Cost
}

// DamageAverse scores routes by damage first and movement priority second.
// It has no heuristic, so it only minimizes damage greedily.
type DamageAverse struct {
	NeedHealing bool
	LavaDamage  int
}

func (d DamageAverse) Enter(from Score, tile world.Tile) Score {
	next := Score{Cost: from.Cost + 1, Damage: from.Damage}
	switch {
	case tile.IsHealth():
		if d.NeedHealing {
			next.Damage -= tile.Heal
		}
	case tile.IsLava():
		next.Damage += lavaDamage(d.LavaDamage)
	case tile.Is(world.Utility):
		next.Cost--
	case tile.IsTrap():
		next.Cost += trapAvoidance
	}
	return next
}

func (d DamageAverse) Key(s Score, _, _ world.Coordinate) int {
	return s.Damage
}

func (d DamageAverse) Better(candidate, stored Score) bool {
	if candidate.Damage != stored.Damage {
		return candidate.Damage < stored.Damage
	}
	return candidate.Cost < stored.Cost
}

func lavaDamage(n int) int {
	if n <= 0 {
		return DefaultLavaDamage
	}
	return n
}

// scoreTable holds the best known score per coordinate
type scoreTable map[world.Coordinate]Score

// get returns the stored score or unreachedScore for unseen coordinates
func (t scoreTable) get(c world.Coordinate) Score {
	if s, ok := t[c]; ok {
		return s
	}
	return unreachedScore
}
