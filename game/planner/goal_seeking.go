package planner

import (
	"slices"

	"github.com/wricardo/mcp-training/autopilot/game/world"
)

// GoalSeekingStrategy heads for a single ranked goal using the GoalSeeking policy
type GoalSeekingStrategy struct {
	tracker
	lavaDamage int
}

var _ Strategy = (*GoalSeekingStrategy)(nil)

// NewGoalSeekingStrategy creates a strategy with an empty history
func NewGoalSeekingStrategy(opts ...Option) *GoalSeekingStrategy {
	o := buildOptions(opts)
	return &GoalSeekingStrategy{
		tracker:    newTracker("goal-seeking", o),
		lavaDamage: o.lavaDamage,
	}
}

// Search plans toward the best ranked intermediate goal, or toward the nearest
// final goal when there are no intermediate goals.
func (s *GoalSeekingStrategy) Search(req Request) Plan {
	if !req.Orientation.Valid() || (len(req.Intermediate) == 0 && len(req.Final) == 0) {
		return s.finish(Path{}, req.Orientation)
	}

	goal := nearestFinal(req.Start, req.Final)
	if len(req.Intermediate) > 0 {
		goal = RankGoals(req.Start, req.Intermediate, req.Final)[0]
	}

	policy := GoalSeeking{Keys: req.Keys, LavaDamage: s.lavaDamage}
	return s.finish(Search(req.Map, req.Start, goal, policy), req.Orientation)
}

// RankGoals orders candidates the way GoalSeekingStrategy picks among them:
// nearest to start first, and among equally near candidates the one farthest
// from its nearest final goal first. candidates is not modified.
func RankGoals(start world.Coordinate, candidates, finals []world.Coordinate) []world.Coordinate {
	ranked := slices.Clone(candidates)
	toFinal := func(c world.Coordinate) int {
		return world.ManhattanDistance(c, nearestFinal(c, finals))
	}
	slices.SortStableFunc(ranked, func(a, b world.Coordinate) int {
		return toFinal(a) - toFinal(b)
	})
	slices.Reverse(ranked)
	slices.SortStableFunc(ranked, func(a, b world.Coordinate) int {
		return world.ManhattanDistance(start, a) - world.ManhattanDistance(start, b)
	})
	return ranked
}
