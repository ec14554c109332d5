// Package planner computes routes for the car and turns them into steering commands.
//
// The planner implements:
//   - Search, a best-first grid search parameterized by a CostPolicy
//   - GoalSeeking, a Manhattan-guided policy that is strongly attracted to uncollected keys
//   - DamageAverse, a greedy policy that minimizes damage first and favors unexplored road second
//   - History, a bounded record of recent routes that suppresses tick-to-tick oscillation
//   - Translate, which converts a route and a heading into relative directions
//
// Strategies:
//
// A Strategy bundles a policy, goal selection and its own History. Two strategies are
// provided: GoalSeekingStrategy searches only the best ranked candidate goal, while
// ExplorationStrategy searches every candidate and keeps the least damaging route.
// A strategy instance is not safe for concurrent use; separate instances share nothing.
//
// Usage:
//
//	strategy := planner.NewGoalSeekingStrategy()
//	plan := strategy.Search(planner.Request{
//		Map:          known,
//		Orientation:  world.North,
//		Start:        carPos,
//		Intermediate: keyTiles,
//		Final:        exits,
//		Keys:         collected,
//	})
//	if plan.Path.Empty() {
//		// no route, fall back to something reactive
//	}
//
// An empty path (and an empty direction sequence) is the only signal for "no route".
// Unobserved coordinates are treated as impassable.
package planner
