// Package autopilot decides, tick by tick, where the car goes next.
//
// Each tick the autopilot merges the car's view into its knowledge map and picks a
// behaviour:
//   - explore when every known key is collected but keys are still missing
//   - brake while standing on a health tile below full health
//   - heal when health drops below the threshold, unless a harmless route to a goal exists
//   - seek uncollected keys and exits otherwise, exploring when none is reachable
//
// The chosen route is planned with the planner package and the first step is turned
// into Controls. When no route exists the decision is a "none" command flagged as
// Fallback and the caller keeps the car in place.
package autopilot
