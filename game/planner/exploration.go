package planner

// ExplorationStrategy searches every candidate goal with the DamageAverse
// policy and keeps the least damaging route.
type ExplorationStrategy struct {
	tracker
	lavaDamage int
}

var _ Strategy = (*ExplorationStrategy)(nil)

// NewExplorationStrategy creates a strategy with an empty history
func NewExplorationStrategy(opts ...Option) *ExplorationStrategy {
	o := buildOptions(opts)
	return &ExplorationStrategy{
		tracker:    newTracker("exploration", o),
		lavaDamage: o.lavaDamage,
	}
}

// Search tries the intermediate goals in the order given. Only a strictly
// lower damage replaces the best route so far, so on equal damage the earlier
// candidate wins; callers wanting the nearer goal should sort candidates by
// distance first. Unreachable candidates are skipped and the loop stops at the
// first route that deals no damage. Without intermediate goals the nearest
// final goal is searched instead.
func (s *ExplorationStrategy) Search(req Request) Plan {
	if !req.Orientation.Valid() || (len(req.Intermediate) == 0 && len(req.Final) == 0) {
		return s.finish(Path{}, req.Orientation)
	}

	policy := DamageAverse{NeedHealing: req.NeedHealing, LavaDamage: s.lavaDamage}
	if len(req.Intermediate) == 0 {
		goal := nearestFinal(req.Start, req.Final)
		return s.finish(Search(req.Map, req.Start, goal, policy), req.Orientation)
	}

	var best Path
	searched := 0
	for _, goal := range req.Intermediate {
		searched++
		p := Search(req.Map, req.Start, goal, policy)
		if p.Empty() {
			continue
		}
		if best.Empty() || p.Damage < best.Damage {
			best = p
		}
		if best.Damage <= 0 {
			break
		}
	}

	if s.logEnabled() {
		s.logger.Debug("exploration candidates searched",
			"searched", searched, "candidates", len(req.Intermediate), "damage", best.Damage)
	}
	return s.finish(best, req.Orientation)
}
