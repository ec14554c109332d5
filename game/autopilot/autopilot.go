package autopilot

import (
	"log/slog"
	"slices"

	"github.com/wricardo/mcp-training/autopilot/game/planner"
	"github.com/wricardo/mcp-training/autopilot/game/world"
)

const (
	DefaultHealThreshold = 30
	DefaultMaxHealth     = 100
)

// Mode names the behaviour chosen for a tick
type Mode string

const (
	ModeExplore Mode = "explore"
	ModeHeal    Mode = "heal"
	ModeSeek    Mode = "seek"
	ModeBrake   Mode = "brake"
)

// Observation is what the car reports at the start of a tick
type Observation struct {
	Position    world.Coordinate
	Orientation world.Orientation
	Velocity    int // negative while reversing
	Health      int
	Keys        world.KeySet
	View        world.Map
}

// Decision is the autopilot's output for one tick
type Decision struct {
	Mode      Mode                      `json:"mode"`
	Command   planner.RelativeDirection `json:"command"`
	Controls  Controls                  `json:"controls"`
	Remaining []world.Coordinate        `json:"remaining,omitempty"` // route left after this command
	Thrashing bool                      `json:"thrashing,omitempty"`
	Fallback  bool                      `json:"fallback,omitempty"` // no route, the car holds position
}

// Option configures an Autopilot
type Option func(*Autopilot)

// WithHealThreshold sets the health below which the car looks for healing
func WithHealThreshold(n int) Option {
	return func(a *Autopilot) { a.healThreshold = n }
}

// WithMaxHealth sets the health at which the car stops healing
func WithMaxHealth(n int) Option {
	return func(a *Autopilot) { a.maxHealth = n }
}

// WithLavaDamage sets the damage both strategies assume per lava tile
func WithLavaDamage(n int) Option {
	return func(a *Autopilot) { a.lavaDamage = n }
}

// WithLogger sets the logger shared with the strategies
func WithLogger(l *slog.Logger) Option {
	return func(a *Autopilot) {
		if l != nil {
			a.logger = l
		}
	}
}

// Autopilot keeps the car's knowledge of the world and picks one command per tick.
// It is not safe for concurrent use.
type Autopilot struct {
	known     world.Map
	totalKeys int

	seeker   *planner.GoalSeekingStrategy
	explorer *planner.ExplorationStrategy

	healThreshold int
	maxHealth     int
	lavaDamage    int
	logger        *slog.Logger
}

// New creates an autopilot from the initial map. Roads are marked unexplored
// until the car sees them; totalKeys is the number of keys needed to exit.
func New(known world.Map, totalKeys int, opts ...Option) *Autopilot {
	a := &Autopilot{
		known:         known.Clone(),
		totalKeys:     totalKeys,
		healThreshold: DefaultHealThreshold,
		maxHealth:     DefaultMaxHealth,
		lavaDamage:    planner.DefaultLavaDamage,
		logger:        slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.known.MarkUnexplored()

	strategyOpts := []planner.Option{planner.WithLogger(a.logger), planner.WithLavaDamage(a.lavaDamage)}
	a.seeker = planner.NewGoalSeekingStrategy(strategyOpts...)
	a.explorer = planner.NewExplorationStrategy(strategyOpts...)
	return a
}

// Known returns a copy of the current knowledge map
func (a *Autopilot) Known() world.Map {
	return a.known.Clone()
}

// Tick absorbs the observation and returns the command for this tick
func (a *Autopilot) Tick(obs Observation) Decision {
	a.known.Merge(obs.View)

	var (
		mode Mode
		plan planner.Plan
	)
	switch {
	case a.explorationNeeded(obs.Keys):
		mode, plan = ModeExplore, a.explore(obs)
	case a.healing(obs):
		return Decision{Mode: ModeBrake, Command: planner.None, Controls: Controls{Throttle: ThrottleBrake}}
	case obs.Health < a.healThreshold:
		mode, plan = ModeHeal, a.findHealth(obs)
	default:
		mode, plan = ModeSeek, a.seek(obs)
		if plan.Empty() {
			// every known key is out of reach
			mode, plan = ModeExplore, a.explore(obs)
		}
	}

	route, directions := a.follow(plan, obs)
	if len(directions) == 0 {
		a.logger.Debug("no route, holding position", "mode", mode, "position", obs.Position)
		return Decision{Mode: mode, Command: planner.None, Controls: Controls{Throttle: ThrottleNone}, Fallback: true}
	}

	command := directions[0]
	controls, err := ControlsFor(command, obs.Velocity)
	if err != nil {
		a.logger.Warn("cannot actuate command", "command", command, "error", err)
		return Decision{Mode: mode, Command: planner.None, Controls: controls, Fallback: true}
	}

	return Decision{
		Mode:      mode,
		Command:   command,
		Controls:  controls,
		Remaining: route[1:],
		Thrashing: plan.Thrashing,
	}
}

// Reset forgets both strategies' histories. Knowledge is kept.
func (a *Autopilot) Reset() {
	a.seeker.Reset()
	a.explorer.Reset()
}

// explorationNeeded reports whether no reachable key is known but keys are still missing
func (a *Autopilot) explorationNeeded(keys world.KeySet) bool {
	return len(UncollectedKeys(a.known, keys)) == 0 && len(keys) < a.totalKeys
}

// healing reports whether the car sits on a health tile and is not yet full
func (a *Autopilot) healing(obs Observation) bool {
	t, ok := a.known.Tile(obs.Position)
	return ok && t.IsHealth() && obs.Health < a.maxHealth
}

func (a *Autopilot) request(obs Observation, intermediate []world.Coordinate) planner.Request {
	return planner.Request{
		Map:          a.known,
		Orientation:  obs.Orientation,
		Start:        obs.Position,
		Intermediate: intermediate,
		Final:        Exits(a.known),
		Keys:         obs.Keys,
		NeedHealing:  obs.Health < a.healThreshold,
	}
}

func (a *Autopilot) explore(obs Observation) planner.Plan {
	return a.explorer.Search(a.request(obs, Unexplored(a.known, obs.Position)))
}

func (a *Autopilot) seek(obs Observation) planner.Plan {
	return a.seeker.Search(a.request(obs, UncollectedKeys(a.known, obs.Keys)))
}

// findHealth keeps the route to a key or exit when it is harmless, otherwise
// heads for the known health tiles.
func (a *Autopilot) findHealth(obs Observation) planner.Plan {
	plan := a.seek(obs)
	if !plan.Empty() && harmless(a.known, plan.Path.Coords) {
		return plan
	}
	return a.seeker.Search(a.request(obs, HealthTiles(a.known)))
}

// follow aligns a plan with the car's position. A plan kept by the thrashing
// guard may have been computed from an earlier position, so the route is cut
// at the car and re-translated for the current heading. When the kept route
// does not pass the car at all, the route searched this tick is followed.
func (a *Autopilot) follow(plan planner.Plan, obs Observation) ([]world.Coordinate, []planner.RelativeDirection) {
	coords := plan.Path.Coords
	at := slices.Index(coords, obs.Position)
	switch {
	case at < 0 && plan.Thrashing && !plan.Searched.Empty():
		a.logger.Warn("kept route does not pass the car, following the searched route",
			"position", obs.Position, "kept", len(coords), "searched", plan.Searched.Len())
		coords, at = plan.Searched.Coords, slices.Index(plan.Searched.Coords, obs.Position)
		if at < 0 {
			return nil, nil
		}
	case at < 0:
		return nil, nil
	case at == 0:
		return coords, plan.Directions
	}

	route := coords[at:]
	directions, err := planner.Translate(route, obs.Orientation)
	if err != nil {
		return nil, nil
	}
	return route, directions
}
