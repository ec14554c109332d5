package planner

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/wricardo/mcp-training/autopilot/game/world"
)

// Request is the input of one planning tick. Map and Keys are read-only for
// the duration of the call; slices are never reordered in place.
type Request struct {
	Map          world.MapView
	Orientation  world.Orientation
	Start        world.Coordinate
	Intermediate []world.Coordinate // candidate goals, e.g. keys or unexplored road
	Final        []world.Coordinate // exits
	Keys         world.KeySet       // collected key ids
	NeedHealing  bool
}

// Plan is the accepted route of one tick and its steering commands. Searched
// is the route found this tick; it differs from Path when the thrashing guard
// kept an earlier one.
type Plan struct {
	Path       Path                `json:"path"`
	Directions []RelativeDirection `json:"directions"`
	Thrashing  bool                `json:"thrashing"`
	Searched   Path                `json:"-"`
}

// Empty reports whether no route was found
func (p Plan) Empty() bool {
	return p.Path.Empty()
}

// Strategy searches a route for a request and remembers the last accepted plan.
// Implementations own their History and are not safe for concurrent use.
type Strategy interface {
	Search(req Request) Plan
	Path() Path
	Directions() []RelativeDirection
}

// Option configures a strategy
type Option func(*options)

type options struct {
	logger     *slog.Logger
	lavaDamage int
}

// WithLogger sets the logger used for debug output of recorded and thrashing paths
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithLavaDamage sets the damage assumed per lava tile
func WithLavaDamage(n int) Option {
	return func(o *options) {
		o.lavaDamage = n
	}
}

func buildOptions(opts []Option) options {
	o := options{
		logger:     slog.New(slog.DiscardHandler),
		lavaDamage: DefaultLavaDamage,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// tracker holds the state shared by both strategies: the history and the last plan
type tracker struct {
	name       string
	logger     *slog.Logger
	history    History
	path       Path
	directions []RelativeDirection
}

func newTracker(name string, o options) tracker {
	return tracker{
		name:       name,
		logger:     o.logger.With("strategy", name),
		directions: []RelativeDirection{},
	}
}

// finish runs the searched path through the history, translates the accepted
// path and stores it as the current plan. A heading that is not a compass
// direction yields an empty plan and leaves the history untouched.
func (t *tracker) finish(found Path, heading world.Orientation) Plan {
	if !heading.Valid() {
		t.logger.Warn("invalid heading, no plan", "heading", heading)
		t.path = Path{}
		t.directions = []RelativeDirection{}
		return Plan{Directions: []RelativeDirection{}}
	}

	accepted, thrashing := t.history.Record(found)
	switch {
	case thrashing:
		t.logger.Debug("thrashing detected, keeping previous path",
			"discarded", len(found.Coords), "kept", len(accepted.Coords))
	case !found.Empty():
		t.logger.Debug("path recorded", "length", len(found.Coords), "damage", found.Damage)
	}

	directions, err := Translate(accepted.Coords, heading)
	if err != nil {
		// only a broken search can produce a non-adjacent step
		panic(fmt.Sprintf("planner: %s produced an invalid path: %v", t.name, err))
	}

	t.path = accepted.Clone()
	t.directions = directions
	return Plan{
		Path:       accepted.Clone(),
		Directions: append([]RelativeDirection{}, directions...),
		Thrashing:  thrashing,
		Searched:   found.Clone(),
	}
}

// Path returns a copy of the last accepted path
func (t *tracker) Path() Path {
	return t.path.Clone()
}

// Directions returns a copy of the directions of the last accepted path
func (t *tracker) Directions() []RelativeDirection {
	return append([]RelativeDirection{}, t.directions...)
}

// History returns copies of the retained paths, oldest first
func (t *tracker) History() []Path {
	return t.history.Paths()
}

// Reset forgets the current plan and the history
func (t *tracker) Reset() {
	t.history.Reset()
	t.path = Path{}
	t.directions = []RelativeDirection{}
}

func (t *tracker) logEnabled() bool {
	return t.logger.Enabled(context.Background(), slog.LevelDebug)
}

// nearestFinal returns the final goal closest to c, or c itself when there are none
func nearestFinal(c world.Coordinate, finals []world.Coordinate) world.Coordinate {
	if n, ok := world.Nearest(c, finals); ok {
		return n
	}
	return c
}
