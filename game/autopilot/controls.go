package autopilot

import (
	"errors"
	"fmt"

	"github.com/wricardo/mcp-training/autopilot/game/planner"
)

// Throttle is the acceleration applied in a tick
type Throttle string

const (
	ThrottleForward Throttle = "forward"
	ThrottleReverse Throttle = "reverse"
	ThrottleBrake   Throttle = "brake"
	ThrottleNone    Throttle = "none"
)

// Controls is the actuation for one tick
type Controls struct {
	Throttle Throttle                  `json:"throttle"`
	Turn     planner.RelativeDirection `json:"turn,omitempty"`
}

// ErrUnhandledDirection is returned for directions that have no actuation
var ErrUnhandledDirection = errors.New("unhandled relative direction")

// ControlsFor maps a relative direction to actuation. Turns keep reversing
// when the car is already moving backwards (negative velocity).
func ControlsFor(d planner.RelativeDirection, velocity int) (Controls, error) {
	switch d {
	case planner.Left, planner.Right:
		throttle := ThrottleForward
		if velocity < 0 {
			throttle = ThrottleReverse
		}
		return Controls{Throttle: throttle, Turn: d}, nil
	case planner.Forward:
		return Controls{Throttle: ThrottleForward}, nil
	case planner.Backward:
		return Controls{Throttle: ThrottleReverse}, nil
	default:
		return Controls{Throttle: ThrottleNone}, fmt.Errorf("%w: %q", ErrUnhandledDirection, d)
	}
}
