package planner

import (
	"errors"
	"fmt"

	"github.com/wricardo/mcp-training/autopilot/game/world"
)

// RelativeDirection is a steering command relative to the car's heading
type RelativeDirection string

const (
	Left     RelativeDirection = "left"
	Right    RelativeDirection = "right"
	Forward  RelativeDirection = "forward"
	Backward RelativeDirection = "backward"
	None     RelativeDirection = "none"
)

// ErrInvalidStep is returned when two consecutive path coordinates are not a unit step apart
var ErrInvalidStep = errors.New("path step is not a unit move along one axis")

// ErrInvalidHeading is returned for a heading that is not a compass direction
var ErrInvalidHeading = errors.New("invalid heading")

type stepKey struct {
	heading world.Orientation
	dx, dy  int
}

// relativeSteps maps (heading, dx, dy) of a unit step to the command that takes it.
// North is +Y and east is +X.
var relativeSteps = map[stepKey]RelativeDirection{
	{world.North, 0, 1}:  Forward,
	{world.North, 0, -1}: Backward,
	{world.North, 1, 0}:  Right,
	{world.North, -1, 0}: Left,

	{world.East, 1, 0}:  Forward,
	{world.East, -1, 0}: Backward,
	{world.East, 0, 1}:  Left,
	{world.East, 0, -1}: Right,

	{world.South, 0, -1}: Forward,
	{world.South, 0, 1}:  Backward,
	{world.South, 1, 0}:  Left,
	{world.South, -1, 0}: Right,

	{world.West, -1, 0}: Forward,
	{world.West, 1, 0}:  Backward,
	{world.West, 0, 1}:  Right,
	{world.West, 0, -1}: Left,
}

// RelativeStep classifies the move from one coordinate to the next for a car
// with the given heading.
func RelativeStep(heading world.Orientation, from, to world.Coordinate) (RelativeDirection, error) {
	if !heading.Valid() {
		return None, fmt.Errorf("%w %q", ErrInvalidHeading, heading)
	}
	dx, dy := to.X-from.X, to.Y-from.Y
	if dx == 0 && dy == 0 {
		return None, nil
	}
	d, ok := relativeSteps[stepKey{heading, dx, dy}]
	if !ok {
		return None, fmt.Errorf("%v -> %v: %w", from, to, ErrInvalidStep)
	}
	return d, nil
}

// Turn returns the heading after executing d
func Turn(heading world.Orientation, d RelativeDirection) world.Orientation {
	switch d {
	case Left:
		return heading.Left()
	case Right:
		return heading.Right()
	case Backward:
		return heading.Reverse()
	default:
		return heading
	}
}

// Translate converts a coordinate path into one relative direction per edge,
// starting from the given heading and carrying the heading along the path.
func Translate(path []world.Coordinate, heading world.Orientation) ([]RelativeDirection, error) {
	if len(path) < 2 {
		return []RelativeDirection{}, nil
	}

	directions := make([]RelativeDirection, 0, len(path)-1)
	for i := 1; i < len(path); i++ {
		d, err := RelativeStep(heading, path[i-1], path[i])
		if err != nil {
			return nil, fmt.Errorf("translate edge %d: %w", i, err)
		}
		directions = append(directions, d)
		heading = Turn(heading, d)
	}
	return directions, nil
}
