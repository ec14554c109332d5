package world

import "fmt"

// Orientation is the car's compass heading
type Orientation string

const (
	North Orientation = "north"
	East  Orientation = "east"
	South Orientation = "south"
	West  Orientation = "west"
)

// clockwise order, used for rotations
var compass = [4]Orientation{North, East, South, West}

func (o Orientation) index() int {
	for i, c := range compass {
		if c == o {
			return i
		}
	}
	return -1
}

// Valid reports whether o is one of the four cardinal headings
func (o Orientation) Valid() bool {
	return o.index() >= 0
}

// Left returns the heading after a 90 degree turn to the left
func (o Orientation) Left() Orientation {
	return compass[(o.index()+3)%4]
}

// Right returns the heading after a 90 degree turn to the right
func (o Orientation) Right() Orientation {
	return compass[(o.index()+1)%4]
}

// Reverse returns the opposite heading
func (o Orientation) Reverse() Orientation {
	return compass[(o.index()+2)%4]
}

// Delta returns the unit step taken when driving forward with this heading
func (o Orientation) Delta() Coordinate {
	switch o {
	case North:
		return Coordinate{X: 0, Y: 1}
	case East:
		return Coordinate{X: 1, Y: 0}
	case South:
		return Coordinate{X: 0, Y: -1}
	case West:
		return Coordinate{X: -1, Y: 0}
	}
	return Coordinate{}
}

// ParseOrientation converts a heading name into an Orientation
func ParseOrientation(s string) (Orientation, error) {
	o := Orientation(s)
	if !o.Valid() {
		return "", fmt.Errorf("invalid orientation %q", s)
	}
	return o, nil
}
