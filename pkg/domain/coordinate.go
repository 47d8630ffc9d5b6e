package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Coordinate addresses one cell slot of the assembler grid.
type Coordinate struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Key returns the persisted map key for the coordinate ("x,y").
func (c Coordinate) Key() string {
	return strconv.Itoa(c.X) + "," + strconv.Itoa(c.Y)
}

func (c Coordinate) String() string { return c.Key() }

// ParseCoordinate parses an "x,y" key produced by Coordinate.Key.
func ParseCoordinate(key string) (Coordinate, error) {
	xs, ys, ok := strings.Cut(key, ",")
	if !ok {
		return Coordinate{}, fmt.Errorf("coordinate %q: missing separator", key)
	}
	x, err := strconv.Atoi(strings.TrimSpace(xs))
	if err != nil {
		return Coordinate{}, fmt.Errorf("coordinate %q: x: %w", key, err)
	}
	y, err := strconv.Atoi(strings.TrimSpace(ys))
	if err != nil {
		return Coordinate{}, fmt.Errorf("coordinate %q: y: %w", key, err)
	}
	return Coordinate{X: x, Y: y}, nil
}

// Direction is the compass direction a cell faces.
type Direction string

// Supported facing directions. Up decreases y.
const (
	DirectionUp    Direction = "up"
	DirectionRight Direction = "right"
	DirectionDown  Direction = "down"
	DirectionLeft  Direction = "left"
)

// Directions lists every direction in clockwise order starting at up.
var Directions = []Direction{DirectionUp, DirectionRight, DirectionDown, DirectionLeft}

// Valid reports whether d is one of the four compass directions.
func (d Direction) Valid() bool {
	switch d {
	case DirectionUp, DirectionRight, DirectionDown, DirectionLeft:
		return true
	}
	return false
}

// Normalize returns d, or up when d is not a known direction.
func (d Direction) Normalize() Direction {
	if d.Valid() {
		return d
	}
	return DirectionUp
}

// Delta returns the coordinate offset of one step in direction d.
func (d Direction) Delta() (dx, dy int) {
	switch d {
	case DirectionUp:
		return 0, -1
	case DirectionRight:
		return 1, 0
	case DirectionDown:
		return 0, 1
	case DirectionLeft:
		return -1, 0
	}
	return 0, 0
}

// Clockwise returns the next direction of the cycle up→right→down→left→up.
func (d Direction) Clockwise() Direction {
	switch d.Normalize() {
	case DirectionUp:
		return DirectionRight
	case DirectionRight:
		return DirectionDown
	case DirectionDown:
		return DirectionLeft
	default:
		return DirectionUp
	}
}

// CounterClockwise is the inverse of Clockwise.
func (d Direction) CounterClockwise() Direction {
	switch d.Normalize() {
	case DirectionUp:
		return DirectionLeft
	case DirectionLeft:
		return DirectionDown
	case DirectionDown:
		return DirectionRight
	default:
		return DirectionUp
	}
}
