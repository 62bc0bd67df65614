// internal/game/types.go
//
// Core type definitions for the Pac-Man board.
// Defines:
//   - Position and Bounds: integer pixel geometry (origin top-left, y grows down).
//   - FruitType: closed set of fruits and their point values.
//   - Direction: movement commands and their wire labels.
//   - Fruit, Pacman: the pieces on the board.

package game

import (
	"errors"
	"fmt"
)

// Position is a pixel coordinate on the board.
type Position struct {
	X int32
	Y int32
}

// Bounds is an inclusive rectangle. MinX < MaxX and MinY < MaxY.
type Bounds struct {
	MinX, MinY int32
	MaxX, MaxY int32
}

// ErrInvalidBounds is returned by NewBounds for empty or inverted rectangles.
var ErrInvalidBounds = errors.New("invalid board bounds")

// NewBounds validates and returns a Bounds.
func NewBounds(minX, minY, maxX, maxY int32) (Bounds, error) {
	if minX >= maxX || minY >= maxY {
		return Bounds{}, fmt.Errorf("%w: (%d,%d,%d,%d)", ErrInvalidBounds, minX, minY, maxX, maxY)
	}
	return Bounds{MinX: minX, MinY: minY, MaxX: maxX, MaxY: maxY}, nil
}

// Contains reports whether p lies inside b, edges included.
func (b Bounds) Contains(p Position) bool {
	return b.contains(int64(p.X), int64(p.Y))
}

func (b Bounds) contains(x, y int64) bool {
	return x >= int64(b.MinX) && x <= int64(b.MaxX) && y >= int64(b.MinY) && y <= int64(b.MaxY)
}

// Midpoint is where Pac-Man starts. It is computed in int64 so it stays
// inside b for any int32 rectangle.
func (b Bounds) Midpoint() Position {
	return Position{X: mid(b.MinX, b.MaxX), Y: mid(b.MinY, b.MaxY)}
}

func mid(lo, hi int32) int32 {
	return int32(int64(lo) + (int64(hi)-int64(lo))/2)
}

// FruitType identifies a fruit. The names and values are part of the wire contract.
type FruitType uint8

const (
	Cherry FruitType = iota
	Strawberry
	Orange
	Apple
	Melon
	Galaxian
	Bell
	Key
)

// FruitTypes lists every fruit type in declaration order.
var FruitTypes = []FruitType{Cherry, Strawberry, Orange, Apple, Melon, Galaxian, Bell, Key}

var fruitNames = [...]string{"CHERRY", "STRAWBERRY", "ORANGE", "APPLE", "MELON", "GALAXIAN", "BELL", "KEY"}

var fruitValues = [...]int32{100, 300, 500, 700, 1000, 2000, 3000, 5000}

// Value returns the points awarded for eating a fruit of this type.
func (t FruitType) Value() int32 {
	if int(t) >= len(fruitValues) {
		return 0
	}
	return fruitValues[t]
}

func (t FruitType) String() string {
	if int(t) >= len(fruitNames) {
		return fmt.Sprintf("FruitType(%d)", uint8(t))
	}
	return fruitNames[t]
}

// ParseFruitType maps a wire name back to its type.
func ParseFruitType(name string) (FruitType, error) {
	for i, n := range fruitNames {
		if n == name {
			return FruitType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown fruit type %q", name)
}

// Direction is a movement command. None is only a Pac-Man state, never a command.
type Direction uint8

const (
	None Direction = iota
	Up
	Down
	Left
	Right
)

// ErrUnknownDirection is returned when a label does not name one of the four moves.
var ErrUnknownDirection = errors.New("unknown direction")

var directionLabels = [...]string{"NINGUNA", "ARRIBA", "ABAJO", "IZQUIERDA", "DERECHA"}

var directionNames = [...]string{"NONE", "UP", "DOWN", "LEFT", "RIGHT"}

// Label returns the wire label of the direction.
func (d Direction) Label() string {
	if int(d) >= len(directionLabels) {
		return ""
	}
	return directionLabels[d]
}

func (d Direction) String() string {
	if int(d) >= len(directionNames) {
		return fmt.Sprintf("Direction(%d)", uint8(d))
	}
	return directionNames[d]
}

// Valid reports whether d is one of UP, DOWN, LEFT, RIGHT.
func (d Direction) Valid() bool {
	return d >= Up && d <= Right
}

// Delta returns the unit step of the direction.
func (d Direction) Delta() (dx, dy int32) {
	switch d {
	case Up:
		return 0, -1
	case Down:
		return 0, 1
	case Left:
		return -1, 0
	case Right:
		return 1, 0
	}
	return 0, 0
}

// ParseDirection maps a wire label to a movable direction.
// "NINGUNA" and anything else outside the four moves is rejected.
func ParseDirection(label string) (Direction, error) {
	for i := Up; i <= Right; i++ {
		if directionLabels[i] == label {
			return i, nil
		}
	}
	return None, fmt.Errorf("%w: %q", ErrUnknownDirection, label)
}

// Fruit is a single fruit on the board. Once Eaten is true it stays true.
type Fruit struct {
	Type  FruitType
	Pos   Position
	Eaten bool
}

// Pacman holds the player's avatar.
type Pacman struct {
	Pos           Position
	LastDirection Direction
}
