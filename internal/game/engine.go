// internal/game/engine.go
//
// Authoritative move engine for a single Pac-Man board.
// Responsibilities:
//   - Create boards with Pac-Man at the midpoint and four distinct random fruits.
//   - Apply one directional step, refusing moves that would leave the bounds.
//   - Detect fruit collisions within CollisionRadius and credit the score.
//   - Report the outcome of every step as a value (StepResult).
//
// Notes:
//   - The engine does no I/O; the session layer sequences network traffic around it.
//   - Fruits are resolved in placement order, which fixes the order of EatenLog.
package game

import (
	"math/rand/v2"
)

const (
	// StepPixels is the distance covered by one accepted move.
	StepPixels = 4
	// CollisionRadius is the eat distance between Pac-Man and a fruit.
	CollisionRadius = 10
	// FruitsPerBoard is the number of distinct fruits placed at session start.
	FruitsPerBoard = 4
)

// DefaultBounds matches a 700x460 panel with a 10 pixel margin.
var DefaultBounds = Bounds{MinX: 10, MinY: 10, MaxX: 690, MaxY: 450}

// Board is the full authoritative state of one game.
type Board struct {
	Bounds   Bounds
	Pacman   Pacman
	Fruits   []Fruit
	Score    int32
	EatenLog []FruitType
}

// StepResult describes what a single Apply did.
type StepResult struct {
	Direction       Direction
	Pos             Position
	Score           int32
	HitWall         bool
	AteFruit        bool
	PointsGained    int32
	Eaten           []FruitType
	FruitsRemaining int32
	GameOver        bool
}

// NewBoard places Pac-Man at the midpoint and the given fruits in order.
// Fruit positions are taken as-is; callers sampling them must stay within bounds.
func NewBoard(b Bounds, fruits []Fruit) *Board {
	fs := make([]Fruit, len(fruits))
	copy(fs, fruits)
	return &Board{
		Bounds:   b,
		Pacman:   Pacman{Pos: b.Midpoint(), LastDirection: None},
		Fruits:   fs,
		EatenLog: []FruitType{},
	}
}

// NewRandomBoard draws FruitsPerBoard distinct types without replacement and
// places each uniformly at random inside b (edges included).
// Positions are not deduplicated against each other or against Pac-Man.
func NewRandomBoard(b Bounds, rng *rand.Rand) *Board {
	types := make([]FruitType, len(FruitTypes))
	copy(types, FruitTypes)
	rng.Shuffle(len(types), func(i, j int) { types[i], types[j] = types[j], types[i] })

	fruits := make([]Fruit, 0, FruitsPerBoard)
	for _, t := range types[:FruitsPerBoard] {
		fruits = append(fruits, Fruit{Type: t, Pos: RandomPosition(b, rng)})
	}
	return NewBoard(b, fruits)
}

// RandomPosition samples a point uniformly from the inclusive bounds.
func RandomPosition(b Bounds, rng *rand.Rand) Position {
	w := int64(b.MaxX) - int64(b.MinX) + 1
	h := int64(b.MaxY) - int64(b.MinY) + 1
	return Position{
		X: b.MinX + int32(rng.Int64N(w)),
		Y: b.MinY + int32(rng.Int64N(h)),
	}
}

// Apply moves Pac-Man one step in dir and resolves collisions.
//
// Rules:
//   - The candidate position is the current one plus StepPixels in dir.
//   - A candidate outside the bounds sets HitWall and leaves Pac-Man in place.
//   - Otherwise Pac-Man moves and LastDirection becomes dir.
//   - Every uneaten fruit with squared distance <= CollisionRadius² is eaten;
//     several fruits may be eaten by one step and all are credited.
//   - GameOver is set once no uneaten fruit remains.
//
// dir must be Valid; anything else is treated as a wall hit with no movement.
func (g *Board) Apply(dir Direction) StepResult {
	res := StepResult{Direction: dir}

	dx, dy := dir.Delta()
	nx := int64(g.Pacman.Pos.X) + int64(dx)*StepPixels
	ny := int64(g.Pacman.Pos.Y) + int64(dy)*StepPixels
	if !dir.Valid() || !g.Bounds.contains(nx, ny) {
		res.HitWall = true
	} else {
		g.Pacman.Pos = Position{X: int32(nx), Y: int32(ny)}
		g.Pacman.LastDirection = dir
	}

	for i := range g.Fruits {
		f := &g.Fruits[i]
		if f.Eaten || !collides(g.Pacman.Pos, f.Pos) {
			continue
		}
		f.Eaten = true
		pts := f.Type.Value()
		g.Score += pts
		g.EatenLog = append(g.EatenLog, f.Type)
		res.AteFruit = true
		res.PointsGained += pts
		res.Eaten = append(res.Eaten, f.Type)
	}

	res.Pos = g.Pacman.Pos
	res.Score = g.Score
	res.FruitsRemaining = g.Remaining()
	res.GameOver = res.FruitsRemaining == 0
	return res
}

// Remaining counts fruits not yet eaten.
func (g *Board) Remaining() int32 {
	var n int32
	for _, f := range g.Fruits {
		if !f.Eaten {
			n++
		}
	}
	return n
}

// EatenNames returns the eat log as wire names.
func (g *Board) EatenNames() []string {
	out := make([]string, len(g.EatenLog))
	for i, t := range g.EatenLog {
		out[i] = t.String()
	}
	return out
}

// collides uses squared integer distance; int64 keeps wide boards from overflowing.
func collides(a, b Position) bool {
	dx := int64(a.X) - int64(b.X)
	dy := int64(a.Y) - int64(b.Y)
	return dx*dx+dy*dy <= CollisionRadius*CollisionRadius
}
