package game

// Snapshot is an immutable copy of a board, safe to hand to renderers
// and observers on other goroutines.
type Snapshot struct {
	Bounds    Bounds
	Pacman    Pacman
	Fruits    []Fruit
	Score     int32
	Remaining int32
}

// Snapshot copies the current board state.
func (g *Board) Snapshot() Snapshot {
	fs := make([]Fruit, len(g.Fruits))
	copy(fs, g.Fruits)
	return Snapshot{
		Bounds:    g.Bounds,
		Pacman:    g.Pacman,
		Fruits:    fs,
		Score:     g.Score,
		Remaining: g.Remaining(),
	}
}
