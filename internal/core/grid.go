package core

// Supported connectivity patterns.
const (
	Connected4  = 4
	Connected8  = 8
	Connected16 = 16
	Connected32 = 32
)

// Grid is a rectangular map of traversable and blocked cells.
type Grid struct {
	Width, Height int
	blocked       []bool // row-major, Height x Width
}

// NewGrid creates an open grid.
func NewGrid(width, height int) *Grid {
	return &Grid{
		Width:   width,
		Height:  height,
		blocked: make([]bool, width*height),
	}
}

// InBounds checks if a cell lies on the grid.
func (g *Grid) InBounds(i, j int) bool {
	return i >= 0 && i < g.Height && j >= 0 && j < g.Width
}

// SetBlocked marks a cell as a static obstacle (or clears it).
func (g *Grid) SetBlocked(i, j int, blocked bool) {
	if !g.InBounds(i, j) {
		return
	}
	g.blocked[i*g.Width+j] = blocked
}

// Blocked reports whether a cell is a static obstacle. Out-of-bounds cells are blocked.
func (g *Grid) Blocked(i, j int) bool {
	if !g.InBounds(i, j) {
		return true
	}
	return g.blocked[i*g.Width+j]
}

// Traversable checks if an agent can occupy a cell.
func (g *Grid) Traversable(i, j int) bool {
	return !g.Blocked(i, j)
}

// Index returns the row-major index of an in-bounds cell.
func (g *Grid) Index(c Cell) int {
	return c.I*g.Width + c.J
}

// Moves returns the relative moves of a connectivity pattern, in a fixed order.
// Unknown values fall back to 8-connectivity.
func Moves(connectedness int) []Cell {
	moves := []Cell{{0, 1}, {1, 0}, {0, -1}, {-1, 0}}
	if connectedness == Connected4 {
		return moves
	}
	moves = append(moves, Cell{1, 1}, Cell{1, -1}, Cell{-1, -1}, Cell{-1, 1})
	if connectedness != Connected16 && connectedness != Connected32 {
		return moves
	}
	moves = append(moves,
		Cell{1, 2}, Cell{2, 1}, Cell{2, -1}, Cell{1, -2},
		Cell{-1, -2}, Cell{-2, -1}, Cell{-2, 1}, Cell{-1, 2})
	if connectedness == Connected16 {
		return moves
	}
	return append(moves,
		Cell{1, 3}, Cell{3, 1}, Cell{3, -1}, Cell{1, -3},
		Cell{-1, -3}, Cell{-3, -1}, Cell{-3, 1}, Cell{-1, 3},
		Cell{2, 3}, Cell{3, 2}, Cell{3, -2}, Cell{2, -3},
		Cell{-2, -3}, Cell{-3, -2}, Cell{-3, 2}, Cell{-2, 3})
}

// ValidMoves returns the relative moves from (i, j) whose swept disc of radius size
// stays on traversable cells.
func (g *Grid) ValidMoves(i, j, connectedness int, size float64) []Cell {
	from := Cell{i, j}
	var valid []Cell
	for _, m := range Moves(connectedness) {
		to := from.Add(m)
		if !g.Traversable(to.I, to.J) {
			continue
		}
		if g.LineOfSight(from, to, size) {
			valid = append(valid, m)
		}
	}
	return valid
}
