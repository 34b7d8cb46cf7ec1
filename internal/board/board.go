// Package board implements the Minesweeper board engine: mine layout,
// adjacency counts, flood-fill reveal, flags and the win condition.
//
// A Board is not safe for concurrent use; callers serialise actions.
package board

import (
	"fmt"
	"math/rand/v2"
)

type Board struct {
	params     Params
	mines      []bool
	counts     []int8 // mined neighbours, meaningless for mines
	revealed   []bool
	flagged    []bool
	minesShown bool
}

func newBoard(params Params) *Board {
	n := params.Cells()
	return &Board{
		params:   params,
		mines:    make([]bool, n),
		counts:   make([]int8, n),
		revealed: make([]bool, n),
		flagged:  make([]bool, n),
	}
}

// New lays out params.MineCount mines uniformly at random, without
// replacement, and computes the adjacency counts. All cells start hidden
// and unflagged. A nil r uses a randomly seeded source.
func New(params Params, r *rand.Rand) (*Board, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if r == nil {
		r = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	b := newBoard(params)

	candidates := make([]int, params.Cells())
	for i := range candidates {
		candidates[i] = i
	}

	/*
	 * Pick n off the list at random, moving the last candidate into the
	 * picked slot so every cell is chosen at most once.
	 */
	k := len(candidates)
	for range params.MineCount {
		i := r.IntN(k)
		b.mines[candidates[i]] = true
		k--
		candidates[i] = candidates[k]
	}

	b.countAdjacent()
	return b, nil
}

// NewWithMines builds a size x size board with mines at the given points.
func NewWithMines(size int, mines []Point) (*Board, error) {
	params := Params{Size: size, MineCount: len(mines)}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	b := newBoard(params)
	for _, p := range mines {
		if !params.Contains(p.X, p.Y) {
			return nil, fmt.Errorf("%w: mine %s out of bounds", ErrInvalidConfiguration, p)
		}
		i := b.index(p.X, p.Y)
		if b.mines[i] {
			return nil, fmt.Errorf("%w: duplicate mine %s", ErrInvalidConfiguration, p)
		}
		b.mines[i] = true
	}
	b.countAdjacent()
	return b, nil
}

func (b *Board) countAdjacent() {
	for i := range b.mines {
		if b.mines[i] {
			continue
		}
		var n int8
		b.forEachNeighbour(i, func(j int) {
			if b.mines[j] {
				n++
			}
		})
		b.counts[i] = n
	}
}

func (b *Board) index(x, y int) int {
	return y*b.params.Size + x
}

func (b *Board) point(i int) Point {
	return Point{X: i % b.params.Size, Y: i / b.params.Size}
}

// forEachNeighbour calls fn for each of the up to 8 in-bounds neighbours of
// cell i.
func (b *Board) forEachNeighbour(i int, fn func(j int)) {
	w := b.params.Size
	x, y := i%w, i/w
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			if b.params.Contains(x+dx, y+dy) {
				fn((y+dy)*w + (x + dx))
			}
		}
	}
}

func (b *Board) checkPoint(x, y int) error {
	if !b.params.Contains(x, y) {
		return fmt.Errorf(
			"%w: %d:%d on a %dx%d grid",
			ErrInvalidCoordinate, x, y, b.params.Size, b.params.Size,
		)
	}
	return nil
}

func (b *Board) Params() Params { return b.params }
func (b *Board) Size() int      { return b.params.Size }
func (b *Board) MineCount() int { return b.params.MineCount }

func (b *Board) MineAt(x, y int) bool {
	return b.params.Contains(x, y) && b.mines[b.index(x, y)]
}

// Count returns the number of mined neighbours of a safe cell, or -1 for a
// mine or a point outside the grid.
func (b *Board) Count(x, y int) int {
	if !b.params.Contains(x, y) || b.mines[b.index(x, y)] {
		return -1
	}
	return int(b.counts[b.index(x, y)])
}

func (b *Board) Revealed(x, y int) bool {
	return b.params.Contains(x, y) && b.revealed[b.index(x, y)]
}

func (b *Board) Flagged(x, y int) bool {
	return b.params.Contains(x, y) && b.flagged[b.index(x, y)]
}

// Flags returns the number of flagged cells.
func (b *Board) Flags() (n int) {
	for _, f := range b.flagged {
		if f {
			n++
		}
	}
	return
}

type FlagOutcome struct {
	Flagged bool `json:"flagged"`
	Changed bool `json:"changed"`
}

// ToggleFlag flips the flag on a hidden cell. Revealed cells cannot be
// flagged; the call is a no-op for them.
func (b *Board) ToggleFlag(x, y int) (FlagOutcome, error) {
	if err := b.checkPoint(x, y); err != nil {
		return FlagOutcome{}, err
	}
	i := b.index(x, y)
	if b.revealed[i] {
		return FlagOutcome{Flagged: b.flagged[i]}, nil
	}
	b.flagged[i] = !b.flagged[i]
	return FlagOutcome{Flagged: b.flagged[i], Changed: true}, nil
}

// CheckWin reports whether every cell that is not a mine has been revealed.
func (b *Board) CheckWin() bool {
	for i := range b.mines {
		if !b.mines[i] && !b.revealed[i] {
			return false
		}
	}
	return true
}

// Lost reports whether any mine has been revealed.
func (b *Board) Lost() bool {
	for i := range b.mines {
		if b.mines[i] && b.revealed[i] {
			return true
		}
	}
	return false
}

// RevealAllMines returns every mine in row-major order. It leaves the
// revealed and flagged state untouched and only switches Snapshot to
// end-of-game rendering.
func (b *Board) RevealAllMines() []Point {
	b.minesShown = true
	points := make([]Point, 0, b.params.MineCount)
	for i, mine := range b.mines {
		if mine {
			points = append(points, b.point(i))
		}
	}
	return points
}

// Snapshot returns what the player can see of the board.
func (b *Board) Snapshot() Grid {
	grid := make(Grid, len(b.mines))
	for i := range grid {
		switch {
		case b.revealed[i] && b.mines[i]:
			grid[i] = ExplodedMine
		case b.revealed[i]:
			grid[i] = CellState(b.counts[i])
		case b.minesShown && b.mines[i] && b.flagged[i]:
			grid[i] = CorrectlyFlagged
		case b.minesShown && b.mines[i]:
			grid[i] = UnflaggedMine
		case b.minesShown && b.flagged[i]:
			grid[i] = FalselyFlagged
		case b.flagged[i]:
			grid[i] = Flagged
		default:
			grid[i] = Unknown
		}
	}
	return grid
}

func (b *Board) String() string {
	return b.Snapshot().ToString(b.params.Size)
}
