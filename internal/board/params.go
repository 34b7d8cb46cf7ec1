package board

import "fmt"

const (
	DefaultSize      = 10
	DefaultMineCount = 10
)

type Params struct {
	Size      int
	MineCount int
}

func DefaultParams() Params {
	return Params{Size: DefaultSize, MineCount: DefaultMineCount}
}

func (p Params) Cells() int {
	return p.Size * p.Size
}

// Validate reports whether MineCount non-overlapping mines fit on a
// Size x Size grid with at least one safe cell left.
func (p Params) Validate() error {
	if p.Size < 1 {
		return fmt.Errorf("%w: size %d", ErrInvalidConfiguration, p.Size)
	}
	if p.MineCount < 0 || p.MineCount >= p.Cells() {
		return fmt.Errorf(
			"%w: %d mines on a %dx%d grid",
			ErrInvalidConfiguration, p.MineCount, p.Size, p.Size,
		)
	}
	return nil
}

func (p Params) Contains(x, y int) bool {
	return 0 <= x && x < p.Size && 0 <= y && y < p.Size
}

func (p Params) String() string {
	return fmt.Sprintf("%dx%d(%d)", p.Size, p.Size, p.MineCount)
}

type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (p Point) String() string {
	return fmt.Sprintf("%d:%d", p.X, p.Y)
}
