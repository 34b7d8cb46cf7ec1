package board

type OutcomeKind int

const (
	Unchanged OutcomeKind = iota
	Revealed
	MineHit
)

func (k OutcomeKind) String() string {
	switch k {
	case Unchanged:
		return "unchanged"
	case Revealed:
		return "revealed"
	case MineHit:
		return "mine_hit"
	default:
		return "unknown"
	}
}

func (k OutcomeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

type RevealedCell struct {
	Point
	Count int  `json:"count"`
	Mine  bool `json:"mine,omitempty"`
}

type RevealOutcome struct {
	Kind  OutcomeKind    `json:"kind"`
	Cells []RevealedCell `json:"cells,omitempty"`
	Won   bool           `json:"won"`
}

// Reveal opens the cell at x, y.
//
// Revealed and flagged cells are left alone. A mine is marked revealed and
// reported as MineHit. A safe cell with no mined neighbours cascades to
// every connected safe cell; the cascade never opens a mine or a flagged
// cell.
func (b *Board) Reveal(x, y int) (RevealOutcome, error) {
	if err := b.checkPoint(x, y); err != nil {
		return RevealOutcome{}, err
	}
	return b.reveal(b.index(x, y)), nil
}

func (b *Board) reveal(i int) RevealOutcome {
	if b.revealed[i] || b.flagged[i] {
		return RevealOutcome{Kind: Unchanged}
	}
	if b.mines[i] {
		b.revealed[i] = true
		return RevealOutcome{Kind: MineHit, Cells: []RevealedCell{b.cell(i)}}
	}
	cells := b.floodFill(i)
	return RevealOutcome{Kind: Revealed, Cells: cells, Won: b.CheckWin()}
}

// floodFill reveals safe cell start and, while zero-count cells keep
// turning up, their hidden neighbours. Cells are marked revealed when they
// are pushed, so each one is visited at most once.
func (b *Board) floodFill(start int) []RevealedCell {
	b.revealed[start] = true
	cells := []RevealedCell{b.cell(start)}
	if b.counts[start] != 0 {
		return cells
	}

	stack := []int{start}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		b.forEachNeighbour(i, func(j int) {
			if b.revealed[j] || b.flagged[j] || b.mines[j] {
				return
			}
			b.revealed[j] = true
			cells = append(cells, b.cell(j))
			if b.counts[j] == 0 {
				stack = append(stack, j)
			}
		})
	}
	return cells
}

func (b *Board) cell(i int) RevealedCell {
	if b.mines[i] {
		return RevealedCell{Point: b.point(i), Count: -1, Mine: true}
	}
	return RevealedCell{Point: b.point(i), Count: int(b.counts[i])}
}

// Chord opens every hidden, unflagged neighbour of a revealed numbered cell
// once the player has placed as many flags around it as its number. It
// stops at the first mine.
func (b *Board) Chord(x, y int) (RevealOutcome, error) {
	if err := b.checkPoint(x, y); err != nil {
		return RevealOutcome{}, err
	}
	i := b.index(x, y)
	if !b.revealed[i] || b.mines[i] || b.counts[i] == 0 {
		return RevealOutcome{Kind: Unchanged}, nil
	}

	flags := 0
	hidden := make([]int, 0, 8)
	b.forEachNeighbour(i, func(j int) {
		if b.flagged[j] {
			flags++
		} else if !b.revealed[j] {
			hidden = append(hidden, j)
		}
	})
	if flags != int(b.counts[i]) {
		return RevealOutcome{Kind: Unchanged}, nil
	}

	outcome := RevealOutcome{Kind: Unchanged}
	for _, j := range hidden {
		o := b.reveal(j)
		switch o.Kind {
		case MineHit:
			outcome.Kind = MineHit
			outcome.Cells = append(outcome.Cells, o.Cells...)
			outcome.Won = false
			return outcome, nil
		case Revealed:
			outcome.Kind = Revealed
			outcome.Cells = append(outcome.Cells, o.Cells...)
		}
	}
	outcome.Won = outcome.Kind == Revealed && b.CheckWin()
	return outcome, nil
}
