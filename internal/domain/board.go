package domain

import "math/rand"

// BoardSize is the side length of a bingo board.
const BoardSize = 5

// Cell addresses a single board position.
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// BoardGrid is a serializable snapshot of a board's marked cells.
type BoardGrid [BoardSize][BoardSize]bool

// Board is one player's bingo card. The center cell is a free space,
// pre-marked at creation. Marks never revert.
type Board struct {
	cells BoardGrid
}

// NewBoard returns a fresh board with the free space marked.
func NewBoard() *Board {
	b := &Board{}
	b.cells[BoardSize/2][BoardSize/2] = true
	return b
}

// Mark marks the given cell. It fails with ErrOutOfBounds or
// ErrAlreadyMarked; callers fall back to MarkRandom in that case.
func (b *Board) Mark(c Cell) error {
	if c.Row < 0 || c.Row >= BoardSize || c.Col < 0 || c.Col >= BoardSize {
		return ErrOutOfBounds
	}
	if b.cells[c.Row][c.Col] {
		return ErrAlreadyMarked
	}
	b.cells[c.Row][c.Col] = true
	return nil
}

// MarkRandom marks a uniformly chosen unmarked cell and returns its
// coordinate, or ErrNoCellsAvailable when the board is full.
func (b *Board) MarkRandom(rnd *rand.Rand) (Cell, error) {
	free := make([]Cell, 0, BoardSize*BoardSize)
	for row := 0; row < BoardSize; row++ {
		for col := 0; col < BoardSize; col++ {
			if !b.cells[row][col] {
				free = append(free, Cell{Row: row, Col: col})
			}
		}
	}
	if len(free) == 0 {
		return Cell{}, ErrNoCellsAvailable
	}
	chosen := free[rnd.Intn(len(free))]
	b.cells[chosen.Row][chosen.Col] = true
	return chosen, nil
}

// Marked reports whether the cell is marked. Out-of-bounds cells report false.
func (b *Board) Marked(c Cell) bool {
	if c.Row < 0 || c.Row >= BoardSize || c.Col < 0 || c.Col >= BoardSize {
		return false
	}
	return b.cells[c.Row][c.Col]
}

// HasWinningLine reports whether any full row, full column, or either
// diagonal is entirely marked.
func (b *Board) HasWinningLine() bool {
	for i := 0; i < BoardSize; i++ {
		row, col := true, true
		for j := 0; j < BoardSize; j++ {
			row = row && b.cells[i][j]
			col = col && b.cells[j][i]
		}
		if row || col {
			return true
		}
	}
	main, anti := true, true
	for i := 0; i < BoardSize; i++ {
		main = main && b.cells[i][i]
		anti = anti && b.cells[i][BoardSize-1-i]
	}
	return main || anti
}

// Grid returns a copy of the board state for transport.
func (b *Board) Grid() BoardGrid {
	return b.cells
}
