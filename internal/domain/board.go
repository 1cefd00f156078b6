package domain

import "strings"

// Grid is indexed grid[row][col]. Row 0 is the top row and Rows-1 the bottom,
// so disks land on the highest row index that is still empty.
//
// Grid is an array, which makes every assignment a copy: a move produces a
// new Grid and the previous value is left untouched.
type Grid [Rows][Columns]PlayerID

func NewGrid() Grid {
	return Grid{}
}

func InBounds(row, col int) bool {
	return row >= 0 && row < Rows && col >= 0 && col < Columns
}

func IsValidColumn(col int) bool {
	return col >= 0 && col < Columns
}

func (g Grid) Cell(row, col int) PlayerID {
	return g[row][col]
}

// here g[0] represents the top row, a column is full once it is occupied
func (g Grid) IsColumnFull(col int) bool {
	return g[0][col] != Empty
}

// LandingRow returns the row a disk dropped into col would occupy, or -1 if
// the column is full.
func (g Grid) LandingRow(col int) int {
	for row := Rows - 1; row >= 0; row-- {
		if g[row][col] == Empty {
			return row
		}
	}
	return -1
}

// Drop returns a copy of the grid with player's disk placed in col, together
// with the row it landed on.
func (g Grid) Drop(col int, player PlayerID) (Grid, int, error) {
	if !IsValidColumn(col) {
		return g, -1, ErrColumnOutOfRange
	}

	row := g.LandingRow(col)
	if row < 0 {
		return g, -1, ErrColumnFull
	}

	g[row][col] = player
	return g, row, nil
}

func (g Grid) IsFull() bool {
	for row := 0; row < Rows; row++ {
		for col := 0; col < Columns; col++ {
			if g[row][col] == Empty {
				return false
			}
		}
	}
	return true
}

// ValidMoves lists the columns that still accept a disk, left to right.
func (g Grid) ValidMoves() []int {
	moves := make([]int, 0, Columns)
	for col := 0; col < Columns; col++ {
		if !g.IsColumnFull(col) {
			moves = append(moves, col)
		}
	}
	return moves
}

func (g Grid) DiskCount() int {
	count := 0
	for row := range g {
		for col := range g[row] {
			if g[row][col] != Empty {
				count++
			}
		}
	}
	return count
}

// String renders the grid top row first, '.' for empty cells and the player
// number otherwise, followed by a column index footer.
func (g Grid) String() string {
	var sb strings.Builder
	for row := 0; row < Rows; row++ {
		for col := 0; col < Columns; col++ {
			if col > 0 {
				sb.WriteByte(' ')
			}
			switch g[row][col] {
			case Player1:
				sb.WriteByte('1')
			case Player2:
				sb.WriteByte('2')
			default:
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	for col := 0; col < Columns; col++ {
		if col > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteByte(byte('1' + col))
	}
	sb.WriteByte('\n')
	return sb.String()
}
