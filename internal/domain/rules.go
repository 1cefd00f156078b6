package domain

// Direction is a (row step, column step) pair along one axis of the grid.
type Direction struct {
	DRow int
	DCol int
}

// Axes holds one direction per line through a cell. The scan walks each of
// them both ways, so the opposite directions are not listed.
var Axes = [4]Direction{
	{DRow: 0, DCol: 1},  // horizontal
	{DRow: 1, DCol: 0},  // vertical
	{DRow: 1, DCol: 1},  // diagonal down-right
	{DRow: -1, DCol: 1}, // diagonal down-left
}

// CountRun counts player's disks on the line through (row, col) along d,
// walking forward from the cell itself and backward from the cell before it.
func CountRun(g Grid, row, col int, d Direction, player PlayerID) int {
	count := 0

	r, c := row, col
	for InBounds(r, c) && g[r][c] == player {
		count++
		r += d.DRow
		c += d.DCol
	}

	r, c = row-d.DRow, col-d.DCol
	for InBounds(r, c) && g[r][c] == player {
		count++
		r -= d.DRow
		c -= d.DCol
	}

	return count
}

// CheckWin reports whether the disk at (row, col) completes a run of ToWin
// for player on any axis. Only lines through that cell are inspected.
func CheckWin(g Grid, row, col int, player PlayerID) bool {
	if player == Empty {
		return false
	}
	for _, d := range Axes {
		if CountRun(g, row, col, d, player) >= ToWin {
			return true
		}
	}
	return false
}
