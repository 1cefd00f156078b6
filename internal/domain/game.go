package domain

// State is a complete snapshot of one game. It holds no pointers or slices,
// so copies are independent and two snapshots compare with ==.
type State struct {
	Grid          Grid     `json:"grid"`
	CurrentPlayer PlayerID `json:"currentPlayer"`
	Winner        PlayerID `json:"winner"`
	IsOver        bool     `json:"isOver"`
}

func NewState() State {
	return State{
		Grid:          NewGrid(),
		CurrentPlayer: Player1,
		Winner:        Empty,
		IsOver:        false,
	}
}

// CanMove reports whether ApplyMove(col) would be accepted.
func (s State) CanMove(col int) bool {
	return !s.IsOver && IsValidColumn(col) && !s.Grid.IsColumnFull(col)
}

// ApplyMove drops the current player's disk into col and returns the next
// state. A move on a full column or a finished game is ignored: s is returned
// unchanged with a nil error. Only a column outside [0, Columns) is an error.
func (s State) ApplyMove(col int) (State, error) {
	if !IsValidColumn(col) {
		return s, ErrColumnOutOfRange
	}
	if s.IsOver || s.Grid.IsColumnFull(col) {
		return s, nil
	}

	player := s.CurrentPlayer
	grid, row, err := s.Grid.Drop(col, player)
	if err != nil {
		return s, err
	}

	win := CheckWin(grid, row, col, player)
	draw := grid.IsFull()

	next := State{
		Grid:          grid,
		CurrentPlayer: player.Opponent(),
		Winner:        Empty,
		IsOver:        win || draw,
	}
	if win {
		next.Winner = player
	}
	return next, nil
}

func (s State) Status() GameStatus {
	switch {
	case s.Winner != Empty:
		return StatusWon
	case s.IsOver:
		return StatusDraw
	}
	return StatusActive
}

func (s State) MoveCount() int {
	return s.Grid.DiskCount()
}

// Engine owns the authoritative State of a single board. It is not safe for
// concurrent use; callers serialise access.
type Engine struct {
	state State
}

func NewEngine() *Engine {
	return &Engine{state: NewState()}
}

func (e *Engine) State() State {
	return e.state
}

func (e *Engine) Restart() State {
	e.state = NewState()
	return e.state
}

func (e *Engine) ApplyMove(col int) (State, error) {
	next, err := e.state.ApplyMove(col)
	if err != nil {
		return e.state, err
	}
	e.state = next
	return next, nil
}
