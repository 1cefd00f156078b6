package domain

type PlayerID int

const (
	Empty   PlayerID = 0
	Player1 PlayerID = 1
	Player2 PlayerID = 2
)

// Opponent returns the other player. Empty has no opponent and maps to itself.
func (p PlayerID) Opponent() PlayerID {
	switch p {
	case Player1:
		return Player2
	case Player2:
		return Player1
	}
	return Empty
}

const (
	Rows    = 6
	Columns = 7
	ToWin   = 4
)

// to represent the game status
type GameStatus string

const (
	StatusActive GameStatus = "active"
	StatusWon    GameStatus = "won"
	StatusDraw   GameStatus = "draw"
)

// basic error that can occur
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	ErrColumnOutOfRange Error = "column out of range"
	ErrColumnFull       Error = "column is full"
	ErrGameOver         Error = "game is over"
	ErrRecordNotFound   Error = "record not found"
)
