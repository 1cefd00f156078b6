package domain

import "time"

// GameRecord is a finished round as stored in the archive.
type GameRecord struct {
	RoundID         string    `json:"roundId"`
	TableID         string    `json:"tableId"`
	Round           int       `json:"round"`
	Winner          PlayerID  `json:"winner"`
	Reason          string    `json:"reason"`
	TotalMoves      int       `json:"totalMoves"`
	Moves           []int     `json:"moves"`
	Board           Grid      `json:"board"`
	DurationSeconds int       `json:"durationSeconds"`
	StartedAt       time.Time `json:"startedAt"`
	FinishedAt      time.Time `json:"finishedAt"`
}

// Replay rebuilds the final state of the record by playing its moves from an
// empty board.
func (r GameRecord) Replay() (State, error) {
	s := NewState()
	for _, col := range r.Moves {
		next, err := s.ApplyMove(col)
		if err != nil {
			return s, err
		}
		s = next
	}
	return s, nil
}
