package table

import (
	"sync"
	"time"

	"github.com/iamasit07/connect-four/internal/domain"
	"github.com/iamasit07/connect-four/pkg/uid"
)

// Table hosts one hot-seat board. Both players share the same client, so a
// table has no notion of which connection plays which side.
type Table struct {
	ID             string
	RoundID        string
	Round          int
	CreatedAt      time.Time
	RoundStartedAt time.Time
	LastActivity   time.Time

	engine *domain.Engine
	moves  []int // accepted columns of the current round
	closed bool  // taken out of the registry, refuses further use
	mu     sync.Mutex

	// publishMu is taken before mu is released so updates leave in the
	// order they were applied. Lock order: mu, then publishMu.
	publishMu sync.Mutex
}

// Snapshot is a consistent copy of a table taken under its lock
type Snapshot struct {
	TableID      string            `json:"tableId"`
	RoundID      string            `json:"roundId"`
	Round        int               `json:"round"`
	Status       domain.GameStatus `json:"status"`
	State        domain.State      `json:"state"`
	Moves        []int             `json:"moves"`
	CreatedAt    time.Time         `json:"createdAt"`
	LastActivity time.Time         `json:"lastActivity"`
}

type MoveResult struct {
	Accepted bool            `json:"accepted"`
	Column   int             `json:"column"`
	Row      int             `json:"row"` // -1 when the move was not accepted
	Player   domain.PlayerID `json:"player"`
	State    domain.State    `json:"state"`
}

func newTable(id string, now time.Time) *Table {
	return &Table{
		ID:             id,
		RoundID:        uid.GenerateRoundID(),
		Round:          1,
		CreatedAt:      now,
		RoundStartedAt: now,
		LastActivity:   now,
		engine:         domain.NewEngine(),
		moves:          []int{},
	}
}

func (t *Table) applyMoveLocked(col int, now time.Time) (MoveResult, error) {
	prev := t.engine.State()
	result := MoveResult{Column: col, Row: -1, Player: prev.CurrentPlayer}

	if domain.IsValidColumn(col) {
		result.Row = prev.Grid.LandingRow(col)
	}

	next, err := t.engine.ApplyMove(col)
	if err != nil {
		result.Row = -1
		result.State = prev
		return result, err
	}

	t.LastActivity = now
	result.State = next

	if next == prev {
		result.Row = -1
		return result, nil
	}

	result.Accepted = true
	t.moves = append(t.moves, col)
	return result, nil
}

func (t *Table) restartLocked(now time.Time) {
	t.engine.Restart()
	t.RoundID = uid.GenerateRoundID()
	t.Round++
	t.RoundStartedAt = now
	t.LastActivity = now
	t.moves = []int{}
}

func (t *Table) snapshotLocked() Snapshot {
	state := t.engine.State()
	moves := make([]int, len(t.moves))
	copy(moves, t.moves)

	return Snapshot{
		TableID:      t.ID,
		RoundID:      t.RoundID,
		Round:        t.Round,
		Status:       state.Status(),
		State:        state,
		Moves:        moves,
		CreatedAt:    t.CreatedAt,
		LastActivity: t.LastActivity,
	}
}

func (t *Table) recordLocked(finishedAt time.Time) domain.GameRecord {
	state := t.engine.State()
	moves := make([]int, len(t.moves))
	copy(moves, t.moves)

	reason := domain.ReasonDraw
	if state.Winner != domain.Empty {
		reason = domain.ReasonConnectFour
	}

	return domain.GameRecord{
		RoundID:         t.RoundID,
		TableID:         t.ID,
		Round:           t.Round,
		Winner:          state.Winner,
		Reason:          reason,
		TotalMoves:      len(moves),
		Moves:           moves,
		Board:           state.Grid,
		DurationSeconds: int(finishedAt.Sub(t.RoundStartedAt).Seconds()),
		StartedAt:       t.RoundStartedAt,
		FinishedAt:      finishedAt,
	}
}
