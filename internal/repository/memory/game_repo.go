package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/iamasit07/connect-four/internal/domain"
)

// GameRepo keeps archived rounds in process memory. It backs the history
// endpoints when no database is configured and is lost on restart.
type GameRepo struct {
	rounds map[string]domain.GameRecord
	mu     sync.RWMutex
}

func NewGameRepo() *GameRepo {
	return &GameRepo{rounds: map[string]domain.GameRecord{}}
}

func (r *GameRepo) SaveGame(_ context.Context, record domain.GameRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record.Moves = append([]int(nil), record.Moves...)
	r.rounds[record.RoundID] = record
	return nil
}

func (r *GameRepo) GetRound(_ context.Context, roundID string) (*domain.GameRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.rounds[roundID]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	record.Moves = append([]int(nil), record.Moves...)
	return &record, nil
}

func (r *GameRepo) ListByTable(_ context.Context, tableID string, limit int) ([]domain.GameRecord, error) {
	r.mu.RLock()
	records := []domain.GameRecord{}
	for _, record := range r.rounds {
		if record.TableID == tableID {
			record.Moves = append([]int(nil), record.Moves...)
			records = append(records, record)
		}
	}
	r.mu.RUnlock()

	sort.Slice(records, func(i, j int) bool {
		return records[i].FinishedAt.After(records[j].FinishedAt)
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}
