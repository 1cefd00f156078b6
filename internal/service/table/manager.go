package table

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/iamasit07/connect-four/internal/domain"
	"github.com/iamasit07/connect-four/pkg/uid"
)

var ErrTableNotFound = errors.New("table not found")

const defaultArchiveTimeout = 10 * time.Second

// GameRepository receives every finished round
type GameRepository interface {
	SaveGame(ctx context.Context, record domain.GameRecord) error
}

// Publisher fans table updates out to whoever is watching the table
type Publisher interface {
	Publish(tableID string, message domain.ServerMessage)
	CloseTable(tableID string)
}

// Manager manages active tables
type Manager struct {
	tables    map[string]*Table // tableID → Table
	mu        sync.RWMutex
	repo      GameRepository // optional
	publisher Publisher      // optional

	archiveTimeout time.Duration
	archives       sync.WaitGroup
	now            func() time.Time
}

func NewManager(repo GameRepository, publisher Publisher) *Manager {
	return &Manager{
		tables:         make(map[string]*Table),
		repo:           repo,
		publisher:      publisher,
		archiveTimeout: defaultArchiveTimeout,
		now:            time.Now,
	}
}

func (m *Manager) CreateTable() Snapshot {
	now := m.now()
	t := newTable(uid.GenerateTableID(), now)

	m.mu.Lock()
	m.tables[t.ID] = t
	m.mu.Unlock()

	log.Info().Str("component", "table").Str("table_id", t.ID).Msg("Created table")

	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

func (m *Manager) getTable(tableID string) (*Table, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, exists := m.tables[tableID]
	if !exists {
		return nil, ErrTableNotFound
	}
	return t, nil
}

// lockTable returns the table with its mu held
func (m *Manager) lockTable(tableID string) (*Table, error) {
	t, err := m.getTable(tableID)
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil, ErrTableNotFound
	}
	return t, nil
}

// release unlocks a table locked by lockTable and then publishes messages.
// The publish lock is taken before mu is dropped, so moves keep running while
// subscribers are served and updates still go out in order.
func (m *Manager) release(t *Table, messages ...domain.ServerMessage) {
	if m.publisher == nil || len(messages) == 0 {
		t.mu.Unlock()
		return
	}

	t.publishMu.Lock()
	t.mu.Unlock()
	defer t.publishMu.Unlock()

	for _, message := range messages {
		m.publisher.Publish(t.ID, message)
	}
}

func (m *Manager) Snapshot(tableID string) (Snapshot, error) {
	t, err := m.lockTable(tableID)
	if err != nil {
		return Snapshot{}, err
	}
	defer t.mu.Unlock()
	return t.snapshotLocked(), nil
}

// Join passes a current snapshot to attach while no update of the table can
// be published. A subscriber registered inside attach receives exactly the
// updates applied after that snapshot.
func (m *Manager) Join(tableID string, attach func(Snapshot)) error {
	t, err := m.lockTable(tableID)
	if err != nil {
		return err
	}

	snap := t.snapshotLocked()
	t.publishMu.Lock()
	t.mu.Unlock()
	defer t.publishMu.Unlock()

	attach(snap)
	return nil
}

// ApplyMove plays col on the table. A move the board ignores (full column or
// finished round) comes back with Accepted false and no error.
func (m *Manager) ApplyMove(tableID string, col int) (MoveResult, error) {
	t, err := m.lockTable(tableID)
	if err != nil {
		return MoveResult{}, err
	}

	now := m.now()
	result, err := t.applyMoveLocked(col, now)
	if err != nil {
		t.mu.Unlock()
		return result, fmt.Errorf("table %s: %w", tableID, err)
	}

	if !result.Accepted {
		m.release(t, domain.ServerMessage{
			Type:    domain.MsgMoveRejected,
			TableID: tableID,
			Round:   t.Round,
			Column:  intPtr(col),
			State:   &result.State,
		})
		return result, nil
	}

	messages := []domain.ServerMessage{{
		Type:    domain.MsgMoveMade,
		TableID: tableID,
		Round:   t.Round,
		Column:  intPtr(col),
		Row:     intPtr(result.Row),
		Player:  int(result.Player),
		State:   &result.State,
	}}

	if result.State.IsOver {
		record := t.recordLocked(now)
		log.Info().Str("component", "table").Str("table_id", tableID).
			Int("round", t.Round).Int("winner", int(record.Winner)).Str("reason", record.Reason).
			Msg("Round finished")

		messages = append(messages, domain.ServerMessage{
			Type:    domain.MsgGameOver,
			TableID: tableID,
			Round:   t.Round,
			Winner:  int(record.Winner),
			Reason:  record.Reason,
			State:   &result.State,
		})
		m.saveGameAsync(record)
	}

	m.release(t, messages...)
	return result, nil
}

// Restart starts a new round on the table. It is accepted in any state.
func (m *Manager) Restart(tableID string) (Snapshot, error) {
	t, err := m.lockTable(tableID)
	if err != nil {
		return Snapshot{}, err
	}

	t.restartLocked(m.now())
	snap := t.snapshotLocked()

	m.release(t, domain.ServerMessage{
		Type:    domain.MsgRestarted,
		TableID: tableID,
		Round:   snap.Round,
		State:   &snap.State,
	})
	return snap, nil
}

func (m *Manager) RemoveTable(tableID string) error {
	m.mu.Lock()
	t, exists := m.tables[tableID]
	delete(m.tables, tableID)
	m.mu.Unlock()

	if !exists {
		return ErrTableNotFound
	}

	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()

	log.Info().Str("component", "table").Str("table_id", tableID).Msg("Removed table")
	if m.publisher != nil {
		m.publisher.CloseTable(tableID)
	}
	return nil
}

// CleanupIdle removes tables without activity for longer than maxIdle and
// returns how many were removed. The registry lock is never held while a
// table lock is awaited.
func (m *Manager) CleanupIdle(maxIdle time.Duration) int {
	now := m.now()

	m.mu.RLock()
	tables := make([]*Table, 0, len(m.tables))
	for _, t := range m.tables {
		tables = append(tables, t)
	}
	m.mu.RUnlock()

	removed := []string{}
	for _, t := range tables {
		t.mu.Lock()
		if !t.closed && now.Sub(t.LastActivity) > maxIdle {
			t.closed = true
			removed = append(removed, t.ID)
		}
		t.mu.Unlock()
	}

	if len(removed) == 0 {
		return 0
	}

	m.mu.Lock()
	for _, tableID := range removed {
		delete(m.tables, tableID)
	}
	m.mu.Unlock()

	if m.publisher != nil {
		for _, tableID := range removed {
			m.publisher.CloseTable(tableID)
		}
	}

	log.Info().Str("component", "table").Int("count", len(removed)).Msg("Memory cleanup: removed idle tables")
	return len(removed)
}

func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.tables)
}

// Wait blocks until every pending archive write has finished.
func (m *Manager) Wait() {
	m.archives.Wait()
}

// Saves round data in background to avoid blocking game_over messages
func (m *Manager) saveGameAsync(record domain.GameRecord) {
	if m.repo == nil {
		return
	}

	m.archives.Add(1)
	go func() {
		defer m.archives.Done()

		ctx, cancel := context.WithTimeout(context.Background(), m.archiveTimeout)
		defer cancel()

		if err := m.repo.SaveGame(ctx, record); err != nil {
			log.Error().Err(err).Str("component", "table").Str("round_id", record.RoundID).Msg("Error saving round")
			return
		}
		log.Debug().Str("component", "table").Str("round_id", record.RoundID).Msg("Round saved successfully")
	}()
}

func intPtr(v int) *int {
	return &v
}
