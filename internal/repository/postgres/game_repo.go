package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/iamasit07/connect-four/internal/domain"
)

type GameRepo struct {
	DB *sql.DB
}

func NewGameRepo(db *sql.DB) *GameRepo {
	return &GameRepo{DB: db}
}

const selectRound = `
	SELECT round_id, table_id, round, winner, reason, total_moves, moves,
	       board_state, duration_seconds, started_at, finished_at
	FROM game_round`

// SaveGame stores a finished round. Saving the same round twice overwrites
// the earlier row.
func (r *GameRepo) SaveGame(ctx context.Context, record domain.GameRecord) error {
	movesJSON, err := json.Marshal(record.Moves)
	if err != nil {
		return fmt.Errorf("failed to marshal moves: %w", err)
	}
	boardJSON, err := json.Marshal(record.Board)
	if err != nil {
		return fmt.Errorf("failed to marshal board state: %w", err)
	}

	query := `
	INSERT INTO game_round (round_id, table_id, round, winner, reason, total_moves, moves, board_state, duration_seconds, started_at, finished_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	ON CONFLICT (round_id) DO UPDATE SET
		winner = EXCLUDED.winner,
		reason = EXCLUDED.reason,
		total_moves = EXCLUDED.total_moves,
		moves = EXCLUDED.moves,
		board_state = EXCLUDED.board_state,
		duration_seconds = EXCLUDED.duration_seconds,
		finished_at = EXCLUDED.finished_at;
	`

	_, err = r.DB.ExecContext(ctx, query,
		record.RoundID, record.TableID, record.Round, int(record.Winner), record.Reason,
		record.TotalMoves, string(movesJSON), string(boardJSON), record.DurationSeconds,
		record.StartedAt, record.FinishedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert round record: %w", err)
	}
	return nil
}

// GetRound retrieves one archived round, domain.ErrRecordNotFound if absent
func (r *GameRepo) GetRound(ctx context.Context, roundID string) (*domain.GameRecord, error) {
	row := r.DB.QueryRowContext(ctx, selectRound+` WHERE round_id = $1;`, roundID)

	record, err := scanRound(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get round by ID: %w", err)
	}
	return record, nil
}

// ListByTable returns the finished rounds of a table, newest first
func (r *GameRepo) ListByTable(ctx context.Context, tableID string, limit int) ([]domain.GameRecord, error) {
	rows, err := r.DB.QueryContext(ctx, selectRound+`
	WHERE table_id = $1
	ORDER BY finished_at DESC
	LIMIT $2;`, tableID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query table history: %w", err)
	}
	defer rows.Close()

	records := []domain.GameRecord{}
	for rows.Next() {
		record, err := scanRound(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan round row: %w", err)
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate round rows: %w", err)
	}
	return records, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRound(s scanner) (*domain.GameRecord, error) {
	var record domain.GameRecord
	var winner int
	var movesJSON, boardJSON []byte

	err := s.Scan(
		&record.RoundID,
		&record.TableID,
		&record.Round,
		&winner,
		&record.Reason,
		&record.TotalMoves,
		&movesJSON,
		&boardJSON,
		&record.DurationSeconds,
		&record.StartedAt,
		&record.FinishedAt,
	)
	if err != nil {
		return nil, err
	}

	record.Winner = domain.PlayerID(winner)
	if err := json.Unmarshal(movesJSON, &record.Moves); err != nil {
		return nil, fmt.Errorf("failed to unmarshal moves: %w", err)
	}
	if err := json.Unmarshal(boardJSON, &record.Board); err != nil {
		return nil, fmt.Errorf("failed to unmarshal board state: %w", err)
	}
	return &record, nil
}
