package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamasit07/connect-four/internal/domain"
)

func record(roundID, tableID string, finishedAt time.Time) domain.GameRecord {
	return domain.GameRecord{
		RoundID:    roundID,
		TableID:    tableID,
		Winner:     domain.Player1,
		Reason:     domain.ReasonConnectFour,
		TotalMoves: 7,
		Moves:      []int{0, 1, 0, 1, 0, 1, 0},
		FinishedAt: finishedAt,
	}
}

func TestGameRepo(t *testing.T) {
	ctx := context.Background()
	repo := NewGameRepo()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.SaveGame(ctx, record("r1", "t1", base)))
	require.NoError(t, repo.SaveGame(ctx, record("r2", "t1", base.Add(time.Minute))))
	require.NoError(t, repo.SaveGame(ctx, record("r3", "t1", base.Add(2*time.Minute))))
	require.NoError(t, repo.SaveGame(ctx, record("x1", "t2", base)))

	t.Run("get round", func(t *testing.T) {
		got, err := repo.GetRound(ctx, "r2")
		require.NoError(t, err)
		assert.Equal(t, "t1", got.TableID)

		// callers cannot reach the stored moves
		got.Moves[0] = 6
		again, err := repo.GetRound(ctx, "r2")
		require.NoError(t, err)
		assert.Equal(t, 0, again.Moves[0])
	})

	t.Run("missing round", func(t *testing.T) {
		_, err := repo.GetRound(ctx, "nope")
		assert.ErrorIs(t, err, domain.ErrRecordNotFound)
	})

	t.Run("list newest first", func(t *testing.T) {
		got, err := repo.ListByTable(ctx, "t1", 2)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "r3", got[0].RoundID)
		assert.Equal(t, "r2", got[1].RoundID)
	})

	t.Run("unknown table lists nothing", func(t *testing.T) {
		got, err := repo.ListByTable(ctx, "t9", 10)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}
