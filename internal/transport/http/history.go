package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/iamasit07/connect-four/internal/domain"
	"github.com/iamasit07/connect-four/pkg/uid"
)

type HistoryService interface {
	GetRound(ctx context.Context, roundID string) (*domain.GameRecord, error)
	ListByTable(ctx context.Context, tableID string, limit int) ([]domain.GameRecord, error)
}

type HistoryHandler struct {
	History HistoryService
}

func NewHistoryHandler(history HistoryService) *HistoryHandler {
	return &HistoryHandler{History: history}
}

// Map to frontend expectation
type roundSummary struct {
	RoundID    string          `json:"roundId"`
	Round      int             `json:"round"`
	Winner     domain.PlayerID `json:"winner"`
	EndReason  string          `json:"endReason"`
	MovesCount int             `json:"movesCount"`
	Duration   int             `json:"durationSeconds"`
	FinishedAt string          `json:"finishedAt"`
}

// GetTableHistory lists finished rounds of a table, newest first. Rounds stay
// listed after the table itself is gone.
func (h *HistoryHandler) GetTableHistory(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	tableID, ok := tableParam(c)
	if !ok {
		return
	}

	records, err := h.History.ListByTable(c.Request.Context(), tableID, limit)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch history"})
		return
	}

	rounds := make([]roundSummary, 0, len(records))
	for _, r := range records {
		rounds = append(rounds, roundSummary{
			RoundID:    r.RoundID,
			Round:      r.Round,
			Winner:     r.Winner,
			EndReason:  r.Reason,
			MovesCount: r.TotalMoves,
			Duration:   r.DurationSeconds,
			FinishedAt: r.FinishedAt.UTC().Format(timeLayout),
		})
	}

	c.JSON(http.StatusOK, gin.H{"tableId": tableID, "rounds": rounds})
}

func (h *HistoryHandler) GetRoundDetails(c *gin.Context) {
	roundID := c.Param("id")
	if !uid.IsValid(roundID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Round not found"})
		return
	}

	record, err := h.History.GetRound(c.Request.Context(), roundID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}
