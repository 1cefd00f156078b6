package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/iamasit07/connect-four/internal/domain"
	"github.com/iamasit07/connect-four/internal/service/table"
	"github.com/iamasit07/connect-four/pkg/auth"
	"github.com/iamasit07/connect-four/pkg/uid"
)

type TableService interface {
	CreateTable() table.Snapshot
	Snapshot(tableID string) (table.Snapshot, error)
	ApplyMove(tableID string, col int) (table.MoveResult, error)
	Restart(tableID string) (table.Snapshot, error)
	RemoveTable(tableID string) error
}

type TableHandler struct {
	Tables TableService
	Tokens *auth.TokenManager
}

func NewTableHandler(tables TableService, tokens *auth.TokenManager) *TableHandler {
	return &TableHandler{Tables: tables, Tokens: tokens}
}

type createTableResponse struct {
	TableID string       `json:"tableId"`
	RoundID string       `json:"roundId"`
	Round   int          `json:"round"`
	Token   string       `json:"token"`
	State   domain.State `json:"state"`
}

type moveRequest struct {
	Column *int `json:"column" binding:"required"`
}

func (h *TableHandler) CreateTable(c *gin.Context) {
	snap := h.Tables.CreateTable()

	token, err := h.Tokens.Issue(snap.TableID)
	if err != nil {
		log.Error().Err(err).Str("component", "http").Str("table_id", snap.TableID).Msg("Failed to issue table token")
		// a table nobody can control is useless
		_ = h.Tables.RemoveTable(snap.TableID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create table"})
		return
	}

	c.JSON(http.StatusCreated, createTableResponse{
		TableID: snap.TableID,
		RoundID: snap.RoundID,
		Round:   snap.Round,
		Token:   token,
		State:   snap.State,
	})
}

func (h *TableHandler) GetTable(c *gin.Context) {
	tableID, ok := tableParam(c)
	if !ok {
		return
	}

	snap, err := h.Tables.Snapshot(tableID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (h *TableHandler) MakeMove(c *gin.Context) {
	tableID, ok := tableParam(c)
	if !ok {
		return
	}

	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input, expected {\"column\": n}"})
		return
	}

	result, err := h.Tables.ApplyMove(tableID, *req.Column)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *TableHandler) Restart(c *gin.Context) {
	tableID, ok := tableParam(c)
	if !ok {
		return
	}

	snap, err := h.Tables.Restart(tableID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (h *TableHandler) DeleteTable(c *gin.Context) {
	tableID, ok := tableParam(c)
	if !ok {
		return
	}

	if err := h.Tables.RemoveTable(tableID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// tableParam returns the :id parameter, answering 404 for anything that
// cannot be a table ID without looking it up
func tableParam(c *gin.Context) (string, bool) {
	tableID := c.Param("id")
	if !uid.IsValid(tableID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Table not found"})
		return "", false
	}
	return tableID, true
}

// respondError maps service errors onto status codes
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, table.ErrTableNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Table not found"})
	case errors.Is(err, domain.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Round not found"})
	case errors.Is(err, domain.ErrColumnOutOfRange):
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrColumnOutOfRange.Error()})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
	}
}
