package websocket

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/iamasit07/connect-four/internal/domain"
	"github.com/iamasit07/connect-four/internal/service/table"
	"github.com/iamasit07/connect-four/pkg/auth"
	"github.com/iamasit07/connect-four/pkg/uid"
)

const pongWait = 60 * time.Second

// TableService is the part of the table manager the socket drives
type TableService interface {
	Snapshot(tableID string) (table.Snapshot, error)
	ApplyMove(tableID string, col int) (table.MoveResult, error)
	Restart(tableID string) (table.Snapshot, error)
	Join(tableID string, attach func(table.Snapshot)) error
}

// Handler manages WebSocket dependencies
type Handler struct {
	Hub      *Hub
	Tables   TableService
	Tokens   *auth.TokenManager
	Upgrader websocket.Upgrader
}

// NewHandler creates a new WebSocket handler. Browsers sending an Origin
// header must match one of allowedOrigins.
func NewHandler(hub *Hub, tables TableService, tokens *auth.TokenManager, allowedOrigins []string) *Handler {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = struct{}{}
	}

	return &Handler{
		Hub:    hub,
		Tables: tables,
		Tokens: tokens,
		Upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				_, ok := allowed[origin]
				return ok
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// HandleWebSocket upgrades GET /ws/tables/:id. Without a token the
// connection only watches the table.
func (h *Handler) HandleWebSocket(c *gin.Context) {
	tableID := c.Param("id")

	if !uid.IsValid(tableID) {
		c.JSON(http.StatusNotFound, gin.H{"error": table.ErrTableNotFound.Error()})
		return
	}
	if _, err := h.Tables.Snapshot(tableID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	canControl := false
	if token := c.Query("token"); token != "" {
		if err := h.Tokens.Authorize(token, tableID); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid table token"})
			return
		}
		canControl = true
	}

	conn, err := h.Upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Str("component", "ws").Msg("Upgrade error")
		return
	}

	client := newClient(conn, tableID, canControl)

	// subscribe and queue the snapshot with no update in between
	err = h.Tables.Join(tableID, func(snap table.Snapshot) {
		h.Hub.Subscribe(client)
		client.Send(domain.ServerMessage{
			Type:    domain.MsgState,
			TableID: tableID,
			Round:   snap.Round,
			State:   &snap.State,
		})
	})
	if err != nil {
		client.Send(domain.ErrorMessage(errorText(err)))
		client.closeAfterFlush()
		return
	}

	log.Info().Str("component", "ws").Str("table_id", tableID).Bool("control", canControl).Msg("Connection opened")
	h.serve(client)
}

// serve runs the read loop until the peer goes away
func (h *Handler) serve(client *Client) {
	defer func() {
		h.Hub.Unsubscribe(client)
		client.Close()
		log.Info().Str("component", "ws").Str("table_id", client.tableID).Msg("Connection closed")
	}()

	conn := client.conn
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Str("component", "ws").Msg("Read error")
			}
			return
		}

		var message domain.ClientMessage
		if err := json.Unmarshal(data, &message); err != nil {
			client.Send(domain.ErrorMessage("invalid message format"))
			continue
		}

		h.handleMessage(client, message)
	}
}

func (h *Handler) handleMessage(client *Client, message domain.ClientMessage) {
	switch message.Type {
	case domain.MsgPing:
		client.Send(domain.ServerMessage{Type: domain.MsgPong})

	case domain.MsgMove:
		if !client.canControl {
			client.Send(domain.ErrorMessage("watching only, a table token is required to play"))
			return
		}
		if message.Column == nil {
			client.Send(domain.ErrorMessage("column is required"))
			return
		}
		// accepted and rejected moves reach the client through the hub
		if _, err := h.Tables.ApplyMove(client.tableID, *message.Column); err != nil {
			client.Send(domain.ErrorMessage(errorText(err)))
		}

	case domain.MsgRestart:
		if !client.canControl {
			client.Send(domain.ErrorMessage("watching only, a table token is required to play"))
			return
		}
		if _, err := h.Tables.Restart(client.tableID); err != nil {
			client.Send(domain.ErrorMessage(errorText(err)))
		}

	default:
		client.Send(domain.ErrorMessage("unknown message type"))
	}
}

func errorText(err error) string {
	switch {
	case errors.Is(err, domain.ErrColumnOutOfRange):
		return domain.ErrColumnOutOfRange.Error()
	case errors.Is(err, table.ErrTableNotFound):
		return table.ErrTableNotFound.Error()
	}
	return "internal error"
}
