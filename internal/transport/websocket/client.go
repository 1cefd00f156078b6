package websocket

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/iamasit07/connect-four/internal/domain"
)

const (
	writeWait    = 10 * time.Second
	pingInterval = 30 * time.Second

	// queued messages per client before it is considered stuck
	sendBuffer = 64
)

var (
	errClientClosed = errors.New("client closed")
	errSlowClient   = errors.New("client send queue is full")
)

// Client is one WebSocket connection subscribed to a table. Only its
// writePump goroutine writes to the socket.
type Client struct {
	conn       *websocket.Conn
	tableID    string
	canControl bool // holds a valid table token

	send       chan domain.ServerMessage
	finish     chan struct{} // flush the queue, then close
	done       chan struct{}
	closeOnce  sync.Once
	finishOnce sync.Once
}

func newClient(conn *websocket.Conn, tableID string, canControl bool) *Client {
	c := &Client{
		conn:       conn,
		tableID:    tableID,
		canControl: canControl,
		send:       make(chan domain.ServerMessage, sendBuffer),
		finish:     make(chan struct{}),
		done:       make(chan struct{}),
	}
	go c.writePump()
	return c
}

// Send queues message without blocking. A full queue means the peer stopped
// reading and is reported as errSlowClient.
func (c *Client) Send(message domain.ServerMessage) error {
	select {
	case <-c.done:
		return errClientClosed
	default:
	}

	select {
	case c.send <- message:
		return nil
	default:
		return errSlowClient
	}
}

// Close drops the connection right away, queued messages are discarded
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		err = c.conn.Close()
	})
	return err
}

// closeAfterFlush writes what is already queued plus a close frame, then
// closes the connection
func (c *Client) closeAfterFlush() {
	c.finishOnce.Do(func() { close(c.finish) })
}

func (c *Client) write(message domain.ServerMessage) error {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(message)
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-c.done:
			return

		case message := <-c.send:
			if err := c.write(message); err != nil {
				log.Debug().Err(err).Str("component", "ws").Str("table_id", c.tableID).Msg("Write error")
				return
			}

		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}

		case <-c.finish:
			for {
				select {
				case message := <-c.send:
					if err := c.write(message); err != nil {
						return
					}
				default:
					closing := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "table closed")
					_ = c.conn.WriteControl(websocket.CloseMessage, closing, time.Now().Add(writeWait))
					return
				}
			}
		}
	}
}

// Hub tracks the clients watching each table thread-safely
type Hub struct {
	tables map[string]map[*Client]struct{} // tableID → clients
	mu     sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{tables: make(map[string]map[*Client]struct{})}
}

func (h *Hub) Subscribe(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.tables[c.tableID]
	if !ok {
		clients = make(map[*Client]struct{})
		h.tables[c.tableID] = clients
	}
	clients[c] = struct{}{}
}

func (h *Hub) Unsubscribe(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.tables[c.tableID]
	if !ok {
		return
	}
	delete(clients, c)
	if len(clients) == 0 {
		delete(h.tables, c.tableID)
	}
}

func (h *Hub) clients(tableID string) []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()

	list := make([]*Client, 0, len(h.tables[tableID]))
	for c := range h.tables[tableID] {
		list = append(list, c)
	}
	return list
}

// Publish queues message for every client of the table and never blocks.
// A client whose queue is full is dropped.
func (h *Hub) Publish(tableID string, message domain.ServerMessage) {
	for _, c := range h.clients(tableID) {
		if err := c.Send(message); err != nil {
			log.Warn().Err(err).Str("component", "ws").Str("table_id", tableID).Msg("Dropping client")
			h.Unsubscribe(c)
			c.Close()
		}
	}
}

// CloseTable disconnects every client of a removed table
func (h *Hub) CloseTable(tableID string) {
	h.mu.Lock()
	clients := h.tables[tableID]
	delete(h.tables, tableID)
	h.mu.Unlock()

	for c := range clients {
		if err := c.Send(domain.ErrorMessage("table closed")); err != nil {
			c.Close()
			continue
		}
		c.closeAfterFlush()
	}
}

func (h *Hub) SubscriberCount(tableID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.tables[tableID])
}
