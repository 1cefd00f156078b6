package domain

const (
	MsgMove    = "move"
	MsgRestart = "restart"
	MsgPing    = "ping"

	MsgState        = "state"
	MsgMoveMade     = "move_made"
	MsgMoveRejected = "move_rejected"
	MsgGameOver     = "game_over"
	MsgRestarted    = "restarted"
	MsgPong         = "pong"
	MsgError        = "error"
)

const (
	ReasonConnectFour = "connect_four"
	ReasonDraw        = "draw"
)

type ClientMessage struct {
	Type   string `json:"type"`
	Column *int   `json:"column,omitempty"`
}

type ServerMessage struct {
	Type    string `json:"type"`
	TableID string `json:"tableId,omitempty"`
	Round   int    `json:"round,omitempty"`
	Column  *int   `json:"column,omitempty"`
	Row     *int   `json:"row,omitempty"`
	Player  int    `json:"player,omitempty"`
	Winner  int    `json:"winner,omitempty"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message,omitempty"`
	State   *State `json:"state,omitempty"`
}

func ErrorMessage(msg string) ServerMessage {
	return ServerMessage{Type: MsgError, Message: msg}
}
