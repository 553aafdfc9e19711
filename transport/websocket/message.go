package websocket

import (
	"encoding/json"

	"github.com/rocketscienceinc/tictactoe-strategy/internal/entity"
)

const (
	actionAdvise = "board:advise"
	actionStats  = "board:stats"
	actionError  = "error"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type RequestPayload struct {
	Board string `json:"board"`
}

type ResponsePayload struct {
	Board      string                  `json:"board,omitempty"`
	Advice     *entity.Advice          `json:"advice,omitempty"`
	Successors []entity.SuccessorStats `json:"successors,omitempty"`
	Error      string                  `json:"error,omitempty"`
}
