package server

import (
	"encoding/json"

	"github.com/holotable/holotable-server-go/internal/game"
)

// Message types sent by clients.
const (
	MsgCreateGame = "create_game"
	MsgJoinGame   = "join_game"
	MsgDecision   = "decision"
	MsgRevert     = "revert"
	MsgConcede    = "concede"
	MsgCancel     = "cancel"
	MsgAutoPass   = "auto_pass"
	MsgListDecks  = "list_decks"
)

// Message types sent by the server.
const (
	MsgGameCreated = "game_created"
	MsgGameState   = "game_state"
	MsgWarning     = "warning"
	MsgDecks       = "decks"
	MsgError       = "error"
)

// WSMessage is the envelope of every websocket frame.
type WSMessage struct {
	Type     string          `json:"type"`
	GameID   string          `json:"game_id,omitempty"`
	PlayerID string          `json:"player_id,omitempty"`
	Data     json.RawMessage `json:"data,omitempty"`
}

// CreateGameRequest seats two players with named catalog decks.
type CreateGameRequest struct {
	DarkPlayer  string `json:"dark_player"`
	DarkDeck    string `json:"dark_deck"`
	LightPlayer string `json:"light_player"`
	LightDeck   string `json:"light_deck"`
}

// DecisionRequest answers a pending decision.
type DecisionRequest struct {
	DecisionID string `json:"decision_id"`
	Answer     string `json:"answer"`
}

// AutoPassRequest toggles passing a phase automatically.
type AutoPassRequest struct {
	Phase   string `json:"phase"`
	Enabled bool   `json:"enabled"`
}

// StatePayload carries a game view.
type StatePayload struct {
	View     game.GameView `json:"view"`
	Reverted bool          `json:"reverted"`
}

// WarningPayload carries a warning for one player.
type WarningPayload struct {
	Text string `json:"text"`
}

// ErrorPayload reports a rejected request.
type ErrorPayload struct {
	Error string `json:"error"`
}

func encode(msgType, gameID, playerID string, data any) ([]byte, error) {
	msg := WSMessage{Type: msgType, GameID: gameID, PlayerID: playerID}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		msg.Data = raw
	}
	return json.Marshal(msg)
}
