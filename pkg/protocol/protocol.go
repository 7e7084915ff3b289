// Package protocol defines the wire vocabulary shared by the session client
// and the game server: JSON envelopes, message types, the server's phase
// strings, and the application close codes.
//
// Schema version 1. Any change to the game_state vocabulary or to the
// rejection close-code set is a protocol-versioning concern and must bump
// SchemaVersion.
package protocol

import (
	"encoding/json"

	"github.com/coder/websocket"
)

const SchemaVersion = 1

// Envelope is the frame shape for every message after the client handshake.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Handshake is the first client->server frame on a new connection. It is the
// only frame that is not an Envelope.
type Handshake struct {
	PlayerName string `json:"player_name"`
	RoomID     string `json:"room_id"`
}

// Server -> client message types. MsgConnectionSuccess is the handshake ack
// and carries a full snapshot; everything else is an incremental delta.
const (
	MsgConnectionSuccess   = "connection_success"
	MsgPlayerJoin          = "player_join"
	MsgPlayerLeave         = "player_leave"
	MsgIdeasComplete       = "ideas_complete"
	MsgGameLoading         = "game_loading"
	MsgGameStart           = "game_start"
	MsgTransitionAnimation = "transition_animation"
	MsgRoleSelected        = "role_selected"
	MsgRolesComplete       = "roles_complete"
	MsgGameStarted         = "game_started"
	MsgRoundLoading        = "round_loading"
	MsgRoundStart          = "round_start"
	MsgActionSubmitted     = "action_submitted"
	MsgRoundComplete       = "round_complete"
	MsgGameComplete        = "game_complete"
	MsgGameRestart         = "game_restart"
)

// Client -> server message types.
const (
	MsgStartupIdea = "startup_idea"
	MsgSelectRole  = "select_role"
	MsgGameAction  = "game_action"
	MsgStartGame   = "start_game"
	MsgRestartGame = "restart_game"
)

// Server phase vocabulary, as carried in the handshake ack's game_state
// field. Distinct from the client's session.Phase.
const (
	GameStateLobby         = "lobby"
	GameStateRoleSelection = "role_selection"
	GameStateLoading       = "loading"
	GameStatePlaying       = "playing"
	GameStateFinished      = "finished"
)

// Application close codes. The 4000-4099 range is reserved for the game;
// rejection codes mean the server actively refused the session and a retry
// with the same inputs cannot succeed.
const (
	CloseBadHandshake  websocket.StatusCode = 4000
	CloseConnectFailed websocket.StatusCode = 4001
	CloseRoomFull      websocket.StatusCode = 4002
	CloseDuplicateName websocket.StatusCode = 4003
	CloseRoomNotFound  websocket.StatusCode = 4004
)

// IsRejection reports whether code means the server refused the session
// outright. CloseConnectFailed is deliberately excluded: the server raises it
// for its own internal errors, which are transient from the client's view.
func IsRejection(code websocket.StatusCode) bool {
	switch code {
	case CloseBadHandshake, CloseRoomFull, CloseDuplicateName, CloseRoomNotFound:
		return true
	}
	return false
}
