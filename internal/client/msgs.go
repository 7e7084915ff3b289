package client

import (
	"github.com/coder/websocket"

	"github.com/virtualwest/unicorn-rush/internal/session"
	"github.com/virtualwest/unicorn-rush/pkg/protocol"
)

// Msg is a command or event posted to the client actor's inbox. The loop
// processes one message completely before the next, so ordering invariants
// hold without any further locking.
type Msg interface{ isClientMsg() }

// EnterWelcome advances from the initial screen. Pure local transition.
type EnterWelcome struct{}

// SetName fixes the player identity and moves to room selection.
type SetName struct{ Name string }

// JoinRoom creates or joins a room, then opens the live connection.
type JoinRoom struct{ RoomID string }

// SubmitIdea sends this player's startup idea.
type SubmitIdea struct{ Idea string }

// SelectRole claims a founder role.
type SelectRole struct{ Role string }

// SubmitAction submits this round's decision.
type SubmitAction struct{ Action protocol.PlayerAction }

// StartGame asks the server to start (host only; the server enforces it).
type StartGame struct{}

// RestartGame asks the server to restart, or resets locally when offline.
type RestartGame struct{}

// Reconnect retries the connection after a transient drop. Retry is always
// this explicit: nothing in the client reconnects on its own.
type Reconnect struct{}

// Exit abandons the session: connection closed, persisted record cleared.
type Exit struct{}

// GetSnapshot reads the current snapshot without racing the loop.
type GetSnapshot struct{ Reply chan session.Snapshot }

// Shutdown stops the actor.
type Shutdown struct{}

func (EnterWelcome) isClientMsg() {}
func (SetName) isClientMsg()      {}
func (JoinRoom) isClientMsg()     {}
func (SubmitIdea) isClientMsg()   {}
func (SelectRole) isClientMsg()   {}
func (SubmitAction) isClientMsg() {}
func (StartGame) isClientMsg()    {}
func (RestartGame) isClientMsg()  {}
func (Reconnect) isClientMsg()    {}
func (Exit) isClientMsg()         {}
func (GetSnapshot) isClientMsg()  {}
func (Shutdown) isClientMsg()     {}

// Connection callbacks re-enter the loop as inbox messages, which is what
// serializes them with local commands.

type handshakeAck struct{ ack protocol.ConnectionSuccess }

type fromServer struct{ env protocol.Envelope }

type connClosed struct {
	code   websocket.StatusCode
	reason string
}

func (handshakeAck) isClientMsg() {}
func (fromServer) isClientMsg()   {}
func (connClosed) isClientMsg()   {}
