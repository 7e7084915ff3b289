package dispatch

import (
	"fmt"
	"strings"

	"github.com/virtualwest/unicorn-rush/internal/session"
	"github.com/virtualwest/unicorn-rush/pkg/protocol"
)

// serverPhases is the exhaustive server game_state -> client phase table.
// Growing the server vocabulary means adding a row here and bumping
// protocol.SchemaVersion, not guessing at a call site.
var serverPhases = map[string]session.Phase{
	protocol.GameStateLobby:         session.PhaseLobby,
	protocol.GameStateRoleSelection: session.PhaseRoleSelection,
	protocol.GameStateLoading:       session.PhaseRoundLoading,
	protocol.GameStatePlaying:       session.PhasePlaying,
	protocol.GameStateFinished:      session.PhaseResult,
}

// PhaseFromServer maps a server game_state string onto a session phase.
// Unrecognized strings map to Lobby: a phase we can always recover from.
func PhaseFromServer(gameState string) session.Phase {
	if p, ok := serverPhases[strings.ToLower(strings.TrimSpace(gameState))]; ok {
		return p
	}
	return session.PhaseLobby
}

// HandshakeAck turns the connection_success payload into a transition
// instruction. Unlike deltas this is a full authoritative snapshot: whatever
// it carries overrides any optimistic local phase, persisted hint included.
func (d *Dispatcher) HandshakeAck(ack protocol.ConnectionSuccess) session.Instruction {
	in := session.Instruction{
		Conn:    session.Ptr(session.Connected),
		Players: ack.Players,
		Persist: true,
	}
	if in.Players == nil {
		in.Players = []protocol.Player{}
	}

	if !ack.IsReconnect {
		in.Phase = session.Ptr(session.PhaseLobby)
		in.Note = fmt.Sprintf("joined room %s", ack.RoomID)
		return in
	}

	in.Phase = session.Ptr(PhaseFromServer(ack.GameState))
	in.Note = fmt.Sprintf("reconnected to room %s", ack.RoomID)
	if ack.CurrentRound > 0 {
		in.Round = session.Ptr(ack.CurrentRound)
	}
	if ack.SelectedRoles != nil {
		in.SelectedRoles = ack.SelectedRoles
	}
	if ack.PlayerActions != nil {
		in.Actions = ack.PlayerActions
	}
	if ack.GameResult != nil {
		in.Result = ack.GameResult
	}
	if ack.Background != "" {
		in.Background = session.Ptr(ack.Background)
	}
	if ack.DynamicRoles != nil {
		in.Roles = ack.DynamicRoles
	}
	if ack.RoundEvent != nil {
		in.Event = ack.RoundEvent
	}
	if ack.PrivateMessages != nil {
		in.Private = ack.PrivateMessages
	}
	return in
}
