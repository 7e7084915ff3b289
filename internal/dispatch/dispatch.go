// Package dispatch maps inbound server envelopes to session transition
// instructions. It is pure: no network, no storage, no snapshot mutation.
// Every case is total; a malformed or unknown frame yields a no-op
// instruction, never an error across the boundary.
package dispatch

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/virtualwest/unicorn-rush/internal/session"
	"github.com/virtualwest/unicorn-rush/pkg/protocol"
)

type Dispatcher struct {
	log *zap.Logger
}

func New(log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{log: log}
}

// decode unmarshals an envelope payload into v. A decode failure is a
// protocol-class error: logged, and v keeps its zero value so the caller
// falls through to the safest interpretation.
func (d *Dispatcher) decode(env protocol.Envelope, v any) {
	if len(env.Data) == 0 {
		return
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		d.log.Warn("malformed payload, using defaults",
			zap.String("type", env.Type), zap.Error(err))
	}
}

// Dispatch turns one delta envelope into a transition instruction. The
// current snapshot is consulted only for read-side decisions (e.g. whether a
// join notice is about someone else); it is never written here.
func (d *Dispatcher) Dispatch(env protocol.Envelope, cur session.Snapshot) session.Instruction {
	switch env.Type {
	case protocol.MsgPlayerJoin:
		var p protocol.PlayersUpdate
		d.decode(env, &p)
		in := session.Instruction{Players: p.Players}
		if p.PlayerName != "" && p.PlayerName != cur.PlayerName {
			in.Note = fmt.Sprintf("%s joined the room", p.PlayerName)
		}
		return in

	case protocol.MsgPlayerLeave:
		var p protocol.PlayersUpdate
		d.decode(env, &p)
		return session.Instruction{
			Players: p.Players,
			Note:    fmt.Sprintf("%s left the room", p.PlayerName),
		}

	case protocol.MsgIdeasComplete:
		var p protocol.PlayersUpdate
		d.decode(env, &p)
		return session.Instruction{
			Phase:   session.Ptr(session.PhaseRoleSelection),
			Players: p.Players,
			Note:    "all ideas are in, pick your roles",
			Persist: true,
		}

	case protocol.MsgGameLoading:
		return session.Instruction{
			Phase:   session.Ptr(session.PhaseLoading),
			Note:    "game is loading",
			Persist: true,
		}

	case protocol.MsgGameStart:
		var p protocol.GameStart
		d.decode(env, &p)
		in := session.Instruction{
			Phase:   session.Ptr(session.PhaseRoleSelection),
			Roles:   p.Roles,
			Note:    "game starting, pick a role",
			Persist: true,
		}
		if p.Background != "" {
			in.Background = session.Ptr(p.Background)
		}
		return in

	case protocol.MsgTransitionAnimation:
		// The story intro plays while the first round is generated; the
		// session sits in Loading until round data arrives.
		var p protocol.GameStart
		d.decode(env, &p)
		in := session.Instruction{
			Phase:   session.Ptr(session.PhaseLoading),
			Roles:   p.Roles,
			Persist: true,
		}
		if p.Background != "" {
			in.Background = session.Ptr(p.Background)
		}
		return in

	case protocol.MsgRoleSelected:
		var p protocol.PlayersUpdate
		d.decode(env, &p)
		return session.Instruction{
			Players:       p.Players,
			SelectedRoles: p.SelectedRoles,
		}

	case protocol.MsgRolesComplete:
		return session.Instruction{Note: "all roles chosen, starting shortly"}

	case protocol.MsgGameStarted:
		var p protocol.RoundPayload
		d.decode(env, &p)
		return session.Instruction{
			Phase:      session.Ptr(session.PhasePlaying),
			Round:      session.Ptr(1),
			ClearRound: true,
			Event:      p.RoundEvent,
			Private:    p.PrivateMessages,
			Note:       "round 1 begins",
			Persist:    true,
		}

	case protocol.MsgRoundLoading:
		var p protocol.RoundPayload
		d.decode(env, &p)
		in := session.Instruction{
			Phase:   session.Ptr(session.PhaseRoundLoading),
			Note:    p.Message,
			Persist: true,
		}
		if p.Round > 0 {
			in.Round = session.Ptr(p.Round)
		}
		return in

	case protocol.MsgRoundStart:
		var p protocol.RoundPayload
		d.decode(env, &p)
		in := session.Instruction{
			Phase:      session.Ptr(session.PhasePlaying),
			ClearRound: true,
			Event:      p.RoundEvent,
			Private:    p.PrivateMessages,
			Persist:    true,
		}
		if p.Round > 0 {
			in.Round = session.Ptr(p.Round)
		}
		return in

	case protocol.MsgActionSubmitted:
		var p protocol.ActionsUpdate
		d.decode(env, &p)
		return session.Instruction{
			Actions: p.PlayerActions,
			Waiting: session.Ptr(p.WaitingForPlayers),
		}

	case protocol.MsgRoundComplete:
		var p protocol.RoundPayload
		d.decode(env, &p)
		return session.Instruction{Note: fmt.Sprintf("round %d complete", p.Round)}

	case protocol.MsgGameComplete:
		var p protocol.GameComplete
		d.decode(env, &p)
		return session.Instruction{
			Phase:   session.Ptr(session.PhaseResult),
			Result:  p.Result,
			Note:    "game over",
			Persist: true,
		}

	case protocol.MsgGameRestart:
		var p protocol.PlayersUpdate
		d.decode(env, &p)
		return session.Instruction{
			ResetGame: true,
			Phase:     session.Ptr(session.PhaseLobby),
			Players:   p.Players,
			Note:      "the host restarted the game",
			Persist:   true,
		}

	default:
		d.log.Info("ignoring unknown message type", zap.String("type", env.Type))
		return session.Instruction{}
	}
}
