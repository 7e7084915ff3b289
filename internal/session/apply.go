package session

import "github.com/virtualwest/unicorn-rush/pkg/protocol"

// Instruction is an immutable description of one transition. Dispatch (or a
// local UI action) builds one; Apply folds it into the snapshot. Nil/zero
// fields mean "unchanged".
type Instruction struct {
	// Note, when set, becomes the snapshot's user-visible notice.
	Note string

	Phase *Phase
	Conn  *ConnState

	PlayerName *string
	RoomID     *string

	Players       []protocol.Player
	Round         *int
	Event         *protocol.RoundEvent
	Private       map[string]string
	Actions       []protocol.PlayerAction
	SelectedRoles []string
	Waiting       *bool
	Background    *string
	Roles         map[string]protocol.RoleDefinition
	Result        *protocol.GameResult

	// ClearRound wipes the prior round's actions and private messages before
	// the rest of the instruction lands. Round-start sets this so round N
	// never leaks round N-1 data.
	ClearRound bool

	// ResetGame drops all game data back to a fresh-lobby state while keeping
	// identity and room. The only edge out of PhaseResult.
	ResetGame bool

	// Persist marks transitions worth shadowing to durable storage.
	Persist bool
}

// Apply folds one instruction into the snapshot and returns the result. Pure:
// the receiver is not modified and the instruction is never retained.
func Apply(s Snapshot, in Instruction) Snapshot {
	if in.ResetGame {
		s.Round = 1
		s.Event = nil
		s.Private = nil
		s.Actions = nil
		s.SelectedRoles = nil
		s.Waiting = false
		s.Background = ""
		s.Roles = nil
		s.Result = nil
	}
	if in.ClearRound {
		s.Actions = nil
		s.Private = nil
		s.Waiting = false
	}

	if in.Phase != nil {
		s.Phase = *in.Phase
	}
	if in.Conn != nil {
		s.Conn = *in.Conn
	}
	if in.PlayerName != nil {
		s.PlayerName = *in.PlayerName
	}
	if in.RoomID != nil {
		s.RoomID = *in.RoomID
	}
	if in.Players != nil {
		s.Players = in.Players
	}
	if in.Round != nil {
		s.Round = *in.Round
	}
	if in.Event != nil {
		s.Event = in.Event
	}
	if in.Private != nil {
		s.Private = NormalizePrivate(in.Private)
	}
	if in.Actions != nil {
		s.Actions = in.Actions
	}
	if in.SelectedRoles != nil {
		s.SelectedRoles = in.SelectedRoles
	}
	if in.Waiting != nil {
		s.Waiting = *in.Waiting
	}
	if in.Background != nil {
		s.Background = *in.Background
	}
	if in.Roles != nil {
		s.Roles = in.Roles
	}
	if in.Result != nil {
		s.Result = in.Result
	}
	if in.Note != "" {
		s.Notice = in.Note
	}
	return s
}

// Ptr is a convenience for building instructions.
func Ptr[T any](v T) *T { return &v }
