// Package session is the client-local model: which screen the session is on
// and everything the server has told us about the room. All mutation flows
// through Apply; nothing else writes Snapshot fields.
package session

import (
	"strings"

	"github.com/virtualwest/unicorn-rush/pkg/protocol"
)

// Phase is the client-side session phase. The server speaks its own, smaller
// vocabulary (protocol.GameState*); dispatch owns the mapping between the two.
type Phase string

const (
	PhaseInitial       Phase = "initial"
	PhaseWelcome       Phase = "welcome"
	PhaseRoomSelection Phase = "room_selection"
	PhaseLobby         Phase = "lobby"
	PhaseRoleSelection Phase = "role_selection"
	PhaseLoading       Phase = "loading"
	PhaseRoundLoading  Phase = "round_loading"
	PhasePlaying       Phase = "playing"
	PhaseResult        Phase = "result"
)

// Valid reports whether p is a known phase. Used when loading persisted
// records, which may come from an older client.
func (p Phase) Valid() bool {
	switch p {
	case PhaseInitial, PhaseWelcome, PhaseRoomSelection, PhaseLobby,
		PhaseRoleSelection, PhaseLoading, PhaseRoundLoading, PhasePlaying, PhaseResult:
		return true
	}
	return false
}

// ConnState describes the live connection, not the session: a session in
// PhasePlaying can be Disconnected after a drop.
type ConnState string

const (
	Disconnected ConnState = "disconnected"
	Connecting   ConnState = "connecting"
	Connected    ConnState = "connected"
)

// Snapshot is the full session state. Values are treated as immutable once
// returned from Apply; callers must not write fields directly.
type Snapshot struct {
	Phase      Phase
	Conn       ConnState
	PlayerName string
	RoomID     string

	Players       []protocol.Player
	Round         int
	Event         *protocol.RoundEvent
	Private       map[string]string // lower-cased role -> confidential text
	Actions       []protocol.PlayerAction
	SelectedRoles []string
	Waiting       bool
	Background    string
	Roles         map[string]protocol.RoleDefinition
	Result        *protocol.GameResult

	// Notice is the latest user-visible message (join/leave/error). The UI
	// renders it; the core only sets it.
	Notice string
}

func New() Snapshot {
	return Snapshot{
		Phase: PhaseInitial,
		Conn:  Disconnected,
		Round: 1,
	}
}

// PrivateFor returns the confidential text for a role, matching
// case-insensitively. Empty role or no entry returns "".
func (s Snapshot) PrivateFor(role string) string {
	if role == "" {
		return ""
	}
	return s.Private[strings.ToLower(role)]
}

// NormalizePrivate lower-cases the role keys of a private-message set so
// lookups by role id and by display casing agree.
func NormalizePrivate(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[strings.ToLower(k)] = v
	}
	return out
}
