package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/virtualwest/unicorn-rush/pkg/protocol"
)

func TestApplyMergesOnlyProvidedFields(t *testing.T) {
	s := New()
	s.PlayerName = "Ava"
	s.RoomID = "R1"

	next := Apply(s, Instruction{Phase: Ptr(PhaseLobby)})

	assert.Equal(t, PhaseLobby, next.Phase)
	assert.Equal(t, "Ava", next.PlayerName)
	assert.Equal(t, "R1", next.RoomID)
	// the input snapshot is untouched
	assert.Equal(t, PhaseInitial, s.Phase)
}

func TestApplyClearRoundWipesPriorRoundData(t *testing.T) {
	s := New()
	s.Phase = PhasePlaying
	s.Round = 1
	s.Actions = []protocol.PlayerAction{{PlayerName: "Ava", Action: "A", Round: 1}}
	s.Private = map[string]string{"ceo": "old secret"}
	s.Waiting = true

	event := &protocol.RoundEvent{Title: "The Outage"}
	next := Apply(s, Instruction{
		Round:      Ptr(2),
		ClearRound: true,
		Event:      event,
		Private:    map[string]string{"CTO": "new secret"},
	})

	require.Equal(t, 2, next.Round)
	assert.Empty(t, next.Actions, "round 1 actions must not leak into round 2")
	assert.False(t, next.Waiting)
	assert.Equal(t, event, next.Event)
	assert.Equal(t, "new secret", next.PrivateFor("cto"))
	assert.Equal(t, "", next.PrivateFor("ceo"))
}

func TestApplyResetGameKeepsIdentityAndRoom(t *testing.T) {
	s := New()
	s.Phase = PhaseResult
	s.PlayerName = "Ava"
	s.RoomID = "R1"
	s.Round = 3
	s.Result = &protocol.GameResult{FinalScore: 120}
	s.SelectedRoles = []string{"ceo"}
	s.Background = "story"

	next := Apply(s, Instruction{ResetGame: true, Phase: Ptr(PhaseLobby)})

	assert.Equal(t, PhaseLobby, next.Phase)
	assert.Equal(t, "Ava", next.PlayerName)
	assert.Equal(t, "R1", next.RoomID)
	assert.Equal(t, 1, next.Round)
	assert.Nil(t, next.Result)
	assert.Nil(t, next.SelectedRoles)
	assert.Empty(t, next.Background)
}

func TestPrivateForIsCaseInsensitive(t *testing.T) {
	s := Apply(New(), Instruction{Private: map[string]string{"CEO": "secret"}})

	assert.Equal(t, "secret", s.PrivateFor("ceo"))
	assert.Equal(t, "secret", s.PrivateFor("CEO"))
	assert.Equal(t, "secret", s.PrivateFor("Ceo"))
	assert.Equal(t, "", s.PrivateFor(""))
}

func TestPhaseValid(t *testing.T) {
	for _, p := range []Phase{
		PhaseInitial, PhaseWelcome, PhaseRoomSelection, PhaseLobby,
		PhaseRoleSelection, PhaseLoading, PhaseRoundLoading, PhasePlaying, PhaseResult,
	} {
		assert.True(t, p.Valid(), "phase %q", p)
	}
	assert.False(t, Phase("event_generation").Valid())
	assert.False(t, Phase("").Valid())
}
