package client_test

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/virtualwest/unicorn-rush/internal/client"
	"github.com/virtualwest/unicorn-rush/internal/devserver"
	"github.com/virtualwest/unicorn-rush/internal/directory"
	"github.com/virtualwest/unicorn-rush/internal/session"
	"github.com/virtualwest/unicorn-rush/internal/store"
	"github.com/virtualwest/unicorn-rush/pkg/protocol"
)

type testEnv struct {
	httpBase string
	wsBase   string
	st       *store.Store
	dir      *directory.Client
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	reg := devserver.NewRegistry(ctx, zap.NewNop())
	srv := httptest.NewServer(devserver.Routes(reg, zap.NewNop()))
	t.Cleanup(srv.Close)

	st, err := store.Open(filepath.Join(t.TempDir(), "session.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(st.Close)

	return &testEnv{
		httpBase: srv.URL,
		wsBase:   strings.Replace(srv.URL, "http", "ws", 1),
		st:       st,
		dir:      directory.New(srv.URL, zap.NewNop()),
	}
}

func (e *testEnv) startClient(t *testing.T) *client.Client {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	c := client.New(client.Config{WSBase: e.wsBase}, e.st, e.dir, zap.NewNop())
	go c.Run(ctx)
	return c
}

func waitSnap(t *testing.T, c *client.Client, cond func(session.Snapshot) bool) session.Snapshot {
	t.Helper()
	var snap session.Snapshot
	require.Eventually(t, func() bool {
		snap = c.Snapshot()
		return cond(snap)
	}, 3*time.Second, 10*time.Millisecond)
	return snap
}

func waitPhase(t *testing.T, c *client.Client, phase session.Phase) session.Snapshot {
	t.Helper()
	return waitSnap(t, c, func(s session.Snapshot) bool { return s.Phase == phase })
}

func TestColdStartNoStorage(t *testing.T) {
	e := newTestEnv(t)
	c := e.startClient(t)

	waitPhase(t, c, session.PhaseInitial)

	c.Inbox() <- client.EnterWelcome{}
	waitPhase(t, c, session.PhaseWelcome)

	c.Inbox() <- client.SetName{Name: "Ava"}
	waitPhase(t, c, session.PhaseRoomSelection)
	assert.Equal(t, "Ava", e.st.Load().PlayerName)
}

func TestIdentityOnlySkipsWelcome(t *testing.T) {
	e := newTestEnv(t)
	e.st.Save(store.Record{PlayerName: "Ava"})

	c := e.startClient(t)
	snap := waitPhase(t, c, session.PhaseRoomSelection)
	assert.Equal(t, "Ava", snap.PlayerName)
}

func TestJoinRoomReachesLobby(t *testing.T) {
	e := newTestEnv(t)
	c := e.startClient(t)

	c.Inbox() <- client.EnterWelcome{}
	c.Inbox() <- client.SetName{Name: "Ava"}
	waitPhase(t, c, session.PhaseRoomSelection)

	c.Inbox() <- client.JoinRoom{RoomID: "R1"}
	snap := waitPhase(t, c, session.PhaseLobby)
	assert.Equal(t, session.Connected, snap.Conn)
	assert.Equal(t, "R1", snap.RoomID)
	require.Len(t, snap.Players, 1)
	assert.True(t, snap.Players[0].IsHost)

	rec := e.st.Load()
	assert.Equal(t, "R1", rec.RoomID)
	assert.Equal(t, string(session.PhaseLobby), rec.Phase)
}

func TestStaleRoomFallsBackToRoomSelection(t *testing.T) {
	e := newTestEnv(t)
	e.st.Save(store.Record{PlayerName: "Ava", RoomID: "R9", Phase: "playing"})

	c := e.startClient(t)
	snap := waitPhase(t, c, session.PhaseRoomSelection)

	assert.Equal(t, session.Disconnected, snap.Conn, "no connection attempt is made")
	assert.Equal(t, "Ava", snap.PlayerName)
	assert.Contains(t, snap.Notice, "R9")

	rec := e.st.Load()
	assert.Equal(t, "Ava", rec.PlayerName)
	assert.Empty(t, rec.RoomID, "the dead room is forgotten")
}

// playThroughRoundOne drives a solo session into round 2 of a live game,
// then tears the client down so the server sees a disconnect.
func playThroughRoundOne(t *testing.T, e *testEnv) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())

	c := client.New(client.Config{WSBase: e.wsBase},
		e.st, e.dir, zap.NewNop())
	go c.Run(ctx)

	c.Inbox() <- client.EnterWelcome{}
	c.Inbox() <- client.SetName{Name: "Ava"}
	waitPhase(t, c, session.PhaseRoomSelection)
	c.Inbox() <- client.JoinRoom{RoomID: "R1"}
	waitPhase(t, c, session.PhaseLobby)

	c.Inbox() <- client.SubmitIdea{Idea: "uber for unicorns"}
	waitPhase(t, c, session.PhaseRoleSelection)
	c.Inbox() <- client.SelectRole{Role: "ceo"}
	waitSnap(t, c, func(s session.Snapshot) bool {
		return s.Phase == session.PhasePlaying && s.Round == 1
	})

	c.Inbox() <- client.SubmitAction{Action: protocol.PlayerAction{Action: "A"}}
	waitSnap(t, c, func(s session.Snapshot) bool {
		return s.Phase == session.PhasePlaying && s.Round == 2
	})

	cancel()
	// give the server a moment to notice the socket is gone
	time.Sleep(100 * time.Millisecond)
}

func TestValidResumeAuthoritativeSnapshotWins(t *testing.T) {
	e := newTestEnv(t)
	playThroughRoundOne(t, e)

	// the persisted phase hint is stale on purpose
	e.st.Save(store.Record{Phase: string(session.PhaseLobby)})

	c := e.startClient(t)
	snap := waitSnap(t, c, func(s session.Snapshot) bool {
		return s.Phase == session.PhasePlaying && s.Conn == session.Connected
	})

	assert.Equal(t, 2, snap.Round, "the handshake ack, not the hint, decides")
	require.NotNil(t, snap.Event)
	assert.NotEmpty(t, snap.PrivateFor("ceo"))
	assert.Empty(t, snap.Actions, "round 2 starts with no actions")
}

func TestRoundDataDoesNotLeakAcrossRounds(t *testing.T) {
	e := newTestEnv(t)
	c := e.startClient(t)

	c.Inbox() <- client.EnterWelcome{}
	c.Inbox() <- client.SetName{Name: "Ava"}
	waitPhase(t, c, session.PhaseRoomSelection)
	c.Inbox() <- client.JoinRoom{RoomID: "R1"}
	waitPhase(t, c, session.PhaseLobby)
	c.Inbox() <- client.SubmitIdea{Idea: "idea"}
	waitPhase(t, c, session.PhaseRoleSelection)
	c.Inbox() <- client.SelectRole{Role: "cto"}
	round1 := waitSnap(t, c, func(s session.Snapshot) bool {
		return s.Phase == session.PhasePlaying && s.Round == 1
	})
	secret1 := round1.PrivateFor("cto")
	require.NotEmpty(t, secret1)

	c.Inbox() <- client.SubmitAction{Action: protocol.PlayerAction{Action: "A"}}
	round2 := waitSnap(t, c, func(s session.Snapshot) bool {
		return s.Phase == session.PhasePlaying && s.Round == 2
	})

	assert.Empty(t, round2.Actions)
	secret2 := round2.PrivateFor("cto")
	assert.NotEmpty(t, secret2)
	assert.NotEqual(t, secret1, secret2)
}

func TestDuplicateNameRejectionReturnsToRoomSelection(t *testing.T) {
	e := newTestEnv(t)

	first := e.startClient(t)
	first.Inbox() <- client.EnterWelcome{}
	first.Inbox() <- client.SetName{Name: "Ava"}
	waitPhase(t, first, session.PhaseRoomSelection)
	first.Inbox() <- client.JoinRoom{RoomID: "R1"}
	waitPhase(t, first, session.PhaseLobby)

	// a second session with the same identity is actively refused
	st2, err := store.Open(filepath.Join(t.TempDir(), "session2.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(st2.Close)
	e2 := &testEnv{httpBase: e.httpBase, wsBase: e.wsBase, st: st2, dir: e.dir}

	second := e2.startClient(t)
	second.Inbox() <- client.EnterWelcome{}
	second.Inbox() <- client.SetName{Name: "Ava"}
	waitPhase(t, second, session.PhaseRoomSelection)
	second.Inbox() <- client.JoinRoom{RoomID: "R1"}

	snap := waitSnap(t, second, func(s session.Snapshot) bool {
		return s.Conn == session.Disconnected && s.Phase == session.PhaseRoomSelection && s.Notice != ""
	})
	assert.Contains(t, snap.Notice, "Ava")
}

func TestRestartWhileOfflineResetsLocally(t *testing.T) {
	e := newTestEnv(t)
	e.st.Save(store.Record{PlayerName: "Ava"})
	c := e.startClient(t)
	waitPhase(t, c, session.PhaseRoomSelection)

	c.Inbox() <- client.RestartGame{}
	snap := waitPhase(t, c, session.PhaseLobby)
	assert.Equal(t, 1, snap.Round)
	assert.Nil(t, snap.Result)
}

func TestExitClearsEverything(t *testing.T) {
	e := newTestEnv(t)
	e.st.Save(store.Record{PlayerName: "Ava", RoomID: "R1", Phase: "lobby"})

	c := e.startClient(t)
	// R1 does not exist on this fresh server, so startup falls back
	waitPhase(t, c, session.PhaseRoomSelection)

	c.Inbox() <- client.Exit{}
	snap := waitPhase(t, c, session.PhaseWelcome)
	assert.Empty(t, snap.PlayerName)
	assert.True(t, e.st.Load().Empty())
}
