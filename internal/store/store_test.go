package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "session.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func TestLoadOnColdStoreIsEmpty(t *testing.T) {
	s := openTemp(t)
	assert.True(t, s.Load().Empty())
}

func TestSaveMergesWithoutNullOverwrite(t *testing.T) {
	s := openTemp(t)

	s.Save(Record{PlayerName: "Ava"})
	got := s.Load()
	assert.Equal(t, "Ava", got.PlayerName)
	assert.Empty(t, got.RoomID)

	// a partial save must not wipe the fields it does not mention
	s.Save(Record{RoomID: "R1", Phase: "lobby"})
	got = s.Load()
	assert.Equal(t, "Ava", got.PlayerName)
	assert.Equal(t, "R1", got.RoomID)
	assert.Equal(t, "lobby", got.Phase)

	s.Save(Record{Phase: "playing"})
	got = s.Load()
	assert.Equal(t, "Ava", got.PlayerName)
	assert.Equal(t, "R1", got.RoomID)
	assert.Equal(t, "playing", got.Phase)
}

func TestClearIsIdempotent(t *testing.T) {
	s := openTemp(t)
	s.Save(Record{PlayerName: "Ava", RoomID: "R1", Phase: "lobby"})

	s.Clear()
	assert.True(t, s.Load().Empty())
	s.Clear()
	assert.True(t, s.Load().Empty())
}

func TestRecordSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")

	s, err := Open(path, zap.NewNop())
	require.NoError(t, err)
	s.Save(Record{PlayerName: "Ava", RoomID: "R1", Phase: "playing"})
	s.Close()

	s2, err := Open(path, zap.NewNop())
	require.NoError(t, err)
	defer s2.Close()
	got := s2.Load()
	assert.Equal(t, "Ava", got.PlayerName)
	assert.Equal(t, "R1", got.RoomID)
	assert.Equal(t, "playing", got.Phase)
}

func TestSchemaVersionMismatchClearsRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")

	s, err := Open(path, zap.NewNop())
	require.NoError(t, err)
	s.Save(Record{PlayerName: "Ava", RoomID: "R1", Phase: "lobby"})
	s.set(keyVersion, "999")
	s.Close()

	s2, err := Open(path, zap.NewNop())
	require.NoError(t, err)
	defer s2.Close()
	assert.True(t, s2.Load().Empty(), "a record from an unknown schema is not reinterpreted")
}
