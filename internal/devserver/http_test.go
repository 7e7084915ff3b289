package devserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/virtualwest/unicorn-rush/pkg/protocol"
)

func TestRegistryCreateThenGetSameRoom(t *testing.T) {
	reg := NewRegistry(context.Background(), zap.NewNop())

	reply := make(chan *Room, 1)
	reg.Inbox() <- CreateRoom{ID: "ZED123", Reply: reply}
	r1 := <-reply

	reg.Inbox() <- GetRoom{ID: "ZED123", Reply: reply}
	r2 := <-reply

	require.NotNil(t, r1)
	assert.Same(t, r1, r2)
}

func TestHTTPCreateAndStatus(t *testing.T) {
	reg := NewRegistry(context.Background(), zap.NewNop())
	srv := httptest.NewServer(Routes(reg, zap.NewNop()))
	defer srv.Close()

	body, _ := json.Marshal(protocol.CreateRoomRequest{RoomID: "R1", PlayerName: "Ava"})
	resp, err := http.Post(srv.URL+"/rooms/create", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created protocol.CreateRoomResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.True(t, created.Success)
	assert.Equal(t, "R1", created.RoomID)

	status, err := http.Get(srv.URL + "/rooms/R1/status")
	require.NoError(t, err)
	defer status.Body.Close()
	require.Equal(t, http.StatusOK, status.StatusCode)

	var view protocol.RoomStatus
	require.NoError(t, json.NewDecoder(status.Body).Decode(&view))
	assert.Equal(t, 0, view.PlayerCount)
	assert.Equal(t, protocol.GameStateLobby, view.GameState)
}

func TestHTTPCreateGeneratesRoomID(t *testing.T) {
	reg := NewRegistry(context.Background(), zap.NewNop())
	srv := httptest.NewServer(Routes(reg, zap.NewNop()))
	defer srv.Close()

	body, _ := json.Marshal(protocol.CreateRoomRequest{PlayerName: "Ava"})
	resp, err := http.Post(srv.URL+"/rooms/create", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var created protocol.CreateRoomResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.True(t, created.Success)
	assert.Len(t, created.RoomID, 6)
}

func TestHTTPStatusForMissingRoomIs404(t *testing.T) {
	reg := NewRegistry(context.Background(), zap.NewNop())
	srv := httptest.NewServer(Routes(reg, zap.NewNop()))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/rooms/NOPE/status")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHTTPCreateRequiresPlayerName(t *testing.T) {
	reg := NewRegistry(context.Background(), zap.NewNop())
	srv := httptest.NewServer(Routes(reg, zap.NewNop()))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/rooms/create", "application/json",
		bytes.NewReader([]byte(`{"room_id":"R1"}`)))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
