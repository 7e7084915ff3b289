// Package directory is the stateless HTTP client used to discover or
// validate a room before committing to a live connection.
package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/virtualwest/unicorn-rush/pkg/protocol"
)

// ErrRoomNotFound means the server answered and the room does not exist, as
// opposed to a transport failure where its existence is unknown.
var ErrRoomNotFound = errors.New("room not found")

type Client struct {
	base string
	http *http.Client
	log  *zap.Logger
}

// New builds a client against base, e.g. "http://localhost:8000".
func New(base string, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		base: base,
		http: &http.Client{Timeout: 10 * time.Second},
		log:  log,
	}
}

// RoomStatus checks whether a room exists. Returns ErrRoomNotFound on any
// non-2xx response.
func (c *Client) RoomStatus(ctx context.Context, roomID string) (protocol.RoomStatus, error) {
	var status protocol.RoomStatus

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/rooms/%s/status", c.base, roomID), nil)
	if err != nil {
		return status, fmt.Errorf("room status request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return status, fmt.Errorf("room status: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Info("room status check failed",
			zap.String("room", roomID), zap.Int("status", resp.StatusCode))
		return status, fmt.Errorf("room %s: %w", roomID, ErrRoomNotFound)
	}
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return status, fmt.Errorf("decode room status: %w", err)
	}
	return status, nil
}

// CreateRoom creates or joins a room. A refusal (room full, name taken) comes
// back as Success=false with a server-provided message, not an error.
func (c *Client) CreateRoom(ctx context.Context, roomID, playerName string) (protocol.CreateRoomResponse, error) {
	var out protocol.CreateRoomResponse

	body, err := json.Marshal(protocol.CreateRoomRequest{RoomID: roomID, PlayerName: playerName})
	if err != nil {
		return out, fmt.Errorf("encode create room: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.base+"/rooms/create", bytes.NewReader(body))
	if err != nil {
		return out, fmt.Errorf("create room request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return out, fmt.Errorf("create room: %w", err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return out, fmt.Errorf("decode create room: %w", err)
	}
	return out, nil
}
