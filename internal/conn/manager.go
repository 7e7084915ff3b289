// Package conn owns the single live WebSocket connection of a session.
// At most one connection exists at a time; a new Connect supersedes the old
// connection and bumps an epoch so the old reader's callbacks become inert
// rather than racing the new connection for shared state.
package conn

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"github.com/virtualwest/unicorn-rush/pkg/protocol"
)

const writeTimeout = 3 * time.Second

// Callbacks are the only way connection activity reaches the caller. They are
// invoked from the reader goroutine, one at a time, in receipt order.
type Callbacks struct {
	// OnHandshakeAck fires once per connection with the authoritative server
	// snapshot. No OnEvent is delivered before it.
	OnHandshakeAck func(protocol.ConnectionSuccess)
	// OnEvent fires for every delta envelope after the handshake ack.
	OnEvent func(protocol.Envelope)
	// OnClosed fires once when the connection dies for any reason other than
	// being superseded by a newer Connect or an explicit Close.
	OnClosed func(code websocket.StatusCode, reason string)
}

type Manager struct {
	wsBase string
	log    *zap.Logger
	cb     Callbacks

	mu     sync.Mutex
	epoch  uint64
	conn   *websocket.Conn
	ready  bool // handshake ack received
	cancel context.CancelFunc
}

// New builds a manager dialing wsBase, e.g. "ws://localhost:8000".
func New(wsBase string, cb Callbacks, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{wsBase: wsBase, cb: cb, log: log}
}

// Connect opens a connection for identity in room, closing any live one
// first, and sends the handshake frame. A dial failure is returned to the
// caller; everything after a successful dial arrives via callbacks.
func (m *Manager) Connect(ctx context.Context, playerName, roomID string) error {
	if playerName == "" || roomID == "" {
		return errors.New("conn: player name and room id are required")
	}

	m.mu.Lock()
	m.supersedeLocked()
	epoch := m.epoch
	m.mu.Unlock()

	ws, _, err := websocket.Dial(ctx, m.wsBase+"/ws", nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", m.wsBase, err)
	}

	hello, _ := json.Marshal(protocol.Handshake{PlayerName: playerName, RoomID: roomID})
	wctx, wcancel := context.WithTimeout(ctx, writeTimeout)
	err = ws.Write(wctx, websocket.MessageText, hello)
	wcancel()
	if err != nil {
		ws.Close(websocket.StatusNormalClosure, "handshake write failed")
		return fmt.Errorf("send handshake: %w", err)
	}

	readCtx, readCancel := context.WithCancel(context.Background())

	m.mu.Lock()
	if m.epoch != epoch {
		// A newer Connect or Close won the race; this connection is stale.
		m.mu.Unlock()
		readCancel()
		ws.Close(websocket.StatusNormalClosure, "superseded")
		return nil
	}
	m.conn = ws
	m.ready = false
	m.cancel = readCancel
	m.mu.Unlock()

	go m.readLoop(readCtx, ws, epoch)
	return nil
}

// Send writes one envelope. If no connection is open or the handshake ack has
// not arrived yet, the message is dropped with a log line; callers must not
// assume delivery.
func (m *Manager) Send(ctx context.Context, env protocol.Envelope) {
	m.mu.Lock()
	ws, ready := m.conn, m.ready
	m.mu.Unlock()

	if ws == nil || !ready {
		m.log.Warn("dropping send, connection not ready", zap.String("type", env.Type))
		return
	}

	payload, err := json.Marshal(env)
	if err != nil {
		m.log.Warn("dropping unencodable message", zap.String("type", env.Type), zap.Error(err))
		return
	}
	wctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	if err := ws.Write(wctx, websocket.MessageText, payload); err != nil {
		m.log.Warn("write failed", zap.String("type", env.Type), zap.Error(err))
	}
}

// Close tears down the live connection, if any. Idempotent. No OnClosed
// callback fires for an explicit close.
func (m *Manager) Close() {
	m.mu.Lock()
	m.supersedeLocked()
	m.mu.Unlock()
}

// supersedeLocked invalidates the current connection under m.mu: any
// callback still in flight from its reader sees a stale epoch and stops.
func (m *Manager) supersedeLocked() {
	m.epoch++
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	if m.conn != nil {
		m.conn.Close(websocket.StatusNormalClosure, "bye")
		m.conn = nil
	}
	m.ready = false
}

// stale reports whether epoch has been superseded.
func (m *Manager) stale(epoch uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.epoch != epoch
}

// detach clears the connection handle for a reader whose connection died.
// The epoch check and the clear happen under one lock: if a newer Connect won
// the race in between, the handle belongs to the new connection and must not
// be touched. Returns false when superseded, meaning no callback may fire.
func (m *Manager) detach(epoch uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.epoch != epoch {
		return false
	}
	m.conn = nil
	m.ready = false
	return true
}

func (m *Manager) readLoop(ctx context.Context, ws *websocket.Conn, epoch uint64) {
	for {
		_, data, err := ws.Read(ctx)
		if err != nil {
			if !m.detach(epoch) {
				return
			}

			code := websocket.CloseStatus(err)
			reason := ""
			var ce websocket.CloseError
			if errors.As(err, &ce) {
				reason = ce.Reason
			}
			m.log.Info("connection closed",
				zap.Int("code", int(code)), zap.String("reason", reason))
			if m.cb.OnClosed != nil {
				m.cb.OnClosed(code, reason)
			}
			return
		}

		var env protocol.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			m.log.Warn("dropping malformed frame", zap.Error(err))
			continue
		}
		if m.stale(epoch) {
			return
		}

		if env.Type == protocol.MsgConnectionSuccess {
			var ack protocol.ConnectionSuccess
			if err := json.Unmarshal(env.Data, &ack); err != nil {
				m.log.Warn("dropping malformed handshake ack", zap.Error(err))
				continue
			}
			m.mu.Lock()
			if m.epoch != epoch {
				m.mu.Unlock()
				return
			}
			m.ready = true
			m.mu.Unlock()
			if m.cb.OnHandshakeAck != nil {
				m.cb.OnHandshakeAck(ack)
			}
			continue
		}

		if m.cb.OnEvent != nil {
			m.cb.OnEvent(env)
		}
	}
}
