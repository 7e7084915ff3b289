// Package client is the session core: one goroutine owns the snapshot, and
// user commands, connection callbacks and the startup resume decision all
// flow through its inbox in order. The UI is a consumer of snapshot updates,
// nothing more.
package client

import (
	"context"
	"encoding/json"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"github.com/virtualwest/unicorn-rush/internal/conn"
	"github.com/virtualwest/unicorn-rush/internal/directory"
	"github.com/virtualwest/unicorn-rush/internal/dispatch"
	"github.com/virtualwest/unicorn-rush/internal/session"
	"github.com/virtualwest/unicorn-rush/internal/store"
	"github.com/virtualwest/unicorn-rush/pkg/protocol"
)

// Config carries the endpoints and tunables the core needs. Everything else
// is injected.
type Config struct {
	WSBase string // e.g. ws://localhost:8000

	// ResumeDelay is waited before the startup resume attempt so a fast
	// restart does not race the server noticing the previous disconnect.
	ResumeDelay time.Duration

	// CallTimeout bounds each directory call and connection dial.
	CallTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.CallTimeout == 0 {
		c.CallTimeout = 10 * time.Second
	}
	return c
}

type Client struct {
	cfg   Config
	inbox chan Msg

	snap session.Snapshot
	disp *dispatch.Dispatcher
	st   *store.Store
	dir  *directory.Client
	mgr  *conn.Manager
	log  *zap.Logger

	updates chan session.Snapshot
}

// New wires the core together. st and dir are injected so tests can point
// them at fixtures; the connection manager is owned here because its
// callbacks must feed this inbox and no other.
func New(cfg Config, st *store.Store, dir *directory.Client, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Client{
		cfg:     cfg.withDefaults(),
		inbox:   make(chan Msg, 64),
		snap:    session.New(),
		disp:    dispatch.New(log),
		st:      st,
		dir:     dir,
		log:     log,
		updates: make(chan session.Snapshot, 1),
	}
	c.mgr = conn.New(c.cfg.WSBase, conn.Callbacks{
		OnHandshakeAck: func(ack protocol.ConnectionSuccess) { c.inbox <- handshakeAck{ack: ack} },
		OnEvent:        func(env protocol.Envelope) { c.inbox <- fromServer{env: env} },
		OnClosed: func(code websocket.StatusCode, reason string) {
			c.inbox <- connClosed{code: code, reason: reason}
		},
	}, log)
	return c
}

// Inbox is where commands go.
func (c *Client) Inbox() chan<- Msg { return c.inbox }

// Updates delivers snapshots after each applied transition. Only the latest
// value is retained; a slow consumer never blocks the loop.
func (c *Client) Updates() <-chan session.Snapshot { return c.updates }

// Snapshot returns the current snapshot via the loop, so it never observes a
// half-applied transition.
func (c *Client) Snapshot() session.Snapshot {
	reply := make(chan session.Snapshot, 1)
	c.inbox <- GetSnapshot{Reply: reply}
	return <-reply
}

// Run evaluates the startup resume decision, then serves the inbox until ctx
// is done or Shutdown arrives.
func (c *Client) Run(ctx context.Context) {
	c.startup(ctx)

	for {
		select {
		case <-ctx.Done():
			c.mgr.Close()
			return
		case m := <-c.inbox:
			if _, ok := m.(Shutdown); ok {
				c.mgr.Close()
				return
			}
			c.handle(ctx, m)
		}
	}
}

// apply is the single write path for the snapshot: fold the instruction,
// shadow the phase to storage when asked, publish to the UI.
func (c *Client) apply(in session.Instruction) {
	c.snap = session.Apply(c.snap, in)
	if in.Persist {
		c.st.Save(store.Record{
			PlayerName: c.snap.PlayerName,
			RoomID:     c.snap.RoomID,
			Phase:      string(c.snap.Phase),
		})
	}
	c.publish()
}

func (c *Client) publish() {
	for {
		select {
		case c.updates <- c.snap:
			return
		default:
			// Stale update nobody read yet; replace it with the latest.
			select {
			case <-c.updates:
			default:
			}
		}
	}
}

// env packs a typed payload into an outbound envelope. Encoding a local
// struct cannot fail in practice; a failure would be a programmer error.
func env(msgType string, payload any) protocol.Envelope {
	e := protocol.Envelope{Type: msgType}
	if payload != nil {
		data, _ := json.Marshal(payload)
		e.Data = data
	}
	return e
}
