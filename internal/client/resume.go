package client

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/virtualwest/unicorn-rush/internal/session"
	"github.com/virtualwest/unicorn-rush/internal/store"
)

// startup is the reconnection coordinator, evaluated exactly once. Three
// outcomes: nothing persisted (stay at the initial screen), identity only
// (skip straight to room selection), or identity + room (verify the room
// still exists, then resume optimistically and let the handshake ack have the
// final word).
func (c *Client) startup(ctx context.Context) {
	rec := c.st.Load()

	switch {
	case rec.PlayerName == "":
		c.publish()
		return

	case rec.RoomID == "":
		c.apply(session.Instruction{
			PlayerName: session.Ptr(rec.PlayerName),
			Phase:      session.Ptr(session.PhaseRoomSelection),
			Note:       fmt.Sprintf("welcome back, %s", rec.PlayerName),
		})
		return
	}

	// Let the server notice the previous socket is gone before we knock
	// again. Cancelled cleanly if the actor is torn down first.
	if c.cfg.ResumeDelay > 0 {
		t := time.NewTimer(c.cfg.ResumeDelay)
		select {
		case <-ctx.Done():
			t.Stop()
			return
		case <-t.C:
		}
	}

	// Verify before connecting: a dead room should fail early and cleanly,
	// not as a late rejection on an open socket.
	sctx, cancel := context.WithTimeout(ctx, c.cfg.CallTimeout)
	status, err := c.dir.RoomStatus(sctx, rec.RoomID)
	cancel()
	if err != nil {
		c.log.Info("saved room unavailable, abandoning session",
			zap.String("room", rec.RoomID), zap.Error(err))
		c.st.Clear()
		c.st.Save(store.Record{PlayerName: rec.PlayerName})
		c.apply(session.Instruction{
			PlayerName: session.Ptr(rec.PlayerName),
			Phase:      session.Ptr(session.PhaseRoomSelection),
			Note:       fmt.Sprintf("room %s no longer exists", rec.RoomID),
		})
		return
	}

	// Optimistic phase from the persisted hint; the handshake ack's
	// authoritative snapshot overrides it moments later.
	phase := session.Phase(rec.Phase)
	if !phase.Valid() {
		phase = session.PhaseLobby
	}
	c.apply(session.Instruction{
		PlayerName: session.Ptr(rec.PlayerName),
		RoomID:     session.Ptr(rec.RoomID),
		Phase:      session.Ptr(phase),
		Note:       fmt.Sprintf("resuming room %s (%d players)", rec.RoomID, status.PlayerCount),
	})
	c.connect(ctx)
}
