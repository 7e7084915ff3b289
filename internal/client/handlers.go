package client

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/virtualwest/unicorn-rush/internal/session"
	"github.com/virtualwest/unicorn-rush/pkg/protocol"
)

func (c *Client) handle(ctx context.Context, m Msg) {
	switch msg := m.(type) {
	case EnterWelcome:
		if c.snap.Phase != session.PhaseInitial {
			return
		}
		c.apply(session.Instruction{Phase: session.Ptr(session.PhaseWelcome)})

	case SetName:
		if msg.Name == "" {
			c.apply(session.Instruction{Note: "a name is required"})
			return
		}
		if c.snap.PlayerName != "" {
			// Identity is fixed for the session; Exit is the way out.
			c.log.Warn("ignoring rename", zap.String("name", msg.Name))
			return
		}
		c.apply(session.Instruction{
			PlayerName: session.Ptr(msg.Name),
			Phase:      session.Ptr(session.PhaseRoomSelection),
			Persist:    true,
		})

	case JoinRoom:
		c.joinRoom(ctx, msg.RoomID)

	case SubmitIdea:
		c.mgr.Send(ctx, env(protocol.MsgStartupIdea, protocol.IdeaSubmit{Idea: msg.Idea}))

	case SelectRole:
		c.mgr.Send(ctx, env(protocol.MsgSelectRole, protocol.RoleSelect{Role: msg.Role}))

	case SubmitAction:
		a := msg.Action
		if a.PlayerName == "" {
			a.PlayerName = c.snap.PlayerName
		}
		if a.Round == 0 {
			a.Round = c.snap.Round
		}
		if a.Timestamp == "" {
			a.Timestamp = time.Now().Format(time.RFC3339)
		}
		c.mgr.Send(ctx, env(protocol.MsgGameAction, a))

	case StartGame:
		c.mgr.Send(ctx, env(protocol.MsgStartGame, nil))

	case RestartGame:
		if c.snap.Conn == session.Connected {
			c.mgr.Send(ctx, env(protocol.MsgRestartGame, nil))
			return
		}
		c.apply(session.Instruction{
			ResetGame: true,
			Phase:     session.Ptr(session.PhaseLobby),
			Note:      "game reset",
			Persist:   true,
		})

	case Reconnect:
		if c.snap.PlayerName == "" || c.snap.RoomID == "" {
			c.apply(session.Instruction{Note: "nothing to reconnect to"})
			return
		}
		c.connect(ctx)

	case Exit:
		c.mgr.Close()
		c.st.Clear()
		c.snap = session.New()
		c.apply(session.Instruction{Phase: session.Ptr(session.PhaseWelcome)})

	case GetSnapshot:
		msg.Reply <- c.snap

	case handshakeAck:
		in := c.disp.HandshakeAck(msg.ack)
		if msg.ack.RoomID != "" {
			in.RoomID = session.Ptr(msg.ack.RoomID)
		}
		c.apply(in)

	case fromServer:
		c.apply(c.disp.Dispatch(msg.env, c.snap))

	case connClosed:
		if protocol.IsRejection(msg.code) {
			note := msg.reason
			if note == "" {
				note = fmt.Sprintf("the server refused the connection (%d)", msg.code)
			}
			c.apply(session.Instruction{
				Phase: session.Ptr(session.PhaseRoomSelection),
				Conn:  session.Ptr(session.Disconnected),
				Note:  note,
			})
			return
		}
		c.apply(session.Instruction{
			Conn: session.Ptr(session.Disconnected),
			Note: "connection lost",
		})
	}
}

func (c *Client) joinRoom(ctx context.Context, roomID string) {
	if c.snap.PlayerName == "" {
		c.apply(session.Instruction{Note: "set a name before joining a room"})
		return
	}
	rctx, cancel := context.WithTimeout(ctx, c.cfg.CallTimeout)
	resp, err := c.dir.CreateRoom(rctx, roomID, c.snap.PlayerName)
	cancel()
	if err != nil {
		c.log.Warn("create room failed", zap.String("room", roomID), zap.Error(err))
		c.apply(session.Instruction{Note: "could not reach the server"})
		return
	}
	if !resp.Success {
		note := resp.Message
		if note == "" {
			note = "could not enter the room"
		}
		c.apply(session.Instruction{Note: note})
		return
	}
	if resp.RoomID != "" {
		roomID = resp.RoomID
	}
	c.apply(session.Instruction{RoomID: session.Ptr(roomID)})
	c.connect(ctx)
}

// connect opens the live connection for the current identity and room. A dial
// failure is transient: surfaced as Disconnected, retried only on an explicit
// Reconnect command.
func (c *Client) connect(ctx context.Context) {
	c.apply(session.Instruction{Conn: session.Ptr(session.Connecting)})
	dctx, cancel := context.WithTimeout(ctx, c.cfg.CallTimeout)
	defer cancel()
	if err := c.mgr.Connect(dctx, c.snap.PlayerName, c.snap.RoomID); err != nil {
		c.log.Warn("connect failed", zap.Error(err))
		c.apply(session.Instruction{
			Conn: session.Ptr(session.Disconnected),
			Note: "connection lost",
		})
	}
}
