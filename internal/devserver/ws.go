package devserver

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"github.com/virtualwest/unicorn-rush/pkg/protocol"
)

// wsHandler accepts a connection, performs the handshake against the room,
// then shuttles frames between the socket and the room actor.
func wsHandler(reg *Registry, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer ws.Close(websocket.StatusNormalClosure, "bye")

		hctx, hcancel := context.WithTimeout(r.Context(), 10*time.Second)
		_, data, err := ws.Read(hctx)
		hcancel()
		if err != nil {
			return
		}
		var hello protocol.Handshake
		if err := json.Unmarshal(data, &hello); err != nil ||
			hello.PlayerName == "" || hello.RoomID == "" {
			ws.Close(protocol.CloseBadHandshake, "player name and room id are required")
			return
		}

		roomReply := make(chan *Room, 1)
		reg.Inbox() <- GetRoom{ID: hello.RoomID, Reply: roomReply}
		room := <-roomReply
		if room == nil {
			ws.Close(protocol.CloseRoomNotFound, "room "+hello.RoomID+" does not exist")
			return
		}

		out := make(chan protocol.Envelope, 16)
		joinReply := make(chan joinResult, 1)
		room.Inbox() <- joinRoom{PlayerName: hello.PlayerName, Outbox: out, Reply: joinReply}
		res := <-joinReply
		if res.Code != 0 {
			ws.Close(res.Code, res.Reason)
			return
		}
		defer func() {
			room.Inbox() <- leaveRoom{PlayerName: hello.PlayerName, ConnID: res.ConnID}
		}()

		// Handshake ack goes out before the writer drains broadcasts, so it
		// is always the first frame the client sees.
		if err := writeEnvelope(r.Context(), ws, envelope(protocol.MsgConnectionSuccess, res.Ack)); err != nil {
			return
		}

		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for env := range out {
				if err := writeEnvelope(writeCtx, ws, env); err != nil {
					return
				}
			}
		}()

		for {
			_, data, err := ws.Read(r.Context())
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				default:
					log.Debug("read ended", zap.String("player", hello.PlayerName), zap.Error(err))
				}
				return
			}
			var env protocol.Envelope
			if err := json.Unmarshal(data, &env); err != nil {
				log.Warn("dropping malformed client frame", zap.Error(err))
				continue
			}
			room.Inbox() <- fromPlayer{PlayerName: hello.PlayerName, Env: env}
		}
	}
}

func writeEnvelope(ctx context.Context, ws *websocket.Conn, env protocol.Envelope) error {
	payload, _ := json.Marshal(env)
	wctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return ws.Write(wctx, websocket.MessageText, payload)
}
