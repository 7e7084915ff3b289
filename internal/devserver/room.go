package devserver

import (
	"context"
	"fmt"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/virtualwest/unicorn-rush/pkg/protocol"
)

const maxPlayers = 4

type roomMsg interface{ isRoomMsg() }

type joinRoom struct {
	PlayerName string
	Outbox     chan protocol.Envelope
	Reply      chan joinResult
}

// joinResult reports either the handshake ack (plus the connection id the ws
// handler must present when leaving) or a refusal close code.
type joinResult struct {
	Ack    protocol.ConnectionSuccess
	ConnID string
	Code   websocket.StatusCode
	Reason string
}

type leaveRoom struct {
	PlayerName string
	ConnID     string
}

type fromPlayer struct {
	PlayerName string
	Env        protocol.Envelope
}

type getRoomView struct{ Reply chan RoomView }

type shutdownRoom struct{}

func (joinRoom) isRoomMsg()     {}
func (leaveRoom) isRoomMsg()    {}
func (fromPlayer) isRoomMsg()   {}
func (getRoomView) isRoomMsg()  {}
func (shutdownRoom) isRoomMsg() {}

// RoomView is what the status endpoint reports.
type RoomView struct {
	PlayerCount int
	GameState   string
}

type player struct {
	name   string
	online bool
	role   string
	idea   string
	isHost bool
}

type clientConn struct {
	id  string
	out chan protocol.Envelope
}

// Room is one game room: a single goroutine owning players, phase, round
// data and per-connection outboxes.
type Room struct {
	inbox   chan roomMsg
	id      string
	order   []string // join order, first is host
	players map[string]*player
	clients map[string]clientConn // player name -> live connection
	state   string
	round   int
	actions map[int][]protocol.PlayerAction
	result  *protocol.GameResult
	ctx     context.Context
	cancel  context.CancelFunc
	log     *zap.Logger
}

func NewRoom(parent context.Context, id string, log *zap.Logger) *Room {
	ctx, cancel := context.WithCancel(parent)
	r := &Room{
		inbox:   make(chan roomMsg, 64),
		id:      id,
		players: make(map[string]*player),
		clients: make(map[string]clientConn),
		state:   protocol.GameStateLobby,
		round:   1,
		actions: make(map[int][]protocol.PlayerAction),
		ctx:     ctx,
		cancel:  cancel,
		log:     log.With(zap.String("room", id)),
	}
	go r.loop()
	return r
}

func (r *Room) Inbox() chan<- roomMsg { return r.inbox }

func (r *Room) loop() {
	for {
		select {
		case <-r.ctx.Done():
			r.shutdown()
			return
		case m := <-r.inbox:
			switch msg := m.(type) {
			case joinRoom:
				msg.Reply <- r.join(msg)
			case leaveRoom:
				r.leave(msg)
			case fromPlayer:
				r.handleMessage(msg.PlayerName, msg.Env)
			case getRoomView:
				msg.Reply <- RoomView{PlayerCount: len(r.players), GameState: r.state}
			case shutdownRoom:
				r.shutdown()
				return
			}
		}
	}
}

func (r *Room) shutdown() {
	for name, cc := range r.clients {
		close(cc.out)
		delete(r.clients, name)
	}
	r.cancel()
}

func (r *Room) join(msg joinRoom) joinResult {
	p, known := r.players[msg.PlayerName]
	isReconnect := known

	if !known {
		if len(r.players) >= maxPlayers {
			return joinResult{Code: protocol.CloseRoomFull,
				Reason: fmt.Sprintf("room %s is full", r.id)}
		}
		if r.state != protocol.GameStateLobby {
			return joinResult{Code: protocol.CloseRoomNotFound,
				Reason: fmt.Sprintf("room %s already started", r.id)}
		}
		p = &player{name: msg.PlayerName, isHost: len(r.players) == 0}
		r.players[msg.PlayerName] = p
		r.order = append(r.order, msg.PlayerName)
	} else if _, live := r.clients[msg.PlayerName]; live && p.online {
		// The same name is already connected; refuse the newcomer rather
		// than hijacking the session.
		return joinResult{Code: protocol.CloseDuplicateName,
			Reason: fmt.Sprintf("%s is already in room %s", msg.PlayerName, r.id)}
	}
	p.online = true

	// Supersede any dead connection left over for this player.
	if old, ok := r.clients[msg.PlayerName]; ok {
		close(old.out)
	}
	cc := clientConn{id: uuid.NewString(), out: msg.Outbox}
	r.clients[msg.PlayerName] = cc

	r.broadcastExcept(msg.PlayerName, envelope(protocol.MsgPlayerJoin, protocol.PlayersUpdate{
		PlayerName: msg.PlayerName,
		Players:    r.playerList(),
	}))

	return joinResult{Ack: r.connectionAck(msg.PlayerName, isReconnect), ConnID: cc.id}
}

// connectionAck builds the authoritative handshake snapshot, with the
// phase-dependent optional fields the client reconciles against.
func (r *Room) connectionAck(playerName string, isReconnect bool) protocol.ConnectionSuccess {
	ack := protocol.ConnectionSuccess{
		RoomID:       r.id,
		PlayerName:   playerName,
		IsReconnect:  isReconnect,
		GameState:    r.state,
		CurrentRound: r.round,
		Players:      r.playerList(),
	}
	switch r.state {
	case protocol.GameStateRoleSelection:
		ack.SelectedRoles = r.selectedRoles()
		ack.Background = gameBackground
		ack.DynamicRoles = roleDefinitions
	case protocol.GameStatePlaying, protocol.GameStateLoading:
		ack.PlayerActions = r.actions[r.round]
		ack.Background = gameBackground
		ack.RoundEvent = roundEvent(r.round)
		ack.PrivateMessages = privateMessages(r.round)
	case protocol.GameStateFinished:
		ack.GameResult = r.result
	}
	return ack
}

func (r *Room) leave(msg leaveRoom) {
	cc, ok := r.clients[msg.PlayerName]
	if !ok || cc.id != msg.ConnID {
		// A superseded connection saying goodbye; the live one stays.
		return
	}
	delete(r.clients, msg.PlayerName)
	if p := r.players[msg.PlayerName]; p != nil {
		p.online = false
	}
	r.broadcast(envelope(protocol.MsgPlayerLeave, protocol.PlayersUpdate{
		PlayerName: msg.PlayerName,
		Players:    r.playerList(),
	}))
}

func (r *Room) playerList() []protocol.Player {
	out := make([]protocol.Player, 0, len(r.order))
	for _, name := range r.order {
		p := r.players[name]
		out = append(out, protocol.Player{
			Name:   p.name,
			Online: p.online,
			Role:   p.role,
			Idea:   p.idea,
			IsHost: p.isHost,
		})
	}
	return out
}

func (r *Room) selectedRoles() []string {
	var roles []string
	for _, name := range r.order {
		if role := r.players[name].role; role != "" {
			roles = append(roles, role)
		}
	}
	return roles
}

func (r *Room) broadcast(env protocol.Envelope) {
	r.broadcastExcept("", env)
}

func (r *Room) broadcastExcept(skip string, env protocol.Envelope) {
	for name, cc := range r.clients {
		if name == skip {
			continue
		}
		select {
		case cc.out <- env:
		default:
			// Slow consumer; drop the connection, keep the player.
			close(cc.out)
			delete(r.clients, name)
			if p := r.players[name]; p != nil {
				p.online = false
			}
		}
	}
}

func nowStamp() string { return time.Now().Format(time.RFC3339) }
