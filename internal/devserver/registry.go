// Package devserver is a stub game server speaking the production wire
// protocol: room registry, per-room actors, the handshake ack, every delta
// the client dispatches on. Round content is a canned deck; it exists to
// drive the client through every protocol path, locally and in tests.
package devserver

import (
	"context"

	"go.uber.org/zap"
)

type RegistryMsg interface{ isRegistryMsg() }

type CreateRoom struct {
	ID    string // empty means generate
	Reply chan *Room
}

type GetRoom struct {
	ID    string
	Reply chan *Room
}

type RemoveRoom struct{ ID string }

type ShutdownRegistry struct{}

func (CreateRoom) isRegistryMsg()       {}
func (GetRoom) isRegistryMsg()          {}
func (RemoveRoom) isRegistryMsg()       {}
func (ShutdownRegistry) isRegistryMsg() {}

// Registry owns the room table. Single goroutine, message-driven.
type Registry struct {
	inbox  chan RegistryMsg
	rooms  map[string]*Room
	ctx    context.Context
	cancel context.CancelFunc
	log    *zap.Logger
}

func NewRegistry(parent context.Context, log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(parent)
	r := &Registry{
		inbox:  make(chan RegistryMsg, 64),
		rooms:  make(map[string]*Room),
		ctx:    ctx,
		cancel: cancel,
		log:    log,
	}
	go r.loop()
	return r
}

func (r *Registry) Inbox() chan<- RegistryMsg { return r.inbox }

func (r *Registry) loop() {
	for {
		select {
		case <-r.ctx.Done():
			return

		case m := <-r.inbox:
			switch msg := m.(type) {
			case CreateRoom:
				id := msg.ID
				if id == "" {
					id = generateRoomID(func(candidate string) bool {
						_, taken := r.rooms[candidate]
						return taken
					})
				}
				if room := r.rooms[id]; room != nil {
					msg.Reply <- room
					break
				}
				room := NewRoom(r.ctx, id, r.log)
				r.rooms[id] = room
				r.log.Info("room created", zap.String("room", id))
				msg.Reply <- room

			case GetRoom:
				msg.Reply <- r.rooms[msg.ID] // may be nil

			case RemoveRoom:
				delete(r.rooms, msg.ID)

			case ShutdownRegistry:
				for _, room := range r.rooms {
					room.Inbox() <- shutdownRoom{}
				}
				clear(r.rooms)
				r.cancel()
			}
		}
	}
}
