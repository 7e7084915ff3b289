package devserver

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/virtualwest/unicorn-rush/pkg/protocol"
)

// Routes builds the HTTP surface: room directory plus the websocket upgrade.
func Routes(reg *Registry, log *zap.Logger) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	r := chi.NewRouter()
	r.Post("/rooms/create", createRoomHandler(reg))
	r.Get("/rooms/{id}/status", roomStatusHandler(reg))
	r.Get("/ws", wsHandler(reg, log))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return r
}

func createRoomHandler(reg *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req protocol.CreateRoomRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, protocol.CreateRoomResponse{
				Success: false, Message: "invalid request body",
			})
			return
		}
		if req.PlayerName == "" {
			writeJSON(w, http.StatusBadRequest, protocol.CreateRoomResponse{
				Success: false, Message: "player name is required",
			})
			return
		}

		reply := make(chan *Room, 1)
		reg.Inbox() <- CreateRoom{ID: req.RoomID, Reply: reply}
		room := <-reply
		if room == nil {
			writeJSON(w, http.StatusInternalServerError, protocol.CreateRoomResponse{
				Success: false, Message: "failed to create room",
			})
			return
		}
		writeJSON(w, http.StatusCreated, protocol.CreateRoomResponse{
			RoomID: room.id, Success: true,
		})
	}
}

func roomStatusHandler(reg *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		reply := make(chan *Room, 1)
		reg.Inbox() <- GetRoom{ID: id, Reply: reply}
		room := <-reply
		if room == nil {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}

		viewReply := make(chan RoomView, 1)
		room.Inbox() <- getRoomView{Reply: viewReply}
		view := <-viewReply
		writeJSON(w, http.StatusOK, protocol.RoomStatus{
			RoomID:      id,
			PlayerCount: view.PlayerCount,
			GameState:   view.GameState,
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
