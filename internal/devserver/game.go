package devserver

import (
	"encoding/json"

	"go.uber.org/zap"

	"github.com/virtualwest/unicorn-rush/pkg/protocol"
)

func envelope(msgType string, payload any) protocol.Envelope {
	data, _ := json.Marshal(payload)
	return protocol.Envelope{Type: msgType, Data: data}
}

// handleMessage drives the scripted game flow off one client message.
// Unknown types are logged and ignored, mirroring the production server.
func (r *Room) handleMessage(playerName string, env protocol.Envelope) {
	p := r.players[playerName]
	if p == nil {
		return
	}

	switch env.Type {
	case protocol.MsgStartupIdea:
		var idea protocol.IdeaSubmit
		_ = json.Unmarshal(env.Data, &idea)
		p.idea = idea.Idea
		if r.state == protocol.GameStateLobby && r.allHaveIdeas() {
			r.state = protocol.GameStateRoleSelection
			r.broadcast(envelope(protocol.MsgIdeasComplete, protocol.PlayersUpdate{
				Players: r.playerList(),
			}))
			r.broadcast(envelope(protocol.MsgGameStart, protocol.GameStart{
				Background: gameBackground,
				Roles:      roleDefinitions,
			}))
		}

	case protocol.MsgStartGame:
		if !p.isHost || r.state != protocol.GameStateLobby {
			return
		}
		r.state = protocol.GameStateRoleSelection
		r.broadcast(envelope(protocol.MsgGameLoading, struct{}{}))
		r.broadcast(envelope(protocol.MsgGameStart, protocol.GameStart{
			Background: gameBackground,
			Roles:      roleDefinitions,
		}))

	case protocol.MsgSelectRole:
		if r.state != protocol.GameStateRoleSelection {
			return
		}
		var sel protocol.RoleSelect
		_ = json.Unmarshal(env.Data, &sel)
		if sel.Role == "" || r.roleTaken(sel.Role) {
			return
		}
		p.role = sel.Role
		r.broadcast(envelope(protocol.MsgRoleSelected, protocol.PlayersUpdate{
			PlayerName:    playerName,
			Players:       r.playerList(),
			SelectedRoles: r.selectedRoles(),
		}))
		if r.allHaveRoles() {
			r.broadcast(envelope(protocol.MsgRolesComplete, struct{}{}))
			r.state = protocol.GameStatePlaying
			r.round = 1
			r.broadcast(envelope(protocol.MsgGameStarted, protocol.RoundPayload{
				Round:           1,
				RoundEvent:      roundEvent(1),
				PrivateMessages: privateMessages(1),
			}))
		}

	case protocol.MsgGameAction:
		if r.state != protocol.GameStatePlaying {
			return
		}
		var action protocol.PlayerAction
		_ = json.Unmarshal(env.Data, &action)
		action.PlayerName = playerName
		action.Round = r.round
		if action.Timestamp == "" {
			action.Timestamp = nowStamp()
		}
		r.actions[r.round] = append(r.actions[r.round], action)

		waiting := len(r.actions[r.round]) < len(r.players)
		r.broadcast(envelope(protocol.MsgActionSubmitted, protocol.ActionsUpdate{
			PlayerActions:     r.actions[r.round],
			WaitingForPlayers: waiting,
		}))
		if !waiting {
			r.finishRound()
		}

	case protocol.MsgRestartGame:
		r.restart()

	default:
		r.log.Info("ignoring unknown client message",
			zap.String("player", playerName), zap.String("type", env.Type))
	}
}

func (r *Room) finishRound() {
	r.broadcast(envelope(protocol.MsgRoundComplete, protocol.RoundPayload{Round: r.round}))

	if r.round >= len(eventDeck) {
		r.state = protocol.GameStateFinished
		r.result = r.buildResult()
		r.broadcast(envelope(protocol.MsgGameComplete, protocol.GameComplete{Result: r.result}))
		return
	}

	r.round++
	r.state = protocol.GameStateLoading
	r.broadcast(envelope(protocol.MsgRoundLoading, protocol.RoundPayload{
		Round:   r.round,
		Message: "preparing the next round",
	}))
	r.state = protocol.GameStatePlaying
	r.broadcast(envelope(protocol.MsgRoundStart, protocol.RoundPayload{
		Round:           r.round,
		RoundEvent:      roundEvent(r.round),
		PrivateMessages: privateMessages(r.round),
	}))
}

func (r *Room) restart() {
	r.state = protocol.GameStateLobby
	r.round = 1
	r.actions = make(map[int][]protocol.PlayerAction)
	r.result = nil
	for _, p := range r.players {
		p.role = ""
		p.idea = ""
	}
	r.broadcast(envelope(protocol.MsgGameRestart, protocol.PlayersUpdate{
		Players: r.playerList(),
	}))
}

func (r *Room) allHaveIdeas() bool {
	for _, p := range r.players {
		if p.idea == "" {
			return false
		}
	}
	return len(r.players) > 0
}

func (r *Room) allHaveRoles() bool {
	for _, p := range r.players {
		if p.role == "" {
			return false
		}
	}
	return len(r.players) > 0
}

func (r *Room) roleTaken(role string) bool {
	for _, p := range r.players {
		if p.role == role {
			return true
		}
	}
	return false
}

func (r *Room) buildResult() *protocol.GameResult {
	total := 0
	var timeline []protocol.TimelineItem
	for round := 1; round <= len(eventDeck); round++ {
		acts := r.actions[round]
		total += len(acts) * 20
		timeline = append(timeline, protocol.TimelineItem{
			Round:  round,
			Event:  eventDeck[round-1].Title,
			Impact: "the team pulled through",
		})
	}

	level := "out of business"
	switch {
	case total >= 200:
		level = "unicorn"
	case total >= 120:
		level = "series A"
	case total >= 60:
		level = "ramen profitable"
	}

	return &protocol.GameResult{
		FinalScore:   total,
		SuccessLevel: level,
		Metrics: protocol.ResultMetrics{
			UserGrowth:  total * 100,
			Revenue:     total * 50,
			MarketShare: total / 10,
			TeamSize:    len(r.players),
		},
		Timeline:    timeline,
		FinalReport: "The startup survived every funding round the market threw at it.",
	}
}
