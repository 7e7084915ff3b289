package protocol

// Player is one room member as the server reports it.
type Player struct {
	Name   string `json:"name"`
	Online bool   `json:"is_online"`
	Role   string `json:"role,omitempty"`
	Idea   string `json:"startup_idea,omitempty"`
	IsHost bool   `json:"isHost"`
}

// RoundEvent is one round's scenario. Replaced wholesale each round.
type RoundEvent struct {
	Title           string            `json:"event_title"`
	Description     string            `json:"event_description"`
	DecisionOptions map[string]string `json:"decision_options"`
}

// PlayerAction is one submitted decision, append-only within a round.
type PlayerAction struct {
	PlayerName string `json:"playerName"`
	ActionType string `json:"actionType,omitempty"`
	Action     string `json:"action"`
	Round      int    `json:"round"`
	Timestamp  string `json:"timestamp,omitempty"`
}

// RoleDefinition describes a selectable founder role.
type RoleDefinition struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Abilities   []string `json:"abilities,omitempty"`
	Icon        string   `json:"icon,omitempty"`
}

// GameResult is the terminal report, created once at game completion.
type GameResult struct {
	FinalScore   int            `json:"final_score"`
	SuccessLevel string         `json:"success_level"`
	Metrics      ResultMetrics  `json:"metrics"`
	Achievements []string       `json:"achievements,omitempty"`
	Timeline     []TimelineItem `json:"timeline,omitempty"`
	FinalReport  string         `json:"final_report"`
}

type ResultMetrics struct {
	UserGrowth  int `json:"user_growth"`
	Revenue     int `json:"revenue"`
	MarketShare int `json:"market_share"`
	TeamSize    int `json:"team_size"`
}

type TimelineItem struct {
	Round  int    `json:"round"`
	Event  string `json:"event"`
	Impact string `json:"impact"`
}

// ConnectionSuccess is the handshake ack payload: the authoritative server
// snapshot. Fields beyond the first five are phase-dependent and optional.
type ConnectionSuccess struct {
	RoomID          string                    `json:"room_id"`
	PlayerName      string                    `json:"player_name"`
	IsReconnect     bool                      `json:"is_reconnect"`
	GameState       string                    `json:"game_state"`
	CurrentRound    int                       `json:"current_round"`
	Players         []Player                  `json:"players"`
	SelectedRoles   []string                  `json:"selected_roles,omitempty"`
	PlayerActions   []PlayerAction            `json:"player_actions,omitempty"`
	GameResult      *GameResult               `json:"game_result,omitempty"`
	Background      string                    `json:"background,omitempty"`
	DynamicRoles    map[string]RoleDefinition `json:"dynamic_roles,omitempty"`
	RoundEvent      *RoundEvent               `json:"roundEvent,omitempty"`
	PrivateMessages map[string]string         `json:"privateMessages,omitempty"`
}

// PlayersUpdate is the payload of player_join, player_leave, ideas_complete
// and role_selected, all of which carry a fresh player list.
type PlayersUpdate struct {
	PlayerName    string   `json:"player_name,omitempty"`
	Players       []Player `json:"players"`
	SelectedRoles []string `json:"selectedRoles,omitempty"`
}

// GameStart is the payload of game_start and transition_animation.
type GameStart struct {
	Background string                    `json:"background,omitempty"`
	Roles      map[string]RoleDefinition `json:"roles,omitempty"`
}

// RoundPayload is the payload of game_started, round_loading, round_start and
// round_complete.
type RoundPayload struct {
	Round           int               `json:"round,omitempty"`
	Message         string            `json:"message,omitempty"`
	RoundEvent      *RoundEvent       `json:"roundEvent,omitempty"`
	PrivateMessages map[string]string `json:"privateMessages,omitempty"`
}

// ActionsUpdate is the payload of action_submitted.
type ActionsUpdate struct {
	PlayerActions     []PlayerAction `json:"playerActions"`
	WaitingForPlayers bool           `json:"waitingForPlayers"`
}

// GameComplete is the payload of game_complete.
type GameComplete struct {
	Result *GameResult `json:"result"`
}

// RoomStatus is the response of GET /rooms/{id}/status.
type RoomStatus struct {
	RoomID      string `json:"room_id,omitempty"`
	PlayerCount int    `json:"player_count"`
	GameState   string `json:"game_state,omitempty"`
}

// CreateRoomRequest is the body of POST /rooms/create. RoomID may be empty,
// in which case the server generates one.
type CreateRoomRequest struct {
	RoomID     string `json:"room_id,omitempty"`
	PlayerName string `json:"player_name"`
}

// CreateRoomResponse is the response of POST /rooms/create.
type CreateRoomResponse struct {
	RoomID  string `json:"room_id"`
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// IdeaSubmit is the payload of startup_idea.
type IdeaSubmit struct {
	Idea string `json:"idea"`
}

// RoleSelect is the payload of select_role.
type RoleSelect struct {
	Role string `json:"role"`
}
