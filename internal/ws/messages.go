package ws

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/manuel-vermillac/cest-trop-dur/internal/game"
)

// Inbound command types.
const (
	cmdJoinLobby       = "join_lobby"
	cmdJoinGame        = "join_game"
	cmdDraw            = "draw"
	cmdClearCanvas     = "clear_canvas"
	cmdGuess           = "guess"
	cmdChooseWord      = "choose_word"
	cmdRequestNextTurn = "request_next_turn"
	cmdTimerExpired    = "timer_expired"
	cmdJoinVoice       = "join_voice"
	cmdOffer           = "offer"
	cmdAnswer          = "answer"
	cmdIceCandidate    = "ice_candidate"
	cmdLeaveVoice      = "leave_voice"
)

// Outbound event types.
const (
	evtLobbyUpdated     = "lobby_updated"
	evtGameStateUpdated = "game_state_updated"
	evtDrawEvent        = "draw_event"
	evtClearCanvas      = "clear_canvas"
	evtChatMessage      = "chat_message"
	evtGameStarted      = "game_started"
	evtVoiceUserJoined  = "user_joined"
	evtVoiceUserLeft    = "user_left"
	evtError            = "error"
)

// envelope is the shape of every inbound command. Only the fields the
// command's type needs are populated.
type envelope struct {
	Type         string          `json:"type"`
	Room         string          `json:"room"`
	Text         string          `json:"text"`
	Index        *int            `json:"index"`
	DesignatedID string          `json:"designated_id"`
	DrawEvent    json.RawMessage `json:"draw_event"`

	// Voice signaling payloads, relayed verbatim.
	Offer     json.RawMessage `json:"offer"`
	Answer    json.RawMessage `json:"answer"`
	Candidate json.RawMessage `json:"candidate"`
}

type lobbyUpdatedEvent struct {
	Type       string            `json:"type"`
	Players    []game.PlayerInfo `json:"players"`
	HostID     string            `json:"host_id"`
	Started    bool              `json:"started"`
	MaxPlayers int               `json:"max_players"`
}

type gameStateEvent struct {
	Type string `json:"type"`
	game.ViewState
}

type drawRelayEvent struct {
	Type      string          `json:"type"`
	DrawEvent json.RawMessage `json:"draw_event"`
}

type clearCanvasEvent struct {
	Type string `json:"type"`
}

type chatMessageEvent struct {
	Type       string `json:"type"`
	PlayerName string `json:"player_name"`
	Text       string `json:"text"`
	Correct    bool   `json:"correct"`
}

type gameStartedEvent struct {
	Type     string `json:"type"`
	RoomCode string `json:"room_code"`
}

type voiceEvent struct {
	Type      string          `json:"type"`
	From      string          `json:"from,omitempty"`
	PlayerID  string          `json:"player_id,omitempty"`
	Offer     json.RawMessage `json:"offer,omitempty"`
	Answer    json.RawMessage `json:"answer,omitempty"`
	Candidate json.RawMessage `json:"candidate,omitempty"`
}

type errorEvent struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

func mustMarshal(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		// Only reachable with a broken event struct; worth a loud log.
		log.Error().Err(err).Msg("failed to marshal outbound event")
		return nil
	}
	return data
}
