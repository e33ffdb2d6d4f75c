package ws

import (
	"encoding/json"
	"runtime/debug"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/manuel-vermillac/cest-trop-dur/internal/game"
)

// Dispatcher validates inbound commands against the addressed session
// and applies them under that session's lock. Invalid or out-of-turn
// commands are silent no-ops. Before a command's own effect, the live
// deadline is evaluated so the server never depends on a client
// reporting that time is up.
type Dispatcher struct {
	registry *game.Registry
	catalog  *game.Catalog
	hub      *Hub
	now      func() time.Time
}

func NewDispatcher(registry *game.Registry, catalog *game.Catalog, hub *Hub) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		catalog:  catalog,
		hub:      hub,
		now:      time.Now,
	}
}

// Dispatch routes one raw command. A panic in any handler is contained
// here: logged with its stack and answered with a generic error, never
// allowed to kill the process or poison other rooms.
func (d *Dispatcher) Dispatch(c *Client, raw []byte) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("recovered panic while handling command")
			c.Send(mustMarshal(errorEvent{Type: evtError, Error: "internal error"}))
		}
	}()

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		log.Debug().Str("player", c.PlayerID).Err(err).Msg("dropping malformed command")
		return
	}
	if env.Room == "" {
		return
	}

	switch env.Type {
	case cmdJoinLobby:
		d.handleJoinLobby(c, env)
	case cmdJoinGame:
		d.handleJoinGame(c, env)
	case cmdDraw:
		d.handleDraw(c, env)
	case cmdClearCanvas:
		d.handleClearCanvas(c, env)
	case cmdGuess:
		d.handleGuess(c, env)
	case cmdChooseWord:
		d.handleChooseWord(c, env)
	case cmdRequestNextTurn:
		d.handleNextTurn(c, env)
	case cmdTimerExpired:
		d.handleTimerExpired(c, env)
	case cmdJoinVoice:
		d.handleJoinVoice(c, env)
	case cmdOffer, cmdAnswer, cmdIceCandidate:
		d.handleVoiceSignal(c, env)
	case cmdLeaveVoice:
		d.handleLeaveVoice(c, env)
	default:
		log.Debug().Str("type", env.Type).Msg("unknown command type")
	}
}

func (d *Dispatcher) handleJoinLobby(c *Client, env envelope) {
	if _, ok := d.registry.Get(env.Room); !ok {
		return
	}
	if replaced := d.hub.JoinLobby(env.Room, c); replaced != nil {
		log.Info().Str("player", c.PlayerID).Str("room", env.Room).Msg("replacing previous lobby connection")
		replaced.conn.Close("replaced")
	}
	d.PushLobbyState(env.Room)
}

// handleJoinGame subscribes the player to personalized state and the
// shared draw channel, then pushes a fresh snapshot. Rejoining after a
// missed stretch works the same way: snapshot, not replay.
func (d *Dispatcher) handleJoinGame(c *Client, env envelope) {
	s, ok := d.registry.Get(env.Room)
	if !ok {
		return
	}

	if replaced := d.hub.JoinGame(env.Room, c); replaced != nil {
		log.Info().Str("player", c.PlayerID).Str("room", env.Room).Msg("replacing previous connection")
		replaced.conn.Close("replaced")
	}

	s.Lock()
	if s.Game == nil {
		s.Unlock()
		return
	}
	timeout := s.Game.CheckDeadline(d.now())
	view := s.Game.View(c.PlayerID, d.now())
	s.Unlock()

	d.afterDeadline(env.Room, timeout)
	if timeout != game.TimeoutNone {
		d.PushGameState(env.Room)
		return
	}
	c.Send(mustMarshal(gameStateEvent{Type: evtGameStateUpdated, ViewState: view}))
}

func (d *Dispatcher) handleDraw(c *Client, env envelope) {
	s, ok := d.registry.Get(env.Room)
	if !ok {
		return
	}

	s.Lock()
	if s.Game == nil {
		s.Unlock()
		return
	}
	timeout := s.Game.CheckDeadline(d.now())
	accepted := s.Game.AppendStroke(c.PlayerID, env.DrawEvent)
	s.Unlock()

	d.afterDeadline(env.Room, timeout)
	if timeout != game.TimeoutNone {
		d.PushGameState(env.Room)
	}
	if accepted {
		relay := mustMarshal(drawRelayEvent{Type: evtDrawEvent, DrawEvent: env.DrawEvent})
		d.hub.BroadcastGame(env.Room, relay, c.PlayerID)
	}
}

func (d *Dispatcher) handleClearCanvas(c *Client, env envelope) {
	s, ok := d.registry.Get(env.Room)
	if !ok {
		return
	}

	s.Lock()
	if s.Game == nil {
		s.Unlock()
		return
	}
	timeout := s.Game.CheckDeadline(d.now())
	cleared := s.Game.ClearCanvas(c.PlayerID)
	s.Unlock()

	d.afterDeadline(env.Room, timeout)
	if timeout != game.TimeoutNone {
		d.PushGameState(env.Room)
	}
	if cleared {
		d.hub.BroadcastGame(env.Room, mustMarshal(clearCanvasEvent{Type: evtClearCanvas}), c.PlayerID)
	}
}

// handleGuess runs the guess through the eligibility rules and echoes
// every attempt, right or wrong, to the room's chat.
func (d *Dispatcher) handleGuess(c *Client, env envelope) {
	text := strings.TrimSpace(env.Text)
	if text == "" {
		return
	}
	s, ok := d.registry.Get(env.Room)
	if !ok {
		return
	}

	s.Lock()
	if s.Game == nil {
		s.Unlock()
		return
	}
	timeout := s.Game.CheckDeadline(d.now())
	correct := s.Game.CheckGuess(c.PlayerID, text)
	playerName := s.PlayerName(c.PlayerID)
	s.Unlock()

	if playerName == "" {
		playerName = c.Name
	}

	d.afterDeadline(env.Room, timeout)
	d.hub.BroadcastGame(env.Room, mustMarshal(chatMessageEvent{
		Type:       evtChatMessage,
		PlayerName: playerName,
		Text:       text,
		Correct:    correct,
	}), "")
	if correct || timeout != game.TimeoutNone {
		d.PushGameState(env.Room)
	}
}

func (d *Dispatcher) handleChooseWord(c *Client, env envelope) {
	if env.Index == nil {
		return
	}
	s, ok := d.registry.Get(env.Room)
	if !ok {
		return
	}

	s.Lock()
	if s.Game == nil {
		s.Unlock()
		return
	}
	timeout := s.Game.CheckDeadline(d.now())
	chosen := s.Game.ChooseWord(c.PlayerID, *env.Index, env.DesignatedID, d.now())
	s.Unlock()

	d.afterDeadline(env.Room, timeout)
	if chosen || timeout != game.TimeoutNone {
		d.PushGameState(env.Room)
	}
}

// handleNextTurn advances the turn on the host's request. Guarded on the
// host identity and, inside the game, on the round_end phase, so a host
// spamming the button during choosing changes nothing.
func (d *Dispatcher) handleNextTurn(c *Client, env envelope) {
	s, ok := d.registry.Get(env.Room)
	if !ok {
		return
	}

	s.Lock()
	if s.Game == nil || c.PlayerID != s.HostID {
		s.Unlock()
		return
	}
	timeout := s.Game.CheckDeadline(d.now())
	advanced := s.Game.NextTurn()
	if advanced && s.Game.Phase() == game.PhaseChoosing {
		s.Game.PickCard(d.catalog)
	}
	s.Unlock()

	d.afterDeadline(env.Room, timeout)
	if advanced || timeout != game.TimeoutNone {
		d.PushGameState(env.Room)
	}
}

// handleTimerExpired treats the client report as a hint only; the
// deadline check decides whether anything actually expired.
func (d *Dispatcher) handleTimerExpired(c *Client, env envelope) {
	s, ok := d.registry.Get(env.Room)
	if !ok {
		return
	}

	s.Lock()
	if s.Game == nil {
		s.Unlock()
		return
	}
	timeout := s.Game.CheckDeadline(d.now())
	s.Unlock()

	d.afterDeadline(env.Room, timeout)
	if timeout != game.TimeoutNone {
		d.PushGameState(env.Room)
	}
}

// afterDeadline emits the side effects of a timeout transition. When the
// drawer switches, every client wipes its canvas for the new drawer.
func (d *Dispatcher) afterDeadline(room string, timeout game.TimeoutResult) {
	if timeout == game.TimeoutDrawerSwitched {
		d.hub.BroadcastGame(room, mustMarshal(clearCanvasEvent{Type: evtClearCanvas}), "")
	}
}

// HandleDisconnect detaches the client from all channels. A player who
// drops out of a lobby before the game started leaves the roster too,
// with host succession; after start the roster is frozen and the seat
// stays (rejoin gets a fresh snapshot).
func (d *Dispatcher) HandleDisconnect(c *Client) {
	lobbyRooms := d.hub.Drop(c)
	for _, room := range lobbyRooms {
		s, ok := d.registry.Get(room)
		if !ok {
			continue
		}
		s.Lock()
		removed := false
		if !s.Started {
			removed = s.RemovePlayer(c.PlayerID)
		}
		s.Unlock()
		if removed {
			log.Info().Str("player", c.PlayerID).Str("room", room).Msg("player left lobby")
			d.PushLobbyState(room)
		}
	}
}

// --- voice signaling: pure relay, never inspected ---

func (d *Dispatcher) handleJoinVoice(c *Client, env envelope) {
	d.hub.JoinVoice(env.Room, c)
	d.hub.BroadcastVoice(env.Room, mustMarshal(voiceEvent{Type: evtVoiceUserJoined, PlayerID: c.PlayerID}), c.PlayerID)
}

func (d *Dispatcher) handleVoiceSignal(c *Client, env envelope) {
	d.hub.BroadcastVoice(env.Room, mustMarshal(voiceEvent{
		Type:      env.Type,
		From:      c.PlayerID,
		Offer:     env.Offer,
		Answer:    env.Answer,
		Candidate: env.Candidate,
	}), c.PlayerID)
}

func (d *Dispatcher) handleLeaveVoice(c *Client, env envelope) {
	d.hub.LeaveVoice(env.Room, c)
	d.hub.BroadcastVoice(env.Room, mustMarshal(voiceEvent{Type: evtVoiceUserLeft, PlayerID: c.PlayerID}), "")
}

// --- pushes shared with the HTTP layer ---

// PushLobbyState broadcasts the roster snapshot to the room's lobby
// channel.
func (d *Dispatcher) PushLobbyState(room string) {
	s, ok := d.registry.Get(room)
	if !ok {
		return
	}

	s.Lock()
	event := lobbyUpdatedEvent{
		Type:       evtLobbyUpdated,
		Players:    s.Players(),
		HostID:     s.HostID,
		Started:    s.Started,
		MaxPlayers: s.MaxPlayers,
	}
	s.Unlock()

	d.hub.BroadcastLobby(room, mustMarshal(event))
}

// PushGameState sends each subscribed player their own projection of the
// room's game. One projection per viewer: what you see depends on who
// you are.
func (d *Dispatcher) PushGameState(room string) {
	s, ok := d.registry.Get(room)
	if !ok {
		return
	}
	clients := d.hub.GameClients(room)
	if len(clients) == 0 {
		return
	}

	now := d.now()
	type delivery struct {
		client *Client
		data   []byte
	}
	deliveries := make([]delivery, 0, len(clients))

	s.Lock()
	if s.Game == nil {
		s.Unlock()
		return
	}
	for _, c := range clients {
		view := s.Game.View(c.PlayerID, now)
		deliveries = append(deliveries, delivery{
			client: c,
			data:   mustMarshal(gameStateEvent{Type: evtGameStateUpdated, ViewState: view}),
		})
	}
	s.Unlock()

	for _, dv := range deliveries {
		dv.client.Send(dv.data)
	}
}

// AnnounceGameStarted tells the lobby channel to move everyone to the
// game screen.
func (d *Dispatcher) AnnounceGameStarted(room string) {
	d.hub.BroadcastLobby(room, mustMarshal(gameStartedEvent{Type: evtGameStarted, RoomCode: room}))
}
