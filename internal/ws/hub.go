package ws

import "sync"

// Hub tracks which clients listen on which room channels. Three scopes
// per room code, mirroring the client subscription model: the lobby
// channel (pre-game roster updates), the game channel (personalized
// state plus shared draw/chat relay) and the voice channel (signaling
// relay only).
type Hub struct {
	mu    sync.RWMutex
	lobby map[string]map[string]*Client
	game  map[string]map[string]*Client
	voice map[string]map[string]*Client
}

func NewHub() *Hub {
	return &Hub{
		lobby: make(map[string]map[string]*Client),
		game:  make(map[string]map[string]*Client),
		voice: make(map[string]map[string]*Client),
	}
}

// JoinLobby subscribes a client to a room's lobby channel. Like the
// game channel, one connection per player: a reconnect replaces the
// old client, and the replaced client is returned so the caller can
// close it.
func (h *Hub) JoinLobby(room string, c *Client) *Client {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.lobby[room] == nil {
		h.lobby[room] = make(map[string]*Client)
	}
	replaced := h.lobby[room][c.PlayerID]
	if replaced == c {
		replaced = nil
	}
	h.lobby[room][c.PlayerID] = c
	return replaced
}

// JoinGame subscribes a client to a room's game channel. A second
// connection for the same player replaces the first; the replaced client
// is returned so the caller can close it.
func (h *Hub) JoinGame(room string, c *Client) *Client {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.game[room] == nil {
		h.game[room] = make(map[string]*Client)
	}
	replaced := h.game[room][c.PlayerID]
	if replaced == c {
		replaced = nil
	}
	h.game[room][c.PlayerID] = c
	return replaced
}

func (h *Hub) JoinVoice(room string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.voice[room] == nil {
		h.voice[room] = make(map[string]*Client)
	}
	h.voice[room][c.PlayerID] = c
}

func (h *Hub) LeaveVoice(room string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if members, ok := h.voice[room]; ok && members[c.PlayerID] == c {
		delete(members, c.PlayerID)
		if len(members) == 0 {
			delete(h.voice, room)
		}
	}
}

// Drop detaches a client from every channel it was on. Returns the room
// codes whose lobby the client still held, so roster bookkeeping can
// follow. A stale connection that was already replaced holds nothing:
// dropping it reports no rooms and leaves the replacement in place.
func (h *Hub) Drop(c *Client) []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	var lobbyRooms []string
	for room, members := range h.lobby {
		if members[c.PlayerID] == c {
			delete(members, c.PlayerID)
			lobbyRooms = append(lobbyRooms, room)
			if len(members) == 0 {
				delete(h.lobby, room)
			}
		}
	}
	for room, members := range h.game {
		if members[c.PlayerID] == c {
			delete(members, c.PlayerID)
			if len(members) == 0 {
				delete(h.game, room)
			}
		}
	}
	for room, members := range h.voice {
		if members[c.PlayerID] == c {
			delete(members, c.PlayerID)
			if len(members) == 0 {
				delete(h.voice, room)
			}
		}
	}
	return lobbyRooms
}

func (h *Hub) BroadcastLobby(room string, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.lobby[room] {
		c.Send(data)
	}
}

// BroadcastGame fans data out to every game subscriber of a room, except
// the named player (pass "" to include everyone).
func (h *Hub) BroadcastGame(room string, data []byte, exceptPlayerID string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for id, c := range h.game[room] {
		if id == exceptPlayerID {
			continue
		}
		c.Send(data)
	}
}

func (h *Hub) BroadcastVoice(room string, data []byte, exceptPlayerID string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for id, c := range h.voice[room] {
		if id == exceptPlayerID {
			continue
		}
		c.Send(data)
	}
}

// GameClients snapshots the game-channel members of a room.
func (h *Hub) GameClients(room string) []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	clients := make([]*Client, 0, len(h.game[room]))
	for _, c := range h.game[room] {
		clients = append(clients, c)
	}
	return clients
}
