package game

import (
	"sync"
	"time"
)

// PlayerInfo is one roster entry. Roster order is meaningful: it fixes
// the turn order when the game starts and the host succession line.
type PlayerInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Session is one room: roster plus, once started, the Game. All methods
// except Lock/Unlock assume the caller holds the session lock; every
// command touching a session is serialized through it (see Registry).
type Session struct {
	mu sync.Mutex

	Code       string
	MaxPlayers int
	CreatedAt  time.Time
	HostID     string
	Started    bool
	Game       *Game

	players []PlayerInfo
	closed  bool
}

func NewSession(code string, maxPlayers int, now time.Time) *Session {
	return &Session{
		Code:       code,
		MaxPlayers: maxPlayers,
		CreatedAt:  now,
	}
}

func (s *Session) Lock()   { s.mu.Lock() }
func (s *Session) Unlock() { s.mu.Unlock() }

// AddPlayer appends a player to the roster. The first player to join
// becomes host. Fails once the roster is full, the game has started,
// or the session has been closed by the registry.
func (s *Session) AddPlayer(id, name string) bool {
	if s.closed || len(s.players) >= s.MaxPlayers || s.Started {
		return false
	}
	s.players = append(s.players, PlayerInfo{ID: id, Name: name})
	if s.HostID == "" {
		s.HostID = id
	}
	return true
}

// RemovePlayer drops a player from the roster. If the host leaves, the
// next remaining player in roster order inherits the host role.
func (s *Session) RemovePlayer(id string) bool {
	for i, p := range s.players {
		if p.ID == id {
			s.players = append(s.players[:i], s.players[i+1:]...)
			if id == s.HostID {
				s.HostID = ""
				if len(s.players) > 0 {
					s.HostID = s.players[0].ID
				}
			}
			return true
		}
	}
	return false
}

// StartGame freezes the roster into a Game. Irreversible: a session can
// never un-start, and the Game lives until the session is reaped.
func (s *Session) StartGame(minPlayers int, drawTime time.Duration) bool {
	if s.Started || len(s.players) < minPlayers {
		return false
	}
	s.Game = NewGame(s.players, drawTime)
	s.Started = true
	return true
}

func (s *Session) HasPlayer(id string) bool {
	for _, p := range s.players {
		if p.ID == id {
			return true
		}
	}
	return false
}

func (s *Session) PlayerName(id string) string {
	for _, p := range s.players {
		if p.ID == id {
			return p.Name
		}
	}
	return ""
}

// Players returns a copy of the roster in join order.
func (s *Session) Players() []PlayerInfo {
	out := make([]PlayerInfo, len(s.players))
	copy(out, s.players)
	return out
}

func (s *Session) PlayerCount() int {
	return len(s.players)
}

// close marks the session as dead so no further player can be seated.
// Only the registry calls this, on its way to removing the session.
func (s *Session) close() {
	s.closed = true
}
