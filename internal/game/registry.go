package game

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Registry owns every live session, keyed by room code. The registry
// lock only guards the map; each session carries its own lock, and
// commands for different rooms never contend.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	codes    *CodeGenerator

	maxPlayers int
	maxAge     time.Duration
}

func NewRegistry(maxPlayers int, maxAge time.Duration) *Registry {
	return &Registry{
		sessions:   make(map[string]*Session),
		codes:      NewCodeGenerator(),
		maxPlayers: maxPlayers,
		maxAge:     maxAge,
	}
}

func (r *Registry) Create(now time.Time) *Session {
	code := r.codes.Generate()
	session := NewSession(code, r.maxPlayers, now)

	r.mu.Lock()
	r.sessions[code] = session
	r.mu.Unlock()

	log.Info().Str("room", code).Msg("room created")
	return session
}

func (r *Registry) Get(code string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[code]
	return s, ok
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Delete removes a session. The session is closed under its own lock
// before the code is released, so a room is never destroyed in the
// middle of a command and no late joiner can be seated in it.
func (r *Registry) Delete(code string) {
	r.mu.Lock()
	session, ok := r.sessions[code]
	if ok {
		delete(r.sessions, code)
	}
	r.mu.Unlock()
	if !ok {
		return
	}

	session.Lock()
	session.close()
	session.Unlock()
	r.codes.Dispose(code)
	log.Info().Str("room", code).Msg("room deleted")
}

// Reap deletes every session that is empty or older than the configured
// bound. Returns how many rooms were collected. The staleness check and
// the close happen under one session lock: a join racing the reaper
// either lands before the check (the room is no longer empty and
// survives) or fails against the closed session.
func (r *Registry) Reap(now time.Time) int {
	r.mu.RLock()
	candidates := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		candidates = append(candidates, s)
	}
	r.mu.RUnlock()

	reaped := 0
	for _, s := range candidates {
		s.Lock()
		stale := s.PlayerCount() == 0 || now.Sub(s.CreatedAt) > r.maxAge
		if stale {
			s.close()
		}
		s.Unlock()
		if stale {
			r.Delete(s.Code)
			reaped++
		}
	}

	if reaped > 0 {
		log.Info().Int("reaped", reaped).Int("remaining", r.Count()).Msg("room cleanup pass")
	}
	return reaped
}

// StartReaper runs periodic cleanup until the context is cancelled.
func (r *Registry) StartReaper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case now := <-ticker.C:
				r.Reap(now)
			case <-ctx.Done():
				return
			}
		}
	}()
}
