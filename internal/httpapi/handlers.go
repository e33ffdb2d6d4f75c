package httpapi

import (
	"html"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/manuel-vermillac/cest-trop-dur/internal/config"
	"github.com/manuel-vermillac/cest-trop-dur/internal/crypto"
	"github.com/manuel-vermillac/cest-trop-dur/internal/game"
)

const (
	identityCookie = "identity"
	maxNameLength  = 20
)

// Broadcaster is the push side of the realtime layer. The HTTP handlers
// only need to nudge rooms, not manage connections.
type Broadcaster interface {
	PushLobbyState(room string)
	AnnounceGameStarted(room string)
	PushGameState(room string)
}

type Handler struct {
	registry  *game.Registry
	catalog   *game.Catalog
	jwt       *crypto.JWTManager
	broadcast Broadcaster
	cfg       config.Config
	now       func() time.Time
}

func NewHandler(registry *game.Registry, catalog *game.Catalog, jwt *crypto.JWTManager, broadcast Broadcaster, cfg config.Config) *Handler {
	return &Handler{
		registry:  registry,
		catalog:   catalog,
		jwt:       jwt,
		broadcast: broadcast,
		cfg:       cfg,
		now:       time.Now,
	}
}

type joinRequest struct {
	Name string `json:"name"`
}

type roomResponse struct {
	RoomCode   string            `json:"room_code"`
	PlayerID   string            `json:"player_id"`
	PlayerName string            `json:"player_name"`
	HostID     string            `json:"host_id"`
	Players    []game.PlayerInfo `json:"players"`
	MaxPlayers int               `json:"max_players"`
}

// CreateRoom mints a room and seats the creator as host. The response
// sets the identity cookie every later call authenticates with.
func (h *Handler) CreateRoom(c *gin.Context) {
	var req joinRequest
	_ = c.ShouldBindJSON(&req)

	session := h.registry.Create(h.now())

	session.Lock()
	name := sanitizeName(req.Name, session.PlayerCount())
	ident := crypto.Identity{PlayerID: uuid.NewString(), Name: name}
	session.AddPlayer(ident.PlayerID, ident.Name)
	resp := roomResponse{
		RoomCode:   session.Code,
		PlayerID:   ident.PlayerID,
		PlayerName: ident.Name,
		HostID:     session.HostID,
		Players:    session.Players(),
		MaxPlayers: session.MaxPlayers,
	}
	session.Unlock()

	if !h.setIdentityCookie(c, ident) {
		return
	}
	log.Info().Str("room", resp.RoomCode).Str("player", ident.PlayerID).Msg("room created by player")
	c.JSON(http.StatusCreated, resp)
}

// JoinRoom seats a new player in an existing room. Full or already
// started rooms refuse with 409.
func (h *Handler) JoinRoom(c *gin.Context) {
	var req joinRequest
	_ = c.ShouldBindJSON(&req)

	code := strings.ToUpper(c.Param("code"))
	session, ok := h.registry.Get(code)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}

	session.Lock()
	name := sanitizeName(req.Name, session.PlayerCount())
	ident := crypto.Identity{PlayerID: uuid.NewString(), Name: name}
	added := session.AddPlayer(ident.PlayerID, ident.Name)
	resp := roomResponse{
		RoomCode:   session.Code,
		PlayerID:   ident.PlayerID,
		PlayerName: ident.Name,
		HostID:     session.HostID,
		Players:    session.Players(),
		MaxPlayers: session.MaxPlayers,
	}
	session.Unlock()

	if !added {
		c.JSON(http.StatusConflict, gin.H{"error": "room is full or already started"})
		return
	}
	if !h.setIdentityCookie(c, ident) {
		return
	}

	h.broadcast.PushLobbyState(code)
	log.Info().Str("room", code).Str("player", ident.PlayerID).Msg("player joined room")
	c.JSON(http.StatusOK, resp)
}

// StartRoom launches the game. Host only, and only once there are enough
// players; the first card is drawn immediately so the opening picker has
// choices waiting.
func (h *Handler) StartRoom(c *gin.Context) {
	ident := identityFrom(c)
	code := strings.ToUpper(c.Param("code"))
	session, ok := h.registry.Get(code)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}

	session.Lock()
	if session.HostID != ident.PlayerID {
		session.Unlock()
		c.JSON(http.StatusForbidden, gin.H{"error": "only the host can start the game"})
		return
	}
	started := session.StartGame(h.cfg.MinPlayers, h.cfg.DrawTime)
	if started {
		session.Game.PickCard(h.catalog)
	}
	session.Unlock()

	if !started {
		c.JSON(http.StatusConflict, gin.H{"error": "not enough players or already started"})
		return
	}

	h.broadcast.AnnounceGameStarted(code)
	h.broadcast.PushGameState(code)
	log.Info().Str("room", code).Msg("game started")
	c.Status(http.StatusNoContent)
}

// RoomInfo returns the public roster view of a room.
func (h *Handler) RoomInfo(c *gin.Context) {
	code := strings.ToUpper(c.Param("code"))
	session, ok := h.registry.Get(code)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}

	session.Lock()
	resp := gin.H{
		"room_code":   session.Code,
		"players":     session.Players(),
		"host_id":     session.HostID,
		"started":     session.Started,
		"max_players": session.MaxPlayers,
	}
	session.Unlock()

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"rooms":  h.registry.Count(),
	})
}

func (h *Handler) setIdentityCookie(c *gin.Context, ident crypto.Identity) bool {
	token, err := h.jwt.Generate(ident, h.now())
	if err != nil {
		log.Error().Err(err).Msg("failed to sign identity token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return false
	}
	c.SetCookie(identityCookie, token, int(h.cfg.CookieMaxAge.Seconds()), "/", "", !h.cfg.Debug, true)
	return true
}

// sanitizeName trims, escapes and bounds a display name. An unusable
// name falls back to a seat-numbered default rather than an error.
func sanitizeName(raw string, seated int) string {
	name := html.EscapeString(strings.TrimSpace(raw))
	if name == "" || utf8.RuneCountInString(name) > maxNameLength {
		return "Joueur " + strconv.Itoa(seated+1)
	}
	return name
}
