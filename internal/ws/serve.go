package ws

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/manuel-vermillac/cest-trop-dur/internal/crypto"
)

// ServeWS upgrades the request and runs the client's pumps. The identity
// middleware must have run first; the allow-list below repeats the
// router's origin policy because the upgrader performs its own check.
func ServeWS(dispatcher *Dispatcher, allowedOrigins []string) gin.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			return originAllowed(allowedOrigins, r.Header.Get("Origin"))
		},
	}

	return func(c *gin.Context) {
		value, ok := c.Get("identity")
		if !ok {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		ident := value.(crypto.Identity)

		socket, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Warn().Err(err).Msg("websocket upgrade failed")
			return
		}

		client := NewClient(ident.PlayerID, ident.Name, NewConn(socket), dispatcher)
		go client.WritePump()
		go client.ReadPump()
	}
}

// originAllowed applies the origin allow-list. An empty list allows
// everything, the same fallback the router's CORS policy uses, so the
// default deployment accepts browser upgrades.
func originAllowed(allowed []string, origin string) bool {
	if origin == "" || len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if a == "*" || a == origin {
			return true
		}
	}
	return false
}
