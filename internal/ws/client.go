package ws

import (
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	sendBufferSize = 256
	pingInterval   = 30 * time.Second
)

// Client is one player's live connection. A player can reconnect; the
// hub then swaps the old client out for the new one.
type Client struct {
	PlayerID string
	Name     string

	conn       Conn
	send       chan []byte
	limiter    *rate.Limiter
	dispatcher *Dispatcher
}

func NewClient(playerID, name string, conn Conn, dispatcher *Dispatcher) *Client {
	return &Client{
		PlayerID:   playerID,
		Name:       name,
		conn:       conn,
		send:       make(chan []byte, sendBufferSize),
		limiter:    rate.NewLimiter(20, 60),
		dispatcher: dispatcher,
	}
}

// Send queues data for delivery. Fire-and-forget: a client that cannot
// keep up loses events and must request a fresh snapshot.
func (c *Client) Send(data []byte) {
	select {
	case c.send <- data:
	default:
		log.Debug().Str("player", c.PlayerID).Msg("send buffer full, dropping event")
	}
}

// ReadPump reads commands until the connection dies, then detaches the
// client everywhere.
func (c *Client) ReadPump() {
	defer func() {
		c.dispatcher.HandleDisconnect(c)
		c.conn.Close("")
	}()

	for {
		data, err := c.conn.Read()
		if err != nil {
			log.Debug().Str("player", c.PlayerID).Err(err).Msg("websocket read ended")
			return
		}
		if !c.limiter.Allow() {
			continue
		}
		c.dispatcher.Dispatch(c, data)
	}
}

// WritePump drains the send queue and keeps the connection alive with
// pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.Write(data); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.Ping(); err != nil {
				return
			}
		}
	}
}
