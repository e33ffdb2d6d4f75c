package ws

import (
	"time"

	"github.com/gorilla/websocket"
)

// Conn abstracts the websocket so pumps and tests don't touch gorilla
// directly.
type Conn interface {
	Write(data []byte) error
	Ping() error
	Read() ([]byte, error)
	Close(reason string)
}

type websocketConnection struct {
	socket *websocket.Conn
}

func NewConn(conn *websocket.Conn) Conn {
	conn.SetPongHandler(func(appData string) error {
		conn.SetReadDeadline(time.Now().Add(time.Minute))
		return nil
	})
	return &websocketConnection{socket: conn}
}

func (wc *websocketConnection) Write(data []byte) error {
	return wc.socket.WriteMessage(websocket.TextMessage, data)
}

func (wc *websocketConnection) Ping() error {
	return wc.socket.WriteMessage(websocket.PingMessage, nil)
}

func (wc *websocketConnection) Read() ([]byte, error) {
	_, p, err := wc.socket.ReadMessage()
	return p, err
}

func (wc *websocketConnection) Close(reason string) {
	wc.socket.SetWriteDeadline(time.Now().Add(time.Second * 20))
	wc.socket.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason))
	wc.socket.Close()
}
