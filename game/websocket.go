package game

import (
	"time"

	"github.com/gorilla/websocket"
)

// WebsocketSession adapts a gorilla connection to NetworkSession. Frames are
// text (JSON); pongs extend the read deadline.
type WebsocketSession struct {
	socket *websocket.Conn
}

func NewWebsocketSession(conn *websocket.Conn) WebsocketSession {
	conn.SetReadDeadline(time.Now().Add(time.Minute))
	conn.SetPongHandler(func(appData string) error {
		conn.SetReadDeadline(time.Now().Add(time.Minute))
		return nil
	})
	return WebsocketSession{socket: conn}
}

func (ws *WebsocketSession) Write(data []byte) error {
	return ws.socket.WriteMessage(websocket.TextMessage, data)
}

func (ws *WebsocketSession) Read() ([]byte, error) {
	_, p, err := ws.socket.ReadMessage()
	return p, err
}

func (ws *WebsocketSession) Ping() error {
	return ws.socket.WriteMessage(websocket.PingMessage, nil)
}

func (ws *WebsocketSession) Close(reason string) {
	ws.socket.SetWriteDeadline(time.Now().Add(time.Second * 20))
	ws.socket.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason))
	ws.socket.Close()
}
