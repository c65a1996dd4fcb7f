// Package wsv1 terminates the realtime sockets for displays and controllers
// and translates frames into usecase calls.
package wsv1

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	_writeTimeout = 10 * time.Second
	_readLimit    = 512 * 1024
)

// wsTransport adapts a gorilla connection to the connection manager's
// transport surface. gorilla allows one concurrent writer, so writes are
// serialized here.
type wsTransport struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func newTransport(conn *websocket.Conn) *wsTransport {
	conn.SetReadLimit(_readLimit)

	return &wsTransport{conn: conn}
}

func (t *wsTransport) WriteMessage(data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.conn.SetWriteDeadline(time.Now().Add(_writeTimeout)); err != nil {
		return err
	}

	return t.conn.WriteMessage(websocket.TextMessage, data)
}

func (t *wsTransport) Close(reason string) error {
	t.mu.Lock()

	deadline := time.Now().Add(_writeTimeout)
	frame := websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason)
	_ = t.conn.WriteControl(websocket.CloseMessage, frame, deadline)

	t.mu.Unlock()

	return t.conn.Close()
}
