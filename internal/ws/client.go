package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

type clientConn struct {
	rawConn *websocket.Conn
	mu      sync.Mutex
}

// writeJSON serializes writes so concurrent broadcasts never interleave
// frames. The deadline bounds how long one dead peer can stall a broadcast.
func (c *clientConn) writeJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_ = c.rawConn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.rawConn.WriteJSON(v)
}

func (c *clientConn) ping() error {
	return c.rawConn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

func (c *clientConn) close() error {
	return c.rawConn.Close()
}
