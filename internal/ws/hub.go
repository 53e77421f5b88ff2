package ws

import (
	"sync"

	"go.uber.org/zap"
)

// Hub maps connection IDs to live sockets. Who belongs to which room is the
// session registry's business; the hub only delivers.
type Hub struct {
	mu    sync.RWMutex
	conns map[string]*clientConn
}

func NewHub() *Hub { return &Hub{conns: make(map[string]*clientConn)} }

func (h *Hub) Add(id string, c *clientConn) {
	h.mu.Lock()
	h.conns[id] = c
	h.mu.Unlock()
}

// Remove drops the connection from the hub and closes its socket. Safe to
// call for an ID that was already removed.
func (h *Hub) Remove(id string) {
	h.mu.Lock()
	c, ok := h.conns[id]
	delete(h.conns, id)
	h.mu.Unlock()
	if ok {
		_ = c.close()
	}
}

// Broadcast fans an envelope out to the given recipients. The connection
// snapshot is taken under the read lock; the I/O happens outside it, and
// failed peers are dropped so one dead socket never poisons the rest.
func (h *Hub) Broadcast(ids []string, env Envelope) {
	type target struct {
		id string
		c  *clientConn
	}

	h.mu.RLock()
	targets := make([]target, 0, len(ids))
	for _, id := range ids {
		if c, ok := h.conns[id]; ok {
			targets = append(targets, target{id: id, c: c})
		}
	}
	h.mu.RUnlock()

	var failed []string
	for _, t := range targets {
		if err := t.c.writeJSON(env); err != nil {
			zap.L().Debug("ws.broadcast_write_failed", zap.String("conn_id", t.id), zap.Error(err))
			failed = append(failed, t.id)
		}
	}
	for _, id := range failed {
		h.Remove(id)
	}
}
