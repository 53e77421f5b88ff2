package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"whiteboardgo/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10 // must be < pongWait

	maxMessageSize  = 8 * 1024 // draw payloads carry point lists
	dispatchTimeout = 2 * time.Second
)

// Wire text for a failed join. Unknown room and wrong key are deliberately
// indistinguishable.
const invalidJoinMessage = "Invalid room ID or join key"

const roomClosedMessage = "Room creator has left"

// deliverer is the outbound side of the transport. Handlers talk to it
// instead of sockets so the routing logic is testable without a listener.
type deliverer interface {
	Broadcast(ids []string, env Envelope)
	Remove(id string)
}

// ConnContext carries per-connection state into event handlers.
type ConnContext struct {
	ConnID string
}

type WsServer struct {
	hub      *Hub
	out      deliverer
	registry session.IRegistry
	router   *Router
	upgrader websocket.Upgrader
}

func NewWsServer(h *Hub, registry session.IRegistry, allowedOrigin string) *WsServer {
	srv := &WsServer{
		hub:      h,
		out:      h,
		registry: registry,
		router:   NewRouter(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigin),
		},
	}
	srv.registerHandlers() // ← all WS endpoints configured here
	return srv
}

func originChecker(allowed string) func(*http.Request) bool {
	if allowed == "*" {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		return r.Header.Get("Origin") == allowed
	}
}

// ---------------------------------------------------------------------------
//  Public: Gin entry‑point
// ---------------------------------------------------------------------------

func (s *WsServer) Handle(ginCtx *gin.Context) {
	rawConn, err := s.upgrader.Upgrade(ginCtx.Writer, ginCtx.Request, nil)
	if err != nil {
		zap.L().Warn("ws.upgrade", zap.Error(err))
		return
	}

	connID := uuid.NewString()
	conn := &clientConn{rawConn: rawConn}
	s.hub.Add(connID, conn)
	zap.L().Info("client connected", zap.String("conn_id", connID))

	go s.reader(connID, conn)
	go s.pinger(conn)
}

// ---------------------------------------------------------------------------
//  Private helpers
// ---------------------------------------------------------------------------

func (s *WsServer) registerHandlers() {
	Register(s.router, EventCreateRoom, s.handleCreateRoom)
	Register(s.router, EventJoinRoom, s.handleJoinRoom)
	Register(s.router, EventDraw, s.handleDraw)
	Register(s.router, EventClearBoard, s.handleClearBoard)
}

func (s *WsServer) handleCreateRoom(_ context.Context, cc *ConnContext, _ EmptyBody) (*Envelope, error) {
	roomID, joinKey, err := s.registry.CreateRoom(cc.ConnID)
	if err != nil {
		return nil, err
	}
	return newEnvelope(EventRoomCreated, RoomCreatedBody{RoomID: roomID, JoinKey: joinKey}), nil
}

func (s *WsServer) handleJoinRoom(_ context.Context, cc *ConnContext, req JoinRoomRequest) (*Envelope, error) {
	peers, err := s.registry.JoinRoom(cc.ConnID, req.RoomID, req.JoinKey)
	if err != nil {
		if errors.Is(err, session.ErrInvalidRoomOrKey) {
			return newEnvelope(EventError, ErrorBody{Message: invalidJoinMessage}), nil
		}
		return nil, err
	}

	s.out.Broadcast(peers, *newEnvelope(EventNewParticipant, NewParticipantBody{ID: cc.ConnID}))

	participants := make([]ParticipantInfo, 0, len(peers))
	for _, id := range peers {
		participants = append(participants, ParticipantInfo{ID: id})
	}
	return newEnvelope(EventRoomJoined, RoomJoinedBody{
		RoomID:       req.RoomID,
		JoinKey:      req.JoinKey,
		Participants: participants,
	}), nil
}

func (s *WsServer) handleDraw(_ context.Context, cc *ConnContext, req DrawRequest) (*Envelope, error) {
	if !s.registry.IsCreator(req.RoomID, cc.ConnID) {
		zap.L().Debug("draw dropped: sender is not the room creator",
			zap.String("room_id", req.RoomID),
			zap.String("conn_id", cc.ConnID),
		)
		return nil, nil
	}
	s.out.Broadcast(s.peersOf(req.RoomID, cc.ConnID), Envelope{Event: EventDraw, Body: req.Line})
	return nil, nil
}

func (s *WsServer) handleClearBoard(_ context.Context, cc *ConnContext, req ClearBoardRequest) (*Envelope, error) {
	if !s.registry.IsCreator(req.RoomID, cc.ConnID) {
		zap.L().Debug("clear_board dropped: sender is not the room creator",
			zap.String("room_id", req.RoomID),
			zap.String("conn_id", cc.ConnID),
		)
		return nil, nil
	}
	s.out.Broadcast(s.peersOf(req.RoomID, cc.ConnID), *newEnvelope(EventClearBoard, EmptyBody{}))
	return nil, nil
}

// peersOf resolves the room's membership minus the sender.
func (s *WsServer) peersOf(roomID, sender string) []string {
	members := s.registry.Participants(roomID)
	out := make([]string, 0, len(members))
	for _, id := range members {
		if id != sender {
			out = append(out, id)
		}
	}
	return out
}

// disconnect runs the cleanup path once the reader loop exits. The registry
// mutation happens before any broadcast I/O and is idempotent, so a second
// call for the same connection does nothing.
func (s *WsServer) disconnect(connID string) {
	s.out.Remove(connID)

	ev := s.registry.RemoveConnection(connID)
	if ev == nil {
		return
	}
	switch ev.Kind {
	case session.RoomClosed:
		s.out.Broadcast(ev.Recipients, *newEnvelope(EventRoomClosed, RoomClosedBody{Message: roomClosedMessage}))
	case session.ParticipantLeft:
		s.out.Broadcast(ev.Recipients, *newEnvelope(EventParticipantLeft, ParticipantLeftBody{ID: connID}))
	}
}

func (s *WsServer) reader(connID string, conn *clientConn) {
	defer func() {
		s.disconnect(connID)
		zap.L().Info("client disconnected", zap.String("conn_id", connID))
	}()

	conn.rawConn.SetReadLimit(maxMessageSize)
	_ = conn.rawConn.SetReadDeadline(time.Now().Add(pongWait))
	conn.rawConn.SetPongHandler(func(string) error {
		return conn.rawConn.SetReadDeadline(time.Now().Add(pongWait))
	})

	cc := &ConnContext{ConnID: connID}

	for {
		_, data, err := conn.rawConn.ReadMessage()
		if err != nil {
			return // client closed or errored
		}

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			_ = conn.writeJSON(*newEnvelope(EventError, ErrorBody{Message: "malformed frame"}))
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		reply, err := s.router.dispatch(ctx, cc, env)
		cancel()

		// ---- error -> {"event":"error", "body":{...}} ---------------
		if err != nil {
			_ = conn.writeJSON(*newEnvelope(EventError, ErrorBody{Message: err.Error()}))
			continue
		}

		if reply != nil {
			_ = conn.writeJSON(*reply)
		}
	}
}

func (s *WsServer) pinger(conn *clientConn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for range ticker.C {
		if err := conn.ping(); err != nil {
			return // reader loop handles the cleanup
		}
	}
}

// newEnvelope marshals body into a ready-to-send frame. Our DTOs always
// marshal; a failure here is a programming error and is logged, not fatal.
func newEnvelope(event string, body any) *Envelope {
	b, err := json.Marshal(body)
	if err != nil {
		zap.L().Error("ws.marshal_body", zap.String("event", event), zap.Error(err))
		return &Envelope{Event: event}
	}
	return &Envelope{Event: event, Body: b}
}
