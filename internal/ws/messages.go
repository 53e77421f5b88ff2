package ws

import "encoding/json"

// Envelope wraps every WS frame.
type Envelope struct {
	Event string          `json:"event"`          // e.g. "join_room"
	Body  json.RawMessage `json:"body,omitempty"` // arbitrary JSON object
}

// Inbound event names (client → server).
const (
	EventCreateRoom = "create_room"
	EventJoinRoom   = "join_room"
	EventDraw       = "draw"
	EventClearBoard = "clear_board"
)

// Outbound event names (server → client).
const (
	EventRoomCreated     = "room_created"
	EventRoomJoined      = "room_joined"
	EventNewParticipant  = "new_participant"
	EventRoomClosed      = "room_closed"
	EventParticipantLeft = "participant_left"
	EventError           = "error"
)

// ──────────────────────────── Request / Response DTOs ─────────────────────────

// EmptyBody is used by events that carry no payload.
type EmptyBody struct{}

// JoinRoomRequest is the body for "join_room".
type JoinRoomRequest struct {
	RoomID  string `json:"roomId"`
	JoinKey string `json:"joinKey"`
}

// DrawRequest is the body for "draw". Line is forwarded verbatim; the server
// never interprets drawing data.
type DrawRequest struct {
	RoomID string          `json:"roomId"`
	Line   json.RawMessage `json:"line"`
}

// ClearBoardRequest is the body for "clear_board".
type ClearBoardRequest struct {
	RoomID string `json:"roomId"`
}

// RoomCreatedBody answers "create_room", sent to the creator only.
type RoomCreatedBody struct {
	RoomID  string `json:"roomId"`
	JoinKey string `json:"joinKey"`
}

// ParticipantInfo identifies one member of a room.
type ParticipantInfo struct {
	ID string `json:"id"`
}

// RoomJoinedBody answers "join_room" on success. Participants holds every
// member already in the room (creator first), excluding the joiner.
type RoomJoinedBody struct {
	RoomID       string            `json:"roomId"`
	JoinKey      string            `json:"joinKey"`
	Participants []ParticipantInfo `json:"participants"`
}

// NewParticipantBody announces a joiner to the rest of the room.
type NewParticipantBody struct {
	ID string `json:"id"`
}

// ParticipantLeftBody announces a departed member to the rest of the room.
type ParticipantLeftBody struct {
	ID string `json:"id"`
}

// RoomClosedBody tells remaining members their room is gone.
type RoomClosedBody struct {
	Message string `json:"message"`
}

// ErrorBody is returned for failures.
type ErrorBody struct {
	Message string `json:"message"`
}
