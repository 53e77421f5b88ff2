package session

import (
	"crypto/subtle"
	"errors"
	"strconv"
	"sync"

	"go.uber.org/zap"
)

var (
	ErrInvalidRoomOrKey = errors.New("invalid room ID or join key")
	ErrAlreadyInRoom    = errors.New("connection already belongs to a room")
)

// CleanupKind classifies what RemoveConnection tore down.
type CleanupKind int

const (
	RoomClosed CleanupKind = iota + 1
	ParticipantLeft
)

// CleanupEvent tells the caller who must be notified after a disconnect.
// Recipients are the members still reachable at the time of removal.
type CleanupEvent struct {
	Kind       CleanupKind
	RoomID     string
	ConnID     string
	Recipients []string
}

// Room is a broadcast domain owned by exactly one creator connection.
// Participants always starts with the creator.
type Room struct {
	ID           string
	JoinKey      string
	Creator      string
	Participants []string
}

type IRegistry interface {
	CreateRoom(creator string) (roomID, joinKey string, err error)
	JoinRoom(conn, roomID, joinKey string) (peers []string, err error)
	RemoveConnection(conn string) *CleanupEvent
	IsCreator(roomID, conn string) bool
	Participants(roomID string) []string
	Counts() (rooms, participants int)
}

// registry is the single in-memory authority for room state.
// byConn is the reverse index enforcing "one room per connection" and making
// disconnect cleanup O(1).
type registry struct {
	mu     sync.RWMutex
	rooms  map[string]*Room
	byConn map[string]string
	nextID uint64
}

var _ IRegistry = (*registry)(nil)

func NewRegistry() IRegistry {
	return &registry{
		rooms:  make(map[string]*Room),
		byConn: make(map[string]string),
	}
}

// CreateRoom allocates a fresh room with the caller as creator and sole member.
// Room IDs come from a counter that is never decremented, so an ID is unique
// for the process lifetime even after its room is torn down.
func (r *registry) CreateRoom(creator string) (string, string, error) {
	joinKey, err := generateJoinKey()
	if err != nil {
		return "", "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byConn[creator]; ok {
		return "", "", ErrAlreadyInRoom
	}

	r.nextID++
	roomID := strconv.FormatUint(r.nextID, 10)
	r.rooms[roomID] = &Room{
		ID:           roomID,
		JoinKey:      joinKey,
		Creator:      creator,
		Participants: []string{creator},
	}
	r.byConn[creator] = roomID

	zap.L().Info("room created",
		zap.String("room_id", roomID),
		zap.String("creator", creator),
	)
	return roomID, joinKey, nil
}

// JoinRoom verifies the room ID / join key pair and appends conn to the
// membership. The returned peers are the members that were already present,
// creator first, so the joiner can initialize its peer list. Unknown room and
// wrong key collapse into the same error so callers learn nothing about which
// half failed.
func (r *registry) JoinRoom(conn, roomID, joinKey string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byConn[conn]; ok {
		return nil, ErrAlreadyInRoom
	}

	room, ok := r.rooms[roomID]
	if !ok {
		return nil, ErrInvalidRoomOrKey
	}
	if subtle.ConstantTimeCompare([]byte(room.JoinKey), []byte(joinKey)) != 1 {
		return nil, ErrInvalidRoomOrKey
	}

	peers := make([]string, len(room.Participants))
	copy(peers, room.Participants)

	room.Participants = append(room.Participants, conn)
	r.byConn[conn] = roomID

	zap.L().Info("participant joined",
		zap.String("room_id", roomID),
		zap.String("conn_id", conn),
		zap.Int("members", len(room.Participants)),
	)
	return peers, nil
}

// RemoveConnection handles connection loss. The creator going away tears the
// whole room down; any other member is just dropped from the list. Calling it
// again for the same connection is a no-op and returns nil.
func (r *registry) RemoveConnection(conn string) *CleanupEvent {
	r.mu.Lock()
	defer r.mu.Unlock()

	roomID, ok := r.byConn[conn]
	if !ok {
		return nil
	}
	delete(r.byConn, conn)

	room, ok := r.rooms[roomID]
	if !ok {
		return nil
	}

	if room.Creator == conn {
		delete(r.rooms, roomID)
		recipients := make([]string, 0, len(room.Participants)-1)
		for _, id := range room.Participants {
			if id != conn {
				recipients = append(recipients, id)
				delete(r.byConn, id)
			}
		}
		zap.L().Info("room closed",
			zap.String("room_id", roomID),
			zap.Int("evicted", len(recipients)),
		)
		return &CleanupEvent{
			Kind:       RoomClosed,
			RoomID:     roomID,
			ConnID:     conn,
			Recipients: recipients,
		}
	}

	recipients := make([]string, 0, len(room.Participants)-1)
	kept := room.Participants[:0]
	for _, id := range room.Participants {
		if id == conn {
			continue
		}
		kept = append(kept, id)
		recipients = append(recipients, id)
	}
	room.Participants = kept

	zap.L().Info("participant left",
		zap.String("room_id", roomID),
		zap.String("conn_id", conn),
	)
	return &CleanupEvent{
		Kind:       ParticipantLeft,
		RoomID:     roomID,
		ConnID:     conn,
		Recipients: recipients,
	}
}

func (r *registry) IsCreator(roomID, conn string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.rooms[roomID]
	return ok && room.Creator == conn
}

// Participants returns a snapshot copy of the room's membership, creator
// first. Nil for an unknown room.
func (r *registry) Participants(roomID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.rooms[roomID]
	if !ok {
		return nil
	}
	out := make([]string, len(room.Participants))
	copy(out, room.Participants)
	return out
}

func (r *registry) Counts() (int, int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms), len(r.byConn)
}
