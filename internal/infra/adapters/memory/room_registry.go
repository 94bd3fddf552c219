package memory

import (
	"errors"
	"sync"

	"github.com/mockmate/interviewroom/internal/application/metric"
	"github.com/mockmate/interviewroom/internal/domain"
)

var ErrRoomFull = errors.New("room is full")

// RoomRegistry keeps the live peers of every interview room. A room holds
// at most two participants.
type RoomRegistry interface {
	Add(roomName, identity string, peer *domain.Peer) error
	Get(roomName, identity string) (*domain.Peer, bool)
	Counterpart(roomName, identity string) (*domain.Peer, bool)
	Remove(roomName, identity string)
	Participants(roomName string) []string
}

type roomRegistry struct {
	// rooms stores map[room_name]map[identity]*Peer
	rooms map[string]map[string]*domain.Peer
	mu    sync.RWMutex
}

func NewRoomRegistry() RoomRegistry {
	return &roomRegistry{
		rooms: make(map[string]map[string]*domain.Peer),
	}
}

func (r *roomRegistry) Add(roomName, identity string, peer *domain.Peer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[roomName]
	if !ok {
		room = make(map[string]*domain.Peer, 2)
		r.rooms[roomName] = room
	}

	if _, rejoining := room[identity]; !rejoining && len(room) >= 2 {
		return ErrRoomFull
	}

	room[identity] = peer

	metric.SetActiveRooms(len(r.rooms))

	return nil
}

func (r *roomRegistry) Get(roomName, identity string) (*domain.Peer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	peer, ok := r.rooms[roomName][identity]
	return peer, ok
}

func (r *roomRegistry) Counterpart(roomName, identity string) (*domain.Peer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for id, peer := range r.rooms[roomName] {
		if id != identity {
			return peer, true
		}
	}

	return nil, false
}

func (r *roomRegistry) Remove(roomName, identity string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[roomName]
	if !ok {
		return
	}

	delete(room, identity)

	if len(room) == 0 {
		delete(r.rooms, roomName)
	}

	metric.SetActiveRooms(len(r.rooms))
}

func (r *roomRegistry) Participants(roomName string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	identities := make([]string, 0, len(r.rooms[roomName]))

	for identity := range r.rooms[roomName] {
		identities = append(identities, identity)
	}

	return identities
}
