package memory

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mockmate/interviewroom/internal/application/constant"
	"github.com/mockmate/interviewroom/internal/application/metric"
)

const pingWriteWait = 10 * time.Second

var ErrConnNotFound = errors.New("signaling connection not found")

// SignalConnRepository keeps the active signaling WebSocket per participant.
// All writes to a connection, keepalive pings included, go through here so
// they serialize on one mutex; gorilla allows only a single writer.
type SignalConnRepository interface {
	Add(identity string, conn *websocket.Conn)
	Remove(identity string)

	Write(identity string, payload any)
	Ping(identity string) error
}

type safeWS struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

type signalConnRepository struct {
	// conns stores map[identity]*ws.conn
	conns map[string]*safeWS

	mu sync.RWMutex
}

func NewSignalConnRepository() SignalConnRepository {
	return &signalConnRepository{
		conns: make(map[string]*safeWS, 10),
	}
}

func (s *signalConnRepository) Add(identity string, conn *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.conns[identity] = &safeWS{conn: conn}

	metric.IncrementWSActiveConnections()
}

func (s *signalConnRepository) Remove(identity string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.conns[identity]; exists {
		delete(s.conns, identity)

		metric.DecrementWSActiveConnections()
	}
}

func (s *signalConnRepository) Write(identity string, payload any) {
	safews, ok := s.getSafeWS(identity)
	if !ok {
		return
	}

	safews.mu.Lock()
	defer safews.mu.Unlock()

	err := safews.conn.WriteJSON(payload)
	if err != nil {
		slog.Error(
			"write to websocket",
			slog.Any(constant.Error, err),
			slog.String(constant.Identity, identity),
		)
		return
	}
}

func (s *signalConnRepository) Ping(identity string) error {
	safews, ok := s.getSafeWS(identity)
	if !ok {
		return ErrConnNotFound
	}

	safews.mu.Lock()
	defer safews.mu.Unlock()

	return safews.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(pingWriteWait))
}

func (s *signalConnRepository) getSafeWS(identity string) (*safeWS, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conn, ok := s.conns[identity]
	return conn, ok
}
