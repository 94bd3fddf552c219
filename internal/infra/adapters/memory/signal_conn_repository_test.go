package memory_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/mockmate/interviewroom/internal/domain/events"
	"github.com/mockmate/interviewroom/internal/infra/adapters/memory"
)

// wsPair upgrades one connection over a test server and returns both ends.
func wsPair(t *testing.T) (server, client *websocket.Conn) {
	t.Helper()

	upgrader := websocket.Upgrader{}
	connCh := make(chan *websocket.Conn, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Error(err)
			return
		}

		connCh <- conn
	}))
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")

	client, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	server = <-connCh
	t.Cleanup(func() { server.Close() })

	return server, client
}

// Pings share the connection with answers and trickled candidates; both must
// serialize on the same per-connection lock or gorilla panics the process.
func TestSignalConnRepository_ConcurrentWriteAndPing(t *testing.T) {
	server, client := wsPair(t)

	repo := memory.NewSignalConnRepository()
	repo.Add("alice", server)
	defer repo.Remove("alice")

	// Drain the client side so writes and pings keep flowing.
	go func() {
		for {
			if _, _, err := client.ReadMessage(); err != nil {
				return
			}
		}
	}()

	var wg sync.WaitGroup

	for i := 0; i < 4; i++ {
		wg.Add(2)

		go func() {
			defer wg.Done()

			for j := 0; j < 50; j++ {
				repo.Write("alice", events.Message{Type: "candidate"})
			}
		}()

		go func() {
			defer wg.Done()

			for j := 0; j < 50; j++ {
				if err := repo.Ping("alice"); err != nil {
					t.Error(err)
					return
				}
			}
		}()
	}

	wg.Wait()
}

func TestSignalConnRepository_PingUnknownIdentity(t *testing.T) {
	repo := memory.NewSignalConnRepository()

	require.ErrorIs(t, repo.Ping("nobody"), memory.ErrConnNotFound)
}

func TestSignalConnRepository_WriteAfterRemoveIsDropped(t *testing.T) {
	server, _ := wsPair(t)

	repo := memory.NewSignalConnRepository()
	repo.Add("alice", server)
	repo.Remove("alice")

	// No connection registered: both are quiet no-ops at the repo level.
	repo.Write("alice", events.Message{Type: "answer"})
	require.ErrorIs(t, repo.Ping("alice"), memory.ErrConnNotFound)
}
