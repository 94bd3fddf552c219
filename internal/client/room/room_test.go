package room

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mockmate/interviewroom/internal/client/replicate"
	"github.com/mockmate/interviewroom/internal/domain/events"
)

type topicRecorder struct {
	mu    sync.Mutex
	texts []string
}

func (r *topicRecorder) Send(_, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.texts = append(r.texts, text)

	return nil
}

func (r *topicRecorder) RegisterReceiver(string, func(string)) {}

func (r *topicRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.texts)
}

func (r *topicRecorder) last() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.texts) == 0 {
		return ""
	}

	return r.texts[len(r.texts)-1]
}

func newTestRoom(cfg Config) (*Room, *topicRecorder) {
	recorder := &topicRecorder{}

	r := &Room{
		cfg:      cfg,
		rep:      recorder,
		language: defaultLanguage,
	}

	r.code = replicate.NewDocument(events.TopicCode, recorder,
		replicate.WithTimings(50*time.Millisecond, 10*time.Millisecond))
	r.board = replicate.NewDocument(events.TopicWhiteboard, recorder,
		replicate.WithTimings(50*time.Millisecond, 10*time.Millisecond))

	return r, recorder
}

func TestRoom_RemoteCodeUpdate(t *testing.T) {
	var got string

	r, recorder := newTestRoom(Config{
		OnCodeChanged: func(text string) { got = text },
	})
	defer r.code.Close()
	defer r.board.Close()

	r.handleRemoteCode("const x = 1")

	assert.Equal(t, "const x = 1", got)
	assert.Equal(t, "const x = 1", r.Code())

	// The editor reacts to the applied value; that echo stays local.
	r.SetCode("const x = 1")
	time.Sleep(100 * time.Millisecond)
	assert.Zero(t, recorder.count())
}

func TestRoom_RemoteLanguageUpdate(t *testing.T) {
	var got string

	r, _ := newTestRoom(Config{
		OnLanguageChanged: func(id string) { got = id },
	})
	defer r.code.Close()
	defer r.board.Close()

	assert.Equal(t, defaultLanguage, r.Language())

	r.handleRemoteLanguage("go")

	assert.Equal(t, "go", got)
	assert.Equal(t, "go", r.Language())
}

func TestRoom_LanguageSendsImmediately(t *testing.T) {
	r, recorder := newTestRoom(Config{})
	defer r.code.Close()
	defer r.board.Close()

	r.SetLanguage("python")

	// No debounce on language: the send happens on the calling goroutine.
	assert.Equal(t, 1, recorder.count())
	assert.Equal(t, "python", recorder.last())
	assert.Equal(t, "python", r.Language())
}

func TestRoom_RemoteWhiteboardUpdate(t *testing.T) {
	var got []json.RawMessage

	r, _ := newTestRoom(Config{
		OnWhiteboardChanged: func(elements []json.RawMessage) { got = elements },
	})
	defer r.code.Close()
	defer r.board.Close()

	raw, err := replicate.EncodeScene([]json.RawMessage{
		json.RawMessage(`{"type":"rect","x":0,"y":0}`),
	})
	require.NoError(t, err)

	r.handleRemoteWhiteboard(raw)

	require.Len(t, got, 1)
	require.Len(t, r.Whiteboard(), 1)
	assert.JSONEq(t, `{"type":"rect","x":0,"y":0}`, string(r.Whiteboard()[0]))
}

func TestRoom_MalformedWhiteboardDropped(t *testing.T) {
	called := false

	r, _ := newTestRoom(Config{
		OnWhiteboardChanged: func([]json.RawMessage) { called = true },
	})
	defer r.code.Close()
	defer r.board.Close()

	raw, err := replicate.EncodeScene([]json.RawMessage{json.RawMessage(`{"type":"rect"}`)})
	require.NoError(t, err)
	r.handleRemoteWhiteboard(raw)
	require.Len(t, r.Whiteboard(), 1)

	called = false

	for _, bad := range []string{
		`{"v":1,"type":"whiteboard-sc`,
		`{"v":9,"type":"whiteboard-scene","elements":[]}`,
		`plain text`,
	} {
		r.handleRemoteWhiteboard(bad)
	}

	assert.False(t, called, "malformed payloads must not reach the change callback")
	assert.Len(t, r.Whiteboard(), 1, "local scene untouched by dropped payloads")
}
