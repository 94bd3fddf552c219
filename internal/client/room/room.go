package room

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/pion/webrtc/v4"

	"github.com/mockmate/interviewroom/internal/application/constant"
	"github.com/mockmate/interviewroom/internal/client/finish"
	"github.com/mockmate/interviewroom/internal/client/media"
	"github.com/mockmate/interviewroom/internal/client/replicate"
	"github.com/mockmate/interviewroom/internal/client/session"
	"github.com/mockmate/interviewroom/internal/domain/events"
)

// Config wires one participant into one interview room.
type Config struct {
	InterviewID string

	URL           string
	Token         string
	RoomName      string
	Identity      string
	IsInterviewer bool

	ICEServers []webrtc.ICEServer

	Capturer  media.Capturer
	Completer finish.Completer

	// OnCodeChanged and friends fire when a remote update lands. Local
	// mutations do not echo through them.
	OnCodeChanged       func(string)
	OnLanguageChanged   func(string)
	OnWhiteboardChanged func([]json.RawMessage)

	// OnEnded fires once when the interview ends, on either side. The UI
	// reacts by navigating to the feedback form for the given role.
	OnEnded func(finish.Role)

	// OnDisconnected fires when the transport drops. Terminal.
	OnDisconnected func()
}

// Room is the live interview room: the media session, the three replicated
// documents, device control and the termination protocol, behind one surface.
type Room struct {
	cfg Config

	sess     *session.Session
	rep      replicate.Replicator
	devices  *media.Controller
	finisher *finish.Finisher

	code  *replicate.Document
	board *replicate.Document

	mu       sync.Mutex
	language string
	scene    []json.RawMessage
}

const defaultLanguage = "typescript"

// Join connects to the room and publishes camera and microphone. A failed
// connect is terminal for the room; the caller shows it and offers a way
// back to the dashboard.
func Join(ctx context.Context, cfg Config) (*Room, error) {
	if cfg.Capturer == nil {
		cfg.Capturer = media.NopCapturer{}
	}

	sess := session.New(cfg.Identity, session.Options{
		ICEServers:     cfg.ICEServers,
		OnDisconnected: cfg.OnDisconnected,
	})

	r := &Room{
		cfg:      cfg,
		sess:     sess,
		rep:      sess,
		language: defaultLanguage,
	}

	r.code = replicate.NewDocument(events.TopicCode, r.rep)
	r.board = replicate.NewDocument(events.TopicWhiteboard, r.rep)

	r.finisher = finish.NewFinisher(
		cfg.InterviewID,
		cfg.IsInterviewer,
		cfg.Completer,
		sess,
		sess.Close,
		cfg.OnEnded,
	)

	// Receivers go in before Connect so nothing inbound is dropped.
	r.rep.RegisterReceiver(events.TopicCode, r.handleRemoteCode)
	r.rep.RegisterReceiver(events.TopicLanguage, r.handleRemoteLanguage)
	r.rep.RegisterReceiver(events.TopicWhiteboard, r.handleRemoteWhiteboard)
	r.rep.RegisterReceiver(events.TopicControl, r.finisher.HandleControl)

	if err := sess.Connect(ctx, cfg.URL, cfg.Token); err != nil {
		return nil, err
	}

	r.devices = media.NewController(sess, cfg.Capturer)

	if err := r.devices.EnableDefaults(ctx); err != nil {
		sess.Close()
		return nil, fmt.Errorf("enable default devices: %w", err)
	}

	return r, nil
}

func (r *Room) handleRemoteCode(text string) {
	r.code.ApplyRemote(text)

	if r.cfg.OnCodeChanged != nil {
		r.cfg.OnCodeChanged(text)
	}
}

// Language is small and infrequent: replicated unconditionally, no latch.
func (r *Room) handleRemoteLanguage(text string) {
	r.mu.Lock()
	r.language = text
	r.mu.Unlock()

	if r.cfg.OnLanguageChanged != nil {
		r.cfg.OnLanguageChanged(text)
	}
}

func (r *Room) handleRemoteWhiteboard(raw string) {
	elements, err := replicate.DecodeScene(raw)
	if err != nil {
		// Dropped, local state untouched.
		slog.Warn("drop whiteboard payload", slog.Any(constant.Error, err))
		return
	}

	r.board.ApplyRemote(raw)

	r.mu.Lock()
	r.scene = elements
	r.mu.Unlock()

	if r.cfg.OnWhiteboardChanged != nil {
		r.cfg.OnWhiteboardChanged(elements)
	}
}

// SetCode records a local edit; the outbound write is debounced.
func (r *Room) SetCode(text string) {
	r.code.LocalEdit(text)
}

func (r *Room) Code() string {
	return r.code.Value()
}

// SetLanguage updates the selection and replicates it immediately.
func (r *Room) SetLanguage(id string) {
	r.mu.Lock()
	r.language = id
	r.mu.Unlock()

	if err := r.rep.Send(events.TopicLanguage, id); err != nil {
		slog.Warn("send language update", slog.Any(constant.Error, err))
	}
}

func (r *Room) Language() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.language
}

// SetWhiteboard records a local scene edit; the outbound write is debounced.
func (r *Room) SetWhiteboard(elements []json.RawMessage) error {
	raw, err := replicate.EncodeScene(elements)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.scene = elements
	r.mu.Unlock()

	r.board.LocalEdit(raw)

	return nil
}

func (r *Room) Whiteboard() []json.RawMessage {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]json.RawMessage, len(r.scene))
	copy(out, r.scene)

	return out
}

func (r *Room) Devices() *media.Controller {
	return r.devices
}

func (r *Room) Session() *session.Session {
	return r.sess
}

func (r *Room) IsInterviewer() bool {
	return r.cfg.IsInterviewer
}

// Finish ends the interview for both parties. Interviewer only, and only
// after an explicit user confirmation.
func (r *Room) Finish(ctx context.Context) error {
	return r.finisher.Finish(ctx)
}

// Leave cancels pending document timers and closes the transport. Safe to
// call at any time; fired timers after leave are no-ops.
func (r *Room) Leave() {
	r.code.Close()
	r.board.Close()
	r.sess.Close()
}
