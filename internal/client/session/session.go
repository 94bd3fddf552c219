package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/pion/webrtc/v4"

	"github.com/mockmate/interviewroom/internal/application/constant"
	"github.com/mockmate/interviewroom/internal/domain"
	"github.com/mockmate/interviewroom/internal/domain/events"
)

// ErrConnection marks a terminal room-level connection failure: missing
// credentials, rejected token, unreachable server. Not retried automatically.
var ErrConnection = errors.New("connection error")

type ConnectionState int

const (
	StateDisconnected ConnectionState = iota
	StateConnecting
	StateConnected
)

// Options configure a session before Connect.
type Options struct {
	ICEServers []webrtc.ICEServer

	// OnDisconnected fires once when the transport drops, remote- or
	// local-initiated. Terminal for the session.
	OnDisconnected func()
}

// Session owns the media transport for one participant in one room: the
// signaling WebSocket, the peer connection, local publications, remote
// track bookkeeping and the four data topics.
type Session struct {
	identity string
	opts     Options

	mu    sync.Mutex
	state ConnectionState

	ws      *websocket.Conn
	writeMu sync.Mutex

	pc    *webrtc.PeerConnection
	negMu sync.Mutex

	channels  map[string]*webrtc.DataChannel
	receivers map[string]func(string)

	remote []RemoteTrack
	pubs   map[domain.TrackSource]*publication

	onLocalUnpublished func(domain.TrackSource)

	connected     chan struct{}
	connectedOnce sync.Once
	closeOnce     sync.Once
}

func New(identity string, opts Options) *Session {
	return &Session{
		identity:  identity,
		opts:      opts,
		channels:  make(map[string]*webrtc.DataChannel, 4),
		receivers: make(map[string]func(string), 4),
		pubs:      make(map[domain.TrackSource]*publication, 3),
		connected: make(chan struct{}),
	}
}

func (s *Session) State() ConnectionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

// RegisterReceiver installs the single receiver for a topic. Must be called
// before Connect so no inbound message is dropped.
func (s *Session) RegisterReceiver(topic string, onMessage func(text string)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.receivers[topic] = onMessage
}

// Connect dials the signaling endpoint, establishes the peer connection and
// opens one data channel per topic. It blocks until the transport is up or
// the context expires.
func (s *Session) Connect(ctx context.Context, rawURL, token string) error {
	if rawURL == "" || token == "" {
		return fmt.Errorf("%w: missing connection details", ErrConnection)
	}

	s.mu.Lock()
	if s.state != StateDisconnected {
		s.mu.Unlock()
		return fmt.Errorf("%w: already connected", ErrConnection)
	}
	s.state = StateConnecting
	s.mu.Unlock()

	wsURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: parse url: %v", ErrConnection, err)
	}

	query := wsURL.Query()
	query.Set("token", token)
	wsURL.RawQuery = query.Encode()

	ws, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL.String(), nil)
	if err != nil {
		s.setState(StateDisconnected)
		return fmt.Errorf("%w: dial signaling: %v", ErrConnection, err)
	}

	pc, err := webrtc.NewPeerConnection(webrtc.Configuration{ICEServers: s.opts.ICEServers})
	if err != nil {
		ws.Close()
		s.setState(StateDisconnected)
		return fmt.Errorf("%w: create peer connection: %v", ErrConnection, err)
	}

	s.mu.Lock()
	s.ws = ws
	s.pc = pc
	s.mu.Unlock()

	if err := addReceiveTransceivers(pc); err != nil {
		s.teardown()
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}

	pc.OnTrack(func(track *webrtc.TrackRemote, receiver *webrtc.RTPReceiver) {
		s.addRemoteTrack(track)
		go s.watchRemoteTrack(track)
	})

	pc.OnICECandidate(func(c *webrtc.ICECandidate) {
		if c == nil {
			return
		}

		data, err := json.Marshal(events.IceCandidateEvent{Candidate: c.ToJSON()})
		if err != nil {
			return
		}

		if err := s.writeSignal(events.Message{Type: "candidate", Data: data}); err != nil {
			slog.Warn("send ice candidate", slog.Any(constant.Error, err))
		}
	})

	pc.OnConnectionStateChange(func(state webrtc.PeerConnectionState) {
		switch state {
		case webrtc.PeerConnectionStateConnected:
			s.markConnected()
		case webrtc.PeerConnectionStateDisconnected,
			webrtc.PeerConnectionStateFailed,
			webrtc.PeerConnectionStateClosed:
			s.markDisconnected()
		}
	})

	for _, topic := range events.Topics() {
		ch, err := pc.CreateDataChannel(topic, nil)
		if err != nil {
			s.teardown()
			return fmt.Errorf("%w: create data channel %s: %v", ErrConnection, topic, err)
		}

		topic := topic
		ch.OnMessage(func(msg webrtc.DataChannelMessage) {
			s.dispatch(topic, string(msg.Data))
		})

		s.mu.Lock()
		s.channels[topic] = ch
		s.mu.Unlock()
	}

	go s.readSignals()

	if err := s.negotiate(); err != nil {
		s.teardown()
		return fmt.Errorf("%w: negotiate: %v", ErrConnection, err)
	}

	select {
	case <-s.connected:
		return nil
	case <-ctx.Done():
		s.teardown()
		return fmt.Errorf("%w: %v", ErrConnection, ctx.Err())
	}
}

// addReceiveTransceivers reserves m-lines for everything the counterpart may
// publish: microphone audio plus camera and screen video. The client is the
// only offerer, and the server's answer can never exceed the offered m-lines,
// so without these slots a participant who shares nothing themselves could
// never receive the counterpart's screen. Local publications reuse the slots.
func addReceiveTransceivers(pc *webrtc.PeerConnection) error {
	kinds := []webrtc.RTPCodecType{
		webrtc.RTPCodecTypeAudio,
		webrtc.RTPCodecTypeVideo,
		webrtc.RTPCodecTypeVideo,
	}

	for _, kind := range kinds {
		_, err := pc.AddTransceiverFromKind(kind, webrtc.RTPTransceiverInit{
			Direction: webrtc.RTPTransceiverDirectionRecvonly,
		})
		if err != nil {
			return fmt.Errorf("add %s transceiver: %w", kind, err)
		}
	}

	return nil
}

// Send writes one complete message to a topic. A not-yet-open channel is an
// ordering race at connect time, not an error: the message is dropped.
func (s *Session) Send(topic, text string) error {
	s.mu.Lock()
	ch, ok := s.channels[topic]
	state := s.state
	s.mu.Unlock()

	if !ok || state != StateConnected {
		return nil
	}

	if ch.ReadyState() != webrtc.DataChannelStateOpen {
		return nil
	}

	if err := ch.SendText(text); err != nil {
		return fmt.Errorf("send on %s: %w", topic, err)
	}

	return nil
}

// Close tears the transport down. Leaving without closing leaks the
// connection and the OS media handles behind the capture sources.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		ws := s.ws
		pc := s.pc
		pubs := make([]*publication, 0, len(s.pubs))
		for _, pub := range s.pubs {
			pubs = append(pubs, pub)
		}
		s.pubs = make(map[domain.TrackSource]*publication)
		s.mu.Unlock()

		for _, pub := range pubs {
			pub.stop()
		}

		if ws != nil {
			data, err := json.Marshal(events.Message{Type: "leave"})
			if err == nil {
				s.writeMu.Lock()
				_ = ws.WriteMessage(websocket.TextMessage, data)
				s.writeMu.Unlock()
			}

			ws.Close()
		}

		if pc != nil {
			if err := pc.Close(); err != nil {
				slog.Warn("close peer connection", slog.Any(constant.Error, err))
			}
		}

		s.markDisconnected()
	})
}

func (s *Session) dispatch(topic, text string) {
	s.mu.Lock()
	handler, ok := s.receivers[topic]
	s.mu.Unlock()

	if !ok {
		return
	}

	handler(text)
}

// negotiate runs one offer/answer round. The client is always the offerer,
// both at connect and when a publication changes.
func (s *Session) negotiate() error {
	s.negMu.Lock()
	defer s.negMu.Unlock()

	s.mu.Lock()
	pc := s.pc
	s.mu.Unlock()

	if pc == nil {
		return errors.New("no peer connection")
	}

	offer, err := pc.CreateOffer(nil)
	if err != nil {
		return fmt.Errorf("create offer: %w", err)
	}

	if err = pc.SetLocalDescription(offer); err != nil {
		return fmt.Errorf("set local description: %w", err)
	}

	data, err := json.Marshal(events.SdpEvent{SDP: offer.SDP})
	if err != nil {
		return fmt.Errorf("marshal offer: %w", err)
	}

	return s.writeSignal(events.Message{Type: "offer", Data: data})
}

func (s *Session) readSignals() {
	for {
		s.mu.Lock()
		ws := s.ws
		s.mu.Unlock()

		if ws == nil {
			return
		}

		_, raw, err := ws.ReadMessage()
		if err != nil {
			s.markDisconnected()
			return
		}

		var msg events.Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			slog.Warn("unmarshal signaling message", slog.Any(constant.Error, err))
			continue
		}

		s.handleSignal(&msg)
	}
}

func (s *Session) handleSignal(msg *events.Message) {
	switch msg.Type {
	case "answer":
		var answer events.SdpEvent

		if err := json.Unmarshal(msg.Data, &answer); err != nil {
			slog.Warn("unmarshal answer", slog.Any(constant.Error, err))
			return
		}

		s.mu.Lock()
		pc := s.pc
		s.mu.Unlock()

		err := pc.SetRemoteDescription(webrtc.SessionDescription{
			Type: webrtc.SDPTypeAnswer,
			SDP:  answer.SDP,
		})
		if err != nil {
			slog.Warn("set remote description", slog.Any(constant.Error, err))
		}

	case "candidate":
		var candidate events.IceCandidateEvent

		if err := json.Unmarshal(msg.Data, &candidate); err != nil {
			slog.Warn("unmarshal ice candidate", slog.Any(constant.Error, err))
			return
		}

		s.mu.Lock()
		pc := s.pc
		s.mu.Unlock()

		if err := pc.AddICECandidate(candidate.Candidate); err != nil {
			slog.Warn("add ice candidate", slog.Any(constant.Error, err))
		}

	case "peer-left":
		var peer events.PeerEvent

		if err := json.Unmarshal(msg.Data, &peer); err != nil {
			return
		}

		s.removeParticipantTracks(peer.Identity)

	case "peer-joined":
		// Informational only; tracks arrive via OnTrack.

	case constant.Error:
		var errEvent events.ErrorEvent

		if err := json.Unmarshal(msg.Data, &errEvent); err == nil {
			slog.Error("signaling error", slog.String("message", errEvent.Message))
		}

		s.markDisconnected()
	}
}

func (s *Session) writeSignal(msg events.Message) error {
	s.mu.Lock()
	ws := s.ws
	s.mu.Unlock()

	if ws == nil {
		return errors.New("signaling not connected")
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	return ws.WriteJSON(msg)
}

func (s *Session) setState(state ConnectionState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

func (s *Session) markConnected() {
	s.setState(StateConnected)

	s.connectedOnce.Do(func() {
		close(s.connected)
	})
}

func (s *Session) markDisconnected() {
	s.mu.Lock()
	alreadyDown := s.state == StateDisconnected
	s.state = StateDisconnected
	s.mu.Unlock()

	if alreadyDown {
		return
	}

	if s.opts.OnDisconnected != nil {
		s.opts.OnDisconnected()
	}
}

func (s *Session) teardown() {
	s.mu.Lock()
	ws := s.ws
	pc := s.pc
	s.ws = nil
	s.pc = nil
	s.state = StateDisconnected
	s.mu.Unlock()

	if ws != nil {
		ws.Close()
	}

	if pc != nil {
		_ = pc.Close()
	}
}
