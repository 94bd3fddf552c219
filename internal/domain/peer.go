package domain

import (
	"fmt"
	"sync"

	"github.com/pion/webrtc/v4"

	"github.com/mockmate/interviewroom/internal/application/config"
)

// TrackSource identifies what a media track carries. The track ID on the
// wire is the source name, the stream ID is the owning participant.
type TrackSource string

const (
	SourceMicrophone TrackSource = "microphone"
	SourceCamera     TrackSource = "camera"
	SourceScreen     TrackSource = "screen"
)

// Peer is the server side of one participant connection: a peer connection,
// a fixed set of outbound tracks carrying the counterpart's media, and the
// data channels opened by the participant.
type Peer struct {
	Identity string
	RoomName string

	Conn *webrtc.PeerConnection

	out map[TrackSource]*webrtc.TrackLocalStaticRTP

	mu       sync.Mutex
	channels map[string]*webrtc.DataChannel
}

// NewPeer creates the peer connection with outbound tracks for every source
// the counterpart may publish. counterpartIdentity becomes the stream ID so
// the client can attribute the tracks to the remote participant.
func NewPeer(identity, roomName, counterpartIdentity string, cfg *config.Config) (*Peer, error) {
	pc, err := webrtc.NewPeerConnection(
		webrtc.Configuration{ICEServers: cfg.ICEServers},
	)
	if err != nil {
		return nil, err
	}

	out := make(map[TrackSource]*webrtc.TrackLocalStaticRTP, 3)

	// Fixed order: the answer binds senders to the offered m-lines per kind
	// in the order they were added, so it must not vary between peers.
	outputs := []struct {
		src        TrackSource
		capability webrtc.RTPCodecCapability
	}{
		{SourceMicrophone, webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeOpus}},
		{SourceCamera, webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeVP8}},
		{SourceScreen, webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeVP8}},
	}

	for _, o := range outputs {
		track, err := webrtc.NewTrackLocalStaticRTP(o.capability, string(o.src), counterpartIdentity)
		if err != nil {
			return nil, fmt.Errorf("create %s track: %w", o.src, err)
		}

		if _, err = pc.AddTrack(track); err != nil {
			return nil, fmt.Errorf("add %s track: %w", o.src, err)
		}

		out[o.src] = track
	}

	return &Peer{
		Identity: identity,
		RoomName: roomName,
		Conn:     pc,
		out:      out,
		channels: make(map[string]*webrtc.DataChannel, 4),
	}, nil
}

func (p *Peer) OutTrack(src TrackSource) (*webrtc.TrackLocalStaticRTP, bool) {
	track, ok := p.out[src]
	return track, ok
}

func (p *Peer) SetChannel(label string, ch *webrtc.DataChannel) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.channels[label] = ch
}

func (p *Peer) Channel(label string) (*webrtc.DataChannel, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	ch, ok := p.channels[label]
	return ch, ok
}

func (p *Peer) Close() error {
	return p.Conn.Close()
}
