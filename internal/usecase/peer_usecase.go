package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/pion/rtp"
	"github.com/pion/webrtc/v4"

	"github.com/mockmate/interviewroom/internal/application/config"
	"github.com/mockmate/interviewroom/internal/application/constant"
	"github.com/mockmate/interviewroom/internal/application/metric"
	"github.com/mockmate/interviewroom/internal/domain"
	"github.com/mockmate/interviewroom/internal/domain/events"
	"github.com/mockmate/interviewroom/internal/infra/adapters/memory"
)

type PeerUsecase interface {
	CreateServerPeer(ctx context.Context, identity, roomName, counterpartIdentity string) (*domain.Peer, error)
}

type peerUsecase struct {
	cfg *config.Config

	registry   memory.RoomRegistry
	signalRepo memory.SignalConnRepository
}

func NewPeerUsecase(
	cfg *config.Config,
	registry memory.RoomRegistry,
	signalRepo memory.SignalConnRepository,
) *peerUsecase {
	return &peerUsecase{
		cfg:        cfg,
		registry:   registry,
		signalRepo: signalRepo,
	}
}

// CreateServerPeer builds the peer connection for one participant and wires
// media forwarding and data relay toward the counterpart.
func (p *peerUsecase) CreateServerPeer(ctx context.Context, identity, roomName, counterpartIdentity string) (*domain.Peer, error) {
	peer, err := domain.NewPeer(identity, roomName, counterpartIdentity, p.cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create peer: %w", err)
	}

	peer.Conn.OnTrack(func(track *webrtc.TrackRemote, receiver *webrtc.RTPReceiver) {
		source := domain.TrackSource(track.ID())

		go func(ctx context.Context) {
			for {
				select {
				case <-ctx.Done():
					return
				default:
					pkt, _, err := track.ReadRTP()
					if err != nil {
						if !errors.Is(err, io.EOF) {
							slog.Error("RTP read error", slog.Any(constant.Error, err))
						}

						return
					}

					p.forwardRTP(pkt, source, identity, roomName)
				}
			}
		}(ctx)
	})

	peer.Conn.OnDataChannel(func(ch *webrtc.DataChannel) {
		peer.SetChannel(ch.Label(), ch)

		ch.OnMessage(func(msg webrtc.DataChannelMessage) {
			p.relayData(ch.Label(), msg.Data, identity, roomName)
		})
	})

	peer.Conn.OnICECandidate(func(c *webrtc.ICECandidate) {
		if c == nil {
			return
		}

		data, err := json.Marshal(events.IceCandidateEvent{Candidate: c.ToJSON()})
		if err != nil {
			slog.Error("marshal ice candidate", slog.Any(constant.Error, err))
			return
		}

		p.signalRepo.Write(identity, events.Message{Type: "candidate", Data: data})
	})

	return peer, nil
}

func (p *peerUsecase) forwardRTP(pkt *rtp.Packet, source domain.TrackSource, identity, roomName string) {
	counterpart, ok := p.registry.Counterpart(roomName, identity)
	if !ok {
		return
	}

	out, ok := counterpart.OutTrack(source)
	if !ok {
		slog.Error(
			"no outbound track for source",
			slog.String("source", string(source)),
			slog.String(constant.RoomName, roomName),
		)
		return
	}

	if err := out.WriteRTP(pkt); err != nil {
		slog.Error(
			"write RTP",
			slog.Any(constant.Error, err),
			slog.String(constant.Identity, identity),
			slog.String(constant.RoomName, roomName),
		)
	}
}

// relayData echoes one data message to the counterpart's channel with the
// same label. Relay is best-effort; a missing counterpart just drops it.
func (p *peerUsecase) relayData(label string, data []byte, identity, roomName string) {
	counterpart, ok := p.registry.Counterpart(roomName, identity)
	if !ok {
		return
	}

	ch, ok := counterpart.Channel(label)
	if !ok {
		return
	}

	if err := ch.Send(data); err != nil {
		slog.Error(
			"relay data message",
			slog.Any(constant.Error, err),
			slog.String(constant.Topic, label),
			slog.String(constant.RoomName, roomName),
		)
		return
	}

	metric.IncrementDataMessagesRelayed(label)
}
