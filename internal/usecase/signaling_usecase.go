package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/pion/webrtc/v4"

	"github.com/mockmate/interviewroom/internal/application/constant"
	"github.com/mockmate/interviewroom/internal/application/token"
	"github.com/mockmate/interviewroom/internal/domain/events"
	"github.com/mockmate/interviewroom/internal/infra/adapters/memory"
	"github.com/mockmate/interviewroom/internal/infra/adapters/postgres/repository"
)

type SignalingUsecase interface {
	HandleConnect(ctx context.Context, claims *token.Claims) error
	HandleLeave(ctx context.Context, claims *token.Claims) error

	HandleOffer(ctx context.Context, claims *token.Claims, sdp string) error
	HandleCandidate(ctx context.Context, claims *token.Claims, candidate webrtc.ICECandidateInit) error
}

type signalingUsecase struct {
	interviewRepo repository.InterviewRepository

	registry   memory.RoomRegistry
	signalRepo memory.SignalConnRepository

	peerUsecase PeerUsecase
}

func NewSignalingUsecase(
	interviewRepo repository.InterviewRepository,
	registry memory.RoomRegistry,
	signalRepo memory.SignalConnRepository,
	peerUsecase PeerUsecase,
) SignalingUsecase {
	return &signalingUsecase{
		interviewRepo: interviewRepo,
		registry:      registry,
		signalRepo:    signalRepo,
		peerUsecase:   peerUsecase,
	}
}

// HandleConnect creates the server peer for the participant named by the
// room token and registers it in the room.
func (s *signalingUsecase) HandleConnect(ctx context.Context, claims *token.Claims) error {
	interview, err := s.interviewRepo.GetByRoomName(ctx, claims.RoomName)
	if err != nil {
		return fmt.Errorf("get interview by room: %w", err)
	}

	counterpartIdentity := interview.CandidateID.String()
	if claims.Identity == counterpartIdentity {
		counterpartIdentity = interview.InterviewerID.String()
	}

	peer, err := s.peerUsecase.CreateServerPeer(ctx, claims.Identity, claims.RoomName, counterpartIdentity)
	if err != nil {
		return fmt.Errorf("create server peer: %w", err)
	}

	if err = s.registry.Add(claims.RoomName, claims.Identity, peer); err != nil {
		if closeErr := peer.Close(); closeErr != nil {
			slog.Error("close rejected peer", slog.Any(constant.Error, closeErr))
		}

		return fmt.Errorf("register peer: %w", err)
	}

	s.notifyCounterpart(claims, "peer-joined")

	return nil
}

// HandleLeave tears the participant's peer down. The transport-level
// disconnect of either side ends the shared session for the other.
func (s *signalingUsecase) HandleLeave(ctx context.Context, claims *token.Claims) error {
	peer, ok := s.registry.Get(claims.RoomName, claims.Identity)
	if !ok {
		return fmt.Errorf("peer connection not found")
	}

	s.registry.Remove(claims.RoomName, claims.Identity)

	if err := peer.Close(); err != nil {
		slog.Error("close peer connection", slog.Any(constant.Error, err))
	}

	s.notifyCounterpart(claims, "peer-left")

	return nil
}

// HandleOffer answers the participant's offer. The client is always the
// offerer, both on connect and on renegotiation (e.g. screen share).
func (s *signalingUsecase) HandleOffer(ctx context.Context, claims *token.Claims, sdp string) error {
	peer, ok := s.registry.Get(claims.RoomName, claims.Identity)
	if !ok {
		return fmt.Errorf("peer connection not found")
	}

	err := peer.Conn.SetRemoteDescription(webrtc.SessionDescription{
		Type: webrtc.SDPTypeOffer,
		SDP:  sdp,
	})
	if err != nil {
		return fmt.Errorf("set remote description: %w", err)
	}

	answer, err := peer.Conn.CreateAnswer(nil)
	if err != nil {
		return fmt.Errorf("create answer: %w", err)
	}

	if err = peer.Conn.SetLocalDescription(answer); err != nil {
		return fmt.Errorf("set local description: %w", err)
	}

	data, err := json.Marshal(events.SdpEvent{SDP: answer.SDP})
	if err != nil {
		return fmt.Errorf("marshal answer: %w", err)
	}

	s.signalRepo.Write(claims.Identity, events.Message{Type: "answer", Data: data})

	return nil
}

func (s *signalingUsecase) HandleCandidate(ctx context.Context, claims *token.Claims, candidate webrtc.ICECandidateInit) error {
	peer, ok := s.registry.Get(claims.RoomName, claims.Identity)
	if !ok {
		return fmt.Errorf("peer connection not found")
	}

	if err := peer.Conn.AddICECandidate(candidate); err != nil {
		return fmt.Errorf("add ice candidate: %w", err)
	}

	return nil
}

func (s *signalingUsecase) notifyCounterpart(claims *token.Claims, eventType string) {
	counterpart, ok := s.registry.Counterpart(claims.RoomName, claims.Identity)
	if !ok {
		return
	}

	data, err := json.Marshal(events.PeerEvent{Identity: claims.Identity})
	if err != nil {
		slog.Error("marshal peer event", slog.Any(constant.Error, err))
		return
	}

	s.signalRepo.Write(counterpart.Identity, events.Message{Type: eventType, Data: data})
}
