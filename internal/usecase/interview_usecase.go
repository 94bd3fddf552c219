package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pion/webrtc/v4"

	"github.com/mockmate/interviewroom/internal/application/config"
	"github.com/mockmate/interviewroom/internal/application/metric"
	"github.com/mockmate/interviewroom/internal/application/token"
	"github.com/mockmate/interviewroom/internal/domain/models"
	"github.com/mockmate/interviewroom/internal/infra/adapters/postgres/repository"
)

var (
	ErrNotParticipant = errors.New("not a participant of this interview")
	ErrNotInterviewer = errors.New("only the interviewer may complete the interview")
)

const roomTokenTTL = 4 * time.Hour

// CounterpartNames carries the display names of both parties: Sender is the
// candidate who requested the interview, Receiver the interviewer.
type CounterpartNames struct {
	Sender   string `json:"sender"`
	Receiver string `json:"receiver"`
}

// JoinDetails is the one-shot payload a client needs to enter the room,
// ICE configuration included, so no second round trip is needed.
type JoinDetails struct {
	URL                 string             `json:"url"`
	Token               string             `json:"token"`
	RoomName            string             `json:"roomName"`
	ParticipantIdentity string             `json:"participantIdentity"`
	IsInterviewer       bool               `json:"isInterviewer"`
	Counterpart         CounterpartNames   `json:"counterpart"`
	ICEServers          []webrtc.ICEServer `json:"iceServers"`
}

type InterviewUsecase interface {
	CreateInterview(ctx context.Context, interviewerID uuid.UUID, interviewerName string, candidateID uuid.UUID, candidateName string) (*models.Interview, error)
	GetInterview(ctx context.Context, id uuid.UUID) (*models.Interview, error)

	Join(ctx context.Context, interviewID, participantID uuid.UUID) (*JoinDetails, error)
	Complete(ctx context.Context, interviewID, participantID uuid.UUID) error
}

type interviewUsecase struct {
	cfg *config.Config

	interviewRepo repository.InterviewRepository
}

func NewInterviewUsecase(cfg *config.Config, interviewRepo repository.InterviewRepository) InterviewUsecase {
	return &interviewUsecase{cfg: cfg, interviewRepo: interviewRepo}
}

func (uc *interviewUsecase) CreateInterview(
	ctx context.Context,
	interviewerID uuid.UUID,
	interviewerName string,
	candidateID uuid.UUID,
	candidateName string,
) (*models.Interview, error) {
	interview := models.NewInterview(interviewerID, interviewerName, candidateID, candidateName)

	if err := uc.interviewRepo.Create(ctx, interview); err != nil {
		return nil, fmt.Errorf("create interview: %w", err)
	}

	return interview, nil
}

func (uc *interviewUsecase) GetInterview(ctx context.Context, id uuid.UUID) (*models.Interview, error) {
	return uc.interviewRepo.GetByID(ctx, id)
}

// Join validates the participant, issues a room token and returns the
// connection details. The interview goes live on the first join.
func (uc *interviewUsecase) Join(ctx context.Context, interviewID, participantID uuid.UUID) (*JoinDetails, error) {
	interview, err := uc.interviewRepo.GetByID(ctx, interviewID)
	if err != nil {
		return nil, fmt.Errorf("get interview: %w", err)
	}

	if !interview.ParticipantOf(participantID) {
		return nil, ErrNotParticipant
	}

	role := token.RoleCandidate
	displayName := interview.CandidateName

	if participantID == interview.InterviewerID {
		role = token.RoleInterviewer
		displayName = interview.InterviewerName
	}

	roomToken, err := token.Issue(
		[]byte(uc.cfg.JWTSecret),
		interview.ID.String(),
		interview.RoomName,
		participantID.String(),
		displayName,
		role,
		roomTokenTTL,
	)
	if err != nil {
		return nil, fmt.Errorf("issue room token: %w", err)
	}

	if err = uc.interviewRepo.MarkLive(ctx, interview.ID); err != nil {
		return nil, fmt.Errorf("mark interview live: %w", err)
	}

	return &JoinDetails{
		URL:                 uc.cfg.PublicWSURL,
		Token:               roomToken,
		RoomName:            interview.RoomName,
		ParticipantIdentity: participantID.String(),
		IsInterviewer:       role == token.RoleInterviewer,
		Counterpart: CounterpartNames{
			Sender:   interview.CandidateName,
			Receiver: interview.InterviewerName,
		},
		ICEServers: uc.cfg.ICEServers,
	}, nil
}

// Complete marks the interview finished. Interviewer only; the client must
// not broadcast the control signal unless this call succeeded.
func (uc *interviewUsecase) Complete(ctx context.Context, interviewID, participantID uuid.UUID) error {
	interview, err := uc.interviewRepo.GetByID(ctx, interviewID)
	if err != nil {
		return fmt.Errorf("get interview: %w", err)
	}

	if !interview.ParticipantOf(participantID) {
		return ErrNotParticipant
	}

	if participantID != interview.InterviewerID {
		return ErrNotInterviewer
	}

	if err = uc.interviewRepo.MarkCompleted(ctx, interview.ID); err != nil {
		return fmt.Errorf("mark interview completed: %w", err)
	}

	metric.IncrementInterviewsCompleted()

	return nil
}
