package dto

import (
	"github.com/google/uuid"

	"github.com/mockmate/interviewroom/internal/domain/models"
)

type CreateInterviewRequest struct {
	InterviewerID   uuid.UUID `json:"interviewer_id"`
	InterviewerName string    `json:"interviewer_name"`
	CandidateID     uuid.UUID `json:"candidate_id"`
	CandidateName   string    `json:"candidate_name"`
}

type JoinRequest struct {
	ParticipantID uuid.UUID `json:"participant_id"`
}

type CompleteRequest struct {
	ParticipantID uuid.UUID `json:"participant_id"`
}

type InterviewResponse struct {
	ID              uuid.UUID              `json:"id"`
	RoomName        string                 `json:"room_name"`
	InterviewerName string                 `json:"interviewer_name"`
	CandidateName   string                 `json:"candidate_name"`
	Status          models.InterviewStatus `json:"status"`
}

func NewInterviewResponse(interview *models.Interview) InterviewResponse {
	return InterviewResponse{
		ID:              interview.ID,
		RoomName:        interview.RoomName,
		InterviewerName: interview.InterviewerName,
		CandidateName:   interview.CandidateName,
		Status:          interview.Status,
	}
}
