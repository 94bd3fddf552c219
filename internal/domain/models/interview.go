package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type InterviewStatus string

const (
	InterviewStatusScheduled InterviewStatus = "scheduled"
	InterviewStatusLive      InterviewStatus = "live"
	InterviewStatusCompleted InterviewStatus = "completed"
)

// Interview is one booked mock interview: two fixed participants and a room.
type Interview struct {
	ID       uuid.UUID `db:"id"`
	RoomName string    `db:"room_name"`

	InterviewerID   uuid.UUID `db:"interviewer_id"`
	InterviewerName string    `db:"interviewer_name"`
	CandidateID     uuid.UUID `db:"candidate_id"`
	CandidateName   string    `db:"candidate_name"`

	Status InterviewStatus `db:"status"`

	CreatedAt   time.Time    `db:"created_at"`
	StartedAt   sql.NullTime `db:"started_at"`
	CompletedAt sql.NullTime `db:"completed_at"`
}

func NewInterview(interviewerID uuid.UUID, interviewerName string, candidateID uuid.UUID, candidateName string) *Interview {
	id := uuid.New()

	return &Interview{
		ID:              id,
		RoomName:        "interview-" + id.String(),
		InterviewerID:   interviewerID,
		InterviewerName: interviewerName,
		CandidateID:     candidateID,
		CandidateName:   candidateName,
		Status:          InterviewStatusScheduled,
		CreatedAt:       time.Now(),
	}
}

// ParticipantOf reports whether id is one of the two booked participants.
func (i *Interview) ParticipantOf(id uuid.UUID) bool {
	return id == i.InterviewerID || id == i.CandidateID
}
