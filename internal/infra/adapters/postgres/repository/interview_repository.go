package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/mockmate/interviewroom/internal/domain/models"
)

var ErrInterviewNotFound = errors.New("interview not found")

type InterviewRepository interface {
	Create(ctx context.Context, interview *models.Interview) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Interview, error)
	GetByRoomName(ctx context.Context, roomName string) (*models.Interview, error)

	MarkLive(ctx context.Context, id uuid.UUID) error
	MarkCompleted(ctx context.Context, id uuid.UUID) error
}

type interviewRepo struct {
	db *sqlx.DB
}

func NewInterviewRepo(db *sqlx.DB) InterviewRepository {
	return &interviewRepo{db: db}
}

func (r *interviewRepo) Create(ctx context.Context, interview *models.Interview) error {
	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO interviews
			(id, room_name, interviewer_id, interviewer_name, candidate_id, candidate_name, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		interview.ID,
		interview.RoomName,
		interview.InterviewerID,
		interview.InterviewerName,
		interview.CandidateID,
		interview.CandidateName,
		interview.Status,
		interview.CreatedAt,
	)

	return err
}

func (r *interviewRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Interview, error) {
	var interview models.Interview

	err := r.db.GetContext(ctx, &interview, "SELECT * FROM interviews WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInterviewNotFound
	}
	if err != nil {
		return nil, err
	}

	return &interview, nil
}

func (r *interviewRepo) GetByRoomName(ctx context.Context, roomName string) (*models.Interview, error) {
	var interview models.Interview

	err := r.db.GetContext(ctx, &interview, "SELECT * FROM interviews WHERE room_name = $1", roomName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInterviewNotFound
	}
	if err != nil {
		return nil, err
	}

	return &interview, nil
}

func (r *interviewRepo) MarkLive(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(
		ctx,
		"UPDATE interviews SET status = $1, started_at = COALESCE(started_at, $2) WHERE id = $3 AND status != $4",
		models.InterviewStatusLive,
		time.Now(),
		id,
		models.InterviewStatusCompleted,
	)

	return err
}

func (r *interviewRepo) MarkCompleted(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(
		ctx,
		"UPDATE interviews SET status = $1, completed_at = $2 WHERE id = $3",
		models.InterviewStatusCompleted,
		time.Now(),
		id,
	)

	return err
}
