package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/mockmate/interviewroom/internal/infra/adapters/postgres/repository"
	"github.com/mockmate/interviewroom/internal/infra/ports/http/dto"
	"github.com/mockmate/interviewroom/internal/usecase"
)

type InterviewHandler struct {
	interviewUsecase usecase.InterviewUsecase
}

func NewInterviewHandler(interviewUsecase usecase.InterviewUsecase) *InterviewHandler {
	return &InterviewHandler{interviewUsecase: interviewUsecase}
}

func (h *InterviewHandler) Create(c echo.Context) error {
	var req dto.CreateInterviewRequest

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	interview, err := h.interviewUsecase.CreateInterview(
		c.Request().Context(),
		req.InterviewerID,
		req.InterviewerName,
		req.CandidateID,
		req.CandidateName,
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "create interview"})
	}

	return c.JSON(http.StatusCreated, dto.NewInterviewResponse(interview))
}

func (h *InterviewHandler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid interview id"})
	}

	interview, err := h.interviewUsecase.GetInterview(c.Request().Context(), id)
	if errors.Is(err, repository.ErrInterviewNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "interview not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "get interview"})
	}

	return c.JSON(http.StatusOK, dto.NewInterviewResponse(interview))
}

// Join hands out the one-shot connection details for the room.
func (h *InterviewHandler) Join(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid interview id"})
	}

	var req dto.JoinRequest

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	details, err := h.interviewUsecase.Join(c.Request().Context(), id, req.ParticipantID)

	switch {
	case errors.Is(err, repository.ErrInterviewNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": "interview not found"})
	case errors.Is(err, usecase.ErrNotParticipant):
		return c.JSON(http.StatusForbidden, map[string]string{"error": "not a participant"})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "join interview"})
	}

	return c.JSON(http.StatusOK, details)
}

// Complete marks the interview finished. The control signal toward the
// candidate is the caller's responsibility and must follow a success here.
func (h *InterviewHandler) Complete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid interview id"})
	}

	var req dto.CompleteRequest

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	err = h.interviewUsecase.Complete(c.Request().Context(), id, req.ParticipantID)

	switch {
	case errors.Is(err, repository.ErrInterviewNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": "interview not found"})
	case errors.Is(err, usecase.ErrNotParticipant):
		return c.JSON(http.StatusForbidden, map[string]string{"error": "not a participant"})
	case errors.Is(err, usecase.ErrNotInterviewer):
		return c.JSON(http.StatusForbidden, map[string]string{"error": "only the interviewer may complete"})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "complete interview"})
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "completed"})
}
