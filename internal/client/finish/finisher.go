package finish

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mockmate/interviewroom/internal/application/constant"
	"github.com/mockmate/interviewroom/internal/domain/events"
)

type State int

const (
	StateLive State = iota
	StateFinishing
	StateEnded
)

type Role string

const (
	RoleInterviewer Role = "interviewer"
	RoleCandidate   Role = "candidate"
)

var (
	ErrNotInterviewer   = errors.New("only the interviewer may finish the interview")
	ErrFinishInProgress = errors.New("finish already in progress")
	ErrAlreadyEnded     = errors.New("interview already ended")
)

// Completer marks the interview complete server-side.
type Completer interface {
	CompleteInterview(ctx context.Context, interviewID string) error
}

// ControlSender broadcasts on the control topic.
type ControlSender interface {
	Send(topic, text string) error
}

// Finisher coordinates ending the interview for both parties. The
// interviewer walks Live → Finishing → Ended; the candidate jumps straight
// to Ended on receipt of the control signal. The control signal is sent only
// after the completion call succeeded, never before: otherwise the candidate
// would be sent to feedback for an interview the backend still considers open.
type Finisher struct {
	interviewID   string
	isInterviewer bool

	completer      Completer
	sender         ControlSender
	closeTransport func()
	onEnded        func(Role)

	mu    sync.Mutex
	state State
}

func NewFinisher(
	interviewID string,
	isInterviewer bool,
	completer Completer,
	sender ControlSender,
	closeTransport func(),
	onEnded func(Role),
) *Finisher {
	return &Finisher{
		interviewID:    interviewID,
		isInterviewer:  isInterviewer,
		completer:      completer,
		sender:         sender,
		closeTransport: closeTransport,
		onEnded:        onEnded,
	}
}

func (f *Finisher) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.state
}

// Finish ends the interview. Callers must have taken an explicit user
// confirmation first: the action is irreversible and affects both parties.
// On a failed completion call the session stays live and usable; the caller
// may retry.
func (f *Finisher) Finish(ctx context.Context) error {
	if !f.isInterviewer {
		return ErrNotInterviewer
	}

	f.mu.Lock()
	switch f.state {
	case StateEnded:
		f.mu.Unlock()
		return ErrAlreadyEnded
	case StateFinishing:
		f.mu.Unlock()
		return ErrFinishInProgress
	}
	f.state = StateFinishing
	f.mu.Unlock()

	if err := f.completer.CompleteInterview(ctx, f.interviewID); err != nil {
		f.mu.Lock()
		f.state = StateLive
		f.mu.Unlock()

		return fmt.Errorf("complete interview: %w", err)
	}

	// Best-effort one-shot broadcast; the interviewer's disconnect below
	// ends the shared session even if the candidate misses it.
	if err := f.sender.Send(events.TopicControl, events.ControlInterviewCompleted); err != nil {
		slog.Warn("send control signal", slog.Any(constant.Error, err))
	}

	f.mu.Lock()
	f.state = StateEnded
	f.mu.Unlock()

	f.closeTransport()

	if f.onEnded != nil {
		f.onEnded(RoleInterviewer)
	}

	return nil
}

// HandleControl reacts to the counterpart's control broadcast. The candidate
// does not disconnect here; the interviewer's disconnect already ends the
// shared session at the transport.
func (f *Finisher) HandleControl(payload string) {
	if payload != events.ControlInterviewCompleted {
		slog.Warn("unknown control payload", slog.String("payload", payload))
		return
	}

	f.mu.Lock()
	if f.state == StateEnded {
		f.mu.Unlock()
		return
	}
	f.state = StateEnded
	f.mu.Unlock()

	if f.onEnded != nil {
		f.onEnded(RoleCandidate)
	}
}
