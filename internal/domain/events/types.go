package events

import (
	"encoding/json"

	"github.com/pion/webrtc/v4"
)

// Message is the generic signaling envelope.
type Message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// SdpEvent carries an SDP offer or answer.
type SdpEvent struct {
	SDP string `json:"sdp"`
}

// IceCandidateEvent carries one trickled ICE candidate.
type IceCandidateEvent struct {
	Candidate webrtc.ICECandidateInit `json:"candidate"`
}

// ErrorEvent is sent to a participant when signaling fails.
type ErrorEvent struct {
	Message string `json:"message"`
}

// PeerEvent announces the counterpart joining or leaving the room.
type PeerEvent struct {
	Identity string `json:"identity"`
}

// Data topics relayed between the two participants. The data channel
// label is the topic name.
const (
	TopicCode       = "code-update"
	TopicLanguage   = "language-update"
	TopicWhiteboard = "whiteboard-update"
	TopicControl    = "control-event"
)

// ControlInterviewCompleted is the one-shot control payload broadcast by
// the interviewer once the interview is marked complete server-side.
const ControlInterviewCompleted = "INTERVIEW_COMPLETED"

// Topics lists every relayed data topic.
func Topics() []string {
	return []string{TopicCode, TopicLanguage, TopicWhiteboard, TopicControl}
}
