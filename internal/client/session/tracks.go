package session

import (
	"github.com/pion/webrtc/v4"

	"github.com/mockmate/interviewroom/internal/domain"
)

// RemoteTrack is one subscribed track of the counterpart. No ordering is
// assumed between the audio and video subscriptions of one participant.
type RemoteTrack struct {
	Track       *webrtc.TrackRemote
	Participant string
	Kind        webrtc.RTPCodecType
	Source      domain.TrackSource
}

// key identifies a subscription: one participant publishes at most one
// track per (source, kind) pair.
func (rt RemoteTrack) key() string {
	return rt.Participant + "/" + string(rt.Source) + "/" + rt.Kind.String()
}

func (s *Session) addRemoteTrack(track *webrtc.TrackRemote) {
	if track.Kind() != webrtc.RTPCodecTypeAudio && track.Kind() != webrtc.RTPCodecTypeVideo {
		return
	}

	s.insertRemote(RemoteTrack{
		Track:       track,
		Participant: track.StreamID(),
		Kind:        track.Kind(),
		Source:      domain.TrackSource(track.ID()),
	})
}

// watchRemoteTrack drains RTP until the stream ends, then drops the
// subscription. End of stream is how the counterpart's unpublish reaches us.
func (s *Session) watchRemoteTrack(track *webrtc.TrackRemote) {
	for {
		if _, _, err := track.ReadRTP(); err != nil {
			s.removeRemote(RemoteTrack{
				Participant: track.StreamID(),
				Kind:        track.Kind(),
				Source:      domain.TrackSource(track.ID()),
			})

			return
		}
	}
}

func (s *Session) insertRemote(rt RemoteTrack) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.remote {
		if existing.key() == rt.key() {
			return
		}
	}

	s.remote = append(s.remote, rt)
}

// removeRemote removes by subscription identity. Removing an unknown track
// is a no-op, so subscribe/unsubscribe pairs leave the set exactly as it was.
func (s *Session) removeRemote(rt RemoteTrack) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.remote[:0]

	for _, existing := range s.remote {
		if existing.key() != rt.key() {
			kept = append(kept, existing)
		}
	}

	s.remote = kept
}

func (s *Session) removeParticipantTracks(participant string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.remote[:0]

	for _, existing := range s.remote {
		if existing.Participant != participant {
			kept = append(kept, existing)
		}
	}

	s.remote = kept
}

// RemoteTracks returns a snapshot of the live remote track set.
func (s *Session) RemoteTracks() []RemoteTrack {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]RemoteTrack, len(s.remote))
	copy(out, s.remote)

	return out
}

// PrimaryVideoTrack picks the video track the display should feature:
// screen share wins over camera when both are live.
func (s *Session) PrimaryVideoTrack() (RemoteTrack, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var camera RemoteTrack
	var haveCamera bool

	for _, rt := range s.remote {
		if rt.Kind != webrtc.RTPCodecTypeVideo {
			continue
		}

		if rt.Source == domain.SourceScreen {
			return rt, true
		}

		if rt.Source == domain.SourceCamera && !haveCamera {
			camera = rt
			haveCamera = true
		}
	}

	return camera, haveCamera
}
