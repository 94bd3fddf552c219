package session

import (
	"testing"

	"github.com/pion/webrtc/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mockmate/interviewroom/internal/domain"
)

func remoteTrack(participant string, kind webrtc.RTPCodecType, source domain.TrackSource) RemoteTrack {
	return RemoteTrack{Participant: participant, Kind: kind, Source: source}
}

func TestTracks_SubscribeUnsubscribe(t *testing.T) {
	s := New("alice", Options{})

	mic := remoteTrack("bob", webrtc.RTPCodecTypeAudio, domain.SourceMicrophone)
	cam := remoteTrack("bob", webrtc.RTPCodecTypeVideo, domain.SourceCamera)

	s.insertRemote(mic)
	s.insertRemote(cam)
	require.Len(t, s.RemoteTracks(), 2)

	// A duplicate subscription of the same (participant, source, kind) is
	// dropped, not appended.
	s.insertRemote(cam)
	require.Len(t, s.RemoteTracks(), 2)

	s.removeRemote(cam)
	tracks := s.RemoteTracks()
	require.Len(t, tracks, 1)
	assert.Equal(t, domain.SourceMicrophone, tracks[0].Source)

	// Removing an already removed or unknown track is a no-op.
	s.removeRemote(cam)
	s.removeRemote(remoteTrack("carol", webrtc.RTPCodecTypeVideo, domain.SourceCamera))
	assert.Len(t, s.RemoteTracks(), 1)
}

func TestTracks_RemoveParticipant(t *testing.T) {
	s := New("alice", Options{})

	s.insertRemote(remoteTrack("bob", webrtc.RTPCodecTypeAudio, domain.SourceMicrophone))
	s.insertRemote(remoteTrack("bob", webrtc.RTPCodecTypeVideo, domain.SourceCamera))
	s.insertRemote(remoteTrack("bob", webrtc.RTPCodecTypeVideo, domain.SourceScreen))

	s.removeParticipantTracks("bob")
	assert.Empty(t, s.RemoteTracks())

	s.removeParticipantTracks("bob")
	assert.Empty(t, s.RemoteTracks())
}

func TestTracks_PrimaryVideoPrefersScreen(t *testing.T) {
	s := New("alice", Options{})

	_, ok := s.PrimaryVideoTrack()
	assert.False(t, ok, "no video yet")

	s.insertRemote(remoteTrack("bob", webrtc.RTPCodecTypeAudio, domain.SourceMicrophone))

	_, ok = s.PrimaryVideoTrack()
	assert.False(t, ok, "audio does not count as a primary video candidate")

	s.insertRemote(remoteTrack("bob", webrtc.RTPCodecTypeVideo, domain.SourceCamera))

	primary, ok := s.PrimaryVideoTrack()
	require.True(t, ok)
	assert.Equal(t, domain.SourceCamera, primary.Source)

	// Screen share takes over while live and yields back when it ends.
	s.insertRemote(remoteTrack("bob", webrtc.RTPCodecTypeVideo, domain.SourceScreen))

	primary, ok = s.PrimaryVideoTrack()
	require.True(t, ok)
	assert.Equal(t, domain.SourceScreen, primary.Source)

	s.removeRemote(remoteTrack("bob", webrtc.RTPCodecTypeVideo, domain.SourceScreen))

	primary, ok = s.PrimaryVideoTrack()
	require.True(t, ok)
	assert.Equal(t, domain.SourceCamera, primary.Source)
}
