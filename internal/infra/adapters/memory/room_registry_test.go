package memory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mockmate/interviewroom/internal/domain"
	"github.com/mockmate/interviewroom/internal/infra/adapters/memory"
)

func TestRoomRegistry_TwoParticipantCap(t *testing.T) {
	registry := memory.NewRoomRegistry()

	interviewer := &domain.Peer{Identity: "alice"}
	candidate := &domain.Peer{Identity: "bob"}
	intruder := &domain.Peer{Identity: "mallory"}

	require.NoError(t, registry.Add("interview-1", "alice", interviewer))
	require.NoError(t, registry.Add("interview-1", "bob", candidate))

	err := registry.Add("interview-1", "mallory", intruder)
	require.ErrorIs(t, err, memory.ErrRoomFull)

	assert.ElementsMatch(t, []string{"alice", "bob"}, registry.Participants("interview-1"))
}

func TestRoomRegistry_RejoinReplacesPeer(t *testing.T) {
	registry := memory.NewRoomRegistry()

	require.NoError(t, registry.Add("interview-1", "alice", &domain.Peer{Identity: "alice"}))
	require.NoError(t, registry.Add("interview-1", "bob", &domain.Peer{Identity: "bob"}))

	// A participant reconnecting replaces their own entry even in a full room.
	fresh := &domain.Peer{Identity: "bob"}
	require.NoError(t, registry.Add("interview-1", "bob", fresh))

	got, ok := registry.Get("interview-1", "bob")
	require.True(t, ok)
	assert.Same(t, fresh, got)
}

func TestRoomRegistry_Counterpart(t *testing.T) {
	registry := memory.NewRoomRegistry()

	interviewer := &domain.Peer{Identity: "alice"}
	require.NoError(t, registry.Add("interview-1", "alice", interviewer))

	_, ok := registry.Counterpart("interview-1", "alice")
	assert.False(t, ok, "no counterpart while alone in the room")

	candidate := &domain.Peer{Identity: "bob"}
	require.NoError(t, registry.Add("interview-1", "bob", candidate))

	got, ok := registry.Counterpart("interview-1", "bob")
	require.True(t, ok)
	assert.Same(t, interviewer, got)
}

func TestRoomRegistry_RemoveFreesSlot(t *testing.T) {
	registry := memory.NewRoomRegistry()

	require.NoError(t, registry.Add("interview-1", "alice", &domain.Peer{Identity: "alice"}))
	require.NoError(t, registry.Add("interview-1", "bob", &domain.Peer{Identity: "bob"}))

	registry.Remove("interview-1", "bob")

	require.NoError(t, registry.Add("interview-1", "carol", &domain.Peer{Identity: "carol"}))
	assert.ElementsMatch(t, []string{"alice", "carol"}, registry.Participants("interview-1"))

	// Removing an unknown identity or room is a no-op.
	registry.Remove("interview-1", "nobody")
	registry.Remove("no-such-room", "alice")
}

func TestRoomRegistry_RoomsAreIsolated(t *testing.T) {
	registry := memory.NewRoomRegistry()

	require.NoError(t, registry.Add("interview-1", "alice", &domain.Peer{Identity: "alice"}))
	require.NoError(t, registry.Add("interview-2", "alice", &domain.Peer{Identity: "alice"}))
	require.NoError(t, registry.Add("interview-2", "bob", &domain.Peer{Identity: "bob"}))

	require.NoError(t, registry.Add("interview-1", "bob", &domain.Peer{Identity: "bob"}))
	assert.Len(t, registry.Participants("interview-1"), 2)
	assert.Len(t, registry.Participants("interview-2"), 2)
}
