package token_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mockmate/interviewroom/internal/application/token"
)

func TestToken_IssueParseRoundTrip(t *testing.T) {
	secret := []byte("test-secret")

	raw, err := token.Issue(secret, "interview-42", "interview-room-42", "alice", "Alice", token.RoleInterviewer, time.Hour)
	require.NoError(t, err)

	claims, err := token.Parse(secret, raw)
	require.NoError(t, err)

	assert.Equal(t, "interview-42", claims.Subject)
	assert.Equal(t, "interview-room-42", claims.RoomName)
	assert.Equal(t, "alice", claims.Identity)
	assert.Equal(t, "Alice", claims.DisplayName)
	assert.Equal(t, token.RoleInterviewer, claims.Role)
	assert.True(t, claims.IsInterviewer())
}

func TestToken_WrongSecretRejected(t *testing.T) {
	raw, err := token.Issue([]byte("right"), "interview-42", "room", "bob", "Bob", token.RoleCandidate, time.Hour)
	require.NoError(t, err)

	_, err = token.Parse([]byte("wrong"), raw)
	require.Error(t, err)
}

func TestToken_ExpiredRejected(t *testing.T) {
	secret := []byte("test-secret")

	raw, err := token.Issue(secret, "interview-42", "room", "bob", "Bob", token.RoleCandidate, -time.Minute)
	require.NoError(t, err)

	_, err = token.Parse(secret, raw)
	require.Error(t, err)
}

func TestToken_GarbageRejected(t *testing.T) {
	_, err := token.Parse([]byte("secret"), "not.a.token")
	require.Error(t, err)
}

func TestToken_CandidateIsNotInterviewer(t *testing.T) {
	secret := []byte("test-secret")

	raw, err := token.Issue(secret, "interview-42", "room", "bob", "Bob", token.RoleCandidate, time.Hour)
	require.NoError(t, err)

	claims, err := token.Parse(secret, raw)
	require.NoError(t, err)
	assert.False(t, claims.IsInterviewer())
}
