package appctx

import (
	"context"

	"github.com/mockmate/interviewroom/internal/application/token"
)

type ctxKey string

const participantKey ctxKey = "participant"

// WithParticipant stores the verified room token claims in the context.
func WithParticipant(ctx context.Context, claims *token.Claims) context.Context {
	return context.WithValue(ctx, participantKey, claims)
}

// Participant extracts the room token claims from the context.
func Participant(ctx context.Context) (*token.Claims, bool) {
	claims, ok := ctx.Value(participantKey).(*token.Claims)
	return claims, ok
}
