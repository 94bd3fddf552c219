package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Role of a participant inside an interview room.
type Role string

const (
	RoleInterviewer Role = "interviewer"
	RoleCandidate   Role = "candidate"
)

// Claims is the room token payload handed out by the join endpoint.
// Subject carries the interview id.
type Claims struct {
	RoomName    string `json:"room_name"`
	Identity    string `json:"identity"`
	DisplayName string `json:"display_name"`
	Role        Role   `json:"role"`

	jwt.RegisteredClaims
}

func (c *Claims) IsInterviewer() bool {
	return c.Role == RoleInterviewer
}

// Issue signs a short-lived room token.
func Issue(secret []byte, interviewID, roomName, identity, displayName string, role Role, ttl time.Duration) (string, error) {
	claims := &Claims{
		RoomName:    roomName,
		Identity:    identity,
		DisplayName: displayName,
		Role:        role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   interviewID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(secret)
}

// Parse verifies the signature and expiry and returns the claims.
func Parse(secret []byte, raw string) (*Claims, error) {
	t, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (any, error) {
		return secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse room token: %w", err)
	}

	claims, ok := t.Claims.(*Claims)
	if !ok || !t.Valid {
		return nil, fmt.Errorf("invalid room token")
	}

	return claims, nil
}
