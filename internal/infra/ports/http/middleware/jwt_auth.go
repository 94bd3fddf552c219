package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/mockmate/interviewroom/internal/application/token"
	"github.com/mockmate/interviewroom/internal/infra/appctx"
)

// RoomTokenMiddleware verifies the room token issued by the join endpoint.
// Browsers cannot set headers on WebSocket dials, so the token is also
// accepted as a query parameter.
func RoomTokenMiddleware(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := bearerToken(c)
			if raw == "" {
				raw = c.QueryParam("token")
			}

			if raw == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing room token"})
			}

			claims, err := token.Parse([]byte(secret), raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid or expired room token"})
			}

			c.SetRequest(
				c.Request().WithContext(
					appctx.WithParticipant(c.Request().Context(), claims),
				),
			)

			return next(c)
		}
	}
}

func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return ""
	}

	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}

	return strings.TrimPrefix(header, prefix)
}
