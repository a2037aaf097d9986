package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/anonto42/social-connect/backend/internal/auth"
	"github.com/labstack/echo/v4"
)

// TokenHeader is the header carrying the identity token. Authorization:
// Bearer is accepted as a fallback.
const TokenHeader = "x-auth-token"

// UserIDKey is the echo context key holding the authenticated user id.
const UserIDKey = "userID"

// TokenVerifier resolves a token to a user id.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// JWTAuthMiddleware rejects requests without a valid token before the
// wrapped handler runs and exposes the user id on the request context.
func JWTAuthMiddleware(tokens TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString, err := tokenFromRequest(c.Request())
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "No token, authorization denied")
			}

			userID, err := tokens.Verify(tokenString)
			if err != nil {
				if errors.Is(err, auth.ErrTokenExpired) {
					return echo.NewHTTPError(http.StatusUnauthorized, "Token has expired")
				}
				return echo.NewHTTPError(http.StatusUnauthorized, "Token is not valid")
			}

			req := c.Request()
			c.SetRequest(req.WithContext(auth.WithUserID(req.Context(), userID)))
			c.Set(UserIDKey, userID)

			return next(c)
		}
	}
}

func tokenFromRequest(r *http.Request) (string, error) {
	if token := strings.TrimSpace(r.Header.Get(TokenHeader)); token != "" {
		return token, nil
	}

	authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
	if authHeader == "" {
		return "", auth.ErrTokenMissing
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", auth.ErrTokenMissing
	}
	return strings.TrimSpace(parts[1]), nil
}
