package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/travelreviews/webclient/internal/core/domain"
)

// Context keys set by Auth.
const (
	ContextUserID = "user_id"
	ContextRole   = "role"
)

// Claims is the payload of an access token issued by the dev API.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// SignToken issues an HS256 access token for subject valid for ttl.
func SignToken(secret, subject string, role domain.Role, now time.Time, ttl time.Duration) (string, error) {
	claims := Claims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func unauthorized(code, message string) error {
	return &domain.APIError{Status: http.StatusUnauthorized, Code: code, Message: message}
}

// bearer extracts the token from an "Authorization: Bearer <token>" header.
func bearer(header string) (string, error) {
	if header == "" {
		return "", unauthorized("NO_TOKEN", "missing authorization header")
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
		return "", unauthorized("INVALID_TOKEN", "invalid authorization header")
	}
	return strings.TrimSpace(token), nil
}

// Auth validates the bearer JWT and stores its subject and role on the context.
func Auth(jwtSecret string) echo.MiddlewareFunc {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	key := func(*jwt.Token) (interface{}, error) { return []byte(jwtSecret), nil }

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, err := bearer(c.Request().Header.Get(echo.HeaderAuthorization))
			if err != nil {
				return err
			}

			var claims Claims
			tkn, err := parser.ParseWithClaims(raw, &claims, key)
			switch {
			case errors.Is(err, jwt.ErrTokenExpired):
				return unauthorized("TOKEN_EXPIRED", "token has expired")
			case err != nil || !tkn.Valid:
				return unauthorized("INVALID_TOKEN", "invalid token")
			case claims.Subject == "":
				return unauthorized("INVALID_TOKEN", "token missing subject")
			}

			c.Set(ContextUserID, claims.Subject)
			c.Set(ContextRole, claims.Role)
			return next(c)
		}
	}
}
