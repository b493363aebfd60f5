package middleware

import (
	"context"
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/totegamma/admindata/internal/domain"
	"github.com/totegamma/admindata/internal/present/rest/presenter"
)

var tracer = otel.Tracer("auth")

// SessionVerifier turns a session token into a session.
type SessionVerifier interface {
	Verify(ctx context.Context, token string) (domain.Session, error)
}

type AuthMiddleware struct {
	auth SessionVerifier
}

func NewAuthMiddleware(auth SessionVerifier) *AuthMiddleware {
	return &AuthMiddleware{
		auth: auth,
	}
}

// Identify attaches the session of the requester, if any, to the request
// context. It never rejects a request.
func (s *AuthMiddleware) Identify(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, span := tracer.Start(c.Request().Context(), "Auth.Middleware.Identify")
		defer span.End()

		token := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
		if token == "" {
			if cookie, err := c.Cookie(domain.SessionCookieName); err == nil {
				token = cookie.Value
			}
		}

		if token != "" {
			session, err := s.auth.Verify(ctx, token)
			if err != nil {
				span.RecordError(errors.Wrap(err, "AuthMiddleware.Identify: s.auth.Verify failed"))
			} else {
				ctx = context.WithValue(ctx, domain.SessionCtxKey, session)
				span.SetAttributes(attribute.String("UserId", session.UserID))
			}
		}

		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}

// RequireWriter rejects requests without a session (401) and sessions whose
// role may not write (403).
func (s *AuthMiddleware) RequireWriter(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		session, ok := SessionFrom(c.Request().Context())
		if !ok {
			return presenter.Unauthorized(c, "authentication required")
		}
		if !session.CanWrite() {
			return presenter.Forbidden(c, fmt.Sprintf("role %s may not modify data", session.Role))
		}
		return next(c)
	}
}

func SessionFrom(ctx context.Context) (domain.Session, bool) {
	session, ok := ctx.Value(domain.SessionCtxKey).(domain.Session)
	return session, ok
}

func bearerToken(header string) string {
	split := strings.Split(header, " ")
	if len(split) != 2 || split[0] != "Bearer" {
		return ""
	}
	return split[1]
}
