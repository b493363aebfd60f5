package service

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"github.com/totegamma/admindata/internal/domain"
	"github.com/totegamma/admindata/jwt"
)

var tracer = otel.Tracer("auth")

// AuthService turns session tokens into sessions.
type AuthService struct {
	secret string
}

func NewAuthService(secret string) *AuthService {
	return &AuthService{
		secret: secret,
	}
}

func (s *AuthService) Verify(ctx context.Context, token string) (domain.Session, error) {
	ctx, span := tracer.Start(ctx, "Auth.Service.Verify")
	defer span.End()

	if token == "" {
		return domain.Session{}, domain.UnauthorizedError{}
	}

	claims, err := jwt.Validate(token, s.secret)
	if err != nil {
		span.RecordError(errors.Wrap(err, "jwt validation failed"))
		return domain.Session{}, domain.UnauthorizedError{Message: "invalid session"}
	}

	switch claims.Role {
	case domain.RoleAdmin, domain.RoleEditor, domain.RoleViewer:
	default:
		err := fmt.Errorf("unknown role %q", claims.Role)
		span.RecordError(err)
		return domain.Session{}, domain.UnauthorizedError{Message: "invalid session"}
	}

	return domain.Session{UserID: claims.Subject, Role: claims.Role}, nil
}
