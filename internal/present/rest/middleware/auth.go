package middleware

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/SaifuddinSaifee/cmu-housing-app/internal/domain"
	"github.com/SaifuddinSaifee/cmu-housing-app/internal/present/rest/presenter"
	"github.com/SaifuddinSaifee/cmu-housing-app/internal/service"
)

var tracer = otel.Tracer("auth")

type AuthMiddleware struct {
	auth *service.AuthService
}

func NewAuthMiddleware(auth *service.AuthService) *AuthMiddleware {
	return &AuthMiddleware{auth: auth}
}

// Authenticate rejects the request unless it carries a valid bearer token
// for an existing identity, which is then attached to the request.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, span := tracer.Start(c.Request().Context(), "Auth.Middleware.Authenticate")
		defer span.End()

		identity, err := m.auth.Authenticate(ctx, c.Request().Header.Get(domain.AuthorizationHeader))
		if err != nil {
			span.RecordError(errors.Wrap(err, "AuthMiddleware.Authenticate: s.auth.Authenticate failed"))
			return presenter.Error(c, err)
		}

		ctx = context.WithValue(ctx, domain.RequesterIdentityCtxKey, identity)
		ctx = context.WithValue(ctx, domain.RequesterIdCtxKey, identity.ID)
		ctx = context.WithValue(ctx, domain.RequesterRoleCtxKey, identity.Role)
		span.SetAttributes(
			attribute.String("RequesterId", identity.ID),
			attribute.String("RequesterRole", string(identity.Role)),
		)

		c.SetRequest(c.Request().WithContext(ctx))
		c.Set(domain.RequesterIdentityKey, identity)
		return next(c)
	}
}

// RestrictTo must run after Authenticate.
func (m *AuthMiddleware) RestrictTo(roles ...domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, ok := Requester(c)
			if !ok {
				return presenter.Error(c, domain.ErrUnauthenticated)
			}
			if err := m.auth.RestrictTo(identity, roles...); err != nil {
				return presenter.Error(c, err)
			}
			return next(c)
		}
	}
}

// Requester returns the identity attached by Authenticate.
func Requester(c echo.Context) (domain.Identity, bool) {
	identity, ok := c.Get(domain.RequesterIdentityKey).(domain.Identity)
	return identity, ok
}
