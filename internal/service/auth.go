package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"github.com/SaifuddinSaifee/cmu-housing-app/internal/domain"
)

var tracer = otel.Tracer("auth")

type TokenValidator interface {
	Validate(token string) (string, error)
}

// AuthService turns an Authorization header into a resolved identity.
type AuthService struct {
	tokens   TokenValidator
	resolver *IdentityResolver
}

func NewAuthService(
	tokens TokenValidator,
	resolver *IdentityResolver,
) *AuthService {
	return &AuthService{
		tokens:   tokens,
		resolver: resolver,
	}
}

// Authenticate validates the bearer token and loads its identity. Every
// credential failure is reported as the same Unauthenticated error.
func (s *AuthService) Authenticate(ctx context.Context, header string) (domain.Identity, error) {
	ctx, span := tracer.Start(ctx, "Auth.Service.Authenticate")
	defer span.End()

	token, err := BearerToken(header)
	if err != nil {
		span.RecordError(err)
		return domain.Identity{}, unauthenticated(ctx, err)
	}

	subject, err := s.tokens.Validate(token)
	if err != nil {
		span.RecordError(errors.Wrap(err, "jwt validation failed"))
		return domain.Identity{}, unauthenticated(ctx, err)
	}

	identity, err := s.resolver.Resolve(ctx, subject)
	if errors.Is(err, domain.ErrNotFound) {
		span.RecordError(errors.Wrap(err, "token subject no longer exists"))
		return domain.Identity{}, unauthenticated(ctx, err)
	}
	if err != nil {
		span.RecordError(errors.Wrap(err, "failed to resolve identity"))
		return domain.Identity{}, err
	}
	return identity, nil
}

// RestrictTo fails with Forbidden unless identity holds one of roles.
func (s *AuthService) RestrictTo(identity domain.Identity, roles ...domain.Role) error {
	if identity.HasRole(roles...) {
		return nil
	}
	return domain.NewForbiddenError("you do not have permission to perform this action")
}

// BearerToken extracts the token from "Bearer <token>".
func BearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", errors.New("missing authorization header")
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, domain.BearerScheme) {
		return "", errors.New("authorization scheme is not bearer")
	}
	token = strings.TrimSpace(token)
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", errors.New("malformed bearer token")
	}
	return token, nil
}

func unauthenticated(ctx context.Context, cause error) error {
	slog.DebugContext(ctx, "authentication rejected", slog.String("module", "auth"), slog.String("error", cause.Error()))
	return &domain.Error{
		Kind:    domain.KindUnauthenticated,
		Message: "you are not logged in, please log in to get access",
		Err:     cause,
	}
}
