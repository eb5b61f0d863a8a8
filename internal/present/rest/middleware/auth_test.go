package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/SaifuddinSaifee/cmu-housing-app/internal/domain"
	"github.com/SaifuddinSaifee/cmu-housing-app/internal/service"
)

type stubValidator struct{}

func (stubValidator) Validate(token string) (string, error) {
	if token == "good" {
		return "own-1", nil
	}
	return "", errors.New("bad token")
}

type stubFinder struct{}

func (stubFinder) FindByID(ctx context.Context, role domain.Role, id string) (domain.Identity, error) {
	if role == domain.RoleOwner && id == "own-1" {
		return domain.Identity{ID: id, Name: "Olive"}, nil
	}
	return domain.Identity{}, domain.NewNotFoundError(string(role))
}

func newMiddleware() *AuthMiddleware {
	return NewAuthMiddleware(service.NewAuthService(stubValidator{}, service.NewIdentityResolver(stubFinder{})))
}

func serve(e *echo.Echo, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(domain.AuthorizationHeader, header)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAuthenticateAttachesIdentity(t *testing.T) {
	m := newMiddleware()
	e := echo.New()
	var seen domain.Identity
	var ctxID any
	var ctxRole any
	e.GET("/", func(c echo.Context) error {
		seen, _ = Requester(c)
		ctxID = c.Request().Context().Value(domain.RequesterIdCtxKey)
		ctxRole = c.Request().Context().Value(domain.RequesterRoleCtxKey)
		return c.NoContent(http.StatusOK)
	}, m.Authenticate)

	rec := serve(e, "Bearer good")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if seen.ID != "own-1" || seen.Role != domain.RoleOwner {
		t.Fatalf("unexpected identity %+v", seen)
	}
	if ctxID != "own-1" || ctxRole != domain.RoleOwner {
		t.Fatalf("unexpected context values %v %v", ctxID, ctxRole)
	}

	if rec := serve(e, "Bearer bad"); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRestrictTo(t *testing.T) {
	m := newMiddleware()
	e := echo.New()
	ok := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	e.GET("/", ok, m.Authenticate, m.RestrictTo(domain.RoleAdministrator))

	if rec := serve(e, "Bearer good"); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}

	unguarded := echo.New()
	unguarded.GET("/", ok, m.RestrictTo(domain.RoleOwner))
	if rec := serve(unguarded, "Bearer good"); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without Authenticate, got %d", rec.Code)
	}
}
