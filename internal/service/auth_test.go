package service

import (
	"context"
	"errors"
	"testing"

	"github.com/SaifuddinSaifee/cmu-housing-app/internal/domain"
)

type mockFinder struct {
	partitions map[domain.Role]map[string]domain.Identity
	calls      []domain.Role
	err        error
}

func (m *mockFinder) FindByID(ctx context.Context, role domain.Role, id string) (domain.Identity, error) {
	m.calls = append(m.calls, role)
	if m.err != nil {
		return domain.Identity{}, m.err
	}
	if identity, ok := m.partitions[role][id]; ok {
		return identity, nil
	}
	return domain.Identity{}, domain.NewNotFoundError(string(role))
}

type mockValidator struct {
	subject string
	err     error
}

func (m *mockValidator) Validate(token string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.subject, nil
}

func newFinder() *mockFinder {
	return &mockFinder{partitions: map[domain.Role]map[string]domain.Identity{
		domain.RoleApplicant:     {"app-1": {ID: "app-1", Name: "Ann"}},
		domain.RoleOwner:         {"own-1": {ID: "own-1", Name: "Olive"}},
		domain.RoleAdministrator: {"adm-1": {ID: "adm-1", Name: "Ada"}},
	}}
}

func TestResolveEachPartition(t *testing.T) {
	resolver := NewIdentityResolver(newFinder())
	cases := map[string]domain.Role{
		"app-1": domain.RoleApplicant,
		"own-1": domain.RoleOwner,
		"adm-1": domain.RoleAdministrator,
	}
	for subject, role := range cases {
		identity, err := resolver.Resolve(context.Background(), subject)
		if err != nil {
			t.Fatalf("%s: %v", subject, err)
		}
		if identity.ID != subject || identity.Role != role {
			t.Fatalf("%s: expected role %s got %+v", subject, role, identity)
		}
	}
}

func TestResolveIdCollisionNeverWidensPrivileges(t *testing.T) {
	finder := newFinder()
	finder.partitions[domain.RoleAdministrator]["app-1"] = domain.Identity{ID: "app-1", Name: "Shadow"}
	finder.partitions[domain.RoleOwner]["app-1"] = domain.Identity{ID: "app-1", Name: "Shadow"}

	identity, err := NewIdentityResolver(finder).Resolve(context.Background(), "app-1")
	if err != nil {
		t.Fatal(err)
	}
	if identity.Role != domain.RoleApplicant || identity.Name != "Ann" {
		t.Fatalf("expected the applicant partition to win, got %+v", identity)
	}
	if len(finder.calls) != 1 {
		t.Fatalf("expected probing to stop at the first match, got %v", finder.calls)
	}
}

func TestResolveProbeOrder(t *testing.T) {
	finder := newFinder()
	_, err := NewIdentityResolver(finder).Resolve(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found got %v", err)
	}
	want := []domain.Role{domain.RoleApplicant, domain.RoleOwner, domain.RoleAdministrator}
	if len(finder.calls) != len(want) {
		t.Fatalf("unexpected probes %v", finder.calls)
	}
	for i := range want {
		if finder.calls[i] != want[i] {
			t.Fatalf("probe %d: expected %s got %s", i, want[i], finder.calls[i])
		}
	}
}

func TestResolveStoreFailureIsNotNotFound(t *testing.T) {
	finder := newFinder()
	finder.err = errors.New("connection refused")
	_, err := NewIdentityResolver(finder).Resolve(context.Background(), "app-1")
	if err == nil || errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected store failure to propagate, got %v", err)
	}
}

func TestAuthenticate(t *testing.T) {
	svc := NewAuthService(&mockValidator{subject: "own-1"}, NewIdentityResolver(newFinder()))
	identity, err := svc.Authenticate(context.Background(), "Bearer token-value")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if identity.ID != "own-1" || identity.Role != domain.RoleOwner {
		t.Fatalf("unexpected identity %+v", identity)
	}
}

func TestAuthenticateFailuresCollapse(t *testing.T) {
	cases := []struct {
		name      string
		header    string
		validator *mockValidator
	}{
		{"missing header", "", &mockValidator{subject: "app-1"}},
		{"wrong scheme", "Basic abc", &mockValidator{subject: "app-1"}},
		{"empty token", "Bearer ", &mockValidator{subject: "app-1"}},
		{"extra parts", "Bearer a b", &mockValidator{subject: "app-1"}},
		{"invalid token", "Bearer x", &mockValidator{err: errors.New("jwt is expired")}},
		{"deleted identity", "Bearer x", &mockValidator{subject: "gone"}},
	}
	var message string
	for _, c := range cases {
		svc := NewAuthService(c.validator, NewIdentityResolver(newFinder()))
		_, err := svc.Authenticate(context.Background(), c.header)
		if !errors.Is(err, domain.ErrUnauthenticated) {
			t.Fatalf("%s: expected unauthenticated got %v", c.name, err)
		}
		var derr *domain.Error
		if !errors.As(err, &derr) {
			t.Fatalf("%s: expected domain error", c.name)
		}
		if message != "" && derr.Message != message {
			t.Fatalf("%s: expected uniform message, got %q", c.name, derr.Message)
		}
		message = derr.Message
	}
}

func TestRestrictTo(t *testing.T) {
	svc := NewAuthService(&mockValidator{}, NewIdentityResolver(newFinder()))
	owner := domain.Identity{ID: "own-1", Role: domain.RoleOwner}
	applicant := domain.Identity{ID: "app-1", Role: domain.RoleApplicant}

	if err := svc.RestrictTo(owner, domain.RoleOwner); err != nil {
		t.Fatalf("expected owner to pass, got %v", err)
	}
	if err := svc.RestrictTo(applicant, domain.RoleOwner); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if err := svc.RestrictTo(applicant, domain.RoleOwner, domain.RoleApplicant); err != nil {
		t.Fatalf("expected applicant to pass a multi-role list, got %v", err)
	}
}

func TestBearerToken(t *testing.T) {
	token, err := BearerToken("bearer abc.def.ghi")
	if err != nil || token != "abc.def.ghi" {
		t.Fatalf("unexpected %q %v", token, err)
	}
}
