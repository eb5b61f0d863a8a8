package jwt

import (
	"errors"
	"strings"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func newTestIssuer(t *testing.T, clock *fakeClock, opts ...Option) *Issuer {
	t.Helper()
	opts = append(opts, WithClock(clock.Now))
	iss, err := NewIssuer([]byte("test-secret"), time.Hour, opts...)
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}
	return iss
}

func TestNewIssuerRejectsEmptySecret(t *testing.T) {
	_, err := NewIssuer(nil, time.Hour)
	if !errors.Is(err, ErrEmptySecret) {
		t.Fatalf("expected ErrEmptySecret, got %v", err)
	}
	_, err = NewIssuer([]byte(""), time.Hour)
	if !errors.Is(err, ErrEmptySecret) {
		t.Fatalf("expected ErrEmptySecret, got %v", err)
	}
}

func TestCreateAndValidate(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	iss := newTestIssuer(t, clock)

	token, err := iss.Create("subject-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	sub, err := iss.Validate(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if sub != "subject-1" {
		t.Fatalf("expected subject-1 got %s", sub)
	}
}

func TestValidateExpiryBoundary(t *testing.T) {
	issuedAt := time.Unix(1_700_000_000, 0)
	clock := &fakeClock{now: issuedAt}
	iss := newTestIssuer(t, clock)

	token, err := iss.Create("subject-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	clock.now = issuedAt.Add(time.Hour - time.Second)
	if _, err := iss.Validate(token); err != nil {
		t.Fatalf("expected token valid one second before exp, got %v", err)
	}

	clock.now = issuedAt.Add(time.Hour)
	if _, err := iss.Validate(token); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired exactly at exp, got %v", err)
	}

	clock.now = issuedAt.Add(2 * time.Hour)
	if _, err := iss.Validate(token); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired after exp, got %v", err)
	}
}

func TestValidateWithLeeway(t *testing.T) {
	issuedAt := time.Unix(1_700_000_000, 0)
	clock := &fakeClock{now: issuedAt}
	iss := newTestIssuer(t, clock, WithLeeway(30*time.Second))

	token, err := iss.Create("subject-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	clock.now = issuedAt.Add(time.Hour + 10*time.Second)
	if _, err := iss.Validate(token); err != nil {
		t.Fatalf("expected leeway to accept token, got %v", err)
	}
}

func TestValidateBadSignature(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	iss := newTestIssuer(t, clock)
	other, err := NewIssuer([]byte("another-secret"), time.Hour, WithClock(clock.Now))
	if err != nil {
		t.Fatal(err)
	}

	token, err := other.Create("subject-1")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := iss.Validate(token); !errors.Is(err, ErrBadSignature) {
		t.Fatalf("expected ErrBadSignature, got %v", err)
	}
}

func TestValidateRejectsOtherAlgorithms(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	iss := newTestIssuer(t, clock)

	claims := gojwt.RegisteredClaims{
		Subject:   "subject-1",
		ExpiresAt: gojwt.NewNumericDate(clock.now.Add(time.Hour)),
	}
	none, err := gojwt.NewWithClaims(gojwt.SigningMethodNone, claims).SignedString(gojwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := iss.Validate(none); !errors.Is(err, ErrBadSignature) {
		t.Fatalf("expected alg none to be rejected as bad signature, got %v", err)
	}

	hs512, err := gojwt.NewWithClaims(gojwt.SigningMethodHS512, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := iss.Validate(hs512); !errors.Is(err, ErrBadSignature) {
		t.Fatalf("expected HS512 to be rejected, got %v", err)
	}
}

func TestValidateMalformed(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	iss := newTestIssuer(t, clock)

	for _, token := range []string{"", "abc", "a.b", "a.b.c", strings.Repeat(".", 5)} {
		if _, err := iss.Validate(token); !errors.Is(err, ErrMalformed) {
			t.Fatalf("token %q: expected ErrMalformed, got %v", token, err)
		}
	}
}

func TestValidateRequiresExpiry(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	iss := newTestIssuer(t, clock)

	token, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, gojwt.RegisteredClaims{Subject: "s"}).
		SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := iss.Validate(token); err == nil {
		t.Fatalf("expected token without exp to be rejected")
	}
}
