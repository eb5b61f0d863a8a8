package jwt

import (
	"errors"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

var (
	ErrEmptySecret  = errors.New("jwt signing secret is empty")
	ErrExpired      = errors.New("jwt is expired")
	ErrMalformed    = errors.New("jwt is malformed")
	ErrBadSignature = errors.New("jwt signature is invalid")
)

const signingAlgorithm = "HS256"

// Claims carries only the subject and the validity window.
type Claims struct {
	gojwt.RegisteredClaims
}

// Issuer signs and verifies compact HS256 tokens with a process-wide key.
// It holds no mutable state after construction.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	leeway time.Duration
	now    func() time.Time
}

type Option func(*Issuer)

// WithLeeway tolerates clock skew on expiry. The default is zero.
func WithLeeway(d time.Duration) Option {
	return func(i *Issuer) { i.leeway = d }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(i *Issuer) { i.now = now }
}

// NewIssuer fails when the secret is absent; there is no default key.
func NewIssuer(secret []byte, ttl time.Duration, opts ...Option) (*Issuer, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}
	if ttl <= 0 {
		return nil, errors.New("jwt ttl must be positive")
	}
	key := make([]byte, len(secret))
	copy(key, secret)

	i := &Issuer{secret: key, ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

// Create issues a token for subject valid from now until now+ttl.
func (i *Issuer) Create(subject string) (string, error) {
	if subject == "" {
		return "", errors.New("jwt subject is empty")
	}
	now := i.now()
	claims := Claims{
		RegisteredClaims: gojwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  gojwt.NewNumericDate(now),
			ExpiresAt: gojwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	return gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString(i.secret)
}

// Validate checks signature and expiry and returns the subject. A token is
// rejected from the exact second of its expiry onwards.
func (i *Issuer) Validate(token string) (string, error) {
	parser := gojwt.NewParser(
		gojwt.WithValidMethods([]string{signingAlgorithm}),
		gojwt.WithExpirationRequired(),
		gojwt.WithLeeway(i.leeway),
		gojwt.WithTimeFunc(i.now),
	)

	var claims Claims
	_, err := parser.ParseWithClaims(token, &claims, func(*gojwt.Token) (any, error) {
		return i.secret, nil
	})
	if err != nil {
		return "", classify(err)
	}
	if claims.Subject == "" {
		return "", ErrMalformed
	}
	return claims.Subject, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, gojwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, gojwt.ErrTokenSignatureInvalid), errors.Is(err, gojwt.ErrTokenUnverifiable):
		return ErrBadSignature
	default:
		return ErrMalformed
	}
}
