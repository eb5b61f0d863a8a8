package service

import (
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/pbkdf2"

	"github.com/SaifuddinSaifee/cmu-housing-app/internal/domain"
)

// Hash formats. bcrypt hashes carry their own "$2a$"-style tag with the cost
// embedded; legacy records migrated from the salt+iterated scheme are stored
// as "pbkdf2-sha512$<salt>$<hex digest>" and verify until the next login
// rehashes them.
const (
	legacyPrefix     = "pbkdf2-sha512$"
	legacyIterations = 10000
	legacyKeyLength  = 64

	maxBcryptCost     = 14
	maxPasswordBytes  = 72
	DefaultBcryptCost = 12
)

// CredentialStore derives and verifies secret hashes. It is immutable after
// construction and never logs plaintext or derived material.
type CredentialStore struct {
	cost  int
	dummy []byte
}

func NewCredentialStore(cost int) *CredentialStore {
	if cost < bcrypt.MinCost {
		cost = bcrypt.MinCost
	}
	if cost > maxBcryptCost {
		cost = maxBcryptCost
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), cost)
	if err != nil {
		panic(err)
	}
	return &CredentialStore{cost: cost, dummy: dummy}
}

// SetSecret hashes plaintext and stores the result on identity.
func (s *CredentialStore) SetSecret(identity *domain.Identity, plaintext string) error {
	hash, err := s.Hash(plaintext)
	if err != nil {
		return err
	}
	identity.SecretHash = hash
	return nil
}

// VerifySecret reports whether plaintext matches the identity's stored hash.
func (s *CredentialStore) VerifySecret(identity domain.Identity, plaintext string) bool {
	return s.Verify(identity.SecretHash, plaintext)
}

// NeedsRehash reports whether the stored hash uses a legacy format or a
// different work factor than the current one.
func (s *CredentialStore) NeedsRehash(identity domain.Identity) bool {
	if strings.HasPrefix(identity.SecretHash, legacyPrefix) {
		return true
	}
	cost, err := bcrypt.Cost([]byte(identity.SecretHash))
	if err != nil {
		return true
	}
	return cost != s.cost
}

func (s *CredentialStore) Hash(plaintext string) (string, error) {
	if len(plaintext) < domain.MinPasswordLength {
		return "", domain.NewValidationError("password must be at least %d characters", domain.MinPasswordLength)
	}
	if len(plaintext) > maxPasswordBytes {
		return "", domain.NewValidationError("password cannot be longer than %d bytes", maxPasswordBytes)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), s.cost)
	if err != nil {
		return "", &domain.Error{Kind: domain.KindInternal, Message: "hash password", Err: err}
	}
	return string(hash), nil
}

// Verify compares in constant time. Unknown or corrupt formats never match.
func (s *CredentialStore) Verify(encoded, plaintext string) bool {
	switch {
	case encoded == "":
		return false
	case strings.HasPrefix(encoded, legacyPrefix):
		return verifyLegacy(encoded, plaintext)
	default:
		return bcrypt.CompareHashAndPassword([]byte(encoded), []byte(plaintext)) == nil
	}
}

// DummyVerify spends the same work as a real comparison so that unknown
// emails take as long to reject as wrong passwords.
func (s *CredentialStore) DummyVerify(plaintext string) {
	_ = bcrypt.CompareHashAndPassword(s.dummy, []byte(plaintext))
}

// LegacyHash composes a tagged legacy hash from a stored salt and hex digest.
func LegacyHash(salt, hexDigest string) string {
	return legacyPrefix + salt + "$" + hexDigest
}

func verifyLegacy(encoded, plaintext string) bool {
	parts := strings.Split(strings.TrimPrefix(encoded, legacyPrefix), "$")
	if len(parts) != 2 || parts[0] == "" {
		return false
	}
	want, err := hex.DecodeString(parts[1])
	if err != nil || len(want) != legacyKeyLength {
		return false
	}
	// The salt is used as stored, in its textual form.
	got := pbkdf2.Key([]byte(plaintext), []byte(parts[0]), legacyIterations, legacyKeyLength, sha512.New)
	return subtle.ConstantTimeCompare(got, want) == 1
}
