package usecase

import (
	"context"

	"github.com/SaifuddinSaifee/cmu-housing-app/internal/domain"
)

// IdentityRepository stores the three identity partitions. Emails are unique
// per partition; every lookup is scoped to one partition.
type IdentityRepository interface {
	Create(ctx context.Context, identity domain.Identity) (domain.Identity, error)
	FindByID(ctx context.Context, role domain.Role, id string) (domain.Identity, error)
	FindByIDs(ctx context.Context, role domain.Role, ids []string) ([]domain.Identity, error)
	FindByEmail(ctx context.Context, role domain.Role, email string) (domain.Identity, error)
	List(ctx context.Context, role domain.Role, skip, limit int) ([]domain.Identity, int64, error)
	UpdateSecret(ctx context.Context, role domain.Role, id, secretHash string) error
	Delete(ctx context.Context, role domain.Role, id string) error

	// AddSavedListing fails with Conflict when the id is already saved.
	AddSavedListing(ctx context.Context, applicantID, listingID string) error
	// RemoveSavedListing succeeds when the id was never saved.
	RemoveSavedListing(ctx context.Context, applicantID, listingID string) error
}

// ListingRepository stores listings. Find applies filters, sort and the
// skip/limit window of spec; Count applies filters only.
type ListingRepository interface {
	Create(ctx context.Context, listing domain.Listing) (domain.Listing, error)
	Get(ctx context.Context, id string) (domain.Listing, error)
	GetMany(ctx context.Context, ids []string) ([]domain.Listing, error)
	Count(ctx context.Context, filters []domain.Filter) (int64, error)
	Find(ctx context.Context, spec domain.QuerySpec) ([]domain.Listing, error)
	// Update and Delete are conditional on version and fail with Conflict
	// when the stored version moved on.
	Update(ctx context.Context, listing domain.Listing, version int64) (domain.Listing, error)
	Delete(ctx context.Context, id string, version int64) error
}

// OwnerSummaryCache holds enrichment summaries between requests.
type OwnerSummaryCache interface {
	Get(ctx context.Context, ownerID string) (domain.OwnerSummary, bool)
	Set(ctx context.Context, summary domain.OwnerSummary)
	Delete(ctx context.Context, ownerID string)
}

// LoginLimiter counts failed logins per key.
type LoginLimiter interface {
	Blocked(ctx context.Context, key string) (bool, error)
	Fail(ctx context.Context, key string) error
	Reset(ctx context.Context, key string) error
}

type SecretHasher interface {
	SetSecret(identity *domain.Identity, plaintext string) error
	VerifySecret(identity domain.Identity, plaintext string) bool
	NeedsRehash(identity domain.Identity) bool
	DummyVerify(plaintext string)
}

type TokenIssuer interface {
	Create(subject string) (string, error)
}
