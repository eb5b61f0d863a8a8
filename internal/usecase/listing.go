package usecase

import (
	"context"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/SaifuddinSaifee/cmu-housing-app/internal/domain"
	"github.com/SaifuddinSaifee/cmu-housing-app/internal/id"
	"github.com/SaifuddinSaifee/cmu-housing-app/internal/query"
)

// SearchResult is one page of projected, enriched listings. Results is the
// page size and Count the number of matches across all pages.
type SearchResult struct {
	Results int
	Count   int64
	Data    []query.Document
}

type ListingUsecase struct {
	repo       ListingRepository
	identities IdentityRepository
	owners     OwnerSummaryCache
	builder    *query.Builder
	now        func() time.Time
}

func NewListingUsecase(
	repo ListingRepository,
	identities IdentityRepository,
	owners OwnerSummaryCache,
	builder *query.Builder,
) *ListingUsecase {
	return &ListingUsecase{
		repo:       repo,
		identities: identities,
		owners:     owners,
		builder:    builder,
		now:        time.Now,
	}
}

// Search builds a query from untrusted parameters and executes it.
func (uc *ListingUsecase) Search(ctx context.Context, params url.Values) (SearchResult, error) {
	spec, err := uc.builder.Build(params)
	if err != nil {
		return SearchResult{}, err
	}
	return uc.Execute(ctx, spec)
}

// OwnerListings runs the search restricted to the owner's own listings. Any
// owner filter in params is replaced.
func (uc *ListingUsecase) OwnerListings(ctx context.Context, owner domain.Identity, params url.Values) (SearchResult, error) {
	scoped := url.Values{}
	for k, v := range params {
		name, _, _ := strings.Cut(k, "[")
		if f, ok := query.Lookup(name); ok && f.Name == "ownerId" {
			continue
		}
		scoped[k] = v
	}
	spec, err := uc.builder.Build(scoped)
	if err != nil {
		return SearchResult{}, err
	}
	return uc.Execute(ctx, spec.WithFilter(domain.Filter{Field: "ownerId", Op: domain.OpEq, Value: owner.ID}))
}

// Execute counts, checks page bounds, fetches the page and enriches it with
// owner summaries. Enrichment runs on the page only.
func (uc *ListingUsecase) Execute(ctx context.Context, spec domain.QuerySpec) (SearchResult, error) {
	ctx, span := tracer.Start(ctx, "Listing.Usecase.Execute")
	defer span.End()

	total, err := uc.repo.Count(ctx, spec.Filters)
	if err != nil {
		span.RecordError(errors.Wrap(err, "failed to count listings"))
		return SearchResult{}, err
	}
	if skip := spec.Skip(); skip > 0 && int64(skip) >= total {
		return SearchResult{}, &domain.Error{Kind: domain.KindOutOfRange, Message: "this page does not exist"}
	}

	listings, err := uc.repo.Find(ctx, spec)
	if err != nil {
		span.RecordError(errors.Wrap(err, "failed to find listings"))
		return SearchResult{}, err
	}

	docs, err := uc.enrich(ctx, listings, spec.Fields)
	if err != nil {
		return SearchResult{}, err
	}
	return SearchResult{Results: len(docs), Count: total, Data: docs}, nil
}

// Get returns one listing with the owner's contact details, or a null owner
// when the owner no longer exists.
func (uc *ListingUsecase) Get(ctx context.Context, listingID string) (query.Document, error) {
	ctx, span := tracer.Start(ctx, "Listing.Usecase.Get")
	defer span.End()

	listing, err := uc.repo.Get(ctx, listingID)
	if err != nil {
		return nil, err
	}
	doc := query.Project(listing, query.DefaultFields())

	owner, err := uc.identities.FindByID(ctx, domain.RoleOwner, listing.OwnerID)
	switch {
	case err == nil:
		doc.Set(query.EnrichmentKey, owner.OwnerContact())
	case errors.Is(err, domain.ErrNotFound):
		doc.Set(query.EnrichmentKey, nil)
	default:
		span.RecordError(errors.Wrap(err, "failed to load owner"))
		return nil, err
	}
	return doc, nil
}

// Saved returns the applicant's saved listings in the order they were saved.
// Ids of listings deleted since are skipped.
func (uc *ListingUsecase) Saved(ctx context.Context, applicant domain.Identity) ([]query.Document, error) {
	if applicant.Role != domain.RoleApplicant || applicant.Applicant == nil {
		return nil, domain.NewForbiddenError("only applicants have saved listings")
	}
	ids := applicant.Applicant.SavedListings
	if len(ids) == 0 {
		return []query.Document{}, nil
	}
	found, err := uc.repo.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]domain.Listing, len(found))
	for _, l := range found {
		byID[l.ID] = l
	}
	ordered := make([]domain.Listing, 0, len(found))
	for _, listingID := range ids {
		if l, ok := byID[listingID]; ok {
			ordered = append(ordered, l)
		}
	}
	return uc.enrich(ctx, ordered, query.DefaultFields())
}

// Create stores a listing owned by the caller. Ownership is never taken from
// the payload.
func (uc *ListingUsecase) Create(ctx context.Context, owner domain.Identity, in domain.ListingInput) (domain.Listing, error) {
	ctx, span := tracer.Start(ctx, "Listing.Usecase.Create")
	defer span.End()

	if owner.Role != domain.RoleOwner {
		return domain.Listing{}, domain.NewForbiddenError("only owners can post listings")
	}
	listing, err := domain.NewListing(in)
	if err != nil {
		return domain.Listing{}, err
	}
	now := uc.now().UTC()
	listing.ID = id.New()
	listing.OwnerID = owner.ID
	listing.OwnerName = owner.Name
	listing.CreatedAt = now
	listing.UpdatedAt = now
	listing.Version = 1

	created, err := uc.repo.Create(ctx, listing)
	if err != nil {
		span.RecordError(errors.Wrap(err, "failed to create listing"))
		return domain.Listing{}, err
	}
	return created, nil
}

// Update applies in to a listing owned by the caller. A concurrent write
// between read and write fails with Conflict.
func (uc *ListingUsecase) Update(ctx context.Context, caller domain.Identity, listingID string, in domain.ListingInput) (domain.Listing, error) {
	ctx, span := tracer.Start(ctx, "Listing.Usecase.Update")
	defer span.End()

	current, err := uc.owned(ctx, caller, listingID)
	if err != nil {
		return domain.Listing{}, err
	}
	version := current.Version
	current.Apply(in)
	if err := current.Validate(); err != nil {
		return domain.Listing{}, err
	}
	current.UpdatedAt = uc.now().UTC()
	current.Version = version + 1

	updated, err := uc.repo.Update(ctx, current, version)
	if err != nil {
		span.RecordError(errors.Wrap(err, "failed to update listing"))
		return domain.Listing{}, err
	}
	return updated, nil
}

func (uc *ListingUsecase) Delete(ctx context.Context, caller domain.Identity, listingID string) error {
	ctx, span := tracer.Start(ctx, "Listing.Usecase.Delete")
	defer span.End()

	current, err := uc.owned(ctx, caller, listingID)
	if err != nil {
		return err
	}
	if err := uc.repo.Delete(ctx, current.ID, current.Version); err != nil {
		span.RecordError(errors.Wrap(err, "failed to delete listing"))
		return err
	}
	return nil
}

// owned re-fetches the listing and checks the caller owns it. Existence is
// not hidden: a foreign listing yields Forbidden.
func (uc *ListingUsecase) owned(ctx context.Context, caller domain.Identity, listingID string) (domain.Listing, error) {
	current, err := uc.repo.Get(ctx, listingID)
	if err != nil {
		return domain.Listing{}, err
	}
	if caller.Role != domain.RoleOwner || current.OwnerID != caller.ID {
		return domain.Listing{}, domain.NewForbiddenError("you can only modify your own listings")
	}
	return current, nil
}

func (uc *ListingUsecase) enrich(ctx context.Context, listings []domain.Listing, fields []string) ([]query.Document, error) {
	summaries := make(map[string]domain.OwnerSummary)
	var misses []string
	for _, l := range listings {
		if _, ok := summaries[l.OwnerID]; ok {
			continue
		}
		if s, ok := uc.owners.Get(ctx, l.OwnerID); ok {
			summaries[l.OwnerID] = s
			continue
		}
		if !slices.Contains(misses, l.OwnerID) {
			misses = append(misses, l.OwnerID)
		}
	}
	if len(misses) > 0 {
		owners, err := uc.identities.FindByIDs(ctx, domain.RoleOwner, misses)
		if err != nil {
			return nil, errors.Wrap(err, "failed to load owner summaries")
		}
		for _, o := range owners {
			s := o.OwnerSummary()
			summaries[o.ID] = s
			uc.owners.Set(ctx, s)
		}
	}

	docs := make([]query.Document, 0, len(listings))
	for _, l := range listings {
		doc := query.Project(l, fields)
		if s, ok := summaries[l.OwnerID]; ok {
			doc.Set(query.EnrichmentKey, s)
		} else {
			doc.Set(query.EnrichmentKey, nil)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
