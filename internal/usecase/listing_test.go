package usecase

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/SaifuddinSaifee/cmu-housing-app/internal/domain"
	"github.com/SaifuddinSaifee/cmu-housing-app/internal/query"
)

func ptr[T any](v T) *T { return &v }

func listingInput(city string, rent float64) domain.ListingInput {
	return domain.ListingInput{
		Address: &domain.AddressInput{
			Street:  ptr("5000 Forbes Ave"),
			City:    ptr(city),
			State:   ptr("PA"),
			ZipCode: ptr("15213"),
		},
		Rent:               ptr(rent),
		Deposit:            ptr(rent),
		AvailableFrom:      ptr(time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)),
		RoomType:           ptr("private"),
		NumberOfRooms:      ptr(2),
		NumberOfBathrooms:  ptr(1),
		TermsAndConditions: ptr("12 month lease"),
	}
}

func (f *fixture) createListing(t *testing.T, owner domain.Identity, city string, rent float64) domain.Listing {
	t.Helper()
	listing, err := f.listings.Create(context.Background(), owner, listingInput(city, rent))
	if err != nil {
		t.Fatalf("create listing: %v", err)
	}
	return listing
}

func rents(t *testing.T, docs []query.Document) []float64 {
	t.Helper()
	out := make([]float64, 0, len(docs))
	for _, doc := range docs {
		v, ok := doc.Get("rent")
		if !ok {
			t.Fatalf("document without rent: %v", doc.Keys())
		}
		out = append(out, v.(float64))
	}
	return out
}

func TestSearchRentRange(t *testing.T) {
	f := newFixture(t)
	olive := f.owner(t, "olive@example.com", "Olive")
	for _, rent := range []float64{500, 900, 1500} {
		f.createListing(t, olive, "Pittsburgh", rent)
	}

	result, err := f.listings.Search(context.Background(), url.Values{
		"rent[gte]": {"600"},
		"rent[lte]": {"1000"},
	})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if result.Count != 1 || result.Results != 1 {
		t.Fatalf("expected one match, got results=%d count=%d", result.Results, result.Count)
	}
	if got := rents(t, result.Data); got[0] != 900 {
		t.Fatalf("unexpected rents %v", got)
	}
}

func TestSearchSortAndPaging(t *testing.T) {
	f := newFixture(t)
	olive := f.owner(t, "olive@example.com", "Olive")
	for _, rent := range []float64{700, 500, 900, 600} {
		f.createListing(t, olive, "Pittsburgh", rent)
	}
	ctx := context.Background()

	result, err := f.listings.Search(ctx, url.Values{"sort": {"-rent"}, "limit": {"3"}})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	got := rents(t, result.Data)
	want := []float64{900, 700, 600}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
	if result.Count != 4 {
		t.Fatalf("expected count 4, got %d", result.Count)
	}

	second, err := f.listings.Search(ctx, url.Values{"sort": {"-rent"}, "limit": {"3"}, "page": {"2"}})
	if err != nil {
		t.Fatalf("search page 2: %v", err)
	}
	if got := rents(t, second.Data); len(got) != 1 || got[0] != 500 {
		t.Fatalf("unexpected second page %v", got)
	}

	if _, err := f.listings.Search(ctx, url.Values{"page": {"999"}}); !errors.Is(err, domain.ErrOutOfRange) {
		t.Fatalf("expected out of range, got %v", err)
	}
}

func TestSearchEmptyFirstPage(t *testing.T) {
	f := newFixture(t)
	result, err := f.listings.Search(context.Background(), url.Values{})
	if err != nil {
		t.Fatalf("an empty first page is not out of range: %v", err)
	}
	if result.Results != 0 || result.Count != 0 {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestSearchRejectsUntrustedInput(t *testing.T) {
	f := newFixture(t)
	for _, params := range []url.Values{
		{"secretHash": {"x"}},
		{"rent[$where]": {"1"}},
		{"rent": {"abc"}},
		{"sort": {"secretHash"}},
	} {
		if _, err := f.listings.Search(context.Background(), params); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("%v: expected validation error, got %v", params, err)
		}
	}
}

func TestSearchEnrichesOwnerSummary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	olive := f.owner(t, "olive@example.com", "Olive")
	f.createListing(t, olive, "Pittsburgh", 900)

	result, err := f.listings.Search(ctx, url.Values{"fields": {"rent"}})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	doc := result.Data[0]
	keys := doc.Keys()
	if len(keys) != 3 || keys[0] != "id" || keys[1] != "rent" || keys[2] != query.EnrichmentKey {
		t.Fatalf("unexpected keys %v", keys)
	}
	owner, _ := doc.Get(query.EnrichmentKey)
	if owner != olive.OwnerSummary() {
		t.Fatalf("unexpected owner %v", owner)
	}
	if cached, ok := f.owners.Get(ctx, olive.ID); !ok || cached.Name != "Olive" {
		t.Fatalf("expected owner summary to be cached")
	}
}

func TestSearchDeletedOwnerEnrichesNull(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	olive := f.owner(t, "olive@example.com", "Olive")
	listing := f.createListing(t, olive, "Pittsburgh", 900)

	if _, err := f.listings.Search(ctx, url.Values{}); err != nil {
		t.Fatalf("search: %v", err)
	}
	if err := f.identities.Delete(ctx, domain.RoleOwner, olive.ID); err != nil {
		t.Fatalf("delete owner: %v", err)
	}

	result, err := f.listings.Search(ctx, url.Values{})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if owner, ok := result.Data[0].Get(query.EnrichmentKey); !ok || owner != nil {
		t.Fatalf("expected null owner, got %v", owner)
	}
	// The snapshot survives the owner.
	if name, _ := result.Data[0].Get("ownerName"); name != "Olive" {
		t.Fatalf("expected owner name snapshot, got %v", name)
	}

	doc, err := f.listings.Get(ctx, listing.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if owner, _ := doc.Get(query.EnrichmentKey); owner != nil {
		t.Fatalf("expected null owner contact, got %v", owner)
	}
}

func TestGetListingOwnerContact(t *testing.T) {
	f := newFixture(t)
	olive := f.owner(t, "olive@example.com", "Olive")
	listing := f.createListing(t, olive, "Pittsburgh", 900)

	doc, err := f.listings.Get(context.Background(), listing.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	owner, _ := doc.Get(query.EnrichmentKey)
	contact, ok := owner.(domain.OwnerContact)
	if !ok || contact.Phone != "412-555-0100" || contact.Email != "olive@example.com" {
		t.Fatalf("unexpected owner contact %#v", owner)
	}
	if _, err := f.listings.Get(context.Background(), "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCreateForcesOwner(t *testing.T) {
	f := newFixture(t)
	olive := f.owner(t, "olive@example.com", "Olive")
	listing := f.createListing(t, olive, "Pittsburgh", 900)
	if listing.OwnerID != olive.ID || listing.OwnerName != "Olive" {
		t.Fatalf("expected ownership from caller, got %q/%q", listing.OwnerID, listing.OwnerName)
	}
	if listing.Version != 1 || listing.ID == "" {
		t.Fatalf("unexpected listing %+v", listing)
	}

	ann := f.applicant(t, "ann@example.com")
	if _, err := f.listings.Create(context.Background(), ann, listingInput("Pittsburgh", 900)); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	olive := f.owner(t, "olive@example.com", "Olive")

	in := listingInput("Pittsburgh", 900)
	in.RoomType = ptr("castle")
	if _, err := f.listings.Create(context.Background(), olive, in); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	in = listingInput("Pittsburgh", -1)
	if _, err := f.listings.Create(context.Background(), olive, in); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for negative rent, got %v", err)
	}
}

func TestUpdateAndDeleteOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	olive := f.owner(t, "olive@example.com", "Olive")
	oscar := f.owner(t, "oscar@example.com", "Oscar")
	listing := f.createListing(t, olive, "Pittsburgh", 900)

	update := domain.ListingInput{Rent: ptr(950.0)}
	if _, err := f.listings.Update(ctx, oscar, listing.ID, update); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if _, err := f.listings.Update(ctx, olive, "missing", update); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	updated, err := f.listings.Update(ctx, olive, listing.ID, update)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Rent != 950 || updated.Version != 2 || updated.OwnerID != olive.ID {
		t.Fatalf("unexpected update result %+v", updated)
	}
	if updated.Address.City != "Pittsburgh" {
		t.Fatalf("untouched fields must survive, got %+v", updated.Address)
	}

	if err := f.listings.Delete(ctx, oscar, listing.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if err := f.listings.Delete(ctx, olive, listing.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := f.listings.Delete(ctx, olive, listing.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

// staleReads hands out listings one version behind the store, as if another
// writer had committed between read and write.
type staleReads struct {
	ListingRepository
}

func (s staleReads) Get(ctx context.Context, id string) (domain.Listing, error) {
	l, err := s.ListingRepository.Get(ctx, id)
	l.Version--
	return l, err
}

func TestUpdateLostRaceConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	olive := f.owner(t, "olive@example.com", "Olive")
	listing := f.createListing(t, olive, "Pittsburgh", 900)

	f.listings.repo = staleReads{f.listings.repo}
	if _, err := f.listings.Update(ctx, olive, listing.ID, domain.ListingInput{Rent: ptr(1000.0)}); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if err := f.listings.Delete(ctx, olive, listing.ID); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestOwnerListingsForcesOwnerFilter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	olive := f.owner(t, "olive@example.com", "Olive")
	oscar := f.owner(t, "oscar@example.com", "Oscar")
	f.createListing(t, olive, "Pittsburgh", 900)
	f.createListing(t, oscar, "Pittsburgh", 800)

	result, err := f.listings.OwnerListings(ctx, olive, url.Values{"ownerId": {oscar.ID}, "owner": {oscar.ID}})
	if err != nil {
		t.Fatalf("owner listings: %v", err)
	}
	if result.Count != 1 {
		t.Fatalf("expected only own listings, got %d", result.Count)
	}
	if id, _ := result.Data[0].Get("ownerId"); id != olive.ID {
		t.Fatalf("unexpected owner %v", id)
	}
}

func TestSavedKeepsOrderAndSkipsDeleted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	olive := f.owner(t, "olive@example.com", "Olive")
	ann := f.applicant(t, "ann@example.com")
	first := f.createListing(t, olive, "Pittsburgh", 900)
	second := f.createListing(t, olive, "Pittsburgh", 700)
	third := f.createListing(t, olive, "Pittsburgh", 800)

	for _, l := range []domain.Listing{third, first, second} {
		if err := f.identities.SaveListing(ctx, ann, l.ID); err != nil {
			t.Fatalf("save: %v", err)
		}
	}
	if err := f.listings.Delete(ctx, olive, first.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	ann, _ = f.store.FindByID(ctx, domain.RoleApplicant, ann.ID)
	ann.Role = domain.RoleApplicant
	docs, err := f.listings.Saved(ctx, ann)
	if err != nil {
		t.Fatalf("saved: %v", err)
	}
	if got := rents(t, docs); len(got) != 2 || got[0] != 800 || got[1] != 700 {
		t.Fatalf("unexpected saved order %v", got)
	}
}
