// Package memory is an in-process implementation of the identity and listing
// repositories, used by the memory storage driver and by tests.
package memory

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/SaifuddinSaifee/cmu-housing-app/internal/domain"
	"github.com/SaifuddinSaifee/cmu-housing-app/internal/query"
)

type Store struct {
	mu sync.RWMutex

	identities map[domain.Role]map[string]domain.Identity
	listings   map[string]domain.Listing
}

func NewStore() *Store {
	return &Store{
		identities: map[domain.Role]map[string]domain.Identity{
			domain.RoleApplicant:     {},
			domain.RoleOwner:         {},
			domain.RoleAdministrator: {},
		},
		listings: make(map[string]domain.Listing),
	}
}

func (s *Store) partition(role domain.Role) (map[string]domain.Identity, error) {
	p, ok := s.identities[role]
	if !ok {
		return nil, domain.NewValidationError("unknown account type %q", role)
	}
	return p, nil
}

func (s *Store) Create(_ context.Context, identity domain.Identity) (domain.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.partition(identity.Role)
	if err != nil {
		return domain.Identity{}, err
	}
	if _, exists := p[identity.ID]; exists {
		return domain.Identity{}, domain.NewConflictError("identity already exists")
	}
	for _, existing := range p {
		if existing.Email == identity.Email {
			return domain.Identity{}, domain.NewConflictError("email is already registered")
		}
	}
	p[identity.ID] = cloneIdentity(identity)
	return cloneIdentity(identity), nil
}

func (s *Store) FindByID(_ context.Context, role domain.Role, id string) (domain.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, err := s.partition(role)
	if err != nil {
		return domain.Identity{}, err
	}
	identity, ok := p[id]
	if !ok {
		return domain.Identity{}, domain.NewNotFoundError(string(role))
	}
	return cloneIdentity(identity), nil
}

func (s *Store) FindByIDs(_ context.Context, role domain.Role, ids []string) ([]domain.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, err := s.partition(role)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Identity, 0, len(ids))
	for _, id := range ids {
		if identity, ok := p[id]; ok {
			out = append(out, cloneIdentity(identity))
		}
	}
	return out, nil
}

func (s *Store) FindByEmail(_ context.Context, role domain.Role, email string) (domain.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, err := s.partition(role)
	if err != nil {
		return domain.Identity{}, err
	}
	for _, identity := range p {
		if identity.Email == email {
			return cloneIdentity(identity), nil
		}
	}
	return domain.Identity{}, domain.NewNotFoundError(string(role))
}

func (s *Store) List(_ context.Context, role domain.Role, skip, limit int) ([]domain.Identity, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, err := s.partition(role)
	if err != nil {
		return nil, 0, err
	}
	items := make([]domain.Identity, 0, len(p))
	for _, identity := range p {
		items = append(items, cloneIdentity(identity))
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID < items[j].ID
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	total := int64(len(items))
	return window(items, skip, limit), total, nil
}

func (s *Store) UpdateSecret(_ context.Context, role domain.Role, id, secretHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.partition(role)
	if err != nil {
		return err
	}
	identity, ok := p[id]
	if !ok {
		return domain.NewNotFoundError(string(role))
	}
	identity.SecretHash = secretHash
	p[id] = identity
	return nil
}

func (s *Store) Delete(_ context.Context, role domain.Role, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.partition(role)
	if err != nil {
		return err
	}
	if _, ok := p[id]; !ok {
		return domain.NewNotFoundError(string(role))
	}
	delete(p, id)
	return nil
}

func (s *Store) AddSavedListing(_ context.Context, applicantID, listingID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.identities[domain.RoleApplicant]
	identity, ok := p[applicantID]
	if !ok || identity.Applicant == nil {
		return domain.NewNotFoundError(string(domain.RoleApplicant))
	}
	if slices.Contains(identity.Applicant.SavedListings, listingID) {
		return domain.NewConflictError("listing is already saved")
	}
	identity = cloneIdentity(identity)
	identity.Applicant.SavedListings = append(identity.Applicant.SavedListings, listingID)
	p[applicantID] = identity
	return nil
}

func (s *Store) RemoveSavedListing(_ context.Context, applicantID, listingID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.identities[domain.RoleApplicant]
	identity, ok := p[applicantID]
	if !ok || identity.Applicant == nil {
		return domain.NewNotFoundError(string(domain.RoleApplicant))
	}
	identity = cloneIdentity(identity)
	identity.Applicant.SavedListings = slices.DeleteFunc(identity.Applicant.SavedListings, func(v string) bool {
		return v == listingID
	})
	p[applicantID] = identity
	return nil
}

// ListingStore exposes the listing half of Store under the listing
// repository method names.
type ListingStore struct {
	*Store
}

func (s *Store) Listings() ListingStore {
	return ListingStore{Store: s}
}

func (s ListingStore) Create(_ context.Context, listing domain.Listing) (domain.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.listings[listing.ID]; exists {
		return domain.Listing{}, domain.NewConflictError("listing already exists")
	}
	s.listings[listing.ID] = cloneListing(listing)
	return cloneListing(listing), nil
}

func (s ListingStore) Get(_ context.Context, id string) (domain.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	listing, ok := s.listings[id]
	if !ok {
		return domain.Listing{}, domain.NewNotFoundError("listing")
	}
	return cloneListing(listing), nil
}

func (s ListingStore) GetMany(_ context.Context, ids []string) ([]domain.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Listing, 0, len(ids))
	for _, id := range ids {
		if listing, ok := s.listings[id]; ok {
			out = append(out, cloneListing(listing))
		}
	}
	return out, nil
}

func (s ListingStore) Count(_ context.Context, filters []domain.Filter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched, err := s.match(filters)
	if err != nil {
		return 0, err
	}
	return int64(len(matched)), nil
}

func (s ListingStore) Find(_ context.Context, spec domain.QuerySpec) ([]domain.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched, err := s.match(spec.Filters)
	if err != nil {
		return nil, err
	}
	query.Sort(matched, spec.Sort)
	return window(matched, spec.Skip(), spec.Limit), nil
}

func (s ListingStore) match(filters []domain.Filter) ([]domain.Listing, error) {
	out := make([]domain.Listing, 0)
	for _, listing := range s.listings {
		ok, err := query.Match(listing, filters)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, cloneListing(listing))
		}
	}
	// Map iteration order is random; fix a base order before sorting.
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s ListingStore) Update(_ context.Context, listing domain.Listing, version int64) (domain.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.listings[listing.ID]
	if !ok {
		return domain.Listing{}, domain.NewNotFoundError("listing")
	}
	if current.Version != version {
		return domain.Listing{}, domain.NewConflictError("listing was modified concurrently, retry")
	}
	s.listings[listing.ID] = cloneListing(listing)
	return cloneListing(listing), nil
}

func (s ListingStore) Delete(_ context.Context, id string, version int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.listings[id]
	if !ok {
		return domain.NewNotFoundError("listing")
	}
	if current.Version != version {
		return domain.NewConflictError("listing was modified concurrently, retry")
	}
	delete(s.listings, id)
	return nil
}

func window[T any](items []T, skip, limit int) []T {
	if skip >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && skip+limit < end {
		end = skip + limit
	}
	return items[skip:end]
}

func cloneIdentity(identity domain.Identity) domain.Identity {
	if identity.Applicant != nil {
		a := *identity.Applicant
		a.SavedListings = slices.Clone(a.SavedListings)
		if a.SavedListings == nil {
			a.SavedListings = []string{}
		}
		identity.Applicant = &a
	}
	if identity.Owner != nil {
		o := *identity.Owner
		identity.Owner = &o
	}
	return identity
}

func cloneListing(listing domain.Listing) domain.Listing {
	listing.Amenities = slices.Clone(listing.Amenities)
	listing.Images = slices.Clone(listing.Images)
	listing.RequiredDocuments = slices.Clone(listing.RequiredDocuments)
	return listing
}
