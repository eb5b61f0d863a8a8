package service

import (
	"context"
	"errors"

	"github.com/SaifuddinSaifee/cmu-housing-app/internal/domain"
)

type IdentityFinder interface {
	FindByID(ctx context.Context, role domain.Role, id string) (domain.Identity, error)
}

// IdentityResolver maps a token subject to the partition that holds it.
type IdentityResolver struct {
	finder IdentityFinder
}

func NewIdentityResolver(finder IdentityFinder) *IdentityResolver {
	return &IdentityResolver{finder: finder}
}

// Resolve probes the partitions in domain.ResolutionOrder and returns the
// first match. Ids are issued by a single authority so at most one partition
// should ever hold a given id.
func (r *IdentityResolver) Resolve(ctx context.Context, subject string) (domain.Identity, error) {
	ctx, span := tracer.Start(ctx, "Auth.Service.Resolve")
	defer span.End()

	for _, role := range domain.ResolutionOrder {
		identity, err := r.finder.FindByID(ctx, role, subject)
		if err == nil {
			identity.Role = role
			return identity, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			span.RecordError(err)
			return domain.Identity{}, err
		}
	}
	return domain.Identity{}, domain.NewNotFoundError("identity")
}
