package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"github.com/SaifuddinSaifee/cmu-housing-app/internal/domain"
	"github.com/SaifuddinSaifee/cmu-housing-app/internal/id"
)

var tracer = otel.Tracer("usecase")

// SignupInput is the validated payload for creating an identity.
type SignupInput struct {
	Role      domain.Role
	Email     string
	Name      string
	Password  string
	Applicant *domain.ApplicantProfile
	Owner     *domain.OwnerProfile
}

// Session is the result of a successful signup or login.
type Session struct {
	Token    string
	Identity domain.Identity
}

var errIncorrectCredentials = &domain.Error{
	Kind:    domain.KindUnauthenticated,
	Message: "incorrect email or password",
}

type IdentityUsecase struct {
	repo     IdentityRepository
	listings ListingRepository
	hasher   SecretHasher
	tokens   TokenIssuer
	limiter  LoginLimiter
	owners   OwnerSummaryCache
	now      func() time.Time
}

func NewIdentityUsecase(
	repo IdentityRepository,
	listings ListingRepository,
	hasher SecretHasher,
	tokens TokenIssuer,
	limiter LoginLimiter,
	owners OwnerSummaryCache,
) *IdentityUsecase {
	return &IdentityUsecase{
		repo:     repo,
		listings: listings,
		hasher:   hasher,
		tokens:   tokens,
		limiter:  limiter,
		owners:   owners,
		now:      time.Now,
	}
}

// Register creates an identity in the partition named by in.Role.
func (uc *IdentityUsecase) Register(ctx context.Context, in SignupInput) (domain.Identity, error) {
	ctx, span := tracer.Start(ctx, "Identity.Usecase.Register")
	defer span.End()

	now := uc.now().UTC()
	identity := domain.Identity{
		ID:        id.New(),
		Role:      in.Role,
		Email:     in.Email,
		Name:      in.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	switch in.Role {
	case domain.RoleApplicant:
		profile := domain.ApplicantProfile{}
		if in.Applicant != nil {
			profile = *in.Applicant
		}
		profile.SavedListings = []string{}
		identity.Applicant = &profile
	case domain.RoleOwner:
		profile := domain.OwnerProfile{}
		if in.Owner != nil {
			profile = *in.Owner
		}
		identity.Owner = &profile
	}

	identity.Normalize()
	if err := identity.Validate(); err != nil {
		return domain.Identity{}, err
	}
	if err := uc.hasher.SetSecret(&identity, in.Password); err != nil {
		return domain.Identity{}, err
	}

	created, err := uc.repo.Create(ctx, identity)
	if err != nil {
		span.RecordError(errors.Wrap(err, "failed to create identity"))
		return domain.Identity{}, err
	}
	return created, nil
}

// Signup registers an applicant or owner and issues a token for it.
func (uc *IdentityUsecase) Signup(ctx context.Context, in SignupInput) (Session, error) {
	if in.Role != domain.RoleApplicant && in.Role != domain.RoleOwner {
		return Session{}, domain.NewValidationError("cannot sign up as %s", in.Role)
	}
	identity, err := uc.Register(ctx, in)
	if err != nil {
		return Session{}, err
	}
	return uc.session(identity)
}

// Login verifies credentials inside one partition. Unknown emails and
// wrong passwords fail identically.
func (uc *IdentityUsecase) Login(ctx context.Context, role domain.Role, email, password string) (Session, error) {
	ctx, span := tracer.Start(ctx, "Identity.Usecase.Login")
	defer span.End()

	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return Session{}, domain.NewValidationError("please provide email and password")
	}

	key := LoginKey(role, email)
	if err := uc.checkBlocked(ctx, key); err != nil {
		return Session{}, err
	}

	identity, err := uc.repo.FindByEmail(ctx, role, email)
	if errors.Is(err, domain.ErrNotFound) {
		uc.hasher.DummyVerify(password)
		uc.recordFailure(ctx, key)
		return Session{}, errIncorrectCredentials
	}
	if err != nil {
		span.RecordError(errors.Wrap(err, "failed to load identity"))
		return Session{}, err
	}
	identity.Role = role

	if !uc.hasher.VerifySecret(identity, password) {
		uc.recordFailure(ctx, key)
		return Session{}, errIncorrectCredentials
	}
	uc.resetFailures(ctx, key)

	if uc.hasher.NeedsRehash(identity) {
		uc.rehash(ctx, identity, password)
	}
	return uc.session(identity)
}

func (uc *IdentityUsecase) rehash(ctx context.Context, identity domain.Identity, password string) {
	upgraded := identity
	if err := uc.hasher.SetSecret(&upgraded, password); err != nil {
		slog.InfoContext(ctx, "skipped secret rehash", slog.String("module", "identity"), slog.String("id", identity.ID), slog.String("error", err.Error()))
		return
	}
	if err := uc.repo.UpdateSecret(ctx, identity.Role, identity.ID, upgraded.SecretHash); err != nil {
		slog.ErrorContext(ctx, "failed to store rehashed secret", slog.String("module", "identity"), slog.String("id", identity.ID), slog.String("error", err.Error()))
	}
}

// checkBlocked fails open when the limiter backend is unavailable.
func (uc *IdentityUsecase) checkBlocked(ctx context.Context, key string) error {
	blocked, err := uc.limiter.Blocked(ctx, key)
	if err != nil {
		slog.WarnContext(ctx, "login limiter unavailable", slog.String("module", "identity"), slog.String("error", err.Error()))
	}
	if blocked {
		return &domain.Error{Kind: domain.KindTooManyRequests, Message: "too many failed login attempts, try again later"}
	}
	return nil
}

func (uc *IdentityUsecase) resetFailures(ctx context.Context, key string) {
	if err := uc.limiter.Reset(ctx, key); err != nil {
		slog.WarnContext(ctx, "failed to reset login limiter", slog.String("module", "identity"), slog.String("error", err.Error()))
	}
}

func (uc *IdentityUsecase) recordFailure(ctx context.Context, key string) {
	if err := uc.limiter.Fail(ctx, key); err != nil {
		slog.WarnContext(ctx, "failed to record login failure", slog.String("module", "identity"), slog.String("error", err.Error()))
	}
}

// LoginKey scopes failure counting to one email inside one partition.
func LoginKey(role domain.Role, email string) string {
	return string(role) + ":" + strings.ToLower(email)
}

// ChangePassword replaces the secret after checking the current one and
// returns a fresh session. Wrong current passwords are Forbidden and count
// against the identity's login limiter key.
func (uc *IdentityUsecase) ChangePassword(ctx context.Context, identity domain.Identity, current, next string) (Session, error) {
	ctx, span := tracer.Start(ctx, "Identity.Usecase.ChangePassword")
	defer span.End()

	if current == "" || next == "" {
		return Session{}, domain.NewValidationError("please provide your current and new password")
	}
	key := LoginKey(identity.Role, identity.Email)
	if err := uc.checkBlocked(ctx, key); err != nil {
		return Session{}, err
	}
	if !uc.hasher.VerifySecret(identity, current) {
		uc.recordFailure(ctx, key)
		return Session{}, domain.NewForbiddenError("your current password is wrong")
	}
	uc.resetFailures(ctx, key)
	if err := uc.hasher.SetSecret(&identity, next); err != nil {
		return Session{}, err
	}
	if err := uc.repo.UpdateSecret(ctx, identity.Role, identity.ID, identity.SecretHash); err != nil {
		span.RecordError(errors.Wrap(err, "failed to update secret"))
		return Session{}, err
	}
	return uc.session(identity)
}

// SaveListing adds listingID to the applicant's saved set.
func (uc *IdentityUsecase) SaveListing(ctx context.Context, applicant domain.Identity, listingID string) error {
	if applicant.Role != domain.RoleApplicant {
		return domain.NewForbiddenError("only applicants can save listings")
	}
	if _, err := uc.listings.Get(ctx, listingID); err != nil {
		return err
	}
	return uc.repo.AddSavedListing(ctx, applicant.ID, listingID)
}

// UnsaveListing removes listingID from the saved set; absent ids are a no-op.
func (uc *IdentityUsecase) UnsaveListing(ctx context.Context, applicant domain.Identity, listingID string) error {
	if applicant.Role != domain.RoleApplicant {
		return domain.NewForbiddenError("only applicants can save listings")
	}
	return uc.repo.RemoveSavedListing(ctx, applicant.ID, listingID)
}

func (uc *IdentityUsecase) Get(ctx context.Context, role domain.Role, id string) (domain.Identity, error) {
	if err := managed(role); err != nil {
		return domain.Identity{}, err
	}
	identity, err := uc.repo.FindByID(ctx, role, id)
	if err != nil {
		return domain.Identity{}, err
	}
	identity.Role = role
	return identity, nil
}

// List pages through one partition.
func (uc *IdentityUsecase) List(ctx context.Context, role domain.Role, page, limit int) ([]domain.Identity, int64, error) {
	if err := managed(role); err != nil {
		return nil, 0, err
	}
	if page < 1 || limit < 1 {
		return nil, 0, domain.NewValidationError("page and limit must be positive integers")
	}
	skip := (page - 1) * limit
	identities, total, err := uc.repo.List(ctx, role, skip, limit)
	if err != nil {
		return nil, 0, err
	}
	if skip > 0 && int64(skip) >= total {
		return nil, 0, &domain.Error{Kind: domain.KindOutOfRange, Message: "this page does not exist"}
	}
	return identities, total, nil
}

// Delete removes an applicant or owner. Listings of a deleted owner are kept.
func (uc *IdentityUsecase) Delete(ctx context.Context, role domain.Role, id string) error {
	if err := managed(role); err != nil {
		return err
	}
	if err := uc.repo.Delete(ctx, role, id); err != nil {
		return err
	}
	if role == domain.RoleOwner {
		uc.owners.Delete(ctx, id)
	}
	return nil
}

func (uc *IdentityUsecase) session(identity domain.Identity) (Session, error) {
	token, err := uc.tokens.Create(identity.ID)
	if err != nil {
		return Session{}, &domain.Error{Kind: domain.KindInternal, Message: "issue token", Err: err}
	}
	return Session{Token: token, Identity: identity}, nil
}

func managed(role domain.Role) error {
	if role != domain.RoleApplicant && role != domain.RoleOwner {
		return domain.NewValidationError("unknown account type %q", role)
	}
	return nil
}
