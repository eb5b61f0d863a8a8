package repository

import (
	"context"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/SaifuddinSaifee/cmu-housing-app/internal/domain"
	"github.com/SaifuddinSaifee/cmu-housing-app/internal/infrastructure/database/models"
)

// IdentityRepository keeps each partition in its own table.
type IdentityRepository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewIdentityRepository(db *gorm.DB, logger *slog.Logger) *IdentityRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &IdentityRepository{db: db, logger: logger}
}

func (r *IdentityRepository) Create(ctx context.Context, identity domain.Identity) (domain.Identity, error) {
	model, err := toModel(identity)
	if err != nil {
		return domain.Identity{}, err
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		err = translate(err, string(identity.Role), "email is already registered")
		return domain.Identity{}, logError(r.logger, "identity_create", err, "role", identity.Role)
	}
	return fromModel(model), nil
}

func (r *IdentityRepository) FindByID(ctx context.Context, role domain.Role, id string) (domain.Identity, error) {
	return r.first(ctx, role, "id = ?", id)
}

func (r *IdentityRepository) FindByEmail(ctx context.Context, role domain.Role, email string) (domain.Identity, error) {
	return r.first(ctx, role, "email = ?", email)
}

func (r *IdentityRepository) first(ctx context.Context, role domain.Role, cond string, arg any) (domain.Identity, error) {
	model, err := newModel(role)
	if err != nil {
		return domain.Identity{}, err
	}
	if err := r.db.WithContext(ctx).Where(cond, arg).First(model).Error; err != nil {
		err = translate(err, string(role), "")
		return domain.Identity{}, logError(r.logger, "identity_find", err, "role", role)
	}
	return fromModel(model), nil
}

func (r *IdentityRepository) FindByIDs(ctx context.Context, role domain.Role, ids []string) ([]domain.Identity, error) {
	if len(ids) == 0 {
		return []domain.Identity{}, nil
	}
	identities, err := r.find(ctx, role, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("id IN ?", ids)
	})
	if err != nil {
		return nil, logError(r.logger, "identity_find_many", err, "role", role)
	}
	return identities, nil
}

func (r *IdentityRepository) List(ctx context.Context, role domain.Role, skip, limit int) ([]domain.Identity, int64, error) {
	model, err := newModel(role)
	if err != nil {
		return nil, 0, err
	}
	var total int64
	if err := r.db.WithContext(ctx).Model(model).Count(&total).Error; err != nil {
		return nil, 0, logError(r.logger, "identity_count", translate(err, string(role), ""), "role", role)
	}
	identities, err := r.find(ctx, role, func(tx *gorm.DB) *gorm.DB {
		return tx.Order("created_at DESC").Order("id").Offset(skip).Limit(limit)
	})
	if err != nil {
		return nil, 0, logError(r.logger, "identity_list", err, "role", role)
	}
	return identities, total, nil
}

func (r *IdentityRepository) find(ctx context.Context, role domain.Role, scope func(*gorm.DB) *gorm.DB) ([]domain.Identity, error) {
	tx := scope(r.db.WithContext(ctx))
	var out []domain.Identity
	switch role {
	case domain.RoleApplicant:
		var rows []models.Applicant
		if err := tx.Find(&rows).Error; err != nil {
			return nil, translate(err, string(role), "")
		}
		for i := range rows {
			out = append(out, fromModel(&rows[i]))
		}
	case domain.RoleOwner:
		var rows []models.Owner
		if err := tx.Find(&rows).Error; err != nil {
			return nil, translate(err, string(role), "")
		}
		for i := range rows {
			out = append(out, fromModel(&rows[i]))
		}
	case domain.RoleAdministrator:
		var rows []models.Administrator
		if err := tx.Find(&rows).Error; err != nil {
			return nil, translate(err, string(role), "")
		}
		for i := range rows {
			out = append(out, fromModel(&rows[i]))
		}
	default:
		return nil, domain.NewValidationError("unknown account type %q", role)
	}
	if out == nil {
		out = []domain.Identity{}
	}
	return out, nil
}

func (r *IdentityRepository) UpdateSecret(ctx context.Context, role domain.Role, id, secretHash string) error {
	model, err := newModel(role)
	if err != nil {
		return err
	}
	res := r.db.WithContext(ctx).Model(model).Where("id = ?", id).Updates(map[string]any{
		"secret_hash": secretHash,
		"updated_at":  time.Now().UTC(),
	})
	if res.Error != nil {
		return logError(r.logger, "identity_update_secret", translate(res.Error, string(role), ""), "role", role)
	}
	if res.RowsAffected == 0 {
		return domain.NewNotFoundError(string(role))
	}
	return nil
}

func (r *IdentityRepository) Delete(ctx context.Context, role domain.Role, id string) error {
	model, err := newModel(role)
	if err != nil {
		return err
	}
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(model)
	if res.Error != nil {
		return logError(r.logger, "identity_delete", translate(res.Error, string(role), ""), "role", role)
	}
	if res.RowsAffected == 0 {
		return domain.NewNotFoundError(string(role))
	}
	return nil
}

// AddSavedListing appends in one conditional statement so concurrent saves
// of the same id cannot both succeed.
func (r *IdentityRepository) AddSavedListing(ctx context.Context, applicantID, listingID string) error {
	res := r.db.WithContext(ctx).Model(&models.Applicant{}).
		Where("id = ? AND NOT (? = ANY(saved_listings))", applicantID, listingID).
		Update("saved_listings", gorm.Expr("array_append(saved_listings, ?)", listingID))
	if res.Error != nil {
		return logError(r.logger, "saved_listing_add", translate(res.Error, "applicant", ""), "applicant_id", applicantID)
	}
	if res.RowsAffected > 0 {
		return nil
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Applicant{}).Where("id = ?", applicantID).Count(&count).Error; err != nil {
		return logError(r.logger, "saved_listing_add", translate(err, "applicant", ""), "applicant_id", applicantID)
	}
	if count == 0 {
		return domain.NewNotFoundError("applicant")
	}
	return domain.NewConflictError("listing is already saved")
}

func (r *IdentityRepository) RemoveSavedListing(ctx context.Context, applicantID, listingID string) error {
	res := r.db.WithContext(ctx).Model(&models.Applicant{}).
		Where("id = ?", applicantID).
		Update("saved_listings", gorm.Expr("array_remove(saved_listings, ?)", listingID))
	if res.Error != nil {
		return logError(r.logger, "saved_listing_remove", translate(res.Error, "applicant", ""), "applicant_id", applicantID)
	}
	if res.RowsAffected == 0 {
		return domain.NewNotFoundError("applicant")
	}
	return nil
}

func newModel(role domain.Role) (any, error) {
	switch role {
	case domain.RoleApplicant:
		return &models.Applicant{}, nil
	case domain.RoleOwner:
		return &models.Owner{}, nil
	case domain.RoleAdministrator:
		return &models.Administrator{}, nil
	}
	return nil, domain.NewValidationError("unknown account type %q", role)
}

func toAccount(identity domain.Identity) models.Account {
	return models.Account{
		ID:         identity.ID,
		Email:      identity.Email,
		Name:       identity.Name,
		SecretHash: identity.SecretHash,
		CreatedAt:  identity.CreatedAt,
		UpdatedAt:  identity.UpdatedAt,
	}
}

func toModel(identity domain.Identity) (any, error) {
	account := toAccount(identity)
	switch identity.Role {
	case domain.RoleApplicant:
		a := identity.Applicant
		if a == nil {
			return nil, domain.NewValidationError("applicant profile required")
		}
		saved := a.SavedListings
		if saved == nil {
			saved = []string{}
		}
		return &models.Applicant{
			Account:           account,
			Program:           a.Program,
			LinkedinURL:       a.LinkedinURL,
			HomeCity:          a.HomeCity,
			HomeCountry:       a.HomeCountry,
			RoomPreference:    a.RoomPreference,
			SmokingPreference: a.SmokingPreference,
			AlcoholPreference: a.AlcoholPreference,
			PetPreference:     a.PetPreference,
			FoodPreference:    a.FoodPreference,
			MedicalCondition:  a.MedicalCondition,
			OtherRequirements: a.OtherRequirements,
			IsNewArrival:      a.IsNewArrival,
			SavedListings:     saved,
		}, nil
	case domain.RoleOwner:
		o := identity.Owner
		if o == nil {
			return nil, domain.NewValidationError("owner profile required")
		}
		return &models.Owner{
			Account:                account,
			Phone:                  o.Phone,
			PreferredContactMethod: o.PreferredContactMethod,
		}, nil
	case domain.RoleAdministrator:
		return &models.Administrator{Account: account}, nil
	}
	return nil, domain.NewValidationError("unknown account type %q", identity.Role)
}

func fromAccount(account models.Account, role domain.Role) domain.Identity {
	return domain.Identity{
		ID:         account.ID,
		Role:       role,
		Email:      account.Email,
		Name:       account.Name,
		SecretHash: account.SecretHash,
		CreatedAt:  account.CreatedAt,
		UpdatedAt:  account.UpdatedAt,
	}
}

func fromModel(model any) domain.Identity {
	switch m := model.(type) {
	case *models.Applicant:
		identity := fromAccount(m.Account, domain.RoleApplicant)
		saved := []string(m.SavedListings)
		if saved == nil {
			saved = []string{}
		}
		identity.Applicant = &domain.ApplicantProfile{
			Program:           m.Program,
			LinkedinURL:       m.LinkedinURL,
			HomeCity:          m.HomeCity,
			HomeCountry:       m.HomeCountry,
			RoomPreference:    m.RoomPreference,
			SmokingPreference: m.SmokingPreference,
			AlcoholPreference: m.AlcoholPreference,
			PetPreference:     m.PetPreference,
			FoodPreference:    m.FoodPreference,
			MedicalCondition:  m.MedicalCondition,
			OtherRequirements: m.OtherRequirements,
			IsNewArrival:      m.IsNewArrival,
			SavedListings:     saved,
		}
		return identity
	case *models.Owner:
		identity := fromAccount(m.Account, domain.RoleOwner)
		identity.Owner = &domain.OwnerProfile{
			Phone:                  m.Phone,
			PreferredContactMethod: m.PreferredContactMethod,
		}
		return identity
	case *models.Administrator:
		return fromAccount(m.Account, domain.RoleAdministrator)
	}
	return domain.Identity{}
}
