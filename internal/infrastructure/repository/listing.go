package repository

import (
	"context"
	"log/slog"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SaifuddinSaifee/cmu-housing-app/internal/domain"
	"github.com/SaifuddinSaifee/cmu-housing-app/internal/infrastructure/database/models"
)

type ListingRepository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewListingRepository(db *gorm.DB, logger *slog.Logger) *ListingRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &ListingRepository{db: db, logger: logger}
}

func (r *ListingRepository) Create(ctx context.Context, listing domain.Listing) (domain.Listing, error) {
	model := toListingModel(listing)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return domain.Listing{}, logError(r.logger, "listing_create", translate(err, "listing", "listing already exists"))
	}
	return fromListingModel(model), nil
}

func (r *ListingRepository) Get(ctx context.Context, id string) (domain.Listing, error) {
	var model models.Listing
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return domain.Listing{}, logError(r.logger, "listing_get", translate(err, "listing", ""), "listing_id", id)
	}
	return fromListingModel(model), nil
}

func (r *ListingRepository) GetMany(ctx context.Context, ids []string) ([]domain.Listing, error) {
	if len(ids) == 0 {
		return []domain.Listing{}, nil
	}
	var rows []models.Listing
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, logError(r.logger, "listing_get_many", translate(err, "listing", ""))
	}
	return fromListingModels(rows), nil
}

func (r *ListingRepository) Count(ctx context.Context, filters []domain.Filter) (int64, error) {
	exprs, err := filterExpressions(filters)
	if err != nil {
		return 0, err
	}
	var total int64
	tx := r.db.WithContext(ctx).Model(&models.Listing{})
	if len(exprs) > 0 {
		tx = tx.Clauses(clause.Where{Exprs: exprs})
	}
	if err := tx.Count(&total).Error; err != nil {
		return 0, logError(r.logger, "listing_count", translate(err, "listing", ""))
	}
	return total, nil
}

func (r *ListingRepository) Find(ctx context.Context, spec domain.QuerySpec) ([]domain.Listing, error) {
	exprs, err := filterExpressions(spec.Filters)
	if err != nil {
		return nil, err
	}
	order, err := orderBy(spec.Sort)
	if err != nil {
		return nil, err
	}

	tx := r.db.WithContext(ctx).Model(&models.Listing{})
	if len(exprs) > 0 {
		tx = tx.Clauses(clause.Where{Exprs: exprs})
	}
	if len(order.Columns) > 0 {
		tx = tx.Clauses(order)
	}

	var rows []models.Listing
	if err := tx.Offset(spec.Skip()).Limit(spec.Limit).Find(&rows).Error; err != nil {
		return nil, logError(r.logger, "listing_find", translate(err, "listing", ""))
	}
	return fromListingModels(rows), nil
}

// Update writes listing only while the stored version still equals version.
func (r *ListingRepository) Update(ctx context.Context, listing domain.Listing, version int64) (domain.Listing, error) {
	model := toListingModel(listing)
	res := r.db.WithContext(ctx).Model(&models.Listing{}).
		Where("id = ? AND version = ?", listing.ID, version).
		Select("*").
		Omit("id", "owner_id", "owner_name", "created_at").
		Updates(&model)
	if res.Error != nil {
		return domain.Listing{}, logError(r.logger, "listing_update", translate(res.Error, "listing", ""), "listing_id", listing.ID)
	}
	if res.RowsAffected == 0 {
		return domain.Listing{}, r.lostRace(ctx, listing.ID)
	}
	return r.Get(ctx, listing.ID)
}

func (r *ListingRepository) Delete(ctx context.Context, id string, version int64) error {
	res := r.db.WithContext(ctx).Where("id = ? AND version = ?", id, version).Delete(&models.Listing{})
	if res.Error != nil {
		return logError(r.logger, "listing_delete", translate(res.Error, "listing", ""), "listing_id", id)
	}
	if res.RowsAffected == 0 {
		return r.lostRace(ctx, id)
	}
	return nil
}

// lostRace tells a concurrent modification apart from a concurrent delete.
func (r *ListingRepository) lostRace(ctx context.Context, id string) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Listing{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return logError(r.logger, "listing_exists", translate(err, "listing", ""), "listing_id", id)
	}
	if count == 0 {
		return domain.NewNotFoundError("listing")
	}
	return domain.NewConflictError("listing was modified concurrently, retry")
}

func toListingModel(l domain.Listing) models.Listing {
	return models.Listing{
		ID:        l.ID,
		OwnerID:   l.OwnerID,
		OwnerName: l.OwnerName,
		Address: models.Address{
			Street:  l.Address.Street,
			City:    l.Address.City,
			State:   l.Address.State,
			ZipCode: l.Address.ZipCode,
		},
		Rent:               l.Rent,
		Deposit:            l.Deposit,
		AvailableFrom:      l.AvailableFrom,
		RoomType:           l.RoomType,
		NumberOfRooms:      l.NumberOfRooms,
		NumberOfBathrooms:  l.NumberOfBathrooms,
		SquareFootage:      l.SquareFootage,
		Amenities:          nonNil(l.Amenities),
		PetsAllowed:        l.PetsAllowed,
		SmokingAllowed:     l.SmokingAllowed,
		ParkingAvailable:   l.ParkingAvailable,
		Images:             nonNil(l.Images),
		Description:        l.Description,
		IsAvailable:        l.IsAvailable,
		RequiredDocuments:  nonNil(l.RequiredDocuments),
		TermsAndConditions: l.TermsAndConditions,
		CreatedAt:          l.CreatedAt,
		UpdatedAt:          l.UpdatedAt,
		Version:            l.Version,
	}
}

func fromListingModel(m models.Listing) domain.Listing {
	return domain.Listing{
		ID:        m.ID,
		OwnerID:   m.OwnerID,
		OwnerName: m.OwnerName,
		Address: domain.Address{
			Street:  m.Address.Street,
			City:    m.Address.City,
			State:   m.Address.State,
			ZipCode: m.Address.ZipCode,
		},
		Rent:               m.Rent,
		Deposit:            m.Deposit,
		AvailableFrom:      m.AvailableFrom.UTC(),
		RoomType:           m.RoomType,
		NumberOfRooms:      m.NumberOfRooms,
		NumberOfBathrooms:  m.NumberOfBathrooms,
		SquareFootage:      m.SquareFootage,
		Amenities:          nonNil(m.Amenities),
		PetsAllowed:        m.PetsAllowed,
		SmokingAllowed:     m.SmokingAllowed,
		ParkingAvailable:   m.ParkingAvailable,
		Images:             nonNil(m.Images),
		Description:        m.Description,
		IsAvailable:        m.IsAvailable,
		RequiredDocuments:  nonNil(m.RequiredDocuments),
		TermsAndConditions: m.TermsAndConditions,
		CreatedAt:          m.CreatedAt.UTC(),
		UpdatedAt:          m.UpdatedAt.UTC(),
		Version:            m.Version,
	}
}

func fromListingModels(rows []models.Listing) []domain.Listing {
	out := make([]domain.Listing, 0, len(rows))
	for _, row := range rows {
		out = append(out, fromListingModel(row))
	}
	return out
}

func nonNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
