package repository

import (
	"context"
	"strings"

	"mediconnect/internal/domain/entity"
	domainRepo "mediconnect/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type profileRepository struct{}

func NewProfileRepository() domainRepo.ProfileRepository {
	return &profileRepository{}
}

// FindByID does not translate gorm.ErrRecordNotFound: session resolution
// treats a missing row and a failed query the same way.
func (r *profileRepository) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Profile, error) {
	var profile entity.Profile
	if err := db.WithContext(ctx).Where("id = ?", id).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) Upsert(ctx context.Context, db *gorm.DB, profile *entity.Profile) error {
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(profile).Error
}

func (r *profileRepository) InsertIfAbsent(ctx context.Context, db *gorm.DB, profile *entity.Profile) (bool, error) {
	result := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Create(profile)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *profileRepository) Update(ctx context.Context, db *gorm.DB, profile *entity.Profile) error {
	return db.WithContext(ctx).Save(profile).Error
}

func (r *profileRepository) FindAll(ctx context.Context, db *gorm.DB, filter *entity.ProfileFilter) ([]entity.Profile, error) {
	var profiles []entity.Profile
	query := db.WithContext(ctx).Model(&entity.Profile{})

	if filter != nil {
		if filter.Role != "" {
			query = query.Where("role = ?", filter.Role)
		}
		if filter.Specialty != "" {
			query = query.Where("LOWER(specialty) LIKE ?", "%"+strings.ToLower(filter.Specialty)+"%")
		}
	}

	if err := query.Order("last_name ASC, first_name ASC").Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *profileRepository) CountByRole(ctx context.Context, db *gorm.DB) (map[entity.Role]int64, error) {
	var rows []struct {
		Role  entity.Role
		Total int64
	}
	err := db.WithContext(ctx).Model(&entity.Profile{}).
		Select("role, COUNT(*) AS total").
		Group("role").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[entity.Role]int64, len(rows))
	for _, row := range rows {
		counts[row.Role] = row.Total
	}
	return counts, nil
}
