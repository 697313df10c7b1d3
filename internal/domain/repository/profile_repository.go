package repository

import (
	"context"

	"mediconnect/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProfileRepository interface {
	// FindByID returns gorm.ErrRecordNotFound when no row exists.
	FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Profile, error)
	// Upsert creates the row or replaces it by primary key.
	Upsert(ctx context.Context, db *gorm.DB, profile *entity.Profile) error
	// InsertIfAbsent creates the row unless one with the same id exists, in
	// which case the stored row is left untouched and created is false.
	InsertIfAbsent(ctx context.Context, db *gorm.DB, profile *entity.Profile) (created bool, err error)
	Update(ctx context.Context, db *gorm.DB, profile *entity.Profile) error
	FindAll(ctx context.Context, db *gorm.DB, filter *entity.ProfileFilter) ([]entity.Profile, error)
	CountByRole(ctx context.Context, db *gorm.DB) (map[entity.Role]int64, error)
}
