package repository

import (
	"testing"

	"mediconnect/internal/domain/entity"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens an in-memory SQLite database with every table migrated.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// Every connection to ":memory:" is a separate database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&entity.User{},
		&entity.Profile{},
		&entity.MedicalDocument{},
		&entity.Appointment{},
		&entity.Consultation{},
		&entity.CommunityPost{},
		&entity.CommunityComment{},
		&entity.Message{},
		&entity.Notification{},
		&entity.Product{},
		&entity.AuditLog{},
	)
	require.NoError(t, err)

	return db
}
