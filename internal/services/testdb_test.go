package services

import (
	"testing"

	"birthdaybook/internal/database"
	"birthdaybook/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestDB returns an isolated in-memory database with the full schema.
// The single-connection pool keeps every query on the same in-memory store.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

func createTestAccount(t *testing.T, db *gorm.DB, username string) models.Account {
	t.Helper()
	account := models.Account{
		Username:   username,
		Email:      username + "@example.com",
		HashedPass: "testpass1",
	}
	require.NoError(t, db.Create(&account).Error)
	return account
}

func createTestBirthday(t *testing.T, db *gorm.DB, username, name string, month, day int, rel models.Relationship) models.Birthday {
	t.Helper()
	birthday := models.Birthday{
		Username:     username,
		Name:         name,
		Month:        month,
		Day:          day,
		Relationship: rel,
	}
	require.NoError(t, db.Create(&birthday).Error)
	return birthday
}
