package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openAccountDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&Account{}))
	return db
}

func TestAccountCreateHashesPassword(t *testing.T) {
	db := openAccountDB(t)

	account := Account{
		Username:   "alice",
		Email:      "alice@example.com",
		HashedPass: "sup3rsecret",
	}
	require.NoError(t, db.Create(&account).Error)

	assert.True(t, strings.HasPrefix(account.HashedPass, "$2"))
	assert.NotEqual(t, "sup3rsecret", account.HashedPass)
	assert.True(t, account.VerifyPassword("sup3rsecret"))
	assert.False(t, account.VerifyPassword("wrongpass1"))
	assert.Equal(t, "UTC", account.Timezone)
	assert.False(t, account.DateJoined.IsZero())
}

func TestAccountCreateDoesNotDoubleHash(t *testing.T) {
	db := openAccountDB(t)

	account := Account{
		Username:   "alice",
		Email:      "alice@example.com",
		HashedPass: "sup3rsecret",
	}
	require.NoError(t, db.Create(&account).Error)
	hashed := account.HashedPass

	// Re-running create hooks on an already-hashed password is a no-op
	require.NoError(t, account.BeforeCreate(db))
	assert.Equal(t, hashed, account.HashedPass)
}

func TestGoogleAccountHasNoPassword(t *testing.T) {
	db := openAccountDB(t)

	account := Account{
		Username: "bob",
		Email:    "bob@example.com",
		GoogleID: "google-sub-123",
	}
	require.NoError(t, db.Create(&account).Error)

	assert.Empty(t, account.HashedPass)
	assert.False(t, account.VerifyPassword(""))
	assert.False(t, account.VerifyPassword("anything1"))
}
