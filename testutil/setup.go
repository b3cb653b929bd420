package testutil

import (
	"testing"

	"github.com/habitquest/server/cache"
	"github.com/habitquest/server/db/sqlite"
	"github.com/habitquest/server/model"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// SetupTestDB creates an in-memory SQLite DB and runs AutoMigrate.
// It requires no external services.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := sqlite.Open(":memory:")
	require.NoError(t, err, "SetupTestDB: Open")
	require.NoError(t, model.AutoMigrate(db), "SetupTestDB: AutoMigrate")
	return db
}

// SetupTestCache creates an in-process cache (no Redis required).
func SetupTestCache(t *testing.T) cache.Cache {
	t.Helper()
	c, err := cache.New(cache.Config{}) // empty RedisAddr → local cache
	require.NoError(t, err, "SetupTestCache: New")
	return c
}

// CreateUser inserts a user row for tests.
func CreateUser(t *testing.T, db *gorm.DB, email, nickname string) *model.User {
	t.Helper()
	u := &model.User{Email: email, Nickname: nickname, PasswordHash: "x", Status: 1}
	require.NoError(t, db.Create(u).Error)
	return u
}
