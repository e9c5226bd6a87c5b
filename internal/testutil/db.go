// Package testutil holds shared fixtures for package tests: a migrated
// sqlite store, a controllable clock and in-memory blob and presence stores.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/anonto42/snapgram/backend/internal/repositories"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenDB opens a migrated sqlite database in a temp dir. A single connection
// serialises transactions the way row locks do on postgres.
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "test.db") + "?_busy_timeout=5000"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, repositories.Migrate(db))
	return db
}

// OpenStore is OpenDB wrapped in a repositories.Store
func OpenStore(t *testing.T) *repositories.Store {
	t.Helper()
	return repositories.NewStore(OpenDB(t))
}
