package persistence

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vitrina/backend/internal/infrastructure/persistence/models"
)

func TestNewDatabase_SQLite(t *testing.T) {
	db, err := NewDatabase(Options{
		Driver:     DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "vitrina.db"),
		Logger:     zap.NewNop(),
		LogLevel:   "debug",
	})
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, DriverSQLite, db.Driver())
	assert.NoError(t, db.Ping())
	assert.True(t, db.DB.Migrator().HasTable(&models.CartSnapshotModel{}))

	sqlDB, err := db.DB.DB()
	require.NoError(t, err)
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
}

func TestNewDatabase_Errors(t *testing.T) {
	t.Run("unknown driver", func(t *testing.T) {
		_, err := NewDatabase(Options{Driver: "mysql"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported database driver")
	})

	t.Run("sqlite without path", func(t *testing.T) {
		_, err := NewDatabase(Options{Driver: DriverSQLite})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sqlite path is required")
	})
}
