package database_test

import (
	"coursemaster/config"
	"coursemaster/database"
	"coursemaster/logger"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observedLogger() (*logger.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.InfoLevel)
	return &logger.Logger{SugaredLogger: zap.New(core).Sugar()}, logs
}

func TestConnectDbMigratesThroughAppLogger(t *testing.T) {
	log, logs := observedLogger()
	cfg := &config.Config{
		AppEnv:   "production",
		DBDriver: "sqlite",
		DBName:   filepath.Join(t.TempDir(), "coursemaster.db"),
	}

	db, err := database.ConnectDb(cfg, log)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	assert.Equal(t, 1, logs.FilterMessage("Running Migrations...").Len())
	assert.Equal(t, 1, logs.FilterMessage("Migrations completed successfully.").Len())

	for _, table := range []string{"users", "courses", "enrollments", "orders", "payment_events", "quiz_attempts"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
	assert.True(t, db.Migrator().HasIndex("orders", "idx_orders_pending_user_course"))

	// migrating an existing schema is a no-op
	require.NoError(t, database.Migrate(db, log))
	assert.Equal(t, 2, logs.FilterMessage("Migrations completed successfully.").Len())
}

func TestConnectDbUnsupportedDriver(t *testing.T) {
	log, logs := observedLogger()
	_, err := database.ConnectDb(&config.Config{DBDriver: "mysql"}, log)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unsupported DB_DRIVER "mysql"`)
	assert.Zero(t, logs.Len())
}
