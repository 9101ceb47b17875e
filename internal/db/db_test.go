package db

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormlogger "gorm.io/gorm/logger"

	"crew-booking-backend/config"
)

func TestInit_SQLite(t *testing.T) {
	cfg := &config.DatabaseConfig{
		Driver:   "sqlite",
		DSN:      fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
		LogLevel: "silent",
		// Ignored on sqlite.
		EnableRangeIndex: true,
	}

	db, err := Init(cfg)
	require.NoError(t, err)

	for _, m := range Models() {
		assert.True(t, db.Migrator().HasTable(m), "missing table for %T", m)
	}
	assert.True(t, db.Migrator().HasTable("subscription_worker_mapping"))
	assert.True(t, db.Migrator().HasIndex("occupancies", "idx_occupancy_booking_worker"))

	var fk int
	require.NoError(t, db.Raw("PRAGMA foreign_keys").Scan(&fk).Error)
	assert.Equal(t, 1, fk)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(&config.DatabaseConfig{Driver: "oracle"})
	assert.Error(t, err)
}

func TestGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, gormLogLevel("SILENT"))
	assert.Equal(t, gormlogger.Info, gormLogLevel("info"))
	assert.Equal(t, gormlogger.Warn, gormLogLevel(""))
}

func TestRangeIndexDDL(t *testing.T) {
	ddl := rangeIndexDDL()
	assert.Contains(t, ddl[0], "btree_gist")
	assert.Contains(t, ddl[3], "tstzrange(start_time, end_time, '[)')")
}
