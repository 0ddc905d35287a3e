package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/queue-app/config"
	"github.com/yeremiapane/queue-app/database"
	"github.com/yeremiapane/queue-app/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB opens a private in-memory database with the schema migrated.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), config.GormConfig())
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db))
	return db
}

// seedTables creates tables numbered 1..n with the given capacities.
func seedTables(t *testing.T, db *gorm.DB, capacities ...int) []models.Table {
	t.Helper()
	tables := make([]models.Table, len(capacities))
	for i, c := range capacities {
		tables[i] = models.Table{
			TableNumber: i + 1,
			Capacity:    c,
			Status:      models.TableStatusFree,
			IsJoinable:  true,
		}
		require.NoError(t, db.Create(&tables[i]).Error)
	}
	return tables
}

func walkIn(name string, size int) NewToken {
	return NewToken{CustomerName: name, PhoneNumber: "555-0100", PartySize: size}
}

func mustCreateToken(t *testing.T, s *QueueService, in NewToken) *models.Token {
	t.Helper()
	token, err := s.CreateToken(context.Background(), in)
	require.NoError(t, err)
	return token
}

func reloadToken(t *testing.T, db *gorm.DB, id uint) models.Token {
	t.Helper()
	var token models.Token
	require.NoError(t, db.First(&token, id).Error)
	return token
}

func reloadTable(t *testing.T, db *gorm.DB, id uint) models.Table {
	t.Helper()
	var table models.Table
	require.NoError(t, db.First(&table, id).Error)
	return table
}

func fixedClock(ts time.Time) func() time.Time {
	return func() time.Time { return ts }
}
