package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestMigrate_CreatesTables(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, Migrate(db, zap.NewNop()))

	for _, table := range []string{"customers", "invoices", "quotes", "provider_tokens", "webhook_events"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
	assert.True(t, db.Migrator().HasIndex("customers", "idx_customers_natural_key"))
	assert.True(t, db.Migrator().HasIndex("webhook_events", "idx_webhook_events_key"))

	repos := NewRepositories(db, nil, zap.NewNop())
	assert.NotNil(t, repos.Customer)
	assert.NotNil(t, repos.WebhookEvent)
}
