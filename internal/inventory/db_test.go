package inventory

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/vendaops/vendaops-backend/pkg/db/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	// one connection so the in-memory database survives pooling
	sqlDB.SetMaxOpenConns(1)

	if err := conn.AutoMigrate(
		&models.Product{},
		&models.Offer{},
		&models.Order{},
		&models.InventoryItem{},
		&models.InventoryTransaction{},
	); err != nil {
		t.Fatalf("migrate test schema: %v", err)
	}

	t.Cleanup(func() { _ = sqlDB.Close() })
	return conn
}
