package database

import (
	"errors"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type migrationScratchRow struct {
	ID    string `gorm:"primaryKey"`
	Value string
}

func openMigratedDatabase(testContext *testing.T) *gorm.DB {
	testContext.Helper()
	database, err := Open(Options{Driver: DriverSQLite, Path: filepath.Join(testContext.TempDir(), "migration.db")}, zap.NewNop())
	if err != nil {
		testContext.Fatalf("failed to open sqlite: %v", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		testContext.Fatalf("failed to access sql db: %v", err)
	}
	testContext.Cleanup(func() {
		_ = sqlDB.Close()
	})
	if err := Migrate(database, zap.NewNop()); err != nil {
		testContext.Fatalf("failed to migrate schema: %v", err)
	}
	return database
}

func TestMigrateCreatesLedger(testContext *testing.T) {
	database := openMigratedDatabase(testContext)

	if !database.Migrator().HasTable(&migrationRecord{}) {
		testContext.Fatalf("expected db_migrations table to exist")
	}
	var count int64
	if err := database.Model(&migrationRecord{}).Count(&count).Error; err != nil {
		testContext.Fatalf("failed to count ledger rows: %v", err)
	}
	if count != int64(len(registeredMigrations())) {
		testContext.Fatalf("expected one ledger row per registered migration, got %d", count)
	}
}

func TestApplyMigrationsRunsOnce(testContext *testing.T) {
	database := openMigratedDatabase(testContext)

	calls := 0
	migrations := []migrationDefinition{{
		name: "2026-10-01_test_once",
		apply: func(tx *gorm.DB) error {
			calls++
			return nil
		},
	}}

	for attempt := 0; attempt < 2; attempt++ {
		if err := applyMigrations(database, migrations, zap.NewNop()); err != nil {
			testContext.Fatalf("apply attempt %d failed: %v", attempt, err)
		}
	}
	if calls != 1 {
		testContext.Fatalf("expected migration to run once, ran %d times", calls)
	}

	var record migrationRecord
	if err := database.Where("name = ?", "2026-10-01_test_once").Take(&record).Error; err != nil {
		testContext.Fatalf("expected ledger row: %v", err)
	}
	if record.AppliedAtSeconds == 0 {
		testContext.Fatalf("expected migration timestamp to be set")
	}
}

func TestApplyMigrationsRollsBackFailedMigration(testContext *testing.T) {
	database := openMigratedDatabase(testContext)
	if err := database.AutoMigrate(&migrationScratchRow{}); err != nil {
		testContext.Fatalf("failed to create scratch table: %v", err)
	}

	failure := errors.New("boom")
	migrations := []migrationDefinition{{
		name: "2026-10-02_test_failure",
		apply: func(tx *gorm.DB) error {
			if err := tx.Create(&migrationScratchRow{ID: "row-1", Value: "partial"}).Error; err != nil {
				return err
			}
			return failure
		},
	}}

	err := applyMigrations(database, migrations, zap.NewNop())
	if !errors.Is(err, failure) {
		testContext.Fatalf("expected migration failure to be returned, got %v", err)
	}

	var ledgerCount int64
	if err := database.Model(&migrationRecord{}).Where("name = ?", "2026-10-02_test_failure").Count(&ledgerCount).Error; err != nil {
		testContext.Fatalf("failed to count ledger rows: %v", err)
	}
	if ledgerCount != 0 {
		testContext.Fatalf("expected no ledger row for a failed migration")
	}
	var rowCount int64
	if err := database.Model(&migrationScratchRow{}).Count(&rowCount).Error; err != nil {
		testContext.Fatalf("failed to count scratch rows: %v", err)
	}
	if rowCount != 0 {
		testContext.Fatalf("expected partial migration writes to be rolled back, got %d rows", rowCount)
	}
}
