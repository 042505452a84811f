package database

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"sprout/pkg/logger"
)

// Open initializes the SQLite connection with performance-tuned settings
// (WAL mode). It handles directory creation, connection pooling configuration
// and schema migrations, and returns the ready-to-use handle.
func Open(dbPath string) (*gorm.DB, error) {
	if err := ensureDir(dbPath); err != nil {
		return nil, fmt.Errorf("failed to ensure database directory: %w", err)
	}

	// WAL mode enables concurrent readers and a single writer without locking
	// the entire file. busy_timeout makes the driver wait for the lock instead
	// of failing immediately.
	dsn := fmt.Sprintf(
		"%s?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL&_cache_size=-20000&_foreign_keys=1",
		dbPath,
	)

	gormConfig := &gorm.Config{
		Logger:      gormLogger.Default.LogMode(gormLogger.Silent),
		PrepareStmt: true,
	}

	db, err := gorm.Open(sqlite.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	if err := configurePool(db); err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}

	logger.LogInfo("Database initialized successfully")
	return db, nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return os.MkdirAll(dir, 0750)
	}
	return nil
}

func configurePool(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to retrieve generic database interface: %w", err)
	}

	// Limit concurrency to prevent disk I/O throttling on the single SQLite file.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(1 * time.Hour)
	return nil
}

// Migrate applies the schema and the listing indices. Exposed so tests can
// run it against an in-memory database.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&User{}, &Plant{}, &WateringHistory{}, &PlantPhoto{}); err != nil {
		return fmt.Errorf("schema migration failed: %w", err)
	}

	// Raw SQL is used here to ensure idempotent index creation
	indices := []string{
		"CREATE INDEX IF NOT EXISTS idx_plants_user_created ON plants(user_id, created_at DESC);",
		"CREATE INDEX IF NOT EXISTS idx_watering_plant_watered ON watering_histories(plant_id, watered_at DESC);",
		"CREATE INDEX IF NOT EXISTS idx_photos_plant_created ON plant_photos(plant_id, created_at DESC);",
	}

	for _, idx := range indices {
		if err := db.Exec(idx).Error; err != nil {
			logger.LogWarn("Failed to create index: %v", err)
		}
	}
	return nil
}
