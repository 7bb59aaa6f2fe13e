package database

import (
	"SalvadoDental/models"
	"context"
	"log"
	"time"

	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDB opens the Postgres connection, migrates the schema and seeds the clinic schedule.
func InitDB(ctx context.Context, dsn string, development bool) (*gorm.DB, error) {
	// Configure logging level based on environment
	logMode := logger.Silent
	if development {
		logMode = logger.Info
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: false,
		PrepareStmt:                              true,
		TranslateError:                           true,
		Logger:                                   logger.Default.LogMode(logMode),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database connection")
	}

	if err := configureConnectionPool(db); err != nil {
		return nil, err
	}

	if err := testDatabaseConnection(ctx, db); err != nil {
		return nil, err
	}

	if err := runMigrations(db); err != nil {
		return nil, errors.Wrap(err, "failed to run migrations")
	}

	if err := seedInitialData(db); err != nil {
		return nil, err
	}

	log.Println("Database initialized successfully.")
	return db, nil
}

// configureConnectionPool sets up the connection pool settings for the database.
func configureConnectionPool(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return errors.Wrap(err, "failed to get sql.DB from GORM")
	}
	sqlDB.SetMaxOpenConns(40)
	sqlDB.SetMaxIdleConns(20)
	sqlDB.SetConnMaxLifetime(10 * time.Minute)
	return nil
}

// testDatabaseConnection verifies that the database connection is functional.
func testDatabaseConnection(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return errors.Wrap(err, "failed to get sql.DB from GORM")
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return errors.Wrap(err, "failed to ping database")
	}
	return nil
}

// runMigrations performs database schema migrations.
func runMigrations(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Profile{},
		&models.Appointment{},
		&models.ClinicScheduleEntry{},
	)
}

// seedInitialData populates the database with initial data.
func seedInitialData(db *gorm.DB) error {
	if err := models.SeedClinicSchedule(db); err != nil {
		return errors.Wrap(err, "failed to seed clinic schedule")
	}
	return nil
}

// CloseDB releases the underlying connection pool.
func CloseDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return errors.Wrap(err, "failed to get sql.DB from GORM")
	}
	return sqlDB.Close()
}
