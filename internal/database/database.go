package database

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"mail-webhook-relay/internal/config"
	"mail-webhook-relay/internal/model"
)

// Init opens the database connection, runs migrations, and seeds the
// default catch-all rule when the rules table is empty.
func Init(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormLogger := logger.New(
		logrus.StandardLogger(),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	gormConfig := &gorm.Config{
		Logger: gormLogger,
		// The pipeline distinguishes a duplicate message_id insert from
		// other failures via gorm.ErrDuplicatedKey.
		TranslateError: true,
	}

	var db *gorm.DB
	var err error
	switch cfg.Driver {
	case "mysql":
		db, err = gorm.Open(mysql.Open(cfg.GetDSN()), gormConfig)
	case "sqlite":
		db, err = gorm.Open(sqlite.Open(cfg.Path), gormConfig)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying SQL DB: %w", err)
	}

	if cfg.Driver == "mysql" {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
	} else {
		// SQLite serializes writers; a single connection avoids
		// SQLITE_BUSY under concurrent ingestion.
		sqlDB.SetMaxOpenConns(1)
	}

	if err := runMigrations(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := seedDefaultRule(db); err != nil {
		return nil, fmt.Errorf("failed to seed default rule: %w", err)
	}

	logrus.Info("Database initialized successfully")
	return db, nil
}

func runMigrations(db *gorm.DB) error {
	logrus.Info("Running database migrations...")

	if err := db.AutoMigrate(&model.ForwardRule{}, &model.ForwardedEmail{}); err != nil {
		return fmt.Errorf("failed to auto migrate: %w", err)
	}

	logrus.Info("Database migrations completed")
	return nil
}

// seedDefaultRule inserts a catch-all rule on first run so a fresh
// deployment retains incoming mail instead of silently dropping it.
func seedDefaultRule(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.ForwardRule{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	rule := model.ForwardRule{
		Name:        "All Emails",
		Enabled:     true,
		FromAddr:    "*",
		ForwardTo:   "",
		Description: "Accept all emails (wildcard rule)",
	}
	if err := db.Create(&rule).Error; err != nil {
		return err
	}

	logrus.Info("Default catch-all forwarding rule added")
	return nil
}
