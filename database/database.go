package database

import (
	"coursemaster/config"
	"coursemaster/logger"
	"coursemaster/models"
	"fmt"

	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// ConnectDb opens the configured database and runs migrations
func ConnectDb(cfg *config.Config, log *logger.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DBName)
	case "postgres", "":
		dsn := fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
			cfg.DBHost,
			cfg.DBUser,
			cfg.DBPassword,
			cfg.DBName,
			cfg.DBPort,
			cfg.DBSSLMode,
		)
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	gormLogger := gormlogger.Default.LogMode(gormlogger.Warn)
	if !cfg.IsProduction() {
		gormLogger = gormlogger.Default.LogMode(gormlogger.Info)
	}

	// cascades and ownership checks live in the services, not in FK constraints
	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError:                           true,
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLogger,
	})
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "get database instance")
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(0)

	if err := Migrate(db, log); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates every table and the indexes GORM tags cannot express
func Migrate(db *gorm.DB, log *logger.Logger) error {
	log.Info("Running Migrations...")

	err := db.AutoMigrate(
		&models.User{},
		&models.LoginHistory{},
		&models.Course{},
		&models.Lesson{},
		&models.Batch{},
		&models.Enrollment{},
		&models.ProgressEntry{},
		&models.Order{},
		&models.PaymentEvent{},
		&models.Assignment{},
		&models.Submission{},
		&models.Quiz{},
		&models.QuizAttempt{},
	)
	if err != nil {
		return errors.Wrap(err, "auto migrate")
	}

	// one pending order per (user, course); postgres and sqlite both support partial indexes
	if err := db.Exec(
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_orders_pending_user_course ON orders (user_id, course_id) WHERE status = 'pending'",
	).Error; err != nil {
		return errors.Wrap(err, "create pending order index")
	}

	log.Info("Migrations completed successfully.")
	return nil
}
