package database

import (
	"fmt"
	"learning_system_backend/internal/config"
	"learning_system_backend/internal/model"
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func dialector(cfg *config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "", "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
			cfg.User,
			cfg.Password,
			cfg.Host,
			cfg.Port,
			cfg.DBName,
			cfg.Charset,
			cfg.ParseTime,
		)
		return mysql.Open(dsn), nil
	case "postgres":
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host,
			cfg.Port,
			cfg.User,
			cfg.Password,
			cfg.DBName,
			cfg.SSLMode,
		)
		return postgres.Open(dsn), nil
	case "sqlite":
		return sqlite.Open(cfg.Path), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	d, err := dialector(cfg)
	if err != nil {
		return nil, err
	}

	logMode := logger.Warn
	if cfg.LogSQL {
		logMode = logger.Info
	}

	db, err := gorm.Open(d, &gorm.Config{
		Logger: logger.Default.LogMode(logMode),
	})
	if err != nil {
		return nil, err
	}

	if cfg.Driver == "sqlite" {
		// sqlite serialises writers; a single connection avoids "database is locked"
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.SetMaxOpenConns(1)
		}
	}

	log.Printf("Database connection established (%s)", cfg.Driver)
	return db, nil
}

// Migrate creates or updates every table the application owns.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.User{},
		&model.ChangeRequest{},
		&model.SyllabusItem{},
		&model.Quiz{},
		&model.QuizQuestion{},
		&model.QuizAttempt{},
		&model.QuizResponse{},
		&model.WeakArea{},
		&model.ChatThread{},
		&model.ChatMessage{},
	)
	if err != nil {
		return err
	}

	log.Println("Database migration completed")
	return nil
}
