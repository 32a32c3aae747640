package database

import (
	"fmt"

	"github.com/julz808/educoach-prep-portal-sub001/config"
	"github.com/julz808/educoach-prep-portal-sub001/internal/model"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func DSN(cfg *config.Config) string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.User, cfg.Database.Password, cfg.Database.Name, cfg.Database.SSLMode,
	)
}

func NewDatabase(cfg *config.Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)}
	db, err := gorm.Open(postgres.Open(DSN(cfg)), gormCfg)
	if err != nil {
		log.Error().Err(err).Str("host", cfg.Database.Host).Msg("NewDatabase: failed to connect to database")
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	log.Info().Str("host", cfg.Database.Host).Str("name", cfg.Database.Name).Msg("NewDatabase: database connected")
	return db, nil
}

// AutoMigrate creates or updates the session, question and writing-grade
// tables, including the partial unique index on in-progress sessions.
func AutoMigrate(db *gorm.DB) error {
	log.Info().Msg("AutoMigrate: running database migrations...")
	err := db.AutoMigrate(
		&model.Question{},
		&model.Session{},
		&model.WritingGrade{},
	)
	if err != nil {
		log.Error().Err(err).Msg("AutoMigrate: database migration failed")
		return err
	}
	log.Info().Msg("AutoMigrate: database migration completed successfully")
	return nil
}
