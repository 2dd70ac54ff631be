package database

import (
	"context"
	"fmt"

	"github.com/catprepedge/catprep-backend/internal/config"
	"github.com/catprepedge/catprep-backend/internal/model"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewGormDB opens the GORM handle used by the blog store and migrates
// the post and comment tables.
func NewGormDB(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*gorm.DB, error) {
	level := gormlogger.Warn
	if cfg.GinMode == "debug" {
		level = gormlogger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(level),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open gorm: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("gorm sql handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(int(cfg.MaxDBConns))

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping gorm database: %w", err)
	}

	if err := db.WithContext(ctx).AutoMigrate(&model.Post{}, &model.Comment{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("auto migrate blog tables: %w", err)
	}

	log.Info().Msg("GORM blog store ready")

	return db, nil
}
