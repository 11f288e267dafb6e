// Package gormstore keeps assessments in a SQL database through gorm.
// Postgres is used in deployments and SQLite for local runs and tests.
package gormstore

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"oral-health-intake-service/internal/assessment"
	"oral-health-intake-service/internal/observability/logging"
	"oral-health-intake-service/internal/store"
)

type Store struct {
	db *gorm.DB
}

// Open connects with the named driver ("postgres" or "sqlite") and migrates
// the assessments table.
func Open(driver, dsn string) (*Store, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("%w: %s", store.ErrUnknownDriver, driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: newLogger(logging.WithComponent("gorm")),
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", driver, err)
	}
	return New(db)
}

// New wraps an open connection and migrates the assessments table.
func New(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&assessment.Record{}); err != nil {
		return nil, fmt.Errorf("migrating %s: %w", assessment.TableName, err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Insert(ctx context.Context, rec *assessment.Record) error {
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("inserting assessment: %w", err)
	}
	return nil
}

func (s *Store) FetchAll(ctx context.Context) ([]assessment.Record, error) {
	var recs []assessment.Record
	if err := s.db.WithContext(ctx).Order("id").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("fetching assessments: %w", err)
	}
	if len(recs) == 0 {
		return nil, nil
	}
	return recs, nil
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

type logWriter struct {
	log zerolog.Logger
}

func (w logWriter) Printf(format string, args ...interface{}) {
	w.log.Debug().Msgf(format, args...)
}

func newLogger(l zerolog.Logger) logger.Interface {
	return logger.New(logWriter{log: l}, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

var _ store.Store = (*Store)(nil)
