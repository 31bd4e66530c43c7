// Package storage holds durable adapters for the pkg/storage port.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/amirasaad/fxchat/pkg/storage"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Entry is one persisted key/value pair.
type Entry struct {
	Key       string `gorm:"primaryKey;size:128"`
	Value     []byte
	UpdatedAt time.Time
}

// TableName overrides the default table name.
func (Entry) TableName() string {
	return "kv_entries"
}

// GormStore implements storage.Store on a single SQL table.
type GormStore struct {
	db *gorm.DB
}

// NewDBConnection opens databaseURL. URLs starting with postgres:// or
// postgresql:// use the postgres driver; sqlite://path (or a bare path)
// uses sqlite.
func NewDBConnection(databaseURL, appEnv string) (*gorm.DB, error) {
	if databaseURL == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}

	var dialector gorm.Dialector
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		dialector = postgres.Open(databaseURL)
	default:
		dialector = sqlite.Open(strings.TrimPrefix(databaseURL, "sqlite://"))
	}

	logMode := logger.Silent
	if appEnv == "development" {
		logMode = logger.Warn
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 logger.Default.LogMode(logMode),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(5)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)
	return db, nil
}

// NewGormStore migrates the key/value table and returns a store on db.
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("migrate kv table: %w", err)
	}
	return &GormStore{db: db}, nil
}

func (s *GormStore) Load(ctx context.Context, key string) ([]byte, error) {
	var e Entry
	err := s.db.WithContext(ctx).Where(&Entry{Key: key}).Take(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return e.Value, nil
}

func (s *GormStore) Save(ctx context.Context, key string, value []byte) error {
	e := Entry{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&e).Error
}

func (s *GormStore) Delete(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Delete(&Entry{Key: key}).Error
}

// Ensure GormStore implements storage.Store
var _ storage.Store = (*GormStore)(nil)
