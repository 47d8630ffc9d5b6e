// Package mysql persists saves to MySQL through gorm, one row per slot and
// bucket.
package mysql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	glogger "gorm.io/gorm/logger"

	"quantumassembler/internal/infra/persistence/snapshot"
	"quantumassembler/internal/logs"
	"quantumassembler/pkg/domain"
)

var _ domain.SaveStore = (*Store)(nil)

const defaultSlot = "default"

// Config describes the connection and pool.
type Config struct {
	DSN     string
	Slot    string
	MaxOpen int
	MaxIdle int
}

// SaveBucket is one bucket payload of a save slot.
type SaveBucket struct {
	Slot      string `gorm:"primaryKey;size:64"`
	Bucket    string `gorm:"primaryKey;size:32"`
	Payload   []byte `gorm:"type:longblob;not null"`
	UpdatedAt time.Time
}

// TableName pins the table name.
func (SaveBucket) TableName() string { return "save_buckets" }

// Store is a gorm-backed save store.
type Store struct {
	db   *gorm.DB
	slot string
}

// Open connects with cfg.DSN and migrates the bucket table.
func Open(cfg Config, l *zap.Logger) (*Store, error) {
	if cfg.DSN == "" {
		return nil, errors.New("mysql dsn is empty")
	}
	return open(mysql.Open(cfg.DSN), cfg, l)
}

func open(dialector gorm.Dialector, cfg Config, l *zap.Logger) (*Store, error) {
	if l == nil {
		l = zap.NewNop()
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logs.NewGormLogger(l, glogger.Warn, 200*time.Millisecond),
	})
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.MaxOpen > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpen)
	}
	if cfg.MaxIdle > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdle)
	}
	if err := db.AutoMigrate(&SaveBucket{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("migrate save_buckets: %w", err)
	}
	slot := cfg.Slot
	if slot == "" {
		slot = defaultSlot
	}
	l.Info("open mysql success", zap.String("slot", slot))
	return &Store{db: db, slot: slot}, nil
}

// Load reads the slot's buckets.
func (s *Store) Load(ctx context.Context) (domain.SaveState, bool, error) {
	var rows []SaveBucket
	if err := s.db.WithContext(ctx).Where("slot = ?", s.slot).Find(&rows).Error; err != nil {
		return domain.SaveState{}, false, fmt.Errorf("select save_buckets: %w", err)
	}
	payloads := make(map[string][]byte, len(rows))
	for _, row := range rows {
		payloads[row.Bucket] = row.Payload
	}
	return snapshot.Decode(payloads)
}

// Save upserts every bucket of the slot in one transaction.
func (s *Store) Save(ctx context.Context, state domain.SaveState) error {
	rows, err := bucketRows(s.slot, state)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slot"}, {Name: "bucket"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
	}).Create(&rows).Error
}

// Close releases the connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func bucketRows(slot string, state domain.SaveState) ([]SaveBucket, error) {
	payloads, err := snapshot.Encode(state)
	if err != nil {
		return nil, err
	}
	rows := make([]SaveBucket, 0, len(snapshot.Buckets))
	for _, bucket := range snapshot.Buckets {
		rows = append(rows, SaveBucket{Slot: slot, Bucket: bucket, Payload: payloads[bucket]})
	}
	return rows, nil
}
