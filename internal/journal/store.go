package journal

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type PhaseRecord struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Phase     string    `gorm:"size:32;index" json:"phase"`
	Outcome   string    `gorm:"size:16" json:"outcome"`
	Players   string    `gorm:"size:512" json:"players"`
	Detail    string    `gorm:"size:256" json:"detail,omitempty"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}

func (PhaseRecord) TableName() string { return "phase_records" }

func toRecord(e Entry) PhaseRecord {
	at := e.At
	if at.IsZero() {
		at = time.Now()
	}
	return PhaseRecord{
		Phase:     e.Phase,
		Outcome:   string(e.Outcome),
		Players:   strings.Join(e.Players, ","),
		Detail:    e.Detail,
		CreatedAt: at.UTC(),
	}
}

// Store writes entries to the phase_records table.
type Store struct {
	db *gorm.DB
}

func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		PrepareStmt: false,
		Logger:      logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to journal database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetMaxOpenConns(4)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return NewStore(db)
}

// NewStore migrates the schema on an existing connection.
func NewStore(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&PhaseRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate journal: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Record(ctx context.Context, e Entry) error {
	rec := toRecord(e)
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("record %s %s: %w", e.Phase, e.Outcome, err)
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]PhaseRecord, error) {
	var out []PhaseRecord
	err := s.db.WithContext(ctx).Order("created_at desc").Limit(limit).Find(&out).Error
	return out, err
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
