package histstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	slogGorm "github.com/orandin/slog-gorm"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// GormHistStore keeps offense records in sqlite or postgres. Writes run in a
// transaction, with same-user serialization handled in-process; deployments
// with multiple writer processes for the same users should prefer
// RedisHistStore, which uses optimistic transactions instead.
type GormHistStore struct {
	db      *gorm.DB
	writers *userLocks
}

var _ HistStore = (*GormHistStore)(nil)

// NewGormHistStore opens a database from a URL ("sqlite://path" or
// "postgresql://...") and migrates the offense_records table.
func NewGormHistStore(dburl string, maxConnections int) (*GormHistStore, error) {
	var dial gorm.Dialector
	openConns := maxConnections

	if strings.HasPrefix(dburl, "sqlite://") {
		sqliteSuffix := dburl[len("sqlite://"):]
		// ensure the directory exists if the db file is being initialized
		if !strings.Contains(sqliteSuffix, ":?") {
			os.MkdirAll(filepath.Dir(sqliteSuffix), os.ModePerm)
		}
		dial = sqlite.Open(sqliteSuffix)
		openConns = 1
	} else if strings.HasPrefix(dburl, "postgresql://") || strings.HasPrefix(dburl, "postgres://") {
		dial = postgres.Open(dburl)
	} else {
		return nil, fmt.Errorf("unsupported or unrecognized database URL scheme")
	}

	db, err := gorm.Open(dial, &gorm.Config{
		Logger: slogGorm.New(),
	})
	if err != nil {
		return nil, err
	}
	sqldb, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqldb.SetMaxOpenConns(openConns)

	if err := db.AutoMigrate(&OffenseRecord{}); err != nil {
		return nil, fmt.Errorf("migrating offense records: %w", err)
	}

	return &GormHistStore{db: db, writers: newUserLocks()}, nil
}

func (s *GormHistStore) fetch(ctx context.Context, tx *gorm.DB, userID string) (*OffenseRecord, error) {
	var rec OffenseRecord
	err := tx.WithContext(ctx).Where("user_id = ?", userID).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *GormHistStore) IsLockedOut(ctx context.Context, userID string, now time.Time) (bool, error) {
	rec, err := s.fetch(ctx, s.db, userID)
	if err != nil {
		return false, err
	}
	return lockedOut(rec, now), nil
}

func (s *GormHistStore) HistoryScore(ctx context.Context, userID string, now time.Time) (int, bool, error) {
	rec, err := s.fetch(ctx, s.db, userID)
	if err != nil {
		return 0, false, err
	}
	score, rapid := scoreRecord(rec, now)
	return score, rapid, nil
}

func (s *GormHistStore) RecordOutcome(ctx context.Context, userID string, score int, lockout bool, now time.Time) error {
	l := s.writers.get(userID)
	l.Lock()
	defer l.Unlock()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec, err := s.fetch(ctx, tx, userID)
		if err != nil {
			return err
		}
		rec = applyOutcome(rec, userID, score, lockout, now)
		return tx.Save(rec).Error
	})
}

func (s *GormHistStore) GetRecord(ctx context.Context, userID string) (*OffenseRecord, error) {
	return s.fetch(ctx, s.db, userID)
}
