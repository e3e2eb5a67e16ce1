// Package store persists controller state in a local SQLite database: which
// windows are currently hidden, operator preferences and a history of the
// mutations performed.
package store

import (
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Store holds the database connection and methods.
type Store struct {
	db *gorm.DB
}

// Open opens (creating if necessary) the database at dbPath and migrates the
// schema.
func Open(dbPath string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent), // Reduce log noise
	})
	if err != nil {
		return nil, err
	}

	err = db.AutoMigrate(
		&HiddenWindow{},
		&Setting{},
		&OperationRecord{},
	)
	if err != nil {
		return nil, err
	}

	return &Store{db: db}, nil
}

// Hidden window operations

func (s *Store) SaveHiddenWindow(w *HiddenWindow) error {
	if w.HiddenAt.IsZero() {
		w.HiddenAt = time.Now()
	}
	// A handle can be re-hidden after a restore; replace the old row.
	s.db.Where("handle = ?", w.Handle).Delete(&HiddenWindow{})
	return s.db.Create(w).Error
}

func (s *Store) DeleteHiddenWindow(handle uint64) error {
	return s.db.Where("handle = ?", handle).Delete(&HiddenWindow{}).Error
}

func (s *Store) GetHiddenWindows() ([]HiddenWindow, error) {
	var windows []HiddenWindow
	err := s.db.Order("hidden_at asc").Find(&windows).Error
	return windows, err
}

func (s *Store) IsHidden(handle uint64) (bool, error) {
	var count int64
	err := s.db.Model(&HiddenWindow{}).Where("handle = ?", handle).Count(&count).Error
	return count > 0, err
}

// Setting operations

func (s *Store) SetSetting(key, value string) error {
	var existing Setting
	err := s.db.Where("key = ?", key).First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		return s.db.Create(&Setting{Key: key, Value: value}).Error
	}
	if err != nil {
		return err
	}
	return s.db.Model(&existing).Update("value", value).Error
}

// GetSetting returns the stored value, or fallback when the key is unset.
func (s *Store) GetSetting(key, fallback string) (string, error) {
	var setting Setting
	err := s.db.Where("key = ?", key).First(&setting).Error
	if err == gorm.ErrRecordNotFound {
		return fallback, nil
	}
	if err != nil {
		return fallback, err
	}
	return setting.Value, nil
}

// Operation history

func (s *Store) RecordOperation(rec *OperationRecord) error {
	return s.db.Create(rec).Error
}

func (s *Store) RecentOperations(limit int) ([]OperationRecord, error) {
	var records []OperationRecord
	if limit <= 0 {
		limit = 100
	}
	err := s.db.Order("created_at desc").Limit(limit).Find(&records).Error
	return records, err
}

// CleanupOldOperations removes history entries older than maxAge.
func (s *Store) CleanupOldOperations(maxAge time.Duration) error {
	cutoff := time.Now().Add(-maxAge)
	return s.db.Where("created_at < ?", cutoff).Delete(&OperationRecord{}).Error
}

func (s *Store) Close() error {
	if db, err := s.db.DB(); err == nil {
		return db.Close()
	}
	return nil
}
