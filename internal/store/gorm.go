package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// entry is a row of the session_entries table.
type entry struct {
	Key       string         `gorm:"primaryKey;size:255"`
	Value     datatypes.JSON `gorm:"not null"`
	UpdatedAt time.Time
}

func (entry) TableName() string {
	return "session_entries"
}

// Gorm is a Store over a SQL database. Values must be JSON documents.
type Gorm struct {
	db *gorm.DB
}

var _ Store = (*Gorm)(nil)

// NewGorm migrates the session_entries table and returns the store.
func NewGorm(db *gorm.DB) (*Gorm, error) {
	if err := db.AutoMigrate(&entry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate session_entries: %w", err)
	}

	return &Gorm{db: db}, nil
}

// Get implements Store.
func (g *Gorm) Get(ctx context.Context, key string) ([]byte, error) {
	var e entry

	err := g.db.WithContext(ctx).First(&e, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}

	return []byte(e.Value), nil
}

// Put implements Store.
func (g *Gorm) Put(ctx context.Context, key string, value []byte) error {
	e := entry{Key: key, Value: datatypes.JSON(value), UpdatedAt: time.Now()}

	err := g.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&e).Error
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}

	return nil
}

// Delete implements Store.
func (g *Gorm) Delete(ctx context.Context, key string) error {
	err := g.db.WithContext(ctx).Delete(&entry{}, "key = ?", key).Error
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}

	return nil
}
