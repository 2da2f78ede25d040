package kvstore

import (
	"context"
	"errors"
	"time"

	"github.com/angelmondragon/storefront-client/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SQL persists values in the kv_entries table of the device database.
type SQL struct {
	db  *gorm.DB
	now func() time.Time
}

// NewSQL returns a store over the kv_entries table reachable through db.
func NewSQL(db *gorm.DB) *SQL {
	return &SQL{db: db, now: time.Now}
}

func (s *SQL) Get(ctx context.Context, key string) (string, error) {
	var row models.KVEntry
	err := s.db.WithContext(ctx).Where("key = ?", key).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return row.Value, nil
}

func (s *SQL) Set(ctx context.Context, key, value string) error {
	row := models.KVEntry{Key: key, Value: value, UpdatedAt: s.now().UTC()}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&row).
		Error
}

func (s *SQL) Remove(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Where("key = ?", key).Delete(&models.KVEntry{}).Error
}
