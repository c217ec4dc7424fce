package persistence

import (
	"context"
	"errors"

	"github.com/northtrade/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSettingRepository implements period.SettingsRepository using GORM.
//
// Update runs the read-modify-write inside a transaction holding a row lock
// on the setting, so two concurrent mutations of the same list serialize
// instead of losing writes.
type GormSettingRepository struct {
	db *Database
}

// NewGormSettingRepository creates a new GormSettingRepository
func NewGormSettingRepository(db *Database) *GormSettingRepository {
	return &GormSettingRepository{db: db}
}

// Get returns the raw value for a key, or "" when the key is absent.
func (r *GormSettingRepository) Get(ctx context.Context, key string) (string, error) {
	var model models.SettingModel
	if err := r.db.DB.WithContext(ctx).First(&model, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return model.Value, nil
}

// Set writes the full value for a key, creating the row if absent.
func (r *GormSettingRepository) Set(ctx context.Context, key, value string) error {
	return r.db.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&models.SettingModel{Key: key, Value: value}).Error
}

// Update applies mutate to the current value under SELECT ... FOR UPDATE and
// persists the result in the same transaction.
func (r *GormSettingRepository) Update(ctx context.Context, key string, mutate func(current string) (string, error)) error {
	return r.db.Transaction(ctx, func(tx *gorm.DB) error {
		var model models.SettingModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&model, "key = ?", key).Error
		exists := true
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			exists = false
			model = models.SettingModel{Key: key}
		}

		next, err := mutate(model.Value)
		if err != nil {
			return err
		}
		if exists && next == model.Value {
			return nil
		}
		model.Value = next

		if exists {
			return tx.Model(&models.SettingModel{}).
				Where("key = ?", key).
				Update("value", next).Error
		}
		return tx.Create(&model).Error
	})
}
