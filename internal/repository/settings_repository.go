package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"report-service/internal/model"
)

type SettingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get returns the stored settings row, or the defaults when none was saved yet.
func (r *SettingsRepository) Get(ctx context.Context) (model.Settings, error) {
	var settings model.Settings
	err := r.db.WithContext(ctx).First(&settings, "id = ?", model.SettingsRowID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.DefaultSettings(), nil
	}
	if err != nil {
		return model.Settings{}, &FetchError{Op: "settings", Err: err}
	}
	return settings, nil
}

func (r *SettingsRepository) Save(ctx context.Context, settings model.Settings) (model.Settings, error) {
	settings.ID = model.SettingsRowID
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(&settings).Error; err != nil {
		return model.Settings{}, &UpdateError{Op: "settings", Err: err}
	}
	return settings, nil
}
