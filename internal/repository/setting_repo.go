package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/noah-isme/kasku-go-api/internal/models"
)

// SettingRepository provides access to the single fund settings row.
type SettingRepository interface {
	Get(ctx context.Context) (models.Setting, error)
	Update(ctx context.Context, setting *models.Setting) error
}

type settingRepository struct {
	db *gorm.DB
}

// NewSettingRepository constructs a settings repository.
func NewSettingRepository(db *gorm.DB) SettingRepository {
	return &settingRepository{db: db}
}

// Get returns the settings row, creating the default one on first use.
func (r *settingRepository) Get(ctx context.Context) (models.Setting, error) {
	var setting models.Setting
	err := r.db.WithContext(ctx).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		setting = models.Setting{ReminderGraceDays: 3}
		if createErr := r.db.WithContext(ctx).Create(&setting).Error; createErr != nil {
			return models.Setting{}, createErr
		}
		return setting, nil
	}
	if err != nil {
		return models.Setting{}, err
	}

	return setting, nil
}

func (r *settingRepository) Update(ctx context.Context, setting *models.Setting) error {
	return r.db.WithContext(ctx).Save(setting).Error
}
