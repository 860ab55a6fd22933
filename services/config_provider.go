package services

import (
	"errors"

	"foodbridge/logger"
	"foodbridge/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ConfigProvider reads tunable reward magnitudes. The engine never writes
// configuration through this interface.
type ConfigProvider interface {
	GetInt(key string, fallback int64) int64
}

// DBConfigProvider reads the gamification_configs table.
type DBConfigProvider struct {
	DB *gorm.DB
}

func NewDBConfigProvider(db *gorm.DB) *DBConfigProvider {
	return &DBConfigProvider{DB: db}
}

func (p *DBConfigProvider) GetInt(key string, fallback int64) int64 {
	var row models.GamificationConfig
	if err := p.DB.Where("key = ?", key).First(&row).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			// A misconfigured store should not break a delivery.
			logger.Warn("config read failed", zap.String("key", key), zap.Error(err))
		}
		return fallback
	}
	return row.Value
}

// StaticConfigProvider serves values from a fixed map. Used in tests and as
// an env-seeded fallback when the table is empty.
type StaticConfigProvider struct {
	Values map[string]int64
}

func (p StaticConfigProvider) GetInt(key string, fallback int64) int64 {
	if v, ok := p.Values[key]; ok {
		return v
	}
	return fallback
}
