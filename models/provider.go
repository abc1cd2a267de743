package models

import (
	"time"

	"github.com/omxtrade/omx/config"
)

// Provider is a configured liquidity provider. Health is tracked by the
// circuit breaker registry, not persisted here.
type Provider struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name"`
	Endpoint  string    `json:"endpoint"`
	Enabled   bool      `json:"enabled" gorm:"default:true"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func EnabledProviders() []Provider {
	providers := make([]Provider, 0)

	config.DataBase.Where("enabled = ?", true).Order("id asc").Find(&providers)

	return providers
}
