package models

import (
	"time"

	"gorm.io/datatypes"
)

// Setting is a keyed JSON document. The whole order-form catalog (pricing
// matrix, enumerations, addon rates, quantity bounds) lives in a single row
// so the settings screen can save it atomically.
type Setting struct {
	ID    uint           `gorm:"primaryKey" json:"id"`
	Key   string         `gorm:"type:varchar(64);uniqueIndex;not null" json:"key"`
	Value datatypes.JSON `json:"value"`

	UpdatedAt time.Time `json:"updated_at"`
}
