package models

import "time"

// PreferenceModel is one persisted client preference
type PreferenceModel struct {
	ClientID  string    `gorm:"type:varchar(64);primaryKey"`
	Key       string    `gorm:"column:pref_key;type:varchar(64);primaryKey"`
	Value     string    `gorm:"type:varchar(255);not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PreferenceModel) TableName() string {
	return "client_preferences"
}

// All returns every model in dependency order, for AutoMigrate
func All() []any {
	return []any{
		&UserModel{},
		&CartModel{},
		&CartLineModel{},
		&OrderModel{},
		&OrderItemModel{},
		&PrescriptionUploadModel{},
		&PreferenceModel{},
	}
}
