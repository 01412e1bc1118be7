package models

import "time"

// SiteDocument holds the site document when the SQL store backs it.
type SiteDocument struct {
	ID        string    `gorm:"primary_key" json:"id"`
	Data      string    `gorm:"type:text;not null" json:"-"`
	Version   int64     `gorm:"not null;default:0" json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AdminUser is an account of the local identity provider.
type AdminUser struct {
	ID           int    `gorm:"primary_key;autoIncrement" json:"id"`
	Email        string `gorm:"unique;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"` // json:"-" keeps the hash out of API responses
	Disabled     bool   `gorm:"default:false" json:"disabled"`
}
