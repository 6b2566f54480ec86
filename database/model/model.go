// Package model defines the tables of the development backend.
package model

import "time"

// User is a console account.
type User struct {
	ID           string    `gorm:"primaryKey" json:"_id"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `gorm:"not null" json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Record is one stored resource item. Fields holds the JSON object of the
// submitted form values, including file URLs.
type Record struct {
	ID        string    `gorm:"primaryKey"`
	Resource  string    `gorm:"index:idx_resource_option;not null"`
	Option    string    `gorm:"index:idx_resource_option"`
	Fields    string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
}

// Upload is an uploaded file served back under /uploads/{id}/{name}.
type Upload struct {
	ID        string `gorm:"primaryKey"`
	Name      string
	Content   []byte
	CreatedAt time.Time
}

// ActivityLog is one audited request.
type ActivityLog struct {
	ID         string    `gorm:"primaryKey" json:"_id"`
	Email      string    `json:"email"`
	Action     string    `json:"action"`
	Method     string    `json:"method"`
	Route      string    `json:"route"`
	Status     int       `json:"status"`
	IP         string    `json:"ip"`
	DurationMs int64     `json:"-"`
	CreatedAt  time.Time `gorm:"index" json:"createdAt"`
}
