package models

import (
	"time"

	"github.com/google/uuid"
)

type Shop struct {
	ID      uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name    string    `gorm:"not null" json:"name"`
	Address string    `gorm:"not null" json:"address"`

	// One shop per admin user
	ManagerUserID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"managerUserId"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"-"`
}
