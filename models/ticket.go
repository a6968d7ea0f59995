package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusWaiting   = "WAITING"
	StatusInService = "IN_SERVICE"
	StatusCompleted = "COMPLETED"
	StatusCancelled = "CANCELLED"
)

// Ticket is one queue token. Number restarts at 1 every day for every
// shop; the composite unique index on (shop_id, day, number) is what the
// allocator races against.
type Ticket struct {
	ID uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`

	ShopID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_tickets_shop_day_number,priority:1" json:"shopId"`
	Day    string    `gorm:"type:varchar(10);not null;uniqueIndex:idx_tickets_shop_day_number,priority:2" json:"day"`
	Number int       `gorm:"not null;uniqueIndex:idx_tickets_shop_day_number,priority:3" json:"number"`

	CustomerName  string `json:"customerName"`
	VehicleNumber string `json:"vehicleNumber"`
	Phone         string `json:"phone,omitempty"`

	// Null for anonymous walk-ins
	CreatedByUserID *uuid.UUID `gorm:"type:uuid;index" json:"createdByUserId,omitempty"`

	Status     string  `gorm:"type:varchar(20);not null;default:'WAITING'" json:"status"`
	ServiceBay *string `json:"serviceBay,omitempty"`

	CreatedAt   time.Time  `json:"createdAt"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// IsActive reports whether the ticket still occupies a place in the
// live queue.
func (t Ticket) IsActive() bool {
	return t.Status == StatusWaiting || t.Status == StatusInService
}

// IsTerminal reports whether the ticket has left the queue for good.
func (t Ticket) IsTerminal() bool {
	return t.Status == StatusCompleted || t.Status == StatusCancelled
}

func ValidStatus(s string) bool {
	switch s {
	case StatusWaiting, StatusInService, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}
