package models

import "time"

const (
	ExtensionStatusPending  = "pending"
	ExtensionStatusApproved = "approved"
	ExtensionStatusRejected = "rejected"
)

// Extension extends an active booking's lease. NewStartDate always equals the
// booking's end date at request time.
type Extension struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time
	UpdatedAt time.Time

	BookingID uint `gorm:"column:booking_id;index;not null" json:"booking_id"`

	NewStartDate time.Time `gorm:"column:new_start_date" json:"new_start_date"`
	NewEndDate   time.Time `gorm:"column:new_end_date" json:"new_end_date"`

	Status      string    `gorm:"column:status;size:32;default:'pending';index" json:"status"`
	RequestedAt time.Time `gorm:"column:requested_at" json:"requested_at"`

	Booking Booking `gorm:"foreignKey:BookingID" json:"booking,omitempty"`
}
