package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	BookingStatusPending     = "pending"
	BookingStatusApproved    = "approved"
	BookingStatusActive      = "active"
	BookingStatusCompleted   = "completed"
	BookingStatusExpired     = "expired"
	BookingStatusCancelled   = "cancelled"
	BookingStatusDisapproved = "disapproved"
)

// RelevantBookingStatuses are the states in which a booking claims its flat.
// At most one booking per flat may be in one of these states at a time.
var RelevantBookingStatuses = []string{
	BookingStatusPending,
	BookingStatusApproved,
	BookingStatusActive,
}

type Booking struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	FlatID uint `gorm:"column:flat_id;index" json:"flat_id"`
	UserID uint `gorm:"column:user_id;index" json:"user_id"`

	ReferenceCode string `gorm:"column:reference_code;size:64" json:"reference_code,omitempty"`

	StartDate time.Time `gorm:"column:start_date" json:"start_date"`
	EndDate   time.Time `gorm:"column:end_date" json:"end_date"`

	Status      string     `gorm:"column:status;size:32;default:'pending';index" json:"status"`
	ApprovedAt  *time.Time `gorm:"column:approved_at" json:"approved_at,omitempty"`
	CancelledAt *time.Time `gorm:"column:cancelled_at" json:"cancelled_at,omitempty"`

	Flat       Flat        `gorm:"foreignKey:FlatID" json:"flat,omitempty"`
	User       User        `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Payments   []Payment   `gorm:"foreignKey:BookingID" json:"payments,omitempty"`
	Extensions []Extension `gorm:"foreignKey:BookingID" json:"extensions,omitempty"`
	Reviews    []Review    `gorm:"foreignKey:BookingID" json:"reviews,omitempty"`
}
