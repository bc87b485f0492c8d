package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Flat status is a projection of its most relevant booking's status. It is
// reconciled on every lifecycle transition and on reads, never trusted on
// its own.
const (
	FlatStatusAvailable   = "available"
	FlatStatusPending     = "pending"
	FlatStatusBooked      = "booked"
	FlatStatusUnavailable = "unavailable"
)

type Flat struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	OwnerID uint `gorm:"column:owner_id;index" json:"owner_id"`

	AddressLine string `gorm:"column:address_line;size:255" json:"address_line"`
	City        string `gorm:"column:city;size:100;index" json:"city"`
	PostalCode  string `gorm:"column:postal_code;size:20" json:"postal_code"`

	MonthlyRentalCost float64 `gorm:"column:monthly_rental_cost;type:decimal(10,2)" json:"monthly_rental_cost"`
	Rooms             int     `gorm:"column:rooms" json:"rooms"`
	AreaSqm           float64 `gorm:"column:area_sqm;type:decimal(8,2)" json:"area_sqm"`
	Furnished         bool    `gorm:"column:furnished;default:false" json:"furnished"`
	Description       string  `gorm:"column:description;type:text" json:"description"`

	Amenities datatypes.JSON `gorm:"column:amenities" json:"amenities,omitempty"`
	PhotoPath string         `gorm:"column:photo_path;size:255" json:"photo_path,omitempty"`

	Status string   `gorm:"column:status;size:32;default:'available';index" json:"status"`
	Rating *float64 `gorm:"column:rating;type:decimal(3,2)" json:"rating,omitempty"`

	Owner    User      `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Bookings []Booking `gorm:"foreignKey:FlatID" json:"bookings,omitempty"`
	Reviews  []Review  `gorm:"foreignKey:FlatID" json:"reviews,omitempty"`
}
