package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleTenant = "tenant"
	RoleOwner  = "owner"
)

type User struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Role     string `gorm:"column:role;size:16;index" json:"role"`
	FullName string `gorm:"column:full_name;size:191" json:"full_name"`
	Email    string `gorm:"column:email;size:191;uniqueIndex" json:"email"`
	Password string `gorm:"column:password;size:191" json:"-"`
	Phone    string `gorm:"column:phone;size:32" json:"phone,omitempty"`

	Verified          bool   `gorm:"column:verified;default:false" json:"verified"`
	VerificationToken string `gorm:"column:verification_token;size:128;index" json:"-"`

	Flats    []Flat    `gorm:"foreignKey:OwnerID" json:"flats,omitempty"`
	Bookings []Booking `gorm:"foreignKey:UserID" json:"bookings,omitempty"`
}
