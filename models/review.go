package models

import "time"

// One review slot per direction: a tenant and an owner can each review the
// same booking once, enforced by the (booking_id, reviewer_role) unique index.
type Review struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time
	UpdatedAt time.Time

	BookingID      uint   `gorm:"column:booking_id;uniqueIndex:idx_reviews_booking_role;not null" json:"booking_id"`
	FlatID         uint   `gorm:"column:flat_id;index;not null" json:"flat_id"`
	ReviewerID     uint   `gorm:"column:reviewer_id;index;not null" json:"reviewer_id"`
	ReviewedUserID uint   `gorm:"column:reviewed_user_id;index" json:"reviewed_user_id"`
	ReviewerRole   string `gorm:"column:reviewer_role;size:16;uniqueIndex:idx_reviews_booking_role;not null" json:"reviewer_role"`

	// Tenant-side criteria.
	FlatQuality   *int `gorm:"column:flat_quality" json:"flat_quality,omitempty"`
	Hygiene       *int `gorm:"column:hygiene" json:"hygiene,omitempty"`
	Location      *int `gorm:"column:location" json:"location,omitempty"`
	OwnerBehavior *int `gorm:"column:owner_behavior" json:"owner_behavior,omitempty"`

	// Owner-side criteria.
	TenantBehavior *int `gorm:"column:tenant_behavior" json:"tenant_behavior,omitempty"`
	Cooperation    *int `gorm:"column:cooperation" json:"cooperation,omitempty"`

	RatingGiven   float64   `gorm:"column:rating_given;type:decimal(3,2)" json:"rating_given"`
	Comment       string    `gorm:"column:comment;type:text" json:"comment,omitempty"`
	DateSubmitted time.Time `gorm:"column:date_submitted" json:"date_submitted"`
}
