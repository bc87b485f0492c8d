package models

import "time"

const (
	PaymentStatusPending        = "pending"
	PaymentStatusAwaitingTenant = "awaiting_tenant_payment"
	PaymentStatusCompleted      = "completed"
	PaymentStatusFailed         = "failed"
)

// Payment records are never deleted; their status records the payment's fate.
// ExtensionID is set when the payment settles an extension rather than the
// initial rent.
type Payment struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time
	UpdatedAt time.Time

	BookingID   uint  `gorm:"column:booking_id;index;not null" json:"booking_id"`
	ExtensionID *uint `gorm:"column:extension_id;index" json:"extension_id,omitempty"`

	Amount        float64    `gorm:"column:amount;type:decimal(10,2)" json:"amount"`
	DatePaid      *time.Time `gorm:"column:date_paid" json:"date_paid,omitempty"`
	Status        string     `gorm:"column:status;size:32;default:'pending';index" json:"status"`
	PaymentMethod string     `gorm:"column:payment_method;size:50" json:"payment_method,omitempty"`
}
