package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"flatrent-backend/models"
)

// ExtensionService runs the lease-extension state machine layered on top of
// an active booking. Each extension owns exactly one payment, linked by the
// payments.extension_id foreign key.
type ExtensionService struct {
	DB    *gorm.DB
	Clock Clock
	Log   *logrus.Logger
}

func NewExtensionService(db *gorm.DB, clock Clock, log *logrus.Logger) *ExtensionService {
	return &ExtensionService{DB: db, Clock: clock, Log: log}
}

// RequestExtension creates a pending extension starting at the booking's
// current end date, plus its companion rent payment.
func (s *ExtensionService) RequestExtension(bookingID, tenantID uint, newEndDate time.Time) (*models.Extension, error) {
	now := s.Clock.Now()
	var extension models.Extension

	txErr := s.DB.Transaction(func(tx *gorm.DB) error {
		booking, flat, err := loadBookingWithFlat(tx, bookingID, now)
		if err != nil {
			return err
		}

		if booking.UserID != tenantID {
			return forbidden("only the booking tenant can request an extension")
		}
		if booking.Status != models.BookingStatusActive {
			return invalidState("only active bookings can be extended")
		}
		if !newEndDate.After(booking.EndDate) {
			return invalidInput("new end date must be after the current end date")
		}

		extension = models.Extension{
			BookingID:    bookingID,
			NewStartDate: booking.EndDate,
			NewEndDate:   newEndDate,
			Status:       models.ExtensionStatusPending,
			RequestedAt:  now,
		}
		if err := tx.Create(&extension).Error; err != nil {
			return fmt.Errorf("failed to create extension: %w", err)
		}

		payment := models.Payment{
			BookingID:   bookingID,
			ExtensionID: &extension.ID,
			Amount:      flat.MonthlyRentalCost,
			Status:      models.PaymentStatusPending,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return fmt.Errorf("failed to create extension payment: %w", err)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	s.Log.WithFields(logrus.Fields{
		"extension_id": extension.ID,
		"booking_id":   bookingID,
	}).Info("extension requested")

	return &extension, nil
}

// ApproveExtension moves a pending extension to approved and flips its
// payment to awaiting_tenant_payment.
func (s *ExtensionService) ApproveExtension(extensionID, ownerID uint) (*models.Extension, error) {
	now := s.Clock.Now()
	var extension models.Extension

	txErr := s.DB.Transaction(func(tx *gorm.DB) error {
		ext, _, flat, err := loadExtension(tx, extensionID, now)
		if err != nil {
			return err
		}
		extension = *ext

		if flat.OwnerID != ownerID {
			return forbidden("only the flat owner can approve this extension")
		}
		if extension.Status != models.ExtensionStatusPending {
			return invalidState("extension is not pending approval")
		}

		var payment models.Payment
		err = tx.Where("extension_id = ? AND status = ?", extensionID, models.PaymentStatusPending).
			First(&payment).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return invalidState("extension has no pending payment")
			}
			return err
		}

		if err := tx.Model(&extension).
			Update("status", models.ExtensionStatusApproved).Error; err != nil {
			return err
		}
		return tx.Model(&payment).
			Update("status", models.PaymentStatusAwaitingTenant).Error
	})
	if txErr != nil {
		return nil, txErr
	}

	s.Log.WithField("extension_id", extensionID).Info("extension approved")

	if err := s.DB.First(&extension, extensionID).Error; err != nil {
		return nil, err
	}
	return &extension, nil
}

// RejectExtension rejects a pending or approved extension and fails its open
// payment. A missing open payment is not an error.
func (s *ExtensionService) RejectExtension(extensionID, ownerID uint) (*models.Extension, error) {
	now := s.Clock.Now()
	var extension models.Extension

	txErr := s.DB.Transaction(func(tx *gorm.DB) error {
		ext, _, flat, err := loadExtension(tx, extensionID, now)
		if err != nil {
			return err
		}
		extension = *ext

		if flat.OwnerID != ownerID {
			return forbidden("only the flat owner can reject this extension")
		}
		if extension.Status != models.ExtensionStatusPending && extension.Status != models.ExtensionStatusApproved {
			return invalidState("extension can no longer be rejected")
		}

		if err := tx.Model(&extension).
			Update("status", models.ExtensionStatusRejected).Error; err != nil {
			return err
		}

		return tx.Model(&models.Payment{}).
			Where("extension_id = ? AND status IN ?", extensionID,
				[]string{models.PaymentStatusPending, models.PaymentStatusAwaitingTenant}).
			Update("status", models.PaymentStatusFailed).Error
	})
	if txErr != nil {
		return nil, txErr
	}

	s.Log.WithField("extension_id", extensionID).Info("extension rejected")

	if err := s.DB.First(&extension, extensionID).Error; err != nil {
		return nil, err
	}
	return &extension, nil
}

// ConfirmExtensionPayment completes the extension payment and advances the
// booking's end date to the extension's new end date.
func (s *ExtensionService) ConfirmExtensionPayment(extensionID, tenantID uint, paymentMethod string) (*models.Extension, error) {
	now := s.Clock.Now()
	var extension models.Extension

	txErr := s.DB.Transaction(func(tx *gorm.DB) error {
		ext, booking, _, err := loadExtension(tx, extensionID, now)
		if err != nil {
			return err
		}
		extension = *ext

		if booking.UserID != tenantID {
			return forbidden("only the booking tenant can confirm this payment")
		}
		if extension.Status != models.ExtensionStatusApproved {
			return invalidState("extension is not approved for payment")
		}
		if booking.Status != models.BookingStatusActive {
			return invalidState("booking is no longer active")
		}

		var payment models.Payment
		err = tx.Where("extension_id = ? AND status = ?", extensionID, models.PaymentStatusAwaitingTenant).
			First(&payment).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return invalidState("no extension payment is awaiting tenant confirmation")
			}
			return err
		}

		updates := map[string]interface{}{
			"status":    models.PaymentStatusCompleted,
			"date_paid": now,
		}
		if paymentMethod != "" {
			updates["payment_method"] = paymentMethod
		}
		if err := tx.Model(&payment).Updates(updates).Error; err != nil {
			return err
		}

		return tx.Model(booking).
			Update("end_date", extension.NewEndDate).Error
	})
	if txErr != nil {
		return nil, txErr
	}

	s.Log.WithFields(logrus.Fields{
		"extension_id": extensionID,
		"new_end_date": extension.NewEndDate.Format("2006-01-02"),
	}).Info("extension payment confirmed")

	if err := s.DB.First(&extension, extensionID).Error; err != nil {
		return nil, err
	}
	return &extension, nil
}

// ListForBooking returns a booking's extensions to one of its parties.
func (s *ExtensionService) ListForBooking(bookingID, actorID uint) ([]models.Extension, error) {
	now := s.Clock.Now()

	txErr := s.DB.Transaction(func(tx *gorm.DB) error {
		booking, flat, err := loadBookingWithFlat(tx, bookingID, now)
		if err != nil {
			return err
		}
		if booking.UserID != actorID && flat.OwnerID != actorID {
			return forbidden("not a party to this booking")
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	var list []models.Extension
	if err := s.DB.Where("booking_id = ?", bookingID).
		Order("id DESC").
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve extensions: %w", err)
	}
	return list, nil
}

// loadExtension fetches the extension plus its booking (locked, reconciled)
// and flat.
func loadExtension(tx *gorm.DB, extensionID uint, now time.Time) (*models.Extension, *models.Booking, *models.Flat, error) {
	var extension models.Extension
	if err := tx.First(&extension, extensionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, nil, notFound("extension not found")
		}
		return nil, nil, nil, err
	}

	booking, flat, err := loadBookingWithFlat(tx, extension.BookingID, now)
	if err != nil {
		return nil, nil, nil, err
	}
	return &extension, booking, flat, nil
}
