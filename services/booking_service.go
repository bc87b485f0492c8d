package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"flatrent-backend/models"
)

// BookingService owns the booking/payment/flat state machine. Every
// multi-entity transition runs as one transaction with the flat row locked,
// so eligibility reads and the writes that depend on them see the same state.
type BookingService struct {
	DB    *gorm.DB
	Clock Clock
	Log   *logrus.Logger
}

func NewBookingService(db *gorm.DB, clock Clock, log *logrus.Logger) *BookingService {
	return &BookingService{DB: db, Clock: clock, Log: log}
}

// reconcileFlat expires every stale active booking on the flat, then refreshes
// the flat's status projection. Disjoint date ranges allow several relevant
// bookings per flat, so the sweep covers all of them, not just the newest.
// Idempotent; invoked at the start of every lifecycle operation and on read
// paths instead of mutating implicitly during reads.
func reconcileFlat(tx *gorm.DB, flatID uint, now time.Time) error {
	res := tx.Model(&models.Booking{}).
		Where("flat_id = ? AND status = ? AND end_date < ?",
			flatID, models.BookingStatusActive, now).
		Update("status", models.BookingStatusExpired)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return nil
	}
	return refreshFlatStatus(tx, flatID)
}

// refreshFlatStatus recomputes the status projection from the flat's relevant
// bookings: an active booking makes it booked, pending/approved make it
// pending, none make it available. Unavailable is an owner setting, not a
// projection; flats holding a relevant booking can never be unavailable, so
// callers only invoke this after touching a relevant booking.
func refreshFlatStatus(tx *gorm.DB, flatID uint) error {
	var statuses []string
	if err := tx.Model(&models.Booking{}).
		Where("flat_id = ? AND status IN ?", flatID, models.RelevantBookingStatuses).
		Pluck("status", &statuses).Error; err != nil {
		return err
	}

	next := models.FlatStatusAvailable
	for _, status := range statuses {
		if status == models.BookingStatusActive {
			next = models.FlatStatusBooked
			break
		}
		next = models.FlatStatusPending
	}
	return tx.Model(&models.Flat{}).
		Where("id = ?", flatID).
		Update("status", next).Error
}

// closeBooking applies the shared disapprove/cancel cascade: the booking gets
// the terminal status, open payments fail, the flat's projection is refreshed
// over whatever relevant bookings remain.
func closeBooking(tx *gorm.DB, booking *models.Booking, status string, now time.Time) error {
	if err := tx.Model(booking).Updates(map[string]interface{}{
		"status":       status,
		"cancelled_at": now,
	}).Error; err != nil {
		return err
	}

	if err := tx.Model(&models.Payment{}).
		Where("booking_id = ? AND status IN ?", booking.ID,
			[]string{models.PaymentStatusPending, models.PaymentStatusAwaitingTenant}).
		Update("status", models.PaymentStatusFailed).Error; err != nil {
		return err
	}

	return refreshFlatStatus(tx, booking.FlatID)
}

// CreateBooking creates a pending booking with its initial rent payment and
// marks the flat pending. The date-conflict check covers every relevant
// booking state (pending, approved, active) and runs under the flat row lock,
// so two concurrent requests cannot both pass it.
func (s *BookingService) CreateBooking(flatID, tenantID uint, startDate, endDate time.Time) (*models.Booking, error) {
	if endDate.Before(startDate) {
		return nil, invalidInput("end date must not be before start date")
	}

	now := s.Clock.Now()
	var booking models.Booking

	txErr := s.DB.Transaction(func(tx *gorm.DB) error {
		var flat models.Flat
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&flat, flatID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("flat not found")
			}
			return err
		}

		if err := reconcileFlat(tx, flatID, now); err != nil {
			return err
		}

		if flat.OwnerID == tenantID {
			return forbidden("owners cannot book their own flat")
		}
		// Unavailable is an owner setting; reconciliation never touches it
		// because such flats hold no relevant bookings.
		if flat.Status == models.FlatStatusUnavailable {
			return invalidState("flat is not open for booking")
		}

		// Inclusive-bound overlap against every booking that still claims
		// the flat.
		var overlapping int64
		if err := tx.Model(&models.Booking{}).
			Where("flat_id = ? AND status IN ? AND start_date <= ? AND end_date >= ?",
				flatID, models.RelevantBookingStatuses, endDate, startDate).
			Count(&overlapping).Error; err != nil {
			return err
		}
		if overlapping > 0 {
			return conflict("booking dates conflict with an existing reservation")
		}

		booking = models.Booking{
			FlatID:        flatID,
			UserID:        tenantID,
			ReferenceCode: uuid.NewString(),
			StartDate:     startDate,
			EndDate:       endDate,
			Status:        models.BookingStatusPending,
		}
		if err := tx.Create(&booking).Error; err != nil {
			return fmt.Errorf("failed to create booking: %w", err)
		}

		payment := models.Payment{
			BookingID: booking.ID,
			Amount:    flat.MonthlyRentalCost,
			Status:    models.PaymentStatusPending,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return fmt.Errorf("failed to create payment: %w", err)
		}

		return refreshFlatStatus(tx, flatID)
	})
	if txErr != nil {
		return nil, txErr
	}

	s.Log.WithFields(logrus.Fields{
		"booking_id": booking.ID,
		"flat_id":    flatID,
		"tenant_id":  tenantID,
	}).Info("booking created")

	if err := s.DB.Preload("Payments").First(&booking, booking.ID).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

// ApproveBooking moves a pending booking to approved and asks the tenant to
// pay by flipping its pending payments to awaiting_tenant_payment.
func (s *BookingService) ApproveBooking(bookingID, ownerID uint) (*models.Booking, error) {
	now := s.Clock.Now()
	var booking models.Booking

	txErr := s.DB.Transaction(func(tx *gorm.DB) error {
		b, flat, err := loadBookingWithFlat(tx, bookingID, now)
		if err != nil {
			return err
		}
		booking = *b

		if flat.OwnerID != ownerID {
			return forbidden("only the flat owner can approve this booking")
		}
		if booking.Status != models.BookingStatusPending {
			return invalidState("booking is not pending approval")
		}

		if err := tx.Model(&booking).Updates(map[string]interface{}{
			"status":      models.BookingStatusApproved,
			"approved_at": now,
		}).Error; err != nil {
			return err
		}

		return tx.Model(&models.Payment{}).
			Where("booking_id = ? AND status = ?", bookingID, models.PaymentStatusPending).
			Update("status", models.PaymentStatusAwaitingTenant).Error
	})
	if txErr != nil {
		return nil, txErr
	}

	s.Log.WithField("booking_id", bookingID).Info("booking approved")

	if err := s.DB.Preload("Payments").First(&booking, bookingID).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

// DisapproveBooking rejects a pending or approved booking.
func (s *BookingService) DisapproveBooking(bookingID, ownerID uint) (*models.Booking, error) {
	now := s.Clock.Now()
	var booking models.Booking

	txErr := s.DB.Transaction(func(tx *gorm.DB) error {
		b, flat, err := loadBookingWithFlat(tx, bookingID, now)
		if err != nil {
			return err
		}
		booking = *b

		if flat.OwnerID != ownerID {
			return forbidden("only the flat owner can disapprove this booking")
		}
		if booking.Status != models.BookingStatusPending && booking.Status != models.BookingStatusApproved {
			return invalidState("booking can no longer be disapproved")
		}

		return closeBooking(tx, &booking, models.BookingStatusDisapproved, now)
	})
	if txErr != nil {
		return nil, txErr
	}

	s.Log.WithField("booking_id", bookingID).Info("booking disapproved")

	if err := s.DB.Preload("Payments").First(&booking, bookingID).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

// CancelBooking lets the tenant withdraw a pending or approved booking.
func (s *BookingService) CancelBooking(bookingID, tenantID uint) (*models.Booking, error) {
	now := s.Clock.Now()
	var booking models.Booking

	txErr := s.DB.Transaction(func(tx *gorm.DB) error {
		b, _, err := loadBookingWithFlat(tx, bookingID, now)
		if err != nil {
			return err
		}
		booking = *b

		if booking.UserID != tenantID {
			return forbidden("only the booking tenant can cancel it")
		}
		if booking.Status != models.BookingStatusPending && booking.Status != models.BookingStatusApproved {
			return invalidState("booking can no longer be cancelled")
		}

		return closeBooking(tx, &booking, models.BookingStatusCancelled, now)
	})
	if txErr != nil {
		return nil, txErr
	}

	s.Log.WithField("booking_id", bookingID).Info("booking cancelled")

	if err := s.DB.Preload("Payments").First(&booking, bookingID).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

// ConfirmPayment records the tenant settling the initial rent: the first
// payment awaiting the tenant completes, the booking goes active and the flat
// is booked.
func (s *BookingService) ConfirmPayment(bookingID, tenantID uint, paymentMethod string) (*models.Booking, error) {
	now := s.Clock.Now()
	var booking models.Booking

	txErr := s.DB.Transaction(func(tx *gorm.DB) error {
		b, _, err := loadBookingWithFlat(tx, bookingID, now)
		if err != nil {
			return err
		}
		booking = *b

		if booking.UserID != tenantID {
			return forbidden("only the booking tenant can confirm payment")
		}
		if booking.Status != models.BookingStatusApproved {
			return invalidState("booking is not awaiting payment")
		}

		var payment models.Payment
		err = tx.Where("booking_id = ? AND status = ? AND extension_id IS NULL",
			bookingID, models.PaymentStatusAwaitingTenant).
			Order("id ASC").
			First(&payment).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return invalidState("no payment is awaiting tenant confirmation")
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

		if err := tx.Model(&booking).
			Update("status", models.BookingStatusActive).Error; err != nil {
			return err
		}

		return tx.Model(&models.Flat{}).
			Where("id = ?", booking.FlatID).
			Update("status", models.FlatStatusBooked).Error
	})
	if txErr != nil {
		return nil, txErr
	}

	s.Log.WithField("booking_id", bookingID).Info("booking payment confirmed")

	if err := s.DB.Preload("Payments").First(&booking, bookingID).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

// GetBooking returns a booking to one of its parties, reconciling expiry
// before the read.
func (s *BookingService) GetBooking(bookingID, actorID uint) (*models.Booking, error) {
	now := s.Clock.Now()
	var booking models.Booking

	txErr := s.DB.Transaction(func(tx *gorm.DB) error {
		b, flat, err := loadBookingWithFlat(tx, bookingID, now)
		if err != nil {
			return err
		}
		if b.UserID != actorID && flat.OwnerID != actorID {
			return forbidden("not a party to this booking")
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	if err := s.DB.
		Preload("Flat").
		Preload("Payments").
		Preload("Extensions").
		First(&booking, bookingID).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

// ListForTenant returns the tenant's bookings, newest first, with stale
// active bookings expired beforehand.
func (s *BookingService) ListForTenant(tenantID uint) ([]models.Booking, error) {
	now := s.Clock.Now()

	txErr := s.DB.Transaction(func(tx *gorm.DB) error {
		var stale []models.Booking
		if err := tx.Where("user_id = ? AND status = ? AND end_date < ?",
			tenantID, models.BookingStatusActive, now).
			Find(&stale).Error; err != nil {
			return err
		}
		for i := range stale {
			if err := reconcileFlat(tx, stale[i].FlatID, now); err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	var list []models.Booking
	if err := s.DB.
		Preload("Flat").
		Preload("Payments").
		Where("user_id = ?", tenantID).
		Order("created_at DESC").
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve bookings: %w", err)
	}
	return list, nil
}

// ListForFlat returns a flat's bookings to its owner.
func (s *BookingService) ListForFlat(flatID, ownerID uint) ([]models.Booking, error) {
	now := s.Clock.Now()

	txErr := s.DB.Transaction(func(tx *gorm.DB) error {
		var flat models.Flat
		if err := tx.First(&flat, flatID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("flat not found")
			}
			return err
		}
		if flat.OwnerID != ownerID {
			return forbidden("only the flat owner can list its bookings")
		}
		return reconcileFlat(tx, flatID, now)
	})
	if txErr != nil {
		return nil, txErr
	}

	var list []models.Booking
	if err := s.DB.
		Preload("User").
		Preload("Payments").
		Where("flat_id = ?", flatID).
		Order("created_at DESC").
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve bookings: %w", err)
	}
	return list, nil
}

// loadBookingWithFlat locks the booking row, runs expiry reconciliation on
// its flat and returns the refreshed booking together with the flat.
func loadBookingWithFlat(tx *gorm.DB, bookingID uint, now time.Time) (*models.Booking, *models.Flat, error) {
	var booking models.Booking
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&booking, bookingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, notFound("booking not found")
		}
		return nil, nil, err
	}

	if err := reconcileFlat(tx, booking.FlatID, now); err != nil {
		return nil, nil, err
	}
	// Reconciliation may have expired this very booking.
	if err := tx.First(&booking, bookingID).Error; err != nil {
		return nil, nil, err
	}

	var flat models.Flat
	if err := tx.First(&flat, booking.FlatID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, notFound("flat not found")
		}
		return nil, nil, err
	}
	return &booking, &flat, nil
}
