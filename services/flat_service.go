package services

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"flatrent-backend/models"
)

// FlatService covers flat CRUD. Reads run expiry reconciliation first so the
// returned status projection is never stale.
type FlatService struct {
	DB    *gorm.DB
	Clock Clock
	Log   *logrus.Logger
}

func NewFlatService(db *gorm.DB, clock Clock, log *logrus.Logger) *FlatService {
	return &FlatService{DB: db, Clock: clock, Log: log}
}

func (s *FlatService) Create(ownerID uint, flat models.Flat) (*models.Flat, error) {
	if flat.MonthlyRentalCost <= 0 {
		return nil, invalidInput("monthly rental cost must be positive")
	}
	if flat.AddressLine == "" || flat.City == "" {
		return nil, invalidInput("address line and city are required")
	}

	flat.ID = 0
	flat.OwnerID = ownerID
	flat.Status = models.FlatStatusAvailable
	flat.Rating = nil

	if err := s.DB.Create(&flat).Error; err != nil {
		return nil, fmt.Errorf("failed to create flat: %w", err)
	}

	s.Log.WithFields(logrus.Fields{
		"flat_id":  flat.ID,
		"owner_id": ownerID,
	}).Info("flat created")
	return &flat, nil
}

// Update changes listing attributes. Status and rating are projections and
// cannot be set here.
func (s *FlatService) Update(flatID, ownerID uint, in models.Flat) (*models.Flat, error) {
	var flat models.Flat

	txErr := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&flat, flatID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("flat not found")
			}
			return err
		}
		if flat.OwnerID != ownerID {
			return forbidden("only the owner can update this flat")
		}
		if in.MonthlyRentalCost < 0 {
			return invalidInput("monthly rental cost must be positive")
		}

		updates := map[string]interface{}{}
		if in.AddressLine != "" {
			updates["address_line"] = in.AddressLine
		}
		if in.City != "" {
			updates["city"] = in.City
		}
		if in.PostalCode != "" {
			updates["postal_code"] = in.PostalCode
		}
		if in.MonthlyRentalCost > 0 {
			updates["monthly_rental_cost"] = in.MonthlyRentalCost
		}
		if in.Rooms > 0 {
			updates["rooms"] = in.Rooms
		}
		if in.AreaSqm > 0 {
			updates["area_sqm"] = in.AreaSqm
		}
		if in.Description != "" {
			updates["description"] = in.Description
		}
		if len(in.Amenities) > 0 {
			updates["amenities"] = in.Amenities
		}
		updates["furnished"] = in.Furnished

		return tx.Model(&flat).Updates(updates).Error
	})
	if txErr != nil {
		return nil, txErr
	}

	if err := s.DB.First(&flat, flatID).Error; err != nil {
		return nil, err
	}
	return &flat, nil
}

// SetAvailability toggles a flat between available and unavailable. Flats
// with a relevant booking cannot be toggled.
func (s *FlatService) SetAvailability(flatID, ownerID uint, status string) (*models.Flat, error) {
	if status != models.FlatStatusAvailable && status != models.FlatStatusUnavailable {
		return nil, invalidInput("status must be available or unavailable")
	}

	now := s.Clock.Now()
	var flat models.Flat

	txErr := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&flat, flatID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("flat not found")
			}
			return err
		}
		if flat.OwnerID != ownerID {
			return forbidden("only the owner can change this flat's availability")
		}
		if err := reconcileFlat(tx, flatID, now); err != nil {
			return err
		}

		var relevant int64
		if err := tx.Model(&models.Booking{}).
			Where("flat_id = ? AND status IN ?", flatID, models.RelevantBookingStatuses).
			Count(&relevant).Error; err != nil {
			return err
		}
		if relevant > 0 {
			return invalidState("flat has a booking in progress")
		}

		return tx.Model(&flat).Update("status", status).Error
	})
	if txErr != nil {
		return nil, txErr
	}

	if err := s.DB.First(&flat, flatID).Error; err != nil {
		return nil, err
	}
	return &flat, nil
}

func (s *FlatService) Delete(flatID, ownerID uint) error {
	now := s.Clock.Now()

	return s.DB.Transaction(func(tx *gorm.DB) error {
		var flat models.Flat
		if err := tx.First(&flat, flatID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("flat not found")
			}
			return err
		}
		if flat.OwnerID != ownerID {
			return forbidden("only the owner can delete this flat")
		}
		if err := reconcileFlat(tx, flatID, now); err != nil {
			return err
		}

		var relevant int64
		if err := tx.Model(&models.Booking{}).
			Where("flat_id = ? AND status IN ?", flatID, models.RelevantBookingStatuses).
			Count(&relevant).Error; err != nil {
			return err
		}
		if relevant > 0 {
			return invalidState("flat has a booking in progress")
		}

		return tx.Delete(&flat).Error
	})
}

// GetByID returns the flat with its owner, reconciled.
func (s *FlatService) GetByID(flatID uint) (*models.Flat, error) {
	now := s.Clock.Now()

	txErr := s.DB.Transaction(func(tx *gorm.DB) error {
		var flat models.Flat
		if err := tx.First(&flat, flatID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("flat not found")
			}
			return err
		}
		return reconcileFlat(tx, flatID, now)
	})
	if txErr != nil {
		return nil, txErr
	}

	var flat models.Flat
	if err := s.DB.Preload("Owner").First(&flat, flatID).Error; err != nil {
		return nil, err
	}
	return &flat, nil
}

// List returns flats, optionally filtered by city, after sweeping expired
// active bookings so listed statuses are current.
func (s *FlatService) List(city string) ([]models.Flat, error) {
	now := s.Clock.Now()

	txErr := s.DB.Transaction(func(tx *gorm.DB) error {
		var stale []models.Booking
		if err := tx.Where("status = ? AND end_date < ?", models.BookingStatusActive, now).
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

	q := s.DB.Order("created_at DESC")
	if city != "" {
		q = q.Where("city = ?", city)
	}

	var list []models.Flat
	if err := q.Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve flats: %w", err)
	}
	return list, nil
}

// AttachPhoto stores a base64 photo on disk and records its path on the flat.
func (s *FlatService) AttachPhoto(flatID, ownerID uint, photoBase64 string) (*models.Flat, error) {
	var flat models.Flat
	if err := s.DB.First(&flat, flatID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("flat not found")
		}
		return nil, err
	}
	if flat.OwnerID != ownerID {
		return nil, forbidden("only the owner can upload photos for this flat")
	}

	path, err := SaveBase64Image(photoBase64, "flats")
	if err != nil {
		return nil, invalidInput("photo could not be decoded")
	}

	if err := s.DB.Model(&flat).Update("photo_path", path).Error; err != nil {
		return nil, err
	}
	flat.PhotoPath = path
	return &flat, nil
}
