package services

import (
	"database/sql"
	"errors"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"flatrent-backend/models"
)

// TenantCriteria are the scores a tenant can give about a stay.
type TenantCriteria struct {
	FlatQuality   *int `json:"flat_quality"`
	Hygiene       *int `json:"hygiene"`
	Location      *int `json:"location"`
	OwnerBehavior *int `json:"owner_behavior"`
}

// OwnerCriteria are the scores an owner can give about a tenant.
type OwnerCriteria struct {
	TenantBehavior *int `json:"tenant_behavior"`
	Cooperation    *int `json:"cooperation"`
}

// ReviewInput carries both variants; the reviewer's role decides which one is
// read, the other is ignored.
type ReviewInput struct {
	TenantCriteria
	OwnerCriteria
	Comment string `json:"comment"`
}

// ReviewService gates review writes on booking membership and keeps
// Flat.rating equal to the mean of the flat's reviews.
type ReviewService struct {
	DB    *gorm.DB
	Clock Clock
	Log   *logrus.Logger
}

func NewReviewService(db *gorm.DB, clock Clock, log *logrus.Logger) *ReviewService {
	return &ReviewService{DB: db, Clock: clock, Log: log}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func criteriaMean(values []*int) (float64, int, error) {
	sum, count := 0, 0
	for _, v := range values {
		if v == nil {
			continue
		}
		if *v < 1 || *v > 5 {
			return 0, 0, invalidInput("criteria values must be between 1 and 5")
		}
		sum += *v
		count++
	}
	if count == 0 {
		return 0, 0, invalidInput("at least one criterion is required")
	}
	return round2(float64(sum) / float64(count)), count, nil
}

// UpsertReview writes the reviewer's review slot for the booking. A tenant
// and an owner hold independent slots; writing again overwrites your own
// slot only.
func (s *ReviewService) UpsertReview(bookingID, reviewerID uint, input ReviewInput) (*models.Review, error) {
	now := s.Clock.Now()
	var review models.Review

	txErr := s.DB.Transaction(func(tx *gorm.DB) error {
		booking, flat, err := loadBookingWithFlat(tx, bookingID, now)
		if err != nil {
			return err
		}

		var role string
		var reviewedUserID uint
		var updates map[string]interface{}
		var rating float64

		switch reviewerID {
		case booking.UserID:
			role = models.RoleTenant
			reviewedUserID = flat.OwnerID
			rating, _, err = criteriaMean([]*int{
				input.FlatQuality, input.Hygiene, input.Location, input.OwnerBehavior,
			})
			if err != nil {
				return err
			}
			updates = map[string]interface{}{
				"flat_quality":   input.FlatQuality,
				"hygiene":        input.Hygiene,
				"location":       input.Location,
				"owner_behavior": input.OwnerBehavior,
			}
		case flat.OwnerID:
			role = models.RoleOwner
			reviewedUserID = booking.UserID
			rating, _, err = criteriaMean([]*int{
				input.TenantBehavior, input.Cooperation,
			})
			if err != nil {
				return err
			}
			updates = map[string]interface{}{
				"tenant_behavior": input.TenantBehavior,
				"cooperation":     input.Cooperation,
			}
		default:
			return forbidden("only the booking's tenant or the flat owner may review it")
		}

		updates["rating_given"] = rating
		updates["comment"] = input.Comment
		updates["date_submitted"] = now

		var existing models.Review
		err = tx.Where("booking_id = ? AND reviewer_role = ?", bookingID, role).
			First(&existing).Error
		switch {
		case err == nil:
			if existing.ReviewerID != reviewerID {
				return forbidden("this review was written by a different user")
			}
			if err := tx.Model(&existing).Updates(updates).Error; err != nil {
				return err
			}
			review = existing
		case errors.Is(err, gorm.ErrRecordNotFound):
			review = models.Review{
				BookingID:      bookingID,
				FlatID:         flat.ID,
				ReviewerID:     reviewerID,
				ReviewedUserID: reviewedUserID,
				ReviewerRole:   role,
				FlatQuality:    input.FlatQuality,
				Hygiene:        input.Hygiene,
				Location:       input.Location,
				OwnerBehavior:  input.OwnerBehavior,
				TenantBehavior: input.TenantBehavior,
				Cooperation:    input.Cooperation,
				RatingGiven:    rating,
				Comment:        input.Comment,
				DateSubmitted:  now,
			}
			if role == models.RoleTenant {
				review.TenantBehavior = nil
				review.Cooperation = nil
			} else {
				review.FlatQuality = nil
				review.Hygiene = nil
				review.Location = nil
				review.OwnerBehavior = nil
			}
			if err := tx.Create(&review).Error; err != nil {
				return fmt.Errorf("failed to create review: %w", err)
			}
		default:
			return err
		}

		return recomputeFlatRating(tx, flat.ID)
	})
	if txErr != nil {
		return nil, txErr
	}

	s.Log.WithFields(logrus.Fields{
		"booking_id":  bookingID,
		"reviewer_id": reviewerID,
	}).Info("review saved")

	if err := s.DB.First(&review, review.ID).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

// DeleteReview removes the requester's own review and recomputes the flat
// rating over the remaining ones.
func (s *ReviewService) DeleteReview(reviewID, requesterID uint) error {
	txErr := s.DB.Transaction(func(tx *gorm.DB) error {
		var review models.Review
		if err := tx.First(&review, reviewID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("review not found")
			}
			return err
		}
		if review.ReviewerID != requesterID {
			return forbidden("only the author can delete a review")
		}
		if err := tx.Delete(&review).Error; err != nil {
			return err
		}
		return recomputeFlatRating(tx, review.FlatID)
	})
	if txErr != nil {
		return txErr
	}

	s.Log.WithField("review_id", reviewID).Info("review deleted")
	return nil
}

// ListForFlat returns a flat's reviews, newest first.
func (s *ReviewService) ListForFlat(flatID uint) ([]models.Review, error) {
	var flat models.Flat
	if err := s.DB.First(&flat, flatID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("flat not found")
		}
		return nil, err
	}

	var list []models.Review
	if err := s.DB.Where("flat_id = ?", flatID).
		Order("date_submitted DESC").
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve reviews: %w", err)
	}
	return list, nil
}

// recomputeFlatRating persists the mean rating_given across the flat's
// reviews, or clears it when none remain.
func recomputeFlatRating(tx *gorm.DB, flatID uint) error {
	var avg sql.NullFloat64
	if err := tx.Model(&models.Review{}).
		Where("flat_id = ?", flatID).
		Select("AVG(rating_given)").
		Scan(&avg).Error; err != nil {
		return err
	}

	if !avg.Valid {
		return tx.Model(&models.Flat{}).
			Where("id = ?", flatID).
			Update("rating", nil).Error
	}
	rounded := round2(avg.Float64)
	return tx.Model(&models.Flat{}).
		Where("id = ?", flatID).
		Update("rating", rounded).Error
}
