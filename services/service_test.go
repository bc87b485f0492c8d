package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"flatrent-backend/models"
)

// fixedClock makes expiry deterministic; tests move time by assigning now.
type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time { return c.now }

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// One in-memory database per connection otherwise.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Flat{},
		&models.Booking{},
		&models.Extension{},
		&models.Payment{},
		&models.Review{},
	))
	return db
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func day(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", value)
	require.NoError(t, err)
	return parsed
}

var userSeq int

func createUser(t *testing.T, db *gorm.DB, role string) *models.User {
	t.Helper()
	userSeq++
	user := models.User{
		Role:     role,
		FullName: fmt.Sprintf("Test %s %d", role, userSeq),
		Email:    fmt.Sprintf("%s%d@example.test", role, userSeq),
		Password: "not-a-real-hash",
		Verified: true,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func createOwner(t *testing.T, db *gorm.DB) *models.User {
	return createUser(t, db, models.RoleOwner)
}

func createTenant(t *testing.T, db *gorm.DB) *models.User {
	return createUser(t, db, models.RoleTenant)
}

func createFlat(t *testing.T, db *gorm.DB, ownerID uint) *models.Flat {
	t.Helper()
	flat := models.Flat{
		OwnerID:           ownerID,
		AddressLine:       "1 Test Lane",
		City:              "Hamburg",
		PostalCode:        "20095",
		MonthlyRentalCost: 1200,
		Rooms:             3,
		AreaSqm:           72,
		Status:            models.FlatStatusAvailable,
	}
	require.NoError(t, db.Create(&flat).Error)
	return &flat
}

func flatStatus(t *testing.T, db *gorm.DB, flatID uint) string {
	t.Helper()
	var flat models.Flat
	require.NoError(t, db.First(&flat, flatID).Error)
	return flat.Status
}

func bookingStatus(t *testing.T, db *gorm.DB, bookingID uint) string {
	t.Helper()
	var booking models.Booking
	require.NoError(t, db.First(&booking, bookingID).Error)
	return booking.Status
}

func paymentsFor(t *testing.T, db *gorm.DB, bookingID uint) []models.Payment {
	t.Helper()
	var payments []models.Payment
	require.NoError(t, db.Where("booking_id = ?", bookingID).Order("id ASC").Find(&payments).Error)
	return payments
}
