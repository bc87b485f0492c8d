package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOwnerBookingsWorkbook(t *testing.T) {
	db := newTestDB(t)
	clock := &fixedClock{now: day(t, "2024-01-01")}
	log := testLogger()
	bookings := NewBookingService(db, clock, log)
	exports := NewExportService(db, log)

	owner := createOwner(t, db)
	tenant := createTenant(t, db)
	flat := createFlat(t, db, owner.ID)

	booking, err := bookings.CreateBooking(flat.ID, tenant.ID, day(t, "2024-02-01"), day(t, "2024-02-28"))
	require.NoError(t, err)
	_, err = bookings.ApproveBooking(booking.ID, owner.ID)
	require.NoError(t, err)
	_, err = bookings.ConfirmPayment(booking.ID, tenant.ID, "card")
	require.NoError(t, err)

	f, err := exports.OwnerBookingsWorkbook(owner.ID)
	require.NoError(t, err)

	rows, err := f.GetRows("Bookings")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Reference", rows[0][0])
	assert.Equal(t, booking.ReferenceCode, rows[1][0])
	assert.Equal(t, tenant.Email, rows[1][4])
	assert.Equal(t, "active", rows[1][7])
	assert.Equal(t, "1200", rows[1][8])
}

func TestOwnerBookingsWorkbookOnlyOwnFlats(t *testing.T) {
	db := newTestDB(t)
	clock := &fixedClock{now: day(t, "2024-01-01")}
	log := testLogger()
	bookings := NewBookingService(db, clock, log)
	exports := NewExportService(db, log)

	ownerA := createOwner(t, db)
	ownerB := createOwner(t, db)
	tenant := createTenant(t, db)
	flatA := createFlat(t, db, ownerA.ID)

	_, err := bookings.CreateBooking(flatA.ID, tenant.ID, day(t, "2024-02-01"), day(t, "2024-02-28"))
	require.NoError(t, err)

	f, err := exports.OwnerBookingsWorkbook(ownerB.ID)
	require.NoError(t, err)

	rows, err := f.GetRows("Bookings")
	require.NoError(t, err)
	// Header only.
	assert.Len(t, rows, 1)
}
