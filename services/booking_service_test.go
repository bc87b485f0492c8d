package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flatrent-backend/models"
)

func newBookingFixture(t *testing.T) (*BookingService, *fixedClock, *models.User, *models.User, *models.Flat) {
	t.Helper()
	db := newTestDB(t)
	clock := &fixedClock{now: day(t, "2024-01-01")}
	svc := NewBookingService(db, clock, testLogger())
	owner := createOwner(t, db)
	tenant := createTenant(t, db)
	flat := createFlat(t, db, owner.ID)
	return svc, clock, owner, tenant, flat
}

func TestCreateBookingHappyPath(t *testing.T) {
	svc, _, _, tenant, flat := newBookingFixture(t)

	booking, err := svc.CreateBooking(flat.ID, tenant.ID, day(t, "2024-02-01"), day(t, "2024-02-28"))
	require.NoError(t, err)

	assert.Equal(t, models.BookingStatusPending, booking.Status)
	assert.NotEmpty(t, booking.ReferenceCode)
	assert.Equal(t, models.FlatStatusPending, flatStatus(t, svc.DB, flat.ID))

	require.Len(t, booking.Payments, 1)
	assert.Equal(t, models.PaymentStatusPending, booking.Payments[0].Status)
	assert.Equal(t, flat.MonthlyRentalCost, booking.Payments[0].Amount)
	assert.Nil(t, booking.Payments[0].ExtensionID)
}

func TestCreateBookingRejectsInvertedDates(t *testing.T) {
	svc, _, _, tenant, flat := newBookingFixture(t)

	_, err := svc.CreateBooking(flat.ID, tenant.ID, day(t, "2024-02-28"), day(t, "2024-02-01"))
	assert.Equal(t, KindInvalidInput, KindOf(err))
}

func TestCreateBookingOwnerCannotBookOwnFlat(t *testing.T) {
	svc, _, owner, _, flat := newBookingFixture(t)

	_, err := svc.CreateBooking(flat.ID, owner.ID, day(t, "2024-02-01"), day(t, "2024-02-28"))
	assert.Equal(t, KindForbidden, KindOf(err))
}

func TestCreateBookingUnknownFlat(t *testing.T) {
	svc, _, _, tenant, _ := newBookingFixture(t)

	_, err := svc.CreateBooking(9999, tenant.ID, day(t, "2024-02-01"), day(t, "2024-02-28"))
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestCreateBookingDateConflicts(t *testing.T) {
	svc, _, _, tenant, flat := newBookingFixture(t)
	other := createTenant(t, svc.DB)

	first, err := svc.CreateBooking(flat.ID, tenant.ID, day(t, "2024-01-01"), day(t, "2024-01-31"))
	require.NoError(t, err)
	require.Equal(t, models.BookingStatusPending, first.Status)

	// Overlapping request is rejected even while the first is only pending.
	_, err = svc.CreateBooking(flat.ID, other.ID, day(t, "2024-01-15"), day(t, "2024-02-15"))
	assert.Equal(t, KindConflict, KindOf(err))

	// Touching the boundary counts as overlap, bounds are inclusive.
	_, err = svc.CreateBooking(flat.ID, other.ID, day(t, "2024-01-31"), day(t, "2024-02-15"))
	assert.Equal(t, KindConflict, KindOf(err))

	// Disjoint dates are fine.
	_, err = svc.CreateBooking(flat.ID, other.ID, day(t, "2024-02-01"), day(t, "2024-02-28"))
	assert.NoError(t, err)
}

func TestApproveAndConfirmPaymentFlow(t *testing.T) {
	svc, _, owner, tenant, flat := newBookingFixture(t)

	booking, err := svc.CreateBooking(flat.ID, tenant.ID, day(t, "2024-02-01"), day(t, "2024-02-28"))
	require.NoError(t, err)

	approved, err := svc.ApproveBooking(booking.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusApproved, approved.Status)
	require.NotNil(t, approved.ApprovedAt)
	require.Len(t, approved.Payments, 1)
	assert.Equal(t, models.PaymentStatusAwaitingTenant, approved.Payments[0].Status)

	active, err := svc.ConfirmPayment(booking.ID, tenant.ID, "bank_transfer")
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusActive, active.Status)
	assert.Equal(t, models.FlatStatusBooked, flatStatus(t, svc.DB, flat.ID))

	payments := paymentsFor(t, svc.DB, booking.ID)
	require.Len(t, payments, 1)
	assert.Equal(t, models.PaymentStatusCompleted, payments[0].Status)
	assert.Equal(t, "bank_transfer", payments[0].PaymentMethod)
	require.NotNil(t, payments[0].DatePaid)
}

func TestApproveBookingOnlyOwner(t *testing.T) {
	svc, _, _, tenant, flat := newBookingFixture(t)
	stranger := createOwner(t, svc.DB)

	booking, err := svc.CreateBooking(flat.ID, tenant.ID, day(t, "2024-02-01"), day(t, "2024-02-28"))
	require.NoError(t, err)

	_, err = svc.ApproveBooking(booking.ID, stranger.ID)
	assert.Equal(t, KindForbidden, KindOf(err))
	assert.Equal(t, models.BookingStatusPending, bookingStatus(t, svc.DB, booking.ID))
}

func TestApproveBookingOnlyFromPending(t *testing.T) {
	svc, _, owner, tenant, flat := newBookingFixture(t)

	booking, err := svc.CreateBooking(flat.ID, tenant.ID, day(t, "2024-02-01"), day(t, "2024-02-28"))
	require.NoError(t, err)
	_, err = svc.ApproveBooking(booking.ID, owner.ID)
	require.NoError(t, err)

	_, err = svc.ApproveBooking(booking.ID, owner.ID)
	assert.Equal(t, KindInvalidState, KindOf(err))
}

func TestConfirmPaymentRequiresApproval(t *testing.T) {
	svc, _, _, tenant, flat := newBookingFixture(t)

	booking, err := svc.CreateBooking(flat.ID, tenant.ID, day(t, "2024-02-01"), day(t, "2024-02-28"))
	require.NoError(t, err)

	_, err = svc.ConfirmPayment(booking.ID, tenant.ID, "")
	assert.Equal(t, KindInvalidState, KindOf(err))
}

func TestDisapproveBookingFailsPaymentsAndFreesFlat(t *testing.T) {
	svc, _, owner, tenant, flat := newBookingFixture(t)

	booking, err := svc.CreateBooking(flat.ID, tenant.ID, day(t, "2024-02-01"), day(t, "2024-02-28"))
	require.NoError(t, err)

	closed, err := svc.DisapproveBooking(booking.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusDisapproved, closed.Status)
	require.NotNil(t, closed.CancelledAt)
	assert.Equal(t, models.FlatStatusAvailable, flatStatus(t, svc.DB, flat.ID))

	payments := paymentsFor(t, svc.DB, booking.ID)
	require.Len(t, payments, 1)
	assert.Equal(t, models.PaymentStatusFailed, payments[0].Status)
}

func TestCancelBookingTenantOnly(t *testing.T) {
	svc, _, owner, tenant, flat := newBookingFixture(t)

	booking, err := svc.CreateBooking(flat.ID, tenant.ID, day(t, "2024-02-01"), day(t, "2024-02-28"))
	require.NoError(t, err)

	_, err = svc.CancelBooking(booking.ID, owner.ID)
	assert.Equal(t, KindForbidden, KindOf(err))

	cancelled, err := svc.CancelBooking(booking.ID, tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCancelled, cancelled.Status)
	assert.Equal(t, models.FlatStatusAvailable, flatStatus(t, svc.DB, flat.ID))
}

func TestCancelActiveBookingRejected(t *testing.T) {
	svc, _, owner, tenant, flat := newBookingFixture(t)

	booking, err := svc.CreateBooking(flat.ID, tenant.ID, day(t, "2024-02-01"), day(t, "2024-02-28"))
	require.NoError(t, err)
	_, err = svc.ApproveBooking(booking.ID, owner.ID)
	require.NoError(t, err)
	_, err = svc.ConfirmPayment(booking.ID, tenant.ID, "")
	require.NoError(t, err)

	_, err = svc.CancelBooking(booking.ID, tenant.ID)
	assert.Equal(t, KindInvalidState, KindOf(err))
}

func TestExpiryReconciliation(t *testing.T) {
	svc, clock, owner, tenant, flat := newBookingFixture(t)

	booking, err := svc.CreateBooking(flat.ID, tenant.ID, day(t, "2024-02-01"), day(t, "2024-02-28"))
	require.NoError(t, err)
	_, err = svc.ApproveBooking(booking.ID, owner.ID)
	require.NoError(t, err)
	_, err = svc.ConfirmPayment(booking.ID, tenant.ID, "")
	require.NoError(t, err)
	require.Equal(t, models.FlatStatusBooked, flatStatus(t, svc.DB, flat.ID))

	// Move past the end date: the next read expires the booking and frees
	// the flat.
	clock.now = day(t, "2024-03-01")
	got, err := svc.GetBooking(booking.ID, tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusExpired, got.Status)
	assert.Equal(t, models.FlatStatusAvailable, flatStatus(t, svc.DB, flat.ID))

	// Idempotent on repeated reads.
	got, err = svc.GetBooking(booking.ID, tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusExpired, got.Status)
}

func TestExpiryReconciliationCoversShadowedBooking(t *testing.T) {
	svc, clock, owner, tenant, flat := newBookingFixture(t)
	other := createTenant(t, svc.DB)

	first, err := svc.CreateBooking(flat.ID, tenant.ID, day(t, "2024-02-01"), day(t, "2024-02-28"))
	require.NoError(t, err)
	_, err = svc.ApproveBooking(first.ID, owner.ID)
	require.NoError(t, err)
	_, err = svc.ConfirmPayment(first.ID, tenant.ID, "")
	require.NoError(t, err)

	// A later disjoint request lands while the first booking is active. The
	// flat projection keeps reporting the active stay.
	second, err := svc.CreateBooking(flat.ID, other.ID, day(t, "2024-04-01"), day(t, "2024-04-30"))
	require.NoError(t, err)
	require.Equal(t, models.FlatStatusBooked, flatStatus(t, svc.DB, flat.ID))

	// The active booking is no longer the newest relevant row, it must still
	// expire once its end date passes.
	clock.now = day(t, "2024-03-15")
	got, err := svc.GetBooking(first.ID, tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusExpired, got.Status)

	// The surviving pending booking keeps its claim on the flat.
	assert.Equal(t, models.BookingStatusPending, bookingStatus(t, svc.DB, second.ID))
	assert.Equal(t, models.FlatStatusPending, flatStatus(t, svc.DB, flat.ID))
}

func TestCancelKeepsFlatBookedWhileAnotherStayIsActive(t *testing.T) {
	svc, _, owner, tenant, flat := newBookingFixture(t)
	other := createTenant(t, svc.DB)

	first, err := svc.CreateBooking(flat.ID, tenant.ID, day(t, "2024-02-01"), day(t, "2024-02-28"))
	require.NoError(t, err)
	_, err = svc.ApproveBooking(first.ID, owner.ID)
	require.NoError(t, err)
	_, err = svc.ConfirmPayment(first.ID, tenant.ID, "")
	require.NoError(t, err)

	second, err := svc.CreateBooking(flat.ID, other.ID, day(t, "2024-04-01"), day(t, "2024-04-30"))
	require.NoError(t, err)

	// Cancelling the pending request must not free a flat that still hosts
	// an active stay.
	_, err = svc.CancelBooking(second.ID, other.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FlatStatusBooked, flatStatus(t, svc.DB, flat.ID))
}

func TestCreateBookingRejectedOnUnavailableFlat(t *testing.T) {
	svc, _, _, tenant, flat := newBookingFixture(t)

	require.NoError(t, svc.DB.Model(&models.Flat{}).
		Where("id = ?", flat.ID).
		Update("status", models.FlatStatusUnavailable).Error)

	_, err := svc.CreateBooking(flat.ID, tenant.ID, day(t, "2024-02-01"), day(t, "2024-02-28"))
	assert.Equal(t, KindInvalidState, KindOf(err))

	// The owner's setting survives the rejected attempt.
	assert.Equal(t, models.FlatStatusUnavailable, flatStatus(t, svc.DB, flat.ID))

	var count int64
	require.NoError(t, svc.DB.Model(&models.Booking{}).
		Where("flat_id = ?", flat.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestExpiredFlatCanBeRebooked(t *testing.T) {
	svc, clock, owner, tenant, flat := newBookingFixture(t)

	booking, err := svc.CreateBooking(flat.ID, tenant.ID, day(t, "2024-02-01"), day(t, "2024-02-28"))
	require.NoError(t, err)
	_, err = svc.ApproveBooking(booking.ID, owner.ID)
	require.NoError(t, err)
	_, err = svc.ConfirmPayment(booking.ID, tenant.ID, "")
	require.NoError(t, err)

	clock.now = day(t, "2024-04-01")
	other := createTenant(t, svc.DB)

	// Create reconciles before the conflict check, so the expired booking
	// no longer blocks.
	next, err := svc.CreateBooking(flat.ID, other.ID, day(t, "2024-04-10"), day(t, "2024-05-10"))
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusPending, next.Status)
	assert.Equal(t, models.BookingStatusExpired, bookingStatus(t, svc.DB, booking.ID))
}

func TestGetBookingPartiesOnly(t *testing.T) {
	svc, _, owner, tenant, flat := newBookingFixture(t)
	stranger := createTenant(t, svc.DB)

	booking, err := svc.CreateBooking(flat.ID, tenant.ID, day(t, "2024-02-01"), day(t, "2024-02-28"))
	require.NoError(t, err)

	_, err = svc.GetBooking(booking.ID, stranger.ID)
	assert.Equal(t, KindForbidden, KindOf(err))

	_, err = svc.GetBooking(booking.ID, owner.ID)
	assert.NoError(t, err)
	_, err = svc.GetBooking(booking.ID, tenant.ID)
	assert.NoError(t, err)
}

func TestListForTenantSweepsStaleActives(t *testing.T) {
	svc, clock, owner, tenant, flat := newBookingFixture(t)

	booking, err := svc.CreateBooking(flat.ID, tenant.ID, day(t, "2024-02-01"), day(t, "2024-02-28"))
	require.NoError(t, err)
	_, err = svc.ApproveBooking(booking.ID, owner.ID)
	require.NoError(t, err)
	_, err = svc.ConfirmPayment(booking.ID, tenant.ID, "")
	require.NoError(t, err)

	clock.now = day(t, "2024-03-15")
	list, err := svc.ListForTenant(tenant.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.BookingStatusExpired, list[0].Status)
}

func TestListForFlatOwnerOnly(t *testing.T) {
	svc, _, owner, tenant, flat := newBookingFixture(t)

	_, err := svc.CreateBooking(flat.ID, tenant.ID, day(t, "2024-02-01"), day(t, "2024-02-28"))
	require.NoError(t, err)

	_, err = svc.ListForFlat(flat.ID, tenant.ID)
	assert.Equal(t, KindForbidden, KindOf(err))

	list, err := svc.ListForFlat(flat.ID, owner.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
