package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"flatrent-backend/services"
	"flatrent-backend/utils"
)

type CreateBookingPayload struct {
	FlatID    uint   `json:"flat_id" binding:"required"`
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
}

type ConfirmPaymentPayload struct {
	PaymentMethod string `json:"payment_method"`
}

type BookingController struct {
	Bookings *services.BookingService
}

func NewBookingController(svc *services.BookingService) *BookingController {
	return &BookingController{Bookings: svc}
}

func (ctrl *BookingController) CreateBooking(c *gin.Context) {
	tenantID, ok := mustActorID(c)
	if !ok {
		return
	}

	var payload CreateBookingPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid payload: "+err.Error())
		return
	}

	start, okStart := parseDate(payload.StartDate)
	end, okEnd := parseDate(payload.EndDate)
	if !okStart || !okEnd {
		utils.JSONError(c, http.StatusBadRequest, "dates must use the YYYY-MM-DD format")
		return
	}

	booking, err := ctrl.Bookings.CreateBooking(payload.FlatID, tenantID, start, end)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, booking)
}

func (ctrl *BookingController) GetBooking(c *gin.Context) {
	actor, ok := mustActorID(c)
	if !ok {
		return
	}
	bookingID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	booking, err := ctrl.Bookings.GetBooking(bookingID, actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, booking)
}

func (ctrl *BookingController) ListMyBookings(c *gin.Context) {
	tenantID, ok := mustActorID(c)
	if !ok {
		return
	}

	bookings, err := ctrl.Bookings.ListForTenant(tenantID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, bookings)
}

func (ctrl *BookingController) ListFlatBookings(c *gin.Context) {
	ownerID, ok := mustActorID(c)
	if !ok {
		return
	}
	flatID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	bookings, err := ctrl.Bookings.ListForFlat(flatID, ownerID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, bookings)
}

func (ctrl *BookingController) ApproveBooking(c *gin.Context) {
	ownerID, ok := mustActorID(c)
	if !ok {
		return
	}
	bookingID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	booking, err := ctrl.Bookings.ApproveBooking(bookingID, ownerID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, booking)
}

func (ctrl *BookingController) DisapproveBooking(c *gin.Context) {
	ownerID, ok := mustActorID(c)
	if !ok {
		return
	}
	bookingID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	booking, err := ctrl.Bookings.DisapproveBooking(bookingID, ownerID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, booking)
}

func (ctrl *BookingController) CancelBooking(c *gin.Context) {
	tenantID, ok := mustActorID(c)
	if !ok {
		return
	}
	bookingID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	booking, err := ctrl.Bookings.CancelBooking(bookingID, tenantID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, booking)
}

func (ctrl *BookingController) ConfirmPayment(c *gin.Context) {
	tenantID, ok := mustActorID(c)
	if !ok {
		return
	}
	bookingID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var payload ConfirmPaymentPayload
	// Body is optional; payment method defaults to empty.
	_ = c.ShouldBindJSON(&payload)

	booking, err := ctrl.Bookings.ConfirmPayment(bookingID, tenantID, payload.PaymentMethod)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, booking)
}
