package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"flatrent-backend/services"
	"flatrent-backend/utils"
)

type RequestExtensionPayload struct {
	NewEndDate string `json:"new_end_date" binding:"required"`
}

type ExtensionController struct {
	Extensions *services.ExtensionService
}

func NewExtensionController(svc *services.ExtensionService) *ExtensionController {
	return &ExtensionController{Extensions: svc}
}

func (ctrl *ExtensionController) RequestExtension(c *gin.Context) {
	tenantID, ok := mustActorID(c)
	if !ok {
		return
	}
	bookingID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var payload RequestExtensionPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid payload: "+err.Error())
		return
	}

	newEnd, okDate := parseDate(payload.NewEndDate)
	if !okDate {
		utils.JSONError(c, http.StatusBadRequest, "new_end_date must use the YYYY-MM-DD format")
		return
	}

	extension, err := ctrl.Extensions.RequestExtension(bookingID, tenantID, newEnd)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, extension)
}

func (ctrl *ExtensionController) ListExtensions(c *gin.Context) {
	actor, ok := mustActorID(c)
	if !ok {
		return
	}
	bookingID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	extensions, err := ctrl.Extensions.ListForBooking(bookingID, actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, extensions)
}

func (ctrl *ExtensionController) ApproveExtension(c *gin.Context) {
	ownerID, ok := mustActorID(c)
	if !ok {
		return
	}
	extensionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	extension, err := ctrl.Extensions.ApproveExtension(extensionID, ownerID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, extension)
}

func (ctrl *ExtensionController) RejectExtension(c *gin.Context) {
	ownerID, ok := mustActorID(c)
	if !ok {
		return
	}
	extensionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	extension, err := ctrl.Extensions.RejectExtension(extensionID, ownerID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, extension)
}

func (ctrl *ExtensionController) ConfirmExtensionPayment(c *gin.Context) {
	tenantID, ok := mustActorID(c)
	if !ok {
		return
	}
	extensionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var payload ConfirmPaymentPayload
	_ = c.ShouldBindJSON(&payload)

	extension, err := ctrl.Extensions.ConfirmExtensionPayment(extensionID, tenantID, payload.PaymentMethod)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, extension)
}
