package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"flatrent-backend/models"
	"flatrent-backend/services"
	"flatrent-backend/utils"
)

type FlatPayload struct {
	AddressLine       string         `json:"address_line"`
	City              string         `json:"city"`
	PostalCode        string         `json:"postal_code"`
	MonthlyRentalCost float64        `json:"monthly_rental_cost"`
	Rooms             int            `json:"rooms"`
	AreaSqm           float64        `json:"area_sqm"`
	Furnished         bool           `json:"furnished"`
	Description       string         `json:"description"`
	Amenities         datatypes.JSON `json:"amenities"`
}

type AvailabilityPayload struct {
	Status string `json:"status" binding:"required"`
}

type PhotoPayload struct {
	Photo string `json:"photo" binding:"required"`
}

type FlatController struct {
	Flats *services.FlatService
}

func NewFlatController(svc *services.FlatService) *FlatController {
	return &FlatController{Flats: svc}
}

func (p FlatPayload) toModel() models.Flat {
	return models.Flat{
		AddressLine:       p.AddressLine,
		City:              p.City,
		PostalCode:        p.PostalCode,
		MonthlyRentalCost: p.MonthlyRentalCost,
		Rooms:             p.Rooms,
		AreaSqm:           p.AreaSqm,
		Furnished:         p.Furnished,
		Description:       p.Description,
		Amenities:         p.Amenities,
	}
}

func (ctrl *FlatController) CreateFlat(c *gin.Context) {
	ownerID, ok := mustActorID(c)
	if !ok {
		return
	}

	var payload FlatPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid payload: "+err.Error())
		return
	}

	flat, err := ctrl.Flats.Create(ownerID, payload.toModel())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, flat)
}

func (ctrl *FlatController) UpdateFlat(c *gin.Context) {
	ownerID, ok := mustActorID(c)
	if !ok {
		return
	}
	flatID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var payload FlatPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid payload: "+err.Error())
		return
	}

	flat, err := ctrl.Flats.Update(flatID, ownerID, payload.toModel())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, flat)
}

func (ctrl *FlatController) SetAvailability(c *gin.Context) {
	ownerID, ok := mustActorID(c)
	if !ok {
		return
	}
	flatID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var payload AvailabilityPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid payload: "+err.Error())
		return
	}

	flat, err := ctrl.Flats.SetAvailability(flatID, ownerID, payload.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, flat)
}

func (ctrl *FlatController) DeleteFlat(c *gin.Context) {
	ownerID, ok := mustActorID(c)
	if !ok {
		return
	}
	flatID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.Flats.Delete(flatID, ownerID); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"deleted": flatID})
}

func (ctrl *FlatController) GetFlat(c *gin.Context) {
	flatID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	flat, err := ctrl.Flats.GetByID(flatID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, flat)
}

func (ctrl *FlatController) ListFlats(c *gin.Context) {
	flats, err := ctrl.Flats.List(c.Query("city"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, flats)
}

func (ctrl *FlatController) UploadPhoto(c *gin.Context) {
	ownerID, ok := mustActorID(c)
	if !ok {
		return
	}
	flatID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var payload PhotoPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid payload: "+err.Error())
		return
	}

	flat, err := ctrl.Flats.AttachPhoto(flatID, ownerID, payload.Photo)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, flat)
}
