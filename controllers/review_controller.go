package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"flatrent-backend/services"
	"flatrent-backend/utils"
)

type ReviewController struct {
	Reviews *services.ReviewService
}

func NewReviewController(svc *services.ReviewService) *ReviewController {
	return &ReviewController{Reviews: svc}
}

func (ctrl *ReviewController) UpsertReview(c *gin.Context) {
	reviewerID, ok := mustActorID(c)
	if !ok {
		return
	}
	bookingID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var input services.ReviewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid payload: "+err.Error())
		return
	}

	review, err := ctrl.Reviews.UpsertReview(bookingID, reviewerID, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, review)
}

func (ctrl *ReviewController) DeleteReview(c *gin.Context) {
	requesterID, ok := mustActorID(c)
	if !ok {
		return
	}
	reviewID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.Reviews.DeleteReview(reviewID, requesterID); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"deleted": reviewID})
}

func (ctrl *ReviewController) ListFlatReviews(c *gin.Context) {
	flatID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	reviews, err := ctrl.Reviews.ListForFlat(flatID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, reviews)
}
