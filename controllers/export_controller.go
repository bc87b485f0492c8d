package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"flatrent-backend/services"
	"flatrent-backend/utils"
)

type ExportController struct {
	Exports *services.ExportService
}

func NewExportController(svc *services.ExportService) *ExportController {
	return &ExportController{Exports: svc}
}

// DownloadBookings streams the owner's bookings as an xlsx attachment.
func (ctrl *ExportController) DownloadBookings(c *gin.Context) {
	ownerID, ok := mustActorID(c)
	if !ok {
		return
	}

	f, err := ctrl.Exports.OwnerBookingsWorkbook(ownerID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("bookings-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := f.Write(c.Writer); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to write export")
	}
}
