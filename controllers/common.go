package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	mysql "github.com/go-sql-driver/mysql"
	"github.com/sirupsen/logrus"

	"flatrent-backend/middleware"
	"flatrent-backend/services"
	"flatrent-backend/utils"
)

const dateLayout = "2006-01-02"

func actorID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(middleware.ContextUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

func mustActorID(c *gin.Context) (uint, bool) {
	id, ok := actorID(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "authentication required")
	}
	return id, ok
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	parsed, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || parsed == 0 {
		utils.JSONError(c, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return uint(parsed), true
}

func parseDate(value string) (time.Time, bool) {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// respondServiceError maps the service failure taxonomy onto HTTP statuses.
// Anything outside the taxonomy is an infrastructure failure and stays 500.
func respondServiceError(c *gin.Context, err error) {
	switch services.KindOf(err) {
	case services.KindNotFound:
		utils.JSONError(c, http.StatusNotFound, err.Error())
	case services.KindForbidden:
		utils.JSONError(c, http.StatusForbidden, err.Error())
	case services.KindInvalidInput:
		utils.JSONError(c, http.StatusBadRequest, err.Error())
	case services.KindConflict:
		utils.JSONError(c, http.StatusConflict, err.Error())
	case services.KindInvalidState:
		utils.JSONError(c, http.StatusUnprocessableEntity, err.Error())
	default:
		logrus.WithError(err).Error("internal error")
		if isForeignKeyError(err) {
			utils.JSONError(c, http.StatusBadRequest, "foreign key constraint")
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "internal error")
	}
}

func isForeignKeyError(err error) bool {
	if err == nil {
		return false
	}
	if merr, ok := err.(*mysql.MySQLError); ok {
		return merr.Number == 1452
	}
	lower := strings.ToLower(err.Error())
	return strings.Contains(lower, "foreign key") || strings.Contains(lower, "1452")
}
