package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"flatrent-backend/config"
	"flatrent-backend/controllers"
	"flatrent-backend/middleware"
	"flatrent-backend/models"
)

// SetupRouter wires the HTTP surface onto the controller instances.
func SetupRouter(
	cfg *config.Config,
	log *logrus.Logger,
	ac *controllers.AuthController,
	fc *controllers.FlatController,
	bc *controllers.BookingController,
	ec *controllers.ExtensionController,
	rc *controllers.ReviewController,
	xc *controllers.ExportController,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger(log))
	r.Static("/uploads", "./uploads")

	origins := cfg.CORSOrigins
	allowCredentials := true
	for _, origin := range origins {
		if origin == "*" {
			allowCredentials = false
			break
		}
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: allowCredentials,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		// Public surface
		api.POST("/auth/register", ac.Register)
		api.GET("/auth/verify", ac.VerifyEmail)
		api.POST("/auth/login", ac.Login)

		api.GET("/flats", fc.ListFlats)
		api.GET("/flats/:id", fc.GetFlat)
		api.GET("/flats/:id/reviews", rc.ListFlatReviews)

		authed := api.Group("")
		authed.Use(middleware.RequireAuth())
		{
			owner := authed.Group("")
			owner.Use(middleware.RequireRole(models.RoleOwner))
			{
				owner.POST("/flats", fc.CreateFlat)
				owner.PUT("/flats/:id", fc.UpdateFlat)
				owner.PATCH("/flats/:id/availability", fc.SetAvailability)
				owner.DELETE("/flats/:id", fc.DeleteFlat)
				owner.POST("/flats/:id/photos", fc.UploadPhoto)
				owner.GET("/flats/:id/bookings", bc.ListFlatBookings)

				owner.POST("/bookings/:id/approve", bc.ApproveBooking)
				owner.POST("/bookings/:id/disapprove", bc.DisapproveBooking)
				owner.POST("/extensions/:id/approve", ec.ApproveExtension)
				owner.POST("/extensions/:id/reject", ec.RejectExtension)

				owner.GET("/export/bookings", xc.DownloadBookings)
			}

			tenant := authed.Group("")
			tenant.Use(middleware.RequireRole(models.RoleTenant))
			{
				tenant.POST("/bookings", bc.CreateBooking)
				tenant.GET("/bookings", bc.ListMyBookings)
				tenant.POST("/bookings/:id/cancel", bc.CancelBooking)
				tenant.POST("/bookings/:id/confirm-payment", bc.ConfirmPayment)
				tenant.POST("/bookings/:id/extensions", ec.RequestExtension)
				tenant.POST("/extensions/:id/confirm-payment", ec.ConfirmExtensionPayment)
			}

			// Either party of the booking
			authed.GET("/bookings/:id", bc.GetBooking)
			authed.GET("/bookings/:id/extensions", ec.ListExtensions)
			authed.PUT("/bookings/:id/review", rc.UpsertReview)
			authed.DELETE("/reviews/:id", rc.DeleteReview)
		}
	}

	return r
}
