package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"stayhub/handlers"
	"stayhub/middleware"
	"stayhub/utils"
)

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterBookingRoutes(r, hb)
	RegisterCheckoutRoutes(r, hb)
	RegisterPaymentRoutes(r, hb)
	RegisterHealthRoute(r)
}

// RegisterHealthRoute exposes the dependency health snapshot.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, utils.GetHealthStatus())
	})
}

// RegisterBookingRoutes registers the draft booking endpoints.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/bookings")
	{
		api.Use(middleware.CustomerAuthMiddleware())
		api.POST("", hb.CreateBooking)
		api.GET("/:id", hb.GetBooking)
	}
}

// RegisterCheckoutRoutes registers the quote, coupon and session endpoints.
func RegisterCheckoutRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/checkout")
	{
		api.Use(middleware.CustomerAuthMiddleware())
		api.POST("/quote", hb.GetQuote)
		api.POST("/:id/coupon", hb.ApplyCoupon)
		api.DELETE("/:id/coupon", hb.CancelCoupon)
		api.POST("/:id/session", hb.OpenSession)
		api.GET("/:id/session", hb.PollSession)
	}
}

// RegisterPaymentRoutes registers provider-facing callbacks. Authenticated by
// the shared webhook secret, not a customer token.
func RegisterPaymentRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/payment")
	{
		api.POST("/webhook", hb.PaymentWebhook)
	}
}
