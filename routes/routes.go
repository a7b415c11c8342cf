package routes

import (
	"time"

	"unilink/handlers"
	"unilink/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/health", hb.Health)
}

// RegisterBookingRoutes registers the booking and checkout endpoints. Unpaid
// bookings count against capacity, so creating one is admin only.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/bookings")
	{
		api.GET("/capacity", hb.Booking.GetCapacityHandler)
		api.GET("/quote", hb.Booking.GetQuoteHandler)
		api.POST("/checkout", hb.Booking.CreateCheckoutHandler)
		api.POST("/confirm", hb.Booking.ConfirmBookingHandler)
		api.GET("/ticket", hb.Booking.GetTicketHandler)

		protected := api.Group("")
		protected.Use(middleware.AdminAuthMiddleware(hb.AdminService))
		protected.POST("", hb.Booking.CreatePendingBookingHandler)
		protected.GET("", hb.Booking.ListBookingsHandler)
		protected.DELETE("", hb.Booking.DeleteBookingsHandler)
		protected.GET("/export", hb.Booking.ExportBookingsHandler)
	}
}

// RegisterWaitlistRoutes registers the waitlist endpoints.
func RegisterWaitlistRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/waitlist")
	{
		api.POST("", hb.Waitlist.JoinWaitlistHandler)

		protected := api.Group("")
		protected.Use(middleware.AdminAuthMiddleware(hb.AdminService))
		protected.GET("", hb.Waitlist.ListWaitlistHandler)
		protected.DELETE("", hb.Waitlist.DeleteWaitlistHandler)
		protected.GET("/export", hb.Waitlist.ExportWaitlistHandler)
	}
}

// RegisterAdminRoutes sets up the admin login endpoints.
func RegisterAdminRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	adminGroup := r.Group("/api/admin")
	{
		adminGroup.POST("/login", hb.Admin.LoginHandler)
		adminGroup.POST("/logout", hb.Admin.LogoutHandler)
		adminGroup.GET("/session", middleware.AdminAuthMiddleware(hb.AdminService), hb.Admin.SessionHandler)
	}
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle, allowedOrigins []string) {
	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		corsCfg.AllowOrigins = allowedOrigins
	} else {
		// Credentialed requests cannot use "*", so echo the caller's origin.
		corsCfg.AllowOriginFunc = func(string) bool { return true }
	}
	r.Use(cors.New(corsCfg))

	RegisterHealthRoute(r, hb)
	RegisterBookingRoutes(r, hb)
	RegisterWaitlistRoutes(r, hb)
	RegisterAdminRoutes(r, hb)
}
