package handlers

import (
	"unilink/services/admin"

	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers for route registration.
type HandlerBundle struct {
	AdminService admin.AdminService

	Booking  *BookingHandler
	Waitlist *WaitlistHandler
	Admin    *AdminHandler
	Health   gin.HandlerFunc
}
