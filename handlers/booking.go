package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"time"

	"unilink/models"
	"unilink/services/booking"
	"unilink/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BookingHandler serves /api/bookings.
type BookingHandler struct {
	Service booking.BookingService
	SiteURL string
}

func NewBookingHandler(svc booking.BookingService, siteURL string) *BookingHandler {
	return &BookingHandler{Service: svc, SiteURL: strings.TrimRight(siteURL, "/")}
}

// origin picks the base URL Stripe redirects back to: the caller's Origin
// header, then the configured site URL, then the request host.
func (h *BookingHandler) origin(c *gin.Context) string {
	if o := c.GetHeader("Origin"); o != "" {
		return strings.TrimRight(o, "/")
	}
	if h.SiteURL != "" {
		return h.SiteURL
	}
	scheme := "http"
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host
}

// GetCapacityHandler handles GET /api/bookings/capacity.
func (h *BookingHandler) GetCapacityHandler(c *gin.Context) {
	c.JSON(http.StatusOK, h.Service.Capacity(c.Request.Context()))
}

// GetQuoteHandler handles GET /api/bookings/quote?tripType=&addLuggage=.
func (h *BookingHandler) GetQuoteHandler(c *gin.Context) {
	tripType := models.TripType(c.DefaultQuery("tripType", string(models.TripOneWay)))
	if !tripType.Valid() {
		utils.JSONError(c, http.StatusBadRequest, "Invalid trip type")
		return
	}
	addLuggage := c.Query("addLuggage") == "true"
	c.JSON(http.StatusOK, h.Service.Quote(tripType, addLuggage))
}

// CreateCheckoutHandler handles POST /api/bookings/checkout.
func (h *BookingHandler) CreateCheckoutHandler(c *gin.Context) {
	var req models.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		getLogger(c).Debug("Invalid checkout body", zap.Error(err))
		utils.JSONError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.Service.CreateCheckout(c.Request.Context(), req, h.origin(c))
	if err != nil {
		utils.RespondError(c, err, "Failed to create checkout")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ConfirmBookingHandler handles POST /api/bookings/confirm.
func (h *BookingHandler) ConfirmBookingHandler(c *gin.Context) {
	var req models.ConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	res, err := h.Service.ConfirmBooking(c.Request.Context(), req.ID())
	if err != nil {
		utils.RespondError(c, err, "Failed to confirm booking")
		return
	}
	if !res.Created {
		c.JSON(http.StatusOK, gin.H{"message": "Booking already confirmed", "booking": res.Booking})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Booking confirmed", "booking": res.Booking})
}

// GetTicketHandler handles GET /api/bookings/ticket?session_id=.
func (h *BookingHandler) GetTicketHandler(c *gin.Context) {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		sessionID = c.Query("sessionId")
	}

	var buf bytes.Buffer
	if err := h.Service.WriteTicket(c.Request.Context(), &buf, sessionID); err != nil {
		utils.RespondError(c, err, "Failed to render ticket")
		return
	}
	c.Header("Content-Disposition", `attachment; filename="unilink-ticket.pdf"`)
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// CreatePendingBookingHandler handles POST /api/bookings.
func (h *BookingHandler) CreatePendingBookingHandler(c *gin.Context) {
	var req models.PendingBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	b, err := h.Service.CreatePendingBooking(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, err, "Failed to create booking")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Booking created successfully", "booking": b})
}

// ListBookingsHandler handles GET /api/bookings.
func (h *BookingHandler) ListBookingsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"bookings": h.Service.ListBookings(c.Request.Context())})
}

// DeleteBookingsHandler handles DELETE /api/bookings?id= and ?clearAll=true.
func (h *BookingHandler) DeleteBookingsHandler(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Query("id")

	switch {
	case c.Query("clearAll") == "true":
		n, err := h.Service.ClearBookings(ctx)
		if err != nil {
			utils.RespondError(c, err, "Failed to delete booking")
			return
		}
		getLogger(c).Info("Bookings cleared", zap.Int64("count", n))
		c.JSON(http.StatusOK, gin.H{"message": "All bookings cleared successfully"})
	case id != "":
		if err := h.Service.DeleteBooking(ctx, id); err != nil {
			utils.RespondError(c, err, "Failed to delete booking")
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Booking deleted successfully"})
	default:
		utils.JSONError(c, http.StatusBadRequest, "Either id or clearAll parameter is required")
	}
}

// ExportBookingsHandler handles GET /api/bookings/export?route=.
func (h *BookingHandler) ExportBookingsHandler(c *gin.Context) {
	route := c.Query("route")

	var buf bytes.Buffer
	if err := h.Service.ExportCSV(c.Request.Context(), &buf, route); err != nil {
		utils.RespondError(c, err, "Failed to export bookings")
		return
	}

	label := route
	if label == "" {
		label = "all"
	}
	filename := fmt.Sprintf("bookings-%s-%s.csv", label, time.Now().UTC().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
