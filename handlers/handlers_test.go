package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"unilink/middleware"
	"unilink/models"
	"unilink/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubBookings struct {
	capacity     models.Capacity
	checkoutErr  error
	gotOrigin    string
	confirm      *models.ConfirmResult
	confirmErr   error
	gotSessionID string
	deleted      []string
	cleared      bool
	deleteErr    error
	bookings     []models.Booking
}

func (s *stubBookings) Quote(t models.TripType, luggage bool) models.Quote {
	q := models.Quote{TripType: t, BaseFareCents: 3500, Currency: "usd"}
	if luggage {
		q.LuggageFeeCents = 750
	}
	q.TotalCents = q.BaseFareCents + q.LuggageFeeCents
	return q
}

func (s *stubBookings) Capacity(context.Context) models.Capacity { return s.capacity }

func (s *stubBookings) CreateCheckout(_ context.Context, _ models.CheckoutRequest, origin string) (*models.CheckoutResponse, error) {
	s.gotOrigin = origin
	if s.checkoutErr != nil {
		return nil, s.checkoutErr
	}
	return &models.CheckoutResponse{URL: "https://checkout.stripe.test/c/1"}, nil
}

func (s *stubBookings) ConfirmBooking(_ context.Context, sessionID string) (*models.ConfirmResult, error) {
	s.gotSessionID = sessionID
	return s.confirm, s.confirmErr
}

func (s *stubBookings) CreatePendingBooking(_ context.Context, req models.PendingBookingRequest) (*models.Booking, error) {
	if req.HomeLocation == req.Destination {
		return nil, utils.ValidationError("Home location and destination must be different")
	}
	return &models.Booking{ID: "p-1", Email: req.Email, Status: models.BookingPending}, nil
}

func (s *stubBookings) ListBookings(context.Context) []models.Booking { return s.bookings }

func (s *stubBookings) DeleteBooking(_ context.Context, id string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubBookings) ClearBookings(context.Context) (int64, error) {
	s.cleared = true
	return 2, nil
}

func (s *stubBookings) ExportCSV(_ context.Context, w io.Writer, route string) error {
	_, err := io.WriteString(w, "Name,Route\nAda,"+route+"\n")
	return err
}

func (s *stubBookings) WriteTicket(_ context.Context, w io.Writer, sessionID string) error {
	if sessionID != "cs_1" {
		return utils.NotFoundError("Booking not found")
	}
	_, err := io.WriteString(w, "%PDF-1.3")
	return err
}

func bookingRouter(h *BookingHandler) *gin.Engine {
	r := gin.New()
	r.GET("/api/bookings/capacity", h.GetCapacityHandler)
	r.GET("/api/bookings/quote", h.GetQuoteHandler)
	r.POST("/api/bookings/checkout", h.CreateCheckoutHandler)
	r.POST("/api/bookings/confirm", h.ConfirmBookingHandler)
	r.GET("/api/bookings/ticket", h.GetTicketHandler)
	r.POST("/api/bookings", h.CreatePendingBookingHandler)
	r.GET("/api/bookings", h.ListBookingsHandler)
	r.DELETE("/api/bookings", h.DeleteBookingsHandler)
	r.GET("/api/bookings/export", h.ExportBookingsHandler)
	return r
}

func do(r http.Handler, method, target, body string, headers ...string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCapacityHandler(t *testing.T) {
	svc := &stubBookings{capacity: models.Capacity{Count: 35, SoldOut: true, Limit: 35}}
	w := do(bookingRouter(NewBookingHandler(svc, "")), http.MethodGet, "/api/bookings/capacity", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"count":35,"soldOut":true,"limit":35}`, w.Body.String())
}

func TestQuoteHandler(t *testing.T) {
	r := bookingRouter(NewBookingHandler(&stubBookings{}, ""))

	w := do(r, http.MethodGet, "/api/bookings/quote?tripType=round-trip&addLuggage=true", "")
	require.Equal(t, http.StatusOK, w.Code)
	var q models.Quote
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &q))
	assert.Equal(t, models.TripRoundTrip, q.TripType)
	assert.EqualValues(t, 4250, q.TotalCents)

	w = do(r, http.MethodGet, "/api/bookings/quote?tripType=first-class", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckoutHandler_Origin(t *testing.T) {
	body := `{"name":"Ada","email":"ada@purdue.edu","route":"purdue-uiuc"}`

	svc := &stubBookings{}
	r := bookingRouter(NewBookingHandler(svc, "https://unilink.app/"))
	w := do(r, http.MethodPost, "/api/bookings/checkout", body, "Origin", "https://preview.unilink.app")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"url":"https://checkout.stripe.test/c/1"}`, w.Body.String())
	assert.Equal(t, "https://preview.unilink.app", svc.gotOrigin)

	do(r, http.MethodPost, "/api/bookings/checkout", body)
	assert.Equal(t, "https://unilink.app", svc.gotOrigin)

	r = bookingRouter(NewBookingHandler(svc, ""))
	do(r, http.MethodPost, "/api/bookings/checkout", body)
	assert.Equal(t, "http://example.com", svc.gotOrigin)
}

func TestCheckoutHandler_Errors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"sold out", utils.NewAppError(utils.KindCapacity, "Sold out. All 35 tickets have been sold."), http.StatusBadRequest, "Sold out. All 35 tickets have been sold."},
		{"not configured", utils.NewAppError(utils.KindConfiguration, "Payment system not configured"), http.StatusInternalServerError, "Payment system not configured"},
		{"provider failure", utils.WrapPublicAppError(utils.KindInternal, "Failed to create checkout", errors.New("card declined")), http.StatusInternalServerError, "Failed to create checkout: card declined"},
		{"store failure", utils.WrapAppError(utils.KindInternal, "Failed to create checkout", errors.New("dial tcp: connection refused")), http.StatusInternalServerError, "Failed to create checkout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := bookingRouter(NewBookingHandler(&stubBookings{checkoutErr: tt.err}, ""))
			w := do(r, http.MethodPost, "/api/bookings/checkout", `{"name":"Ada","email":"ada@purdue.edu"}`)
			assert.Equal(t, tt.status, w.Code)
			assert.JSONEq(t, `{"error":"`+tt.msg+`"}`, w.Body.String())
		})
	}

	r := bookingRouter(NewBookingHandler(&stubBookings{}, ""))
	w := do(r, http.MethodPost, "/api/bookings/checkout", `{not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestConfirmHandler(t *testing.T) {
	b := &models.Booking{ID: "b-1", Status: models.BookingConfirmed}

	svc := &stubBookings{confirm: &models.ConfirmResult{Booking: b, Created: true}}
	r := bookingRouter(NewBookingHandler(svc, ""))
	w := do(r, http.MethodPost, "/api/bookings/confirm", `{"session_id":"cs_legacy"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"message":"Booking confirmed"`)
	assert.Equal(t, "cs_legacy", svc.gotSessionID)

	svc.confirm = &models.ConfirmResult{Booking: b, Created: false}
	w = do(r, http.MethodPost, "/api/bookings/confirm", `{"sessionId":"cs_1"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"message":"Booking already confirmed"`)

	svc.confirmErr = utils.NewAppError(utils.KindPaymentNotCompleted, "Payment was not completed")
	w = do(r, http.MethodPost, "/api/bookings/confirm", `{"sessionId":"cs_1"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Payment was not completed"}`, w.Body.String())
}

func TestTicketHandler(t *testing.T) {
	r := bookingRouter(NewBookingHandler(&stubBookings{}, ""))

	w := do(r, http.MethodGet, "/api/bookings/ticket?session_id=cs_1", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))

	w = do(r, http.MethodGet, "/api/bookings/ticket?session_id=cs_unknown", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPendingBookingHandler(t *testing.T) {
	r := bookingRouter(NewBookingHandler(&stubBookings{}, ""))

	w := do(r, http.MethodPost, "/api/bookings", `{"email":"ada@purdue.edu","homeLocation":"purdue","destination":"uiuc"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"pending"`)

	w = do(r, http.MethodPost, "/api/bookings", `{"email":"ada@purdue.edu","homeLocation":"iu","destination":"iu"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteBookingsHandler(t *testing.T) {
	svc := &stubBookings{}
	r := bookingRouter(NewBookingHandler(svc, ""))

	w := do(r, http.MethodDelete, "/api/bookings?id=b-1", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"b-1"}, svc.deleted)

	w = do(r, http.MethodDelete, "/api/bookings?clearAll=true", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, svc.cleared)

	w = do(r, http.MethodDelete, "/api/bookings", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Either id or clearAll parameter is required"}`, w.Body.String())

	svc.deleteErr = utils.NotFoundError("Booking not found")
	w = do(r, http.MethodDelete, "/api/bookings?id=missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListAndExportHandlers(t *testing.T) {
	svc := &stubBookings{bookings: []models.Booking{}}
	r := bookingRouter(NewBookingHandler(svc, ""))

	w := do(r, http.MethodGet, "/api/bookings", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"bookings":[]}`, w.Body.String())

	w = do(r, http.MethodGet, "/api/bookings/export?route=purdue-uiuc", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "bookings-purdue-uiuc-")
	assert.Contains(t, w.Body.String(), "Ada,purdue-uiuc")
}

type stubWaitlist struct {
	joinErr   error
	entries   []models.WaitlistEntry
	exportErr error
}

func (s *stubWaitlist) Join(_ context.Context, req models.WaitlistRequest) (*models.WaitlistEntry, error) {
	if s.joinErr != nil {
		return nil, s.joinErr
	}
	return &models.WaitlistEntry{ID: "w-1", Name: req.Name, Email: req.Email}, nil
}

func (s *stubWaitlist) List(context.Context) []models.WaitlistEntry {
	if s.entries == nil {
		return []models.WaitlistEntry{}
	}
	return s.entries
}

func (s *stubWaitlist) ExportCSV(_ context.Context, w io.Writer) error {
	if s.exportErr != nil {
		return s.exportErr
	}
	_, err := io.WriteString(w, "Email,School,Destination,Signed Up\nada@purdue.edu,Purdue University,UIUC,\"Mar 1, 2025, 12:00 PM\"\n")
	return err
}

func (s *stubWaitlist) Delete(_ context.Context, id string) error {
	if id != "w-1" {
		return utils.NotFoundError("Entry not found")
	}
	return nil
}

func (s *stubWaitlist) Clear(context.Context) (int64, error) { return 0, nil }

func waitlistRouter(h *WaitlistHandler) *gin.Engine {
	r := gin.New()
	r.POST("/api/waitlist", h.JoinWaitlistHandler)
	r.GET("/api/waitlist", h.ListWaitlistHandler)
	r.DELETE("/api/waitlist", h.DeleteWaitlistHandler)
	r.GET("/api/waitlist/export", h.ExportWaitlistHandler)
	return r
}

func TestWaitlistHandlers(t *testing.T) {
	svc := &stubWaitlist{}
	r := waitlistRouter(NewWaitlistHandler(svc))

	w := do(r, http.MethodPost, "/api/waitlist", `{"name":"Ada","email":"ada@purdue.edu","school":"purdue","destination":"uiuc"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"message":"Successfully added to waitlist"`)

	svc.joinErr = utils.NewAppError(utils.KindConflict, "This email is already on the waitlist")
	w = do(r, http.MethodPost, "/api/waitlist", `{"name":"Ada","email":"ada@purdue.edu","school":"purdue","destination":"uiuc"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(r, http.MethodGet, "/api/waitlist", "")
	assert.JSONEq(t, `{"entries":[]}`, w.Body.String())

	svc.entries = []models.WaitlistEntry{{ID: "w-1", Email: "ada@purdue.edu"}}
	w = do(r, http.MethodGet, "/api/waitlist", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"email":"ada@purdue.edu"`)

	w = do(r, http.MethodDelete, "/api/waitlist?id=w-2", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = do(r, http.MethodDelete, "/api/waitlist?clearAll=true", "")
	assert.JSONEq(t, `{"message":"All entries cleared successfully"}`, w.Body.String())
}

func TestExportWaitlistHandler(t *testing.T) {
	svc := &stubWaitlist{}
	r := waitlistRouter(NewWaitlistHandler(svc))

	w := do(r, http.MethodGet, "/api/waitlist/export", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Header().Get("Content-Disposition"), `filename="waitlist-`)
	assert.Contains(t, w.Body.String(), "ada@purdue.edu,Purdue University,UIUC")

	svc.exportErr = utils.WrapAppError(utils.KindInternal, "Failed to read waitlist entries", errors.New("dial tcp"))
	w = do(r, http.MethodGet, "/api/waitlist/export", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Failed to read waitlist entries"}`, w.Body.String())
}

type stubAdmin struct {
	configured bool
	loggedOut  string
}

func (s *stubAdmin) Configured() bool { return s.configured }

func (s *stubAdmin) Login(_ context.Context, password, _, _ string) (string, *models.AdminSession, error) {
	if !s.configured {
		return "", nil, utils.NewAppError(utils.KindConfiguration, "Admin login is not configured. Set ADMIN_PASSWORD in environment.")
	}
	if password != "pw" {
		return "", nil, utils.NewAppError(utils.KindUnauthorized, "Invalid password")
	}
	return "signed-token", &models.AdminSession{ID: "s1"}, nil
}

func (s *stubAdmin) Validate(_ context.Context, token string) (*models.AdminSession, error) {
	if token != "signed-token" {
		return nil, utils.NewAppError(utils.KindUnauthorized, "Unauthorized")
	}
	return &models.AdminSession{ID: "s1"}, nil
}

func (s *stubAdmin) Logout(_ context.Context, token string) error {
	s.loggedOut = token
	return nil
}

func TestAdminLoginHandler(t *testing.T) {
	svc := &stubAdmin{configured: true}
	h := NewAdminHandler(svc, true)
	r := gin.New()
	r.POST("/api/admin/login", h.LoginHandler)
	r.POST("/api/admin/logout", h.LogoutHandler)

	w := do(r, http.MethodPost, "/api/admin/login", `{"password":"pw","redirectTo":"/admin/bookings"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"redirect":"/admin/bookings"}`, w.Body.String())
	cookie := w.Header().Get("Set-Cookie")
	assert.Contains(t, cookie, middleware.AdminCookieName+"=signed-token")
	assert.Contains(t, cookie, "HttpOnly")
	assert.Contains(t, cookie, "Secure")
	assert.Contains(t, cookie, "SameSite=Lax")

	w = do(r, http.MethodPost, "/api/admin/login", `{"password":"pw","redirectTo":"https://evil.test"}`)
	assert.JSONEq(t, `{"success":true,"redirect":"/admin"}`, w.Body.String())

	w = do(r, http.MethodPost, "/api/admin/login", `{"password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Invalid password"}`, w.Body.String())

	w = do(r, http.MethodPost, "/api/admin/logout", "", "Cookie", middleware.AdminCookieName+"=signed-token")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "signed-token", svc.loggedOut)
}

func TestAdminLoginHandler_NotConfigured(t *testing.T) {
	r := gin.New()
	r.POST("/api/admin/login", NewAdminHandler(&stubAdmin{}, false).LoginHandler)

	w := do(r, http.MethodPost, "/api/admin/login", `{"password":"pw"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Admin login is not configured")
}

func TestHealthHandler(t *testing.T) {
	monitor := utils.NewHealthMonitor(0, map[string]utils.Pinger{
		"redis": utils.PingFunc(func(context.Context) error { return errors.New("down") }),
	})
	monitor.Check(context.Background())

	r := gin.New()
	r.GET("/health", HealthHandler(monitor))
	w := do(r, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"degraded"`)

	r = gin.New()
	r.GET("/health", HealthHandler(nil))
	w = do(r, http.MethodGet, "/health", "")
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}
