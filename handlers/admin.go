package handlers

import (
	"net/http"
	"strings"

	"unilink/middleware"
	"unilink/models"
	"unilink/services/admin"
	"unilink/utils"

	"github.com/gin-gonic/gin"
)

// AdminHandler serves the admin login endpoints.
type AdminHandler struct {
	Service      admin.AdminService
	SecureCookie bool
}

func NewAdminHandler(svc admin.AdminService, secureCookie bool) *AdminHandler {
	return &AdminHandler{Service: svc, SecureCookie: secureCookie}
}

// LoginHandler handles POST /api/admin/login.
func (h *AdminHandler) LoginHandler(c *gin.Context) {
	var req models.AdminLoginRequest
	// A missing or malformed body is treated as an empty password.
	_ = c.ShouldBindJSON(&req)

	redirect := "/admin"
	if strings.HasPrefix(req.RedirectTo, "/admin") {
		redirect = req.RedirectTo
	}

	token, _, err := h.Service.Login(c.Request.Context(), req.Password, c.Request.UserAgent(), middleware.ClientIP(c))
	if err != nil {
		utils.RespondError(c, err, "Login failed")
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AdminCookieName, token, int(admin.SessionTTL.Seconds()), "/", "", h.SecureCookie, true)
	c.JSON(http.StatusOK, gin.H{"success": true, "redirect": redirect})
}

// LogoutHandler handles POST /api/admin/logout.
func (h *AdminHandler) LogoutHandler(c *gin.Context) {
	if err := h.Service.Logout(c.Request.Context(), middleware.AdminToken(c)); err != nil {
		utils.RespondError(c, err, "Logout failed")
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AdminCookieName, "", -1, "/", "", h.SecureCookie, true)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// SessionHandler handles GET /api/admin/session behind the admin gate.
func (h *AdminHandler) SessionHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"authenticated": true, "configured": h.Service.Configured()})
}
