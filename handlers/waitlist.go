package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"unilink/models"
	"unilink/services/waitlist"
	"unilink/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WaitlistHandler serves /api/waitlist.
type WaitlistHandler struct {
	Service waitlist.WaitlistService
}

func NewWaitlistHandler(svc waitlist.WaitlistService) *WaitlistHandler {
	return &WaitlistHandler{Service: svc}
}

// JoinWaitlistHandler handles POST /api/waitlist.
func (h *WaitlistHandler) JoinWaitlistHandler(c *gin.Context) {
	var req models.WaitlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	entry, err := h.Service.Join(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, err, "Failed to add to waitlist")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Successfully added to waitlist", "entry": entry})
}

// ListWaitlistHandler handles GET /api/waitlist.
func (h *WaitlistHandler) ListWaitlistHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"entries": h.Service.List(c.Request.Context())})
}

// ExportWaitlistHandler handles GET /api/waitlist/export.
func (h *WaitlistHandler) ExportWaitlistHandler(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.Service.ExportCSV(c.Request.Context(), &buf); err != nil {
		utils.RespondError(c, err, "Failed to export waitlist")
		return
	}

	filename := fmt.Sprintf("waitlist-%s.csv", time.Now().UTC().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// DeleteWaitlistHandler handles DELETE /api/waitlist?id= and ?clearAll=true.
func (h *WaitlistHandler) DeleteWaitlistHandler(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Query("id")

	switch {
	case c.Query("clearAll") == "true":
		n, err := h.Service.Clear(ctx)
		if err != nil {
			utils.RespondError(c, err, "Failed to delete entry")
			return
		}
		getLogger(c).Info("Waitlist cleared", zap.Int64("count", n))
		c.JSON(http.StatusOK, gin.H{"message": "All entries cleared successfully"})
	case id != "":
		if err := h.Service.Delete(ctx, id); err != nil {
			utils.RespondError(c, err, "Failed to delete entry")
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Entry deleted successfully"})
	default:
		utils.JSONError(c, http.StatusBadRequest, "Either id or clearAll parameter is required")
	}
}
