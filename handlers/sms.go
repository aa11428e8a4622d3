package handlers

import (
	"net/http"

	"campus-popcorn-api/config"

	"github.com/gin-gonic/gin"
)

type ReceiveSMSRequest struct {
	Message string `json:"message" binding:"required"`
}

// ReceiveSMS ingests a forwarded mobile-money SMS. Messages that do not match
// the supported format are acknowledged and dropped, so the forwarder never
// retries junk.
func (h *Handler) ReceiveSMS(c *gin.Context) {
	if config.SMSSecret != "" && c.GetHeader("X-SMS-Secret") != config.SMSSecret {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid webhook secret"})
		return
	}

	var req ReceiveSMSRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, saved, err := h.ingest.Ingest(c.Request.Context(), req.Message)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save message"})
		return
	}
	if !saved {
		c.JSON(http.StatusOK, gin.H{"status": "ignored", "reason": "Message format not supported."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "saved", "data": msg})
}
