package handlers

import (
	"net/http"
	"time"

	"campus-popcorn-api/models"
	"campus-popcorn-api/statemachine"
	"campus-popcorn-api/store"

	"github.com/gin-gonic/gin"
)

// AdminGetAllOrders returns all orders with filters and a dashboard summary
func (h *Handler) AdminGetAllOrders(c *gin.Context) {
	filter := store.OrderFilter{
		Status:        models.OrderStatus(c.Query("status")),
		PaymentStatus: models.PaymentStatus(c.Query("payment_status")),
		UserID:        c.Query("user_id"),
		HasProof:      c.Query("has_proof") == "true",
	}
	orders, err := h.store.Orders.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load orders"})
		return
	}

	// Aggregate by status for the admin dashboard
	summary := map[string]int{}
	var totalRevenue int
	for _, o := range orders {
		summary[string(o.Status)]++
		if o.Status == models.OrderDelivered || o.Status == models.OrderConfirmed {
			totalRevenue += o.TotalPrice
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"order_summary": summary,
		"total_revenue": totalRevenue,
		"count":         len(orders),
		"orders":        orders,
	})
}

// AdminGetClients returns client profiles with their order stats
func (h *Handler) AdminGetClients(c *gin.Context) {
	clients, err := h.store.Users.ListClients(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load clients"})
		return
	}
	stats, err := h.store.Orders.StatsByUser(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load order stats"})
		return
	}

	type clientRow struct {
		models.User
		OrderCount int `json:"order_count"`
		TotalSpent int `json:"total_spent"`
	}
	rows := make([]clientRow, 0, len(clients))
	for _, u := range clients {
		row := clientRow{User: u}
		if s, ok := stats[u.ID]; ok {
			row.OrderCount = s.OrderCount
			row.TotalSpent = s.TotalSpent
		}
		rows = append(rows, row)
	}
	c.JSON(http.StatusOK, gin.H{"count": len(rows), "clients": rows})
}

// AdminGetMessages lists the latest ingested SMS confirmations
func (h *Handler) AdminGetMessages(c *gin.Context) {
	msgs, err := h.store.Messages.Recent(c.Request.Context(), 200)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load messages"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(msgs), "messages": msgs})
}

// AdminGetPayments lists all verified payment records
func (h *Handler) AdminGetPayments(c *gin.Context) {
	payments, err := h.store.Payments.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load payments"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(payments), "payments": payments})
}

type AdminOrderStatusRequest struct {
	Status models.OrderStatus `json:"status" binding:"required"`
	Note   string             `json:"note"`
	Force  bool               `json:"force"`
}

// AdminSetOrderStatus advances the delivery lifecycle (operator actor), or
// force-writes any status when force is set (emergency use)
func (h *Handler) AdminSetOrderStatus(c *gin.Context) {
	var req AdminOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var (
		order *models.Order
		err   error
	)
	if req.Force {
		order, err = h.svc.ForceOrderStatus(c.Request.Context(), c.Param("id"), req.Status, req.Note)
	} else {
		order, err = h.svc.SetOrderStatus(c.Request.Context(), c.Param("id"), req.Status,
			statemachine.ActorOperator, req.Note)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order status updated", "order": order})
}

type AdminPaymentStatusRequest struct {
	PaymentStatus models.PaymentStatus `json:"payment_status" binding:"required"`
	Note          string               `json:"note"`
}

// AdminSetPaymentStatus is the manual settlement override
func (h *Handler) AdminSetPaymentStatus(c *gin.Context) {
	var req AdminPaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	order, err := h.svc.SetPaymentStatus(c.Request.Context(), c.Param("id"), req.PaymentStatus, req.Note)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Payment status updated", "order": order})
}

// AdminProofURL mints a short-lived signed URL for reviewing a proof document
func (h *Handler) AdminProofURL(c *gin.Context) {
	url, err := h.svc.ProofURL(c.Request.Context(), c.Param("id"), time.Hour)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url, "expires_in": int(time.Hour.Seconds())})
}

// AdminDeleteProof removes a rejected proof document
func (h *Handler) AdminDeleteProof(c *gin.Context) {
	order, err := h.svc.RemoveProof(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Payment proof removed", "order": order})
}

// AdminGetSettings returns the settings map
func (h *Handler) AdminGetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"settings": h.store.Settings.Map(c.Request.Context())})
}

type AdminSettingRequest struct {
	Value string `json:"value"`
}

// AdminPutSetting upserts one settings key
func (h *Handler) AdminPutSetting(c *gin.Context) {
	var req AdminSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	key := c.Param("key")
	if err := h.store.Settings.Upsert(c.Request.Context(), key, req.Value); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save setting"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Setting saved", "key": key, "value": req.Value})
}
