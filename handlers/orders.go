package handlers

import (
	"net/http"

	"campus-popcorn-api/middleware"
	"campus-popcorn-api/models"
	"campus-popcorn-api/settlement"
	"campus-popcorn-api/statemachine"

	"github.com/gin-gonic/gin"
)

type PlaceOrderRequest struct {
	Portions int    `json:"portions" binding:"required,min=1,max=10"`
	Location string `json:"location" binding:"required"`
}

// PlaceOrder creates a new pending order for the caller
func (h *Handler) PlaceOrder(c *gin.Context) {
	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := middleware.GetUserID(c)
	email := middleware.GetEmail(c)
	in := settlement.CreateOrderInput{
		Portions: req.Portions,
		Location: req.Location,
	}
	if userID != "" {
		in.UserID = &userID
	}
	if email != "" {
		in.Email = &email
	}

	order, err := h.svc.CreateOrder(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order placed successfully",
		"order":   order,
	})
}

// GetMyOrders returns all orders for the logged-in user, most recent first
func (h *Handler) GetMyOrders(c *gin.Context) {
	userID := middleware.GetUserID(c)
	orders, err := h.store.Orders.ByUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load orders"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(orders), "orders": orders})
}

// GetOrderDetail returns a single order with its payments and history
func (h *Handler) GetOrderDetail(c *gin.Context) {
	order, ok := h.ownOrder(c)
	if !ok {
		return
	}
	history, err := h.store.Orders.History(c.Request.Context(), order.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load order history"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order, "history": history})
}

// CancelOrder cancels an order through the state machine (customer actor)
func (h *Handler) CancelOrder(c *gin.Context) {
	order, ok := h.ownOrder(c)
	if !ok {
		return
	}
	updated, err := h.svc.SetOrderStatus(c.Request.Context(), order.ID,
		models.OrderCancelled, statemachine.ActorCustomer, "Order cancelled by customer")
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order cancelled successfully", "order": updated})
}

// ownOrder loads the path order and checks it belongs to the caller.
func (h *Handler) ownOrder(c *gin.Context) (*models.Order, bool) {
	order, err := h.svc.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	userID := middleware.GetUserID(c)
	if order.UserID == nil || *order.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "This order does not belong to you"})
		return nil, false
	}
	return order, true
}
