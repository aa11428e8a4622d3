package handlers

import (
	"net/http"

	"campus-popcorn-api/statemachine"

	"github.com/gin-gonic/gin"
)

// GetStateMachineInfo returns both state machines for informational purposes
func (h *Handler) GetStateMachineInfo(c *gin.Context) {
	var orderInfo []gin.H
	for _, t := range statemachine.AllOrderTransitions() {
		orderInfo = append(orderInfo, gin.H{"from": t.From, "to": t.To, "actor": t.Actor})
	}
	var paymentInfo []gin.H
	for _, t := range statemachine.AllPaymentTransitions() {
		paymentInfo = append(paymentInfo, gin.H{"from": t.From, "to": t.To, "actor": t.Actor})
	}
	c.JSON(http.StatusOK, gin.H{
		"order_state_machine":   orderInfo,
		"payment_state_machine": paymentInfo,
		"terminal_states":       []string{"delivered", "cancelled"},
		"description":           "Campus Popcorn order and payment lifecycle state machines",
	})
}
