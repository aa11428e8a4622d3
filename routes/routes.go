package routes

import (
	"campus-popcorn-api/handlers"
	"campus-popcorn-api/middleware"
	"campus-popcorn-api/roles"
	"campus-popcorn-api/store"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, h *handlers.Handler, resolver *roles.Resolver, users *store.UserRepo) {
	// ── Public routes ──────────────────────────────────────────────
	public := r.Group("/api")
	{
		// Auth
		public.POST("/auth/register", h.Register)
		public.POST("/auth/login", h.Login)

		// Payment screen details (momo code, merchant, unit price)
		public.GET("/payment-info", h.PaymentInfo)

		// State machine info (great for docs/Postman)
		public.GET("/state-machine", h.GetStateMachineInfo)

		// SMS ingest webhook (shared-secret guarded)
		public.POST("/sms", h.ReceiveSMS)
	}

	// Signed blob serving
	r.GET("/files/*path", h.ServeFile)

	// ── Authenticated routes ───────────────────────────────────────
	auth := r.Group("/api")
	auth.Use(middleware.AuthRequired())
	{
		auth.GET("/profile", h.GetProfile)
		auth.POST("/notifications/subscribe", h.Subscribe)

		// Orders
		auth.POST("/orders", h.PlaceOrder)
		auth.GET("/orders", h.GetMyOrders)
		auth.GET("/orders/:id", h.GetOrderDetail)
		auth.PUT("/orders/:id/cancel", h.CancelOrder)

		// Evidence intake
		auth.POST("/orders/:id/proof", h.UploadProof)
		auth.POST("/orders/:id/verify", h.VerifyPayment)
	}

	// ── Admin routes ───────────────────────────────────────────────
	admin := r.Group("/api/admin")
	admin.Use(middleware.AuthRequired(), middleware.AdminRequired(resolver, users))
	{
		admin.GET("/orders", h.AdminGetAllOrders)
		admin.PUT("/orders/:id/status", h.AdminSetOrderStatus)
		admin.PUT("/orders/:id/payment-status", h.AdminSetPaymentStatus)
		admin.GET("/orders/:id/proof-url", h.AdminProofURL)
		admin.DELETE("/orders/:id/proof", h.AdminDeleteProof)

		admin.GET("/clients", h.AdminGetClients)
		admin.GET("/messages", h.AdminGetMessages)
		admin.GET("/payments", h.AdminGetPayments)

		admin.GET("/settings", h.AdminGetSettings)
		admin.PUT("/settings/:key", h.AdminPutSetting)
	}
}
