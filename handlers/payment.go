package handlers

import (
	"io"
	"net/http"
	"strconv"

	"campus-popcorn-api/config"
	"campus-popcorn-api/settlement"

	"github.com/gin-gonic/gin"
)

// UploadProof attaches a payment-proof document to the caller's order.
// Multipart form: "proof" (file), "customer_name".
func (h *Handler) UploadProof(c *gin.Context) {
	order, ok := h.ownOrder(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("proof")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Payment proof file is required"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read uploaded file"})
		return
	}
	defer file.Close()

	// Cap the read one byte past the limit so oversize uploads are detected
	// without buffering the whole body.
	data, err := io.ReadAll(io.LimitReader(file, settlement.MaxProofSize+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read uploaded file"})
		return
	}

	upload := settlement.ProofUpload{
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Data:        data,
	}
	updated, err := h.svc.AttachProof(c.Request.Context(), order.ID, upload, c.PostForm("customer_name"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Payment proof uploaded. We'll review and confirm your order shortly.",
		"order":   updated,
	})
}

type VerifyPaymentRequest struct {
	TxID        string `json:"txid" binding:"required"`
	AccountName string `json:"account_name" binding:"required"`
	PhoneNumber string `json:"phone_number" binding:"required"`
}

// VerifyPayment runs the SMS-match path for the caller's order
func (h *Handler) VerifyPayment(c *gin.Context) {
	order, ok := h.ownOrder(c)
	if !ok {
		return
	}

	var req VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.svc.VerifyBySms(c.Request.Context(), order.ID, req.TxID, req.AccountName, req.PhoneNumber)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Payment verified. Your order is confirmed!",
		"matched": result.Matched,
		"order":   result.Order,
		"payment": result.Payment,
	})
}

// PaymentInfo exposes the mobile-money code and merchant name for the
// payment screen, preferring the settings table over env defaults.
func (h *Handler) PaymentInfo(c *gin.Context) {
	settings := h.store.Settings.Map(c.Request.Context())
	momoCode := settings["momo_code"]
	if momoCode == "" {
		momoCode = config.MomoCode
	}
	merchant := settings["merchant_name"]
	if merchant == "" {
		merchant = config.MerchantName
	}
	c.JSON(http.StatusOK, gin.H{
		"momo_code":      momoCode,
		"merchant_name":  merchant,
		"unit_price_rwf": h.svc.UnitPrice(c.Request.Context()),
	})
}

// ServeFile serves a stored blob. Paths under a user directory require a
// valid signature; the signed URL is minted by the admin proof-url endpoint.
func (h *Handler) ServeFile(c *gin.Context) {
	path := c.Param("path")
	if len(path) > 0 && path[0] == '/' {
		path = path[1:]
	}

	expires, _ := strconv.ParseInt(c.Query("expires"), 10, 64)
	if !h.blobs.Verify(path, expires, c.Query("sig")) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Invalid or expired file link"})
		return
	}

	data, err := h.blobs.Open(path)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
		return
	}
	c.Data(http.StatusOK, "application/octet-stream", data)
}
